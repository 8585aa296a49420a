// Package planning defines the interface between the application core and
// external LLM services used to classify tasks and synthesize workflow
// graphs, together with the strict parser that turns raw model output
// into trusted decisions.
package planning
