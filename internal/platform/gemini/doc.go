// Package gemini provides the planning.Planner implementation backed by
// Google's Gemini API.
package gemini
