package planning

import "errors"

// Common errors returned by the planning package
var (
	// ErrPlanningFailed is returned when workflow planning fails for any general reason
	ErrPlanningFailed = errors.New("failed to plan workflow from task description")

	// ErrInvalidResponse is returned when the LLM response cannot be parsed or is malformed
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the LLM blocks the content due to safety filters
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure is returned for temporary errors that might resolve on retry
	ErrTransientFailure = errors.New("transient error during workflow planning")

	// ErrInvalidConfig is returned when the planner configuration is invalid
	ErrInvalidConfig = errors.New("invalid planner configuration")
)
