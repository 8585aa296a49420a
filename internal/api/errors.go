package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/taskflow-api/internal/api/shared"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/service"
)

// respondServiceError maps service and domain errors onto HTTP statuses
// with sanitized messages. Unrecognized errors become 500s with the
// generic fallback message; the underlying error is only logged.
func (h *TaskHandler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		shared.RespondWithError(w, r, http.StatusNotFound, "Task not found")
	case errors.Is(err, service.ErrForbidden):
		shared.RespondWithError(w, r, http.StatusForbidden, "You do not have access to this task")
	case errors.Is(err, service.ErrTaskInProgress):
		shared.RespondWithError(w, r, http.StatusConflict, "Task is currently being processed")
	case errors.Is(err, domain.ErrValidation):
		shared.RespondWithError(w, r, http.StatusBadRequest, err.Error())
	default:
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, fallback, err)
	}
}
