package response

import (
	"encoding/json"
	"errors"
	"net/http"

	internalErrors "github.com/tumbleweedd/workspace_system/internal/lib/errors"
)

type H map[string]interface{}

func WriteJSON(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	return json.NewEncoder(w).Encode(body)
}

// WriteError maps the domain error taxonomy onto HTTP statuses. Anything
// outside the client-error class is a 500 with a generic body.
func WriteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, internalErrors.ErrPermissionDenied):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, internalErrors.ErrWorkspaceNotFound),
		errors.Is(err, internalErrors.ErrProjectNotFound),
		errors.Is(err, internalErrors.ErrSubscriptionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, internalErrors.ErrWorkspaceAlreadyExists),
		errors.Is(err, internalErrors.ErrMemberAlreadyAdded),
		errors.Is(err, internalErrors.ErrSubscriptionExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case internalErrors.IsClientError(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
