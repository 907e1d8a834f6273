package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// currentUser returns the authenticated user. Routes using it sit behind a
// RouteGuard, so the user is always present.
func currentUser(r *http.Request) *entity.User {
	return session.FromContext(r.Context()).User
}

// decodeAndValidate writes the error response itself and reports whether
// the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return false
	}

	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

// writeValidationError renders a *usecase.ValidationError and reports
// whether err was one.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var vErr *usecase.ValidationError
	if !errors.As(err, &vErr) {
		return false
	}
	response.ValidationError(w, map[string]string{vErr.Field: vErr.Message})
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}
