package handler

import (
	"encoding/json"
	"net/http"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"
)

type ProfileHandler struct {
	profileUsecase usecase.ProfileUsecase
	sessions       *session.Controller
	validator      *validator.CustomValidator
}

func NewProfileHandler(
	profileUsecase usecase.ProfileUsecase,
	sessions *session.Controller,
	validator *validator.CustomValidator,
) *ProfileHandler {
	return &ProfileHandler{
		profileUsecase: profileUsecase,
		sessions:       sessions,
		validator:      validator,
	}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	result, err := h.profileUsecase.GetProfile(r.Context(), currentUser(r).ID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile retrieved successfully", result)
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateProfileRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.profileUsecase.UpdateProfile(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.Conflict(w, "Este email ya está registrado")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, err.Error())
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, http.StatusOK, "Profile updated successfully", result)
}

// DeleteAccount removes the caller's account and ends the current session.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	err := h.profileUsecase.DeleteAccount(r.Context(), currentUser(r).ID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to delete account")
		}
		return
	}

	h.sessions.Logout(r.Context(), w, r)
	response.Success(w, http.StatusOK, "Account deleted successfully", nil)
}

func (h *ProfileHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	result, err := h.profileUsecase.GetPreferences(r.Context(), currentUser(r).ID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to get preferences")
		}
		return
	}

	response.Success(w, http.StatusOK, "Preferences retrieved successfully", result)
}

func (h *ProfileHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs entity.JSON
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil || prefs == nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.profileUsecase.UpdatePreferences(r.Context(), currentUser(r).ID, prefs)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to update preferences")
		}
		return
	}

	response.Success(w, http.StatusOK, "Preferences updated successfully", result)
}

func (h *ProfileHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ChangePasswordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	err := h.profileUsecase.ChangePassword(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		switch err {
		case usecase.ErrWrongPassword:
			response.BadRequest(w, "La contraseña actual es incorrecta")
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		default:
			response.InternalServerError(w, "Failed to change password")
		}
		return
	}

	response.Success(w, http.StatusOK, "Password changed successfully", nil)
}
