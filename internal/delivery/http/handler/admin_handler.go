package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"
)

const defaultAuditLogLimit = 50

type AdminHandler struct {
	adminUsecase usecase.AdminUsecase
	validator    *validator.CustomValidator
}

func NewAdminHandler(adminUsecase usecase.AdminUsecase, validator *validator.CustomValidator) *AdminHandler {
	return &AdminHandler{
		adminUsecase: adminUsecase,
		validator:    validator,
	}
}

// CreateUser handles creating an account of any role
// @Summary Create user (Admin only)
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateUserRequest true "Create User Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/users [post]
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req dto.AdminCreateUserRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.adminUsecase.CreateUser(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.Conflict(w, "Este email ya está registrado")
		case usecase.ErrInvalidDateFormat, usecase.ErrInvalidRole:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create user")
		}
		return
	}

	response.Success(w, http.StatusCreated, "User created successfully", result)
}

// ListUsers returns every user, or the active users of ?rol= when given.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminUsecase.ListUsers(r.Context(), r.URL.Query().Get("rol"))
	if err != nil {
		switch err {
		case usecase.ErrInvalidRole:
			response.BadRequest(w, "Invalid role")
		default:
			response.InternalServerError(w, "Failed to get users")
		}
		return
	}

	response.Success(w, http.StatusOK, "Users retrieved successfully", result)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.AdminUpdateUserRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.adminUsecase.UpdateUser(r.Context(), currentUser(r).ID, userID, &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrEmailAlreadyExists:
			response.Conflict(w, "Este email ya está registrado")
		case usecase.ErrInvalidDateFormat:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to update user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User updated successfully", result)
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.adminUsecase.SetStatus(r.Context(), currentUser(r).ID, userID, *req.Active)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrCannotModifySelf:
			response.Forbidden(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to update user status")
		}
		return
	}

	response.Success(w, http.StatusOK, "User status updated successfully", result)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathUUID(w, r, "id", "user")
	if !ok {
		return
	}

	err := h.adminUsecase.DeleteUser(r.Context(), currentUser(r).ID, userID)
	if err != nil {
		switch err {
		case usecase.ErrUserNotFound:
			response.NotFound(w, "User not found")
		case usecase.ErrCannotModifySelf:
			response.Forbidden(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to delete user")
		}
		return
	}

	response.Success(w, http.StatusOK, "User deleted successfully", nil)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminUsecase.Stats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get statistics")
		return
	}

	response.Success(w, http.StatusOK, "Statistics retrieved successfully", result)
}

// Export streams the user export as a file download. format is json or csv.
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	data, err := h.adminUsecase.Export(r.Context(), format)
	if err != nil {
		switch err {
		case usecase.ErrUnsupportedFormat:
			response.BadRequest(w, "Unsupported export format")
		default:
			response.InternalServerError(w, "Failed to export users")
		}
		return
	}

	contentType := "application/json"
	if format == "csv" {
		contentType = "text/csv; charset=utf-8"
	}
	filename := fmt.Sprintf("mentalwell_export_%s.%s", time.Now().UTC().Format("20060102_150405"), format)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *AdminHandler) AuditLogs(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.BadRequest(w, "Invalid limit")
			return
		}
		limit = parsed
	}

	result, err := h.adminUsecase.AuditLogs(r.Context(), limit)
	if err != nil {
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.Success(w, http.StatusOK, "Audit logs retrieved successfully", result)
}

func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminUsecase.GetConfig(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get system configuration")
		return
	}

	response.Success(w, http.StatusOK, "System configuration retrieved successfully", result)
}

func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req entity.SystemConfig
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.adminUsecase.UpdateConfig(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		response.InternalServerError(w, "Failed to update system configuration")
		return
	}

	response.Success(w, http.StatusOK, "System configuration updated successfully", result)
}
