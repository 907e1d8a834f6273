package handler

import (
	"net/http"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
)

const dashboardAuditLimit = 10

// PageHandler serves the role dashboards and the descriptors of the auth
// pages. Dashboards sit behind a page-mode RouteGuard.
type PageHandler struct {
	recordUsecase usecase.EmotionalRecordUsecase
	adminUsecase  usecase.AdminUsecase
}

func NewPageHandler(recordUsecase usecase.EmotionalRecordUsecase, adminUsecase usecase.AdminUsecase) *PageHandler {
	return &PageHandler{
		recordUsecase: recordUsecase,
		adminUsecase:  adminUsecase,
	}
}

type formPage struct {
	Page   string   `json:"page"`
	Action string   `json:"action"`
	Fields []string `json:"fields"`
	Roles  []string `json:"roles,omitempty"`
}

func (h *PageHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Login page", &formPage{
		Page:   "login",
		Action: "/api/v1/auth/login",
		Fields: []string{"email", "password"},
	})
}

func (h *PageHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Register page", &formPage{
		Page:   "register",
		Action: "/api/v1/auth/register",
		Fields: []string{
			"email", "password", "confirm_password", "nombre", "apellido", "telefono",
			"fecha_nacimiento", "profesion", "rol", "especialidad", "numero_licencia", "accept_terms",
		},
		Roles: []string{string(entity.RolePatient), string(entity.RolePsychologist)},
	})
}

func (h *PageHandler) PatientDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordUsecase.PatientDashboard(r.Context(), currentUser(r))
	if err != nil {
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", result)
}

func (h *PageHandler) PsychologistDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordUsecase.PsychologistDashboard(r.Context(), currentUser(r))
	if err != nil {
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", result)
}

func (h *PageHandler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminUsecase.Stats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	logs, err := h.adminUsecase.AuditLogs(r.Context(), dashboardAuditLimit)
	if err != nil {
		response.InternalServerError(w, "Failed to load dashboard")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard retrieved successfully", &dto.AdminDashboardResponse{
		Admin:      converter.UserToResponse(currentUser(r)),
		Statistics: stats,
		RecentLogs: logs,
	})
}
