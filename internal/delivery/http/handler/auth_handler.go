package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"mentalwell/internal/converter"
	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/domain/entity"
	"mentalwell/internal/session"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	registrationUsecase usecase.RegistrationUsecase
	sessions            *session.Controller
	validator           *validator.CustomValidator
	log                 *logrus.Logger
}

func NewAuthHandler(
	registrationUsecase usecase.RegistrationUsecase,
	sessions *session.Controller,
	validator *validator.CustomValidator,
	log *logrus.Logger,
) *AuthHandler {
	return &AuthHandler{
		registrationUsecase: registrationUsecase,
		sessions:            sessions,
		validator:           validator,
		log:                 log,
	}
}

// Register handles self-registration
// @Summary Register a patient or psychologist account
// @Description Validates the payload, creates the account and logs the new user in
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Register Request"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	user, err := h.registrationUsecase.Register(r.Context(), &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch err {
		case usecase.ErrEmailAlreadyExists:
			response.Conflict(w, "Este email ya está registrado")
		default:
			response.InternalServerError(w, "Failed to register user")
		}
		return
	}

	// Log the new account in so the visitor does not type the credentials twice.
	loggedIn, err := h.sessions.Login(r.Context(), w, req.Email, req.Password)
	if err != nil {
		h.log.Warnf("Failed to log in freshly registered user: %+v", err)
		response.Success(w, http.StatusCreated, "User registered successfully", &dto.AuthResponse{
			User:     user,
			Redirect: entity.LoginPath,
		})
		return
	}

	response.Success(w, http.StatusCreated, "User registered successfully", &dto.AuthResponse{
		User:     converter.UserToResponse(loggedIn),
		Redirect: loggedIn.Role.DashboardPath(),
	})
}

// Login handles user login
// @Summary Login user
// @Description Login with email and password; sets the session cookie
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login Request"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	user, err := h.sessions.Login(r.Context(), w, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			response.Unauthorized(w, "Email o contraseña incorrectos")
		case errors.Is(err, session.ErrServiceUnavailable):
			response.ServiceUnavailable(w, "")
		default:
			response.InternalServerError(w, "Failed to login")
		}
		return
	}

	response.Success(w, http.StatusOK, "Login successful", &dto.AuthResponse{
		User:     converter.UserToResponse(user),
		Redirect: user.Role.DashboardPath(),
	})
}

// Logout clears the session; it succeeds whether or not one existed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context(), w, r)
	response.Success(w, http.StatusOK, "Logout successful", nil)
}

// Session reports the resolved session state of the caller.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s.State == session.Unavailable {
		response.ServiceUnavailable(w, "")
		return
	}

	resp := &dto.SessionResponse{State: s.State.String()}
	if s.Authenticated() {
		resp.User = converter.UserToResponse(s.User)
		resp.Redirect = s.User.Role.DashboardPath()
	}
	response.Success(w, http.StatusOK, "Session retrieved successfully", resp)
}
