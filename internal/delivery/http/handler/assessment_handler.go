package handler

import (
	"net/http"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"
)

type AssessmentHandler struct {
	assessmentUsecase usecase.AssessmentUsecase
	validator         *validator.CustomValidator
}

func NewAssessmentHandler(assessmentUsecase usecase.AssessmentUsecase, validator *validator.CustomValidator) *AssessmentHandler {
	return &AssessmentHandler{
		assessmentUsecase: assessmentUsecase,
		validator:         validator,
	}
}

func (h *AssessmentHandler) GetQuestions(w http.ResponseWriter, r *http.Request) {
	response.Success(w, http.StatusOK, "Questions retrieved successfully", h.assessmentUsecase.Questions())
}

func (h *AssessmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.SubmitAssessmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.assessmentUsecase.Submit(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		if writeValidationError(w, err) {
			return
		}
		switch err {
		case usecase.ErrIncompleteAssessment:
			response.BadRequest(w, "Responde todas las preguntas")
		default:
			response.InternalServerError(w, "Failed to submit assessment")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Assessment submitted successfully", result)
}

func (h *AssessmentHandler) History(w http.ResponseWriter, r *http.Request) {
	result, err := h.assessmentUsecase.History(r.Context(), currentUser(r).ID)
	if err != nil {
		response.InternalServerError(w, "Failed to get assessment history")
		return
	}

	response.Success(w, http.StatusOK, "Assessment history retrieved successfully", result)
}
