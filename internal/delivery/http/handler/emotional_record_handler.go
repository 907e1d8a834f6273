package handler

import (
	"net/http"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"
)

type EmotionalRecordHandler struct {
	recordUsecase usecase.EmotionalRecordUsecase
	validator     *validator.CustomValidator
}

func NewEmotionalRecordHandler(recordUsecase usecase.EmotionalRecordUsecase, validator *validator.CustomValidator) *EmotionalRecordHandler {
	return &EmotionalRecordHandler{
		recordUsecase: recordUsecase,
		validator:     validator,
	}
}

// CreateRecord stores the caller's record for today or for the given fecha.
func (h *EmotionalRecordHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecordRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.recordUsecase.Create(r.Context(), currentUser(r).ID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRecordAlreadyExists:
			response.Conflict(w, "Ya existe un registro para esta fecha")
		case usecase.ErrFutureDate, usecase.ErrInvalidDateFormat:
			response.BadRequest(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to create record")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Record created successfully", result)
}

func (h *EmotionalRecordHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordUsecase.List(r.Context(), currentUser(r).ID)
	if err != nil {
		response.InternalServerError(w, "Failed to get records")
		return
	}

	response.Success(w, http.StatusOK, "Records retrieved successfully", result)
}

func (h *EmotionalRecordHandler) ListPatients(w http.ResponseWriter, r *http.Request) {
	result, err := h.recordUsecase.ListPatients(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get patients")
		return
	}

	response.Success(w, http.StatusOK, "Patients retrieved successfully", result)
}

func (h *EmotionalRecordHandler) PatientRecords(w http.ResponseWriter, r *http.Request) {
	patientID, ok := pathUUID(w, r, "id", "patient")
	if !ok {
		return
	}

	result, err := h.recordUsecase.PatientRecords(r.Context(), patientID)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get records")
		}
		return
	}

	response.Success(w, http.StatusOK, "Records retrieved successfully", result)
}
