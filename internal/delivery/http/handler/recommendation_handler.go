package handler

import (
	"net/http"
	"strconv"

	"mentalwell/internal/delivery/dto"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
	"mentalwell/pkg/validator"

	"github.com/gorilla/mux"
)

type RecommendationHandler struct {
	recommendationUsecase usecase.RecommendationUsecase
	validator             *validator.CustomValidator
}

func NewRecommendationHandler(recommendationUsecase usecase.RecommendationUsecase, validator *validator.CustomValidator) *RecommendationHandler {
	return &RecommendationHandler{
		recommendationUsecase: recommendationUsecase,
		validator:             validator,
	}
}

// GetRecommendations accepts optional mood, stress, energy and sleep query
// parameters overriding the caller's latest record.
func (h *RecommendationHandler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	var query dto.RecommendationQuery
	errs := make(map[string]string)
	for name, target := range map[string]**int{
		"mood":   &query.Mood,
		"stress": &query.Stress,
		"energy": &query.Energy,
		"sleep":  &query.Sleep,
	} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			errs[name] = name + " must be a number"
			continue
		}
		*target = &value
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.recommendationUsecase.Recommendations(r.Context(), currentUser(r).ID, &query)
	if err != nil {
		response.InternalServerError(w, "Failed to get recommendations")
		return
	}

	response.Success(w, http.StatusOK, "Recommendations retrieved successfully", result)
}

func (h *RecommendationHandler) CompleteActivity(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	result, err := h.recommendationUsecase.Complete(r.Context(), currentUser(r).ID, key)
	if err != nil {
		switch err {
		case usecase.ErrUnknownRecommendation:
			response.NotFound(w, "Recommendation not found")
		default:
			response.InternalServerError(w, "Failed to complete activity")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Activity completed successfully", result)
}
