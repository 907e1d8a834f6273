package handler

import (
	"errors"
	"net/http"
	"strconv"

	"mentalwell/internal/infrastructure/analysis"
	"mentalwell/internal/usecase"
	"mentalwell/pkg/response"
)

type AnalysisHandler struct {
	analysisUsecase usecase.AnalysisUsecase
}

func NewAnalysisHandler(analysisUsecase usecase.AnalysisUsecase) *AnalysisHandler {
	return &AnalysisHandler{analysisUsecase: analysisUsecase}
}

// GetAnalysis returns the latest analysis report; ?refresh=true forces a new run.
func (h *AnalysisHandler) GetAnalysis(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))

	result, err := h.analysisUsecase.Latest(r.Context(), refresh)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrNotConfigured):
			response.ServiceUnavailable(w, "Analysis is not configured")
		case errors.Is(err, analysis.ErrTimeout):
			response.Error(w, http.StatusGatewayTimeout, "Analysis timed out", nil)
		case errors.Is(err, analysis.ErrCommandFailed), errors.Is(err, analysis.ErrNoJSON):
			response.Error(w, http.StatusBadGateway, "Analysis failed", nil)
		default:
			response.InternalServerError(w, "Failed to run analysis")
		}
		return
	}

	response.Success(w, http.StatusOK, "Analysis retrieved successfully", result)
}
