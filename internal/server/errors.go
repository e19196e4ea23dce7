package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"docintake/internal/analysis"
	"docintake/internal/common"
	"docintake/internal/pipeline"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps the analysis/pipeline error taxonomy to HTTP statuses.
// The caller never learns which concrete backend ran or failed, only the
// error category.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pipeline.ErrInvalidFileType):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_file_type", Message: "only PDF uploads are accepted"})
	case errors.Is(err, pipeline.ErrExtractionFailed):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "extraction_failed", Message: "failed to extract text from PDF"})
	case errors.Is(err, analysis.ErrMalformedResponse):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "malformed_response", Message: "document analysis produced an unreadable result"})
	case errors.Is(err, analysis.ErrEmptyExtraction):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "empty_extraction", Message: "document contains no recognizable fields"})
	case errors.Is(err, analysis.ErrAllBackendsUnavailable), errors.Is(err, analysis.ErrBackendUnavailable):
		// retryable service-level failure
		c.JSON(http.StatusServiceUnavailable, errorResponse{Code: "analysis_unavailable", Message: "document analysis is temporarily unavailable, try again later"})
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Code: "not_found", Message: "document not found"})
	case errors.Is(err, common.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse{Code: "invalid_input", Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, errorResponse{Code: "internal_error", Message: "internal error"})
	}
}
