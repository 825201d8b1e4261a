package http

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pricescout/backend/internal/domain"
)

// AnalysisService is the pipeline the handler delegates to
type AnalysisService interface {
	Analyze(ctx context.Context, apiKey string, raw *domain.SearchRequest) (*domain.AnalysisResult, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	analysis AnalysisService
}

// NewHandler creates a new HTTP handler
func NewHandler(analysis AnalysisService) *Handler {
	return &Handler{analysis: analysis}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "pricescout-backend",
		"version": "1.0.0",
	})
}

// AnalyzeProducts runs a price comparison for the requested product across
// the requested websites and returns the comparison table plus the top
// recommendation. The API-key middleware has already vetted the credential.
func (h *Handler) AnalyzeProducts(c *gin.Context) {
	if h.analysis == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "analysis service not configured",
		})
		return
	}

	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	apiKey := c.GetString(ContextAPIKey)

	result, err := h.analysis.Analyze(c.Request.Context(), apiKey, &request)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondError maps pipeline errors onto HTTP statuses without leaking
// internals: validation problems are the caller's, a rejected credential is
// an upstream 5xx, everything else is a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrMissingAPIKey):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCredentialRejected):
		c.JSON(http.StatusBadGateway, gin.H{"error": "reasoning provider rejected the API credential"})
	default:
		log.Printf("[HTTP] Analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
