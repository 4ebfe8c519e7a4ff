package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/quickcompare/backend/internal/domain"
	"github.com/quickcompare/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	searchService *usecase.SearchService
	etaService    *usecase.ETAService
	mapsAPIKey    string
}

// NewHandler creates a new HTTP handler
func NewHandler(searchService *usecase.SearchService, etaService *usecase.ETAService, mapsAPIKey string) *Handler {
	return &Handler{
		searchService: searchService,
		etaService:    etaService,
		mapsAPIKey:    mapsAPIKey,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quickcompare-backend",
		"version": "1.0.0",
	})
}

// GetConfig returns the frontend-facing configuration.
func (h *Handler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"maps_api_key": h.mapsAPIKey,
	})
}

// Search handles a product search across all platforms. A request with a
// query that no platform can serve returns 200 with an empty list.
func (h *Handler) Search(c *gin.Context) {
	var request domain.SearchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query"})
		return
	}

	groups, err := h.searchService.Search(c.Request.Context(), &request)
	if err != nil {
		if errors.Is(err, domain.ErrMissingQuery) || errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Str("query", request.Query).Msg("search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, groups)
}

// ETA handles a delivery-estimate request for a location. The body is
// optional; defaults cover the standard service area.
func (h *Handler) ETA(c *gin.Context) {
	var request domain.ETARequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	result, err := h.etaService.ETA(c.Request.Context(), &request)
	if err != nil {
		log.Error().Err(err).Msg("eta fetch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, result)
}
