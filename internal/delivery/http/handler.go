package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nutrimatch/backend/internal/domain"
	"github.com/nutrimatch/backend/internal/usecase"
)

// maxBatchSize bounds the number of queries accepted by one batch match
const maxBatchSize = 200

// Handler holds dependencies for HTTP handlers
type Handler struct {
	foodService *usecase.FoodService
}

// NewHandler creates a new HTTP handler
func NewHandler(foodService *usecase.FoodService) *Handler {
	return &Handler{foodService: foodService}
}

// MatchRequest is the body of a single food-name match
type MatchRequest struct {
	Query string `json:"query"`
}

// BatchMatchRequest is the body of a batch match
type BatchMatchRequest struct {
	Queries []string `json:"queries" binding:"required"`
}

// AlternativesRequest is the body of a restriction-aware alternative search
type AlternativesRequest struct {
	Restrictions     []string `json:"restrictions"`
	CaloricTolerance float64  `json:"caloricTolerance"`
	Limit            int      `json:"limit"`
}

// EnhanceRequest is the body of a meal-plan enhancement
type EnhanceRequest struct {
	Meals []domain.Meal `json:"meals" binding:"required,dive"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "nutrimatch-backend",
		"version": "1.0.0",
	})
}

// MatchFood handles POST /api/v1/foods/match
func (h *Handler) MatchFood(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	result, err := h.foodService.FindBestMatch(c.Request.Context(), req.Query)
	if err != nil {
		h.handleServiceError(c, "match", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MatchFoods handles POST /api/v1/foods/match/batch
func (h *Handler) MatchFoods(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req BatchMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if len(req.Queries) > maxBatchSize {
		respondError(c, http.StatusBadRequest, "Invalid request: at most "+strconv.Itoa(maxBatchSize)+" queries per batch")
		return
	}

	results, err := h.foodService.MatchAll(c.Request.Context(), req.Queries)
	if err != nil {
		h.handleServiceError(c, "batch match", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

// GetFood handles GET /api/v1/foods/:id
func (h *Handler) GetFood(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	entry, err := h.foodService.GetFood(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, "get food", err)
		return
	}
	if entry == nil {
		respondError(c, http.StatusNotFound, "Food not found")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// SimilarFoods handles GET /api/v1/foods/:id/similar
func (h *Handler) SimilarFoods(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondError(c, http.StatusBadRequest, "Invalid request: limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	similar, err := h.foodService.FindSimilarFoods(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.handleServiceError(c, "similar foods", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alternatives": similar})
}

// FoodAlternatives handles POST /api/v1/foods/:id/alternatives
func (h *Handler) FoodAlternatives(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req AlternativesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	if req.CaloricTolerance < 0 || req.Limit < 0 {
		respondError(c, http.StatusBadRequest, "Invalid request: tolerance and limit must not be negative")
		return
	}

	alternatives, err := h.foodService.FindFoodAlternatives(
		c.Request.Context(),
		c.Param("id"),
		req.Restrictions,
		domain.AlternativePreferences{
			CaloricTolerancePercent: req.CaloricTolerance,
			Limit:                   req.Limit,
		},
	)
	if err != nil {
		h.handleServiceError(c, "alternatives", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"alternatives": alternatives})
}

// ListRestrictions handles GET /api/v1/restrictions
func (h *Handler) ListRestrictions(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"restrictions": h.foodService.RestrictionLabels()})
}

// EnhanceMealPlan handles POST /api/v1/meal-plans/enhance
func (h *Handler) EnhanceMealPlan(c *gin.Context) {
	if !h.ready(c) {
		return
	}

	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	plan, report, err := h.foodService.EnhanceMealPlan(c.Request.Context(), domain.MealPlan{Meals: req.Meals})
	if err != nil {
		h.handleServiceError(c, "enhance", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plan":   plan,
		"report": report,
	})
}

// ready aborts with 503 when the handler was built without a food service
func (h *Handler) ready(c *gin.Context) bool {
	if h.foodService == nil {
		respondError(c, http.StatusServiceUnavailable, "Food service not configured")
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP status codes
func (h *Handler) handleServiceError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrInvalidFoodEntry):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCatalogUnavailable), errors.Is(err, domain.ErrUSDAAPIFailure):
		log.Printf("[HTTP] %s failed: %v", op, err)
		respondError(c, http.StatusServiceUnavailable, "Food catalog temporarily unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		log.Printf("[HTTP] %s timed out: %v", op, err)
		respondError(c, http.StatusGatewayTimeout, "Request timed out")
	default:
		log.Printf("[HTTP] %s failed: %v", op, err)
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
