package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"staymap/internal/api/middleware"
	"staymap/internal/domain/entities"
	"staymap/internal/services"
)

// QueryHandler translates HTTP parameters into query-engine calls. All
// validation happens here, before the engine is touched; the engine only
// ever sees well-formed requests.
type QueryHandler struct {
	queryService *services.QueryService
	logger       *slog.Logger
	listingsCap  int
	rectangleCap int // 0 = uncapped
}

func NewQueryHandler(queryService *services.QueryService, logger *slog.Logger, listingsCap, rectangleCap int) *QueryHandler {
	return &QueryHandler{
		queryService: queryService,
		logger:       logger,
		listingsCap:  listingsCap,
		rectangleCap: rectangleCap,
	}
}

// ListListings handles GET /api/listings
func (h *QueryHandler) ListListings(c *gin.Context) {
	points, err := h.queryService.ListListings(c.Request.Context(), h.listingsCap)
	if err != nil {
		h.internalError(c, "list listings", err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// SearchRectangle handles GET /api/search_rectangle
func (h *QueryHandler) SearchRectangle(c *gin.Context) {
	minLat, ok := h.requireFloat(c, "min_lat")
	if !ok {
		return
	}
	minLng, ok := h.requireFloat(c, "min_lng")
	if !ok {
		return
	}
	maxLat, ok := h.requireFloat(c, "max_lat")
	if !ok {
		return
	}
	maxLng, ok := h.requireFloat(c, "max_lng")
	if !ok {
		return
	}

	dateRaw, exists := c.GetQuery("date")
	if !exists || dateRaw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameter", "parameter": "date"})
		return
	}
	date, err := entities.ParseDate(dateRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid date format, expected YYYY-MM-DD",
			"value": dateRaw,
		})
		return
	}

	minRating, ok := h.optionalFloat(c, "min_rating", 0)
	if !ok {
		return
	}
	maxPrice, ok := h.optionalFloat(c, "max_price", math.Inf(1))
	if !ok {
		return
	}

	box := entities.BoundingBox{
		MinLat: minLat,
		MinLon: minLng,
		MaxLat: maxLat,
		MaxLon: maxLng,
	}
	if err := box.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.queryService.SearchRectangle(c.Request.Context(), services.RectangleQuery{
		Box:       box,
		Date:      date,
		MinRating: minRating,
		MaxPrice:  maxPrice,
	})
	if err != nil {
		h.internalError(c, "search rectangle", err)
		return
	}
	if h.rectangleCap > 0 && len(results) > h.rectangleCap {
		results = results[:h.rectangleCap]
	}
	c.JSON(http.StatusOK, results)
}

// NearestHigher handles GET /api/nearest_higher/:id
func (h *QueryHandler) NearestHigher(c *gin.Context) {
	idRaw := c.Param("id")
	refID, err := strconv.ParseInt(idRaw, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid parameter",
			"parameter": "id",
			"value":     idRaw,
		})
		return
	}

	result, err := h.queryService.NearestHigherRated(c.Request.Context(), refID)
	switch {
	case errors.Is(err, services.ErrListingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "reference listing not found"})
	case errors.Is(err, services.ErrNoHigherRated):
		c.JSON(http.StatusNotFound, gin.H{"error": "no higher-rated neighbor found"})
	case err != nil:
		h.internalError(c, "nearest higher-rated", err)
	default:
		c.JSON(http.StatusOK, result)
	}
}

// requireFloat parses a mandatory float query parameter, responding with
// the parameter name on failure per the boundary contract.
func (h *QueryHandler) requireFloat(c *gin.Context, name string) (float64, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameter", "parameter": name})
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid parameter",
			"parameter": name,
			"value":     raw,
		})
		return 0, false
	}
	return v, true
}

func (h *QueryHandler) optionalFloat(c *gin.Context, name string, def float64) (float64, bool) {
	raw, exists := c.GetQuery(name)
	if !exists || raw == "" {
		return def, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "invalid parameter",
			"parameter": name,
			"value":     raw,
		})
		return 0, false
	}
	return v, true
}

// internalError logs full detail server-side and returns a generic message;
// internal failures never leak detail to clients.
func (h *QueryHandler) internalError(c *gin.Context, op string, err error) {
	h.logger.Error("internal error",
		"op", op,
		"error", err,
		"request_id", c.GetString(middleware.RequestIDKey),
	)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
