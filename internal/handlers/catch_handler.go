package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CatchHandler handles catch logging and spot management
type CatchHandler struct {
	catchRepository repositories.CatchRepository
}

// NewCatchHandler creates a new CatchHandler
func NewCatchHandler(catchRepo repositories.CatchRepository) *CatchHandler {
	return &CatchHandler{catchRepository: catchRepo}
}

// RegisterCatchRoutes registers catch and spot routes
func (h *CatchHandler) RegisterCatchRoutes(g *echo.Group) {
	g.POST("/catches", h.CreateCatch)
	g.POST("/spots", h.CreateSpot)
	g.GET("/spots", h.ListSpots)
}

// CreateCatch logs a catch at an existing spot
func (h *CatchHandler) CreateCatch(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreateCatchRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	if _, err := h.catchRepository.GetSpot(req.SpotID); err != nil {
		return httpError(err)
	}

	caughtAt := time.Now().UTC()
	if req.CaughtAt != nil {
		if req.CaughtAt.After(caughtAt.Add(time.Minute)) {
			return echo.NewHTTPError(http.StatusBadRequest, "Catch time is in the future")
		}
		caughtAt = req.CaughtAt.UTC()
	}

	catch := &models.Catch{
		UserID:   userID,
		SpotID:   req.SpotID,
		Species:  strings.TrimSpace(req.Species),
		Weight:   req.Weight,
		Unit:     req.Unit,
		PhotoURL: req.PhotoURL,
		CaughtAt: caughtAt,
	}
	if err := h.catchRepository.CreateCatch(catch); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, catch)
}

// CreateSpot registers a new fishing spot
func (h *CatchHandler) CreateSpot(c echo.Context) error {
	var req models.CreateSpotRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	spot := &models.Spot{
		Name:      strings.TrimSpace(req.Name),
		Territory: strings.TrimSpace(req.Territory),
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := h.catchRepository.CreateSpot(spot); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, spot)
}

// ListSpots lists spots, optionally filtered by ?territory=
func (h *CatchHandler) ListSpots(c echo.Context) error {
	spots, err := h.catchRepository.ListSpots(c.QueryParam("territory"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, spots)
}
