package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/apperr"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/leaderboard"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const recentCatchesLimit = 10

// ProfileHandler serves profile bundles and profile edits
type ProfileHandler struct {
	userRepository  repositories.UserRepository
	catchRepository repositories.CatchRepository
	logger          *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(userRepo repositories.UserRepository, catchRepo repositories.CatchRepository, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{userRepository: userRepo, catchRepository: catchRepo, logger: logger}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *ProfileHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetOwnProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id/profile", h.GetUserProfile)
}

// GetOwnProfile returns the caller's profile bundle
func (h *ProfileHandler) GetOwnProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	return h.respondProfile(c, userID, true)
}

// GetUserProfile returns another user's public profile bundle
func (h *ProfileHandler) GetUserProfile(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	return h.respondProfile(c, id, id == viewerID)
}

func (h *ProfileHandler) respondProfile(c echo.Context, userID string, own bool) error {
	bundle, err := h.buildBundle(userID)
	if err != nil {
		return httpError(err)
	}
	if !own {
		bundle.User.Email = ""
	}
	return c.JSON(http.StatusOK, bundle)
}

// buildBundle loads the user and then the catch-derived sections
// concurrently. Only a missing user fails the bundle; a section that cannot
// be computed is listed in Degraded.
func (h *ProfileHandler) buildBundle(userID string) (*models.ProfileBundle, error) {
	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	// The tasks return their errors so Wait reports a failure, but the
	// group carries no context: one failed section must not cancel the rest.
	var (
		own, area, recent          []models.Catch
		ownErr, areaErr, recentErr error
		g                          errgroup.Group
	)
	g.Go(func() error {
		own, ownErr = h.catchRepository.GetCatchesByUser(userID)
		return ownErr
	})
	g.Go(func() error {
		area, areaErr = h.catchRepository.GetCatchesAtUserSpots(userID)
		return areaErr
	})
	g.Go(func() error {
		recent, recentErr = h.catchRepository.GetRecentCatches(userID, recentCatchesLimit)
		return recentErr
	})
	failed := g.Wait()

	var spots map[string]models.Spot
	spotsErr := areaErr
	if areaErr == nil {
		spots, spotsErr = h.catchRepository.GetSpotsByIDs(spotIDs(area))
		if spotsErr != nil {
			failed = spotsErr
		}
	}

	bundle := &models.ProfileBundle{
		User:          *user,
		CrownedSpots:  []models.CrownedSpot{},
		RecentCatches: []models.Catch{},
	}

	if err := errors.Join(ownErr, spotsErr); err != nil {
		h.degrade(bundle, models.SectionStats, userID, err)
	} else {
		stats := leaderboard.Stats(userID, own, area, spots)
		bundle.Stats = &stats
	}

	if spotsErr != nil {
		h.degrade(bundle, models.SectionCrownedSpots, userID, spotsErr)
	} else {
		bundle.CrownedSpots = leaderboard.CrownedSpots(userID, area, spots)
	}

	if recentErr != nil {
		h.degrade(bundle, models.SectionRecentCatches, userID, recentErr)
	} else {
		bundle.RecentCatches = recent
	}

	if failed != nil {
		h.logger.Warn("profile served degraded",
			zap.String("user_id", userID),
			zap.Strings("sections", bundle.Degraded),
			zap.Error(failed))
	}
	return bundle, nil
}

func (h *ProfileHandler) degrade(b *models.ProfileBundle, section, userID string, err error) {
	b.Degraded = append(b.Degraded, section)
	h.logger.Debug("profile section unavailable",
		zap.String("section", section),
		zap.String("user_id", userID),
		zap.Error(err))
}

func spotIDs(catches []models.Catch) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0, len(catches))
	for _, c := range catches {
		if !seen[c.SpotID] {
			seen[c.SpotID] = true
			ids = append(ids, c.SpotID)
		}
	}
	return ids
}

// UpdateProfile updates the caller's editable fields: username, bio and home location.
func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.UpdateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return httpError(err)
	}

	if req.Username != nil && !strings.EqualFold(*req.Username, user.Username) {
		existing, err := h.userRepository.GetUserByUsername(*req.Username)
		if err == nil && existing.ID != user.ID {
			return echo.NewHTTPError(http.StatusConflict, "Username is already taken")
		}
		if err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return httpError(err)
		}
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = trimmedOrNil(*req.Bio)
	}
	if req.HomeLocation != nil {
		user.HomeLocation = trimmedOrNil(*req.HomeLocation)
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func trimmedOrNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
