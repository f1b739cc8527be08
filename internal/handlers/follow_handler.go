package handlers

import (
	"net/http"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository       repositories.FollowRepository
	userRepository         repositories.UserRepository
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(
	followRepo repositories.FollowRepository,
	userRepo repositories.UserRepository,
	notifRepo repositories.NotificationRepository,
	logger *zap.Logger,
) *FollowHandler {
	return &FollowHandler{
		followRepository:       followRepo,
		userRepository:         userRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user. Following twice is not an error.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")

	if currentID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}
	if _, err := h.userRepository.GetUserByID(targetID); err != nil {
		return httpError(err)
	}

	created, err := h.followRepository.CreateFollow(currentID, targetID)
	if err != nil {
		return httpError(err)
	}

	if created {
		notify(h.notificationRepository, h.logger, &models.Notification{
			Type:        models.NotificationFollow,
			ActorID:     currentID,
			RecipientID: targetID,
			TargetID:    currentID,
			Message:     "started following you",
		})
	}

	return c.JSON(http.StatusOK, models.FollowStatus{UserID: targetID, Following: true})
}

// UnfollowUser unfollows a user. Unfollowing someone not followed is not an error.
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentID, err := currentUserID(c)
	if err != nil {
		return err
	}
	targetID := c.Param("id")

	if _, err := h.followRepository.DeleteFollow(currentID, targetID); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.FollowStatus{UserID: targetID, Following: false})
}
