package handlers

import (
	"net/http"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// LikeHandler handles HTTP requests related to likes
type LikeHandler struct {
	likeRepository         repositories.LikeRepository
	postRepository         repositories.PostRepository // To update like counts in posts
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewLikeHandler creates a new LikeHandler
func NewLikeHandler(
	likeRepo repositories.LikeRepository,
	postRepo repositories.PostRepository,
	notifRepo repositories.NotificationRepository,
	logger *zap.Logger,
) *LikeHandler {
	return &LikeHandler{
		likeRepository:         likeRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/like", h.UnlikePost)
}

// LikePost likes a post. Liking an already liked post succeeds without
// changing the count, so a retried request cannot inflate it.
func (h *LikeHandler) LikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	created, err := h.likeRepository.CreateLike(postID, userID)
	if err != nil {
		return httpError(err)
	}

	count := post.LikesCount
	if created {
		if count, err = h.postRepository.IncrementLikesCount(ctx, postID, 1); err != nil {
			return httpError(err)
		}
		if post.AuthorID != userID {
			notify(h.notificationRepository, h.logger, &models.Notification{
				Type:        models.NotificationLike,
				ActorID:     userID,
				RecipientID: post.AuthorID,
				TargetID:    postID,
				Message:     "liked your post",
			})
		}
	}

	return c.JSON(http.StatusOK, models.LikeStatus{PostID: postID, Liked: true, LikesCount: count})
}

// UnlikePost removes a like. Unliking a post that is not liked succeeds.
func (h *LikeHandler) UnlikePost(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	removed, err := h.likeRepository.DeleteLike(postID, userID)
	if err != nil {
		return httpError(err)
	}

	count := post.LikesCount
	if removed {
		if count, err = h.postRepository.IncrementLikesCount(ctx, postID, -1); err != nil {
			return httpError(err)
		}
	}

	return c.JSON(http.StatusOK, models.LikeStatus{PostID: postID, Liked: false, LikesCount: count})
}

// notify stores a notification; failures are logged and never fail the request.
func notify(repo repositories.NotificationRepository, logger *zap.Logger, n *models.Notification) {
	if repo == nil {
		return
	}
	if err := repo.CreateNotification(n); err != nil {
		logger.Warn("failed to store notification",
			zap.String("type", n.Type),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err))
	}
}
