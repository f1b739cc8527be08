package handlers

import (
	"net/http"
	"strings"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository      repositories.CommentRepository
	postRepository         repositories.PostRepository // To update comment counts in posts
	notificationRepository repositories.NotificationRepository
	logger                 *zap.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	notifRepo repositories.NotificationRepository,
	logger *zap.Logger,
) *CommentHandler {
	return &CommentHandler{
		commentRepository:      commentRepo,
		postRepository:         postRepo,
		notificationRepository: notifRepo,
		logger:                 logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/posts/:id/comments", h.GetComments)
}

// CreateComment appends a comment to a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	authorID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("id")

	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return httpError(err)
	}

	comment := &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Text:     strings.TrimSpace(req.Text),
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return httpError(err)
	}

	if err := h.postRepository.IncrementCommentsCount(ctx, postID, 1); err != nil {
		h.logger.Warn("failed to bump comment count", zap.String("post_id", postID), zap.Error(err))
	}

	if post.AuthorID != authorID {
		notify(h.notificationRepository, h.logger, &models.Notification{
			Type:        models.NotificationComment,
			ActorID:     authorID,
			RecipientID: post.AuthorID,
			TargetID:    postID,
			Message:     "commented on your post",
		})
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments lists the comments of a post, oldest first
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID := c.Param("id")

	if _, err := h.postRepository.GetPostByID(c.Request().Context(), postID); err != nil {
		return httpError(err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, comments)
}
