package handlers

import (
	"net/http"
	"strings"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	enricher          *postEnricher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	commentRepo repositories.CommentRepository,
	userRepo repositories.UserRepository,
	likeRepo repositories.LikeRepository,
	followRepo repositories.FollowRepository,
) *PostHandler {
	return &PostHandler{
		postRepository:    postRepo,
		commentRepository: commentRepo,
		enricher: &postEnricher{
			userRepository:   userRepo,
			likeRepository:   likeRepo,
			followRepository: followRepo,
		},
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
}

// CreatePost creates a new post. A post needs at least one photo or a
// non-blank caption.
func (h *PostHandler) CreatePost(c echo.Context) error {
	authorID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !req.HasContent() {
		return echo.NewHTTPError(http.StatusBadRequest, "A post needs a photo or a caption")
	}

	post := &models.Post{
		AuthorID:     authorID,
		MediaURLs:    req.MediaURLs,
		Caption:      strings.TrimSpace(req.Caption),
		LocationName: req.LocationName,
		Hashtags:     models.NormalizeHashtags(req.Hashtags, req.Caption),
	}

	if err := h.postRepository.CreatePost(c.Request().Context(), post); err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, post)
}

// GetPost returns a post's details with its comments
func (h *PostHandler) GetPost(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}
	postID := c.Param("id")

	post, err := h.postRepository.GetPostByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(err)
	}

	details, err := h.enricher.enrich(viewerID, []models.Post{*post})
	if err != nil {
		return httpError(err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.PostThread{Post: details[0], Comments: comments})
}
