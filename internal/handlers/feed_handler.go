package handlers

import (
	"net/http"
	"strconv"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	defaultFeedLimit = 10
	maxFeedLimit     = 50
)

// FeedHandler handles feed-related HTTP requests
type FeedHandler struct {
	postRepository repositories.PostRepository
	enricher       *postEnricher
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository: postRepo,
		enricher: &postEnricher{
			userRepository:   userRepo,
			likeRepository:   likeRepo,
			followRepository: followRepo,
		},
	}
}

// RegisterFeedRoutes registers feed-related routes
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group) {
	g.GET("/feed", h.GetFeed)
}

// GetFeed returns one page of enriched posts, newest first. The page is
// continued by passing next_cursor back as ?cursor=.
func (h *FeedHandler) GetFeed(c echo.Context) error {
	viewerID, err := currentUserID(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 1 || limit > maxFeedLimit {
		limit = defaultFeedLimit
	}

	posts, next, err := h.postRepository.GetFeedPage(c.Request().Context(), c.QueryParam("cursor"), int64(limit))
	if err != nil {
		return httpError(err)
	}

	details, err := h.enricher.enrich(viewerID, posts)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, models.FeedPage{Posts: details, NextCursor: next})
}
