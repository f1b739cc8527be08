package handlers

import (
	"net/http"
	"strings"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/storage"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const maxMediaBytes = 10 << 20

// MediaHandler accepts photo uploads and stores them in the media store
type MediaHandler struct {
	store  storage.MediaStore
	logger *zap.Logger
}

// NewMediaHandler creates a new MediaHandler. store may be nil when no
// bucket is configured; uploads then answer 503.
func NewMediaHandler(store storage.MediaStore, logger *zap.Logger) *MediaHandler {
	return &MediaHandler{store: store, logger: logger}
}

// RegisterMediaRoutes registers media routes
func (h *MediaHandler) RegisterMediaRoutes(g *echo.Group) {
	g.POST("/media", h.Upload)
}

// Upload stores the multipart "file" field and returns its public URL
func (h *MediaHandler) Upload(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	if h.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media storage is not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file")
	}
	if fh.Size > maxMediaBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File is too large")
	}

	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") && !strings.HasPrefix(contentType, "video/") {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Only images and videos are accepted")
	}

	src, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable file")
	}
	defer src.Close()

	url, err := h.store.Upload(c.Request().Context(), "posts/"+userID, fh.Filename, contentType, src)
	if err != nil {
		h.logger.Error("media upload failed", zap.String("user_id", userID), zap.Error(err))
		return echo.NewHTTPError(http.StatusBadGateway, "Upload failed")
	}

	return c.JSON(http.StatusCreated, echo.Map{"url": url})
}
