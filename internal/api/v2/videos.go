// videos.go: video upload, listing and clip retrieval
package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/crowdwatch/crowdwatch-go/internal/datastore"
)

// Defaults for video listing.
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// initVideoRoutes registers the video-related routes
func (c *Controller) initVideoRoutes() {
	c.Group.POST("/videos", c.UploadVideo)
	c.Group.GET("/videos", c.ListVideos)
	c.Group.GET("/videos/:id", c.GetVideo)
	c.Group.GET("/videos/:id/clip", c.GetVideoClip)
}

// VideoResponse is the representation of a video record served by the API.
type VideoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId,omitempty"`
	Title       string    `json:"title"`
	ContentType string    `json:"contentType,omitempty"`
	Size        int64     `json:"size"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func videoResponse(v *datastore.Video) VideoResponse {
	return VideoResponse{
		ID:          v.ID,
		UserID:      v.UserID,
		Title:       v.Title,
		ContentType: v.ContentType,
		Size:        v.Size,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

// UploadVideo accepts a multipart video upload, stores the clip and creates
// the video record in processing state.
func (c *Controller) UploadVideo(ctx echo.Context) error {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.HandleError(ctx, err, "Video file is required", http.StatusBadRequest)
	}

	title := ctx.FormValue("title")
	if title == "" {
		title = fileHeader.Filename
	}
	userID := ctx.FormValue("userId")

	src, err := fileHeader.Open()
	if err != nil {
		return c.HandleError(ctx, err, "Failed to open uploaded file", http.StatusBadRequest)
	}
	defer src.Close()

	clipPath, size, err := c.Store.Put(ctx.Request().Context(), fileHeader.Filename, src)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to store video clip", 0)
	}

	video := &datastore.Video{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		ClipPath:    clipPath,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        size,
		Status:      datastore.VideoStatusProcessing,
	}

	if err := c.DS.SaveVideo(video); err != nil {
		// The record is the source of truth; remove the orphaned clip.
		if rmErr := c.Store.Remove(ctx.Request().Context(), clipPath); rmErr != nil {
			c.logger.Printf("Failed to remove orphaned clip %s: %v", clipPath, rmErr)
		}
		return c.HandleError(ctx, err, "Failed to save video record", 0)
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Video uploaded",
		"video_id", video.ID,
		"title", video.Title,
		"size", video.Size,
	)

	return ctx.JSON(http.StatusCreated, videoResponse(video))
}

// ListVideos returns stored videos, newest first, with their latest analysis
// when one exists.
func (c *Controller) ListVideos(ctx echo.Context) error {
	limit := defaultListLimit
	if v := ctx.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			return c.HandleError(ctx, err, "Invalid limit value", http.StatusBadRequest)
		}
		limit = min(parsed, maxListLimit)
	}

	offset := 0
	if v := ctx.QueryParam("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return c.HandleError(ctx, err, "Invalid offset value", http.StatusBadRequest)
		}
		offset = parsed
	}

	videos, err := c.DS.ListVideosWithAnalysis(limit, offset)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list videos", 0)
	}

	return ctx.JSON(http.StatusOK, videos)
}

// GetVideo returns a single video record.
func (c *Controller) GetVideo(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.HandleError(ctx, nil, "Video ID is required", http.StatusBadRequest)
	}

	video, err := c.DS.GetVideo(id)
	if err != nil {
		return c.HandleError(ctx, err, "Video not found", 0)
	}

	return ctx.JSON(http.StatusOK, videoResponse(&video))
}

// GetVideoClip streams the stored clip of a video.
func (c *Controller) GetVideoClip(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.HandleError(ctx, nil, "Video ID is required", http.StatusBadRequest)
	}

	video, err := c.DS.GetVideo(id)
	if err != nil {
		return c.HandleError(ctx, err, "Video not found", 0)
	}

	clip, err := c.Store.Open(ctx.Request().Context(), video.ClipPath)
	if err != nil {
		return c.HandleError(ctx, err, "Video clip not found", 0)
	}
	defer clip.Close()

	contentType := video.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return ctx.Stream(http.StatusOK, contentType, clip)
}
