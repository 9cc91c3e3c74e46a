// analysis.go: analyze endpoint and persisted analysis retrieval
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/crowdwatch/crowdwatch-go/internal/inference"
)

// initAnalysisRoutes registers the analysis-related routes
func (c *Controller) initAnalysisRoutes() {
	c.Group.POST("/analyze", c.AnalyzeVideo)
	c.Group.GET("/videos/:id/analysis", c.GetVideoAnalysis)
}

// AnalyzeRequest is the body of an analyze request.
type AnalyzeRequest struct {
	VideoID string `json:"videoId"`
}

// AnalyzeResponse is returned on a successful analysis.
type AnalyzeResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Results *inference.Result `json:"results"`
}

// AnalysisRecord is the persisted analysis of a video as served by the API.
type AnalysisRecord struct {
	VideoID      string          `json:"videoId"`
	CrowdDensity json.RawMessage `json:"crowdDensity"`
	Incidents    json.RawMessage `json:"incidents"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// AnalyzeVideo runs the analysis pipeline for a stored video and returns the
// generated results.
func (c *Controller) AnalyzeVideo(ctx echo.Context) error {
	var req AnalyzeRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.VideoID == "" {
		return c.HandleError(ctx, nil, "videoId is required", http.StatusBadRequest)
	}

	c.logAPIRequest(ctx, slog.LevelInfo, "Analyzing video", "video_id", req.VideoID)

	result, err := c.Processor.ProcessVideo(ctx.Request().Context(), req.VideoID)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to analyze video", 0)
	}

	return ctx.JSON(http.StatusOK, AnalyzeResponse{
		Success: true,
		Message: "Video analysis complete",
		Results: result,
	})
}

// GetVideoAnalysis returns the latest persisted analysis for a video.
func (c *Controller) GetVideoAnalysis(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return c.HandleError(ctx, nil, "Video ID is required", http.StatusBadRequest)
	}

	// The video must exist even when it has no analysis yet.
	if _, err := c.DS.GetVideo(id); err != nil {
		return c.HandleError(ctx, err, "Video not found", 0)
	}

	record, err := c.DS.GetLatestAnalysis(id)
	if err != nil {
		return c.HandleError(ctx, err, "Analysis not found", 0)
	}

	return ctx.JSON(http.StatusOK, AnalysisRecord{
		VideoID:      record.VideoID,
		CrowdDensity: json.RawMessage(record.CrowdDensity),
		Incidents:    json.RawMessage(record.Incidents),
		CreatedAt:    record.CreatedAt,
	})
}
