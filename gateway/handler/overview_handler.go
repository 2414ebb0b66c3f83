package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/RigelNana/gazotheque/pkg/inventory"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// OverviewHandler serves the dashboard home widgets. Each widget is fetched
// once and only refetched on ?refresh=true.
type OverviewHandler struct {
	overview *inventory.Overview
	logger   *logrus.Logger
}

func NewOverviewHandler(overview *inventory.Overview, logger *logrus.Logger) *OverviewHandler {
	return &OverviewHandler{overview: overview, logger: logger}
}

// TotalCount GET /api/overview/total
func (h *OverviewHandler) TotalCount(c *gin.Context) {
	respondPanel(c, h.logger, "total", h.overview.Total)
}

// CountByLab GET /api/overview/labs
func (h *OverviewHandler) CountByLab(c *gin.Context) {
	respondPanel(c, h.logger, "labs", h.overview.LabCounts)
}

// BarChart GET /api/overview/yearly
func (h *OverviewHandler) BarChart(c *gin.Context) {
	respondPanel(c, h.logger, "yearly", h.overview.YearlyBars)
}

// Overview renders all widgets at once; a failing widget does not hide the
// others.
// GET /api/overview
func (h *OverviewHandler) Overview(c *gin.Context) {
	ctx := upstreamContext(c)
	refresh := c.Query("refresh") == "true"
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"total":  panelBody(h.logger, "total", load(ctx, h.overview.Total, refresh)),
			"labs":   panelBody(h.logger, "labs", load(ctx, h.overview.LabCounts, refresh)),
			"yearly": panelBody(h.logger, "yearly", load(ctx, h.overview.YearlyBars, refresh)),
		},
	})
}

func load[T any](ctx context.Context, p *inventory.Panel[T], refresh bool) inventory.PanelState[T] {
	if refresh {
		return p.Refresh(ctx)
	}
	return p.Get(ctx)
}

func respondPanel[T any](c *gin.Context, logger *logrus.Logger, name string, p *inventory.Panel[T]) {
	state := load(upstreamContext(c), p, c.Query("refresh") == "true")
	body := panelBody(logger, name, state)
	if state.Err != nil {
		c.JSON(http.StatusBadGateway, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// panelBody is the inline widget payload. On failure the widget shows the
// error with a retry action instead of data.
func panelBody[T any](logger *logrus.Logger, name string, state inventory.PanelState[T]) gin.H {
	if state.Err != nil {
		logger.WithError(state.Err).WithField("panel", name).Warn("overview fetch failed")
		return gin.H{"success": false, "error": genericFailure, "retry": true}
	}
	var fetchedAt *time.Time
	if !state.FetchedAt.IsZero() {
		fetchedAt = &state.FetchedAt
	}
	return gin.H{"success": true, "data": state.Data, "fetched_at": fetchedAt}
}
