package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/j-veylop/points-dashboard-tui/internal/aggregate"
	"github.com/j-veylop/points-dashboard-tui/internal/config"
	"github.com/j-veylop/points-dashboard-tui/internal/logger"
	"github.com/j-veylop/points-dashboard-tui/internal/models"
	"github.com/j-veylop/points-dashboard-tui/internal/period"
	"github.com/j-veylop/points-dashboard-tui/internal/services"
	"github.com/j-veylop/points-dashboard-tui/internal/services/syncer"
	"github.com/j-veylop/points-dashboard-tui/internal/stats"
	"github.com/j-veylop/points-dashboard-tui/internal/ui/webchart"
)

const (
	defaultRecordLimit = 20

	// maxBodyBytes bounds the JSON bodies of the computation endpoints.
	maxBodyBytes = 8 << 20
	// maxAggregateBuckets bounds the gap-filled series /api/aggregate builds.
	maxAggregateBuckets = 100_000
)

type fetchRequest struct {
	Cookie          string `json:"cookie" binding:"required"`
	FormKey         string `json:"form_key" binding:"required"`
	TChannel        string `json:"tchannel" binding:"required"`
	Revision        string `json:"revision"`
	TagID           string `json:"tag_id"`
	SubscriptionDay int    `json:"subscription_day"`
	FullSync        bool   `json:"full_sync"`
}

// configPayload is the wire form of the sync config.
type configPayload struct {
	Cookie            string `json:"cookie"`
	FormKey           string `json:"form_key"`
	TChannel          string `json:"tchannel"`
	Revision          string `json:"revision"`
	TagID             string `json:"tag_id"`
	SubscriptionDay   int    `json:"subscription_day"`
	AutoFetchInterval int    `json:"auto_fetch_interval"`
	AutoFetchEnabled  bool   `json:"auto_fetch_enabled"`
}

func toPayload(cfg models.SyncConfig) configPayload {
	return configPayload{
		Cookie:            cfg.Cookie,
		FormKey:           cfg.FormKey,
		TChannel:          cfg.TChannel,
		Revision:          cfg.Revision,
		TagID:             cfg.TagID,
		SubscriptionDay:   cfg.SubscriptionDay,
		AutoFetchInterval: cfg.AutoFetchInterval,
		AutoFetchEnabled:  cfg.AutoFetchEnabled,
	}
}

func (p configPayload) syncConfig() models.SyncConfig {
	cfg := models.SyncConfig{
		Cookie:            strings.TrimSpace(p.Cookie),
		FormKey:           strings.TrimSpace(p.FormKey),
		TChannel:          strings.TrimSpace(p.TChannel),
		Revision:          strings.TrimSpace(p.Revision),
		TagID:             strings.TrimSpace(p.TagID),
		SubscriptionDay:   period.ClampDay(p.SubscriptionDay),
		AutoFetchInterval: p.AutoFetchInterval,
		AutoFetchEnabled:  p.AutoFetchEnabled,
	}
	if cfg.Revision == "" {
		cfg.Revision = config.DefaultRevision
	}
	if cfg.TagID == "" {
		cfg.TagID = config.DefaultTagID
	}
	if cfg.AutoFetchInterval <= 0 {
		cfg.AutoFetchInterval = config.DefaultAutoFetchInterval
	}
	return cfg
}

type statPoint struct {
	Timestamp   string  `json:"timestamp"`
	PointCost   float64 `json:"point_cost"`
	RecordCount int     `json:"record_count"`
}

// statPoints projects a series for the chart endpoint. Cumulative mode
// reports running cost and running record count.
func statPoints(series models.Series, mode models.ViewMode) []statPoint {
	out := make([]statPoint, 0, len(series.Points))
	running := 0
	for _, p := range series.Points {
		running += p.RecordCount
		sp := statPoint{Timestamp: p.Timestamp, PointCost: p.CostSum, RecordCount: p.RecordCount}
		if mode == models.ViewCumulative {
			sp.PointCost = p.CumulativeCost
			sp.RecordCount = running
		}
		out = append(out, sp)
	}
	return out
}

// parseOffset reads a period offset; anything unparsable is the current period.
func parseOffset(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func (s *Server) fetch(c *gin.Context) {
	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	creds := models.Credentials{
		Cookie:   req.Cookie,
		FormKey:  req.FormKey,
		TChannel: req.TChannel,
		Revision: req.Revision,
		TagID:    req.TagID,
	}
	res, err := s.backend.SyncWith(c.Request.Context(), creds, req.SubscriptionDay, req.FullSync)
	switch {
	case errors.Is(err, syncer.ErrSuperseded):
		respondError(c, http.StatusConflict, err)
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         res.Message,
		"new_records":     res.NewRecords,
		"updated_records": res.UpdatedRecords,
		"stopped_by":      res.StoppedBy,
	})
}

// seriesQuery reads the shared granularity, type and period parameters.
// It writes a 400 response and reports false for an unknown granularity.
func seriesQuery(c *gin.Context) (models.Granularity, models.ViewMode, int, bool) {
	g, ok := models.LookupGranularity(c.DefaultQuery("granularity", "hour"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid granularity"})
		return g, models.ViewDiscrete, 0, false
	}
	mode := models.ParseViewMode(c.DefaultQuery("type", "discrete"))
	return g, mode, parseOffset(c.Query("period")), true
}

func (s *Server) stats(c *gin.Context) {
	g, mode, offset, ok := seriesQuery(c)
	if !ok {
		return
	}

	series, p, err := s.backend.Series(c.Request.Context(), g, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":         statPoints(series, mode),
		"period_start": p.Start,
		"period_end":   p.End,
		"period_label": p.Label,
	})
}

func (s *Server) records(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRecordLimit)))
	if err != nil || limit <= 0 {
		limit = defaultRecordLimit
	}

	records, err := s.backend.LatestRecords(c.Request.Context(), limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []models.PointsRecord{}
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) botStats(c *gin.Context) {
	bots, err := s.backend.BotStats(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	if bots == nil {
		bots = []models.BotStat{}
	}
	c.JSON(http.StatusOK, bots)
}

func (s *Server) getConfig(c *gin.Context) {
	cfg, err := s.backend.Config(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, toPayload(cfg))
}

func (s *Server) saveConfig(c *gin.Context) {
	var in configPayload
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := s.backend.SaveConfig(c.Request.Context(), in.syncConfig()); err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Config saved"})
}

func (s *Server) autoFetchStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.backend.AutoFetchStatus())
}

func (s *Server) userPointsInfo(c *gin.Context) {
	info, err := s.backend.UserPoints(c.Request.Context())
	switch {
	case errors.Is(err, services.ErrNoConfig):
		c.JSON(http.StatusOK, gin.H{"error": "No config found"})
		return
	case err != nil:
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) getLayout(c *gin.Context) {
	layout, err := s.backend.Layout(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, layout)
}

func (s *Server) saveLayout(c *gin.Context) {
	var update models.LayoutUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	layout, err := s.backend.SaveLayout(c.Request.Context(), update)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Layout saved", "sidebar_width": layout.SidebarWidth})
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
}

// line formats the entry as "[ts] [level] message | Data: {...}".
func (e logEntry) line() string {
	line := fmt.Sprintf("[%s] [%s] %s", e.Timestamp, e.Level, e.Message)
	if e.Data != nil {
		if data, err := json.Marshal(e.Data); err == nil {
			line += " | Data: " + string(data)
		}
	}
	return line + "\n"
}

func (s *Server) logFrontend(c *gin.Context) {
	var entry logEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	s.logMu.Lock()
	_, err := io.WriteString(s.frontendLog, entry.line())
	s.logMu.Unlock()
	if err != nil {
		logger.Error("failed to write frontend log", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"status": "logged"})
}

type aggregateRequest struct {
	Records     []models.UsageRecord `json:"records"`
	Granularity string               `json:"granularity"`
}

// bindLimited decodes a JSON body of at most maxBodyBytes into v and writes
// the error response itself when it fails.
func bindLimited(c *gin.Context, v any) bool {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, http.StatusRequestEntityTooLarge, err)
			return false
		}
		respondError(c, http.StatusBadRequest, err)
		return false
	}
	return true
}

func (s *Server) aggregate(c *gin.Context) {
	var req aggregateRequest
	if !bindLimited(c, &req) {
		return
	}

	g := models.ParseGranularity(req.Granularity)
	if n := aggregate.BucketSpan(req.Records, g, time.Local); n > maxAggregateBuckets {
		respondError(c, http.StatusBadRequest,
			fmt.Errorf("records span %d %s buckets, limit is %d", n, g, maxAggregateBuckets))
		return
	}
	c.JSON(http.StatusOK, aggregate.Aggregate(req.Records, g))
}

type statisticsRequest struct {
	Rows           []models.Row `json:"rows"`
	CostColumn     string       `json:"cost_column"`
	CategoryColumn string       `json:"category_column"`
	SortBy         string       `json:"sort_by"`
	TopN           int          `json:"top_n"`
}

type statisticsResponse struct {
	models.Statistics
	CostColumn     string `json:"cost_column"`
	CategoryColumn string `json:"category_column"`
}

func (s *Server) statistics(c *gin.Context) {
	var req statisticsRequest
	if !bindLimited(c, &req) {
		return
	}

	columns := stats.Columns(req.Rows)
	if req.CostColumn == "" {
		req.CostColumn, _ = stats.FindColumn(columns, stats.CostNeedle)
	}
	if req.CategoryColumn == "" {
		req.CategoryColumn, _ = stats.FindColumn(columns, stats.CategoryNeedle)
	}

	result := stats.Calculate(req.Rows, req.CostColumn, req.CategoryColumn, models.ParseSortKey(req.SortBy), req.TopN)
	c.JSON(http.StatusOK, statisticsResponse{
		Statistics:     result,
		CostColumn:     req.CostColumn,
		CategoryColumn: req.CategoryColumn,
	})
}

func (s *Server) chart(c *gin.Context) {
	g, mode, offset, ok := seriesQuery(c)
	if !ok {
		return
	}

	series, p, err := s.backend.Series(c.Request.Context(), g, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	var buf bytes.Buffer
	err = webchart.Render(&buf, series, webchart.Options{
		Subtitle: fmt.Sprintf("%s · %s · %s", p.Label, g.Label(), mode),
		Mode:     mode,
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
