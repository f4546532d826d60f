// analytics.go
package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/analysis"
	"github.com/movinigamage/FeedBack-Lense-sub000/internal/timeseries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	log      *zap.Logger
	service  *analysis.Service
	trends   *timeseries.Aggregator
	defaults analysis.Options
}

// NewAnalyticsHandler builds the handler. defaults supplies deployment-wide
// settings (keyword cap, extra stopwords from the stopword file) that
// individual requests can extend but not remove.
func NewAnalyticsHandler(log *zap.Logger, service *analysis.Service, trends *timeseries.Aggregator, defaults analysis.Options) *AnalyticsHandler {
	return &AnalyticsHandler{log: log, service: service, trends: trends, defaults: defaults}
}

// GetAnalysis runs the full text-analysis pipeline for a survey.
// GET /api/surveys/:id/analysis?top_n=20&style=report&stopwords=foo,bar
func (h *AnalyticsHandler) GetAnalysis(c *gin.Context) {
	surveyID, ok := surveyIDParam(c)
	if !ok {
		return
	}

	opts := analysis.Options{
		TopN:           h.defaults.TopN,
		ExtraStopwords: h.defaults.ExtraStopwords,
		SummaryStyle:   analysis.SummaryStyle(c.DefaultQuery("style", string(analysis.StyleReport))),
	}
	if topN, err := strconv.Atoi(c.DefaultQuery("top_n", "0")); err == nil && topN > 0 {
		opts.TopN = topN
	}
	if raw := c.Query("stopwords"); raw != "" {
		opts.ExtraStopwords = append(append([]string{}, opts.ExtraStopwords...), strings.Split(raw, ",")...)
	}

	result, err := h.service.Analyze(c.Request.Context(), surveyID, opts)
	if err != nil {
		h.log.Error("Survey analysis failed", zap.String("surveyID", surveyID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to analyze survey"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetUpdates is the lightweight freshness check behind live polling.
// GET /api/surveys/:id/updates?since=2026-08-01T00:00:00Z
func (h *AnalyticsHandler) GetUpdates(c *gin.Context) {
	surveyID, ok := surveyIDParam(c)
	if !ok {
		return
	}

	var since *time.Time
	if raw := c.Query("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid since timestamp"})
			return
		}
		since = &t
	}

	check, err := h.service.PollUpdates(c.Request.Context(), surveyID, since)
	if err != nil {
		h.log.Error("Poll update check failed", zap.String("surveyID", surveyID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check for updates"})
		return
	}
	c.JSON(http.StatusOK, check)
}

// GetTrend returns the response-volume series for a survey.
// GET /api/surveys/:id/trend?interval=day&timezone=UTC&start=...&end=...&fill=1
func (h *AnalyticsHandler) GetTrend(c *gin.Context) {
	surveyID, ok := surveyIDParam(c)
	if !ok {
		return
	}

	req := trendRequest(c)
	buckets, err := h.trends.Series(c.Request.Context(), surveyID, req)
	if err != nil {
		h.log.Error("Trend aggregation failed", zap.String("surveyID", surveyID.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate trend data"})
		return
	}

	if c.Query("fill") == "1" || c.Query("fill") == "true" {
		buckets = timeseries.FillGaps(buckets, req.Interval, req.Location)
	}
	c.JSON(http.StatusOK, buckets)
}

func surveyIDParam(c *gin.Context) (uuid.UUID, bool) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid survey id"})
		return uuid.Nil, false
	}
	return surveyID, true
}

func trendRequest(c *gin.Context) timeseries.Request {
	var start, end *time.Time
	if t, err := time.Parse(time.RFC3339, c.Query("start")); err == nil {
		start = &t
	}
	if t, err := time.Parse(time.RFC3339, c.Query("end")); err == nil {
		end = &t
	}
	return timeseries.NormalizeRequest(c.Query("interval"), c.DefaultQuery("timezone", "UTC"), start, end)
}
