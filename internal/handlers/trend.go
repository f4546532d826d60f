// trend.go
package handlers

import (
	"net/http"

	"github.com/movinigamage/FeedBack-Lense-sub000/internal/timeseries"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"go.uber.org/zap"
)

const trendIntervalSessionKey = "trendInterval"

type TrendHandler struct {
	log    *zap.Logger
	trends *timeseries.Aggregator
}

func NewTrendHandler(log *zap.Logger, trends *timeseries.Aggregator) *TrendHandler {
	return &TrendHandler{log: log, trends: trends}
}

// ShowTrendChart renders the response-volume trend as an HTML chart page.
// The selected interval is remembered in the session so revisiting the page
// keeps the last choice.
func (h *TrendHandler) ShowTrendChart(c *gin.Context) {
	surveyID, ok := surveyIDParam(c)
	if !ok {
		return
	}

	session := sessions.Default(c)
	interval := c.Query("interval")
	if interval == "" {
		if saved, ok := session.Get(trendIntervalSessionKey).(string); ok {
			interval = saved
		}
	} else {
		session.Set(trendIntervalSessionKey, interval)
		if err := session.Save(); err != nil {
			h.log.Warn("Failed to save trend interval preference", zap.Error(err))
		}
	}

	req := timeseries.NormalizeRequest(interval, c.DefaultQuery("timezone", "UTC"), nil, nil)
	buckets, err := h.trends.Series(c.Request.Context(), surveyID, req)
	if err != nil {
		h.log.Error("Trend aggregation failed", zap.String("surveyID", surveyID.String()), zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to load trend data")
		return
	}

	// Dense series so charts don't show misleading gaps.
	buckets = timeseries.FillGaps(buckets, req.Interval, req.Location)

	line := generateTrendChart(buckets, string(req.Interval))
	if err := line.Render(c.Writer); err != nil {
		h.log.Error("Failed to render trend chart", zap.Error(err))
	}
}

func generateTrendChart(buckets []timeseries.Bucket, interval string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Responses Over Time",
			Subtitle: "per " + interval,
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "time",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
	)

	items := make([]opts.LineData, 0, len(buckets))
	for _, bucket := range buckets {
		items = append(items, opts.LineData{Value: []interface{}{bucket.PeriodStart, bucket.ResponseCount}})
	}

	line.AddSeries("Responses", items).SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	return line
}
