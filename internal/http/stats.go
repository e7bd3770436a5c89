package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/stats"
)

// StatsProvider computes review statistics over a time window.
type StatsProvider interface {
	Summary(userID uint, from, to time.Time) (*stats.Summary, error)
}

type StatsController struct {
	aggregator StatsProvider
}

func NewStatsController(aggregator StatsProvider) *StatsController {
	return &StatsController{aggregator: aggregator}
}

// Summary returns aggregate review statistics for a time window.
// The window defaults to the last 30 days; "days" or RFC3339
// "from"/"to" query parameters override it.
// GET /api/stats
func (sc *StatsController) Summary(c *gin.Context) {
	userID := requestUserID(c)
	now := time.Now()

	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("days"); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days <= 0 {
			respondBadRequest(c, "days must be a positive integer")
			return
		}
		from = now.AddDate(0, 0, -days)
	}
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "from must be an RFC3339 timestamp")
			return
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondBadRequest(c, "to must be an RFC3339 timestamp")
			return
		}
		to = parsed
	}
	if to.Before(from) {
		respondBadRequest(c, "window end precedes its start")
		return
	}

	summary, err := sc.aggregator.Summary(userID, from, to)
	if err != nil {
		respondInternalError(c, err, "compute stats")
		return
	}

	c.JSON(http.StatusOK, summary)
}
