package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/database"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// HealthController reports the state of the engine's durable resources:
// the main database and the offline review queue.
type HealthController struct {
	db      *database.Database
	queue   *queue.Queue
	version string
}

func NewHealthController(db *database.Database, q *queue.Queue, version string) *HealthController {
	return &HealthController{
		db:      db,
		queue:   q,
		version: version,
	}
}

func (h *HealthController) Status(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Check database connectivity
	if h.db != nil {
		sqlDB, err := h.db.DB.DB()
		if err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else if err := sqlDB.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	// Check the offline queue store and report its backlog
	if h.queue != nil {
		size, err := h.queue.Size()
		if err != nil {
			checks["offline_queue"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["offline_queue"] = fmt.Sprintf("ok (%d queued)", size)
		}
		if h.queue.IsOnline() {
			checks["connectivity"] = "online"
		} else {
			checks["connectivity"] = "offline"
		}
	} else {
		checks["offline_queue"] = "not configured"
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
