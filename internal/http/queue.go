package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
	"github.com/groking122/readingcompanion-sub001/internal/srs"
)

type QueueController struct {
	queue *queue.Queue
}

func NewQueueController(q *queue.Queue) *QueueController {
	return &QueueController{queue: q}
}

// EnqueueRequest is the request body for queueing an attempt locally.
type EnqueueRequest struct {
	VocabularyID uint                  `json:"vocabulary_id" binding:"required"`
	Quality      *int                  `json:"quality" binding:"required"`
	ExerciseType entities.ExerciseType `json:"exercise_type,omitempty"`
	ResponseMs   int                   `json:"response_ms,omitempty"`
}

// Enqueue stores an attempt in the durable offline queue.
// POST /api/queue
func (qc *QueueController) Enqueue(c *gin.Context) {
	var req EnqueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	entry, err := qc.queue.Enqueue(requestUserID(c), req.VocabularyID, *req.Quality, req.ExerciseType, req.ResponseMs)
	if err != nil {
		switch {
		case errors.Is(err, srs.ErrInvalidQuality), errors.Is(err, queue.ErrMissingVocabulary):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "enqueue attempt")
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Status reports the queue size and the queued entries.
// GET /api/queue
func (qc *QueueController) Status(c *gin.Context) {
	size, err := qc.queue.Size()
	if err != nil {
		respondInternalError(c, err, "queue size")
		return
	}

	entries, err := qc.queue.Pending()
	if err != nil {
		respondInternalError(c, err, "list queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"size":    size,
		"online":  qc.queue.IsOnline(),
		"entries": entries,
	})
}

// Drain submits all queued attempts to the scheduling service.
// POST /api/queue/drain
func (qc *QueueController) Drain(c *gin.Context) {
	result, err := qc.queue.Drain(c.Request.Context())
	if err != nil {
		if errors.Is(err, queue.ErrDrainInProgress) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "drain queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"synced": result.Synced,
		"failed": result.Failed,
	})
}

// Discard removes a queued attempt without submitting it.
// DELETE /api/queue/:localID
func (qc *QueueController) Discard(c *gin.Context) {
	localID := c.Param("localID")
	if localID == "" {
		respondBadRequest(c, "missing local id")
		return
	}

	if err := qc.queue.Discard(localID); err != nil {
		if errors.Is(err, queue.ErrNotQueued) {
			respondNotFound(c, "queued attempt")
			return
		}
		respondInternalError(c, err, "discard queued attempt")
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "queued attempt discarded"})
}
