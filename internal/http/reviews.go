package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/review"
	"github.com/groking122/readingcompanion-sub001/internal/srs"
)

// ReviewSubmitter defines the scheduling operations the reviews
// controller needs.
type ReviewSubmitter interface {
	Submit(ctx context.Context, attempt entities.ReviewAttempt) (*entities.ReviewAttempt, error)
	DueCount(userID uint) (int64, error)
	DueCards(userID uint, limit int) ([]entities.Card, error)
}

type ReviewsController struct {
	service ReviewSubmitter
}

func NewReviewsController(service ReviewSubmitter) *ReviewsController {
	return &ReviewsController{service: service}
}

// SubmitAttemptRequest is the request body for submitting a review attempt.
type SubmitAttemptRequest struct {
	VocabularyID    uint                  `json:"vocabulary_id" binding:"required"`
	Quality         *int                  `json:"quality" binding:"required"`
	ExerciseType    entities.ExerciseType `json:"exercise_type,omitempty"`
	ResponseMs      int                   `json:"response_ms,omitempty"`
	ClientAttemptID string                `json:"client_attempt_id,omitempty"`
}

// SubmitAttempt records a review attempt and reschedules its card.
// POST /api/reviews
func (rc *ReviewsController) SubmitAttempt(c *gin.Context) {
	var req SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	attempt := entities.ReviewAttempt{
		UserID:          requestUserID(c),
		VocabularyID:    req.VocabularyID,
		Quality:         *req.Quality,
		ExerciseType:    req.ExerciseType,
		ResponseMs:      req.ResponseMs,
		ClientAttemptID: req.ClientAttemptID,
	}

	saved, err := rc.service.Submit(c.Request.Context(), attempt)
	if err != nil {
		switch {
		case errors.Is(err, srs.ErrInvalidQuality), errors.Is(err, review.ErrMissingVocabulary):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "submit attempt")
		}
		return
	}

	c.JSON(http.StatusCreated, saved)
}

// DueCards returns the cards currently due for review, most overdue first.
// GET /api/reviews/due
func (rc *ReviewsController) DueCards(c *gin.Context) {
	userID := requestUserID(c)

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if l, err := strconv.Atoi(raw); err == nil && l > 0 && l <= 200 {
			limit = l
		}
	}

	count, err := rc.service.DueCount(userID)
	if err != nil {
		respondInternalError(c, err, "count due cards")
		return
	}

	cards, err := rc.service.DueCards(userID, limit)
	if err != nil {
		respondInternalError(c, err, "list due cards")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"due":   count,
		"cards": cards,
		"limit": limit,
	})
}
