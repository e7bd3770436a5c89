package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
)

type stubSubmitter struct {
	submitted []entities.ReviewAttempt
	fail      bool
}

func (s *stubSubmitter) Submit(ctx context.Context, attempt entities.ReviewAttempt) error {
	if s.fail {
		return fmt.Errorf("server unavailable")
	}
	s.submitted = append(s.submitted, attempt)
	return nil
}

type stubConnectivity struct{ online bool }

func (s *stubConnectivity) IsOnline() bool { return s.online }

func setupQueueRouter(t *testing.T) (*gin.Engine, *stubSubmitter, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_queue_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	store, err := queue.NewStore(dbPath)
	require.NoError(t, err)

	submitter := &stubSubmitter{}
	q := queue.New(store, submitter, &stubConnectivity{online: true})

	router := NewRouter(RouterConfig{Queue: q, Version: "test"})

	cleanup := func() {
		store.Close()
		os.Remove(dbPath)
	}
	return router, submitter, cleanup
}

func TestQueueEndpoints(t *testing.T) {
	t.Run("enqueue then status", func(t *testing.T) {
		router, _, cleanup := setupQueueRouter(t)
		defer cleanup()

		quality := 4
		w := postJSON(t, router, "/api/queue", EnqueueRequest{VocabularyID: 3, Quality: &quality})
		assert.Equal(t, http.StatusCreated, w.Code)

		var entry entities.QueuedAttempt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.NotEmpty(t, entry.LocalID)
		assert.Equal(t, entities.QueueStatusPending, entry.Status)

		w = httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/queue", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var status struct {
			Size    int64                    `json:"size"`
			Online  bool                     `json:"online"`
			Entries []entities.QueuedAttempt `json:"entries"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, int64(1), status.Size)
		assert.True(t, status.Online)
		require.Len(t, status.Entries, 1)
		assert.Equal(t, entry.LocalID, status.Entries[0].LocalID)
	})

	t.Run("enqueue rejects invalid quality", func(t *testing.T) {
		router, _, cleanup := setupQueueRouter(t)
		defer cleanup()

		quality := 9
		w := postJSON(t, router, "/api/queue", EnqueueRequest{VocabularyID: 3, Quality: &quality})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("drain submits queued attempts", func(t *testing.T) {
		router, submitter, cleanup := setupQueueRouter(t)
		defer cleanup()

		for i := 1; i <= 3; i++ {
			quality := 5
			w := postJSON(t, router, "/api/queue", EnqueueRequest{VocabularyID: uint(i), Quality: &quality})
			require.Equal(t, http.StatusCreated, w.Code)
		}

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/queue/drain", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Synced int `json:"synced"`
			Failed int `json:"failed"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 3, result.Synced)
		assert.Equal(t, 0, result.Failed)
		assert.Len(t, submitter.submitted, 3)
	})

	t.Run("failed submissions stay queued", func(t *testing.T) {
		router, submitter, cleanup := setupQueueRouter(t)
		defer cleanup()
		submitter.fail = true

		quality := 2
		w := postJSON(t, router, "/api/queue", EnqueueRequest{VocabularyID: 8, Quality: &quality})
		require.Equal(t, http.StatusCreated, w.Code)

		w = httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/queue/drain", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		var result struct {
			Synced int `json:"synced"`
			Failed int `json:"failed"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		assert.Equal(t, 0, result.Synced)
		assert.Equal(t, 1, result.Failed)
	})

	t.Run("discard of unknown id returns 404", func(t *testing.T) {
		router, _, cleanup := setupQueueRouter(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/queue/no-such-id", nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("discard removes an entry", func(t *testing.T) {
		router, _, cleanup := setupQueueRouter(t)
		defer cleanup()

		quality := 3
		w := postJSON(t, router, "/api/queue", EnqueueRequest{VocabularyID: 4, Quality: &quality})
		require.Equal(t, http.StatusCreated, w.Code)

		var entry entities.QueuedAttempt
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))

		w = httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/api/queue/"+entry.LocalID, nil)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		req, _ = http.NewRequest("GET", "/api/queue", nil)
		router.ServeHTTP(w, req)

		var status struct {
			Size int64 `json:"size"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, int64(0), status.Size)
	})
}
