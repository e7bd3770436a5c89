package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groking122/readingcompanion-sub001/internal/translation"
)

type TranslationController struct {
	cache  *translation.Cache
	client translation.Client

	defaultSource string
	defaultTarget string
}

func NewTranslationController(cache *translation.Cache, client translation.Client, defaultSource, defaultTarget string) *TranslationController {
	return &TranslationController{
		cache:         cache,
		client:        client,
		defaultSource: defaultSource,
		defaultTarget: defaultTarget,
	}
}

// TranslateRequest is the request body for a translation lookup.
type TranslateRequest struct {
	Text   string `json:"text" binding:"required"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`
}

// TranslateResponse is the translation lookup result. Cached reports
// whether the translation was served without a provider round trip.
type TranslateResponse struct {
	Text         string   `json:"text"`
	Translation  string   `json:"translation"`
	Alternatives []string `json:"alternatives,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Cached       bool     `json:"cached"`
}

// Translate resolves a selected text span to its translation, serving
// repeat lookups from the in-memory cache.
// POST /api/translate
func (tc *TranslationController) Translate(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	if entry, ok := tc.cache.Get(req.Text); ok {
		c.JSON(http.StatusOK, TranslateResponse{
			Text:         req.Text,
			Translation:  entry.Translation,
			Alternatives: entry.Alternatives,
			Cached:       true,
		})
		return
	}

	source := req.Source
	if source == "" {
		source = tc.defaultSource
	}
	target := req.Target
	if target == "" {
		target = tc.defaultTarget
	}

	result, err := tc.client.Translate(c.Request.Context(), req.Text, source, target)
	if err != nil {
		respondInternalError(c, err, "translate")
		return
	}

	tc.cache.Set(req.Text, result.Translation, result.Alternatives)

	c.JSON(http.StatusOK, TranslateResponse{
		Text:         req.Text,
		Translation:  result.Translation,
		Alternatives: result.Alternatives,
		Provider:     tc.client.Name(),
		Cached:       false,
	})
}
