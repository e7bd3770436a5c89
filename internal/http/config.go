package http

import (
	"github.com/groking122/readingcompanion-sub001/internal/database"
	"github.com/groking122/readingcompanion-sub001/internal/queue"
	"github.com/groking122/readingcompanion-sub001/internal/translation"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces a long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Review scheduling
	ReviewService ReviewSubmitter

	// Offline queue
	Queue *queue.Queue

	// Statistics
	Stats StatsProvider

	// Translation lookup
	TranslationCache  *translation.Cache
	TranslationClient translation.Client
	SourceLang        string
	TargetLang        string

	// Application info
	Version string
}
