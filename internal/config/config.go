package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Queue
		Notifications
		Translation
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	Queue struct {
		DrainOnStart bool // Attempt a queue drain when the server comes up
	}
	Notifications struct {
		Enabled       bool
		CheckInterval time.Duration
	}
	Translation struct {
		BaseURL       string
		APIKey        string
		CacheCapacity int
		SourceLang    string
		TargetLang    string
	}
	Tasks struct {
		Enabled              bool
		Workers              int
		ReleaseAfter         time.Duration
		CleanupInterval      time.Duration
		AttemptRetentionDays int // Days to keep review attempts (0 disables pruning)
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	v.SetDefault("queue_drain_on_start", true)

	// Notification defaults
	v.SetDefault("notifications_enabled", true)
	v.SetDefault("notifications_check_interval", "15m")

	// Translation defaults
	v.SetDefault("translation_base_url", "https://libretranslate.com")
	v.SetDefault("translation_api_key", "")
	v.SetDefault("translation_cache_capacity", 100)
	v.SetDefault("translation_source_lang", "auto")
	v.SetDefault("translation_target_lang", "en")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("attempt_retention_days", 365)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Queue: Queue{
			DrainOnStart: v.GetBool("QUEUE_DRAIN_ON_START"),
		},
		Notifications: Notifications{
			Enabled:       v.GetBool("NOTIFICATIONS_ENABLED"),
			CheckInterval: v.GetDuration("NOTIFICATIONS_CHECK_INTERVAL"),
		},
		Translation: Translation{
			BaseURL:       v.GetString("TRANSLATION_BASE_URL"),
			APIKey:        v.GetString("TRANSLATION_API_KEY"),
			CacheCapacity: v.GetInt("TRANSLATION_CACHE_CAPACITY"),
			SourceLang:    v.GetString("TRANSLATION_SOURCE_LANG"),
			TargetLang:    v.GetString("TRANSLATION_TARGET_LANG"),
		},
		Tasks: Tasks{
			Enabled:              v.GetBool("TASKS_ENABLED"),
			Workers:              v.GetInt("TASK_WORKERS"),
			ReleaseAfter:         v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:      v.GetDuration("TASK_CLEANUP_INTERVAL"),
			AttemptRetentionDays: v.GetInt("ATTEMPT_RETENTION_DAYS"),
		},
	}
}
