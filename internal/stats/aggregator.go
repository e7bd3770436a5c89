// Package stats derives review statistics from the historical attempt log.
package stats

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/groking122/readingcompanion-sub001/internal/entities"
)

// SuccessThreshold is the quality at which an attempt counts as a
// successful recall. Deliberately stricter than the scheduler's lapse
// boundary; the two thresholds measure different things.
const SuccessThreshold = 4

// MinAttemptsForDifficulty is the attempt count below which an item is not
// ranked for difficulty.
const MinAttemptsForDifficulty = 3

// DefaultHardestLimit caps the hardest-items ranking.
const DefaultHardestLimit = 5

const dayFormat = "2006-01-02"

// ItemDifficulty ranks a vocabulary item by mean recall quality.
type ItemDifficulty struct {
	VocabularyID uint    `json:"vocabulary_id"`
	Attempts     int     `json:"attempts"`
	MeanQuality  float64 `json:"mean_quality"`
}

// DayActivity is the attempt count for one calendar day.
type DayActivity struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary aggregates a user's review history over a time window.
type Summary struct {
	TotalAttempts int              `json:"total_attempts"`
	SuccessRate   float64          `json:"success_rate"`
	StreakDays    int              `json:"streak_days"`
	AvgResponseMs float64          `json:"avg_response_ms"`
	HardestItems  []ItemDifficulty `json:"hardest_items"`
	PerDay        []DayActivity    `json:"per_day"`
}

// Aggregator computes summaries from the review attempt log.
type Aggregator struct {
	db  *gorm.DB
	now func() time.Time
}

// NewAggregator creates a statistics aggregator.
func NewAggregator(db *gorm.DB) *Aggregator {
	return &Aggregator{db: db, now: time.Now}
}

// WithClock overrides the aggregator clock.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Summary computes statistics for a user over [from, to]. The streak is
// always anchored at today regardless of the window; activity outside the
// window does not extend it.
func (a *Aggregator) Summary(userID uint, from, to time.Time) (*Summary, error) {
	var attempts []entities.ReviewAttempt
	err := a.db.
		Where("user_id = ? AND created_at >= ? AND created_at <= ?", userID, from, to).
		Order("created_at ASC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}

	return Compute(attempts, a.now()), nil
}

// Compute derives a summary from a slice of attempts. Pure; exported so the
// aggregation logic is testable without a database.
func Compute(attempts []entities.ReviewAttempt, now time.Time) *Summary {
	summary := &Summary{
		HardestItems: []ItemDifficulty{},
		PerDay:       []DayActivity{},
	}

	if len(attempts) == 0 {
		return summary
	}

	summary.TotalAttempts = len(attempts)

	var successes int
	var totalResponseMs int64
	perDay := make(map[string]int)
	perItemQuality := make(map[uint][]int)

	for _, attempt := range attempts {
		if attempt.Quality >= SuccessThreshold {
			successes++
		}
		totalResponseMs += int64(attempt.ResponseMs)
		perDay[attempt.CreatedAt.Format(dayFormat)]++
		perItemQuality[attempt.VocabularyID] = append(perItemQuality[attempt.VocabularyID], attempt.Quality)
	}

	summary.SuccessRate = float64(successes) / float64(len(attempts))
	summary.AvgResponseMs = float64(totalResponseMs) / float64(len(attempts))
	summary.StreakDays = streak(perDay, now)
	summary.PerDay = perDayActivity(perDay)
	summary.HardestItems = hardestItems(perItemQuality, DefaultHardestLimit)

	return summary
}

// streak counts consecutive distinct activity days ending today. A day
// without activity terminates the walk; no activity today means streak 0.
func streak(perDay map[string]int, now time.Time) int {
	count := 0
	day := now
	for {
		if perDay[day.Format(dayFormat)] == 0 {
			return count
		}
		count++
		day = day.AddDate(0, 0, -1)
	}
}

func perDayActivity(perDay map[string]int) []DayActivity {
	activity := make([]DayActivity, 0, len(perDay))
	for date, count := range perDay {
		activity = append(activity, DayActivity{Date: date, Count: count})
	}
	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Date < activity[j].Date
	})
	return activity
}

// hardestItems ranks items with at least MinAttemptsForDifficulty attempts
// by ascending mean quality.
func hardestItems(perItemQuality map[uint][]int, limit int) []ItemDifficulty {
	ranked := make([]ItemDifficulty, 0, len(perItemQuality))
	for vocabularyID, qualities := range perItemQuality {
		if len(qualities) < MinAttemptsForDifficulty {
			continue
		}
		var sum int
		for _, q := range qualities {
			sum += q
		}
		ranked = append(ranked, ItemDifficulty{
			VocabularyID: vocabularyID,
			Attempts:     len(qualities),
			MeanQuality:  float64(sum) / float64(len(qualities)),
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].MeanQuality != ranked[j].MeanQuality {
			return ranked[i].MeanQuality < ranked[j].MeanQuality
		}
		return ranked[i].VocabularyID < ranked[j].VocabularyID
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
