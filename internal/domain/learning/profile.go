package learning

import (
	"math"
	"time"

	"github.com/yungbote/agilecoach-backend/internal/domain/user"
)

// RunRate converts a completed run's score into an integer percentage.
func RunRate(score int) int {
	rate := int(math.Round(float64(score) / 100 * 100))
	switch {
	case rate < 0:
		return 0
	case rate > 100:
		return 100
	}
	return rate
}

// UpdatedSuccessRate folds one run into a running mean weighted by the
// prior completion count.
func UpdatedSuccessRate(priorRate, priorCount, runRate int) int {
	if priorCount < 0 {
		priorCount = 0
	}
	return int(math.Round(float64(priorRate*priorCount+runRate) / float64(priorCount+1)))
}

// NextStreak counts consecutive UTC days with at least one completion.
func NextStreak(current int, last *time.Time, now time.Time) int {
	if last == nil {
		return 1
	}
	lastDay := truncateDay(*last)
	today := truncateDay(now)
	switch {
	case lastDay.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case lastDay.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// ApplyCompletion updates the profile counters for a first completion of p.
// p must already be marked completed.
func ApplyCompletion(u *user.User, p *Progress, now time.Time) {
	runRate := RunRate(p.Score)
	u.SuccessRate = UpdatedSuccessRate(u.SuccessRate, u.CompletedScenarios, runRate)
	u.CompletedScenarios++
	u.AIInsights++
	u.TimeInvested += p.TimeSpent
	u.CurrentStreak = NextStreak(u.CurrentStreak, u.LastCompletedAt, now)
	at := now
	u.LastCompletedAt = &at
	u.UpdatedAt = now
}
