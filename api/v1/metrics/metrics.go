// Package metrics derives the 7-day aggregates and relative last-entry
// labels shown on the dashboard from a user's log history.
package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pooplog/backend/api/v1/models"
)

// windowDays is the fixed trailing aggregation window.
const windowDays = 7

// DailyCount is the number of entries logged on one calendar date.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary holds the derived metrics for one user's history.
type Summary struct {
	DailyBreakdown []DailyCount
	TotalLast7Days int
	AveragePerDay  float64
	LastEntryLabel string // empty when there are no entries
}

// Summarize computes the trailing-week metrics from the full history. The
// entries are expected most-recent-first, as returned by the store. The
// average always divides by 7, not by the number of days with data; it is a
// per-day-over-the-week rate.
func Summarize(entries []models.Entry, now time.Time) Summary {
	var s Summary

	cutoff := now.AddDate(0, 0, -windowDays)
	counts := make(map[string]int)
	for _, e := range entries {
		if e.LogTime.Before(cutoff) {
			continue
		}
		counts[e.LogTime.Format("2006-01-02")]++
	}

	dates := make([]string, 0, len(counts))
	for date := range counts {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	for _, date := range dates {
		s.DailyBreakdown = append(s.DailyBreakdown, DailyCount{Date: date, Count: counts[date]})
		s.TotalLast7Days += counts[date]
	}

	s.AveragePerDay = math.Round(float64(s.TotalLast7Days)/windowDays*100) / 100

	if len(entries) > 0 {
		// Most recent entry regardless of the window.
		s.LastEntryLabel = LastEntryLabel(entries[0].LogTime, now)
	}

	return s
}

// LastEntryLabel renders an instant relative to now: "Avui: HH:MM" for today,
// "Ahir: HH:MM" for yesterday, "Fa N dies a les HH:MM" otherwise.
func LastEntryLabel(t, now time.Time) string {
	timeStr := t.Format("15:04")

	days := daysBetween(t, now)
	switch days {
	case 0:
		return fmt.Sprintf("Avui: %s", timeStr)
	case 1:
		return fmt.Sprintf("Ahir: %s", timeStr)
	default:
		return fmt.Sprintf("Fa %d dies a les %s", days, timeStr)
	}
}

// daysBetween counts whole calendar days from t's date up to now's date.
// Both dates are normalized to UTC midnights so DST-shortened days don't
// skew the count.
func daysBetween(t, now time.Time) int {
	tDate := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(nowDate.Sub(tDate).Hours() / 24)
}
