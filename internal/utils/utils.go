package utils

import (
	"fmt"
	"sort"
	"time"

	"github.com/cardhaus/giveaway-backend/internal/models"
)

// NumberSpace is the size of a slot's pick-number space ("000".."999").
const NumberSpace = 1000

// Virtual boundaries enclosing the number space for gap analysis.
const (
	gapLowerBound = 0
	gapUpperBound = NumberSpace
)

// AnalyzeGaps computes the runs of free numbers between taken values in one
// slot. taken must be sorted ascending and contain values in [0, 999].
// Each gap's Size counts the free numbers strictly between its boundaries.
// Gaps are ranked largest first; equal sizes keep ascending-start order, so
// the first of a tie is the lowest-numbered gap.
func AnalyzeGaps(taken []int) []models.Gap {
	var gaps []models.Gap
	prev := gapLowerBound
	for _, t := range taken {
		if size := t - prev - 1; size > 0 {
			gaps = append(gaps, models.Gap{Start: prev, End: t, Size: size})
		}
		prev = t
	}
	if size := gapUpperBound - prev - 1; size > 0 {
		gaps = append(gaps, models.Gap{Start: prev, End: gapUpperBound, Size: size})
	}
	sort.SliceStable(gaps, func(i, j int) bool {
		return gaps[i].Size > gaps[j].Size
	})
	return gaps
}

// BestNumber suggests a pick number for a slot given its taken values
// (sorted ascending) and a set of numbers already claimed by the current
// batch. It takes the midpoint of the largest gap for maximal spacing from
// existing picks; when the midpoint is off limits it falls back to the
// lowest free number. Returns false only when the slot is exhausted.
func BestNumber(taken []int, excluded map[int]bool) (int, bool) {
	gaps := AnalyzeGaps(taken)
	if len(gaps) > 0 {
		mid := (gaps[0].Start + gaps[0].End) / 2
		if !excluded[mid] {
			return mid, true
		}
	}

	takenSet := make(map[int]bool, len(taken))
	for _, t := range taken {
		takenSet[t] = true
	}
	for n := 0; n < NumberSpace; n++ {
		if !takenSet[n] && !excluded[n] {
			return n, true
		}
	}
	return 0, false
}

// SelectSlot returns the least-contended slot in 1..slotCount given per-slot
// pick counts, ties broken by the lower slot index. Slot 0 (box topper) is
// never auto-selected because of its premium cost.
func SelectSlot(counts map[int]int, slotCount int) int {
	best := 1
	for slot := 2; slot <= slotCount; slot++ {
		if counts[slot] < counts[best] {
			best = slot
		}
	}
	return best
}

// estZone is a fixed UTC-5 offset, matching the storefront's historical
// draw-time behavior. It is intentionally not DST-aware.
var estZone = time.FixedZone("EST", -5*60*60)

// NextDrawSchedule computes the next business-day draw after now: the first
// day strictly after today (in fixed EST) that is not a Saturday or Sunday.
// The draw fires at 7:30 PM and entries cut off at 5:00 PM that day.
func NextDrawSchedule(now time.Time) (drawDate, entryCutoff time.Time) {
	day := now.In(estZone).AddDate(0, 0, 1)
	for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
		day = day.AddDate(0, 0, 1)
	}
	drawDate = time.Date(day.Year(), day.Month(), day.Day(), 19, 30, 0, 0, estZone)
	entryCutoff = time.Date(day.Year(), day.Month(), day.Day(), 17, 0, 0, 0, estZone)
	return drawDate, entryCutoff
}

// ParsePickNumber validates a 3-digit pick number string and returns its
// numeric value.
func ParsePickNumber(s string) (int, bool) {
	if len(s) != 3 {
		return 0, false
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// FormatPickNumber renders a numeric pick value as its canonical 3-digit form.
func FormatPickNumber(n int) string {
	return fmt.Sprintf("%03d", n)
}

// InsertSorted inserts n into a sorted slice, keeping it sorted. Used to keep
// a slot's taken-number view current while a bulk allocation proceeds.
func InsertSorted(sorted []int, n int) []int {
	i := sort.SearchInts(sorted, n)
	sorted = append(sorted, 0)
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = n
	return sorted
}
