package service

import (
	"sort"
	"strconv"
	"time"

	"revision-history-server/internal/domain"
)

const DefaultRetentionDays = 3

// RetentionWindow is either a day count or unbounded.
type RetentionWindow struct {
	Days      int
	Unbounded bool
}

func UnboundedWindow() RetentionWindow {
	return RetentionWindow{Unbounded: true}
}

func DaysWindow(days int) RetentionWindow {
	return RetentionWindow{Days: days}
}

// Cutoff returns the oldest visible creation date, or nil when every
// revision is visible.
func (w RetentionWindow) Cutoff(daysAgo func(int) time.Time) *time.Time {
	if w.Unbounded {
		return nil
	}
	cutoff := daysAgo(w.Days)
	return &cutoff
}

func (w RetentionWindow) String() string {
	if w.Unbounded {
		return "unbounded"
	}
	return strconv.Itoa(w.Days) + "d"
}

var historyFeatureWindows = map[domain.FeatureIdentifier]RetentionWindow{
	domain.FeatureNoteHistory30Days:    DaysWindow(30),
	domain.FeatureNoteHistory365Days:   DaysWindow(365),
	domain.FeatureNoteHistoryUnlimited: UnboundedWindow(),
}

// ResolveRetentionWindow picks the window of the history feature that
// expires last. Only recency decides; a later 30-day grant shadows an
// earlier unlimited one. A feature without expiry counts as expiring last.
func ResolveRetentionWindow(entitlements []domain.Entitlement) RetentionWindow {
	sorted := make([]domain.Entitlement, len(entitlements))
	copy(sorted, entitlements)

	sort.SliceStable(sorted, func(i, j int) bool {
		return expiresAfter(sorted[i].ExpiresAt, sorted[j].ExpiresAt)
	})

	for _, e := range sorted {
		if w, ok := historyFeatureWindows[e.Identifier]; ok {
			return w
		}
	}

	return DaysWindow(DefaultRetentionDays)
}

func expiresAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return b != nil
	case b == nil:
		return false
	default:
		return a.After(*b)
	}
}
