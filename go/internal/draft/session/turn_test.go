package session

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestNextTurn(t *testing.T) {
	a := uuid.New()
	b := uuid.New()
	c := uuid.New()

	roster := func(caps ...int) []RosterEntry {
		ids := []uuid.UUID{a, b, c}
		entries := make([]RosterEntry, len(caps))
		for i, cap := range caps {
			entries[i] = RosterEntry{UserID: ids[i], MaxPicks: cap}
		}
		return entries
	}

	tests := []struct {
		name       string
		roster     []RosterEntry
		pickCounts map[uuid.UUID]int
		current    uuid.UUID
		want       TurnResult
	}{
		{
			name:    "advances to next in badge order",
			roster:  roster(3, 3, 3),
			current: a,
			want:    TurnResult{NextUserID: b},
		},
		{
			name:    "wraps to first after last",
			roster:  roster(3, 3, 3),
			current: c,
			want:    TurnResult{Wrapped: true, NextUserID: a},
		},
		{
			name:       "skips dispatcher at cap",
			roster:     roster(3, 1, 3),
			pickCounts: map[uuid.UUID]int{b: 1},
			current:    a,
			want:       TurnResult{NextUserID: c},
		},
		{
			name:       "skipping the last wraps to the first",
			roster:     roster(3, 3, 1),
			pickCounts: map[uuid.UUID]int{c: 1},
			current:    b,
			want:       TurnResult{Wrapped: true, NextUserID: a},
		},
		{
			name:       "ends when everyone is at cap",
			roster:     roster(1, 1, 1),
			pickCounts: map[uuid.UUID]int{a: 1, b: 1, c: 1},
			current:    b,
			want:       TurnResult{End: true},
		},
		{
			name:       "single dispatcher keeps picking until cap",
			roster:     []RosterEntry{{UserID: a, MaxPicks: 2}},
			pickCounts: map[uuid.UUID]int{a: 1},
			current:    a,
			want:       TurnResult{Wrapped: true, NextUserID: a},
		},
		{
			name:       "single dispatcher at cap ends",
			roster:     []RosterEntry{{UserID: a, MaxPicks: 2}},
			pickCounts: map[uuid.UUID]int{a: 2},
			current:    a,
			want:       TurnResult{End: true},
		},
		{
			name:    "unknown current falls back to first position",
			roster:  roster(3, 3, 3),
			current: uuid.New(),
			want:    TurnResult{NextUserID: b},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextTurn(tt.roster, tt.pickCounts, tt.current)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMaxPicksFor(t *testing.T) {
	require.Equal(t, 3, maxPicksFor(5, 3))
	require.Equal(t, 5, maxPicksFor(5, 8))
	require.Equal(t, 5, maxPicksFor(5, 5))
	require.Equal(t, 0, maxPicksFor(5, 0))
}
