package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rankwise/ladder/pkg/types"
)

func TestParseDue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string // RFC3339 of the expected time
		wantErr bool
	}{
		{
			name:  "date only",
			input: "2026-09-01",
			want:  "2026-09-01T00:00:00Z",
		},
		{
			name:  "full RFC3339",
			input: "2026-09-01T17:30:00Z",
			want:  "2026-09-01T17:30:00Z",
		},
		{
			name:    "garbage",
			input:   "next tuesday",
			wantErr: true,
		},
		{
			name:    "wrong order",
			input:   "01-09-2026",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDue(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want, err := time.Parse(time.RFC3339, tt.want)
			require.NoError(t, err)
			assert.True(t, got.Equal(want), "got %s, want %s", got, want)
		})
	}
}

func TestFormatDue(t *testing.T) {
	assert.Equal(t, "", formatDue(nil))

	due := time.Date(2026, 9, 1, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-09-01", formatDue(&due))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "0198c5f3", shortID("0198c5f3-aaaa-7000-8000-000000000001"))
	assert.Equal(t, "short", shortID("short"))
	assert.Equal(t, "", shortID(""))
}

func TestParseStatusFlag(t *testing.T) {
	for _, valid := range []string{"active", "completed", "archived"} {
		got, err := parseStatusFlag(valid)
		require.NoError(t, err)
		assert.Equal(t, types.Status(valid), got)
	}

	_, err := parseStatusFlag("done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "done")
}

func TestIsUserError(t *testing.T) {
	assert.True(t, isUserError(types.ErrNotFound))
	assert.True(t, isUserError(types.ErrInvalidRank))
	assert.True(t, isUserError(types.ErrRankRequired))
	assert.False(t, isUserError(types.ErrInvariantViolation))
	assert.False(t, isUserError(types.ErrRankConflict))
	assert.False(t, isUserError(assert.AnError))
}
