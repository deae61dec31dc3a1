package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPreviousDayKey(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{name: "mid month", now: time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC), want: "2024-03-14"},
		{name: "first of month", now: time.Date(2024, 3, 1, 0, 5, 0, 0, time.UTC), want: "2024-02-29"},
		{name: "new year", now: time.Date(2025, 1, 1, 23, 59, 0, 0, time.UTC), want: "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PreviousDayKey(tt.now))
		})
	}
}

func TestNextClockTime(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "before seven schedules today",
			now:  time.Date(2024, 5, 10, 6, 30, 0, 0, time.UTC),
			want: time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "exactly seven schedules tomorrow",
			now:  time.Date(2024, 5, 10, 7, 0, 0, 0, time.UTC),
			want: time.Date(2024, 5, 11, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "after seven at month end rolls over",
			now:  time.Date(2024, 5, 31, 21, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 1, 7, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextClockTime(tt.now, 7, 0))
		})
	}
}
