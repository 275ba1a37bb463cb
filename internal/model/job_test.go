package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 15, 14, 30, 0, 0, time.UTC)

func TestNewJobRecord_DaysOpenFromISODate(t *testing.T) {
	job := NewJobRecord(RawJob{Title: "Sales Engineer", PostedDate: "2026-01-29"}, fixedNow)

	require.NotNil(t, job.PostedAt)
	assert.Equal(t, 45, job.DaysOpen)
	assert.Equal(t, 0, job.PainScore)
}

func TestNewJobRecord_NativeDateWins(t *testing.T) {
	posted := fixedNow.AddDate(0, 0, -10)
	job := NewJobRecord(RawJob{PostedDate: "2020-01-01", PostedAt: &posted}, fixedNow)

	assert.Equal(t, 10, job.DaysOpen)
}

func TestNewJobRecord_BadDatesDegradeToZero(t *testing.T) {
	tests := []struct {
		name   string
		posted string
	}{
		{"empty", ""},
		{"garbage", "last tuesday"},
		{"wrong layout", "15.03.2026"},
		{"future", "2026-04-01"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJobRecord(RawJob{PostedDate: tt.posted}, fixedNow)
			assert.Equal(t, 0, job.DaysOpen)
		})
	}
}

func TestNewJobRecord_Defaults(t *testing.T) {
	job := NewJobRecord(RawJob{Title: "  Solution Consultant  "}, fixedNow)

	assert.Equal(t, "Solution Consultant", job.Title)
	assert.Equal(t, DefaultJobSource, job.Source)
	assert.Nil(t, job.PostedAt)
	assert.Nil(t, job.TotalApplications)
}

func TestNewJobRecord_RFC3339(t *testing.T) {
	job := NewJobRecord(RawJob{PostedDate: "2026-03-13T23:59:00Z"}, fixedNow)
	assert.Equal(t, 2, job.DaysOpen)
}

func TestDaysOpen_IgnoresTimeOfDay(t *testing.T) {
	posted := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	now := time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysOpen(&posted, now))
	assert.Equal(t, 0, DaysOpen(nil, now))
}
