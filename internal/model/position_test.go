package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPositionIsOpen(t *testing.T) {
	end := time.Date(2025, 3, 10, 17, 0, 0, 0, time.UTC)
	p := Position{EditablePositionInfo: EditablePositionInfo{SubmissionEnd: end}}

	assert.True(t, p.IsOpen(end.Add(-time.Hour)))
	assert.True(t, p.IsOpen(end), "end instant must still be open")
	assert.False(t, p.IsOpen(end.Add(time.Nanosecond)))
	assert.False(t, p.IsOpen(end.Add(24*time.Hour)))
}

func TestPositionIsOpenIgnoresStart(t *testing.T) {
	end := time.Now().Add(48 * time.Hour)
	start := time.Now().Add(24 * time.Hour)
	p := Position{EditablePositionInfo: EditablePositionInfo{SubmissionStart: &start, SubmissionEnd: end}}

	assert.True(t, p.IsOpen(time.Now()))
	assert.False(t, p.IsWithinWindow(time.Now()))
}

func TestPositionIsWithinWindow(t *testing.T) {
	now := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC)
	start := now.Add(-time.Hour)
	end := now.Add(time.Hour)

	tests := []struct {
		name string
		p    Position
		want bool
	}{
		{"no start", Position{EditablePositionInfo: EditablePositionInfo{SubmissionEnd: end}}, false},
		{"zero start", Position{EditablePositionInfo: EditablePositionInfo{SubmissionStart: &time.Time{}, SubmissionEnd: end}}, false},
		{"started and open", Position{EditablePositionInfo: EditablePositionInfo{SubmissionStart: &start, SubmissionEnd: end}}, true},
		{"starts exactly now", Position{EditablePositionInfo: EditablePositionInfo{SubmissionStart: &now, SubmissionEnd: end}}, true},
		{"already closed", Position{EditablePositionInfo: EditablePositionInfo{SubmissionStart: &start, SubmissionEnd: now.Add(-time.Minute)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.IsWithinWindow(now))
		})
	}
}

func TestEditablePositionInfoValidate(t *testing.T) {
	end := time.Now().Add(time.Hour)
	late := end.Add(time.Hour)
	negative := int64(-1)

	fields := EditablePositionInfo{}.Validate()
	assert.Contains(t, fields, "position_name")
	assert.Contains(t, fields, "capacity")
	assert.Contains(t, fields, "submission_end_date")

	fields = EditablePositionInfo{Name: "Backend", Capacity: 2, SubmissionStart: &late, SubmissionEnd: end, Salary: &negative}.Validate()
	assert.Equal(t, map[string]string{
		"submission_start_date": "submission start date must not be after end date",
		"salary":                "salary must not be negative",
	}, fields)

	assert.Empty(t, EditablePositionInfo{Name: "Backend", Capacity: 1, SubmissionEnd: end}.Validate())
}
