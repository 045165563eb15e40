package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(area, date, start, end string, status ReservationStatus) *Reservation {
	return &Reservation{
		Area:   area,
		Date:   date,
		Start:  MustTimeOfDay(start),
		End:    MustTimeOfDay(end),
		Status: status,
	}
}

func TestReservation_OverlapsWith(t *testing.T) {
	base := booking("Churrasqueira Gourmet", "2023-12-20", "12:00", "18:00", StatusApproved)

	tests := []struct {
		name  string
		other *Reservation
		want  bool
	}{
		{"partial overlap at end", booking("Churrasqueira Gourmet", "2023-12-20", "17:00", "20:00", StatusPending), true},
		{"contained", booking("Churrasqueira Gourmet", "2023-12-20", "13:00", "14:00", StatusPending), true},
		{"enclosing", booking("Churrasqueira Gourmet", "2023-12-20", "10:00", "20:00", StatusPending), true},
		{"touching end", booking("Churrasqueira Gourmet", "2023-12-20", "18:00", "20:00", StatusPending), false},
		{"touching start", booking("Churrasqueira Gourmet", "2023-12-20", "09:00", "12:00", StatusPending), false},
		{"other area", booking("Cinema", "2023-12-20", "13:00", "14:00", StatusPending), false},
		{"other date", booking("Churrasqueira Gourmet", "2023-12-21", "13:00", "14:00", StatusPending), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.OverlapsWith(tt.other))
			assert.Equal(t, tt.want, tt.other.OverlapsWith(base))
		})
	}
}

func TestReservation_Tab(t *testing.T) {
	today := time.Date(2023, 12, 15, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		r    *Reservation
		want Tab
	}{
		{"pending future", booking("Cinema", "2023-12-20", "10:00", "11:00", StatusPending), TabPending},
		{"pending past stays pending", booking("Cinema", "2023-12-01", "10:00", "11:00", StatusPending), TabPending},
		{"approved today", booking("Cinema", "2023-12-15", "10:00", "11:00", StatusApproved), TabUpcoming},
		{"approved past", booking("Cinema", "2023-12-14", "10:00", "11:00", StatusApproved), TabHistory},
		{"rejected", booking("Cinema", "2023-12-20", "10:00", "11:00", StatusRejected), TabHistory},
		{"completed", booking("Cinema", "2023-12-20", "10:00", "11:00", StatusCompleted), TabHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Tab(today))
		})
	}
}

func TestReservationStatus_CanTransition(t *testing.T) {
	assert.True(t, StatusPending.CanTransition(StatusApproved))
	assert.True(t, StatusPending.CanTransition(StatusRejected))
	assert.True(t, StatusApproved.CanTransition(StatusCompleted))
	assert.False(t, StatusRejected.CanTransition(StatusApproved))
	assert.False(t, StatusCompleted.CanTransition(StatusPending))
	assert.False(t, StatusPending.CanTransition(StatusCompleted))
}

func TestTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:05")
	require.NoError(t, err)
	assert.Equal(t, TimeOfDay(545), tod)
	assert.Equal(t, "09:05", tod.String())

	_, err = ParseTimeOfDay("25:00")
	assert.Error(t, err)

	data, err := json.Marshal(struct {
		At TimeOfDay `json:"at"`
	}{At: MustTimeOfDay("23:59")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"23:59"}`, string(data))

	var decoded struct {
		At TimeOfDay `json:"at"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"at":"noon"}`), &decoded))

	var scanned TimeOfDay
	require.NoError(t, scanned.Scan([]byte("18:30")))
	assert.Equal(t, MustTimeOfDay("18:30"), scanned)
}
