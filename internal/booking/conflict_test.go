package booking

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoflow/internal/model"
)

func res(id int64, area, date, start, end string, status model.ReservationStatus) model.Reservation {
	return model.Reservation{
		ID:     id,
		Area:   area,
		Date:   date,
		Start:  model.MustTimeOfDay(start),
		End:    model.MustTimeOfDay(end),
		Guests: 10,
		Status: status,
	}
}

func TestHasConflict(t *testing.T) {
	existing := res(1, "Churrasqueira Gourmet", "2026-12-12", "12:00", "18:00", model.StatusApproved)

	tests := []struct {
		name      string
		candidate model.Reservation
		existing  model.Reservation
		want      bool
	}{
		{
			name:      "overlapping end",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "17:00", "20:00", model.StatusPending),
			existing:  existing,
			want:      true,
		},
		{
			name:      "back to back",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "18:00", "20:00", model.StatusPending),
			existing:  existing,
			want:      false,
		},
		{
			name:      "ends when existing starts",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "08:00", "12:00", model.StatusPending),
			existing:  existing,
			want:      false,
		},
		{
			name:      "contained",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "13:00", "14:00", model.StatusPending),
			existing:  existing,
			want:      true,
		},
		{
			name:      "rejected existing",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "12:00", "18:00", model.StatusPending),
			existing:  res(1, "Churrasqueira Gourmet", "2026-12-12", "12:00", "18:00", model.StatusRejected),
			want:      false,
		},
		{
			name:      "pending existing",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-12", "15:00", "16:00", model.StatusPending),
			existing:  res(1, "Churrasqueira Gourmet", "2026-12-12", "12:00", "18:00", model.StatusPending),
			want:      true,
		},
		{
			name:      "other area",
			candidate: res(0, "Cinema", "2026-12-12", "12:00", "18:00", model.StatusPending),
			existing:  existing,
			want:      false,
		},
		{
			name:      "other date",
			candidate: res(0, "Churrasqueira Gourmet", "2026-12-13", "12:00", "18:00", model.StatusPending),
			existing:  existing,
			want:      false,
		},
		{
			name:      "itself while editing",
			candidate: res(1, "Churrasqueira Gourmet", "2026-12-12", "13:00", "19:00", model.StatusApproved),
			existing:  existing,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(&tt.candidate, &tt.existing))
		})
	}
}

func TestFindConflictReturnsFirst(t *testing.T) {
	existing := []model.Reservation{
		res(1, "Cinema", "2026-12-12", "10:00", "12:00", model.StatusRejected),
		res(2, "Cinema", "2026-12-12", "11:00", "13:00", model.StatusPending),
		res(3, "Cinema", "2026-12-12", "11:30", "12:30", model.StatusApproved),
	}
	candidate := res(0, "Cinema", "2026-12-12", "11:00", "12:00", model.StatusPending)

	got, found := FindConflict(&candidate, existing)
	require.True(t, found)
	assert.Equal(t, int64(2), got.ID)

	approved, found := FindApprovedConflict(&candidate, existing)
	require.True(t, found)
	assert.Equal(t, int64(3), approved.ID)

	_, found = FindConflict(&candidate, nil)
	assert.False(t, found)
}

var (
	fakeAreas    = []string{"Cinema", "Quadra Poliesportiva"}
	fakeDates    = []string{"2026-12-12", "2026-12-13"}
	fakeStatuses = []model.ReservationStatus{
		model.StatusPending, model.StatusApproved, model.StatusRejected, model.StatusCompleted,
	}
)

func fakeReservation(f *gofakeit.Faker, id int64) model.Reservation {
	start := f.Number(0, 22*60)
	end := start + f.Number(1, 120)
	return model.Reservation{
		ID:           id,
		Area:         f.RandomString(fakeAreas),
		Date:         f.RandomString(fakeDates),
		ResidentName: f.Name(),
		Start:        model.TimeOfDay(start),
		End:          model.TimeOfDay(end),
		Guests:       f.Number(1, 12),
		Status:       fakeStatuses[f.Number(0, len(fakeStatuses)-1)],
	}
}

func TestHasConflictIsSymmetric(t *testing.T) {
	f := gofakeit.New(42)
	for i := 0; i < 2000; i++ {
		a := fakeReservation(f, int64(2*i+1))
		b := fakeReservation(f, int64(2*i+2))
		require.Equal(t, HasConflict(&a, &b), HasConflict(&b, &a), "a=%+v b=%+v", a, b)
	}
}

func TestAcceptedReservationsNeverOverlap(t *testing.T) {
	f := gofakeit.New(7)
	var accepted []model.Reservation

	for i := 0; i < 500; i++ {
		candidate := fakeReservation(f, int64(i+1))
		if _, found := FindConflict(&candidate, accepted); found {
			continue
		}
		accepted = append(accepted, candidate)
	}

	for i := range accepted {
		for j := i + 1; j < len(accepted); j++ {
			assert.False(t, HasConflict(&accepted[i], &accepted[j]),
				"accepted reservations %d and %d overlap", accepted[i].ID, accepted[j].ID)
		}
	}
}
