package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoflow/internal/access"
	"condoflow/internal/listview"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

func newTestTickets() (*Tickets, *recorder) {
	rec := &recorder{}
	s := NewTickets(seeded(), rec, nop())
	s.now = clock
	return s, rec
}

func ticketIDs(items []model.Ticket) []int64 {
	ids := make([]int64, 0, len(items))
	for _, t := range items {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestTicketsList(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestTickets()

	tests := []struct {
		name  string
		query listview.Query
		ids   []int64
	}{
		{"newest first", listview.Query{}, []int64{1042, 1041, 1040, 1039, 1038}},
		{"search by id", listview.Query{Search: "1040"}, []int64{1040}},
		{"search requester", listview.Query{Search: "portaria"}, []int64{1041}},
		{"open only", listview.Query{Filters: map[string]string{"status": "open"}}, []int64{1041, 1038}},
		{"priority desc", listview.Query{SortKey: "priority", SortDir: listview.Desc}, []int64{1041, 1042, 1039, 1038, 1040}},
		{"id asc", listview.Query{SortKey: "id"}, []int64{1038, 1039, 1040, 1041, 1042}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			view, err := s.List(ctx, admin, tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.ids, ticketIDs(view.Items))
		})
	}

	t.Run("residents see their unit only", func(t *testing.T) {
		view, err := s.List(ctx, resident, listview.Query{})
		require.NoError(t, err)
		assert.True(t, view.NoResults)

		_, err = s.Get(ctx, resident, 1042)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestTicketsCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("resident files for own unit", func(t *testing.T) {
		s, rec := newTestTickets()
		ticket, err := s.Create(ctx, resident, TicketDraft{Title: "Torneira pingando", Requester: "Unidade 101-A"})
		require.NoError(t, err)
		assert.Equal(t, int64(1043), ticket.ID)
		assert.Equal(t, "Unidade 302-B", ticket.Requester)
		assert.Equal(t, "Manutenção", ticket.Category)
		assert.Equal(t, model.PriorityMedium, ticket.Priority)
		assert.Equal(t, model.TicketOpen, ticket.Status)
		assert.Equal(t, "2026-12-10", ticket.Date)
		assert.Equal(t, []string{"ticket.created"}, rec.published())

		view, err := s.List(ctx, resident, listview.Query{})
		require.NoError(t, err)
		assert.Equal(t, []int64{1043}, ticketIDs(view.Items))
	})

	t.Run("admin defaults to administration", func(t *testing.T) {
		s, _ := newTestTickets()
		ticket, err := s.Create(ctx, admin, TicketDraft{Title: "Pintura da fachada", Priority: model.PriorityLow})
		require.NoError(t, err)
		assert.Equal(t, "Administração", ticket.Requester)
	})

	t.Run("rejected drafts", func(t *testing.T) {
		s, rec := newTestTickets()
		_, err := s.Create(ctx, admin, TicketDraft{Title: "  "})
		assert.ErrorIs(t, err, ErrRequiredField)
		_, err = s.Create(ctx, admin, TicketDraft{Title: "x", Priority: "urgent"})
		assert.ErrorIs(t, err, ErrInvalidValue)
		assert.Empty(t, rec.published())
	})
}

func TestTicketsUpdateStatus(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestTickets()

	ticket, err := s.UpdateStatus(ctx, admin, 1042, model.TicketResolved, "")
	require.NoError(t, err)
	assert.Equal(t, model.TicketResolved, ticket.Status)
	assert.Equal(t, "José (Zelador)", ticket.AssignedTo)
	assert.Equal(t, testNow, ticket.UpdatedAt)

	ticket, err = s.UpdateStatus(ctx, admin, 1041, model.TicketInProgress, "Portaria Tech")
	require.NoError(t, err)
	assert.Equal(t, "Portaria Tech", ticket.AssignedTo)
	assert.Equal(t, []string{"ticket.updated", "ticket.updated"}, rec.published())

	_, err = s.UpdateStatus(ctx, admin, 1041, "closed", "")
	assert.ErrorIs(t, err, ErrInvalidValue)

	_, err = s.UpdateStatus(ctx, admin, 9999, model.TicketOpen, "")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = s.UpdateStatus(ctx, resident, 1041, model.TicketResolved, "")
	assert.True(t, access.IsAccessDenied(err))

	require.NoError(t, s.Delete(ctx, admin, 1038))
	assert.ErrorIs(t, s.Delete(ctx, admin, 1038), repository.ErrNotFound)
}
