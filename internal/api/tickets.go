package api

import (
	"bytes"
	"net/http"

	"condoflow/internal/audit"
	"condoflow/internal/model"
	"condoflow/internal/service"
)

type ticketRequest struct {
	Title       string `json:"title" validate:"max=200"`
	Description string `json:"description" validate:"max=2000"`
	Category    string `json:"category" validate:"max=80"`
	Priority    string `json:"priority" validate:"omitempty,oneof=low medium high critical"`
	Location    string `json:"location" validate:"max=120"`
	Requester   string `json:"requester" validate:"max=120"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
}

type ticketStatusRequest struct {
	Status     string `json:"status" validate:"required,oneof=open in_progress waiting resolved"`
	AssignedTo string `json:"assigned_to" validate:"max=120"`
}

// GET /api/tickets?q=&status=&priority=&category=&sort=&dir=&page=
func (s *HTTPServer) handleListTickets(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, service.TicketSpec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.deps.Tickets.List(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/tickets/export
func (s *HTTPServer) handleExportTickets(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, service.TicketSpec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	tickets, err := s.deps.Tickets.Export(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := audit.WriteTickets(&buf, tickets); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "chamados.xlsx", contentTypeXLSX, buf.Bytes())
}

// GET /api/tickets/{id}
func (s *HTTPServer) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Tickets.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /api/tickets
func (s *HTTPServer) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req ticketRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Tickets.Create(r.Context(), actorFrom(r), service.TicketDraft{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    model.TicketPriority(req.Priority),
		Location:    req.Location,
		Requester:   req.Requester,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// PATCH /api/tickets/{id}
func (s *HTTPServer) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req ticketStatusRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Tickets.UpdateStatus(r.Context(), actorFrom(r), id, model.TicketStatus(req.Status), req.AssignedTo)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /api/tickets/{id}
func (s *HTTPServer) handleDeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Tickets.Delete(r.Context(), actorFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
