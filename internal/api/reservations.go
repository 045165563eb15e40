package api

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"condoflow/internal/access"
	"condoflow/internal/audit"
	"condoflow/internal/booking"
	"condoflow/internal/model"
)

type reservationRequest struct {
	Area         string `json:"area" validate:"max=120"`
	ResidentName string `json:"resident_name" validate:"max=120"`
	Unit         string `json:"unit" validate:"max=20"`
	Date         string `json:"date" validate:"max=10"`
	StartTime    string `json:"start_time" validate:"max=5"`
	EndTime      string `json:"end_time" validate:"max=5"`
	Guests       int    `json:"guests" validate:"gte=0"`
	Notes        string `json:"notes" validate:"max=500"`
}

// draft converts the body. Blank times stay zero and are caught by the
// interval check.
func (req *reservationRequest) draft() (booking.Draft, error) {
	d := booking.Draft{
		Area:         strings.TrimSpace(req.Area),
		ResidentName: strings.TrimSpace(req.ResidentName),
		Unit:         strings.TrimSpace(req.Unit),
		Date:         strings.TrimSpace(req.Date),
		Guests:       req.Guests,
		Notes:        req.Notes,
	}
	for _, t := range []struct {
		raw string
		dst *model.TimeOfDay
	}{{req.StartTime, &d.Start}, {req.EndTime, &d.End}} {
		if t.raw == "" {
			continue
		}
		parsed, err := model.ParseTimeOfDay(t.raw)
		if err != nil {
			return d, &booking.ValidationError{
				Reason:  "interval",
				Message: "Horário inválido. Use o formato HH:MM.",
				Err:     booking.ErrInvalidInterval,
			}
		}
		*t.dst = parsed
	}
	return d, nil
}

// GET /api/areas
func (s *HTTPServer) handleListAreas(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Reservations.Catalog().Areas())
}

// GET /api/reservations?tab=pending&q=&area=&status=&sort=&dir=&page=&page_size=
func (s *HTTPServer) handleListReservations(w http.ResponseWriter, r *http.Request) {
	q, err := reservationQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	result, err := s.deps.Reservations.List(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func reservationQuery(r *http.Request) (booking.ListQuery, error) {
	q, err := listQuery(r, booking.ListSpec)
	if err != nil {
		return booking.ListQuery{}, err
	}
	return booking.ListQuery{Tab: model.Tab(r.URL.Query().Get("tab")), Query: q}, nil
}

// GET /api/reservations/availability?area=Salão de Festas&date=2026-12-11
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	slots, err := s.deps.Reservations.Availability(r.Context(), values.Get("area"), values.Get("date"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// GET /api/reservations/export
func (s *HTTPServer) handleExportReservations(w http.ResponseWriter, r *http.Request) {
	q, err := reservationQuery(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	items, err := s.deps.Reservations.Export(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := audit.WriteReservations(&buf, items); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "reservas.xlsx", contentTypeXLSX, buf.Bytes())
}

// GET /api/reservations/{id}
func (s *HTTPServer) handleGetReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.deps.Reservations.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/reservations
func (s *HTTPServer) handleCreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reservationRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.deps.Reservations.Submit(r.Context(), actorFrom(r), d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// PUT /api/reservations/{id}
func (s *HTTPServer) handleUpdateReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req reservationRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	d, err := req.draft()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.deps.Reservations.Update(r.Context(), actorFrom(r), id, d)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// DELETE /api/reservations/{id}
func (s *HTTPServer) handleDeleteReservation(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Reservations.Delete(r.Context(), actorFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleApproveReservation(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.deps.Reservations.Approve)
}

func (s *HTTPServer) handleRejectReservation(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.deps.Reservations.Reject)
}

func (s *HTTPServer) handleCompleteReservation(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.deps.Reservations.Complete)
}

type transitionFunc func(ctx context.Context, actor access.Actor, id int64) (*model.Reservation, error)

func (s *HTTPServer) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := fn(r.Context(), actorFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
