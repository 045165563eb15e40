package api

import (
	"net/http"

	"condoflow/internal/service"
)

type unitRequest struct {
	Unit     string `json:"unit" validate:"max=20"`
	Block    string `json:"block" validate:"max=40"`
	Name     string `json:"name" validate:"max=120"`
	Email    string `json:"email" validate:"max=254"`
	Phone    string `json:"phone" validate:"max=40"`
	Type     string `json:"type" validate:"max=40"`
	Owner    string `json:"owner" validate:"max=120"`
	Status   string `json:"status" validate:"max=40"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
}

func (req *unitRequest) draft() service.UnitDraft {
	return service.UnitDraft{
		Unit:     req.Unit,
		Block:    req.Block,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Type:     req.Type,
		Owner:    req.Owner,
		Status:   req.Status,
		ImageURL: req.ImageURL,
	}
}

// GET /api/units?q=&block=&type=&status=&sort=&dir=&page=
func (s *HTTPServer) handleListUnits(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, service.UnitSpec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.deps.Directory.List(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/units/stats
func (s *HTTPServer) handleUnitStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.deps.Directory.Stats(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// POST /api/units
func (s *HTTPServer) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	unit, err := s.deps.Directory.Create(r.Context(), actorFrom(r), req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, unit)
}

// PUT /api/units/{id}
func (s *HTTPServer) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	var req unitRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	unit, err := s.deps.Directory.Update(r.Context(), actorFrom(r), unitID(r), req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// POST /api/units/{id}/vacate
func (s *HTTPServer) handleVacateUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := s.deps.Directory.Vacate(r.Context(), actorFrom(r), unitID(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, unit)
}

// DELETE /api/units/{id}
func (s *HTTPServer) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Directory.Delete(r.Context(), actorFrom(r), unitID(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
