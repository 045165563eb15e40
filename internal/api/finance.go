package api

import (
	"bytes"
	"net/http"

	"condoflow/internal/audit"
	"condoflow/internal/model"
	"condoflow/internal/service"
)

type transactionRequest struct {
	Description string  `json:"description" validate:"max=200"`
	Category    string  `json:"category" validate:"max=80"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date" validate:"max=10"`
	Type        string  `json:"type" validate:"required,oneof=income expense"`
	Status      string  `json:"status" validate:"omitempty,oneof=completed pending overdue"`
	Entity      string  `json:"entity" validate:"max=120"`
	ReceiptURL  string  `json:"receipt_url" validate:"omitempty,url"`
}

func (req *transactionRequest) draft() service.TransactionDraft {
	return service.TransactionDraft{
		Description: req.Description,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Type:        model.TransactionType(req.Type),
		Status:      model.TransactionStatus(req.Status),
		Entity:      req.Entity,
		ReceiptURL:  req.ReceiptURL,
	}
}

// GET /api/transactions?q=&type=&status=&sort=&dir=&page=
func (s *HTTPServer) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, service.TransactionSpec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	view, err := s.deps.Finance.List(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/transactions/summary
func (s *HTTPServer) handleFinanceSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Finance.Summary(r.Context(), actorFrom(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// GET /api/transactions/chart?period=6m|1y
func (s *HTTPServer) handleFinanceChart(w http.ResponseWriter, r *http.Request) {
	points, err := s.deps.Finance.Chart(r.Context(), actorFrom(r), r.URL.Query().Get("period"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// handleExportTransactions downloads the filtered cash flow as CSV (default)
// or XLSX.
// GET /api/transactions/export?format=csv|xlsx
func (s *HTTPServer) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	q, err := listQuery(r, service.TransactionSpec)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	if format != "" && format != "csv" && format != "xlsx" {
		s.fail(w, r, badRequest("Formato de exportação inválido: %s.", format))
		return
	}

	txns, err := s.deps.Finance.Export(r.Context(), actorFrom(r), q)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	if format == "xlsx" {
		if err := audit.WriteTransactions(&buf, txns); err != nil {
			s.fail(w, r, err)
			return
		}
		writeAttachment(w, "transacoes.xlsx", contentTypeXLSX, buf.Bytes())
		return
	}
	if err := service.WriteCSV(&buf, txns); err != nil {
		s.fail(w, r, err)
		return
	}
	writeAttachment(w, "transacoes.csv", contentTypeCSV, buf.Bytes())
}

// GET /api/transactions/{id}
func (s *HTTPServer) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Finance.Get(r.Context(), actorFrom(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// POST /api/transactions
func (s *HTTPServer) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Finance.Create(r.Context(), actorFrom(r), req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// PUT /api/transactions/{id}
func (s *HTTPServer) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req transactionRequest
	if err := s.decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	t, err := s.deps.Finance.Update(r.Context(), actorFrom(r), id, req.draft())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DELETE /api/transactions/{id}
func (s *HTTPServer) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.deps.Finance.Delete(r.Context(), actorFrom(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
