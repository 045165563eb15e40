package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/listview"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

// Chart periods.
const (
	Period6M = "6m"
	Period1Y = "1y"
)

// TransactionSpec drives the finance list. Newest entries come first.
var TransactionSpec = &listview.Spec[model.Transaction]{
	Search: []func(model.Transaction) string{
		func(t model.Transaction) string { return t.Description },
		func(t model.Transaction) string { return t.Entity },
	},
	Filters: map[string]func(model.Transaction) string{
		"type":   func(t model.Transaction) string { return string(t.Type) },
		"status": func(t model.Transaction) string { return string(t.Status) },
	},
	Sorts: map[string]listview.SortField[model.Transaction]{
		"description": {Text: func(t model.Transaction) string { return t.Description }},
		"entity":      {Text: func(t model.Transaction) string { return t.Entity }},
		"date":        {Text: func(t model.Transaction) string { return t.Date }},
		"amount":      {Number: func(t model.Transaction) float64 { return t.Amount }},
		"status":      {Text: func(t model.Transaction) string { return string(t.Status) }},
	},
	DefaultSort:     "date",
	DefaultDir:      listview.Desc,
	DefaultPageSize: listview.PageSizeLarge,
}

// TransactionDraft is the finance form.
type TransactionDraft struct {
	Description string
	Category    string
	Amount      float64
	Date        string
	Type        model.TransactionType
	Status      model.TransactionStatus
	Entity      string
	ReceiptURL  string
}

// Finance manages the cash flow.
type Finance struct {
	repo   repository.TransactionRepository
	events events.Publisher
	logger zerolog.Logger
	now    func() time.Time
	mu     sync.Mutex
}

func NewFinance(repo repository.TransactionRepository, publisher events.Publisher, logger zerolog.Logger) *Finance {
	if publisher == nil {
		publisher = events.Discard{}
	}
	return &Finance{
		repo:   repo,
		events: publisher,
		logger: logger.With().Str("component", "finance").Logger(),
		now:    time.Now,
	}
}

// visible returns the transactions actor may see. Without the financials
// capability only entries of the actor's own unit remain.
func (f *Finance) visible(ctx context.Context, actor access.Actor) ([]model.Transaction, error) {
	all, err := f.repo.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if actor.Can.CanViewAllFinancials {
		return all, nil
	}
	own := make([]model.Transaction, 0)
	for _, t := range all {
		if actor.OwnsUnit(t.Entity) {
			own = append(own, t)
		}
	}
	return own, nil
}

func (f *Finance) List(ctx context.Context, actor access.Actor, q listview.Query) (listview.View[model.Transaction], error) {
	if err := TransactionSpec.Validate(q); err != nil {
		return listview.View[model.Transaction]{}, err
	}
	txns, err := f.visible(ctx, actor)
	if err != nil {
		return listview.View[model.Transaction]{}, err
	}
	return TransactionSpec.Derive(txns, q), nil
}

// Summary totals settled and open entries visible to actor.
func (f *Finance) Summary(ctx context.Context, actor access.Actor) (model.FinancialSummary, error) {
	txns, err := f.visible(ctx, actor)
	if err != nil {
		return model.FinancialSummary{}, err
	}
	return Summarize(txns), nil
}

// Summarize computes the financial summary of txns.
func Summarize(txns []model.Transaction) model.FinancialSummary {
	var s model.FinancialSummary
	for _, t := range txns {
		switch {
		case t.Status == model.TransactionCompleted && t.Type == model.TransactionIncome:
			s.RealIncome += t.Amount
		case t.Status == model.TransactionCompleted && t.Type == model.TransactionExpense:
			s.RealExpense += t.Amount
		case t.Open() && t.Type == model.TransactionIncome:
			s.PendingIncome += t.Amount
		case t.Open() && t.Type == model.TransactionExpense:
			s.PendingExpense += t.Amount
		}
	}
	s.Balance = s.RealIncome - s.RealExpense
	return s
}

// Chart returns the revenue series of period. The chart shows condominium
// totals and needs the financials capability.
func (f *Finance) Chart(ctx context.Context, actor access.Actor, period string) ([]model.ChartPoint, error) {
	if err := actor.Require(access.ViewAllFinancials); err != nil {
		return nil, err
	}
	points, err := f.repo.ChartSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("chart series: %w", err)
	}
	switch period {
	case "", Period1Y:
		return points, nil
	case Period6M:
		if len(points) > 6 {
			points = points[:6]
		}
		return points, nil
	default:
		return nil, invalidValue("period", "Período inválido: %s.", period)
	}
}

// Export returns every visible transaction that matches q, without paging.
func (f *Finance) Export(ctx context.Context, actor access.Actor, q listview.Query) ([]model.Transaction, error) {
	if err := TransactionSpec.Validate(q); err != nil {
		return nil, err
	}
	txns, err := f.visible(ctx, actor)
	if err != nil {
		return nil, err
	}
	return TransactionSpec.Matching(txns, q), nil
}

func (f *Finance) Get(ctx context.Context, actor access.Actor, id int64) (*model.Transaction, error) {
	t, err := f.repo.GetTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Can.CanViewAllFinancials && !actor.OwnsUnit(t.Entity) {
		return nil, repository.ErrNotFound
	}
	return t, nil
}

func (f *Finance) Create(ctx context.Context, actor access.Actor, draft TransactionDraft) (*model.Transaction, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	t, err := f.build(draft)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.repo.CreateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	f.logger.Info().Int64("transaction_id", t.ID).Str("type", string(t.Type)).Float64("amount", t.Amount).Msg("transaction created")
	f.publish(t)
	return t, nil
}

func (f *Finance) Update(ctx context.Context, actor access.Actor, id int64, draft TransactionDraft) (*model.Transaction, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	t, err := f.build(draft)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, err := f.repo.GetTransaction(ctx, id); err != nil {
		return nil, err
	}
	t.ID = id
	if err := f.repo.UpdateTransaction(ctx, t); err != nil {
		return nil, fmt.Errorf("update transaction %d: %w", id, err)
	}

	f.logger.Info().Int64("transaction_id", id).Msg("transaction updated")
	f.publish(t)
	return t, nil
}

func (f *Finance) Delete(ctx context.Context, actor access.Actor, id int64) error {
	if err := actor.Require(access.Edit); err != nil {
		return err
	}
	if err := f.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	f.logger.Info().Int64("transaction_id", id).Msg("transaction deleted")
	f.publish(&model.Transaction{ID: id})
	return nil
}

func (f *Finance) build(d TransactionDraft) (*model.Transaction, error) {
	if strings.TrimSpace(d.Description) == "" {
		return nil, required("description", "Informe a descrição do lançamento.")
	}
	if d.Amount <= 0 {
		return nil, invalidValue("amount", "O valor deve ser maior que zero.")
	}
	if d.Type != model.TransactionIncome && d.Type != model.TransactionExpense {
		return nil, invalidValue("type", "Tipo de lançamento inválido: %s.", d.Type)
	}
	switch d.Status {
	case "":
		d.Status = model.TransactionPending
	case model.TransactionCompleted, model.TransactionPending, model.TransactionOverdue:
	default:
		return nil, invalidValue("status", "Status de lançamento inválido: %s.", d.Status)
	}
	if d.Date == "" {
		d.Date = f.now().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, d.Date); err != nil {
		return nil, invalidValue("date", "Data inválida. Use o formato AAAA-MM-DD.")
	}
	if d.Category == "" {
		d.Category = "Geral"
	}

	return &model.Transaction{
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		Amount:      d.Amount,
		Date:        d.Date,
		Type:        d.Type,
		Status:      d.Status,
		Entity:      d.Entity,
		ReceiptURL:  d.ReceiptURL,
	}, nil
}

func (f *Finance) publish(t *model.Transaction) {
	if err := f.events.PublishJSON(events.TransactionChanged, t); err != nil {
		f.logger.Warn().Err(err).Msg("publish transaction event")
	}
}

var csvHeader = []string{"ID", "Descrição", "Categoria", "Entidade", "Data", "Tipo", "Valor", "Status"}

// WriteCSV writes txns in the spreadsheet layout used by the finance export.
func WriteCSV(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txns {
		kind := "Despesa"
		if t.Type == model.TransactionIncome {
			kind = "Receita"
		}
		record := []string{
			strconv.FormatInt(t.ID, 10),
			t.Description,
			t.Category,
			t.Entity,
			t.Date,
			kind,
			strconv.FormatFloat(t.Amount, 'f', 2, 64),
			string(t.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
