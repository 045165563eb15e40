package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"condoflow/internal/access"
	"condoflow/internal/events"
	"condoflow/internal/listview"
	"condoflow/internal/model"
)

func newTestFinance() *Finance {
	f := NewFinance(seeded(), events.Discard{}, nop())
	f.now = clock
	return f
}

func TestFinanceSummary(t *testing.T) {
	ctx := context.Background()
	f := newTestFinance()

	all, err := f.Summary(ctx, admin)
	require.NoError(t, err)
	assert.InDelta(t, 1000, all.RealIncome, 0.001)
	assert.InDelta(t, 5801.40, all.RealExpense, 0.001)
	assert.InDelta(t, 1100, all.PendingIncome, 0.001)
	assert.InDelta(t, 450, all.PendingExpense, 0.001)
	assert.InDelta(t, -4801.40, all.Balance, 0.001)

	own, err := f.Summary(ctx, resident)
	require.NoError(t, err)
	assert.Equal(t, model.FinancialSummary{RealIncome: 850, Balance: 850}, own)
}

func TestFinanceList(t *testing.T) {
	ctx := context.Background()
	f := newTestFinance()

	view, err := f.List(ctx, admin, listview.Query{})
	require.NoError(t, err)
	assert.Equal(t, 9, view.TotalItems)
	assert.Equal(t, 2, view.TotalPages)
	assert.Len(t, view.Items, 7)
	assert.Equal(t, int64(8), view.Items[0].ID, "newest first")
	assert.Equal(t, "date", view.SortKey)

	view, err = f.List(ctx, admin, listview.Query{SortKey: "amount", SortDir: listview.Desc, Filters: map[string]string{"type": "income"}})
	require.NoError(t, err)
	require.Len(t, view.Items, 4)
	assert.InDelta(t, 850, view.Items[0].Amount, 0.001)
	assert.InDelta(t, 150, view.Items[3].Amount, 0.001)

	view, err = f.List(ctx, admin, listview.Query{Search: "enel"})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(5), view.Items[0].ID)

	view, err = f.List(ctx, resident, listview.Query{})
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Unidade 302-B", view.Items[0].Entity)

	_, err = f.Get(ctx, resident, 2)
	assert.Error(t, err)
}

func TestFinanceChart(t *testing.T) {
	ctx := context.Background()
	f := newTestFinance()

	year, err := f.Chart(ctx, admin, Period1Y)
	require.NoError(t, err)
	assert.Len(t, year, 12)

	half, err := f.Chart(ctx, admin, Period6M)
	require.NoError(t, err)
	require.Len(t, half, 6)
	assert.Equal(t, "Jan", half[0].Name)

	_, err = f.Chart(ctx, admin, "5y")
	var input *InputError
	assert.ErrorAs(t, err, &input)

	_, err = f.Chart(ctx, resident, Period1Y)
	assert.True(t, access.IsAccessDenied(err))
}

func TestFinanceCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		draft   TransactionDraft
		message string
	}{
		{"zero amount", TransactionDraft{Description: "Taxa", Type: model.TransactionIncome}, "O valor deve ser maior que zero."},
		{"negative amount", TransactionDraft{Description: "Taxa", Amount: -5, Type: model.TransactionIncome}, "O valor deve ser maior que zero."},
		{"no description", TransactionDraft{Amount: 10, Type: model.TransactionIncome}, "Informe a descrição do lançamento."},
		{"bad date", TransactionDraft{Description: "Taxa", Amount: 10, Type: model.TransactionIncome, Date: "10/12/2026"}, "Data inválida. Use o formato AAAA-MM-DD."},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestFinance().Create(ctx, admin, tc.draft)
			var input *InputError
			require.ErrorAs(t, err, &input)
			assert.Equal(t, tc.message, input.Message)
		})
	}

	t.Run("created entry leads the list", func(t *testing.T) {
		f := newTestFinance()
		txn, err := f.Create(ctx, admin, TransactionDraft{Description: "Taxa extra", Amount: 120, Type: model.TransactionIncome, Entity: "Unidade 302-B"})
		require.NoError(t, err)
		assert.Equal(t, int64(10), txn.ID)
		assert.Equal(t, "2026-12-10", txn.Date)
		assert.Equal(t, model.TransactionPending, txn.Status)

		view, err := f.List(ctx, resident, listview.Query{})
		require.NoError(t, err)
		assert.Len(t, view.Items, 2)
		assert.Equal(t, int64(10), view.Items[0].ID)
	})

	t.Run("residents cannot write", func(t *testing.T) {
		f := newTestFinance()
		_, err := f.Create(ctx, resident, TransactionDraft{Description: "x", Amount: 1, Type: model.TransactionIncome})
		assert.True(t, access.IsAccessDenied(err))
		assert.True(t, access.IsAccessDenied(f.Delete(ctx, resident, 1)))
	})
}

func TestFinanceUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newTestFinance()

	txn, err := f.Update(ctx, admin, 3, TransactionDraft{Description: "Serviço de Jardinagem", Amount: 450, Type: model.TransactionExpense, Status: model.TransactionCompleted, Date: "2026-12-03"})
	require.NoError(t, err)
	assert.Equal(t, model.TransactionCompleted, txn.Status)

	sum, err := f.Summary(ctx, admin)
	require.NoError(t, err)
	assert.InDelta(t, 0, sum.PendingExpense, 0.001)

	require.NoError(t, f.Delete(ctx, admin, 3))
	_, err = f.Get(ctx, admin, 3)
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	f := newTestFinance()
	txns, err := f.Export(context.Background(), admin, listview.Query{Filters: map[string]string{"type": "income"}})
	require.NoError(t, err)
	require.Len(t, txns, 4)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, txns))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"ID", "Descrição", "Categoria", "Entidade", "Data", "Tipo", "Valor", "Status"}, rows[0])
	assert.Equal(t, "8", rows[1][0])
	assert.Equal(t, "Receita", rows[1][5])
	assert.Equal(t, "150.00", rows[1][6])
}
