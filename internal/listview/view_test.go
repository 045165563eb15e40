package listview

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txn struct {
	ID          int
	Description string
	Entity      string
	Amount      float64
	Type        string
	Status      string
}

func sampleTxns() []txn {
	return []txn{
		{1, "Taxa Condominial - Dezembro", "Unidade 302-B", 850, "income", "completed"},
		{2, "Manutenção de Elevadores", "Otis Elevadores", 1200, "expense", "completed"},
		{3, "Serviço de Jardinagem", "Verde Vida Paisagismo", 450, "expense", "pending"},
		{4, "Taxa Condominial - Dezembro", "Unidade 105-A", 850, "income", "overdue"},
		{5, "Conta de Energia", "Enel", 3240.5, "expense", "completed"},
		{6, "Multa por Barulho", "Unidade 501-C", 250, "income", "pending"},
		{7, "Produtos de Limpeza", "Limpa Tudo Ltda", 380.9, "expense", "completed"},
		{8, "Reserva Salão de Festas", "Unidade 204-A", 150, "income", "completed"},
		{9, "Seguro Predial", "Porto Seguro", 980, "expense", "completed"},
	}
}

func txnSpec() *Spec[txn] {
	return &Spec[txn]{
		Search: []func(txn) string{
			func(t txn) string { return t.Description },
			func(t txn) string { return t.Entity },
		},
		Filters: map[string]func(txn) string{
			"type": func(t txn) string { return t.Type },
		},
		Sorts: map[string]SortField[txn]{
			"description": {Text: func(t txn) string { return t.Description }},
			"amount":      {Number: func(t txn) float64 { return t.Amount }},
			"status":      {Text: func(t txn) string { return t.Status }},
		},
		DefaultPageSize: PageSizeSmall,
	}
}

func ids(items []txn) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name      string
		query     Query
		wantIDs   []int
		wantPage  int
		wantPages int
		wantTotal int
	}{
		{
			name:      "no query keeps insertion order",
			query:     Query{Page: 1},
			wantIDs:   []int{1, 2, 3, 4, 5},
			wantPage:  1,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "search is case insensitive over all fields",
			query:     Query{Search: "UNIDADE", Page: 1},
			wantIDs:   []int{1, 4, 6, 8},
			wantPage:  1,
			wantPages: 1,
			wantTotal: 4,
		},
		{
			name:      "filter by type",
			query:     Query{Filters: map[string]string{"type": "expense"}, Page: 1},
			wantIDs:   []int{2, 3, 5, 7, 9},
			wantPage:  1,
			wantPages: 1,
			wantTotal: 5,
		},
		{
			name:      "all sentinel disables filter",
			query:     Query{Filters: map[string]string{"type": "all"}, Page: 2},
			wantIDs:   []int{6, 7, 8, 9},
			wantPage:  2,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "Todos sentinel disables filter",
			query:     Query{Filters: map[string]string{"type": "Todos"}, Page: 1, PageSize: PageSizeLarge},
			wantIDs:   []int{1, 2, 3, 4, 5, 6, 7},
			wantPage:  1,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "numeric sort ascending is stable",
			query:     Query{SortKey: "amount", SortDir: Asc, Page: 1, PageSize: PageSizeLarge},
			wantIDs:   []int{8, 6, 7, 3, 1, 4, 9},
			wantPage:  1,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "numeric sort descending is stable",
			query:     Query{SortKey: "amount", SortDir: Desc, Page: 1, PageSize: PageSizeLarge},
			wantIDs:   []int{5, 2, 9, 1, 4, 3, 7},
			wantPage:  1,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "string sort ignores case",
			query:     Query{SortKey: "description", Search: "a", Filters: map[string]string{"type": "income"}, Page: 1},
			wantIDs:   []int{6, 8, 1, 4},
			wantPage:  1,
			wantPages: 1,
			wantTotal: 4,
		},
		{
			name:      "page beyond range is clamped",
			query:     Query{Page: 99},
			wantIDs:   []int{6, 7, 8, 9},
			wantPage:  2,
			wantPages: 2,
			wantTotal: 9,
		},
		{
			name:      "page below range is clamped",
			query:     Query{Page: -3},
			wantIDs:   []int{1, 2, 3, 4, 5},
			wantPage:  1,
			wantPages: 2,
			wantTotal: 9,
		},
	}

	spec := txnSpec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := spec.Derive(sampleTxns(), tt.query)
			if diff := cmp.Diff(tt.wantIDs, ids(view.Items)); diff != "" {
				t.Errorf("items mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, tt.wantPage, view.Page)
			assert.Equal(t, tt.wantPages, view.TotalPages)
			assert.Equal(t, tt.wantTotal, view.TotalItems)
			assert.False(t, view.NoResults)
		})
	}
}

func TestDerive_NoResults(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{name: "past the end", query: Query{Search: "piscina", Page: 3}},
		{name: "first page", query: Query{Search: "piscina", Page: 1}},
		{name: "page zero", query: Query{Search: "piscina"}},
		{name: "large page size", query: Query{Search: "piscina", Page: 2, PageSize: PageSizeLarge}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := txnSpec().Derive(sampleTxns(), tt.query)

			assert.True(t, view.NoResults)
			assert.Equal(t, 0, view.TotalItems)
			assert.Equal(t, 0, view.TotalPages)
			assert.Equal(t, 1, view.Page)
			assert.Empty(t, view.Items)
			assert.NotNil(t, view.Items)
		})
	}

	t.Run("empty input", func(t *testing.T) {
		view := txnSpec().Derive(nil, Query{Page: 1})
		assert.True(t, view.NoResults)
		assert.Equal(t, 1, view.Page)
		assert.Equal(t, 0, view.TotalPages)
	})
}

func TestDerive_DoesNotMutateInput(t *testing.T) {
	items := sampleTxns()
	before := sampleTxns()

	txnSpec().Derive(items, Query{SortKey: "amount", SortDir: Desc, Page: 1})

	if diff := cmp.Diff(before, items); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestDerive_DefaultSort(t *testing.T) {
	spec := txnSpec()
	spec.DefaultSort = "amount"
	spec.DefaultDir = Desc

	view := spec.Derive(sampleTxns(), Query{Page: 1})
	assert.Equal(t, []int{5, 2, 9, 1, 4}, ids(view.Items))
	assert.Equal(t, "amount", view.SortKey)
	assert.Equal(t, Desc, view.SortDir)
}

func TestSpec_Validate(t *testing.T) {
	spec := txnSpec()

	require.NoError(t, spec.Validate(Query{SortKey: "amount", SortDir: Desc, PageSize: 7}))
	assert.EqualError(t, spec.Validate(Query{SortKey: "color"}), `unknown sort key "color"`)
	assert.EqualError(t, spec.Validate(Query{SortDir: "up"}), `unknown sort direction "up"`)
	assert.EqualError(t, spec.Validate(Query{Filters: map[string]string{"block": "A"}}), `unknown filter "block"`)
	assert.EqualError(t, spec.Validate(Query{PageSize: 10}), "page size must be 5 or 7")
}

func TestIsAll(t *testing.T) {
	assert.True(t, IsAll(""))
	assert.True(t, IsAll("all"))
	assert.True(t, IsAll("ALL"))
	assert.True(t, IsAll("Todos"))
	assert.False(t, IsAll("income"))
}

func TestMatchingSkipsPagination(t *testing.T) {
	q := Query{Filters: map[string]string{"type": "expense"}, SortKey: "amount", SortDir: Desc, Page: 2, PageSize: PageSizeSmall}
	got := txnSpec().Matching(sampleTxns(), q)

	require.Len(t, got, 5)
	assert.Equal(t, 3240.50, got[0].Amount)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Amount, got[i].Amount)
	}
}
