package model

type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionPending   TransactionStatus = "pending"
	TransactionOverdue   TransactionStatus = "overdue"
)

// Transaction is an entry of the condominium cash flow.
type Transaction struct {
	ID          int64             `json:"id"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	Amount      float64           `json:"amount"`
	Date        string            `json:"date"`
	Type        TransactionType   `json:"type"`
	Status      TransactionStatus `json:"status"`
	Entity      string            `json:"entity"`
	ReceiptURL  string            `json:"receipt_url,omitempty"`
}

// Open reports whether the transaction is still awaiting settlement.
func (t *Transaction) Open() bool {
	return t.Status == TransactionPending || t.Status == TransactionOverdue
}

// FinancialSummary holds settled and open totals.
type FinancialSummary struct {
	RealIncome     float64 `json:"real_income"`
	RealExpense    float64 `json:"real_expense"`
	Balance        float64 `json:"balance"`
	PendingIncome  float64 `json:"pending_income"`
	PendingExpense float64 `json:"pending_expense"`
}

// ChartPoint is one month of the revenue chart.
type ChartPoint struct {
	Name    string  `json:"name"`
	Revenue float64 `json:"revenue"`
	Expense float64 `json:"expense"`
}
