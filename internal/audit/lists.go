package audit

import (
	"io"

	"condoflow/internal/model"
)

var (
	transactionHeader = []string{"ID", "Descrição", "Categoria", "Entidade", "Data", "Tipo", "Valor", "Status"}
	ticketHeader      = []string{"ID", "Título", "Categoria", "Solicitante", "Data", "Prioridade", "Status", "Local", "Responsável"}
	reservationHeader = []string{"ID", "Área", "Morador", "Unidade", "Data", "Início", "Fim", "Convidados", "Status", "Observações"}
)

// WriteTransactions writes txns as a single-sheet workbook.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	return writeSheet(w, "Transações", transactionHeader, len(txns), func(i int) []any {
		t := txns[i]
		kind := "Despesa"
		if t.Type == model.TransactionIncome {
			kind = "Receita"
		}
		return []any{t.ID, t.Description, t.Category, t.Entity, t.Date, kind, t.Amount, string(t.Status)}
	})
}

// WriteTickets writes tickets as a single-sheet workbook.
func WriteTickets(w io.Writer, tickets []model.Ticket) error {
	return writeSheet(w, "Chamados", ticketHeader, len(tickets), func(i int) []any {
		t := tickets[i]
		return []any{t.ID, t.Title, t.Category, t.Requester, t.Date, string(t.Priority), string(t.Status), t.Location, t.AssignedTo}
	})
}

// WriteReservations writes reservations as a single-sheet workbook.
func WriteReservations(w io.Writer, reservations []model.Reservation) error {
	return writeSheet(w, "Reservas", reservationHeader, len(reservations), func(i int) []any {
		r := reservations[i]
		return []any{r.ID, r.Area, r.ResidentName, r.Unit, r.Date, r.Start.String(), r.End.String(), r.Guests, string(r.Status), r.Notes}
	})
}

func writeSheet(w io.Writer, sheet string, header []string, n int, row func(int) []any) error {
	xl := NewWriter()
	defer xl.Close()

	if err := xl.AddSheet(sheet); err != nil {
		return err
	}
	if err := xl.WriteHeader(header); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := xl.WriteRow(row(i)); err != nil {
			return err
		}
	}
	return xl.Save(w)
}
