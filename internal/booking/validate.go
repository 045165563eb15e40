package booking

import (
	"strings"

	"condoflow/internal/model"
)

// CheckRequired rejects drafts with blank mandatory fields.
func CheckRequired(r *model.Reservation) error {
	missing := strings.TrimSpace(r.Area) == "" ||
		strings.TrimSpace(r.ResidentName) == "" ||
		strings.TrimSpace(r.Unit) == "" ||
		strings.TrimSpace(r.Date) == "" ||
		r.Guests <= 0
	if missing {
		return invalid("required", ErrRequiredField, "Preencha todos os campos obrigatórios.")
	}
	if !model.ValidDate(r.Date) {
		return invalid("date", ErrInvalidDate, "Data inválida. Use o formato AAAA-MM-DD.")
	}
	return nil
}

// CheckCapacity accepts exactly up to the area capacity.
func CheckCapacity(guests int, area *model.Area) error {
	if guests > area.Capacity {
		return invalid("capacity", ErrCapacityExceeded,
			"Capacidade excedida! O local suporta máx. %d pessoas.", area.Capacity)
	}
	return nil
}

// CheckInterval requires start strictly before end.
func CheckInterval(start, end model.TimeOfDay) error {
	if start >= end {
		return invalid("interval", ErrInvalidInterval, "Horário inválido. O início deve ser antes do fim.")
	}
	return nil
}

// CheckSchedule applies the area opening hours and the holiday calendar.
func CheckSchedule(r *model.Reservation, area *model.Area, holidays map[string]string) error {
	if name, ok := holidays[r.Date]; ok {
		return invalid("holiday", ErrHoliday, "Áreas comuns fechadas neste dia (%s).", name)
	}
	if area.HasHours() && (r.Start < area.OpensAt || r.End > area.ClosesAt) {
		return invalid("hours", ErrOutsideHours,
			"Fora do horário de funcionamento (%s às %s).", area.OpensAt, area.ClosesAt)
	}
	return nil
}

// Validate runs every precondition of a submission in order: required
// fields, capacity, interval, schedule and finally the conflict check
// against existing reservations.
func Validate(candidate *model.Reservation, area *model.Area, existing []model.Reservation, holidays map[string]string) error {
	if err := CheckRequired(candidate); err != nil {
		return err
	}
	if !area.Active {
		return invalid("area", ErrAreaInactive, "Esta área não está disponível para reservas.")
	}
	if err := CheckCapacity(candidate.Guests, area); err != nil {
		return err
	}
	if err := CheckInterval(candidate.Start, candidate.End); err != nil {
		return err
	}
	if err := CheckSchedule(candidate, area, holidays); err != nil {
		return err
	}
	if _, found := FindConflict(candidate, existing); found {
		return invalid("conflict", ErrTimeConflict,
			"Horário indisponível! Já existe uma reserva para este local neste período.")
	}
	return nil
}
