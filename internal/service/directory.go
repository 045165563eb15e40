package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/listview"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

const (
	TypeOwner  = "Proprietário"
	TypeTenant = "Inquilino"
	TypeVacant = "-"

	ownerSameAsResident = "Mesmo do Morador"
	ownerUnknown        = "Não Informado"
)

// UnitDraft is the directory form.
type UnitDraft struct {
	Unit     string
	Block    string
	Name     string
	Email    string
	Phone    string
	Type     string
	Owner    string
	Status   string
	ImageURL string
}

// UnitSpec drives the directory list.
var UnitSpec = &listview.Spec[model.Unit]{
	Search: []func(model.Unit) string{
		func(u model.Unit) string { return u.Unit },
		func(u model.Unit) string { return u.ResidentName() },
		func(u model.Unit) string { return u.ContactEmail() },
	},
	Filters: map[string]func(model.Unit) string{
		"block":  func(u model.Unit) string { return u.Block },
		"type":   func(u model.Unit) string { return u.Type },
		"status": func(u model.Unit) string { return u.Status },
	},
	Sorts: map[string]listview.SortField[model.Unit]{
		"unit":     {Text: func(u model.Unit) string { return u.Unit }},
		"resident": {Text: func(u model.Unit) string { return u.ResidentName() }},
		"type":     {Text: func(u model.Unit) string { return u.Type }},
		"status":   {Text: func(u model.Unit) string { return u.Status }},
	},
	DefaultPageSize: listview.PageSizeSmall,
}

// Directory manages units and their residents.
type Directory struct {
	repo   repository.UnitRepository
	logger zerolog.Logger
}

func NewDirectory(repo repository.UnitRepository, logger zerolog.Logger) *Directory {
	return &Directory{repo: repo, logger: logger.With().Str("component", "directory").Logger()}
}

// List returns a page of the directory. Contact data is hidden from actors
// without the private contact capability.
func (d *Directory) List(ctx context.Context, actor access.Actor, q listview.Query) (listview.View[model.Unit], error) {
	if err := UnitSpec.Validate(q); err != nil {
		return listview.View[model.Unit]{}, err
	}
	units, err := d.repo.ListUnits(ctx)
	if err != nil {
		return listview.View[model.Unit]{}, fmt.Errorf("list units: %w", err)
	}

	view := UnitSpec.Derive(units, q)
	if !actor.Can.CanSeePrivateContact {
		for i := range view.Items {
			view.Items[i].Contact = nil
		}
	}
	return view, nil
}

// Stats counts occupied and vacant units. Units with pending payment are
// still occupied.
func (d *Directory) Stats(ctx context.Context) (model.DirectoryStats, error) {
	units, err := d.repo.ListUnits(ctx)
	if err != nil {
		return model.DirectoryStats{}, fmt.Errorf("list units: %w", err)
	}

	var stats model.DirectoryStats
	for _, u := range units {
		switch u.Status {
		case model.UnitOccupied, model.UnitPaymentPending:
			stats.Occupied++
		case model.UnitVacant:
			stats.Vacant++
		}
		if u.Resident != nil {
			stats.TotalResidents++
		}
	}
	return stats, nil
}

// Create registers a unit with its resident.
func (d *Directory) Create(ctx context.Context, actor access.Actor, draft UnitDraft) (*model.Unit, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	u, err := buildUnit(draft, "Novo")
	if err != nil {
		return nil, err
	}
	if err := d.repo.CreateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("create unit: %w", err)
	}

	d.logger.Info().Str("unit_id", u.ID).Str("unit", u.Unit).Str("invite", u.ContactEmail()).Msg("unit created")
	return u, nil
}

// Update replaces the unit data.
func (d *Directory) Update(ctx context.Context, actor access.Actor, id string, draft UnitDraft) (*model.Unit, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	if _, err := d.repo.GetUnit(ctx, id); err != nil {
		return nil, err
	}
	u, err := buildUnit(draft, "Atualizado")
	if err != nil {
		return nil, err
	}
	u.ID = id
	if err := d.repo.UpdateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("update unit %s: %w", id, err)
	}

	d.logger.Info().Str("unit_id", id).Msg("unit updated")
	return u, nil
}

// Vacate clears the resident of a unit and marks it vacant.
func (d *Directory) Vacate(ctx context.Context, actor access.Actor, id string) (*model.Unit, error) {
	if err := actor.Require(access.Edit); err != nil {
		return nil, err
	}
	u, err := d.repo.GetUnit(ctx, id)
	if err != nil {
		return nil, err
	}

	u.Resident = nil
	u.Contact = nil
	u.Type = TypeVacant
	if u.Owner == ownerSameAsResident {
		u.Owner = ownerUnknown
	}
	u.Status = model.UnitVacant

	if err := d.repo.UpdateUnit(ctx, u); err != nil {
		return nil, fmt.Errorf("update unit %s: %w", id, err)
	}
	d.logger.Info().Str("unit_id", id).Msg("unit vacated")
	return u, nil
}

func (d *Directory) Delete(ctx context.Context, actor access.Actor, id string) error {
	if err := actor.Require(access.Edit); err != nil {
		return err
	}
	if err := d.repo.DeleteUnit(ctx, id); err != nil {
		return err
	}
	d.logger.Info().Str("unit_id", id).Msg("unit deleted")
	return nil
}

func buildUnit(d UnitDraft, since string) (*model.Unit, error) {
	if strings.TrimSpace(d.Unit) == "" {
		return nil, required("unit", "Informe o número da unidade.")
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, required("name", "Informe o nome do morador.")
	}
	if !strings.Contains(d.Email, "@") {
		return nil, invalidValue("email", "Por favor, insira um endereço de e-mail válido.")
	}

	if d.Block == "" {
		d.Block = "Bloco A"
	}
	if d.Type == "" || d.Type == TypeVacant {
		d.Type = TypeTenant
	}
	if d.Type != TypeOwner && d.Type != TypeTenant {
		return nil, invalidValue("type", "Tipo de morador inválido: %s.", d.Type)
	}
	switch d.Status {
	case "":
		d.Status = model.UnitOccupied
	case model.UnitOccupied, model.UnitVacant, model.UnitPaymentPending, model.UnitMaintenance:
	default:
		return nil, invalidValue("status", "Status de unidade inválido: %s.", d.Status)
	}

	owner := strings.TrimSpace(d.Owner)
	if owner == "" {
		owner = ownerUnknown
		if d.Type == TypeOwner {
			owner = ownerSameAsResident
		}
	}
	phone := d.Phone
	if phone == "" {
		phone = "Pendente"
	}

	return &model.Unit{
		Unit:     d.Unit,
		Block:    d.Block,
		Resident: &model.Resident{Name: d.Name, Since: since, Image: d.ImageURL},
		Type:     d.Type,
		Contact:  &model.Contact{Phone: phone, Email: d.Email},
		Owner:    owner,
		Status:   d.Status,
	}, nil
}
