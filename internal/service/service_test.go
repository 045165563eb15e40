package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"condoflow/internal/access"
	"condoflow/internal/model"
	"condoflow/internal/repository"
)

var testNow = time.Date(2026, 12, 10, 9, 0, 0, 0, time.UTC)

var (
	admin = access.NewActor(model.UserProfile{
		ID: "1", Name: "Sarah Johnson", Email: "admin@condoflow.com", Role: model.RoleAdmin,
	})
	resident = access.NewActor(model.UserProfile{
		ID: "2", Name: "Ricardo Almeida", Email: "morador@condoflow.com", Role: model.RoleResident,
		Unit: "302", Block: "B",
	})
)

func clock() time.Time { return testNow }

func seeded() *repository.Memory {
	return repository.NewSeededMemory(testNow)
}

func nop() zerolog.Logger { return zerolog.Nop() }

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) PublishJSON(eventType string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
	return nil
}

func (r *recorder) published() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}
