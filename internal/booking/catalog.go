package booking

import (
	"slices"
	"sync"

	"condoflow/internal/model"
)

// Catalog is the live set of bookable areas and holidays. It is replaced as a
// whole when areas.yaml changes.
type Catalog struct {
	mu       sync.RWMutex
	areas    []model.Area
	holidays map[string]string
}

func NewCatalog(areas []model.Area, holidays map[string]string) *Catalog {
	c := &Catalog{}
	c.Replace(areas, holidays)
	return c
}

// Replace swaps the catalog content.
func (c *Catalog) Replace(areas []model.Area, holidays map[string]string) {
	if holidays == nil {
		holidays = map[string]string{}
	}
	c.mu.Lock()
	c.areas = slices.Clone(areas)
	c.holidays = holidays
	c.mu.Unlock()
}

// Areas returns every area, active or not.
func (c *Catalog) Areas() []model.Area {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.areas)
}

// Area looks an area up by display name.
func (c *Catalog) Area(name string) (model.Area, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.areas {
		if a.Name == name {
			return a, true
		}
	}
	return model.Area{}, false
}

// Holidays returns the holiday calendar. Callers must not modify it.
func (c *Catalog) Holidays() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.holidays
}
