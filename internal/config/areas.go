package config

import (
	"fmt"
	"os"
	"time"

	"condoflow/internal/model"

	"gopkg.in/yaml.v3"
)

// AreaConfig describes one bookable common area.
type AreaConfig struct {
	ID       string           `yaml:"id"`
	Name     string           `yaml:"name"`
	Icon     string           `yaml:"icon"`
	Capacity int              `yaml:"capacity"`
	IsActive bool             `yaml:"is_active"`
	Hours    *AreaHoursConfig `yaml:"hours,omitempty"`
}

// AreaHoursConfig limits bookings to opening hours.
type AreaHoursConfig struct {
	Open  string `yaml:"open"`  // "08:00"
	Close string `yaml:"close"` // "23:59"
}

// HolidayConfig closes every area on a date.
type HolidayConfig struct {
	Date string `yaml:"date"` // "2026-12-25"
	Name string `yaml:"name"`
}

type AreaDefaultsConfig struct {
	Hours    *AreaHoursConfig `yaml:"hours"`
	Capacity int              `yaml:"capacity"`
}

// AreasConfig is the root of areas.yaml.
type AreasConfig struct {
	Areas    []AreaConfig       `yaml:"areas"`
	Defaults AreaDefaultsConfig `yaml:"defaults"`
	Holidays []HolidayConfig    `yaml:"holidays"`
}

// LoadAreasConfig loads and validates the area catalog.
func LoadAreasConfig(path string) (*AreasConfig, error) {
	if path == "" {
		path = "configs/areas.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read areas config: %w", err)
	}

	return ParseAreasConfig(data)
}

// ParseAreasConfig decodes and validates areas.yaml content.
func ParseAreasConfig(data []byte) (*AreasConfig, error) {
	var cfg AreasConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse areas config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate areas config: %w", err)
	}

	cfg.applyDefaults()

	return &cfg, nil
}

// Validate checks the configuration for errors.
func (c *AreasConfig) Validate() error {
	if len(c.Areas) == 0 {
		return fmt.Errorf("no areas defined")
	}

	ids := make(map[string]bool)
	names := make(map[string]bool)

	for i, a := range c.Areas {
		if a.ID == "" {
			return fmt.Errorf("area[%d]: id is required", i)
		}
		if ids[a.ID] {
			return fmt.Errorf("area[%d]: duplicate id '%s'", i, a.ID)
		}
		ids[a.ID] = true

		if a.Name == "" {
			return fmt.Errorf("area[%d]: name is required", i)
		}
		if names[a.Name] {
			return fmt.Errorf("area[%d]: duplicate name '%s'", i, a.Name)
		}
		names[a.Name] = true

		if a.Capacity < 0 {
			return fmt.Errorf("area[%d]: capacity cannot be negative", i)
		}

		if a.Hours != nil {
			if err := validateHours(a.Hours, fmt.Sprintf("area[%d].hours", i)); err != nil {
				return err
			}
		}
	}

	if c.Defaults.Hours != nil {
		if err := validateHours(c.Defaults.Hours, "defaults.hours"); err != nil {
			return err
		}
	}

	for i, h := range c.Holidays {
		if h.Date == "" {
			return fmt.Errorf("holiday[%d]: date is required", i)
		}
		if _, err := time.Parse(model.DateLayout, h.Date); err != nil {
			return fmt.Errorf("holiday[%d]: invalid date format '%s', expected YYYY-MM-DD", i, h.Date)
		}
	}

	return nil
}

func validateHours(h *AreaHoursConfig, prefix string) error {
	open, err := model.ParseTimeOfDay(h.Open)
	if err != nil {
		return fmt.Errorf("%s.open: invalid format '%s', expected HH:MM", prefix, h.Open)
	}
	closeAt, err := model.ParseTimeOfDay(h.Close)
	if err != nil {
		return fmt.Errorf("%s.close: invalid format '%s', expected HH:MM", prefix, h.Close)
	}
	if closeAt <= open {
		return fmt.Errorf("%s: close must be after open", prefix)
	}
	return nil
}

func (c *AreasConfig) applyDefaults() {
	for i := range c.Areas {
		if c.Areas[i].Hours == nil && c.Defaults.Hours != nil {
			c.Areas[i].Hours = c.Defaults.Hours
		}
		if c.Areas[i].Capacity == 0 {
			c.Areas[i].Capacity = c.Defaults.Capacity
		}
		if c.Areas[i].Capacity == 0 {
			c.Areas[i].Capacity = 1
		}
	}
}

// GetAreaByName returns the area config by display name.
func (c *AreasConfig) GetAreaByName(name string) *AreaConfig {
	for i := range c.Areas {
		if c.Areas[i].Name == name {
			return &c.Areas[i]
		}
	}
	return nil
}

// IsHoliday checks if a YYYY-MM-DD date is a holiday.
func (c *AreasConfig) IsHoliday(date string) (bool, string) {
	for _, h := range c.Holidays {
		if h.Date == date {
			return true, h.Name
		}
	}
	return false, ""
}

// Models converts the catalog into domain areas.
func (c *AreasConfig) Models() []model.Area {
	out := make([]model.Area, 0, len(c.Areas))
	for _, a := range c.Areas {
		area := model.Area{
			ID:       a.ID,
			Name:     a.Name,
			Icon:     a.Icon,
			Capacity: a.Capacity,
			Active:   a.IsActive,
		}
		if a.Hours != nil {
			// validated on load
			area.OpensAt, _ = model.ParseTimeOfDay(a.Hours.Open)
			area.ClosesAt, _ = model.ParseTimeOfDay(a.Hours.Close)
		}
		out = append(out, area)
	}
	return out
}

// String returns a summary of the configuration.
func (c *AreasConfig) String() string {
	active := 0
	for _, a := range c.Areas {
		if a.IsActive {
			active++
		}
	}
	return fmt.Sprintf("AreasConfig: %d areas (%d active), %d holidays",
		len(c.Areas), active, len(c.Holidays))
}

// HolidayMap returns the holidays keyed by date.
func (c *AreasConfig) HolidayMap() map[string]string {
	out := make(map[string]string, len(c.Holidays))
	for _, h := range c.Holidays {
		out[h.Date] = h.Name
	}
	return out
}
