package localstore

import (
	"errors"
	"fmt"

	"github.com/seckatie/moohub/internal/core/widgets"
)

var ErrInvalidIndex = errors.New("widget index out of range")

// WidgetConfig is one dashboard slot.
type WidgetConfig struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Icon    string `json:"icon"`
	Visible bool   `json:"visible"`
}

// DefaultDashboard is the registry in its default order and visibility.
func DefaultDashboard() []WidgetConfig {
	all := widgets.All()
	out := make([]WidgetConfig, 0, len(all))
	for _, d := range all {
		out = append(out, WidgetConfig{ID: string(d.Kind), Label: d.Label, Icon: d.Icon, Visible: d.DefaultVisible})
	}
	return out
}

// Dashboard returns the saved layout merged with the registry: saved slots
// keep their order and visibility, widgets added since are appended, labels
// and icons always come from the registry and unknown ids are dropped. An
// unreadable saved value yields the defaults.
func (s *Store) Dashboard() ([]WidgetConfig, error) {
	var saved []WidgetConfig
	ok, err := s.get(KeyDashboard, &saved)
	if err != nil || !ok {
		return DefaultDashboard(), nil
	}
	return mergeDashboard(saved), nil
}

func mergeDashboard(saved []WidgetConfig) []WidgetConfig {
	out := make([]WidgetConfig, 0, len(saved))
	seen := make(map[string]bool)
	for _, w := range saved {
		d, err := widgets.Lookup(w.ID)
		if err != nil || seen[w.ID] {
			continue
		}
		seen[w.ID] = true
		out = append(out, WidgetConfig{ID: w.ID, Label: d.Label, Icon: d.Icon, Visible: w.Visible})
	}
	for _, d := range DefaultDashboard() {
		if !seen[d.ID] {
			out = append(out, d)
		}
	}
	return out
}

// ToggleWidget flips the visibility of one widget and saves the layout.
func (s *Store) ToggleWidget(id string) ([]WidgetConfig, error) {
	if _, err := widgets.Lookup(id); err != nil {
		return nil, err
	}
	cfg, err := s.Dashboard()
	if err != nil {
		return nil, err
	}
	for i := range cfg {
		if cfg[i].ID == id {
			cfg[i].Visible = !cfg[i].Visible
		}
	}
	return cfg, s.put(KeyDashboard, cfg)
}

// MoveWidget removes the slot at from and reinserts it at to.
func (s *Store) MoveWidget(from, to int) ([]WidgetConfig, error) {
	cfg, err := s.Dashboard()
	if err != nil {
		return nil, err
	}
	if from < 0 || from >= len(cfg) || to < 0 || to >= len(cfg) {
		return nil, fmt.Errorf("%w: move %d to %d with %d widgets", ErrInvalidIndex, from, to, len(cfg))
	}
	moved := cfg[from]
	cfg = append(cfg[:from], cfg[from+1:]...)
	cfg = append(cfg[:to], append([]WidgetConfig{moved}, cfg[to:]...)...)
	return cfg, s.put(KeyDashboard, cfg)
}

func (s *Store) ResetDashboard() ([]WidgetConfig, error) {
	cfg := DefaultDashboard()
	return cfg, s.put(KeyDashboard, cfg)
}

// VisibleWidgets filters cfg down to the widgets to render, in order.
func VisibleWidgets(cfg []WidgetConfig) []WidgetConfig {
	var out []WidgetConfig
	for _, w := range cfg {
		if w.Visible {
			out = append(out, w)
		}
	}
	return out
}
