package localstore

import (
	"errors"
	"fmt"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

var ErrInvalidTheme = errors.New("theme must be dark or light")

// Theme returns the saved theme, dark when unset or unreadable.
func (s *Store) Theme() Theme {
	var t Theme
	if ok, err := s.get(KeyTheme, &t); err != nil || !ok || (t != ThemeDark && t != ThemeLight) {
		return ThemeDark
	}
	return t
}

func (s *Store) SetTheme(t Theme) error {
	if t != ThemeDark && t != ThemeLight {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, t)
	}
	return s.put(KeyTheme, t)
}

func (s *Store) ToggleTheme() (Theme, error) {
	next := ThemeLight
	if s.Theme() == ThemeLight {
		next = ThemeDark
	}
	return next, s.SetTheme(next)
}
