package localstore

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/seckatie/moohub/internal/core"
)

var ErrInvalidDate = errors.New("invalid date")

// DDay is a countdown target. Date uses the yyyy-mm-dd layout.
type DDay struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Date  string `json:"date"`
}

func (s *Store) DDays() ([]DDay, error) {
	days := []DDay{}
	if _, err := s.get(KeyDDays, &days); err != nil {
		return nil, err
	}
	return days, nil
}

func (s *Store) AddDDay(label, date string) (DDay, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return DDay{}, ErrEmptyText
	}
	if _, err := time.Parse(core.DayBucketLayout, date); err != nil {
		return DDay{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	days, err := s.DDays()
	if err != nil {
		return DDay{}, err
	}
	d := DDay{ID: uuid.NewString(), Label: label, Date: date}
	return d, s.put(KeyDDays, append(days, d))
}

func (s *Store) RemoveDDay(id string) error {
	days, err := s.DDays()
	if err != nil {
		return err
	}
	days = slices.DeleteFunc(days, func(d DDay) bool { return d.ID == id })
	return s.put(KeyDDays, days)
}

// DaysUntil counts calendar days from now's date to d, both in now's
// location. It is negative once the date has passed.
func DaysUntil(d DDay, now time.Time) (int, error) {
	target, err := time.ParseInLocation(core.DayBucketLayout, d.Date, now.Location())
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, d.Date)
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return int(math.Round(target.Sub(today).Hours() / 24)), nil
}

// FormatDDay renders a day count as "D-3", "D-Day" or "D+2".
func FormatDDay(days int) string {
	switch {
	case days == 0:
		return "D-Day"
	case days > 0:
		return fmt.Sprintf("D-%d", days)
	default:
		return fmt.Sprintf("D+%d", -days)
	}
}
