// Package planner holds the meal plan: which recipe sits in each
// (date, meal) slot.
package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/models"
)

// Persister receives the full plan after every mutation.
type Persister interface {
	Save(ctx context.Context, plan models.Plan) error
}

// Day is one cell of a planner view.
type Day struct {
	Date  time.Time              `json:"date"`
	Key   string                 `json:"key"`
	Dim   bool                   `json:"dim"`
	Slots map[models.Meal]string `json:"slots"`
}

// Store is the in-memory meal plan for one session.
type Store struct {
	mu      sync.RWMutex
	plan    models.Plan
	persist Persister
	logger  *slog.Logger
}

// NewStore creates an empty store. persist may be nil.
func NewStore(persist Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		plan:    make(models.Plan),
		persist: persist,
		logger:  logger.With("component", "planner"),
	}
}

// normalizeKey validates a date key and returns its canonical form.
func normalizeKey(date string) (string, error) {
	t, err := calendar.ParseDateKey(date, time.UTC)
	if err != nil {
		return "", err
	}
	return calendar.DateKey(t), nil
}

func parseSlot(date string, meal models.Meal) (string, models.Meal, error) {
	key, err := normalizeKey(date)
	if err != nil {
		return "", "", err
	}
	m, err := models.ParseMeal(string(meal))
	if err != nil {
		return "", "", err
	}
	return key, m, nil
}

// Assign puts recipeID into the slot, replacing whatever was there. An
// empty recipeID clears the slot.
func (s *Store) Assign(ctx context.Context, date string, meal models.Meal, recipeID string) error {
	key, meal, err := parseSlot(date, meal)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if recipeID == "" {
		s.clearLocked(key, meal)
	} else {
		s.setLocked(key, meal, recipeID)
	}
	s.saveLocked(ctx)
	return nil
}

// Clear empties the slot. Clearing an empty slot is a no-op.
func (s *Store) Clear(ctx context.Context, date string, meal models.Meal) error {
	return s.Assign(ctx, date, meal, "")
}

// Move clears the source slot and assigns recipeID to the destination as a
// single step: readers see the recipe in exactly one of the two slots.
func (s *Store) Move(ctx context.Context, fromDate string, fromMeal models.Meal, toDate string, toMeal models.Meal, recipeID string) error {
	from, fromMeal, err := parseSlot(fromDate, fromMeal)
	if err != nil {
		return err
	}
	to, toMeal, err := parseSlot(toDate, toMeal)
	if err != nil {
		return err
	}
	if from == to && fromMeal == toMeal {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(from, fromMeal)
	if recipeID != "" {
		s.setLocked(to, toMeal, recipeID)
	}
	s.saveLocked(ctx)
	return nil
}

// Lookup returns the recipe id in a slot.
func (s *Store) Lookup(date string, meal models.Meal) (string, bool) {
	key, meal, err := parseSlot(date, meal)
	if err != nil {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.plan[key][meal]
	return id, ok
}

// Snapshot returns a deep copy of the plan.
func (s *Store) Snapshot() models.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.plan.Clone()
}

// Restore replaces the plan without persisting it. Malformed date keys,
// unknown meals and empty slots are dropped.
func (s *Store) Restore(plan models.Plan) {
	clean := make(models.Plan, len(plan))
	for date, slots := range plan {
		key, err := normalizeKey(date)
		if err != nil {
			s.logger.Warn("dropping malformed plan date", slog.String("date", date))
			continue
		}
		for meal, id := range slots {
			m, err := models.ParseMeal(string(meal))
			if err != nil || id == "" {
				continue
			}
			if clean[key] == nil {
				clean[key] = make(map[models.Meal]string)
			}
			clean[key][m] = id
		}
	}

	s.mu.Lock()
	s.plan = clean
	s.mu.Unlock()
}

// Week returns n week rows starting at the week containing anchor. Days
// outside anchor's month are dimmed.
func (s *Store) Week(anchor time.Time, n int) [][]Day {
	rows := calendar.Weeks(anchor, n)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]Day, len(rows))
	for i, row := range rows {
		out[i] = s.daysLocked(row, anchor)
	}
	return out
}

// Month returns the six week rows of anchor's month grid.
func (s *Store) Month(anchor time.Time) [][]Day {
	cells := calendar.MonthGrid(anchor)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]Day, 0, calendar.MaxWeeks)
	for i := 0; i < len(cells); i += 7 {
		out = append(out, s.daysLocked(cells[i:i+7], anchor))
	}
	return out
}

func (s *Store) daysLocked(dates []time.Time, anchor time.Time) []Day {
	days := make([]Day, len(dates))
	for i, d := range dates {
		key := calendar.DateKey(d)
		slots := make(map[models.Meal]string, len(s.plan[key]))
		for meal, id := range s.plan[key] {
			slots[meal] = id
		}
		days[i] = Day{
			Date:  d,
			Key:   key,
			Dim:   !calendar.SameMonth(d, anchor),
			Slots: slots,
		}
	}
	return days
}

func (s *Store) setLocked(key string, meal models.Meal, recipeID string) {
	if s.plan[key] == nil {
		s.plan[key] = make(map[models.Meal]string)
	}
	s.plan[key][meal] = recipeID
}

func (s *Store) clearLocked(key string, meal models.Meal) {
	slots, ok := s.plan[key]
	if !ok {
		return
	}
	delete(slots, meal)
	if len(slots) == 0 {
		delete(s.plan, key)
	}
}

// saveLocked runs under the write lock so saves land in mutation order.
func (s *Store) saveLocked(ctx context.Context) {
	if s.persist == nil {
		return
	}
	if err := s.persist.Save(ctx, s.plan.Clone()); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist planner", slog.String("error", err.Error()))
	}
}
