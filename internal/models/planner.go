package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMeal is returned when a meal slot name is not recognised.
var ErrInvalidMeal = errors.New("invalid meal")

// Meal is one of the fixed daily planner slots.
type Meal string

const (
	Breakfast Meal = "breakfast"
	Lunch     Meal = "lunch"
	Dinner    Meal = "dinner"
)

// Meals lists the slots in display order.
var Meals = []Meal{Breakfast, Lunch, Dinner}

// ParseMeal validates a slot name.
func ParseMeal(s string) (Meal, error) {
	switch m := Meal(strings.ToLower(strings.TrimSpace(s))); m {
	case Breakfast, Lunch, Dinner:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMeal, s)
	}
}

// Plan maps a YYYY-MM-DD date key to the recipe id held by each meal slot
// of that day.
type Plan map[string]map[Meal]string

// Clone returns a deep copy of the plan.
func (p Plan) Clone() Plan {
	out := make(Plan, len(p))
	for day, slots := range p {
		cp := make(map[Meal]string, len(slots))
		for meal, id := range slots {
			cp[meal] = id
		}
		out[day] = cp
	}
	return out
}
