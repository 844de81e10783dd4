package catalog

import (
	"strconv"
	"strings"
	"time"

	"github.com/pageza/flavr/backend/internal/models"
)

// PlaceholderImage is used for recipes that arrive without an image.
const PlaceholderImage = "https://images.unsplash.com/photo-1490818387583-1baba5e638af?q=80&w=1600&auto=format&fit=crop"

const (
	defaultUserTitle = "My recipe"
	defaultUserTime  = 20
)

// Seed returns the recipes a new account starts with.
func Seed() []models.Recipe {
	rating := 4.8
	calories := 520
	return []models.Recipe{{
		ID:         "r1",
		Title:      "Crispy Chili Garlic Noodles",
		Image:      "https://images.unsplash.com/photo-1550547660-d9450f859349?q=80&w=1600&auto=format&fit=crop",
		Time:       20,
		Difficulty: "Easy",
		Rating:     &rating,
		Calories:   &calories,
		Cuisine:    "Asian",
		DietTags:   []string{"Vegetarian"},
		Source:     models.Source{Platform: "Instagram", Handle: "@wokwithme", URL: "https://instagram.com"},
		Ingredients: []models.Ingredient{
			{Item: "Egg noodles", Amount: "8 oz"},
			{Item: "Garlic", Amount: "6 cloves"},
		},
		Steps: []models.Step{
			{Text: "Boil noodles", TimerSec: 480},
			{Text: "Sizzle garlic", TimerSec: 120},
			{Text: "Toss with sauce", TimerSec: 60},
		},
		Tags:  []string{"30-min", "weeknight"},
		Saves: 2310,
	}}
}

// Draft is the raw input of the recipe editor. Ingredients and Steps hold
// one entry per line.
type Draft struct {
	Title       string `json:"title"`
	Image       string `json:"image"`
	Time        int    `json:"time"`
	Ingredients string `json:"ingredients"`
	Steps       string `json:"steps"`
}

// NewUserRecipe builds a user-authored recipe from a draft.
func NewUserRecipe(d Draft, now time.Time) models.Recipe {
	r := models.Recipe{
		ID:          "user_" + strconv.FormatInt(now.UnixMilli(), 10),
		Title:       strings.TrimSpace(d.Title),
		Image:       strings.TrimSpace(d.Image),
		Time:        d.Time,
		Source:      models.Source{Platform: "User"},
		DietTags:    []string{},
		Tags:        []string{},
		Ingredients: []models.Ingredient{},
		Steps:       []models.Step{},
	}
	if r.Title == "" {
		r.Title = defaultUserTitle
	}
	if r.Image == "" {
		r.Image = PlaceholderImage
	}
	if r.Time <= 0 {
		r.Time = defaultUserTime
	}
	for _, line := range lines(d.Ingredients) {
		r.Ingredients = append(r.Ingredients, models.Ingredient{Item: line})
	}
	for _, line := range lines(d.Steps) {
		r.Steps = append(r.Steps, models.Step{Text: line})
	}
	return r
}

// lines splits s on newlines and drops blank entries.
func lines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
