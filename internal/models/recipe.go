package models

import "strings"

// Source records where a recipe came from. It is never changed after the
// recipe is created.
type Source struct {
	Platform string `json:"platform"`
	Handle   string `json:"handle"`
	URL      string `json:"url"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Item   string `json:"item"`
	Amount string `json:"amount"`
}

// Step is one instruction with an optional timer in seconds.
type Step struct {
	Text     string `json:"text"`
	TimerSec int    `json:"timerSec"`
}

// Recipe represents one dish as stored in a session catalog.
type Recipe struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Image       string       `json:"image"`
	Time        int          `json:"time"`
	Difficulty  string       `json:"difficulty"`
	Rating      *float64     `json:"rating,omitempty"`
	Calories    *int         `json:"calories"`
	Cuisine     string       `json:"cuisine"`
	DietTags    []string     `json:"dietTags"`
	Source      Source       `json:"source"`
	Ingredients []Ingredient `json:"ingredients"`
	Steps       []Step       `json:"steps"`
	Tags        []string     `json:"tags"`
	Saves       int          `json:"saves"`
}

// RecipeKey is the composite identity used to deduplicate recipes. Two
// records with the same title and source URL are the same dish even when
// their local ids differ.
type RecipeKey struct {
	Title     string
	SourceURL string
}

// Key returns the recipe's composite identity.
func (r Recipe) Key() RecipeKey {
	return RecipeKey{Title: r.Title, SourceURL: r.Source.URL}
}

// HasTag reports whether the recipe carries tag, ignoring case.
func (r Recipe) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	for _, t := range r.DietTags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can replace records without sharing
// slices with the stored value.
func (r Recipe) Clone() Recipe {
	c := r
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	if r.Calories != nil {
		v := *r.Calories
		c.Calories = &v
	}
	c.DietTags = append([]string(nil), r.DietTags...)
	c.Ingredients = append([]Ingredient(nil), r.Ingredients...)
	c.Steps = append([]Step(nil), r.Steps...)
	c.Tags = append([]string(nil), r.Tags...)
	return c
}
