// Package collector talks to the recipe collector service, which fetches
// and normalizes recipes from a URL or a search query.
package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pageza/flavr/backend/internal/catalog"
	"github.com/pageza/flavr/backend/internal/models"
)

// DefaultBaseURL is the local development collector.
const DefaultBaseURL = "http://localhost:8080"

// DefaultDiscoverLimit is used when Discover is called with limit <= 0.
const DefaultDiscoverLimit = 24

const (
	defaultTitle    = "Imported Recipe"
	defaultTime     = 30
	defaultPlatform = "Source"
	importedTag     = "imported"
)

// ErrEmptyURL is returned by Import before any request is made.
var ErrEmptyURL = errors.New("recipe url is required")

// ErrUnavailable wraps transport failures reaching the collector.
var ErrUnavailable = errors.New("collector unavailable")

// StatusError reports a non-2xx collector response. Its message is the
// text shown to the user.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d", e.Op, e.StatusCode)
}

// Client calls the collector over HTTP. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
	now        func() time.Time
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL and a
// zero timeout means requests only end with their context.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "collector"),
		now:        time.Now,
	}
}

// BaseURL returns the collector address in use.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Import asks the collector to fetch the recipe at rawURL and maps the
// answer to a Recipe.
func (c *Client) Import(ctx context.Context, rawURL string) (models.Recipe, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.Recipe{}, ErrEmptyURL
	}

	body, err := json.Marshal(importRequest{URL: rawURL})
	if err != nil {
		return models.Recipe{}, fmt.Errorf("collector: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/import", bytes.NewReader(body))
	if err != nil {
		return models.Recipe{}, fmt.Errorf("collector: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.DebugContext(ctx, "collector import", slog.String("url", rawURL))

	var resp importResponse
	if err := c.do(ctx, req, "Import", &resp); err != nil {
		return models.Recipe{}, err
	}

	r := mapImport(resp, rawURL, c.now())
	c.log.InfoContext(ctx, "recipe imported", slog.String("url", rawURL), slog.String("title", r.Title))
	return r, nil
}

// Discover searches the collector. Results missing an id or image get
// generated ones.
func (c *Client) Discover(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = DefaultDiscoverLimit
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/discover?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("collector: create request: %w", err)
	}

	c.log.DebugContext(ctx, "collector discover", slog.String("query", query), slog.Int("limit", limit))

	var found []models.Recipe
	if err := c.do(ctx, req, "Discover", &found); err != nil {
		return nil, err
	}

	stamp := c.now().UnixMilli()
	for i := range found {
		normalizeDiscovered(&found[i], stamp, i)
	}
	c.log.DebugContext(ctx, "collector discover done", slog.String("query", query), slog.Int("results", len(found)))
	return found, nil
}

func (c *Client) do(ctx context.Context, req *http.Request, op string, dst any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.WarnContext(ctx, "collector request failed", slog.String("op", op), slog.String("error", err.Error()))
		return fmt.Errorf("%w: %s request failed: %w", ErrUnavailable, strings.ToLower(op), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.WarnContext(ctx, "collector returned error status", slog.String("op", op), slog.Int("status", resp.StatusCode))
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("collector: read body: %w", err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("collector: decode json: %w", err)
	}
	return nil
}

// mapImport fills every Recipe field, using defaults for what the
// collector left out. An explicit timeMinutes of 0 is kept.
func mapImport(in importResponse, requested string, now time.Time) models.Recipe {
	rating := 0.0
	r := models.Recipe{
		ID:          "imp_" + strconv.FormatInt(now.UnixMilli(), 10),
		Title:       in.Title,
		Image:       in.Image,
		Time:        defaultTime,
		Difficulty:  "Easy",
		Rating:      &rating,
		Cuisine:     "Imported",
		DietTags:    []string{},
		Ingredients: make([]models.Ingredient, 0, len(in.Ingredients)),
		Steps:       make([]models.Step, 0, len(in.Steps)),
		Tags:        []string{importedTag},
		Source: models.Source{
			Platform: in.SourcePlatform,
			Handle:   in.Author,
			URL:      in.SourceLink,
		},
	}
	if r.Title == "" {
		r.Title = defaultTitle
	}
	if r.Image == "" {
		r.Image = catalog.PlaceholderImage
	}
	if in.TimeMinutes != nil {
		r.Time = *in.TimeMinutes
	}
	if in.Nutrition != nil && in.Nutrition.Calories != nil {
		cal := *in.Nutrition.Calories
		r.Calories = &cal
	}
	if r.Source.Platform == "" {
		r.Source.Platform = defaultPlatform
	}
	if r.Source.URL == "" {
		r.Source.URL = requested
	}
	for _, s := range in.Ingredients {
		r.Ingredients = append(r.Ingredients, models.Ingredient{Item: s})
	}
	for _, s := range in.Steps {
		r.Steps = append(r.Steps, models.Step{Text: s})
	}
	return r
}

func normalizeDiscovered(r *models.Recipe, stamp int64, i int) {
	if r.ID == "" {
		r.ID = fmt.Sprintf("disc_%d_%d", stamp, i)
	}
	if r.Image == "" {
		r.Image = catalog.PlaceholderImage
	}
	if r.DietTags == nil {
		r.DietTags = []string{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.Ingredients == nil {
		r.Ingredients = []models.Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []models.Step{}
	}
}
