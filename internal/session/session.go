// Package session binds every per-account store to one object whose
// lifetime follows sign-in and sign-out.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/flavr/backend/internal/accountsync"
	"github.com/pageza/flavr/backend/internal/calendar"
	"github.com/pageza/flavr/backend/internal/catalog"
	"github.com/pageza/flavr/backend/internal/collector"
	"github.com/pageza/flavr/backend/internal/grocery"
	"github.com/pageza/flavr/backend/internal/latest"
	"github.com/pageza/flavr/backend/internal/models"
	"github.com/pageza/flavr/backend/internal/planner"
	"github.com/pageza/flavr/backend/internal/storage"
	"github.com/pageza/flavr/backend/internal/toggle"
)

var (
	ErrRecipeNotFound  = errors.New("recipe not found")
	ErrUnknownProvider = errors.New("unknown provider")
	ErrClosed          = errors.New("session closed")
)

// DefaultHandle is stored when a connection is made without a handle.
const DefaultHandle = "@connected"

const flushTimeout = 10 * time.Second

// RecipeSource fetches recipes from outside the account.
type RecipeSource interface {
	Import(ctx context.Context, url string) (models.Recipe, error)
	Discover(ctx context.Context, query string, limit int) ([]models.Recipe, error)
}

// Options configures a Session.
type Options struct {
	KV            storage.KV
	Remote        accountsync.SnapshotStore
	Source        RecipeSource
	Logger        *slog.Logger
	Debounce      time.Duration
	DiscoverLimit int
	Now           func() time.Time
}

// Session is the state of one signed-in account.
type Session struct {
	Account string

	Catalog     *catalog.Catalog
	Planner     *planner.Store
	Grocery     *grocery.List
	Favorites   *toggle.Set[struct{}]
	Connections *toggle.Set[models.Connection]

	mu      sync.Mutex
	profile models.Profile

	kv       storage.KV
	source   RecipeSource
	syncer   *accountsync.Syncer
	log      *slog.Logger
	debounce time.Duration
	limit    int
	now      func() time.Time

	imports  latest.Guard
	searches latest.Guard

	pushCh    chan struct{}
	stop      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// pushingPersister writes a collection and schedules a remote push.
type pushingPersister[T any] struct {
	col storage.Collection[T]
	s   *Session
}

func (p pushingPersister[T]) Save(ctx context.Context, v T) error {
	err := p.col.Save(ctx, v)
	p.s.schedulePush()
	return err
}

// Open loads account's collections from opts.KV and returns a ready
// session. Missing or unreadable collections start from their defaults.
func Open(ctx context.Context, account string, opts Options) (*Session, error) {
	if opts.KV == nil {
		return nil, fmt.Errorf("session: kv store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.With("component", "session", "account", account)

	s := &Session{
		Account:     account,
		Favorites:   toggle.New[struct{}](),
		Connections: toggle.New[models.Connection](),
		profile:     models.DefaultProfile(),
		kv:          opts.KV,
		source:      opts.Source,
		syncer:      accountsync.NewSyncer(opts.Remote, account, opts.Logger),
		log:         log,
		debounce:    opts.Debounce,
		limit:       opts.DiscoverLimit,
		now:         opts.Now,
		pushCh:      make(chan struct{}, 1),
		stop:        make(chan struct{}),
		loopDone:    make(chan struct{}),
	}

	recipes := catalog.Seed()
	var plan models.Plan
	var items []models.GroceryItem
	var favorites []string
	var connections map[string]models.Connection
	profile := models.DefaultProfile()

	g, gctx := errgroup.WithContext(ctx)
	load := func(key string, dst any) {
		g.Go(func() error {
			storage.Load(gctx, opts.KV, log, storage.Namespace(account, key), dst)
			return nil
		})
	}
	load(storage.KeyRecipes, &recipes)
	load(storage.KeyPlanner, &plan)
	load(storage.KeyGrocery, &items)
	load(storage.KeyFavorites, &favorites)
	load(storage.KeyConnections, &connections)
	load(storage.KeyProfile, &profile)
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.Catalog = catalog.New(recipes, pushingPersister[[]models.Recipe]{
		col: storage.NewCollection[[]models.Recipe](opts.KV, account, storage.KeyRecipes), s: s,
	}, opts.Logger)
	s.Planner = planner.NewStore(pushingPersister[models.Plan]{
		col: storage.NewCollection[models.Plan](opts.KV, account, storage.KeyPlanner), s: s,
	}, opts.Logger)
	s.Grocery = grocery.NewList(pushingPersister[[]models.GroceryItem]{
		col: storage.NewCollection[[]models.GroceryItem](opts.KV, account, storage.KeyGrocery), s: s,
	}, opts.Logger)

	s.Planner.Restore(plan)
	s.Grocery.Restore(items)
	s.Favorites.ReplaceKeys(favorites)
	s.Connections.Replace(connections)
	s.profile = normalizeProfile(profile)

	go s.pushLoop()

	log.DebugContext(ctx, "session opened",
		slog.Int("recipes", s.Catalog.Len()),
		slog.Int("favorites", s.Favorites.Len()),
	)
	return s, nil
}

// Close stops background pushes and waits for those in flight.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.stop)
		<-s.loopDone
		s.syncer.Wait()
		s.log.Debug("session closed")
	})
}

func (s *Session) schedulePush() {
	if !s.syncer.Enabled() {
		return
	}
	select {
	case s.pushCh <- struct{}{}:
	default:
	}
}

// pushLoop coalesces change notifications into snapshot pushes. It runs
// outside the stores' locks so taking a snapshot cannot deadlock.
func (s *Session) pushLoop() {
	defer close(s.loopDone)
	for {
		select {
		case <-s.stop:
			select {
			case <-s.pushCh:
				s.flush()
			default:
			}
			return
		case <-s.pushCh:
			s.syncer.PushAsync(s.Snapshot())
		}
	}
}

// flush pushes the current snapshot and waits for it. Close uses it so the
// last change is not lost to a pending notification.
func (s *Session) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := s.syncer.Push(ctx, s.Snapshot()); err != nil {
		s.log.Warn("final snapshot push failed", slog.String("error", err.Error()))
	}
}

// ImportURL imports a recipe through the collector and puts it at the front
// of the catalog. Only the newest import may change the catalog.
func (s *Session) ImportURL(ctx context.Context, url string) (models.Recipe, error) {
	if strings.TrimSpace(url) == "" {
		return models.Recipe{}, collector.ErrEmptyURL
	}
	t := s.imports.Begin(ctx)
	defer t.Done()

	r, err := s.source.Import(t.Context(), url)
	if err != nil {
		return models.Recipe{}, t.Err(err)
	}
	if err := t.Commit(func() { s.Catalog.Prepend(ctx, r) }); err != nil {
		return models.Recipe{}, err
	}
	if stored, ok := s.Catalog.GetByKey(r.Key()); ok {
		r = stored
	}
	return r, nil
}

// Discover waits out the debounce delay, searches the collector and merges
// the results into the catalog. A search overtaken by a newer one returns
// latest.ErrSuperseded. When the collector fails the local matches are
// returned together with the error.
func (s *Session) Discover(ctx context.Context, query string, limit int) ([]models.Recipe, error) {
	if limit <= 0 {
		limit = s.limit
	}
	t := s.searches.Begin(ctx)
	defer t.Done()

	if err := latest.Debounce(t.Context(), s.debounce); err != nil {
		return nil, t.Err(err)
	}

	found, err := s.source.Discover(t.Context(), query, limit)
	if err != nil {
		err = t.Err(err)
		if errors.Is(err, latest.ErrSuperseded) {
			return nil, err
		}
		s.log.WarnContext(ctx, "discover failed, using local catalog", slog.String("query", query), slog.String("error", err.Error()))
		return s.Catalog.Search(query), err
	}

	if err := t.Commit(func() { s.Catalog.Upsert(ctx, found...) }); err != nil {
		return nil, err
	}
	out := make([]models.Recipe, 0, len(found))
	for _, r := range found {
		if stored, ok := s.Catalog.GetByKey(r.Key()); ok {
			out = append(out, stored)
		}
	}
	return dedupe(out), nil
}

// dedupe drops repeated ids, keeping the first.
func dedupe(rs []models.Recipe) []models.Recipe {
	seen := make(map[string]struct{}, len(rs))
	out := rs[:0]
	for _, r := range rs {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out
}

// CreateRecipe adds a user-authored recipe to the front of the catalog.
func (s *Session) CreateRecipe(ctx context.Context, d catalog.Draft) models.Recipe {
	r := catalog.NewUserRecipe(d, s.now())
	s.Catalog.Prepend(ctx, r)
	if stored, ok := s.Catalog.GetByKey(r.Key()); ok {
		return stored
	}
	return r
}

// ToggleFavorite flips a recipe's favorite flag and reports the new state.
func (s *Session) ToggleFavorite(ctx context.Context, recipeID string) (bool, error) {
	if _, ok := s.Catalog.Get(recipeID); !ok {
		return false, ErrRecipeNotFound
	}
	s.mu.Lock()
	on := s.Favorites.Toggle(recipeID)
	s.saveLocked(ctx, storage.KeyFavorites, s.Favorites.Keys())
	s.mu.Unlock()
	s.schedulePush()
	return on, nil
}

// FavoriteRecipes returns the favorite recipes in catalog order.
func (s *Session) FavoriteRecipes() []models.Recipe {
	return s.Catalog.ByIDs(s.Favorites.Keys())
}

// AddToGrocery adds a recipe's ingredients to the grocery list and returns
// how many new items were created.
func (s *Session) AddToGrocery(ctx context.Context, recipeID string) (int, error) {
	r, ok := s.Catalog.Get(recipeID)
	if !ok {
		return 0, ErrRecipeNotFound
	}
	return s.Grocery.AddRecipeIngredients(ctx, r), nil
}

// PlanRecipe puts a catalog recipe into a planner slot.
func (s *Session) PlanRecipe(ctx context.Context, recipeID, date string, meal models.Meal) error {
	if _, ok := s.Catalog.Get(recipeID); !ok {
		return ErrRecipeNotFound
	}
	return s.Planner.Assign(ctx, date, meal, recipeID)
}

// MoveRecipe moves a catalog recipe from one planner slot to another. Both
// slots are validated before the recipe is looked up.
func (s *Session) MoveRecipe(ctx context.Context, recipeID, fromDate string, fromMeal models.Meal, toDate string, toMeal models.Meal) error {
	for _, slot := range []struct {
		date string
		meal models.Meal
	}{{fromDate, fromMeal}, {toDate, toMeal}} {
		if _, err := calendar.ParseDateKey(slot.date, time.Local); err != nil {
			return err
		}
		if _, err := models.ParseMeal(string(slot.meal)); err != nil {
			return err
		}
	}
	if _, ok := s.Catalog.Get(recipeID); !ok {
		return ErrRecipeNotFound
	}
	return s.Planner.Move(ctx, fromDate, fromMeal, toDate, toMeal, recipeID)
}

// Connect links a social account. An empty handle becomes DefaultHandle.
func (s *Session) Connect(ctx context.Context, provider, handle string) (models.Connection, error) {
	if _, ok := models.LookupProvider(provider); !ok {
		return models.Connection{}, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	handle = strings.TrimSpace(handle)
	if handle == "" {
		handle = DefaultHandle
	}
	c := models.Connection{Connected: true, Handle: handle, Scopes: []string{"public"}, At: s.now().UTC()}

	s.mu.Lock()
	s.Connections.Put(provider, c)
	s.saveLocked(ctx, storage.KeyConnections, s.Connections.Map())
	s.mu.Unlock()
	s.schedulePush()
	return c, nil
}

// Disconnect unlinks a social account.
func (s *Session) Disconnect(ctx context.Context, provider string) error {
	if _, ok := models.LookupProvider(provider); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}
	s.mu.Lock()
	s.Connections.Delete(provider)
	s.saveLocked(ctx, storage.KeyConnections, s.Connections.Map())
	s.mu.Unlock()
	s.schedulePush()
	return nil
}

// Profile returns the account profile.
func (s *Session) Profile() models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneProfile(s.profile)
}

// UpdateProfile replaces the account profile.
func (s *Session) UpdateProfile(ctx context.Context, p models.Profile) models.Profile {
	p = normalizeProfile(p)
	s.mu.Lock()
	s.profile = p
	s.saveLocked(ctx, storage.KeyProfile, p)
	s.mu.Unlock()
	s.schedulePush()
	return cloneProfile(p)
}

// Snapshot returns the whole account state.
func (s *Session) Snapshot() models.Snapshot {
	s.mu.Lock()
	profile := cloneProfile(s.profile)
	s.mu.Unlock()
	return models.Snapshot{
		Recipes:     s.Catalog.List(),
		Favorites:   s.Favorites.Keys(),
		Grocery:     s.Grocery.Items(),
		Planner:     s.Planner.Snapshot(),
		Connections: s.Connections.Map(),
		Profile:     profile,
	}
}

// Restore replaces the whole account state and writes it to the KV store.
// It does not trigger a remote push.
func (s *Session) Restore(ctx context.Context, snap models.Snapshot) {
	s.Catalog.Restore(snap.Recipes)
	s.Planner.Restore(snap.Planner)
	s.Grocery.Restore(snap.Grocery)

	s.mu.Lock()
	s.Favorites.ReplaceKeys(snap.Favorites)
	s.Connections.Replace(snap.Connections)
	s.profile = normalizeProfile(snap.Profile)
	s.mu.Unlock()

	s.persistAll(ctx)
}

// Pull fetches the remote snapshot and merges it into the session.
func (s *Session) Pull(ctx context.Context) (bool, error) {
	return s.syncer.Pull(ctx, s)
}

// Push uploads the current state and waits for the result.
func (s *Session) Push(ctx context.Context) error {
	return s.syncer.Push(ctx, s.Snapshot())
}

// SyncEnabled reports whether a remote store is configured.
func (s *Session) SyncEnabled() bool {
	return s.syncer.Enabled()
}

func (s *Session) persistAll(ctx context.Context) {
	snap := s.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLocked(ctx, storage.KeyRecipes, snap.Recipes)
	s.saveLocked(ctx, storage.KeyPlanner, snap.Planner)
	s.saveLocked(ctx, storage.KeyGrocery, snap.Grocery)
	s.saveLocked(ctx, storage.KeyFavorites, snap.Favorites)
	s.saveLocked(ctx, storage.KeyConnections, snap.Connections)
	s.saveLocked(ctx, storage.KeyProfile, snap.Profile)
}

// saveLocked writes one collection; failures are logged and dropped.
func (s *Session) saveLocked(ctx context.Context, key string, v any) {
	if err := storage.Save(ctx, s.kv, storage.Namespace(s.Account, key), v); err != nil {
		s.log.ErrorContext(ctx, "failed to persist collection", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func normalizeProfile(p models.Profile) models.Profile {
	if p.Dietary == nil {
		p.Dietary = []string{}
	}
	if p.Links == nil {
		p.Links = []string{}
	}
	return p
}

func cloneProfile(p models.Profile) models.Profile {
	p.Dietary = append([]string{}, p.Dietary...)
	p.Links = append([]string{}, p.Links...)
	return p
}
