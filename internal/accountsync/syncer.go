package accountsync

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pageza/flavr/backend/internal/catalog"
	"github.com/pageza/flavr/backend/internal/latest"
	"github.com/pageza/flavr/backend/internal/models"
)

const pushTimeout = 30 * time.Second

// Local is the session state a Syncer reads from and writes into.
type Local interface {
	Snapshot() models.Snapshot
	Restore(ctx context.Context, snap models.Snapshot)
}

// Syncer pulls and pushes one account's snapshot. A nil store disables
// syncing.
type Syncer struct {
	store   SnapshotStore
	account string
	log     *slog.Logger

	pulls  latest.Guard
	pushes latest.Guard
	// pushMu serializes store writes so an older snapshot can never land
	// after a newer one.
	pushMu sync.Mutex
	wg     sync.WaitGroup
}

// NewSyncer creates a Syncer for account.
func NewSyncer(store SnapshotStore, account string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		store:   store,
		account: account,
		log:     logger.With("component", "accountsync", "account", account),
	}
}

// Enabled reports whether a remote store is configured.
func (s *Syncer) Enabled() bool {
	return s != nil && s.store != nil
}

// Pull fetches the remote snapshot and folds it into local. It reports
// whether anything was applied; a missing remote snapshot is not an error.
// A pull overtaken by a newer one returns latest.ErrSuperseded.
func (s *Syncer) Pull(ctx context.Context, local Local) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	t := s.pulls.Begin(ctx)
	defer t.Done()

	remote, err := s.store.Pull(t.Context(), s.account)
	if errors.Is(err, ErrNotFound) {
		s.log.DebugContext(ctx, "no remote snapshot")
		return false, nil
	}
	if err != nil {
		err = t.Err(err)
		if !errors.Is(err, latest.ErrSuperseded) {
			s.log.WarnContext(ctx, "remote pull failed", slog.String("error", err.Error()))
		}
		return false, err
	}

	err = t.Commit(func() {
		local.Restore(ctx, Reconcile(local.Snapshot(), *remote))
	})
	if err != nil {
		return false, err
	}
	s.log.InfoContext(ctx, "remote snapshot applied", slog.Int("recipes", len(remote.Recipes)))
	return true, nil
}

// Push uploads snap and waits for the result.
func (s *Syncer) Push(ctx context.Context, snap models.Snapshot) error {
	if !s.Enabled() {
		return nil
	}
	t := s.pushes.Begin(ctx)
	defer t.Done()
	return s.push(t, snap)
}

// PushAsync uploads snap in the background. Pushes are ordered by call, so a
// newer push cancels or skips an older one still pending; failures are
// logged and dropped.
func (s *Syncer) PushAsync(snap models.Snapshot) {
	if !s.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
	t := s.pushes.Begin(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer t.Done()
		err := s.push(t, snap)
		switch {
		case err == nil:
			s.log.Debug("snapshot pushed")
		case errors.Is(err, latest.ErrSuperseded):
		default:
			s.log.Warn("snapshot push failed", slog.String("error", err.Error()))
		}
	}()
}

func (s *Syncer) push(t *latest.Ticket, snap models.Snapshot) error {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()
	if !t.Current() {
		return latest.ErrSuperseded
	}
	return t.Err(s.store.Push(t.Context(), s.account, snap))
}

// Wait blocks until background pushes finish.
func (s *Syncer) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// Reconcile combines a local and a remote snapshot. Recipes are merged with
// remote records winning on collisions; every other collection is taken
// from the remote when the remote has it.
func Reconcile(local, remote models.Snapshot) models.Snapshot {
	out := local
	out.Recipes = catalog.Merge(local.Recipes, remote.Recipes)
	if remote.Favorites != nil {
		out.Favorites = remote.Favorites
	}
	if remote.Grocery != nil {
		out.Grocery = remote.Grocery
	}
	if remote.Planner != nil {
		out.Planner = remote.Planner
	}
	if remote.Connections != nil {
		out.Connections = remote.Connections
	}
	if !isZeroProfile(remote.Profile) {
		out.Profile = remote.Profile
	}
	return out
}

func isZeroProfile(p models.Profile) bool {
	return p.Name == "" && p.Email == "" && p.Avatar == "" && len(p.Dietary) == 0 && len(p.Links) == 0
}
