// Package memstore is an in-process document store with the same merge,
// delete and snapshot semantics as the Firestore stores. Tests use it in
// place of Firestore and inject write faults and stream failures through it.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/GregMSThompson/finance-sync/internal/errs"
	"github.com/GregMSThompson/finance-sync/internal/models"
	"github.com/GregMSThompson/finance-sync/internal/taxonomy"
)

const (
	collBudgets  = "budgets"
	collSettings = "settings"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*userData
	watchers map[*watcher]struct{}
	faults   map[string]error
	writes   int
}

type userData struct {
	expenses map[string]models.Transaction
	income   map[string]models.Transaction
	budgets  map[string]models.Budget
	settings *models.Settings
}

type watcher struct {
	uid    string
	coll   string
	notify chan struct{}
	fail   chan error
}

type Option func(*Store)

// WithClock overrides the server timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		users:    map[string]*userData{},
		watchers: map[*watcher]struct{}{},
		faults:   map[string]error{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Transactions(entity taxonomy.Entity) *Transactions {
	return &Transactions{s: s, entity: entity}
}

func (s *Store) Budgets() *Budgets { return &Budgets{s: s} }

func (s *Store) Settings() *Settings { return &Settings{s: s} }

// FailWrites makes every write to path fail with err until cleared with a
// nil err. Path is either a collection ("expenses") or a document
// ("expenses/<id>", "budgets/2025-08", "settings").
func (s *Store) FailWrites(path string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, path)
		return
	}
	s.faults[path] = err
}

// BreakStreams terminates every open subscription on coll with err.
func (s *Store) BreakStreams(coll string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for w := range s.watchers {
		if w.coll != coll {
			continue
		}
		select {
		case w.fail <- err:
		default:
		}
	}
}

// Writes reports how many write calls reached the store.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Watchers reports the number of open subscriptions.
func (s *Store) Watchers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers)
}

// user must be called with mu held.
func (s *Store) user(uid string) *userData {
	u, ok := s.users[uid]
	if !ok {
		u = &userData{
			expenses: map[string]models.Transaction{},
			income:   map[string]models.Transaction{},
			budgets:  map[string]models.Budget{},
		}
		s.users[uid] = u
	}
	return u
}

// beginWrite counts the write and returns an injected fault, if any. Must be
// called with mu held.
func (s *Store) beginWrite(op, coll, id string) error {
	s.writes++
	for _, key := range []string{coll, coll + "/" + id} {
		if err, ok := s.faults[key]; ok {
			return errs.NewRemoteOperationError(errs.KindUnavailable, op, "write to "+key+" rejected", err)
		}
	}
	return nil
}

// changed wakes every subscription on (uid, coll). Must be called with mu held.
func (s *Store) changed(uid, coll string) {
	for w := range s.watchers {
		if w.uid != uid || w.coll != coll {
			continue
		}
		select {
		case w.notify <- struct{}{}:
		default:
		}
	}
}

func notFound(op, what string) error {
	return errs.NewRemoteOperationError(errs.KindNotFound, op, what+" not found", nil)
}

// watch delivers view() once on open and again after every change on
// (uid, coll). Pending notifications coalesce, so a slow reader only sees the
// latest state. view runs with mu held.
func watch[T any](ctx context.Context, s *Store, uid, coll string, view func() T) (<-chan T, <-chan error) {
	w := &watcher{
		uid:    uid,
		coll:   coll,
		notify: make(chan struct{}, 1),
		fail:   make(chan error, 1),
	}
	w.notify <- struct{}{}

	s.mu.Lock()
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	out := make(chan T)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)
		defer func() {
			s.mu.Lock()
			delete(s.watchers, w)
			s.mu.Unlock()
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-w.fail:
				errCh <- errs.FromStatus("listen", coll+" subscription failed", err)
				return
			case <-w.notify:
				s.mu.Lock()
				v := view()
				s.mu.Unlock()

				select {
				case out <- v:
				case <-ctx.Done():
					return
				case err := <-w.fail:
					errCh <- errs.FromStatus("listen", coll+" subscription failed", err)
					return
				}
			}
		}
	}()

	return out, errCh
}
