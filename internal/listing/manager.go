package listing

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/storage"
)

// Options configures a Manager. Zero values fall back to the defaults.
type Options[T Item] struct {
	Name           string
	PageSize       int
	MaxPageButtons int
	Debounce       time.Duration
	// ClampPage keeps the current page within [1, totalPages] whenever the
	// filtered view changes. Without it a shrinking view can leave the
	// current page blank.
	ClampPage bool
	// RefilterOnAdd runs created items through the active predicate
	// instead of always showing them.
	RefilterOnAdd bool
	Mutator       Mutator[T]
	Cache         Cache[T]
}

// Manager owns the all/filtered pair of one collection. It is safe for
// concurrent use; remote calls run without holding the lock.
type Manager[T Item] struct {
	mu   sync.Mutex
	opts Options[T]
	log  *debuglog.FieldLogger

	all         []T
	filtered    []T
	rawTerm     string
	settledTerm string
	userFilter  int
	page        int
	loaded      bool
	loadGen     uint64

	debouncer *Debouncer
	observers map[int]func(Event[T])
	nextObs   int
	disposed  bool
}

func New[T Item](opts Options[T]) *Manager[T] {
	if opts.PageSize < 1 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPageButtons < 1 {
		opts.MaxPageButtons = DefaultMaxPageButtons
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Name == "" {
		opts.Name = "list"
	}

	return &Manager[T]{
		opts:      opts,
		log:       debuglog.WithFields(map[string]interface{}{"list": opts.Name}),
		page:      1,
		debouncer: NewDebouncer(opts.Debounce),
		observers: make(map[int]func(Event[T])),
	}
}

func (m *Manager[T]) Name() string { return m.opts.Name }

// ReadOnly reports whether the collection rejects create and delete.
func (m *Manager[T]) ReadOnly() bool { return m.opts.Mutator == nil }

// Initialize replaces the collection with items and re-derives the
// filtered view. Calling it again is a full replace, not a merge. Loads
// still in flight are superseded.
func (m *Manager[T]) Initialize(items []T) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	m.loadGen++
	m.initializeLocked(items)
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
}

func (m *Manager[T]) initializeLocked(items []T) {
	m.all = slices.Clone(items)
	m.loaded = true
	m.refilterLocked()
}

// Load fills the collection from the cache when a fresh snapshot exists,
// otherwise from src.
func (m *Manager[T]) Load(ctx context.Context, src Source[T]) error {
	return m.load(ctx, src, true)
}

// Reload always goes to src, refreshing the cache on success.
func (m *Manager[T]) Reload(ctx context.Context, src Source[T]) error {
	return m.load(ctx, src, false)
}

func (m *Manager[T]) load(ctx context.Context, src Source[T], useCache bool) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	m.loadGen++
	gen := m.loadGen
	m.mu.Unlock()

	if useCache && m.opts.Cache != nil {
		items, ok, err := m.opts.Cache.Load()
		switch {
		case err != nil:
			m.log.Warnf("cache read failed, fetching instead: %v", err)
		case ok:
			m.log.Debugf("serving %d items from cache", len(items))
			return m.apply(gen, items)
		}
	}

	items, err := src.Fetch(ctx)
	if err != nil {
		fetchErr := fmt.Errorf("%w: %w", ErrFetch, err)
		m.log.Errorf("loading %s: %v", m.opts.Name, err)

		m.mu.Lock()
		stale := gen != m.loadGen || m.disposed
		state := m.snapshotLocked()
		m.mu.Unlock()
		if stale {
			return ErrSuperseded
		}
		m.emit(Event[T]{Kind: EventError, State: state, Err: fetchErr})
		return fetchErr
	}

	if err := m.apply(gen, items); err != nil {
		return err
	}
	m.saveCache(items)
	return nil
}

func (m *Manager[T]) apply(gen uint64, items []T) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	if gen != m.loadGen {
		m.mu.Unlock()
		m.log.Debugf("discarding result of superseded load %d", gen)
		return ErrSuperseded
	}
	m.initializeLocked(items)
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
	return nil
}

func (m *Manager[T]) saveCache(items []T) {
	if m.opts.Cache == nil {
		return
	}
	if err := m.opts.Cache.Save(items); err != nil {
		m.log.Warnf("cache write failed: %v", err)
	}
}

// SetSearchTerm records the raw input and returns the debounce ticket the
// caller hands back to SettleSearch once the ticket's delay has passed.
func (m *Manager[T]) SetSearchTerm(raw string) Ticket {
	m.mu.Lock()
	m.rawTerm = raw
	state := m.snapshotLocked()
	disposed := m.disposed
	m.mu.Unlock()

	t := m.debouncer.Push(raw)
	if !disposed {
		m.emit(Event[T]{Kind: EventChanged, State: state})
	}
	return t
}

// SettleSearch applies the pending term if seq is still the latest ticket.
func (m *Manager[T]) SettleSearch(seq uint64) bool {
	term, ok := m.debouncer.Fire(seq)
	if !ok {
		return false
	}
	return m.settle(term)
}

// ApplySearch sets and settles term at once, bypassing the debouncer.
func (m *Manager[T]) ApplySearch(term string) {
	m.debouncer.Cancel()
	m.mu.Lock()
	m.rawTerm = term
	m.mu.Unlock()
	m.settle(term)
}

func (m *Manager[T]) settle(term string) bool {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return false
	}
	m.settledTerm = term
	m.refilterLocked()
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Debugf("search settled on %q: %d of %d", term, len(state.Filtered), len(state.All))
	m.emit(Event[T]{Kind: EventChanged, State: state})
	return true
}

// SetUserFilter restricts the view to items owned by userID; 0 clears it.
func (m *Manager[T]) SetUserFilter(userID int) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return
	}
	if userID < 0 {
		userID = 0
	}
	m.userFilter = userID
	m.refilterLocked()
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
}

// AddItem creates draft remotely and prepends the server's copy.
func (m *Manager[T]) AddItem(ctx context.Context, draft T) (T, error) {
	var zero T
	if err := m.checkMutable(); err != nil {
		return zero, err
	}

	created, err := m.opts.Mutator.Create(ctx, draft)
	if err != nil {
		return zero, m.mutationFailed(&MutationError{Op: OpCreate, Key: draft.Key(), Err: err})
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return created, nil
	}
	m.all = slices.Insert(slices.Clone(m.all), 0, created)
	if !m.opts.RefilterOnAdd || Matches(created, m.settledTerm, m.userFilter) {
		m.filtered = slices.Insert(slices.Clone(m.filtered), 0, created)
	}
	m.clampLocked()
	all := slices.Clone(m.all)
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Infof("created item %d", created.Key())
	m.saveCache(all)
	m.emit(Event[T]{Kind: EventChanged, State: state})
	return created, nil
}

// RemoveItem deletes key remotely, then from both all and filtered. A
// not-found answer means the item is already gone, so it is removed too.
func (m *Manager[T]) RemoveItem(ctx context.Context, key int) error {
	if err := m.checkMutable(); err != nil {
		return err
	}

	if err := m.opts.Mutator.Delete(ctx, key); err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return m.mutationFailed(&MutationError{Op: OpDelete, Key: key, Err: err})
		}
		m.log.With("id", key).Warnf("item already deleted remotely, removing locally")
	}

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil
	}
	hasKey := func(item T) bool { return item.Key() == key }
	m.all = slices.DeleteFunc(slices.Clone(m.all), hasKey)
	m.filtered = slices.DeleteFunc(slices.Clone(m.filtered), hasKey)
	m.clampLocked()
	all := slices.Clone(m.all)
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Infof("deleted item %d", key)
	m.saveCache(all)
	m.emit(Event[T]{Kind: EventChanged, State: state})
	return nil
}

func (m *Manager[T]) checkMutable() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	if m.opts.Mutator == nil {
		return ErrReadOnly
	}
	return nil
}

func (m *Manager[T]) mutationFailed(err *MutationError) error {
	m.log.With("op", err.Op).Errorf("%v", err)

	m.mu.Lock()
	state := m.snapshotLocked()
	disposed := m.disposed
	m.mu.Unlock()

	if !disposed {
		m.emit(Event[T]{Kind: EventError, State: state, Err: err})
	}
	return err
}

// SetPage moves to page n when it is within [1, totalPages].
func (m *Manager[T]) SetPage(n int) bool {
	m.mu.Lock()
	total := TotalPages(len(m.filtered), m.opts.PageSize)
	if m.disposed || n < 1 || n > total || n == m.page {
		m.mu.Unlock()
		return false
	}
	m.page = n
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
	return true
}

// NextPage is a no-op on the last page.
func (m *Manager[T]) NextPage() bool {
	m.mu.Lock()
	total := TotalPages(len(m.filtered), m.opts.PageSize)
	if m.disposed || m.page >= total {
		m.mu.Unlock()
		return false
	}
	m.page++
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
	return true
}

// PrevPage is a no-op on the first page.
func (m *Manager[T]) PrevPage() bool {
	m.mu.Lock()
	if m.disposed || m.page <= 1 {
		m.mu.Unlock()
		return false
	}
	m.page--
	state := m.snapshotLocked()
	m.mu.Unlock()

	m.emit(Event[T]{Kind: EventChanged, State: state})
	return true
}

// Find looks key up in the full collection.
func (m *Manager[T]) Find(key int) (T, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.all {
		if item.Key() == key {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (m *Manager[T]) Snapshot() State[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Subscribe registers fn for every event until the returned cancel func is
// called or the manager is disposed.
func (m *Manager[T]) Subscribe(fn func(Event[T])) (cancel func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return func() {}
	}
	id := m.nextObs
	m.nextObs++
	m.observers[id] = fn
	return func() {
		m.mu.Lock()
		delete(m.observers, id)
		m.mu.Unlock()
	}
}

// Dispose cancels any pending search and drops all observers. A disposed
// manager ignores every later call.
func (m *Manager[T]) Dispose() {
	m.debouncer.Dispose()
	m.mu.Lock()
	m.disposed = true
	m.observers = make(map[int]func(Event[T]))
	m.mu.Unlock()
}

func (m *Manager[T]) refilterLocked() {
	m.filtered = Filter(m.all, m.settledTerm, m.userFilter)
	m.clampLocked()
}

func (m *Manager[T]) clampLocked() {
	if !m.opts.ClampPage {
		return
	}
	total := TotalPages(len(m.filtered), m.opts.PageSize)
	m.page = min(max(m.page, 1), total)
}

func (m *Manager[T]) snapshotLocked() State[T] {
	filtered := slices.Clone(m.filtered)
	return State[T]{
		All:         slices.Clone(m.all),
		Filtered:    filtered,
		SearchTerm:  m.rawTerm,
		SettledTerm: m.settledTerm,
		UserFilter:  m.userFilter,
		Loaded:      m.loaded,
		Page:        Paginate(filtered, m.page, m.opts.PageSize, m.opts.MaxPageButtons),
	}
}

func (m *Manager[T]) emit(ev Event[T]) {
	m.mu.Lock()
	fns := make([]func(Event[T]), 0, len(m.observers))
	for _, fn := range m.observers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
