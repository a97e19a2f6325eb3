// Package state provides the storage environment the keepers run against: a cosmos-db
// backed multistore with one IAVL store per module, an event sink, and branching
// execution that commits an operation's writes and events only when it succeeds.
package state

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/core/event"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"
	storemod "cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/cosmos/cosmos-sdk/runtime"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Event is a recorded key/value event.
type Event struct {
	Type       string
	Attributes []event.Attribute
}

// Attribute returns the value of the named attribute and whether it is present.
func (e Event) Attribute(key string) (string, bool) {
	for _, attr := range e.Attributes {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return "", false
}

// Environment owns the database, the multistore mounted on it and the root context
// that collects committed events.
type Environment struct {
	db     dbm.DB
	cms    storetypes.CommitMultiStore
	keys   map[string]*storetypes.KVStoreKey
	logger log.Logger

	mu   sync.Mutex
	root sdk.Context
}

// NewEnvironment mounts one IAVL store per key on db and loads the latest version.
func NewEnvironment(db dbm.DB, logger log.Logger, storeKeys ...string) (*Environment, error) {
	cms := storemod.NewCommitMultiStore(db, logger, metrics.NewNoOpMetrics())
	keys := make(map[string]*storetypes.KVStoreKey, len(storeKeys))
	for _, name := range storeKeys {
		if _, ok := keys[name]; ok {
			return nil, fmt.Errorf("duplicate store key %q", name)
		}
		key := storetypes.NewKVStoreKey(name)
		cms.MountStoreWithDB(key, storetypes.StoreTypeIAVL, nil)
		keys[name] = key
	}
	if err := cms.LoadLatestVersion(); err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return &Environment{
		db:     db,
		cms:    cms,
		keys:   keys,
		logger: logger.With("module", "state"),
		root:   sdk.NewContext(cms, cmtproto.Header{}, false, logger),
	}, nil
}

// NewMemEnvironment returns an environment over a fresh in-memory database. It panics
// if the stores cannot be mounted.
func NewMemEnvironment(logger log.Logger, storeKeys ...string) *Environment {
	env, err := NewEnvironment(dbm.NewMemDB(), logger, storeKeys...)
	if err != nil {
		panic(err)
	}
	return env
}

// OpenEnvironment opens a named database of the given backend under dir.
func OpenEnvironment(name string, backend dbm.BackendType, dir string, logger log.Logger, storeKeys ...string) (*Environment, error) {
	db, err := dbm.NewDB(name, backend, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database %q in %s: %w", backend, name, dir, err)
	}
	env, err := NewEnvironment(db, logger, storeKeys...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return env, nil
}

// Close commits pending root writes and closes the underlying database.
func (e *Environment) Close() error {
	e.mu.Lock()
	e.cms.Commit()
	e.mu.Unlock()
	return e.db.Close()
}

// LastCommitID returns the version and hash of the latest commit.
func (e *Environment) LastCommitID() storetypes.CommitID {
	return e.cms.LastCommitID()
}

// Context returns the sdk.Context carried by ctx, or the root context wrapping ctx when
// it carries none.
func (e *Environment) Context(ctx context.Context) sdk.Context {
	sdkCtx, _ := e.context(ctx)
	return sdkCtx
}

func (e *Environment) context(ctx context.Context) (sdkCtx sdk.Context, root bool) {
	if c, ok := ctx.Value(sdk.SdkContextKey).(sdk.Context); ok {
		return c, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.root.WithContext(ctx), true
}

// Execute runs fn against a branch of the state visible from ctx. The branch's writes
// and events reach the parent only when fn returns nil; a successful branch of the
// root is committed.
func (e *Environment) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	parent, root := e.context(ctx)
	branch, write := parent.CacheContext()

	if err := fn(branch); err != nil {
		e.logger.Debug("discarding branch", "events", len(branch.EventManager().Events()), "error", err)
		return err
	}

	write()
	if root {
		e.mu.Lock()
		id := e.cms.Commit()
		e.mu.Unlock()
		e.logger.Debug("committed", "version", id.Version)
	}
	return nil
}

// Events returns the committed events.
func (e *Environment) Events() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return convertEvents(e.root.EventManager().Events())
}

// ResetEvents drops the committed event log and returns what it held.
func (e *Environment) ResetEvents() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := convertEvents(e.root.EventManager().Events())
	e.root = e.root.WithEventManager(sdk.NewEventManager())
	return out
}

func convertEvents(events sdk.Events) []Event {
	if len(events) == 0 {
		return nil
	}
	out := make([]Event, len(events))
	for i, ev := range events {
		attrs := make([]event.Attribute, len(ev.Attributes))
		for j, attr := range ev.Attributes {
			attrs[j] = event.Attribute{Key: attr.Key, Value: attr.Value}
		}
		out[i] = Event{Type: ev.Type, Attributes: attrs}
	}
	return out
}

// KVStoreService returns the store service of a mounted store. It panics for a key
// that was not passed to NewEnvironment.
func (e *Environment) KVStoreService(name string) store.KVStoreService {
	key, ok := e.keys[name]
	if !ok {
		panic(fmt.Sprintf("state: store %q is not mounted", name))
	}
	return kvStoreService{env: e, inner: runtime.NewKVStoreService(key)}
}

// kvStoreService resolves plain contexts to the root before opening the store.
type kvStoreService struct {
	env   *Environment
	inner store.KVStoreService
}

func (s kvStoreService) OpenKVStore(ctx context.Context) store.KVStore {
	return s.inner.OpenKVStore(s.env.Context(ctx))
}

// EventService returns an event service recording into the branch of the caller's context.
func (e *Environment) EventService() event.Service {
	return eventService{env: e}
}

type eventService struct {
	env *Environment
}

func (s eventService) EventManager(ctx context.Context) event.Manager {
	return runtime.NewEventManager(s.env.Context(ctx))
}
