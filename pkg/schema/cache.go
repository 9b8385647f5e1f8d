// Package schema discovers a content API schema by introspection and keeps
// the classified result in a load-once cache.
package schema

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	graphql "github.com/llehouerou/go-contentgraph-client"
)

// Executor runs a GraphQL request. *graphql.Client implements it.
type Executor interface {
	Execute(ctx context.Context, req graphql.Request) *graphql.Response[json.RawMessage]
}

// Cache holds at most one SchemaInfo. The first GetSchemaInfo loads it;
// later calls return the cached value until RefreshSchema replaces it.
// Failed loads are logged and leave the cache empty so the next call
// retries.
type Cache struct {
	executor Executor
	logger   graphql.Logger
	now      func() time.Time

	// lock is a single-slot semaphore so waiting respects ctx.
	lock *semaphore.Weighted
	info atomic.Pointer[SchemaInfo]

	subMu  sync.Mutex
	subs   []subscriber
	nextID int
}

type subscriber struct {
	id int
	fn func(*SchemaInfo)
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the sink for load failures and load results.
func WithLogger(l graphql.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClock sets the clock stamping SchemaInfo.FetchedAt.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCache creates an empty cache loading through executor.
func NewCache(executor Executor, opts ...Option) *Cache {
	c := &Cache{
		executor: executor,
		logger:   discard{},
		now:      time.Now,
		lock:     semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetSchemaInfo returns the cached schema, loading it if needed. Concurrent
// callers on an empty cache share a single introspection request. It
// returns nil when the load failed; the error is non-nil only if ctx ends
// while waiting for another load.
func (c *Cache) GetSchemaInfo(ctx context.Context) (*SchemaInfo, error) {
	if info := c.info.Load(); info != nil {
		return info, nil
	}
	if err := c.lock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.lock.Release(1)

	if info := c.info.Load(); info != nil {
		return info, nil
	}
	return c.load(ctx), nil
}

// RefreshSchema drops the cached schema, loads it again and notifies
// subscribers with the result, which is nil if the load failed.
func (c *Cache) RefreshSchema(ctx context.Context) (*SchemaInfo, error) {
	if err := c.lock.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	c.info.Store(nil)
	info := c.load(ctx)
	c.lock.Release(1)

	c.notify(info)
	return info, nil
}

// IsSchemaLoaded reports whether a schema is cached.
func (c *Cache) IsSchemaLoaded() bool {
	return c.info.Load() != nil
}

// Subscribe registers fn to be called after every RefreshSchema. The initial
// lazy load does not notify. The returned func removes the subscription.
// A nil fn is ignored.
func (c *Cache) Subscribe(fn func(*SchemaInfo)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	c.subMu.Lock()
	defer c.subMu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			defer c.subMu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Cache) notify(info *SchemaInfo) {
	c.subMu.Lock()
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.subMu.Unlock()

	for _, s := range subs {
		s.fn(info)
	}
}

// load must be called with lock held.
func (c *Cache) load(ctx context.Context) *SchemaInfo {
	resp := c.executor.Execute(ctx, graphql.Request{Query: IntrospectionQuery})
	if resp.HasErrors() {
		for _, e := range resp.Errors {
			c.logger.Errorf("schema introspection failed: %s", e.Message)
		}
		return nil
	}
	if resp.Data == nil {
		c.logger.Warnf("schema introspection returned no data")
		return nil
	}

	info, err := Parse(*resp.Data, c.now())
	if err != nil {
		c.logger.Errorf("schema introspection result could not be parsed: %v", err)
		return nil
	}
	c.info.Store(info)
	c.logger.Infof("schema loaded: %d content types, %d root fields",
		len(info.ContentTypes), len(info.QueryableTypeNames))
	return info
}

type discard struct{}

func (discard) Debugf(string, ...any) {}
func (discard) Infof(string, ...any)  {}
func (discard) Warnf(string, ...any)  {}
func (discard) Errorf(string, ...any) {}
