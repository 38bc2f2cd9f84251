// Package lazypix is an asynchronous image loading coordinator: callers
// request a decoded image by identifier (URL) for display at a target
// surface, and lazypix resolves it from a bounded memory cache, a durable
// disk cache, or the network, delivering the result back on the target's
// own execution context without ever blocking the caller and without
// applying stale results to a surface that has since been reassigned.
package lazypix

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/davrux/lazypix/internal/diskcache"
	"github.com/davrux/lazypix/internal/fetch"
	"github.com/davrux/lazypix/internal/logging"
	"github.com/davrux/lazypix/internal/memcache"
	"github.com/davrux/lazypix/internal/queue"
)

// loadRequest is one pending load. It is owned by the queue until dequeued
// by the worker, which owns it until delivery.
type loadRequest struct {
	id       string
	target   Target
	opts     DisplayOptions
	listener Listener
}

// Loader coordinates image loading through a two-tier cache and a single
// background worker. Construct with New, then Start it; all methods are safe
// for concurrent use once started.
type Loader struct {
	cfg     Config
	sizing  SizingStrategy
	mem     *memcache.Cache
	disk    *diskcache.Cache
	pending *queue.Queue[*loadRequest]
	fetcher *fetch.Fetcher
	bind    *bindings

	started atomic.Bool
	group   *errgroup.Group

	logMu sync.RWMutex
	log   zerolog.Logger
}

// CacheStats describes the memory cache's resident contents.
type CacheStats struct {
	Entries       int
	ResidentBytes int64
}

// New creates a Loader. sizing may be nil, in which case every decode is
// bounded by the configured defaults.
func New(cfg Config, sizing SizingStrategy) *Loader {
	cfg = cfg.withDefaults()
	return &Loader{
		cfg:     cfg,
		sizing:  sizing,
		mem:     memcache.New(cfg.MemoryBudgetBytes),
		disk:    diskcache.New(cfg.CacheDir),
		pending: queue.New[*loadRequest](),
		fetcher: fetch.New(cfg.ConnectTimeout, cfg.ReadTimeout),
		bind:    newBindings(),
		log:     newLogger(cfg.Logging),
	}
}

// newLogger builds the loader's logger from the logging configuration.
func newLogger(lc LoggingConfig) zerolog.Logger {
	cfg := logging.DefaultConfig()
	if level, ok := logging.ParseLevel(lc.Level); ok {
		cfg.Level = level
	}
	switch lc.Format {
	case "json", "console":
		cfg.Format = lc.Format
	}
	return logging.New(cfg).With().Str("component", "lazypix").Logger()
}

// logger returns the current logger. Read per use so ApplyConfig level
// changes take effect on an already-running worker.
func (l *Loader) logger() zerolog.Logger {
	l.logMu.RLock()
	defer l.logMu.RUnlock()
	return l.log
}

// Start launches the background worker. The worker logs through the logger
// built from Config.Logging; a logger attached to ctx by the embedder takes
// precedence. Canceling ctx aborts any in-flight fetch, but orderly
// termination goes through Shutdown. Starting twice is a no-op.
func (l *Loader) Start(ctx context.Context) {
	if !l.started.CompareAndSwap(false, true) {
		return
	}

	if embedded := logging.FromContext(ctx); embedded.GetLevel() != zerolog.Disabled {
		l.logMu.Lock()
		l.log = embedded.With().Str("component", "lazypix").Logger()
		l.logMu.Unlock()
	}

	group, ctx := errgroup.WithContext(ctx)
	l.group = group
	group.Go(func() error {
		l.run(ctx)
		return nil
	})
}

// Shutdown stops the worker: blocked dequeues return immediately, pending
// queued requests are dropped, and any request already being processed is
// allowed to finish and deliver. Blocks until the worker has exited.
func (l *Loader) Shutdown() {
	l.pending.Close()
	if l.group != nil {
		_ = l.group.Wait()
	}
}

// Request asks for the image named by id to be displayed at target. It never
// blocks: a memory-cache hit is applied synchronously on the calling
// goroutine (no listener fires), anything else is queued for the worker and
// the placeholder policy from opts applies in the meantime.
//
// An empty id or nil target is a no-op. listener may be nil.
func (l *Loader) Request(id string, target Target, opts DisplayOptions, listener Listener) {
	if id == "" || target == nil {
		return
	}

	l.bind.bind(target, id)

	if img, ok := l.mem.Get(id); ok {
		// Fast path: apply on the caller's own context, no dispatch hop.
		target.SetImage(img)
		return
	}

	if listener != nil {
		listener.OnStarted(id)
	}

	req := &loadRequest{id: id, target: target, opts: opts, listener: listener}

	// Disk-resident identifiers decode near-instantly; serving them first
	// improves perceived latency for previously-seen content.
	l.pending.Enqueue(req, l.disk.Has(id), func(old *loadRequest) bool {
		return old.target == target
	})

	if opts.ShowStubOnMiss && opts.Stub != nil {
		target.SetImage(opts.Stub)
	} else {
		target.Clear()
	}
}

// CancelPending discards any queued-but-not-yet-dequeued request for target.
// Advisory: a request the worker already holds cannot be interrupted, but
// its delivery is suppressed by the staleness check if the target has been
// rebound since.
func (l *Loader) CancelPending(target Target) {
	if target == nil {
		return
	}
	l.pending.RemoveAll(func(req *loadRequest) bool {
		return req.target == target
	})
}

// ReleaseTarget cancels pending work for target and drops its binding
// record. Call when the embedder discards a surface for good; any in-flight
// result for it is then suppressed as stale.
func (l *Loader) ReleaseTarget(target Target) {
	if target == nil {
		return
	}
	l.CancelPending(target)
	l.bind.forget(target)
}

// ClearMemoryCache drops every decoded image from the memory cache.
func (l *Loader) ClearMemoryCache() {
	l.mem.Clear()
}

// ClearDiskCache removes every file in the cache directory. Best-effort:
// per-file delete failures are ignored.
func (l *Loader) ClearDiskCache() {
	l.disk.Clear()
}

// DiskPath returns the filesystem path where id's raw bytes are cached, or
// "" when disk caching is disabled. The file may or may not exist.
func (l *Loader) DiskPath(id string) string {
	return l.disk.Path(id)
}

// Stats reports the memory cache's entry count and resident byte cost.
func (l *Loader) Stats() CacheStats {
	return CacheStats{Entries: l.mem.Len(), ResidentBytes: l.mem.Used()}
}

// ApplyConfig applies the reloadable subset of a new configuration: the
// memory budget and the logging level. Wire this to
// ConfigManager.OnConfigChange for live reload.
func (l *Loader) ApplyConfig(cfg Config) {
	cfg = cfg.withDefaults()
	l.mem.Resize(cfg.MemoryBudgetBytes)

	if level, ok := logging.ParseLevel(cfg.Logging.Level); ok {
		l.logMu.Lock()
		l.log = l.log.Level(level)
		l.logMu.Unlock()
	}
}
