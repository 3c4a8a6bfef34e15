package local_cache

import (
	"sync"

	"github.com/dgraph-io/ristretto"
)

type Options struct {
	NumCounters int64 // number of counters (10x your max items is a good start)
	MaxCost     int64 // total cost capacity (sum of item costs)
	BufferItems int64 // number of keys per Get buffer
	Metrics     bool
	OnEvict     func(item *ristretto.Item)
}

type Option func(*Options)

func WithNumCounters(n int64) Option {
	return func(o *Options) { o.NumCounters = n }
}

func WithMaxCost(c int64) Option {
	return func(o *Options) { o.MaxCost = c }
}

func WithBufferItems(n int64) Option {
	return func(o *Options) { o.BufferItems = n }
}

func WithMetrics() Option {
	return func(o *Options) { o.Metrics = true }
}

func WithOnEvict(f func(item *ristretto.Item)) Option {
	return func(o *Options) { o.OnEvict = f }
}

// defaultOptions set default values. The agent caches a handful of latest
// readings per owner, so the capacity is deliberately small.
func defaultOptions() Options {
	return Options{
		NumCounters: 10_000,
		MaxCost:     1_000,
		BufferItems: 64,
	}
}

var (
	once  sync.Once
	cache *ristretto.Cache
)

// NewLocalCache builds (or returns) the singleton. The first successful call fixes config.
func NewLocalCache(opts ...Option) error {
	var initErr error
	once.Do(func() {
		conf := defaultOptions()
		for _, fn := range opts {
			fn(&conf)
		}

		c, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: conf.NumCounters,
			MaxCost:     conf.MaxCost,
			BufferItems: conf.BufferItems,
			Metrics:     conf.Metrics,
			OnEvict:     conf.OnEvict,
		})
		if err != nil {
			initErr = err
			return
		}
		cache = c
	})
	return initErr
}

// Cache returns the singleton cache (after NewLocalCache).
func Cache() *ristretto.Cache {
	if cache == nil {
		panic("local cache not initialized; call NewLocalCache first")
	}
	return cache
}
