package pg_client

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okieraised/farm-telemetry-agent/internal/config"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	once sync.Once
	pool *pgxpool.Pool
)

type Options struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	MaxConns int
}

type Option func(*Options)

func WithHost(host string, port int) Option {
	return func(o *Options) { o.Host, o.Port = host, port }
}

func WithCredentials(user, password string) Option {
	return func(o *Options) { o.User, o.Password = user, password }
}

func WithDatabase(name string) Option {
	return func(o *Options) { o.Database = name }
}

func WithMaxConns(n int) Option {
	return func(o *Options) { o.MaxConns = n }
}

func defaultOptionsFromViper() Options {
	maxConns := viper.GetInt(config.DatabaseMaxConns)
	if maxConns <= 0 {
		maxConns = 4
	}
	return Options{
		Host:     viper.GetString(config.DatabaseHost),
		Port:     viper.GetInt(config.DatabasePort),
		User:     viper.GetString(config.DatabaseUser),
		Password: viper.GetString(config.DatabasePassword),
		Database: viper.GetString(config.DatabaseName),
		MaxConns: maxConns,
	}
}

// NewPGClient builds (or returns) the singleton connection pool. The first
// successful call fixes config.
func NewPGClient(ctx context.Context, opts ...Option) error {
	var initErr error
	once.Do(func() {
		conf := defaultOptionsFromViper()
		for _, fn := range opts {
			if fn != nil {
				fn(&conf)
			}
		}

		connStr := fmt.Sprintf(
			"postgres://%s:%s@%s:%d/%s?pool_max_conns=%d",
			conf.User, conf.Password, conf.Host, conf.Port, conf.Database, conf.MaxConns,
		)

		p, err := pgxpool.New(ctx, connStr)
		if err != nil {
			initErr = errors.Wrap(err, "failed to create connection pool")
			return
		}
		if err = p.Ping(ctx); err != nil {
			p.Close()
			initErr = errors.Wrap(err, "failed to ping database")
			return
		}
		pool = p
	})
	return initErr
}

// Pool returns the singleton pool (after NewPGClient).
func Pool() *pgxpool.Pool {
	if pool == nil {
		panic("pg client not initialized; call NewPGClient first")
	}
	return pool
}
