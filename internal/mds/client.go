package mds

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// Connection hands out driver handles for the active metadata store.
type Connection interface {
	Config() *StoreConfig
	ConnectionOK() bool
	CheckConnectivity(ctx context.Context) bool
	SwitchStore(name string) error
	ActiveStore() string
	StoreNames() []string
	Postgres(ctx context.Context) (*pgxpool.Pool, error)
	SQLite() (*sql.DB, error)
	S3(ctx context.Context) (*s3.Client, error)
	Close()
}

// handles holds the lazily created driver handles of one store.
type handles struct {
	pool      *pgxpool.Pool
	db        *sql.DB
	s3Client  *s3.Client
	stsClient *sts.Client
	createdAt time.Time
}

func (h *handles) close() {
	if h.pool != nil {
		h.pool.Close()
	}
	if h.db != nil {
		_ = h.db.Close()
	}
}

// APIClient is the Connection used by the brokers.
type APIClient struct {
	config   *StoreConfig
	settings ProfileSettings
	handles  *handles
	connOK   bool
	logger   zerolog.Logger
	mx       sync.RWMutex
}

// NewAPIClient creates a client for the given store. settings may be nil
// when the store was configured entirely from flags.
func NewAPIClient(settings ProfileSettings, cfg *StoreConfig, logger zerolog.Logger) (*APIClient, error) {
	if cfg == nil {
		return nil, errors.New("store config cannot be nil")
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &APIClient{
		config:   cfg,
		settings: settings,
		logger:   logger.With().Str("component", "mds-client").Logger(),
	}, nil
}

// Config returns a copy of the active store configuration.
func (c *APIClient) Config() *StoreConfig {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.config.Clone()
}

// ConnectionOK reports the outcome of the last connectivity check.
func (c *APIClient) ConnectionOK() bool {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.connOK
}

// CheckConnectivity pings the active store.
func (c *APIClient) CheckConnectivity(ctx context.Context) bool {
	cfg := c.Config()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	err := c.ping(ctx, cfg)

	c.mx.Lock()
	c.connOK = err == nil
	c.mx.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Str("store", cfg.Name).Msg("metadata store not reachable")
		return false
	}
	return true
}

func (c *APIClient) ping(ctx context.Context, cfg *StoreConfig) error {
	switch cfg.Backend {
	case BackendPostgres:
		pool, err := c.Postgres(ctx)
		if err != nil {
			return err
		}
		return pool.Ping(ctx)
	case BackendSQLite:
		db, err := c.SQLite()
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	case BackendS3:
		h, err := c.getHandles(ctx)
		if err != nil {
			return err
		}
		if h.s3Client == nil {
			return fmt.Errorf("%w: store is not an s3 store", ErrNoConnection)
		}
		if h.stsClient != nil {
			id, err := h.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
			if err != nil {
				return NewStoreError(KindUnavailable, cfg, "verify credentials", err)
			}
			c.logger.Debug().Str("account", aws.ToString(id.Account)).Str("store", cfg.Name).Msg("s3 credentials verified")
		}
		_, err = h.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Database)})
		return err
	case BackendDemo:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

// SwitchStore activates another profile and drops the handles of the old one.
func (c *APIClient) SwitchStore(name string) error {
	if c.settings == nil {
		return fmt.Errorf("%w: %q", ErrUnknownStore, name)
	}
	cfg, err := c.settings.GetStore(name)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := c.settings.SetActiveStore(name); err != nil {
		return err
	}

	c.mx.Lock()
	defer c.mx.Unlock()

	if c.handles != nil {
		c.handles.close()
		c.handles = nil
	}
	c.config = cfg
	c.connOK = false

	return nil
}

// ActiveStore returns the active profile name.
func (c *APIClient) ActiveStore() string {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.config.Name
}

// StoreNames returns all known profile names.
func (c *APIClient) StoreNames() []string {
	if c.settings == nil {
		return nil
	}
	return c.settings.StoreNames()
}

// Postgres returns the connection pool of a postgres store.
func (c *APIClient) Postgres(ctx context.Context) (*pgxpool.Pool, error) {
	h, err := c.getHandles(ctx)
	if err != nil {
		return nil, err
	}
	if h.pool == nil {
		return nil, fmt.Errorf("%w: store is not a postgres store", ErrNoConnection)
	}
	return h.pool, nil
}

// SQLite returns the database handle of a sqlite store.
func (c *APIClient) SQLite() (*sql.DB, error) {
	h, err := c.getHandles(context.Background())
	if err != nil {
		return nil, err
	}
	if h.db == nil {
		return nil, fmt.Errorf("%w: store is not a sqlite store", ErrNoConnection)
	}
	return h.db, nil
}

// S3 returns the client of an S3 store.
func (c *APIClient) S3(ctx context.Context) (*s3.Client, error) {
	h, err := c.getHandles(ctx)
	if err != nil {
		return nil, err
	}
	if h.s3Client == nil {
		return nil, fmt.Errorf("%w: store is not an s3 store", ErrNoConnection)
	}
	return h.s3Client, nil
}

// Close releases all driver handles.
func (c *APIClient) Close() {
	c.mx.Lock()
	defer c.mx.Unlock()

	if c.handles != nil {
		c.handles.close()
		c.handles = nil
	}
	c.connOK = false
}

// getHandles returns the handles of the active store, creating them on first use.
func (c *APIClient) getHandles(ctx context.Context) (*handles, error) {
	c.mx.RLock()
	if h := c.handles; h != nil {
		c.mx.RUnlock()
		return h, nil
	}
	c.mx.RUnlock()

	c.mx.Lock()
	defer c.mx.Unlock()

	if c.handles != nil {
		return c.handles, nil
	}

	h, err := createHandles(ctx, c.config)
	if err != nil {
		return nil, err
	}
	c.handles = h
	c.logger.Debug().
		Str("store", c.config.Name).
		Str("backend", string(c.config.Backend)).
		Msg("created store handles")

	return h, nil
}

func createHandles(ctx context.Context, cfg *StoreConfig) (*handles, error) {
	h := handles{createdAt: time.Now()}

	switch cfg.Backend {
	case BackendPostgres:
		poolCfg, err := cfg.PostgresConfig()
		if err != nil {
			return nil, err
		}
		poolCfg.MaxConns = 4
		pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			return nil, Classify(err, cfg, "connect", false)
		}
		h.pool = pool

	case BackendSQLite:
		db, err := sql.Open("sqlite3", cfg.SQLiteDSN())
		if err != nil {
			return nil, Classify(err, cfg, "open", false)
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		h.db = db

	case BackendS3:
		ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()

		opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
		if cfg.User != "" && cfg.Password != "" {
			opts = append(opts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.User, cfg.Password, ""),
			))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, NewStoreError(KindUnavailable, cfg, "load s3 config", err)
		}
		h.s3Client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Host != "" {
				o.BaseEndpoint = aws.String(cfg.Host)
				o.UsePathStyle = true
			}
		})
		// Custom endpoints are S3 compatible stores without STS.
		if cfg.Host == "" {
			h.stsClient = sts.NewFromConfig(awsCfg)
		}

	case BackendDemo:
		// served from memory, nothing to open

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	return &h, nil
}
