package mds

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Backend names a metadata store implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendS3       Backend = "s3"
	BackendDemo     Backend = "demo"
)

const (
	// DefaultTimeout bounds connection setup and a single fetch.
	DefaultTimeout = 30 * time.Second

	// DefaultDatabase matches the database name the acquisition side writes to.
	DefaultDatabase = "metadatastore"

	// DefaultHost is used when neither a profile nor the environment names one.
	DefaultHost = "localhost"

	// DefaultS3Region is used for S3 stores without an explicit region.
	DefaultS3Region = "us-east-1"
)

// Environment overrides, applied on top of the selected profile.
const (
	EnvDatabase = "MDS_DATABASE"
	EnvHost     = "MDS_HOST"
	EnvBackend  = "MDS_BACKEND"
)

// ParseBackend validates a backend name.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendPostgres, BackendSQLite, BackendS3, BackendDemo:
		return b, nil
	case "postgresql", "pg":
		return BackendPostgres, nil
	case "sqlite3":
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// StoreConfig describes how to reach one metadata store.
//
// Database and Host are what users see in status messages. Their meaning
// depends on the backend: postgres uses them as database name and
// host[:port], sqlite uses Host as the database file path, S3 uses Database
// as the bucket and Host as an optional custom endpoint.
type StoreConfig struct {
	Name     string
	Backend  Backend
	Database string
	Host     string
	User     string
	Password string
	Prefix   string
	Region   string
	Timeout  time.Duration
}

// Clone returns a copy of the configuration.
func (c *StoreConfig) Clone() *StoreConfig {
	if c == nil {
		return nil
	}
	cc := *c
	return &cc
}

// Validate fills in defaults and rejects unusable configurations.
func (c *StoreConfig) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendPostgres
	}
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	switch c.Backend {
	case BackendPostgres:
		if c.Database == "" {
			c.Database = DefaultDatabase
		}
		if c.Host == "" {
			c.Host = DefaultHost
		}
	case BackendSQLite:
		if c.Database == "" {
			c.Database = DefaultDatabase
		}
		if c.Host == "" {
			return fmt.Errorf("%w: sqlite store %q needs a file path in host", ErrNoDatabase, c.Name)
		}
		c.Host = ExpandHome(c.Host)
	case BackendS3:
		if c.Database == "" {
			return fmt.Errorf("%w: s3 store %q needs a bucket in database", ErrNoDatabase, c.Name)
		}
		if c.Region == "" {
			c.Region = DefaultS3Region
		}
	case BackendDemo:
		if c.Database == "" {
			c.Database = "demo"
		}
		if c.Host == "" {
			c.Host = "memory"
		}
	}

	return nil
}

// ApplyEnv overlays the MDS_* environment variables.
func (c *StoreConfig) ApplyEnv() error {
	if v := os.Getenv(EnvBackend); v != "" {
		b, err := ParseBackend(v)
		if err != nil {
			return err
		}
		c.Backend = b
	}
	if v := os.Getenv(EnvDatabase); v != "" {
		c.Database = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		c.Host = v
	}
	return nil
}

// PostgresConfig builds the pool configuration of a postgres store. Host
// may be host[:port] or a unix socket directory. Credentials are set on the
// parsed configuration, never spliced into a connection string.
func (c *StoreConfig) PostgresConfig() (*pgxpool.Config, error) {
	q := url.Values{}
	q.Set("connect_timeout", strconv.Itoa(int(c.Timeout.Seconds())))

	u := url.URL{Scheme: "postgres", Path: "/" + c.Database}
	if strings.HasPrefix(c.Host, "/") {
		q.Set("host", c.Host)
	} else {
		u.Host = c.Host
	}
	u.RawQuery = q.Encode()

	pc, err := pgxpool.ParseConfig(u.String())
	if err != nil {
		return nil, fmt.Errorf("invalid postgres settings for store %q: %w", c.Name, err)
	}
	if c.User != "" {
		pc.ConnConfig.User = c.User
	}
	if c.Password != "" {
		pc.ConnConfig.Password = c.Password
	}

	return pc, nil
}

// SQLiteDSN renders the read-only connection string for a sqlite store.
// The path is escaped so ? # and % in file names reach sqlite verbatim.
func (c *StoreConfig) SQLiteDSN() string {
	p := (&url.URL{Path: c.Host}).EscapedPath()
	return "file:" + p + "?mode=ro&_busy_timeout=5000"
}
