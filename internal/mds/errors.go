package mds

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/aws/smithy-go"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

type Error string

const (
	ErrNoConnection   = Error("no connection to metadata store")
	ErrUnknownBackend = Error("unknown metadata store backend")
	ErrUnknownStore   = Error("unknown metadata store profile")
	ErrNoDatabase     = Error("no database configured")
)

func (e Error) Error() string {
	return string(e)
}

// ErrorKind tells recoverable connection failures apart.
type ErrorKind int

const (
	// KindUnavailable means the store was never reachable.
	KindUnavailable ErrorKind = iota + 1
	// KindConnectionLost means the store was reachable but dropped mid-operation.
	KindConnectionLost
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindConnectionLost:
		return "connection-lost"
	default:
		return "unknown"
	}
}

// StoreError reports a connection failure against a configured store.
type StoreError struct {
	Kind     ErrorKind
	Op       string
	Database string
	Host     string
	Err      error
}

// NewStoreError builds a StoreError for the given store configuration.
func NewStoreError(kind ErrorKind, cfg *StoreConfig, op string, err error) *StoreError {
	e := StoreError{Kind: kind, Op: op, Err: err}
	if cfg != nil {
		e.Database, e.Host = cfg.Database, cfg.Host
	}
	return &e
}

func (e *StoreError) Error() string {
	var msg string
	switch e.Kind {
	case KindConnectionLost:
		msg = fmt.Sprintf("connection to database %q on %q was lost", e.Database, e.Host)
	default:
		msg = fmt.Sprintf("database %q not available on %q", e.Database, e.Host)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches ErrNoConnection so callers can test for any connection failure.
func (e *StoreError) Is(target error) bool {
	return target == ErrNoConnection
}

// IsUnavailable returns true if err carries a KindUnavailable StoreError.
func IsUnavailable(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindUnavailable
}

// IsConnectionLost returns true if err carries a KindConnectionLost StoreError.
func IsConnectionLost(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Kind == KindConnectionLost
}

// Classify maps driver errors onto StoreError kinds. connected tells whether
// the store was reached before, in which case any outage, a failed redial
// included, is a lost connection. Errors that are not connection failures are
// returned unchanged.
func Classify(err error, cfg *StoreConfig, op string, connected bool) error {
	if err == nil {
		return nil
	}

	var se *StoreError
	if errors.As(err, &se) {
		return err
	}

	switch {
	case isDialFailure(err), isDropped(err):
		if connected {
			return NewStoreError(KindConnectionLost, cfg, op, err)
		}
		return NewStoreError(KindUnavailable, cfg, op, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AccessDenied":
			return NewStoreError(KindUnavailable, cfg, op, err)
		case "RequestTimeout", "SlowDown", "ServiceUnavailable", "InternalError":
			if connected {
				return NewStoreError(KindConnectionLost, cfg, op, err)
			}
			return NewStoreError(KindUnavailable, cfg, op, err)
		}
	}

	return err
}

func isDialFailure(err error) bool {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrCantOpen {
		return true
	}
	// Open failures surface as plain text once database/sql wraps them.
	return strings.Contains(err.Error(), "unable to open database file")
}

func isDropped(err error) bool {
	switch {
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, net.ErrClosed),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EPIPE),
		errors.Is(err, context.DeadlineExceeded):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return pgconn.SafeToRetry(err)
}
