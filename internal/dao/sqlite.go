package dao

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbrowse/dbrowse/internal/mds"
)

func init() {
	RegisterBroker(mds.BackendSQLite, &SQLiteBroker{})
}

// SQLiteBroker reads run headers from a sqlite document store.
type SQLiteBroker struct {
	StoreResource
}

// FetchLast returns up to n most recent headers, newest first.
func (s *SQLiteBroker) FetchLast(ctx context.Context, n int) ([]*Header, error) {
	if err := validCount(n); err != nil {
		return nil, err
	}
	c, err := s.client()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, c.Config().Timeout)
	defer cancel()

	db, err := c.SQLite()
	if err != nil {
		return nil, s.classify(err, "open")
	}

	raw, err := queryDocuments(ctx, db, sqliteLastRuns, n)
	if err != nil {
		return nil, s.classify(err, "query run starts")
	}
	s.markConnected()

	headers := make([]*Header, 0, len(raw))
	for _, doc := range raw {
		h, err := DecodeHeader(doc)
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	if len(headers) == 0 {
		return headers, nil
	}

	var descs []*EventDescriptor
	for _, uids := range chunkUIDs(headerUIDs(headers), sqliteBatch) {
		args := make([]any, len(uids))
		for i, uid := range uids {
			args[i] = uid
		}
		raw, err = queryDocuments(ctx, db, sqliteDescriptors(len(uids)), args...)
		if err != nil {
			return nil, s.classify(err, "query event descriptors")
		}
		for _, doc := range raw {
			d, err := DecodeDescriptor(doc)
			if err != nil {
				return nil, err
			}
			descs = append(descs, d)
		}
	}
	attachDescriptors(headers, descs)

	log := s.logger()
	log.Debug().Int("requested", n).Int("found", len(headers)).Int("descriptors", len(descs)).Msg("fetched run headers")

	return headers, nil
}

func queryDocuments(ctx context.Context, db *sql.DB, query string, args ...any) ([][]byte, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs [][]byte
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, []byte(doc))
	}
	return docs, rows.Err()
}
