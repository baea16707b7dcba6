package dao

import (
	"context"

	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/jackc/pgx/v5"
)

func init() {
	RegisterBroker(mds.BackendPostgres, &PostgresBroker{})
}

// PostgresBroker reads run headers from a postgres document store.
type PostgresBroker struct {
	StoreResource
}

// FetchLast returns up to n most recent headers, newest first.
func (p *PostgresBroker) FetchLast(ctx context.Context, n int) ([]*Header, error) {
	if err := validCount(n); err != nil {
		return nil, err
	}
	c, err := p.client()
	if err != nil {
		return nil, err
	}
	cfg := c.Config()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	pool, err := c.Postgres(ctx)
	if err != nil {
		return nil, p.classify(err, "connect")
	}

	rows, err := pool.Query(ctx, postgresLastRuns, n)
	if err != nil {
		return nil, p.classify(err, "query run starts")
	}
	raw, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, p.classify(err, "read run starts")
	}
	p.markConnected()

	headers := make([]*Header, 0, len(raw))
	for _, doc := range raw {
		h, err := DecodeHeader([]byte(doc))
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	if len(headers) == 0 {
		return headers, nil
	}

	rows, err = pool.Query(ctx, postgresDescriptors, headerUIDs(headers))
	if err != nil {
		return nil, p.classify(err, "query event descriptors")
	}
	raw, err = pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, p.classify(err, "read event descriptors")
	}

	descs := make([]*EventDescriptor, 0, len(raw))
	for _, doc := range raw {
		d, err := DecodeDescriptor([]byte(doc))
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	attachDescriptors(headers, descs)

	log := p.logger()
	log.Debug().Int("requested", n).Int("found", len(headers)).Int("descriptors", len(descs)).Msg("fetched run headers")

	return headers, nil
}
