package dao

import (
	"sort"
	"strings"
)

// SQLiteSchema creates the document tables read by SQLiteBroker.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS run_starts (
	uid      TEXT PRIMARY KEY,
	time     REAL NOT NULL,
	document TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS run_starts_time ON run_starts (time);

CREATE TABLE IF NOT EXISTS event_descriptors (
	uid       TEXT PRIMARY KEY,
	run_start TEXT NOT NULL,
	time      REAL NOT NULL,
	document  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS event_descriptors_run_start ON event_descriptors (run_start);
`

// PostgresSchema creates the document tables read by PostgresBroker.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS run_starts (
	uid      TEXT PRIMARY KEY,
	time     DOUBLE PRECISION NOT NULL,
	document JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS run_starts_time ON run_starts (time DESC);

CREATE TABLE IF NOT EXISTS event_descriptors (
	uid       TEXT PRIMARY KEY,
	run_start TEXT NOT NULL REFERENCES run_starts (uid),
	time      DOUBLE PRECISION NOT NULL,
	document  JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS event_descriptors_run_start ON event_descriptors (run_start);
`

const (
	sqliteLastRuns = `SELECT document FROM run_starts ORDER BY time DESC, uid LIMIT ?`

	postgresLastRuns    = `SELECT document::text FROM run_starts ORDER BY time DESC, uid LIMIT $1`
	postgresDescriptors = `SELECT document::text FROM event_descriptors
		WHERE run_start = ANY($1) ORDER BY time, uid`
)

// sqliteDescriptors builds the descriptor query for n run start uids.
func sqliteDescriptors(n int) string {
	marks := strings.TrimSuffix(strings.Repeat("?,", n), ",")
	return `SELECT document FROM event_descriptors WHERE run_start IN (` + marks + `) ORDER BY time, uid`
}

// sqliteBatch bounds the uids bound into one descriptor query, keeping it
// under SQLITE_MAX_VARIABLE_NUMBER of older sqlite builds.
var sqliteBatch = 500

// chunkUIDs splits uids into consecutive batches of at most size entries.
func chunkUIDs(uids []string, size int) [][]string {
	if size <= 0 {
		size = len(uids)
	}
	var out [][]string
	for len(uids) > size {
		out = append(out, uids[:size])
		uids = uids[size:]
	}
	if len(uids) > 0 {
		out = append(out, uids)
	}
	return out
}

// headerUIDs returns the uids of the given headers.
func headerUIDs(headers []*Header) []string {
	uids := make([]string, len(headers))
	for i, h := range headers {
		uids[i] = string(h.UID)
	}
	return uids
}

// attachDescriptors assigns descriptors to their run start headers, ordered by
// time with ties broken by uid. Descriptors of other runs are ignored.
func attachDescriptors(headers []*Header, descs []*EventDescriptor) {
	sort.SliceStable(descs, func(i, j int) bool {
		if descs[i].Time != descs[j].Time {
			return descs[i].Time < descs[j].Time
		}
		return descs[i].UID < descs[j].UID
	})

	byRun := make(map[UID]*Header, len(headers))
	for _, h := range headers {
		h.EventDescriptors = nil
		byRun[h.UID] = h
	}
	for _, d := range descs {
		if h, ok := byRun[d.RunStart]; ok {
			h.EventDescriptors = append(h.EventDescriptors, d)
		}
	}
}
