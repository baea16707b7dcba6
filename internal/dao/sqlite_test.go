package dao

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedSQLite writes headers and their descriptors into a fresh store file.
func seedSQLite(t *testing.T, headers []*Header) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mds.sqlite")

	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(SQLiteSchema)
	require.NoError(t, err)

	for _, h := range headers {
		raw, err := EncodeHeader(h)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO run_starts (uid, time, document) VALUES (?, ?, ?)`, string(h.UID), h.Time, string(raw))
		require.NoError(t, err)

		for _, d := range h.EventDescriptors {
			raw, err := EncodeDescriptor(d)
			require.NoError(t, err)
			_, err = db.Exec(`INSERT INTO event_descriptors (uid, run_start, time, document) VALUES (?, ?, ?, ?)`,
				string(d.UID), string(d.RunStart), d.Time, string(raw))
			require.NoError(t, err)
		}
	}

	return path
}

func sqliteBroker(t *testing.T, path string) Accessor {
	t.Helper()
	client, err := mds.NewAPIClient(nil, &mds.StoreConfig{
		Name:    "local",
		Backend: mds.BackendSQLite,
		Host:    path,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(client.Close)

	b, err := BrokerFor(NewFactory(client))
	require.NoError(t, err)
	require.IsType(t, &SQLiteBroker{}, b)
	return b
}

func TestSQLiteBroker_FetchLast(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	headers := DemoHeaders(6, now)
	b := sqliteBroker(t, seedSQLite(t, headers))

	hh, err := b.FetchLast(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, hh, 4)

	for i, h := range hh {
		want := headers[len(headers)-1-i]
		assert.Equal(t, want.UID, h.UID)
		assert.Equal(t, want.ScanID, h.ScanID)
		assert.Equal(t, want.Custom["plan_name"], h.Custom["plan_name"])

		require.Len(t, h.EventDescriptors, 2)
		// baseline is recorded before primary
		assert.Equal(t, "baseline", h.EventDescriptors[0].Name)
		assert.Equal(t, "primary", h.EventDescriptors[1].Name)

		var names []string
		for p := h.EventDescriptors[1].Keys().Oldest(); p != nil; p = p.Next() {
			names = append(names, p.Key)
		}
		assert.Equal(t, []string{"sclr_ch2", "Temperature", "fccd_image", "temp"}, names)
	}
}

func TestSQLiteBroker_FewerThanRequested(t *testing.T) {
	b := sqliteBroker(t, seedSQLite(t, DemoHeaders(2, time.Now())))

	hh, err := b.FetchLast(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, hh, 2)
}

func TestSQLiteBroker_Empty(t *testing.T) {
	b := sqliteBroker(t, seedSQLite(t, nil))

	hh, err := b.FetchLast(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, hh)
}

func TestSQLiteBroker_MissingFileIsUnavailable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.sqlite")
	b := sqliteBroker(t, path)

	_, err := b.FetchLast(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, mds.IsUnavailable(err), "got %v", err)

	var se *mds.StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, path, se.Host)
	assert.Equal(t, mds.DefaultDatabase, se.Database)
}

func TestSQLiteBroker_MalformedDocumentPropagates(t *testing.T) {
	path := seedSQLite(t, nil)
	db, err := sql.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO run_starts (uid, time, document) VALUES ('x', 1, '{"uid": ')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	b := sqliteBroker(t, path)
	_, err = b.FetchLast(context.Background(), 1)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.False(t, mds.IsUnavailable(err))
}

func TestChunkUIDs(t *testing.T) {
	uu := map[string]struct {
		uids []string
		size int
		e    [][]string
	}{
		"empty":   {size: 2},
		"exact":   {uids: []string{"a", "b"}, size: 2, e: [][]string{{"a", "b"}}},
		"partial": {uids: []string{"a", "b", "c", "d", "e"}, size: 2, e: [][]string{{"a", "b"}, {"c", "d"}, {"e"}}},
		"unbound": {uids: []string{"a", "b", "c"}, size: 0, e: [][]string{{"a", "b", "c"}}},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, u.e, chunkUIDs(u.uids, u.size))
		})
	}
}

func TestSQLiteBroker_FetchLastBatchesDescriptors(t *testing.T) {
	batch := sqliteBatch
	sqliteBatch = 2
	t.Cleanup(func() { sqliteBatch = batch })

	b := sqliteBroker(t, seedSQLite(t, DemoHeaders(5, time.Now())))

	hh, err := b.FetchLast(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, hh, 5)
	for _, h := range hh {
		assert.Len(t, h.EventDescriptors, 2, "run %s", h.UID)
	}
}
