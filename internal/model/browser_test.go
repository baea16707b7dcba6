package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStore = &mds.StoreConfig{
	Backend:  mds.BackendPostgres,
	Database: "metadatastore",
	Host:     "mds.lab:5432",
}

type recorder struct {
	headers   [][]*dao.Header
	selection []dao.UID
	statuses  []Status
	mx        sync.Mutex
}

func (r *recorder) HeadersChanged(hh []*dao.Header) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.headers = append(r.headers, hh)
}

func (r *recorder) SelectionChanged(uid dao.UID, _ Summary, _ ChannelTable) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.selection = append(r.selection, uid)
}

func (r *recorder) StatusChanged(s Status) {
	r.mx.Lock()
	defer r.mx.Unlock()
	r.statuses = append(r.statuses, s)
}

func newTestBrowser(t *testing.T, n int) (*Browser, *dao.MemoryBroker, *recorder) {
	t.Helper()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	broker := dao.NewMemoryBroker(testStore, dao.DemoHeaders(n, now)...)
	b := NewBrowser(broker)
	b.SetLogger(zerolog.Nop())
	r := &recorder{}
	b.AddListener(r)
	return b, broker, r
}

func uids(hh []*dao.Header) []dao.UID {
	out := make([]dao.UID, len(hh))
	for i, h := range hh {
		out[i] = h.UID
	}
	return out
}

func keysOf[V any](m map[dao.UID]V) []dao.UID {
	out := make([]dao.UID, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestBrowser_SetRetrievalCount(t *testing.T) {
	for _, n := range []int{1, 3, 10, 20} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			b, _, r := newTestBrowser(t, 10)

			require.NoError(t, b.SetRetrievalCount(context.Background(), n))

			want := n
			if want > 10 {
				want = 10
			}
			hh := b.Headers()
			assert.Len(t, hh, want)
			assert.ElementsMatch(t, uids(hh), keysOf(b.SummaryIndex()))
			assert.ElementsMatch(t, uids(hh), keysOf(b.ChannelIndex()))

			st := b.Status()
			assert.True(t, st.Active)
			assert.Equal(t, fmt.Sprintf("Requested: %d. Found: %d", n, want), st.Message)
			assert.Equal(t, n, b.Count())

			require.Len(t, r.headers, 1)
			require.Len(t, r.statuses, 1)
			assert.Equal(t, st, r.statuses[0])
		})
	}
}

func TestBrowser_InvalidCount(t *testing.T) {
	b, broker, r := newTestBrowser(t, 3)

	for _, n := range []int{0, -1} {
		err := b.SetRetrievalCount(context.Background(), n)
		assert.ErrorIs(t, err, ErrInvalidCount)
	}
	assert.Equal(t, 0, broker.Calls())
	assert.Equal(t, 0, b.Count())
	assert.Empty(t, r.statuses)
	assert.False(t, b.Status().Active)
}

func TestBrowser_Idempotent(t *testing.T) {
	b, _, _ := newTestBrowser(t, 5)

	require.NoError(t, b.SetRetrievalCount(context.Background(), 4))
	summaries, channels := b.SummaryIndex(), b.ChannelIndex()
	assert.NotEmpty(t, b.LastChange())

	require.NoError(t, b.SetRetrievalCount(context.Background(), 4))
	assert.Equal(t, summaries, b.SummaryIndex())
	assert.Equal(t, channels, b.ChannelIndex())
	assert.Empty(t, b.LastChange())
}

func TestBrowser_NewRunsShowUpInChange(t *testing.T) {
	b, broker, _ := newTestBrowser(t, 3)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 3))

	later := time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC)
	broker.Add(dao.DemoHeaders(1, later)...)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 3))

	// one run added, the oldest one dropped
	assert.Len(t, b.LastChange(), 2)
}

func TestBrowser_FailurePreservesState(t *testing.T) {
	tests := map[string]struct {
		kind mds.ErrorKind
		msg  string
	}{
		"unavailable": {
			kind: mds.KindUnavailable,
			msg:  "Database [[metadatastore]] not available on [[mds.lab:5432]]",
		},
		"connection lost": {
			kind: mds.KindConnectionLost,
			msg:  "Connection to database [[metadatastore]] on [[mds.lab:5432]] was lost",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			b, broker, r := newTestBrowser(t, 6)
			require.NoError(t, b.SetRetrievalCount(context.Background(), 4))

			headers, summaries, channels := b.Headers(), b.SummaryIndex(), b.ChannelIndex()
			change := b.LastChange()

			broker.Fail(tt.kind)
			require.NoError(t, b.SetRetrievalCount(context.Background(), 2))

			assert.Equal(t, headers, b.Headers())
			assert.Equal(t, summaries, b.SummaryIndex())
			assert.Equal(t, channels, b.ChannelIndex())
			assert.Equal(t, change, b.LastChange())

			st := b.Status()
			assert.False(t, st.Active)
			assert.Equal(t, tt.msg, st.Message)
			assert.Len(t, r.headers, 1)
			assert.Len(t, r.statuses, 2)

			broker.Recover()
			require.NoError(t, b.SetRetrievalCount(context.Background(), 2))
			assert.True(t, b.Status().Active)
			assert.Len(t, b.Headers(), 2)
		})
	}
}

func TestBrowser_RefusedDial(t *testing.T) {
	b, broker, _ := newTestBrowser(t, 4)
	refused := &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}

	broker.FailWith(refused)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 2))
	assert.Equal(t, "Database [[metadatastore]] not available on [[mds.lab:5432]]", b.Status().Message)

	broker.Recover()
	require.NoError(t, b.SetRetrievalCount(context.Background(), 2))
	require.True(t, b.Status().Active)

	broker.FailWith(refused)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 2))
	st := b.Status()
	assert.False(t, st.Active)
	assert.Equal(t, "Connection to database [[metadatastore]] on [[mds.lab:5432]] was lost", st.Message)
	assert.Len(t, b.Headers(), 2)
}

func TestBrowser_OtherErrorsPropagate(t *testing.T) {
	b, broker, r := newTestBrowser(t, 3)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 3))
	before := b.Status()

	broker.FailWith(dao.ErrMalformedDocument)
	err := b.SetRetrievalCount(context.Background(), 2)
	assert.ErrorIs(t, err, dao.ErrMalformedDocument)

	assert.Equal(t, before, b.Status())
	assert.Len(t, b.Headers(), 3)
	assert.Len(t, r.statuses, 1)
}

func TestBrowser_SelectBeforeRetrieval(t *testing.T) {
	b, _, r := newTestBrowser(t, 3)

	require.NoError(t, b.Select("anything"))
	assert.Empty(t, b.Selected())
	assert.Nil(t, b.Summary())
	assert.Nil(t, b.Channels())
	assert.Equal(t, []dao.UID{""}, r.selection)
}

func TestBrowser_Select(t *testing.T) {
	b, broker, r := newTestBrowser(t, 4)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 4))
	calls := broker.Calls()

	hh := b.Headers()
	target := hh[2]
	require.NoError(t, b.Select(target.UID))

	assert.Equal(t, target.UID, b.Selected())
	assert.Equal(t, b.SummaryIndex()[target.UID], b.Summary())
	assert.Equal(t, b.ChannelIndex()[target.UID], b.Channels())
	assert.Equal(t, string(target.UID), b.Summary()[dao.FieldUID])
	assert.Equal(t, calls, broker.Calls(), "select must not reach the store")
	assert.Equal(t, []dao.UID{target.UID}, r.selection)

	err := b.Select("not-a-member")
	assert.ErrorIs(t, err, ErrUnknownDataset)
	assert.Equal(t, target.UID, b.Selected())

	require.NoError(t, b.Select(""))
	assert.Empty(t, b.Selected())
	assert.Nil(t, b.Summary())
}

func TestBrowser_SelectionStale(t *testing.T) {
	b, broker, _ := newTestBrowser(t, 3)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 3))
	assert.False(t, b.SelectionStale())

	oldest := b.Headers()[2]
	require.NoError(t, b.Select(oldest.UID))
	assert.False(t, b.SelectionStale())

	require.NoError(t, b.SetRetrievalCount(context.Background(), 1))
	assert.True(t, b.SelectionStale())
	assert.Equal(t, oldest.UID, b.Selected())

	broker.Fail(mds.KindUnavailable)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 3))
	assert.True(t, b.SelectionStale())
}

func TestBrowser_ChannelsOfDemoRun(t *testing.T) {
	b, _, _ := newTestBrowser(t, 1)
	require.NoError(t, b.SetRetrievalCount(context.Background(), 1))

	uid := b.Headers()[0].UID
	require.NoError(t, b.Select(uid))

	var got []string
	for _, row := range b.Channels()[1:] {
		got = append(got, row[ColKeyName])
	}
	assert.Equal(t, []string{"fccd_image", "sclr_ch2", "temp", "temp_1", "Temperature", "undulator_gap"}, got)
}

func TestBrowser_RemoveListener(t *testing.T) {
	b, _, r := newTestBrowser(t, 2)
	b.RemoveListener(r)

	require.NoError(t, b.SetRetrievalCount(context.Background(), 2))
	assert.Empty(t, r.statuses)
}

func TestBrowser_ConcurrentCallers(t *testing.T) {
	b, _, _ := newTestBrowser(t, 8)

	var wg sync.WaitGroup
	for i := 1; i <= 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, b.SetRetrievalCount(context.Background(), n))
			_ = b.Headers()
			_ = b.Status()
		}(i)
	}
	wg.Wait()

	hh := b.Headers()
	assert.ElementsMatch(t, uids(hh), keysOf(b.SummaryIndex()))
	assert.ElementsMatch(t, uids(hh), keysOf(b.ChannelIndex()))
	assert.Equal(t, len(hh), b.Count())
}

func TestFailureMessage(t *testing.T) {
	err := mds.NewStoreError(mds.KindUnavailable, testStore, "fetch", errors.New("refused"))
	assert.Equal(t, "Database [[metadatastore]] not available on [[mds.lab:5432]]", failureMessage(err))
}
