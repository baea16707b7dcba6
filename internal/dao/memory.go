package dao

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/google/uuid"
)

// DefaultDemoSize is the number of runs a demo store starts with.
const DefaultDemoSize = 25

func init() {
	RegisterBroker(mds.BackendDemo, &MemoryBroker{})
}

// errInjected is the cause attached to simulated store failures.
var errInjected = errors.New("simulated store failure")

// MemoryBroker serves headers held in process memory.
type MemoryBroker struct {
	StoreResource

	cfg     *mds.StoreConfig
	headers []*Header
	failErr error
	calls   int
	mx      sync.Mutex
}

// NewMemoryBroker returns a broker serving the given headers.
func NewMemoryBroker(cfg *mds.StoreConfig, headers ...*Header) *MemoryBroker {
	m := &MemoryBroker{cfg: cfg.Clone()}
	m.Add(headers...)
	return m
}

// Init seeds a registry created broker with demo runs.
func (m *MemoryBroker) Init(f Factory, b mds.Backend) {
	m.StoreResource.Init(f, b)

	m.mx.Lock()
	defer m.mx.Unlock()
	if f != nil && f.Client() != nil {
		m.cfg = f.Client().Config()
	}
	if len(m.headers) == 0 {
		m.headers = DemoHeaders(DefaultDemoSize, time.Now())
	}
}

// Add appends headers, as if new runs had been recorded.
func (m *MemoryBroker) Add(headers ...*Header) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.headers = append(m.headers, headers...)
}

// Fail makes subsequent fetches fail with a store error of the given kind.
func (m *MemoryBroker) Fail(kind mds.ErrorKind) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.failErr = mds.NewStoreError(kind, m.config(), "fetch", errInjected)
}

// FailWith makes subsequent fetches fail with err, classified the way a
// driver error would be.
func (m *MemoryBroker) FailWith(err error) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.failErr = err
}

// Recover clears any failure set with Fail or FailWith.
func (m *MemoryBroker) Recover() {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.failErr = nil
}

// Calls returns how many fetches reached the broker.
func (m *MemoryBroker) Calls() int {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.calls
}

// FetchLast returns up to n most recent headers, newest first.
func (m *MemoryBroker) FetchLast(ctx context.Context, n int) ([]*Header, error) {
	if err := validCount(n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, mds.Classify(err, m.Config(), "fetch", true)
	}

	m.mx.Lock()
	defer m.mx.Unlock()

	m.calls++
	if m.failErr != nil {
		return nil, mds.Classify(m.failErr, m.config(), "fetch", m.wasConnected())
	}
	m.markConnected()

	sorted := make([]*Header, len(m.headers))
	copy(sorted, m.headers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time > sorted[j].Time
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}

	return sorted, nil
}

// Config returns the configuration used in error reports.
func (m *MemoryBroker) Config() *mds.StoreConfig {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.config()
}

func (m *MemoryBroker) config() *mds.StoreConfig {
	if m.cfg == nil {
		m.cfg = &mds.StoreConfig{Backend: mds.BackendDemo}
		_ = m.cfg.Validate()
	}
	return m.cfg.Clone()
}

var demoBeamlines = []string{"CSX", "HXN", "SRX", "ISS"}

// DemoHeaders builds n synthetic runs, one every 17 minutes before now.
func DemoHeaders(n int, now time.Time) []*Header {
	out := make([]*Header, 0, n)
	for i := 0; i < n; i++ {
		start := now.Add(-time.Duration(n-i) * 17 * time.Minute)
		uid := UID(uuid.NewString())
		beamline := demoBeamlines[i%len(demoBeamlines)]

		h := &Header{
			UID:        uid,
			Time:       float64(start.UnixNano()) / 1e9,
			ScanID:     int64(1000 + i),
			Owner:      "xf23id",
			BeamlineID: beamline,
			Group:      "commissioning",
			Project:    fmt.Sprintf("proposal-%d", 300000+i%3),
			Sample:     map[string]any{"name": fmt.Sprintf("sample-%02d", i%7)},
			BeamlineConfig: map[string]any{
				"undulator_gap": 20.5 + float64(i%4),
			},
			Custom: map[string]any{
				"plan_name":  demoPlans[i%len(demoPlans)],
				"num_points": float64(10 * (i%5 + 1)),
			},
		}
		h.EventDescriptors = demoDescriptors(uid, h.Time, i)
		out = append(out, h)
	}
	return out
}

var demoPlans = []string{"count", "scan", "rel_scan", "grid_scan"}

func demoDescriptors(run UID, t float64, i int) []*EventDescriptor {
	primary := NewDataKeys()
	primary.Set("sclr_ch2", DataKey{Source: "PV:XF:23ID1-ES{Sclr:1}.S2", Dtype: "number"})
	primary.Set("Temperature", DataKey{Source: "PV:XF:23ID1-ES{TCtrl:1}T-I", Dtype: "number"})
	primary.Set("fccd_image", DataKey{
		Source:   "PV:XF:23ID1-ES{FCCD}",
		External: strPtr(fmt.Sprintf("FILESTORE:/GPFS/xf23id/%s/%d.h5", run.Short(), i)),
		Dtype:    "array",
		Shape:    []int{1024, 960},
	})
	primary.Set("temp", DataKey{Source: "PV:XF:23ID1-ES{TCtrl:1}T-SP", Dtype: "number"})

	baseline := NewDataKeys()
	baseline.Set("temp", DataKey{Source: "PV:XF:23ID1-ES{TCtrl:2}T-I", Dtype: "number"})
	baseline.Set("undulator_gap", DataKey{Source: "PV:SR:C23-ID:G1A{EPU:1-Ax:Gap}", Dtype: "number"})

	return []*EventDescriptor{
		{UID: UID(uuid.NewString()), RunStart: run, Time: t + 0.5, Name: "primary", DataKeys: primary},
		{UID: UID(uuid.NewString()), RunStart: run, Time: t + 0.1, Name: "baseline", DataKeys: baseline},
	}
}

func strPtr(s string) *string {
	return &s
}
