package dao

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/dbrowse/dbrowse/internal/mds"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// UID identifies a run header or event descriptor document.
type UID string

// Short returns the first 8 characters of the uid.
func (u UID) Short() string {
	if len(u) <= 8 {
		return string(u)
	}
	return string(u[:8])
}

// MatchUID finds the header whose uid equals sel, or else the first whose uid
// starts with it.
func MatchUID(hh []*Header, sel string) (UID, bool) {
	for _, h := range hh {
		if string(h.UID) == sel {
			return h.UID, true
		}
	}
	for _, h := range hh {
		if strings.HasPrefix(string(h.UID), sel) {
			return h.UID, true
		}
	}
	return "", false
}

// DataKey describes one channel recorded by an event descriptor.
type DataKey struct {
	Source   string  `json:"source" yaml:"source"`
	External *string `json:"external" yaml:"external"`
	Dtype    string  `json:"dtype,omitempty" yaml:"dtype,omitempty"`
	Shape    []int   `json:"shape,omitempty" yaml:"shape,omitempty,flow"`
}

// Location returns the external location, or "" for keys whose data lives in
// the event documents.
func (k DataKey) Location() string {
	if k.External == nil {
		return ""
	}
	return *k.External
}

// DataKeys maps channel names to their descriptions in document order.
type DataKeys = orderedmap.OrderedMap[string, DataKey]

// NewDataKeys returns an empty key mapping.
func NewDataKeys() *DataKeys {
	return orderedmap.New[string, DataKey]()
}

// EventDescriptor describes one event stream of a run.
type EventDescriptor struct {
	UID      UID       `json:"uid"`
	RunStart UID       `json:"run_start"`
	Time     float64   `json:"time"`
	Name     string    `json:"name,omitempty"`
	DataKeys *DataKeys `json:"data_keys"`
}

// Keys returns the data keys, never nil.
func (d *EventDescriptor) Keys() *DataKeys {
	if d == nil || d.DataKeys == nil {
		return NewDataKeys()
	}
	return d.DataKeys
}

// Header is a run start document together with its event descriptors.
type Header struct {
	UID            UID            `json:"uid"`
	Time           float64        `json:"time"`
	ScanID         int64          `json:"scan_id"`
	Owner          string         `json:"owner"`
	BeamlineID     string         `json:"beamline_id"`
	Group          string         `json:"group"`
	Project        string         `json:"project"`
	Sample         map[string]any `json:"sample,omitempty"`
	BeamlineConfig map[string]any `json:"beamline_config,omitempty"`

	// EventDescriptors are stored as separate documents and attached by the broker.
	EventDescriptors []*EventDescriptor `json:"-"`

	// Custom holds run start fields outside the known schema.
	Custom map[string]any `json:"-"`
}

// Start returns the run start time, or the zero time when unset.
func (h *Header) Start() time.Time {
	if h.Time <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(h.Time)
	return time.Unix(int64(sec), int64(frac*1e9))
}

// Summary field names, in display order.
const (
	FieldUID        = "uid"
	FieldTime       = "time"
	FieldScanID     = "scan_id"
	FieldOwner      = "owner"
	FieldBeamlineID = "beamline_id"
	FieldGroup      = "group"
	FieldProject    = "project"
)

// Fields projected separately and never part of a summary.
const (
	FieldEventDescriptors = "event_descriptors"
	FieldSample           = "sample"
	FieldBeamlineConfig   = "beamline_config"
)

// SummaryFields lists the schema fields of a summary.
var SummaryFields = []string{
	FieldUID,
	FieldTime,
	FieldScanID,
	FieldOwner,
	FieldBeamlineID,
	FieldGroup,
	FieldProject,
}

func isStructural(name string) bool {
	switch name {
	case FieldEventDescriptors, FieldSample, FieldBeamlineConfig:
		return true
	}
	return false
}

// Summary projects the header onto a flat field mapping. Schema fields always
// win over custom fields of the same name.
func (h *Header) Summary() map[string]any {
	out := make(map[string]any, len(SummaryFields)+len(h.Custom))
	for k, v := range h.Custom {
		if isStructural(k) {
			continue
		}
		out[k] = v
	}

	out[FieldUID] = string(h.UID)
	out[FieldTime] = h.Time
	out[FieldScanID] = h.ScanID
	out[FieldOwner] = h.Owner
	out[FieldBeamlineID] = h.BeamlineID
	out[FieldGroup] = h.Group
	out[FieldProject] = h.Project

	return out
}

// Broker retrieves run headers from a metadata store.
type Broker interface {
	// FetchLast returns up to n most recent headers, newest first.
	// Connection failures are reported as *mds.StoreError.
	FetchLast(ctx context.Context, n int) ([]*Header, error)
}

// Pinger is implemented by brokers that can check their store cheaply.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Factory provides the store connection to brokers.
type Factory interface {
	Client() mds.Connection
	Store() string
	SetStore(name string) error
}

// Accessor is a registered broker implementation.
type Accessor interface {
	Broker
	Init(Factory, mds.Backend)
	Backend() mds.Backend
}
