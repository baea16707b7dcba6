package dao

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrMalformedDocument is returned for documents that cannot be decoded.
var ErrMalformedDocument = errors.New("malformed document")

var headerFields = map[string]struct{}{
	FieldUID:              {},
	FieldTime:             {},
	FieldScanID:           {},
	FieldOwner:            {},
	FieldBeamlineID:       {},
	FieldGroup:            {},
	FieldProject:          {},
	FieldSample:           {},
	FieldBeamlineConfig:   {},
	FieldEventDescriptors: {},
	"_id":                 {},
}

// DecodeHeader decodes a run start document. Fields outside the schema end
// up in Header.Custom.
func DecodeHeader(raw []byte) (*Header, error) {
	var h Header
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, fmt.Errorf("%w: run start: %v", ErrMalformedDocument, err)
	}
	if h.UID == "" {
		return nil, fmt.Errorf("%w: run start without uid", ErrMalformedDocument)
	}

	var all map[string]any
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("%w: run start %s: %v", ErrMalformedDocument, h.UID, err)
	}
	for k, v := range all {
		if _, ok := headerFields[k]; ok {
			continue
		}
		if h.Custom == nil {
			h.Custom = make(map[string]any)
		}
		h.Custom[k] = v
	}

	return &h, nil
}

// DecodeDescriptor decodes an event descriptor document, keeping the order
// of its data keys.
func DecodeDescriptor(raw []byte) (*EventDescriptor, error) {
	var d EventDescriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: event descriptor: %v", ErrMalformedDocument, err)
	}
	if d.UID == "" {
		return nil, fmt.Errorf("%w: event descriptor without uid", ErrMalformedDocument)
	}
	return &d, nil
}

// EncodeDescriptor renders an event descriptor document.
func EncodeDescriptor(d *EventDescriptor) ([]byte, error) {
	return json.Marshal(d)
}

// EncodeHeader renders a run start document, custom fields included.
func EncodeHeader(h *Header) ([]byte, error) {
	doc := make(map[string]any, len(h.Custom)+9)
	for k, v := range h.Custom {
		doc[k] = v
	}
	doc[FieldUID] = h.UID
	doc[FieldTime] = h.Time
	doc[FieldScanID] = h.ScanID
	doc[FieldOwner] = h.Owner
	doc[FieldBeamlineID] = h.BeamlineID
	doc[FieldGroup] = h.Group
	doc[FieldProject] = h.Project
	if h.Sample != nil {
		doc[FieldSample] = h.Sample
	}
	if h.BeamlineConfig != nil {
		doc[FieldBeamlineConfig] = h.BeamlineConfig
	}
	return json.Marshal(doc)
}
