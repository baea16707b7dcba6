package dao

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchUID(t *testing.T) {
	hh := []*Header{{UID: "abc123"}, {UID: "abd456"}, {UID: "ab"}}

	uu := map[string]struct {
		sel string
		e   UID
		ok  bool
	}{
		"exact-beats-prefix": {sel: "ab", e: "ab", ok: true},
		"prefix":             {sel: "abd", e: "abd456", ok: true},
		"first-prefix":       {sel: "a", e: "abc123", ok: true},
		"none":               {sel: "zz"},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			uid, ok := MatchUID(hh, u.sel)
			assert.Equal(t, u.ok, ok)
			assert.Equal(t, u.e, uid)
		})
	}
}
