package dao

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewDocumentCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("csx/run_starts/a.json", []byte("a"))
	c.Set("csx/run_starts/b.json", []byte("b"))

	doc, ok := c.Get("csx/run_starts/a.json")
	assert.True(t, ok)
	assert.Equal(t, []byte("a"), doc)
	assert.Equal(t, 2, c.size())

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("csx/run_starts/a.json")
	assert.False(t, ok, "expired")
	assert.Equal(t, 1, c.size(), "expired entry evicted on get")
}

func TestDocumentCache_SetEvictsExpired(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewDocumentCache(time.Minute)
	c.now = func() time.Time { return now }

	c.Set("csx/run_starts/a.json", []byte("a"))
	c.Set("csx/run_starts/b.json", []byte("b"))

	now = now.Add(2 * time.Minute)
	c.Set("hxn/run_starts/c.json", []byte("c"))

	assert.Equal(t, 1, c.size())
	doc, ok := c.Get("hxn/run_starts/c.json")
	assert.True(t, ok)
	assert.Equal(t, []byte("c"), doc)
}
