package model

import (
	"sort"
	"strings"

	"github.com/dbrowse/dbrowse/internal/dao"
)

// LocalStore is the location of channels whose data lives in the event documents.
const LocalStore = "metadatastore"

// Channel table columns.
const (
	ColKeyName = iota
	ColLocation
	ColSource
)

// ChannelTitle is the first row of every channel table.
var ChannelTitle = []string{"KEY NAME", "DATA LOCATION", "PV NAME"}

// collisionSuffix is appended to a key name until it no longer collides.
const collisionSuffix = "_1"

// IndexChannels builds the channel table of a header. Keys are visited in
// descriptor order and, within a descriptor, in document order. Colliding
// names are suffixed, then rows are sorted case-insensitively by name,
// keeping encounter order for equal names.
func IndexChannels(h *dao.Header) ChannelTable {
	var (
		rows [][]string
		seen = make(map[string]struct{})
	)

	if h != nil {
		for _, d := range h.EventDescriptors {
			for pair := d.Keys().Oldest(); pair != nil; pair = pair.Next() {
				name := pair.Key
				for {
					if _, ok := seen[name]; !ok {
						break
					}
					name += collisionSuffix
				}

				location := pair.Value.Location()
				if location == "" {
					location = LocalStore
				}

				rows = append(rows, []string{name, location, pair.Value.Source})
				seen[name] = struct{}{}
			}
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return strings.ToLower(rows[i][ColKeyName]) < strings.ToLower(rows[j][ColKeyName])
	})

	table := make(ChannelTable, 0, len(rows)+1)
	table = append(table, append([]string(nil), ChannelTitle...))
	return append(table, rows...)
}
