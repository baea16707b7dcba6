package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"
	"github.com/mattn/go-runewidth"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ToAge renders a time relative to now, e.g. "3 hours ago".
func ToAge(t time.Time) string {
	if t.IsZero() {
		return UnknownValue
	}
	return humanize.Time(t)
}

// Missing returns MissingValue if string is empty
func Missing(s string) string {
	if s == "" {
		return MissingValue
	}
	return s
}

// NA returns NAValue if string is empty
func NA(s string) string {
	if s == "" {
		return NAValue
	}
	return s
}

// Truncate shortens s to at most width display cells, marking the cut.
func Truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "...")
}

// AsCount formats a count (0 shows as "0")
func AsCount(n int) string {
	return strconv.Itoa(n)
}

// FormatValue renders a decoded document value for display.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return MissingValue
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return humanize.Ftoa(t)
	default:
		raw, err := json.Marshal(t)
		if err != nil {
			return UnknownValue
		}
		return strings.TrimSpace(string(raw))
	}
}

// FormatEpoch renders a unix timestamp in seconds as local time with its age.
func FormatEpoch(sec float64) string {
	if sec <= 0 {
		return UnknownValue
	}
	t := time.Unix(0, int64(sec*float64(time.Second)))
	return t.Format(SummaryTimeFmt) + " (" + humanize.Time(t) + ")"
}
