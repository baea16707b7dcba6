package view

import (
	"strings"
	"testing"
	"time"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func demoHeader(t *testing.T) *dao.Header {
	t.Helper()
	hh := dao.DemoHeaders(1, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	require.Len(t, hh, 1)
	return hh[0]
}

func TestDocument(t *testing.T) {
	h := demoHeader(t)

	doc, err := Document(h)
	require.NoError(t, err)

	assert.Equal(t, string(h.UID), doc[dao.FieldUID])
	assert.Equal(t, "xf23id", doc[dao.FieldOwner])
	assert.Equal(t, "count", doc["plan_name"])
	assert.Contains(t, doc, dao.FieldSample)

	descs, ok := doc[dao.FieldEventDescriptors].([]map[string]any)
	require.True(t, ok)
	require.Len(t, descs, 2)
	assert.Equal(t, "primary", descs[0]["name"])
	assert.Equal(t, h.UID, descs[0]["run_start"])

	_, err = Document(nil)
	assert.Error(t, err)
}

func TestDocument_YAMLKeepsKeyOrder(t *testing.T) {
	doc, err := Document(demoHeader(t))
	require.NoError(t, err)

	raw, err := yaml.Marshal(doc)
	require.NoError(t, err)

	out := string(raw)
	order := []string{"sclr_ch2:", "Temperature:", "fccd_image:", "temp:"}
	last := -1
	for _, k := range order {
		idx := strings.Index(out, k)
		require.Greater(t, idx, last, k)
		last = idx
	}
	assert.Contains(t, out, "FILESTORE:/GPFS/xf23id/")
}

func TestDescribe_Formats(t *testing.T) {
	d := NewDescribe(demoHeader(t))
	require.NoError(t, d.Init())
	assert.Equal(t, FormatYAML, d.Format())
	assert.Contains(t, d.GetText(true), "beamline_id:")

	d.formatCmd(FormatJSON)(nil)
	assert.Equal(t, FormatJSON, d.Format())
	assert.Contains(t, d.GetText(true), `"beamline_id": "CSX"`)

	var back bool
	d.SetBackFn(func() { back = true })
	d.backCmd(nil)
	assert.True(t, back)
}

func TestHighlightYAML(t *testing.T) {
	uu := map[string]struct {
		in, out string
	}{
		"key": {
			in:  "owner: xf23id\n",
			out: "[aqua::]owner:[-::] xf23id\n",
		},
		"number": {
			in:  "  scan_id: 1000\n",
			out: "  [aqua::]scan_id:[-::] [fuchsia::]1000[-::]\n",
		},
		"null": {
			in:  "external: null\n",
			out: "[aqua::]external:[-::] [gray::]null[-::]\n",
		},
		"list": {
			in:  "- name: primary\n",
			out: "- [aqua::]name:[-::] primary\n",
		},
		"nested": {
			in:  "sample:\n",
			out: "[aqua::]sample:[-::]\n",
		},
		"plain": {
			in:  "  - 1024\n",
			out: "  - 1024\n",
		},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			assert.Equal(t, u.out, highlightYAML(u.in))
		})
	}
}
