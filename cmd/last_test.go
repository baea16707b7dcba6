package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/dbrowse/dbrowse/internal/model"
)

func newLastFixture(t *testing.T, n int) ([]*dao.Header, *dao.MemoryBroker, *model.Browser) {
	t.Helper()

	hh := dao.DemoHeaders(n, time.Now())
	m := dao.NewMemoryBroker(&mds.StoreConfig{
		Name:     "lab",
		Backend:  mds.BackendDemo,
		Database: "mds",
		Host:     "db.lab:5432",
	}, hh...)
	b := model.NewBrowser(m)
	b.SetLogger(zerolog.Nop())

	return hh, m, b
}

func TestPrintLast(t *testing.T) {
	hh, _, b := newLastFixture(t, 5)

	var buf bytes.Buffer
	require.NoError(t, printLast(context.Background(), &buf, b, "lab", 3, ""))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[active] Requested: 3. Found: 3\n"), out)
	assert.Contains(t, out, "UID")
	assert.Contains(t, out, "KEY NAME")
	for _, h := range hh[2:] {
		assert.Contains(t, out, h.UID.Short())
	}
	assert.NotContains(t, out, string(hh[0].UID))

	newest := hh[4]
	assert.Equal(t, newest.UID, b.Selected())
	assert.Contains(t, out, "# "+string(newest.UID))
	assert.Contains(t, out, "scan_id: 1004")
	assert.Contains(t, out, "fccd_image")
	assert.Contains(t, out, "temp_1")

	uidAt := strings.Index(out, "uid: ")
	scanAt := strings.Index(out, "scan_id: ")
	planAt := strings.Index(out, "plan_name: ")
	assert.Less(t, uidAt, scanAt)
	assert.Less(t, scanAt, planAt)
}

func TestPrintLast_Selection(t *testing.T) {
	hh, _, b := newLastFixture(t, 5)

	var buf bytes.Buffer
	require.NoError(t, printLast(context.Background(), &buf, b, "lab", 5, hh[1].UID.Short()))
	assert.Equal(t, hh[1].UID, b.Selected())

	buf.Reset()
	err := printLast(context.Background(), &buf, b, "lab", 2, hh[1].UID.Short())
	assert.ErrorIs(t, err, model.ErrUnknownDataset)
}

func TestPrintLast_SelectionExactBeatsPrefix(t *testing.T) {
	hh := dao.DemoHeaders(3, time.Now())
	newer := hh[2]
	newer.UID = hh[1].UID + "ff"
	for _, d := range newer.EventDescriptors {
		d.RunStart = newer.UID
	}
	m := dao.NewMemoryBroker(&mds.StoreConfig{Name: "lab", Backend: mds.BackendDemo}, hh...)
	b := model.NewBrowser(m)
	b.SetLogger(zerolog.Nop())

	var buf bytes.Buffer
	require.NoError(t, printLast(context.Background(), &buf, b, "lab", 3, string(hh[1].UID)))
	assert.Equal(t, hh[1].UID, b.Selected())
}

func TestPrintLast_Unavailable(t *testing.T) {
	_, m, b := newLastFixture(t, 5)
	m.Fail(mds.KindUnavailable)

	var buf bytes.Buffer
	err := printLast(context.Background(), &buf, b, "lab", 3, "")
	assert.ErrorIs(t, err, errInactive)
	assert.Equal(t, "[inactive] Database [[mds]] not available on [[db.lab:5432]]\n", buf.String())
}

func TestPrintLast_InvalidCount(t *testing.T) {
	_, m, b := newLastFixture(t, 5)

	var buf bytes.Buffer
	err := printLast(context.Background(), &buf, b, "lab", 0, "")
	assert.ErrorIs(t, err, model.ErrInvalidCount)
	assert.Empty(t, buf.String())
	assert.Zero(t, m.Calls())
}

func TestVersionCmd(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "dbrowse version 0.1.0 (dev)\n", buf.String())
}

func TestBackendFlagUsage(t *testing.T) {
	f := rootCmd.PersistentFlags().Lookup("backend")
	require.NotNil(t, f)
	assert.Equal(t, "Store backend (demo, postgres, s3, sqlite)", f.Usage)
}
