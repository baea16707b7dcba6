package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dbrowse/dbrowse/internal/config"
	"github.com/dbrowse/dbrowse/internal/config/data"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(t *testing.T) *mds.ProfileManager {
	t.Helper()
	pm, err := mds.NewProfileManager("")
	require.NoError(t, err)
	pm.Add(&mds.StoreConfig{Name: "lab", Backend: mds.BackendPostgres, Database: "mds", Host: "db.lab:5432"})
	pm.Add(&mds.StoreConfig{Name: "archive", Backend: mds.BackendS3, Database: "runs", Region: "us-west-2"})
	return pm
}

func newConfig(t *testing.T, settings mds.ProfileSettings) *config.Config {
	t.Helper()
	cfg := config.NewConfig(settings)
	cfg.Dbrowse.SetDir(data.NewDirAt(t.TempDir()))
	return cfg
}

func TestConfigLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbrowse.yaml")

	cfg := newConfig(t, nil)
	require.NoError(t, cfg.Load(path, false))
	assert.Equal(t, config.DefaultNumToRetrieve, cfg.Dbrowse.NumToRetrieve)
	assert.Error(t, cfg.Load(path, true))

	raw := "dbrowse:\n  numToRetrieve: 25\n  apiTimeout: 5s\n  defaultStore: archive\n  logger:\n    level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0600))
	require.NoError(t, cfg.Load(path, true))

	assert.Equal(t, 25, cfg.Dbrowse.NumToRetrieve)
	assert.Equal(t, "archive", cfg.Dbrowse.DefaultStore)
	assert.Equal(t, "debug", cfg.Dbrowse.LogLevel())
	d, err := cfg.Dbrowse.GetAPITimeout()
	require.NoError(t, err)
	assert.Equal(t, "5s", d.String())
}

func TestConfigLoad_Validates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbrowse.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dbrowse:\n  numToRetrieve: -3\n"), 0600))

	cfg := newConfig(t, nil)
	require.NoError(t, cfg.Load(path, true))
	assert.Equal(t, config.DefaultNumToRetrieve, cfg.Dbrowse.NumToRetrieve)
	assert.Equal(t, config.DefaultAPITimeout.String(), cfg.Dbrowse.APITimeout)
	assert.Equal(t, data.DefaultLogLevel, cfg.Dbrowse.LogLevel())
}

func TestConfigSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dbrowse.yaml")
	cfg := newConfig(t, nil)
	cfg.Dbrowse.NumToRetrieve = 7

	require.NoError(t, cfg.Save(path, false))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, cfg.Save(path, true))
	other := newConfig(t, nil)
	require.NoError(t, other.Load(path, true))
	assert.Equal(t, 7, other.Dbrowse.NumToRetrieve)
}

func TestRefine_Demo(t *testing.T) {
	flags := data.NewFlags()
	*flags.Demo = true

	cfg := newConfig(t, newSettings(t))
	require.NoError(t, cfg.Refine(flags, nil))

	store := cfg.StoreConfig()
	assert.Equal(t, config.DemoStore, store.Name)
	assert.Equal(t, mds.BackendDemo, store.Backend)
	assert.Equal(t, config.DemoStore, cfg.Dbrowse.ActiveStore())
	assert.Equal(t, config.DefaultNumToRetrieve, cfg.RetrievalCount())
}

func TestRefine_StorePrecedence(t *testing.T) {
	uu := map[string]struct {
		flagStore, defaultStore string
		e                       string
	}{
		"profile-default": {e: "lab"},
		"config-default":  {defaultStore: "archive", e: "archive"},
		"flag":            {flagStore: "lab", defaultStore: "archive", e: "lab"},
	}

	for k := range uu {
		u := uu[k]
		t.Run(k, func(t *testing.T) {
			flags := data.NewFlags()
			*flags.Store = u.flagStore

			cfg := newConfig(t, newSettings(t))
			cfg.Dbrowse.DefaultStore = u.defaultStore
			require.NoError(t, cfg.Refine(flags, nil))
			assert.Equal(t, u.e, cfg.StoreConfig().Name)
		})
	}
}

func TestRefine_Overrides(t *testing.T) {
	t.Setenv(mds.EnvDatabase, "from-env")
	t.Setenv(mds.EnvHost, "env-host:5432")

	flags := data.NewFlags()
	*flags.Store = "lab"
	*flags.Host = "flag-host:6543"

	cfg := newConfig(t, newSettings(t))
	require.NoError(t, cfg.Refine(flags, nil))

	store := cfg.StoreConfig()
	assert.Equal(t, "from-env", store.Database)
	assert.Equal(t, "flag-host:6543", store.Host)
	assert.Equal(t, mds.BackendPostgres, store.Backend)
}

func TestRefine_Adhoc(t *testing.T) {
	flags := data.NewFlags()
	*flags.Backend = "sqlite"
	*flags.Host = "/data/mds.db"

	cfg := newConfig(t, nil)
	require.NoError(t, cfg.Refine(flags, nil))

	store := cfg.StoreConfig()
	assert.Equal(t, config.AdhocStore, store.Name)
	assert.Equal(t, mds.BackendSQLite, store.Backend)
	assert.Equal(t, "/data/mds.db", store.Host)
}

func TestRefine_Errors(t *testing.T) {
	cfg := newConfig(t, nil)
	assert.Error(t, cfg.Refine(data.NewFlags(), nil))

	flags := data.NewFlags()
	*flags.Store = "missing"
	cfg = newConfig(t, newSettings(t))
	assert.ErrorIs(t, cfg.Refine(flags, nil), mds.ErrUnknownStore)

	flags = data.NewFlags()
	*flags.Backend = "mongo"
	cfg = newConfig(t, nil)
	assert.ErrorIs(t, cfg.Refine(flags, nil), mds.ErrUnknownBackend)
}

func TestRefine_CountPrecedence(t *testing.T) {
	dir := data.NewDirAt(t.TempDir())
	saved := data.NewConfig(data.NewStoreContext("lab"))
	saved.GetContext().SetCount(42)
	require.NoError(t, dir.Save(saved))

	cfg := config.NewConfig(newSettings(t))
	cfg.Dbrowse.SetDir(dir)
	require.NoError(t, cfg.Refine(data.NewFlags(), nil))
	assert.Equal(t, 42, cfg.RetrievalCount())

	flags := data.NewFlags()
	*flags.Num = 3
	cfg = config.NewConfig(newSettings(t))
	cfg.Dbrowse.SetDir(dir)
	require.NoError(t, cfg.Refine(flags, nil))
	assert.Equal(t, 3, cfg.RetrievalCount())
	assert.Equal(t, 3, cfg.Dbrowse.NumToRetrieve)
}

func TestRefine_SelectionPrecedence(t *testing.T) {
	dir := data.NewDirAt(t.TempDir())
	saved := data.NewConfig(data.NewStoreContext("lab"))
	saved.GetContext().SetSelection("9f3c")
	require.NoError(t, dir.Save(saved))

	cfg := config.NewConfig(newSettings(t))
	cfg.Dbrowse.SetDir(dir)
	require.NoError(t, cfg.Refine(data.NewFlags(), nil))
	assert.Equal(t, "9f3c", cfg.Selection())

	flags := data.NewFlags()
	*flags.Select = "a1b2"
	cfg = config.NewConfig(newSettings(t))
	cfg.Dbrowse.SetDir(dir)
	require.NoError(t, cfg.Refine(flags, nil))
	assert.Equal(t, "a1b2", cfg.Selection())
}

func TestDbrowse_SaveContext(t *testing.T) {
	dir := data.NewDirAt(t.TempDir())
	d := config.NewDbrowse()
	d.SetDir(dir)
	require.NoError(t, d.SaveContext())

	ctx, err := d.ActivateStore("lab")
	require.NoError(t, err)
	ctx.SetCount(12)
	ctx.SetSelection("abc")
	require.NoError(t, d.SaveContext())

	loaded, err := dir.Load("lab")
	require.NoError(t, err)
	assert.Equal(t, 12, loaded.GetContext().Count())
	assert.Equal(t, "abc", loaded.GetContext().Selection())
}

func TestDbrowse_LogFile(t *testing.T) {
	d := config.NewDbrowse()
	assert.Equal(t, config.AppLogFile, d.LogFile())

	flags := data.NewFlags()
	*flags.LogFile = "/tmp/x.log"
	*flags.LogLevel = "warn"
	d.Override(flags)
	assert.Equal(t, "/tmp/x.log", d.LogFile())
	assert.Equal(t, "warn", d.LogLevel())
}
