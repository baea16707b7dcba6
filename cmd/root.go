package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dbrowse/dbrowse/internal/config"
	"github.com/dbrowse/dbrowse/internal/config/data"
	"github.com/dbrowse/dbrowse/internal/dao"
	"github.com/dbrowse/dbrowse/internal/logger"
	"github.com/dbrowse/dbrowse/internal/mds"
	"github.com/dbrowse/dbrowse/internal/view"
)

const appName = config.AppName

var (
	version = "0.1.0"
	commit  = "dev"

	dbFlags *data.Flags
	rootCmd = &cobra.Command{
		Use:   appName,
		Short: "A terminal browser for experiment metadata stores",
		Long: `dbrowse shows the most recent runs recorded in a metadata store,
with the summary and channels of the selected run.`,
		SilenceUsage: true,
		RunE:         run,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s)\n", appName, version, commit)
		},
	}
)

func init() {
	dbFlags = config.NewFlags()
	initFlags()
	rootCmd.AddCommand(versionCmd, newLastCmd())
}

func initFlags() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(dbFlags.Num, "num", "n", 0, "Number of most recent runs to retrieve")
	pf.StringVar(dbFlags.Store, "store", "", "Store profile to use")
	pf.StringVar(dbFlags.Backend, "backend", "", "Store backend ("+backendNames()+")")
	pf.StringVar(dbFlags.Database, "database", "", "Store database, sqlite file or s3 bucket")
	pf.StringVar(dbFlags.Host, "host", "", "Store host")
	pf.StringVarP(dbFlags.LogLevel, "logLevel", "l", "", "Log level (debug, info, warn, error)")
	pf.StringVar(dbFlags.LogFile, "logFile", "", "Log file path")
	pf.BoolVar(dbFlags.Demo, "demo", false, "Browse an in-memory demo store")
	pf.StringVar(dbFlags.Select, "select", "", "Run uid, or uid prefix, to select after the first retrieval")
	rootCmd.Flags().BoolVar(dbFlags.Headless, "headless", false, "Print the last runs instead of starting the UI")
}

// backendNames lists the backends a broker is registered for.
func backendNames() string {
	bb := dao.ListBrokers()
	names := make([]string, 0, len(bb))
	for _, b := range bb {
		names = append(names, string(b))
	}
	return strings.Join(names, ", ")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// session holds what both the UI and headless commands need.
type session struct {
	cfg     *config.Config
	client  *mds.APIClient
	factory *dao.StoreFactory
	closeFn func()
}

func (s *session) Close() {
	if s.client != nil {
		s.client.Close()
	}
	if s.closeFn != nil {
		s.closeFn()
	}
}

// newSession resolves locations, configuration and the store connection.
func newSession(console bool) (*session, error) {
	if err := config.InitLocs(); err != nil {
		return nil, fmt.Errorf("failed to initialize locations: %w", err)
	}

	settings, err := mds.NewProfileManager(config.AppStoresFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load store profiles: %w", err)
	}

	cfg := config.NewConfig(settings)
	if err := cfg.Load(config.AppConfigFile, false); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Refine(dbFlags, settings); err != nil {
		return nil, fmt.Errorf("failed to refine configuration: %w", err)
	}

	s := &session{cfg: cfg}
	if console {
		logger.SetupConsole(cfg.Dbrowse.LogLevel())
	} else {
		logFile := cfg.Dbrowse.LogFile()
		if err := config.InitLogLoc(logFile); err != nil {
			return nil, fmt.Errorf("failed to initialize log location: %w", err)
		}
		if s.closeFn, err = logger.Setup(cfg.Dbrowse.LogLevel(), logFile); err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	store := cfg.StoreConfig()
	if _, err := settings.GetStore(store.Name); err != nil {
		settings.Add(store)
	}
	if s.client, err = mds.NewAPIClient(settings, store, log.Logger); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}
	s.factory = dao.NewFactory(s.client)

	log.Info().
		Str("store", store.Name).
		Str("backend", string(store.Backend)).
		Int("count", cfg.RetrievalCount()).
		Msg("dbrowse starting")

	return s, nil
}

func run(cmd *cobra.Command, args []string) error {
	if config.IsBoolSet(dbFlags.Headless) {
		return runLast(cmd, args)
	}

	s, err := newSession(false)
	if err != nil {
		return err
	}
	defer s.Close()

	app := view.NewApp(s.cfg, s.factory, version)
	if err := app.Init(); err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return app.Run()
}
