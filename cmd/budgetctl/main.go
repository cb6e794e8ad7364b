// Command budgetctl prints balance summaries, budget status and transaction
// exports from the terminal, reading the same stores as the web app.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetbuddy/internal/backend"
	"budgetbuddy/internal/cli"
	"budgetbuddy/internal/config"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/report"
)

var version = "dev"

// app carries the state shared by subcommands.
type app struct {
	v      *viper.Viper
	logger *log.Logger
	engine *report.Engine
	closer func() error
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "budgetctl",
		Short: "Inspect balances, budgets and exports from the terminal",
		Long: `budgetctl reads a user's account and transaction log from the configured
data backend and prints the same figures as the balance page.

Every flag can also be set through the environment, e.g. BUDGETBUDDY_USER
or BUDGETBUDDY_DATA_BACKEND.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}

	pf := root.PersistentFlags()
	pf.String("user", "", "user whose data to read")
	pf.String("data-backend", "", "data backend (mongo, sqlite, sheets, memory)")
	pf.String("sqlite-db-path", "", "SQLite database path")
	pf.String("mongo-uri", "", "MongoDB connection string")
	pf.String("mongo-database", "", "MongoDB database name")
	pf.String("seed-file", "", "YAML or JSON seed for the memory backend")
	pf.String("log-level", "warn", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlags(pf)

	a.v.SetEnvPrefix("BUDGETBUDDY")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.summaryCmd())
	root.AddCommand(a.budgetCmd())
	root.AddCommand(a.exportCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.logger = newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"))
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// newLogger routes the structured logger through charmbracelet/log so CLI
// diagnostics stay readable on a terminal.
func newLogger(w io.Writer, level string) *log.Logger {
	lvl := log.ParseLevel(level)
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Prefix: "budgetctl",
		Level:  charmlog.Level(lvl),
	})
	return log.New(log.Config{Level: lvl, Component: log.ComponentCLI, Handler: handler})
}

// open connects to the configured backend. Flags and BUDGETBUDDY_* variables
// override the shared environment configuration.
func (a *app) open(cmd *cobra.Command) (*report.Engine, string, error) {
	user := strings.TrimSpace(a.v.GetString("user"))
	if user == "" {
		return nil, "", fmt.Errorf("--user is required")
	}

	cfg := config.Load()
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(a.v.GetString(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.DataBackend, "data-backend")
	override(&cfg.SQLiteDBPath, "sqlite-db-path")
	override(&cfg.MongoURI, "mongo-uri")
	override(&cfg.MongoDatabase, "mongo-database")
	override(&cfg.MemorySeedFile, "seed-file")
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	bc, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, "", err
	}
	res, err := backend.NewFactory(a.logger).CreateBackend(cmd.Context(), bc)
	if err != nil {
		return nil, "", err
	}
	a.closer = res.Close

	a.engine = report.NewEngine(res.Backend, res.Backend,
		report.WithLogger(a.logger.WithComponent(log.ComponentReport)))
	return a.engine, user, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "budgetctl", version)
		},
	}
}
