// Package cli implements the contextmap command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/the-dev-tools/contextmap/internal/config"
	"github.com/the-dev-tools/contextmap/internal/store"
)

const version = "v0.1.0"

// app holds what every subcommand needs once the root command has run its
// setup.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "contextmap",
		Short: "contextmap edits strategic domain models",
		Long: `contextmap stores context maps (bounded contexts, their relationships, actors,
user needs, flow stages and keyframes) and replays scripted edits against them,
locally or through a collaborative session.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	rootCmd.SilenceUsage = true
	rootCmd.PersistentPreRunE = a.setup
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return a.close()
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/"+config.FileName+".yaml)")
	flags.String("db", "", "path of the project database")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag(config.KeyDBPath, flags.Lookup("db"))
	_ = a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newImportCmd(a),
		newExportCmd(a),
		newShowCmd(a),
		newListCmd(a),
		newReplayCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = cfg.Logger()
	if cfg.File != "" {
		a.logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

// openStore opens the database on first use.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	enc, err := store.ParseEncoding(a.cfg.DBCompression)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", config.KeyDBCompression, err)
	}
	s, err := store.Open(ctx, a.cfg.DBPath, store.WithLogger(a.logger), store.WithEncoding(enc))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.store = s
	return s, nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of contextmap",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "contextmap %s\n", version)
		},
	}
}
