package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clausegen/internal/clauses"
	"clausegen/internal/config"
	"clausegen/internal/logging"
	"clausegen/internal/lower"
	"clausegen/internal/programdb"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	programPath string
	storeName   string

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "clausegen",
	Short: "Program clause synthesis for a trait solver",
	Long: `clausegen lowers a declarative program (traits, impls, ADTs, fn items and
closures) and synthesizes the Horn-clause program clauses a resolution
solver needs to prove a goal.

Programs are read from a YAML file or from the sqlite program store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if programPath != "" {
			cfg.Program.Path = programPath
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return err
		}
		logging.Get(logger, cfg.Logging, logging.CategoryBoot).Debug("config loaded",
			zap.String("config", configPath),
			zap.String("program", cfg.Program.Path))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file")
	rootCmd.PersistentFlags().StringVarP(&programPath, "program", "p", "", "Program YAML file (default from config)")
	rootCmd.PersistentFlags().StringVar(&storeName, "from-store", "", "Load the named program from the program store instead of YAML")

	goalCmd.Flags().StringSliceVarP(&goalEnv, "env", "e", nil, "Where-clause added to the environment (repeatable)")
	goalCmd.Flags().BoolVar(&showCategories, "categories", false, "Tag each clause with the builder that produced it")
	dumpCmd.Flags().BoolVar(&showCategories, "categories", false, "Tag each clause with the builder that produced it")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Print Datalog instead of writing files")

	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(programsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error:"), err)
		os.Exit(1)
	}
}

// categoryLogger returns the named logger for cat.
func categoryLogger(cat logging.Category) *zap.Logger {
	if cfg == nil {
		return zap.NewNop()
	}
	return logging.Get(logger, cfg.Logging, cat)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadSource reads the program from the store when --from-store is set and
// from the YAML file otherwise. origin describes where it came from.
func loadSource(ctx context.Context) (src *programdb.Source, origin string, err error) {
	if storeName == "" {
		src, err = programdb.LoadYAML(cfg.Program.Path)
		return src, cfg.Program.Path, err
	}

	store, err := programdb.OpenStore(cfg.Program.StorePath)
	if err != nil {
		return nil, "", err
	}
	defer store.Close()

	src, err = store.Load(ctx, storeName)
	return src, "store:" + storeName, err
}

// loadProgram loads and lowers the configured program.
func loadProgram(ctx context.Context) (*lower.Lowered, error) {
	log := categoryLogger(logging.CategoryLower)
	timer := logging.StartTimer(log, "load program")
	defer timer.Stop()

	src, origin, err := loadSource(ctx)
	if err != nil {
		return nil, err
	}
	lw, err := lower.Lower(src)
	if err != nil {
		return nil, fmt.Errorf("failed to lower %s: %w", origin, err)
	}

	st := lw.Program.Stats()
	log.Info("program loaded",
		zap.String("source", origin),
		zap.Int("traits", st.Traits),
		zap.Int("impls", st.Impls),
		zap.Int("adts", st.Adts),
		zap.Int("fn_defs", st.FnDefs),
		zap.Int("closures", st.Closures),
		zap.Int("goals", len(lw.Goals)))
	return lw, nil
}

func newSynthesizer(p *programdb.Program) *clauses.Synthesizer {
	return clauses.New(p,
		clauses.WithLogger(categoryLogger(logging.CategorySynth)),
		clauses.WithWorkers(cfg.Synthesis.Workers))
}

// batchRequests turns the program's named goals into batch requests,
// restricted to names when given.
func batchRequests(lw *lower.Lowered, names []string) ([]clauses.Request, error) {
	if len(names) == 0 {
		reqs := make([]clauses.Request, len(lw.Goals))
		for i, g := range lw.Goals {
			reqs[i] = clauses.Request{Name: g.Name, Goal: g.Goal, Env: g.Env}
		}
		return reqs, nil
	}

	reqs := make([]clauses.Request, 0, len(names))
	for _, name := range names {
		g, ok := lw.LookupGoal(name)
		if !ok {
			return nil, fmt.Errorf("no goal named %q", name)
		}
		reqs = append(reqs, clauses.Request{Name: g.Name, Goal: g.Goal, Env: g.Env})
	}
	return reqs, nil
}

// synthesizeAll runs the batch under the configured timeout.
func synthesizeAll(ctx context.Context, lw *lower.Lowered, names []string) ([]clauses.Result, error) {
	reqs, err := batchRequests(lw, names)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.GetTimeout())
	defer cancel()

	results, err := newSynthesizer(lw.Program).SynthesizeBatch(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("batch synthesis failed: %w", err)
	}
	return results, nil
}
