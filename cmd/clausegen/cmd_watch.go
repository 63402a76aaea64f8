package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clausegen/internal/logging"
	"clausegen/internal/watch"
)

// watchCmd resynthesizes on every program change
var watchCmd = &cobra.Command{
	Use:   "watch [goal...]",
	Short: "Resynthesize declared goals whenever the program file changes",
	Long: `Loads the program, synthesizes the declared goals, and repeats every time
the program file is saved. Lowering errors are reported and the previous
result stays on screen until the file is fixed.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	if storeName != "" {
		return errors.New("watch needs a program file, not --from-store")
	}

	ctx, cancel := context.WithCancel(commandContext(cmd))
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	log := categoryLogger(logging.CategoryWatch)

	resynthesize(ctx, out, args)

	w, err := watch.New([]string{cfg.Program.Path}, cfg.GetDebounce(), func(ctx context.Context, path string) {
		log.Info("program changed", zap.String("path", path))
		resynthesize(ctx, out, args)
	}, log)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	<-w.Done()
	return nil
}

// resynthesize reloads the program and prints a one-line summary per goal.
// Failures are printed, not returned, so watching continues.
func resynthesize(ctx context.Context, out io.Writer, names []string) {
	lw, err := loadProgram(ctx)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("error:"), err)
		return
	}
	results, err := synthesizeAll(ctx, lw, names)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("error:"), err)
		return
	}

	printHeading(out, cfg.Program.Path)
	for _, r := range results {
		fmt.Fprintf(out, "  %-24s %s\n", r.Name, labelStyle.Render(fmt.Sprintf("%d clauses in %s", r.Clauses.Len(), r.Elapsed)))
	}
}
