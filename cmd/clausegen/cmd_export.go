package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clausegen/internal/logging"
	"clausegen/internal/mangle"
)

var exportStdout bool

// exportCmd renders clause sets as Datalog
var exportCmd = &cobra.Command{
	Use:   "export [goal...]",
	Short: "Export synthesized clauses as Datalog",
	Long: `Synthesizes clauses for the declared goals and renders each clause set as
Datalog text, one <goal>.mg file per goal in the export directory, next to
schema.mg declaring the predicates.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	log := categoryLogger(logging.CategoryExport)

	lw, err := loadProgram(ctx)
	if err != nil {
		return err
	}
	results, err := synthesizeAll(ctx, lw, args)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !exportStdout {
		if err := os.MkdirAll(cfg.Export.Dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
		schemaPath := filepath.Join(cfg.Export.Dir, "schema.mg")
		if err := os.WriteFile(schemaPath, []byte(mangle.Schema), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", schemaPath, err)
		}
	}

	for _, r := range results {
		if r.Clauses.Floundered {
			log.Warn("skipping floundered goal", zap.String("request_id", r.ID), zap.String("goal", r.Name))
			fmt.Fprintf(out, "%s %s (floundered)\n", errorStyle.Render("skipped"), r.Name)
			continue
		}
		text, err := mangle.Render(r.Clauses.ProgramClauses())
		if err != nil {
			return fmt.Errorf("goal %s: %w", r.Name, err)
		}

		if exportStdout {
			fmt.Fprintf(out, "# %s\n%s\n", r.Name, text)
			continue
		}

		path := filepath.Join(cfg.Export.Dir, r.Name+".mg")
		if err := os.WriteFile(path, []byte(text), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		log.Debug("exported goal",
			zap.String("request_id", r.ID),
			zap.String("goal", r.Name),
			zap.Int("clauses", r.Clauses.Len()),
			zap.String("path", path))
		fmt.Fprintf(out, "%s %s (%d clauses)\n", okStyle.Render("wrote"), path, r.Clauses.Len())
	}
	return nil
}
