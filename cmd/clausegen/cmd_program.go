package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"clausegen/internal/logging"
	"clausegen/internal/lower"
	"clausegen/internal/programdb"
)

// dumpCmd prints the program summary and the clauses of every named goal
var dumpCmd = &cobra.Command{
	Use:   "dump [goal...]",
	Short: "Synthesize clauses for every declared goal",
	Long: `Prints a summary of the lowered program, then synthesizes clauses for the
declared goals (all of them, or the ones named) concurrently.`,
	RunE: runDump,
}

// importCmd saves a YAML program into the program store
var importCmd = &cobra.Command{
	Use:   "import [file] [name]",
	Short: "Import a YAML program into the program store",
	Long: `Validates a YAML program by lowering it and saves it into the sqlite
program store. The name defaults to the file name without extension.
Load it later with --from-store <name>.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

// programsCmd lists the programs in the store
var programsCmd = &cobra.Command{
	Use:   "programs",
	Short: "List programs in the program store",
	Args:  cobra.NoArgs,
	RunE:  runPrograms,
}

func runDump(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	lw, err := loadProgram(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSummary(cmd, lw)

	results, err := synthesizeAll(ctx, lw, args)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Fprintln(out)
		printHeading(out, r.Name)
		if g, ok := lw.LookupGoal(r.Name); ok {
			fmt.Fprintf(out, "%s %s\n", labelStyle.Render("goal:"), g.Goal)
		}
		printClauses(out, r.Clauses, showCategories)
	}
	return nil
}

func printSummary(cmd *cobra.Command, lw *lower.Lowered) {
	out := cmd.OutOrStdout()
	st := lw.Program.Stats()

	printHeading(out, "Program")
	fmt.Fprintf(out, "  traits:   %d\n", st.Traits)
	fmt.Fprintf(out, "  impls:    %d\n", st.Impls)
	fmt.Fprintf(out, "  adts:     %d\n", st.Adts)
	fmt.Fprintf(out, "  fns:      %d\n", st.FnDefs)
	fmt.Fprintf(out, "  closures: %d\n", st.Closures)

	var auto []string
	for _, id := range lw.Program.AutoTraits() {
		auto = append(auto, string(id))
	}
	if len(auto) > 0 {
		fmt.Fprintf(out, "  %s %s\n", labelStyle.Render("auto traits:"), strings.Join(auto, ", "))
	}

	for _, id := range lw.Program.SortedFnDefs() {
		fn, _ := lw.Program.FnDefDatum(id)
		params := make([]string, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.String()
		}
		fmt.Fprintf(out, "  fn %s(%s) -> %s\n", id, strings.Join(params, ", "), fn.Return)
	}
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	log := categoryLogger(logging.CategoryStore)

	path := args[0]
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(args) == 2 {
		name = args[1]
	}

	src, err := programdb.LoadYAML(path)
	if err != nil {
		return err
	}
	if _, err := lower.Lower(src); err != nil {
		return fmt.Errorf("refusing to import %s: %w", path, err)
	}

	store, err := programdb.OpenStore(cfg.Program.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(ctx, name, src); err != nil {
		return err
	}
	log.Info("program imported", zap.String("name", name), zap.String("store", store.Path()))
	fmt.Fprintf(cmd.OutOrStdout(), "%s imported %s as %q\n", okStyle.Render("ok"), path, name)
	return nil
}

func runPrograms(cmd *cobra.Command, args []string) error {
	store, err := programdb.OpenStore(cfg.Program.StorePath)
	if err != nil {
		return err
	}
	defer store.Close()

	names, err := store.Programs(commandContext(cmd))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, labelStyle.Render("no programs stored"))
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}
