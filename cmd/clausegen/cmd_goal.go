package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"clausegen/internal/ir"
	"clausegen/internal/lower"
)

var (
	goalEnv        []string
	showCategories bool
)

// goalCmd synthesizes clauses for one goal
var goalCmd = &cobra.Command{
	Use:   "goal [name | goal]",
	Short: "Synthesize program clauses for a goal",
	Long: `Synthesizes the program clauses relevant to one goal.

The argument is either the name of a goal declared in the program or a goal
written in surface syntax, for example:

  clausegen goal vec_clone
  clausegen goal "Implemented(!T: PartialEq)" --env "!T: Eq"`,
	Args: cobra.ExactArgs(1),
	RunE: runGoal,
}

// envCmd prints an elaborated environment
var envCmd = &cobra.Command{
	Use:   "env [name | where-clause...]",
	Short: "Print the clauses of an elaborated environment",
	Long: `Elaborates an environment to its supertrait closure and prints the
resulting Implemented and FromEnv clauses. The arguments are where-clauses,
or the name of a declared goal whose environment should be used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEnv,
}

func runGoal(cmd *cobra.Command, args []string) error {
	lw, err := loadProgram(commandContext(cmd))
	if err != nil {
		return err
	}

	goal, env, err := resolveGoal(lw, args[0], goalEnv)
	if err != nil {
		return err
	}

	set := newSynthesizer(lw.Program).ProgramClausesForGoal(goal, env)

	out := cmd.OutOrStdout()
	printHeading(out, goal.String())
	if len(env.Clauses) > 0 {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("env:"), env)
	}
	printClauses(out, set, showCategories)
	return nil
}

// resolveGoal looks arg up as a named goal, falling back to parsing it.
func resolveGoal(lw *lower.Lowered, arg string, env []string) (ir.DomainGoal, ir.Environment, error) {
	if named, ok := lw.LookupGoal(arg); ok {
		if len(env) > 0 {
			return nil, ir.Environment{}, errors.New("--env cannot be combined with a named goal")
		}
		return named.Goal, named.Env, nil
	}

	goal, environment, err := lw.LowerGoal(arg, env)
	if err != nil {
		return nil, ir.Environment{}, fmt.Errorf("invalid goal %q: %w", arg, err)
	}
	return goal, environment, nil
}

func runEnv(cmd *cobra.Command, args []string) error {
	lw, err := loadProgram(commandContext(cmd))
	if err != nil {
		return err
	}

	var env ir.Environment
	if named, ok := lw.LookupGoal(args[0]); ok && len(args) == 1 {
		env = named.Env
	} else {
		env, err = lw.LowerEnv(args)
		if err != nil {
			return fmt.Errorf("invalid environment: %w", err)
		}
	}

	set := newSynthesizer(lw.Program).ProgramClausesForEnv(env)

	out := cmd.OutOrStdout()
	printHeading(out, env.String())
	printClauses(out, set, false)
	return nil
}
