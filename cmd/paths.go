package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillroute/internal/tracker"
	"github.com/abhisek/skillroute/internal/ui/components"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "List, show, update and delete saved learning paths",
}

var pathsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved learning paths, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		all := env.paths.ListNewestFirst(cmd.Context())
		if len(all) == 0 {
			fmt.Println("No saved learning paths. Create one with `skillroute generate`.")
			return nil
		}
		for i := range all {
			fmt.Println(components.RenderPathSummary(&all[i]))
		}
		return nil
	},
}

var pathsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a learning path with its progress and journal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		sess, err := tracker.Open(cmd.Context(), env.paths, args[0], env.sessionOpts()...)
		if err != nil {
			return err
		}
		fmt.Println(components.RenderPath(sess.Path(), renderWidth))
		return nil
	},
}

var pathsToggleCmd = &cobra.Command{
	Use:   "toggle <id> <phase> <step>",
	Short: "Flip the completion of a step (zero-based phase and step indexes)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		phase, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid phase index %q: %w", args[1], err)
		}
		step, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("invalid step index %q: %w", args[2], err)
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		sess, err := tracker.Open(ctx, env.paths, args[0], env.sessionOpts()...)
		if err != nil {
			return err
		}
		completed := !stepCompleted(sess, phase, step)
		if cmd.Flags().Changed("done") {
			completed, _ = cmd.Flags().GetBool("done")
		}
		if err := sess.ToggleStep(ctx, phase, step, completed); err != nil {
			return err
		}

		mark := "pending"
		if completed {
			mark = "completed"
		}
		fmt.Printf("Step %d.%d marked %s. Progress: %d%%\n", phase, step, mark, sess.Progress())
		return nil
	},
}

var pathsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a learning path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		sess, err := tracker.Open(ctx, env.paths, args[0], env.sessionOpts()...)
		if err != nil {
			return err
		}
		title := sess.Path().PathTitle
		if err := sess.DeletePath(ctx, confirmer(yes, os.Stdin, os.Stdout)); err != nil {
			return err
		}
		fmt.Printf("Deleted %q.\n", title)
		return nil
	},
}

// stepCompleted reports the current state of a step; out-of-range indexes
// read as false and are rejected by ToggleStep.
func stepCompleted(sess *tracker.Session, phase, step int) bool {
	p := sess.Path()
	if phase < 0 || phase >= len(p.Phases) {
		return false
	}
	steps := p.Phases[phase].Steps
	if step < 0 || step >= len(steps) {
		return false
	}
	return steps[step].Completed
}

// confirmer approves without asking when yes is set and otherwise asks on
// in, accepting "y" or "yes".
func confirmer(yes bool, in io.Reader, out io.Writer) tracker.Confirmer {
	return tracker.ConfirmFunc(func(prompt string) bool {
		if yes {
			return true
		}
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func init() {
	pathsToggleCmd.Flags().Bool("done", false, "Set the completion explicitly instead of flipping it")
	pathsDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	pathsCmd.AddCommand(pathsListCmd)
	pathsCmd.AddCommand(pathsShowCmd)
	pathsCmd.AddCommand(pathsToggleCmd)
	pathsCmd.AddCommand(pathsDeleteCmd)
}
