package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillroute/internal/tracker"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Record progress notes on a learning path",
}

var journalAddCmd = &cobra.Command{
	Use:   "add <path-id>",
	Short: "Add a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, _ := cmd.Flags().GetString("date")
		title, _ := cmd.Flags().GetString("title")
		notes, _ := cmd.Flags().GetString("notes")

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
		entry, err := sess.AddJournalEntry(ctx, date, title, notes)
		if err != nil {
			return err
		}
		fmt.Printf("Added journal entry %s (%s).\n", entry.ID, entry.Date)
		return nil
	},
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <path-id> <entry-id>",
	Short: "Delete a journal entry",
	Args:  cobra.ExactArgs(2),
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
		if err := sess.DeleteJournalEntry(ctx, args[1], confirmer(yes, os.Stdin, os.Stdout)); err != nil {
			return err
		}
		fmt.Println("Journal entry deleted.")
		return nil
	},
}

func init() {
	journalAddCmd.Flags().String("date", time.Now().Format("2006-01-02"), "Entry date (YYYY-MM-DD)")
	journalAddCmd.Flags().StringP("title", "t", "", "Entry title (required)")
	journalAddCmd.Flags().StringP("notes", "n", "", "Entry notes")
	journalDeleteCmd.Flags().BoolP("yes", "y", false, "Delete without asking for confirmation")

	journalCmd.AddCommand(journalAddCmd)
	journalCmd.AddCommand(journalDeleteCmd)
}
