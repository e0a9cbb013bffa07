package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillroute/internal/chat"
	"github.com/abhisek/skillroute/internal/pathstore"
	"github.com/abhisek/skillroute/internal/tracker"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the learning assistant a single question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		title, err := pathContext(cmd, env.paths)
		if err != nil {
			return err
		}

		ctx, cancel := env.requestContext(cmd.Context())
		defer cancel()
		fmt.Println(env.assistant().Ask(ctx, strings.Join(args, " "), title))
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive learning assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		title, err := pathContext(cmd, env.paths)
		if err != nil {
			return err
		}
		return chat.Run(cmd.Context(), timeoutAssistant{env}, nil, title)
	},
}

// pathContext resolves --path to the title sent along with questions.
func pathContext(cmd *cobra.Command, st *pathstore.Store) (string, error) {
	id, _ := cmd.Flags().GetString("path")
	if id == "" {
		return "", nil
	}
	p, ok := st.GetByID(cmd.Context(), id)
	if !ok {
		return "", &tracker.NotFoundError{ID: id}
	}
	return p.PathTitle, nil
}

func init() {
	askCmd.Flags().StringP("path", "p", "", "Learning path id to use as context")
	chatCmd.Flags().StringP("path", "p", "", "Learning path id to use as context")
}
