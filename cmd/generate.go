package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillroute/internal/pathgen"
	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/tracker"
	"github.com/abhisek/skillroute/internal/ui/components"
	"github.com/abhisek/skillroute/internal/ui/theme"
)

const renderWidth = 80

// errResumeFileType rejects anything but a plain-text resume.
var errResumeFileType = errors.New("Invalid file type. Please upload a .txt file.")

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and save a new learning path",
	RunE: func(cmd *cobra.Command, args []string) error {
		skills, _ := cmd.Flags().GetString("skills")
		goal, _ := cmd.Flags().GetString("goal")
		summary, _ := cmd.Flags().GetString("summary")
		resumeFile, _ := cmd.Flags().GetString("resume-file")

		input := paths.Input{
			CurrentSkills:      skills,
			TargetGoal:         goal,
			PerformanceSummary: summary,
		}
		if resumeFile != "" {
			text, err := readResumeFile(resumeFile)
			if err != nil {
				return err
			}
			input.ResumeText = text
		}
		if err := input.Clean().Validate(); err != nil {
			return fmt.Errorf("invalid input: %w", err)
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, cancel := env.requestContext(cmd.Context())
		defer cancel()

		fmt.Fprintln(os.Stderr, theme.Hint.Render("Generating your learning path..."))
		sess, err := tracker.Create(ctx, env.generator(), env.paths, input, env.sessionOpts()...)
		if err != nil {
			return describeGenerationError(err)
		}

		fmt.Println(components.RenderPath(sess.Path(), renderWidth))
		return nil
	},
}

// readResumeFile loads a .txt resume. Other extensions are rejected before
// the file is read.
func readResumeFile(path string) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".txt") {
		return "", errResumeFileType
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume: %w", err)
	}
	return string(b), nil
}

// describeGenerationError prefixes the failure with its placeholder title.
func describeGenerationError(err error) error {
	var gerr *pathgen.Error
	if errors.As(err, &gerr) {
		return fmt.Errorf("%s: %w", gerr.Title, err)
	}
	var rej *paths.RejectedError
	if errors.As(err, &rej) || errors.Is(err, paths.ErrEmptyPath) {
		return fmt.Errorf("%s: %w", pathgen.TitleInsufficient, err)
	}
	return err
}

func init() {
	generateCmd.Flags().StringP("skills", "s", "", "Your current skills (required)")
	generateCmd.Flags().StringP("goal", "g", "", "Your target role or goal (required)")
	generateCmd.Flags().String("summary", "", "Optional performance review summary")
	generateCmd.Flags().String("resume-file", "", "Optional resume as a .txt file")
}
