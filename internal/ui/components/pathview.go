package components

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/ui/theme"
)

// RenderPath renders a learning path for the terminal: title, progress bar,
// phases with numbered steps, resources and the journal.
func RenderPath(p *paths.LearningPath, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	b.WriteString(theme.Title.Render(p.PathTitle))
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("id %s · created %s · updated %s",
		p.ID, formatMillis(p.CreatedAt), formatMillis(p.UpdatedAt))))
	b.WriteString("\n\n")

	done, total := p.StepCounts()
	b.WriteString(NewProgressBar("Progress", p.Progress(), true, width).View())
	b.WriteString("\n")
	b.WriteString(theme.Hint.Render(fmt.Sprintf("%d of %d steps completed", done, total)))
	b.WriteString("\n")

	for pi, ph := range p.Phases {
		b.WriteString("\n")
		b.WriteString(theme.Subtitle.Render(fmt.Sprintf("Phase %d: %s", pi+1, ph.PhaseTitle)))
		b.WriteString("\n")
		for si, st := range ph.Steps {
			b.WriteString(renderStep(pi, si, st, width))
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Journal"))
	b.WriteString("\n")
	if len(p.JournalEntries) == 0 {
		b.WriteString(theme.Hint.Render("No journal entries yet."))
		b.WriteString("\n")
	}
	for _, e := range p.JournalEntries {
		b.WriteString(theme.Body.Render(fmt.Sprintf("%s  %s", e.Date, e.Title)))
		b.WriteString(theme.Hint.Render("  (" + e.ID + ")"))
		b.WriteString("\n")
		if e.Notes != "" {
			b.WriteString(lipgloss.NewStyle().PaddingLeft(4).Width(width).Render(e.Notes))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func renderStep(pi, si int, st paths.Step, width int) string {
	var b strings.Builder

	mark := theme.Pending.Render("[ ]")
	title := theme.Body.Render(st.Title)
	if st.Completed {
		mark = theme.Done.Render("[✓]")
		title = theme.Done.Render(st.Title)
	}
	fmt.Fprintf(&b, "  %s %s %s", mark, theme.Hint.Render(fmt.Sprintf("%d.%d", pi, si)), title)
	if st.Duration != "" {
		b.WriteString(theme.Hint.Render("  · " + st.Duration))
	}
	b.WriteString("\n")

	indent := lipgloss.NewStyle().PaddingLeft(8).Width(width)
	if st.Description != "" {
		b.WriteString(indent.Render(st.Description))
		b.WriteString("\n")
	}
	// Resources are never wrapped so URLs stay intact.
	for _, r := range st.Resources {
		fmt.Fprintf(&b, "%s- %s\n", strings.Repeat(" ", 8), theme.Link.Render(r))
	}
	return b.String()
}

// RenderPathSummary renders one line for a saved-path listing.
func RenderPathSummary(p *paths.LearningPath) string {
	done, total := p.StepCounts()
	return fmt.Sprintf("%s  %s  %s",
		theme.Body.Bold(true).Render(p.PathTitle),
		theme.Hint.Render(fmt.Sprintf("%d%% (%d/%d) · created %s", p.Progress(), done, total, formatMillis(p.CreatedAt))),
		theme.Hint.Render(p.ID),
	)
}

func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}
