// Package paths holds the learning path data model, its normalization from
// a raw model response and the computed progress.
package paths

import (
	"fmt"
	"math"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// StorageKey is the single key under which all paths are persisted.
const StorageKey = "skillRouteLearningPaths"

// DefaultTitle is used when neither the model nor the input yields a title.
const DefaultTitle = "My Learning Path"

// Input is what the user submits to generate a path.
type Input struct {
	CurrentSkills      string `json:"currentSkills"`
	TargetGoal         string `json:"targetGoal"`
	PerformanceSummary string `json:"performanceSummary"`
	ResumeText         string `json:"resumeText,omitempty"`
}

// Clean trims every field. A whitespace-only resume is dropped entirely.
func (in Input) Clean() Input {
	return Input{
		CurrentSkills:      strings.TrimSpace(in.CurrentSkills),
		TargetGoal:         strings.TrimSpace(in.TargetGoal),
		PerformanceSummary: strings.TrimSpace(in.PerformanceSummary),
		ResumeText:         strings.TrimSpace(in.ResumeText),
	}
}

// Validate requires the skills and goal fields, which the submission form
// marks as mandatory. Call it on a cleaned Input.
func (in Input) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CurrentSkills, validation.Required),
		validation.Field(&in.TargetGoal, validation.Required),
	)
}

// Step is a single actionable learning unit. Completed is the only field
// mutated after creation.
type Step struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Resources   []string `json:"resources"`
	Duration    string   `json:"duration"`
	Completed   bool     `json:"completed"`
}

// Phase is a named, ordered grouping of steps.
type Phase struct {
	PhaseTitle string `json:"phaseTitle"`
	Steps      []Step `json:"steps"`
}

// JournalEntry is a dated progress note attached to a path.
type JournalEntry struct {
	ID    string `json:"id"`
	Date  string `json:"date"`
	Title string `json:"title"`
	Notes string `json:"notes"`
}

// LearningPath is the canonical, client-owned curriculum.
type LearningPath struct {
	ID             string         `json:"id"`
	PathTitle      string         `json:"pathTitle"`
	Phases         []Phase        `json:"phases"`
	CreatedAt      int64          `json:"createdAt"`
	UpdatedAt      int64          `json:"updatedAt"`
	JournalEntries []JournalEntry `json:"journalEntries"`
}

// Clone returns a deep copy so mutations never alias the original.
func (p *LearningPath) Clone() *LearningPath {
	if p == nil {
		return nil
	}
	out := *p
	out.Phases = make([]Phase, len(p.Phases))
	for i, ph := range p.Phases {
		steps := make([]Step, len(ph.Steps))
		for j, st := range ph.Steps {
			st.Resources = append([]string{}, st.Resources...)
			steps[j] = st
		}
		out.Phases[i] = Phase{PhaseTitle: ph.PhaseTitle, Steps: steps}
	}
	out.JournalEntries = append([]JournalEntry{}, p.JournalEntries...)
	return &out
}

// StepCounts returns the number of completed steps and the total.
func (p *LearningPath) StepCounts() (done, total int) {
	for _, ph := range p.Phases {
		for _, st := range ph.Steps {
			total++
			if st.Completed {
				done++
			}
		}
	}
	return done, total
}

// Progress is the rounded percentage of completed steps, 0 when the path
// has no steps.
func (p *LearningPath) Progress() int {
	done, total := p.StepCounts()
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) * 100 / float64(total)))
}

// Touch sets UpdatedAt to now, or to one past the previous value when the
// clock has not advanced.
func (p *LearningPath) Touch(now time.Time) {
	ms := now.UnixMilli()
	if ms <= p.UpdatedAt {
		ms = p.UpdatedAt + 1
	}
	p.UpdatedAt = ms
}

// NewPathID returns an id of the form path-<ms>-<random>.
func NewPathID(now time.Time) string {
	return fmt.Sprintf("path-%d-%s", now.UnixMilli(), randomSuffix())
}

// NewJournalID returns an id of the form journal-<ms>-<random>.
func NewJournalID(now time.Time) string {
	return fmt.Sprintf("journal-%d-%s", now.UnixMilli(), randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
