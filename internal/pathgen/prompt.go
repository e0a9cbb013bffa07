package pathgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/skillroute/internal/paths"
)

// ResumeLimit is the number of resume characters included in the prompt.
const ResumeLimit = 4000

const resumeTruncatedNote = "[Resume truncated for brevity]"

// InsufficientInfoMessage is the refusal the model is told to emit.
const InsufficientInfoMessage = "Insufficient information provided. Please provide more details about your current skills and target role to generate a path."

func buildPrompt(input paths.Input) string {
	var b strings.Builder

	b.WriteString(`You are an expert career coach and learning path designer.
Given the user's current skills, target role, performance summary, and optionally their resume text, generate a personalized learning path.

User Input:
`)
	b.WriteString(fmt.Sprintf("Current Skills/Role: %s\n", input.CurrentSkills))
	b.WriteString(fmt.Sprintf("Target Role/Goal: %s\n", input.TargetGoal))
	b.WriteString(fmt.Sprintf("Performance Summary/Struggles: %s\n", input.PerformanceSummary))

	if resume := strings.TrimSpace(input.ResumeText); resume != "" {
		b.WriteString("\nUser's Resume Information (for additional context on existing skills and experience):\n---\n")
		b.WriteString(truncateResume(resume))
		b.WriteString("\n---\nWhen analyzing current skills, consider the information from this resume.\n")
	}

	b.WriteString(`
Output Requirements:
Provide a step-by-step learning path.
The path should be broken down into logical phases (e.g., "Month 1: Foundations", "Month 2: Core Skills", "Month 3: Advanced Topics & Projects").
Each phase should have a "phaseTitle".
Each phase should contain an array of "steps".
Each step must include:
1. "id": A unique string identifier for the step (e.g., "python_fundamentals_week1_2"). Use underscores and keep it concise.
2. "title": A concise title (e.g., "Master Python Fundamentals").
3. "description": A brief description of the step's objective and what to learn (2-3 sentences).
4. "resources": An array of strings, listing recommended resources (e.g., "Online Course: Coursera's Python for Everybody", "Book: 'Automate the Boring Stuff with Python'", "Tool: Jupyter Notebooks"). Be specific with resource names if possible. Include a mix of resource types.
5. "duration": An estimated duration or timeframe (e.g., "Weeks 1-2", "15 days", "Approx. 20 hours").

The skills should build upon each other logically.
Identify key skill gaps based on ALL provided input (including resume if available) and prioritize them in the path.
The "pathTitle" should be engaging and reflect the user's target goal.

Return ONLY the JSON object as specified below, without any surrounding text or markdown.

JSON Output Structure:
`)
	b.WriteString(fmt.Sprintf(`{
  "pathTitle": "Personalized Learning Path to Become a %s",
  "phases": [
    {
      "phaseTitle": "Phase 1: Example Phase Title (e.g., Days 1-30: Foundational Skills)",
      "steps": [
        {
          "id": "example_step_id_1",
          "title": "Example Step Title",
          "description": "Example step description focusing on core concepts.",
          "resources": ["Example Resource 1 (e.g., Specific Online Course)", "Book: Example Book Title"],
          "duration": "Example Duration (e.g., Weeks 1-2)"
        }
      ]
    }
  ]
}
Aim for 2-4 phases.
`, input.TargetGoal))

	b.WriteString(fmt.Sprintf(`
If the user's input (excluding resume, which is optional) is too vague or doesn't provide enough information in 'currentSkills' and 'targetGoal' to create a meaningful path, respond with this JSON object:
{
  "error": "%s",
  "pathTitle": "%s",
  "phases": []
}
`, InsufficientInfoMessage, TitleInsufficient))

	return b.String()
}

func truncateResume(resume string) string {
	r := []rune(resume)
	if len(r) <= ResumeLimit {
		return resume
	}
	return string(r[:ResumeLimit]) + "\n" + resumeTruncatedNote
}
