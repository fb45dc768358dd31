package services

import (
	"fmt"
	"strings"

	"cvwizard-backend/domain/resume"
)

// Canned fallback texts returned when the generation service is
// unavailable. The wizard flow never blocks on generation failures;
// these are substituted silently and flagged as not generated.
const (
	fallbackSelfPromotion = "I am a motivated professional who takes ownership of my work and " +
		"collaborates well with others. I bring strong problem-solving skills and a steady " +
		"focus on results, and I am always looking for ways to improve both my own output " +
		"and the way my team works. I would welcome the chance to bring that energy to a new role."

	fallbackSummary = "Experienced professional with a track record of delivering results across " +
		"multiple roles. Skilled at learning quickly, working across teams, and taking on " +
		"increasing responsibility. Looking to apply that experience to new challenges."
)

// buildSelfPromotionPrompt asks for a first-person self-promotion
// statement grounded in the profile's basics and skills.
func buildSelfPromotionPrompt(p *resume.Profile, experiences []resume.Experience, targetRole, tone string) string {
	var b strings.Builder

	b.WriteString("Write a self-promotion statement for a resume, in the first person, ")
	b.WriteString("3 to 5 sentences, plain text without headings.\n")
	if tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", tone)
	}
	if targetRole != "" {
		fmt.Fprintf(&b, "The candidate is applying for a %s position.\n", targetRole)
	}

	b.WriteString("\nCandidate details:\n")
	writeProfileDetails(&b, p, experiences)

	return b.String()
}

// buildSummaryPrompt asks for a third-person career summary built from
// the work history.
func buildSummaryPrompt(p *resume.Profile, experiences []resume.Experience, targetRole, tone string) string {
	var b strings.Builder

	b.WriteString("Write a concise career summary for the top of a resume, ")
	b.WriteString("2 to 4 sentences, plain text without headings.\n")
	if tone != "" {
		fmt.Fprintf(&b, "Tone: %s.\n", tone)
	}
	if targetRole != "" {
		fmt.Fprintf(&b, "Frame it toward a %s position.\n", targetRole)
	}

	b.WriteString("\nCareer details:\n")
	writeProfileDetails(&b, p, experiences)

	return b.String()
}

func writeProfileDetails(b *strings.Builder, p *resume.Profile, experiences []resume.Experience) {
	if p.FullName != "" {
		fmt.Fprintf(b, "- Name: %s\n", p.FullName)
	}
	if p.JobTitle != "" {
		fmt.Fprintf(b, "- Current title: %s\n", p.JobTitle)
	}
	if len(p.Skills) > 0 {
		fmt.Fprintf(b, "- Skills: %s\n", strings.Join(p.Skills, ", "))
	}
	for _, exp := range experiences {
		line := exp.Company
		if exp.Title != "" {
			line = exp.Title + " at " + exp.Company
		}
		if exp.StartDate != "" || exp.EndDate != "" {
			line += fmt.Sprintf(" (%s - %s)", exp.StartDate, exp.EndDate)
		}
		fmt.Fprintf(b, "- Experience: %s\n", line)
		if exp.Description != "" {
			fmt.Fprintf(b, "  %s\n", exp.Description)
		}
	}
}
