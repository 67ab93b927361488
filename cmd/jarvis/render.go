package main

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/execution"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/history"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/insight"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/lexicon"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/pipeline"
)

const renderWidth = 80

// Palette from the VS Code dark theme.
var (
	colorPrimary   = lipgloss.Color("#007acc")
	colorSecondary = lipgloss.Color("#9cdcfe")
	colorSuccess   = lipgloss.Color("#4ec9b0")
	colorWarning   = lipgloss.Color("#dcdcaa")
	colorError     = lipgloss.Color("#f48771")
	colorMuted     = lipgloss.Color("#6a737d")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary).MarginTop(1)
	labelStyle   = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
	valueStyle   = lipgloss.NewStyle()
	okStyle      = lipgloss.NewStyle().Foreground(colorSuccess)
	warnStyle    = lipgloss.NewStyle().Foreground(colorWarning)
	errStyle     = lipgloss.NewStyle().Foreground(colorError)
	cardStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), valueStyle.Render(value))
}

func confidenceText(interp *pipeline.Interpretation) string {
	text := fmt.Sprintf("%.2f", interp.Action.Confidence)
	switch {
	case interp.Fallback():
		return errStyle.Render(text)
	case interp.Confident:
		return okStyle.Render(text)
	default:
		return warnStyle.Render(text + " (low)")
	}
}

// renderAction renders the action card for one interpretation.
func renderAction(interp *pipeline.Interpretation) string {
	a := interp.Action
	lines := []string{
		titleStyle.Render(a.ActionType),
		row("Service", a.ServiceName),
		row("Test type", a.TestType),
		row("Priority", a.Priority),
		row("Duration", a.EstimatedDuration),
		row("Confidence", confidenceText(interp)),
		row("Summary", a.Description),
	}
	if len(a.Parameters) > 0 {
		lines = append(lines, row("Parameters", formatParams(a.Parameters)))
	}
	for _, f := range interp.Failures {
		lines = append(lines, errStyle.Render("! "+f))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderExplain renders every stage of an interpretation.
func renderExplain(interp *pipeline.Interpretation) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render("Input") + "\n")
	b.WriteString(row("Original", fmt.Sprintf("%q", interp.Input)) + "\n")
	b.WriteString(row("Normalized", fmt.Sprintf("%q", interp.Normalized)) + "\n")
	if len(interp.SpecialTokens) > 0 {
		b.WriteString(row("Special", strings.Join(interp.SpecialTokens, " ")) + "\n")
	}

	b.WriteString(headingStyle.Render("Entities") + "\n")
	if interp.Entities.Total() == 0 {
		b.WriteString(row("", "none") + "\n")
	}
	for _, cat := range lexicon.Categories() {
		entities := interp.Entities.Get(cat)
		if len(entities) == 0 {
			continue
		}
		parts := make([]string, 0, len(entities))
		for _, e := range entities {
			parts = append(parts, fmt.Sprintf("%s (%.2f)", e.Value, e.Confidence))
		}
		b.WriteString(row(string(cat), strings.Join(parts, ", ")) + "\n")
	}

	b.WriteString(headingStyle.Render("Intent") + "\n")
	b.WriteString(row("Type", string(interp.Intent.Type)) + "\n")
	b.WriteString(row("Confidence", fmt.Sprintf("%.4f", interp.Intent.Confidence)) + "\n")
	intents := slices.Collect(maps.Keys(interp.Intent.Scores))
	sort.Slice(intents, func(i, j int) bool {
		si, sj := interp.Intent.Scores[intents[i]], interp.Intent.Scores[intents[j]]
		if si != sj {
			return si > sj
		}
		return intents[i] < intents[j]
	})
	for _, it := range intents {
		b.WriteString(row("", fmt.Sprintf("%-18s %.4f", it, interp.Intent.Scores[it])) + "\n")
	}

	ctx := interp.Enrichment.Context
	b.WriteString(headingStyle.Render("Context") + "\n")
	b.WriteString(row("Scope", string(ctx.Scope)) + "\n")
	b.WriteString(row("Strategy", string(ctx.Strategy)) + "\n")
	b.WriteString(row("Risk", ctx.Risk.String()) + "\n")
	b.WriteString(row("Timing", string(ctx.Timing)) + "\n")
	if len(interp.Enrichment.AffectedServices) > 0 {
		b.WriteString(row("Affected", strings.Join(interp.Enrichment.AffectedServices, ", ")) + "\n")
	}
	for _, s := range interp.Enrichment.Suggestions {
		b.WriteString(row("", "- "+s) + "\n")
	}

	b.WriteString(headingStyle.Render("Action") + "\n")
	b.WriteString(renderAction(interp) + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(colorMuted).Render(fmt.Sprintf("interpreted in %s", interp.Duration)))

	return b.String()
}

// renderInsight renders the insight text as markdown, or its error.
func renderInsight(res *insight.Result) string {
	if res.Err != nil || res.Error != "" {
		return warnStyle.Render("insight unavailable: " + res.Error)
	}
	return headingStyle.Render("Insight") + "\n" + renderMarkdown(res.Text, renderWidth)
}

// renderMarkdown renders markdown with glamour, falling back to plain
// text when the renderer fails.
func renderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n")
}

// renderPlan renders a dry-run plan as a numbered list.
func renderPlan(plan *execution.Plan) string {
	lines := []string{titleStyle.Render("Dry-run plan " + plan.ID)}
	for _, s := range plan.Steps {
		marker := " "
		if s.Critical {
			marker = "*"
		}
		lines = append(lines, fmt.Sprintf("%2d.%s %-10s %s", s.Order, marker, s.Kind, s.Description))
	}
	return strings.Join(lines, "\n")
}

// renderHistory renders history entries as a table.
func renderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return "No interpretations recorded."
	}
	header := lipgloss.NewStyle().Bold(true).Render(
		fmt.Sprintf("%-19s  %-22s  %-20s  %5s  %s", "TIME", "ACTION", "SERVICE", "CONF", "INPUT"))
	lines := []string{header}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%-19s  %-22s  %-20s  %5.2f  %s",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.ActionType, e.ServiceName, e.Confidence, truncate(e.Input, 40)))
	}
	return strings.Join(lines, "\n")
}

// renderSummary renders history statistics.
func renderSummary(sum history.Summary) string {
	lines := []string{
		titleStyle.Render("History"),
		row("Total", fmt.Sprintf("%d", sum.Total)),
		row("Confident", fmt.Sprintf("%d", sum.Confident)),
		row("Fallbacks", fmt.Sprintf("%d", sum.Fallbacks)),
		row("Avg conf", fmt.Sprintf("%.2f", sum.AverageConfidence)),
	}
	if len(sum.ByIntent) > 0 {
		lines = append(lines, headingStyle.Render("By intent"))
		for _, ic := range sum.ByIntent {
			lines = append(lines, fmt.Sprintf("  %-18s %5d  avg %.2f", ic.Intent, ic.Count, ic.AverageConfidence))
		}
	}
	return strings.Join(lines, "\n")
}

func formatParams(params map[string]any) string {
	keys := slices.Sorted(maps.Keys(params))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, params[k]))
	}
	return strings.Join(parts, " ")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
