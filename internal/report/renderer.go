package report

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fakeyudi/stride/internal/format"
)

const (
	versionSentinel = "<!-- stride-report-version: 1 -->"
	dataPrefix      = "<!-- stride-data: "
	dataSuffix      = " -->"
)

// Renderer serializes a Report to bytes.
type Renderer interface {
	Render(r *Report) ([]byte, error)
}

// RendererFor returns the renderer for a format name.
func RendererFor(name string) (Renderer, error) {
	switch name {
	case "json":
		return &JSONRenderer{}, nil
	case "markdown", "md", "":
		return &MarkdownRenderer{}, nil
	}
	return nil, fmt.Errorf("unknown report format %q (want json or markdown)", name)
}

// Extension is the file extension used for a format name.
func Extension(name string) string {
	if name == "json" {
		return ".json"
	}
	return ".md"
}

// JSONRenderer renders a Report as indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(rep *Report) ([]byte, error) {
	return json.MarshalIndent(rep, "", "  ")
}

// MarkdownRenderer renders a Report as human-readable Markdown with an
// embedded base64 JSON payload for lossless round-trip parsing.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(rep *Report) ([]byte, error) {
	jsonBytes, err := json.Marshal(rep)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	encoded := base64.StdEncoding.EncodeToString(jsonBytes)

	var sb strings.Builder
	sb.WriteString(versionSentinel + "\n")
	fmt.Fprintf(&sb, "%s%s%s\n\n", dataPrefix, encoded, dataSuffix)

	units := rep.Run.Units
	fmt.Fprintf(&sb, "# Run: %s\n\n", rep.Run.StartedAt.Format("2006-01-02 15:04 MST"))

	sb.WriteString("## Summary\n\n")
	fmt.Fprintf(&sb, "- Distance: %s\n", format.Distance(rep.Run.DistanceKm, units))
	fmt.Fprintf(&sb, "- Duration: %s\n", format.Duration(rep.Run.ActiveDurationSeconds))
	fmt.Fprintf(&sb, "- Pace: %s\n", format.PaceIn(rep.Run.PaceMinPerKm, units))
	fmt.Fprintf(&sb, "- Calories: %s\n", format.Calories(rep.Run.CaloriesKcal))
	if rep.Run.Runner != "" {
		fmt.Fprintf(&sb, "- Runner: %s\n", rep.Run.Runner)
	}
	sb.WriteString("\n")

	sb.WriteString("## Splits\n\n")
	if len(rep.Splits) == 0 {
		sb.WriteString("_No full kilometre recorded._\n")
	} else {
		sb.WriteString("| Km | Time | Pace |\n")
		sb.WriteString("|----|------|------|\n")
		for _, s := range rep.Splits {
			fmt.Fprintf(&sb, "| %d | %s | %s |\n", s.Km, format.Duration(s.DurationSeconds), format.Pace(s.PaceMinPerKm))
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Pauses\n\n")
	if len(rep.Pauses) == 0 {
		sb.WriteString("_No pauses._\n")
	} else {
		for _, p := range rep.Pauses {
			end := "open"
			if p.EndedAt != nil {
				end = p.EndedAt.Format("15:04:05")
			}
			fmt.Fprintf(&sb, "- %s to %s\n", p.StartedAt.Format("15:04:05"), end)
		}
	}
	sb.WriteString("\n")

	sb.WriteString("## Samples\n\n")
	fmt.Fprintf(&sb, "%d location samples recorded.\n", len(rep.Samples))

	return []byte(sb.String()), nil
}
