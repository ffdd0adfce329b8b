package storage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExportMarkdown renders a turn's transcript as a markdown document.
func ExportMarkdown(t *Turn) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# Turn %s\n\n", t.ID))
	b.WriteString(fmt.Sprintf("- **Created:** %s\n", t.CreatedAt.Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("- **Tool calls:** %d\n", t.ToolCalls))
	b.WriteString(fmt.Sprintf("- **Duration:** %dms\n", t.DurationMS))
	if t.Error != "" {
		b.WriteString(fmt.Sprintf("- **Error:** %s\n", t.Error))
	}
	b.WriteString("\n---\n\n")

	for _, m := range t.Transcript {
		switch m.Role {
		case "system":
			continue
		case "user":
			b.WriteString(fmt.Sprintf("## User\n\n%s\n\n", m.Content))
		case "assistant":
			if m.Content != "" {
				b.WriteString(fmt.Sprintf("## Assistant\n\n%s\n\n", m.Content))
			}
			for _, tc := range m.ToolCalls {
				args, _ := json.Marshal(tc.Args)
				b.WriteString(fmt.Sprintf("**Tool Call:** `%s`\n```json\n%s\n```\n\n", tc.Name, string(args)))
			}
		case "tool":
			b.WriteString(fmt.Sprintf("<details>\n<summary>Tool Result</summary>\n\n```\n%s\n```\n</details>\n\n", m.Content))
		}
	}

	return b.String()
}
