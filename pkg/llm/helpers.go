package llm

import (
	"fmt"
	"strings"
)

const briefSystemPrompt = `You are a financial news editor. Given recent news items for one stock ticker, write an executive brief.

Rules for the paragraph:
- Single paragraph, concise and neutral
- Summarizing what moved or may move this ticker

Rules for bullets:
- 3 to 5 bullet points
- Each bullet covers a distinct event or theme
- Include numbers, dates, and percentages where relevant
- One sentence per bullet

Output as JSON only, no other text:
{
  "paragraph": "executive brief paragraph",
  "bullets": ["key event 1", "key event 2", "key event 3"]
}`

const maxSnippetChars = 200

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func formatItemsForBrief(ticker string, items []BriefInput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Ticker: %s\n\n", ticker))
	for i, item := range items {
		sb.WriteString(fmt.Sprintf("[%d] Headline: %s\n", i+1, item.Headline))
		if item.Snippet != "" {
			sb.WriteString(fmt.Sprintf("    Snippet: %s\n", truncate(item.Snippet, maxSnippetChars)))
		}
		if item.Domain != "" {
			sb.WriteString(fmt.Sprintf("    Domain: %s\n", item.Domain))
		}
		if !item.PublishedAt.IsZero() {
			sb.WriteString(fmt.Sprintf("    Published: %s\n", item.PublishedAt.Format("2006-01-02 15:04")))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	// Some model responses include extra prose around JSON.
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		content = content[start : end+1]
	}
	return content
}
