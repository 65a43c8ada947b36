package information

import (
	"fmt"
	"strings"

	"alpha/internal/adapters/sources"
)

const classifySystemPrompt = `You are an information curation assistant. ` +
	`You classify articles and score their relevance to a user's interests. ` +
	`Reply with JSON only.`

func classifyPrompt(item sources.Item, interests []string) string {
	description := item.Description
	if description == "" {
		description = "none"
	}
	return fmt.Sprintf(`Analyze the following article against the user's interests.

User interests: %s

Title: %s
Description: %s
Source: %s

Return a JSON object with exactly these fields:
{
  "category": "ai_breakthrough" | "productivity_tool" | "investment" | "other",
  "relevanceScore": a number between 0.0 and 1.0 measuring fit to the user's interests,
  "reason": "a short classification rationale"
}

Return only the JSON, nothing else.`,
		strings.Join(interests, ", "), item.Title, description, item.Source)
}

func digestPrompt(articleList string) string {
	return fmt.Sprintf(`Write a concise daily digest (at most 300 words) based on the articles below.
Emphasize the most important stories and trends.

Articles:
%s
Provide:
1. Today's highlights (3-5 key points)
2. Trend analysis
3. Investment opportunities (if any)`, articleList)
}
