package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/pitwall/core"
)

const summaryPromptTemplate = `Summarize the following F1 2025 news article into a concise, factual paragraph.
Focus on key stats, race results, or technical updates.
Output only the summary paragraph, with no preamble.

Title: %s
Snippet: %s`

const answerSystemPromptTemplate = `You are an expert F1 2025 Season Research Assistant.
Answer the user's question using ONLY the provided context entries below.
If the context does not contain the answer, explicitly state that you do not have that information in your database.
Do not hallucinate results that are not in the context.

CONTEXT DATABASE:
%s`

// buildSummaryPrompt renders the summarization prompt for one article.
func buildSummaryPrompt(article core.RawArticle) string {
	return fmt.Sprintf(summaryPromptTemplate,
		collapseWhitespace(article.Title),
		collapseWhitespace(article.Content))
}

// buildAnswerSystemPrompt renders the answering constraint with the context embedded.
func buildAnswerSystemPrompt(entries []*core.KnowledgeEntry) string {
	return fmt.Sprintf(answerSystemPromptTemplate, formatContext(entries))
}

// formatContext renders entries as timestamped, sourced blocks.
func formatContext(entries []*core.KnowledgeEntry) string {
	if len(entries) == 0 {
		return "(no entries)"
	}
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		source := e.Source
		if source == "" {
			source = "unknown"
		}
		blocks = append(blocks, fmt.Sprintf("[%s] Source: %s\nInfo: %s",
			e.Timestamp.UTC().Format(time.RFC3339), source, e.Summary))
	}
	return strings.Join(blocks, "\n\n")
}
