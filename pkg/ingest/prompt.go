package ingest

import "strings"

// SummarizePrompt asks the generator for a plain text summary of content.
func SummarizePrompt(content string) string {
	var b strings.Builder
	b.WriteString("BEGIN CONTENT TO SUMMARIZE:\n")
	b.WriteString(content)
	b.WriteString("\nEND CONTENT TO SUMMARIZE.\n\n")
	b.WriteString("Summarize the content in 'CONTENT TO SUMMARIZE', identifying main points.\n")
	b.WriteString("Do not incorporate other general knowledge.\n")
	b.WriteString("Summary is in plain text, in complete sentences, with no markup or tags.\n\n")
	b.WriteString("BEGIN SUMMARY:\n")
	return b.String()
}
