package llm

import "fmt"

func digestPrompt(sourceName, text string) string {
	return fmt.Sprintf(`You are a news editor. Read the source text below and produce a digest of
the distinct news stories it contains.

Respond with ONLY a JSON array. Each element must have exactly these fields:
  "title" (string), "description" (string), "url" (string),
  "source_name" (string), "category" (array of strings),
  "relevance_score" (number between 0 and 1).

Use %q as source_name when the text does not name one. No markdown, no
commentary, no trailing commas.

<<SOURCE>>
%s
<<END>>`, sourceName, text)
}

func summaryPrompt(title, description, sourceName, publicationDate string) string {
	return fmt.Sprintf(`Summarize this article in 2-3 sentences for a general reader.
Respond with ONLY a JSON string containing the summary.

Title: %s
Description: %s
Source: %s
Published: %s`, title, description, sourceName, publicationDate)
}
