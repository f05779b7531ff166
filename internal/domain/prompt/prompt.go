// Package prompt renders the fixed prompts sent to the generation provider.
package prompt

import (
	"fmt"
	"strings"
)

// ContextSeparator joins retrieved chunk texts inside the context block.
const ContextSeparator = "\n\n"

const answerTemplate = `You are a helpful assistant answering questions about a video.
Answer ONLY from the transcript context below. If the context is insufficient, say that you don't know.

Context:
%s

Question: %s`

const notesTemplate = `You are given the transcript of a video.
Write concise study notes in Markdown: short sections with headings and bullet points
covering every important idea, definition and example. Do not invent facts.

Transcript:
%s`

const topicsTemplate = `You are given the transcript of a video.
List the %d most important topics discussed, one per line, most important first.
Output only the topic names.

Transcript:
%s`

// Context joins texts in the given order into one context block.
func Context(texts []string) string {
	return strings.Join(texts, ContextSeparator)
}

// Answer builds the retrieval-augmented answering prompt.
func Answer(context, question string) string {
	return fmt.Sprintf(answerTemplate, context, question)
}

// Notes builds the study-notes prompt.
func Notes(transcript string) string {
	return fmt.Sprintf(notesTemplate, transcript)
}

// Topics builds the key-topics prompt.
func Topics(transcript string, n int) string {
	return fmt.Sprintf(topicsTemplate, n, transcript)
}
