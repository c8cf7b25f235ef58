package chat

import (
	"fmt"
	"strings"

	"github.com/medivise/medivise/internal/core"
)

const qaSystemPrompt = `You are a friendly AI health assistant.
Write responses in 3-6 short sentences.
Use a warm, conversational tone.
Avoid over-formality; be approachable and empathetic.

You answer health questions based ONLY on provided document context.

CRITICAL RULES:
- Answer ONLY based on information in the provided context snippets
- If insufficient context, say: "I don't have enough information in your uploaded documents to answer this question accurately."
- Always include citations when quoting or referencing information
- Use format: "According to [citation], [information]"
- Be precise and medically accurate

CITATION FORMAT:
- Use the exact citations provided with the snippets`

func buildQAPrompt(question string, history []core.Message, snippets []core.Snippet) string {
	var sb strings.Builder

	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, msg := range history {
			fmt.Fprintf(&sb, "%s: %s\n", msg.Role, msg.Content)
		}
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "Question: %s\n", question)

	if len(snippets) > 0 {
		sb.WriteString("\nContext snippets from your documents (each with citation):\n")
		for _, snip := range snippets {
			fmt.Fprintf(&sb, "[%s] %s\n", snip.Citation, snip.Text)
		}
	}

	sb.WriteString(`
Instructions:
- Answer based ONLY on the provided context
- Include citations when referencing information
- If the answer is not in the snippets, say: "Not enough evidence in your documents" and suggest where to look
- Be helpful but medically responsible`)

	return sb.String()
}
