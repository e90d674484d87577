package generation

import (
	"fmt"
	"strings"

	"github.com/quillcards/quill-api/internal/domain"
)

// noteShapeDescription is the fixed opening of every system prompt: the two
// supported note shapes and their field semantics.
const noteShapeDescription = `You are an expert flashcard author. You produce spaced-repetition flashcards in one of two shapes:

BASIC cards have a "front" (a single focused question or prompt) and a "back" (the answer). Optional fields: "extra" (supporting context shown after the answer), "code" (a relevant code snippet), "timestamp" (a source timestamp such as a lecture position).

CLOZE cards have a single "text" field containing the full statement with deletion markers of the form {{c1::hidden text}} or {{c1::hidden text::hint}}. Each numbered marker is tested independently. Optional fields are the same as for BASIC cards.

Every card carries a "tags" array of short lowercase strings.`

// policyInstructions maps each note-type policy to its fixed instructional
// paragraph.
var policyInstructions = map[domain.NoteTypePolicy]string{
	domain.PolicyAuto: `Choose the note type that best fits each piece of content: BASIC for question-answer facts, CLOZE for statements where hiding a span tests the key knowledge.`,
	domain.PolicyPreferBasic: `Prefer BASIC cards. Use CLOZE only when the content is clearly a single statement whose key spans are best tested by deletion.`,
	domain.PolicyPreferCloze: `Prefer CLOZE cards. Use BASIC only when the content is naturally a question with a distinct answer that deletion markers cannot express.`,
	domain.PolicyBasicOnly: `Produce BASIC cards only. Do not emit any cloze deletion markers.`,
	domain.PolicyClozeOnly: `Produce CLOZE cards only. BASIC cards are forbidden: every card must use the "text" field with at least one {{cN::...}} deletion.`,
}

// categoryGuidance holds the optional category-specific enhancement block
// appended when the classifier identifies the input's domain.
var categoryGuidance = map[Category]string{
	CategoryDSA: `The input is an algorithms / data-structures problem. Favor cards that test the core insight, the time and space complexity, the invariant the algorithm maintains, and the conditions under which the approach applies. Do not create cards that merely restate the problem statement.`,
	CategorySystemDesign: `The input is system-design material. Favor cards about trade-offs (consistency vs. availability, latency vs. throughput), capacity reasoning, and why a component is chosen, not just what it is.`,
	CategoryProgramming: `The input is programming material. Put code in the "code" field, keep prose out of code blocks, and test behavior and semantics rather than syntax trivia.`,
	CategoryLanguage: `The input is language-learning material. Keep one word or phrase per card, include the reading or pronunciation in "extra" when present in the input, and prefer CLOZE for example sentences.`,
}

// responseTemplate is the literal JSON shape the model must reproduce.
const responseTemplate = `Respond with a single JSON object, no surrounding commentary, exactly this shape:
{
  "selectedNoteType": "BASIC" | "CLOZE",
  "cards": [
    {
      "front": "...",
      "back": "...",
      "text": "...",
      "extra": "...",
      "code": "...",
      "timestamp": "...",
      "tags": ["tag1", "tag2"],
      "noteType": "BASIC" | "CLOZE"
    }
  ],
  "notes": "...",
  "deck": "..."
}
Omit optional fields you have no content for. "cards" must contain at least one card.`

// guardrails are the fixed closing directives of every system prompt.
const guardrails = `Rules:
- Never invent facts that are not supported by the input text.
- If you are unsure about a fact, keep the card but say so in "notes" and include the marker NEEDS_REVIEW.
- Do not force-fill optional fields; leave them out when the input gives you nothing for them.
- Each card must test exactly one thing and must be understandable without the other cards.`

// ComposeSystemPrompt assembles the system instruction from the note-shape
// description, the policy block, optional category guidance, the deletion
// cap, the JSON template, and the guardrails, in that fixed order.
// Pure string assembly.
func ComposeSystemPrompt(settings domain.GenerationSettings, category Category) string {
	var b strings.Builder
	b.WriteString(noteShapeDescription)
	b.WriteString("\n\n")

	if instr, ok := policyInstructions[settings.NoteTypePolicy]; ok {
		b.WriteString(instr)
		b.WriteString("\n\n")
	}

	if guidance, ok := categoryGuidance[category]; ok {
		b.WriteString(guidance)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "Use at most %d cloze deletions per card.\n\n", settings.MaxClozeDeletions)

	b.WriteString(responseTemplate)
	b.WriteString("\n\n")
	b.WriteString(guardrails)

	return b.String()
}

// PromptRequest describes what the caller is asking the model to do with
// the input text.
type PromptRequest struct {
	Action domain.Action

	// Text is the raw study text, draft, or existing field content.
	Text string

	// Count is the requested card count for ActionGenerate.
	Count int

	// ConvertTo is the target shape for ActionConvert: "auto", "basic",
	// or "cloze".
	ConvertTo string
}

// ComposeUserPrompt builds the user instruction for the requested action.
func ComposeUserPrompt(req PromptRequest) string {
	switch req.Action {
	case domain.ActionAutocomplete:
		return fmt.Sprintf("Complete this partially written flashcard draft into one finished card:\n\n%s", req.Text)
	case domain.ActionImprove:
		return fmt.Sprintf("Improve the following existing card content. Make each card atomic; split it into multiple cards if it tests more than one thing:\n\n%s", req.Text)
	case domain.ActionConvert:
		target := strings.ToLower(strings.TrimSpace(req.ConvertTo))
		if target == "" {
			target = "auto"
		}
		return fmt.Sprintf("Convert the following card content to the %s note shape, preserving its meaning:\n\n%s", target, req.Text)
	default:
		count := req.Count
		if count < 1 {
			count = 1
		}
		return fmt.Sprintf("Generate %d flashcards from the following text:\n\n%s", count, req.Text)
	}
}

// ComposeMessages builds the full message list for one generation request:
// exactly one system message first, then the user instruction.
func ComposeMessages(req PromptRequest, settings domain.GenerationSettings, category Category) []Message {
	return []Message{
		{Role: RoleSystem, Content: ComposeSystemPrompt(settings, category)},
		{Role: RoleUser, Content: ComposeUserPrompt(req)},
	}
}
