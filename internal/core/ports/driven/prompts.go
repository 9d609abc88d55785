package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names fail; missing override files fall back to the built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptQA is the retrieval-augmented answering prompt.
	// The template expects two %s placeholders: the retrieved context, then the question.
	PromptQA = "qa"
)
