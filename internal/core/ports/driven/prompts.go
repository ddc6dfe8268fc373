package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from user-editable files or embed
// them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name. If no
	// customised prompt exists, implementations fall back to the
	// built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access. Useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswerSystem is the system prompt for grounded question
	// answering. The template expects a %s placeholder where the
	// retrieved document context is inserted.
	PromptAnswerSystem = "answer_system"
)
