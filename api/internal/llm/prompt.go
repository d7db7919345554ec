package llm

const (
	SystemPrompt = `You are an expert mathematics tutor. Solve the problem shown in the image step by step.
Separate every step with a blank line and put the final answer alone in the last paragraph.`

	UserPrompt = "Please solve this math problem."

	// Sampling parameters shared by every engine.
	MaxTokens   = 1000
	Temperature = 0.3
)

func DataURL(mime, b64 string) string {
	return "data:" + mime + ";base64," + b64
}
