package ai

import "github.com/pkoukk/tiktoken-go"

// EstimatePromptTokens counts prompt-side tokens locally. Used as a
// best-effort tokensUsed fallback when a stream terminates without a usage
// report. Returns 0 when no encoding is available.
func EstimatePromptTokens(model, instructions, prompt string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0
		}
	}
	return len(enc.Encode(instructions, nil, nil)) + len(enc.Encode(prompt, nil, nil))
}
