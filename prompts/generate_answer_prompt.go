package prompts

import (
	"context"

	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/ai-synapse/ocr-core/llm"
)

// GenerateAnswer asks the model to answer the question from the numbered
// context passages only, citing passages by their number.
func GenerateAnswer(ctx context.Context, client llm.LLMClient, question, contextBlock string) <-chan async.Result[string] {
	return async.Go(func() (string, error) {
		systemPrompt, err := loadPrompt("templates/generate_answer_system.md", map[string]string{})
		if err != nil {
			return "", err
		}

		userPrompt, err := loadPrompt("templates/generate_answer_user.md", map[string]string{
			"QUESTION":      question,
			"CONTEXT_BLOCK": contextBlock,
		})
		if err != nil {
			return "", err
		}

		messages := []llm.Message{
			{
				Role:    "user",
				Content: userPrompt,
			},
		}

		var response string
		err = client.GenerateInference(ctx, messages, func(chunk string) error {
			response += chunk
			return nil
		}, llm.WithMaxTokens(2000),
			llm.WithTemperature(0.2),
			llm.WithSystemPrompt(systemPrompt),
		)

		return response, err
	})
}
