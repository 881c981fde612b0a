package inference

import (
	"context"

	"github.com/openai/openai-go/v3"
)

// Writer generates story text as raw JSON. The params argument carries
// backend-specific knobs (model, structured-output format); backends ignore
// what they don't understand.
type Writer interface {
	Generate(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error)
}
