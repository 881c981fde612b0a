package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var (
	StoryDraftSchema = generateSchema[StoryDraft]()
	QuizDraftSchema  = generateSchema[QuizDraft]()
)

// StoryResponseFormat is the OpenAI structured-outputs format for a full
// story draft.
func StoryResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("story_draft", "A children's illustrated storybook draft", StoryDraftSchema)
}

// QuizResponseFormat is the structured-outputs format for a quiz set.
func QuizResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	return responseFormat("quiz_draft", "Comprehension quizzes for a children's story", QuizDraftSchema)
}

func responseFormat(name, desc string, schema any) openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        name,
		Description: openai.String(desc),
		Schema:      schema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
