package studio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"

	"fable/pkg/schema"
	"fable/pkg/utils"
)

// ComposeStory validates the request, asks the writer for a complete draft
// and assembles it into a new Storybook. Group characters are expanded and
// out-of-band heights clamped into the allowed range.
func (s *Studio) ComposeStory(ctx context.Context, req schema.StoryRequest, settings schema.Settings) (*schema.Storybook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	params := &openai.ChatCompletionNewParams{
		Model:          settings.StoryModel,
		ResponseFormat: schema.StoryResponseFormat(),
	}
	raw, err := s.Writer.Generate(ctx, params, storySystemPrompt, storyUserPrompt(req))
	if err != nil {
		return nil, fmt.Errorf("story generation: %w", err)
	}

	var draft schema.StoryDraft
	if err := json.Unmarshal([]byte(utils.CleanJSON(raw)), &draft); err != nil {
		return nil, fmt.Errorf("story response was not valid JSON: %w", err)
	}
	if len(draft.Pages) == 0 {
		return nil, fmt.Errorf("story response contained no pages")
	}

	for i := range draft.Characters {
		h := draft.Characters[i].HeightCM
		if h != 0 && h < schema.MinHeightCM {
			draft.Characters[i].HeightCM = schema.MinHeightCM
		}
		if h > schema.MaxHeightCM {
			draft.Characters[i].HeightCM = schema.MaxHeightCM
		}
	}

	book := schema.NewStorybook(req, draft)
	return &book, nil
}

// ComposeQuizzes generates comprehension quizzes for a finished story and
// attaches them to the book.
func (s *Studio) ComposeQuizzes(ctx context.Context, book *schema.Storybook, settings schema.Settings) error {
	params := &openai.ChatCompletionNewParams{
		Model:          settings.StoryModel,
		ResponseFormat: schema.QuizResponseFormat(),
	}
	raw, err := s.Writer.Generate(ctx, params, quizSystemPrompt, quizUserPrompt(book))
	if err != nil {
		return fmt.Errorf("quiz generation: %w", err)
	}

	var draft schema.QuizDraft
	if err := json.Unmarshal([]byte(utils.CleanJSON(raw)), &draft); err != nil {
		return fmt.Errorf("quiz response was not valid JSON: %w", err)
	}
	if len(draft.Quizzes) == 0 {
		return fmt.Errorf("quiz response contained no questions")
	}
	book.Quizzes = draft.Quizzes
	book.Touch()
	return nil
}
