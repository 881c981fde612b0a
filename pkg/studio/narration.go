package studio

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// Narrate produces narration audio for one page with the configured voice.
func (s *Studio) Narrate(ctx context.Context, book *schema.Storybook, pageNumber int, settings schema.Settings) error {
	page := book.PageByNumber(pageNumber)
	if page == nil {
		return fmt.Errorf("page %d not found", pageNumber)
	}
	if page.Text == "" {
		return fmt.Errorf("page %d has no text to narrate", pageNumber)
	}

	art, err := s.Speech.Speech(ctx, generate.SpeechRequest{
		Text:  page.Text,
		Voice: settings.Voice,
		Model: settings.AudioModel,
	})
	if err != nil {
		return fmt.Errorf("narration for page %d: %w", pageNumber, err)
	}
	page.Audio = art.URL
	page.Voice = settings.Voice
	page.VoiceModel = settings.AudioModel
	book.Touch()
	return nil
}

// NarrateAll fills in narration for every page missing audio, concurrently,
// with per-page failure isolation.
func (s *Studio) NarrateAll(ctx context.Context, book *schema.Storybook, settings schema.Settings) Summary {
	summary := NewSummary()
	limiter := s.limiter()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range book.Pages {
		if book.Pages[i].Audio != "" || book.Pages[i].Text == "" {
			continue
		}
		page := &book.Pages[i]
		summary.Total++
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					mu.Lock()
					summary.fail(strconv.Itoa(page.Number), err)
					mu.Unlock()
					return nil
				}
			}
			art, err := s.Speech.Speech(egCtx, generate.SpeechRequest{
				Text:  page.Text,
				Voice: settings.Voice,
				Model: settings.AudioModel,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.fail(strconv.Itoa(page.Number), err)
				return nil
			}
			page.Audio = art.URL
			page.Voice = settings.Voice
			page.VoiceModel = settings.AudioModel
			summary.Succeeded++
			return nil
		})
	}
	eg.Wait()
	if summary.Succeeded > 0 {
		book.Touch()
	}
	return summary
}
