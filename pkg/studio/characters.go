package studio

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// CharacterReference generates (or regenerates) the reference image for one
// character. When a prior reference exists it is attached so the new drawing
// stays recognizable.
func (s *Studio) CharacterReference(ctx context.Context, book *schema.Storybook, name string, settings schema.Settings) error {
	var char *schema.Character
	for i := range book.Characters {
		if book.Characters[i].Name == name {
			char = &book.Characters[i]
			break
		}
	}
	if char == nil {
		return fmt.Errorf("character %q not found", name)
	}

	regen := char.ReferenceImage != ""
	var refs []string
	if regen {
		refs = []string{char.ReferenceImage}
	}

	art, err := s.Images.Image(ctx, generate.Request{
		Prompt:     characterPrompt(*char, book.ArtStyle, regen),
		References: refs,
		Model:      settings.ImageModel,
	})
	if err != nil {
		return fmt.Errorf("character %q: %w", name, err)
	}
	char.ReferenceImage = art.URL
	book.Touch()
	return nil
}

// AllCharacterReferences generates every missing reference image
// concurrently. Failures are recorded per character and never abort the
// batch.
func (s *Studio) AllCharacterReferences(ctx context.Context, book *schema.Storybook, settings schema.Settings) Summary {
	summary := NewSummary()
	limiter := s.limiter()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range book.Characters {
		if book.Characters[i].ReferenceImage != "" {
			continue
		}
		char := &book.Characters[i]
		summary.Total++
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					mu.Lock()
					summary.fail(char.Name, err)
					mu.Unlock()
					return nil
				}
			}
			art, err := s.Images.Image(egCtx, generate.Request{
				Prompt: characterPrompt(*char, book.ArtStyle, false),
				Model:  settings.ImageModel,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.fail(char.Name, err)
				return nil
			}
			char.ReferenceImage = art.URL
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
