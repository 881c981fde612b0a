package studio

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// findKeyObject matches a word against key object names and localized labels,
// case-insensitively and exactly.
func findKeyObject(book *schema.Storybook, word string) *schema.KeyObject {
	for i := range book.KeyObjects {
		o := &book.KeyObjects[i]
		if strings.EqualFold(o.Name, word) || strings.EqualFold(o.Label, word) {
			return o
		}
	}
	return nil
}

// VocabularyCard produces the illustration card for one word. A word that
// exactly matches a key object which already has an image reuses that image
// without a generation call. Concurrent requests for the same word coalesce
// into one call.
func (s *Studio) VocabularyCard(ctx context.Context, book *schema.Storybook, word string, settings schema.Settings) (schema.KeyObject, error) {
	existing := findKeyObject(book, word)
	if existing != nil && existing.Image != "" {
		card := *existing
		card.Reused = true
		return card, nil
	}

	v, err, _ := s.vocabFlight.Do(strings.ToLower(word), func() (any, error) {
		art, err := s.Images.Image(ctx, generate.Request{
			Prompt: vocabPrompt(existing, word, book.ArtStyle),
			Model:  settings.ImageModel,
		})
		if err != nil {
			return nil, err
		}
		return art, nil
	})
	if err != nil {
		return schema.KeyObject{}, err
	}
	art := v.(generate.Artifact)

	if existing != nil {
		existing.Image = art.URL
		book.Touch()
		return *existing, nil
	}
	card := schema.KeyObject{Name: word, Image: art.URL}
	book.KeyObjects = append(book.KeyObjects, card)
	book.Touch()
	return card, nil
}

// AllVocabularyCards fills in every key object missing an image,
// concurrently, with per-item failure isolation.
func (s *Studio) AllVocabularyCards(ctx context.Context, book *schema.Storybook, settings schema.Settings) Summary {
	summary := NewSummary()
	limiter := s.limiter()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range book.KeyObjects {
		if book.KeyObjects[i].Image != "" {
			continue
		}
		obj := &book.KeyObjects[i]
		summary.Total++
		eg.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(egCtx); err != nil {
					mu.Lock()
					summary.fail(obj.Name, err)
					mu.Unlock()
					return nil
				}
			}
			word := obj.Name
			if word == "" {
				word = obj.Label
			}
			art, err := s.Images.Image(egCtx, generate.Request{
				Prompt: vocabPrompt(obj, word, book.ArtStyle),
				Model:  settings.ImageModel,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.fail(obj.Name, err)
				return nil
			}
			obj.Image = art.URL
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
