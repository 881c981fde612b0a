// Package studio holds the generation workflows: composing a story draft into
// a book, producing character references, page illustrations, vocabulary
// cards, quizzes and narration, one item at a time or in batches.
package studio

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"fable/pkg/generate"
	"fable/pkg/inference"
)

// ImageGenerator is the seam to the retrying generation client.
type ImageGenerator interface {
	Image(ctx context.Context, req generate.Request) (generate.Artifact, error)
}

// SpeechGenerator produces narration audio.
type SpeechGenerator interface {
	Speech(ctx context.Context, req generate.SpeechRequest) (generate.Artifact, error)
}

// Studio bundles the collaborators every workflow needs. State lives in the
// Storybook values passed to each call, not in the Studio itself.
type Studio struct {
	Images ImageGenerator
	Speech SpeechGenerator
	Writer inference.Writer

	// Interval paces parallel fan-out; zero means no pacing.
	Interval time.Duration

	vocabFlight singleflight.Group
}

func (s *Studio) limiter() *rate.Limiter {
	if s.Interval <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(s.Interval), 2)
}
