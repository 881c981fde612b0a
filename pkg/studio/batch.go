package studio

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// BatchMode selects how a whole-book batch walks the pages.
type BatchMode string

const (
	// Parallel dispatches every missing illustration concurrently. Pages
	// cannot reference each other's art because none of it exists yet.
	Parallel BatchMode = "parallel"

	// Sequential generates in ascending page order, feeding each page the
	// previous page's finished illustration and persisting after every
	// success so partial progress survives a later failure.
	Sequential BatchMode = "sequential"
)

// Summary tallies a batch. Failed items stay individually retriable through
// the single-item entry points; a batch never escalates partial failure.
type Summary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

func NewSummary() Summary {
	return Summary{Errors: make(map[string]string)}
}

func (s *Summary) fail(key string, err error) {
	s.Failed++
	s.Errors[key] = err.Error()
}

// parallelWidth is the effective concurrency assumed for duration estimates.
const parallelWidth = 5

// perItemCost is the assumed wall time of one generation call.
const perItemCost = 20 * time.Second

// Estimate returns the expected batch duration shown to the user before the
// batch starts.
func Estimate(mode BatchMode, items int) time.Duration {
	if items <= 0 {
		return 0
	}
	if mode == Parallel {
		waves := (items + parallelWidth - 1) / parallelWidth
		return time.Duration(waves) * perItemCost
	}
	return time.Duration(items) * perItemCost
}

// MissingIllustrations counts the pages a batch would touch.
func MissingIllustrations(book *schema.Storybook) int {
	n := 0
	for i := range book.Pages {
		if book.Pages[i].Image == "" {
			n++
		}
	}
	return n
}

// IllustrateAll fills in every missing page illustration. persist is invoked
// after each successful page in sequential mode (and once at the end of a
// parallel batch); a nil persist is ignored.
func (s *Studio) IllustrateAll(ctx context.Context, book *schema.Storybook, mode BatchMode, settings schema.Settings, persist func(*schema.Storybook) error) Summary {
	if mode == Sequential {
		return s.illustrateSequential(ctx, book, settings, persist)
	}
	return s.illustrateParallel(ctx, book, settings, persist)
}

func (s *Studio) illustrateParallel(ctx context.Context, book *schema.Storybook, settings schema.Settings, persist func(*schema.Storybook) error) Summary {
	summary := NewSummary()
	limiter := s.limiter()

	var mu sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)
	for i := range book.Pages {
		if book.Pages[i].Image != "" {
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
			refs, attached := illustrationRefs(book, page, nil, true)
			art, err := s.Images.Image(egCtx, generate.Request{
				Prompt:     illustrationPrompt(book, page, attached, settings.AspectRatio),
				References: refs,
				Model:      settings.ImageModel,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.fail(strconv.Itoa(page.Number), err)
				return nil
			}
			page.Image = art.URL
			summary.Succeeded++
			return nil
		})
	}
	eg.Wait()

	if summary.Succeeded > 0 {
		book.Touch()
		if persist != nil {
			persist(book)
		}
	}
	return summary
}

func (s *Studio) illustrateSequential(ctx context.Context, book *schema.Storybook, settings schema.Settings, persist func(*schema.Storybook) error) Summary {
	summary := NewSummary()

	order := make([]int, 0, len(book.Pages))
	for i := range book.Pages {
		if book.Pages[i].Image == "" {
			order = append(order, i)
		}
	}
	sort.Slice(order, func(a, b int) bool {
		return book.Pages[order[a]].Number < book.Pages[order[b]].Number
	})

	for _, i := range order {
		page := &book.Pages[i]
		summary.Total++

		refs, attached := illustrationRefs(book, page, nil, false)
		art, err := s.Images.Image(ctx, generate.Request{
			Prompt:     illustrationPrompt(book, page, attached, settings.AspectRatio),
			References: refs,
			Model:      settings.ImageModel,
		})
		if err != nil {
			// Record and keep going; the next page just loses its
			// previous-page reference.
			summary.fail(strconv.Itoa(page.Number), err)
			continue
		}
		page.Image = art.URL
		summary.Succeeded++
		book.Touch()
		if persist != nil {
			persist(book)
		}
	}
	return summary
}
