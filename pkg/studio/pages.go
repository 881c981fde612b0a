package studio

import (
	"context"
	"fmt"
	"strings"

	"fable/pkg/generate"
	"fable/pkg/schema"
	"fable/pkg/utils"
)

// matchedCharacters picks the characters whose reference image should ride
// along with a page's illustration call: those whose name or first
// description token appears (case-insensitive substring) in the page text or
// the scene's character field. When nothing matches, every character with a
// reference image is attached as a safety net. This lexical heuristic is
// deliberately simple; its observable behavior is load-bearing.
func matchedCharacters(book *schema.Storybook, page *schema.Page) []schema.Character {
	haystack := page.Text
	if page.Detail != nil {
		haystack += "\n" + page.Detail.Characters
	}

	var withRefs, matched []schema.Character
	for _, c := range book.Characters {
		if c.ReferenceImage == "" {
			continue
		}
		withRefs = append(withRefs, c)

		needles := []string{c.Name}
		if tok := firstToken(c.Description); tok != "" {
			needles = append(needles, tok)
		}
		if utils.StringContains(haystack, false, needles...) {
			matched = append(matched, c)
		}
	}
	if len(matched) == 0 {
		return withRefs
	}
	return matched
}

func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// previousImage returns the illustration of the page immediately before n,
// or "".
func previousImage(book *schema.Storybook, n int) string {
	if p := book.PageByNumber(n - 1); p != nil {
		return p.Image
	}
	return ""
}

// illustrationRefs builds the full reference list for one page's generation
// call. Character references always come first. The rest depends on whether
// this is a regeneration and whether the user left an edit note:
//   - regeneration with an edit note: previous page's art, the current art,
//     and every user-picked reference;
//   - regeneration without a note: previous and current art only;
//   - first generation: previous page's art plus user-picked references.
//
// isolated is set by the parallel batch, where sibling pages are generating
// concurrently and no cross-page art can be referenced.
func illustrationRefs(book *schema.Storybook, page *schema.Page, picked []string, isolated bool) ([]string, []schema.Character) {
	attached := matchedCharacters(book, page)
	refs := make([]string, 0, len(attached)+len(picked)+2)
	for _, c := range attached {
		refs = append(refs, c.ReferenceImage)
	}
	if isolated {
		return refs, attached
	}

	prev := previousImage(book, page.Number)
	switch {
	case page.Image != "" && page.EditNote != "":
		if prev != "" {
			refs = append(refs, prev)
		}
		refs = append(refs, page.Image)
		refs = append(refs, picked...)
	case page.Image != "":
		if prev != "" {
			refs = append(refs, prev)
		}
		refs = append(refs, page.Image)
	default:
		if prev != "" {
			refs = append(refs, prev)
		}
		refs = append(refs, picked...)
	}
	return refs, attached
}

// Illustrate generates (or regenerates) the illustration for one page and
// writes the artifact back into the book.
func (s *Studio) Illustrate(ctx context.Context, book *schema.Storybook, pageNumber int, picked []string, settings schema.Settings) error {
	page := book.PageByNumber(pageNumber)
	if page == nil {
		return fmt.Errorf("page %d not found", pageNumber)
	}

	refs, attached := illustrationRefs(book, page, picked, false)
	art, err := s.Images.Image(ctx, generate.Request{
		Prompt:     illustrationPrompt(book, page, attached, settings.AspectRatio),
		References: refs,
		Model:      settings.ImageModel,
	})
	if err != nil {
		return fmt.Errorf("page %d: %w", pageNumber, err)
	}
	page.Image = art.URL
	page.EditNote = ""
	book.Touch()
	return nil
}
