package studio

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v3"

	"fable/pkg/generate"
	"fable/pkg/schema"
)

// fakeImages records every request and hands back numbered artifacts. err, when
// set, can fail selected requests.
type fakeImages struct {
	mu    sync.Mutex
	calls []generate.Request
	err   func(generate.Request) error
	gate  chan struct{} // when set, Image parks here until the channel closes
}

func (f *fakeImages) Image(_ context.Context, req generate.Request) (generate.Artifact, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	n := len(f.calls)
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		if err := f.err(req); err != nil {
			return generate.Artifact{}, err
		}
	}
	return generate.Artifact{
		URL:  fmt.Sprintf("data:image/png;base64,fake%d", n),
		MIME: "image/png",
	}, nil
}

func (f *fakeImages) requests() []generate.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]generate.Request(nil), f.calls...)
}

type fakeSpeech struct {
	mu    sync.Mutex
	calls []generate.SpeechRequest
	err   error
}

func (f *fakeSpeech) Speech(_ context.Context, req generate.SpeechRequest) (generate.Artifact, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.err != nil {
		return generate.Artifact{}, f.err
	}
	return generate.Artifact{URL: "data:audio/wav;base64,bm9pc2U=", MIME: "audio/wav"}, nil
}

type fakeWriter struct {
	out        string
	err        error
	calls      int
	lastSystem string
	lastUser   string
	lastParams *openai.ChatCompletionNewParams
}

func (f *fakeWriter) Generate(_ context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	f.calls++
	f.lastParams = params
	f.lastSystem = system
	f.lastUser = user
	return f.out, f.err
}

// testBook is the shared fixture: three pages, two characters with reference
// images and one without.
func testBook() *schema.Storybook {
	return &schema.Storybook{
		ID:       "book1",
		Title:    "The Lost Balloon",
		ArtStyle: "watercolor",
		Pages: []schema.Page{
			{Number: 1, Text: "Alice found a red balloon.", Scene: "a sunny park, scene-one"},
			{Number: 2, Text: "The bulldog barked at the balloon.", Scene: "a garden path, scene-two"},
			{Number: 3, Text: "Everyone laughed together.", Scene: "a picnic blanket, scene-three"},
		},
		Characters: []schema.Character{
			{Name: "Alice", Description: "girl in a yellow dress", ReferenceImage: "data:image/png;base64,YWxpY2U="},
			{Name: "Rex", Description: "bulldog with a red collar", ReferenceImage: "data:image/png;base64,cmV4"},
			{Name: "Narrator", Description: "an unseen voice"},
		},
	}
}
