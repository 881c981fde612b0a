package generate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeCaller scripts the responses for successive attempts.
type fakeCaller struct {
	calls int
	steps []func() (*genai.GenerateContentResponse, error)
}

func (f *fakeCaller) generateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	if i >= len(f.steps) {
		i = len(f.steps) - 1 // repeat the last step
	}
	f.calls++
	return f.steps[i]()
}

func newTestClient(fake *fakeCaller) (*Client, *[]time.Duration) {
	var slept []time.Duration
	c := &Client{
		retryable: Retryable,
		sleep:     func(d time.Duration) { slept = append(slept, d) },
		caller:    fake,
	}
	return c, &slept
}

func imageResponse(data []byte, mime string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here is your picture"},
					{InlineData: &genai.Blob{MIMEType: mime, Data: data}},
				},
			},
		}},
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(genai.APIError{Code: 500}))
	assert.True(t, Retryable(genai.APIError{Code: 503}))
	assert.False(t, Retryable(genai.APIError{Code: 400}))
	assert.False(t, Retryable(genai.APIError{Code: 429}))
	assert.True(t, Retryable(errors.New("connection reset")))
	assert.True(t, Retryable(&genai.APIError{Code: 502}))
	assert.False(t, Retryable(&genai.APIError{Code: 404}))
}

func TestDoRetriesWithBackoff(t *testing.T) {
	serverErr := func() (*genai.GenerateContentResponse, error) {
		return nil, genai.APIError{Code: 503}
	}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){
			serverErr,
			serverErr,
			func() (*genai.GenerateContentResponse, error) { return imageResponse([]byte{1}, "image/png"), nil },
		}}
		c, slept := newTestClient(fake)

		_, err := c.do(context.Background(), "m", nil, nil, 3)
		require.NoError(t, err)
		assert.Equal(t, 3, fake.calls)
		// 2^0 then 2^1 seconds between the three attempts
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
	})

	t.Run("exhausts attempts", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){serverErr}}
		c, slept := newTestClient(fake)

		_, err := c.do(context.Background(), "m", nil, nil, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 3 attempt(s)")
		assert.Equal(t, 3, fake.calls)
		// no sleep after the final attempt
		assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *slept)
	})

	t.Run("client error is not retried", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){
			func() (*genai.GenerateContentResponse, error) { return nil, genai.APIError{Code: 400} },
		}}
		c, slept := newTestClient(fake)

		_, err := c.do(context.Background(), "m", nil, nil, 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "after 1 attempt(s)")
		assert.Equal(t, 1, fake.calls)
		assert.Empty(t, *slept)
	})

	t.Run("single attempt limit", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){serverErr}}
		c, slept := newTestClient(fake)

		_, err := c.do(context.Background(), "m", nil, nil, 1)
		require.Error(t, err)
		assert.Equal(t, 1, fake.calls)
		assert.Empty(t, *slept)
	})
}

func TestImageArtifactExtraction(t *testing.T) {
	t.Run("first inline part wins", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){
			func() (*genai.GenerateContentResponse, error) {
				return imageResponse([]byte("png-bytes"), "image/png"), nil
			},
		}}
		c, _ := newTestClient(fake)

		art, err := c.Image(context.Background(), Request{Prompt: "a red balloon"})
		require.NoError(t, err)
		assert.Equal(t, "image/png", art.MIME)
		assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", art.URL)
	})

	t.Run("text-only response is a shape error", func(t *testing.T) {
		fake := &fakeCaller{steps: []func() (*genai.GenerateContentResponse, error){
			func() (*genai.GenerateContentResponse, error) {
				return &genai.GenerateContentResponse{
					Candidates: []*genai.Candidate{{
						Content: &genai.Content{Parts: []*genai.Part{{Text: "sorry, no image"}}},
					}},
				}, nil
			},
		}}
		c, slept := newTestClient(fake)

		_, err := c.Image(context.Background(), Request{Prompt: "a red balloon"})
		require.ErrorIs(t, err, ErrNoArtifact)
		// a malformed response is not retried
		assert.Equal(t, 1, fake.calls)
		assert.Empty(t, *slept)
	})
}

func TestMissingCredential(t *testing.T) {
	c := NewClient(StaticCredential(""))
	_, err := c.Image(context.Background(), Request{Prompt: "anything"})
	require.ErrorIs(t, err, ErrNoCredential)
}

func TestRequestDefaults(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash-image", Request{}.model())
	assert.Equal(t, "custom", Request{Model: "custom"}.model())
	assert.Equal(t, DefaultMaxAttempts, Request{}.attempts())
	assert.Equal(t, 5, Request{MaxAttempts: 5}.attempts())
	assert.Equal(t, "gemini-2.5-flash-preview-tts", SpeechRequest{}.model())
}
