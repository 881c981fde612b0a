// Package generate wraps the Gemini generation API behind a retrying client.
// Every artifact-producing call in the app funnels through here so backoff,
// credential handling and response decoding live in exactly one place.
package generate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"google.golang.org/genai"

	"fable/pkg/media"
)

// DefaultMaxAttempts is used when a request does not set its own limit.
const DefaultMaxAttempts = 3

var (
	// ErrNoCredential means the credential provider could not supply an API
	// key. Nothing is attempted in that case.
	ErrNoCredential = errors.New("generation credential not configured")

	// ErrNoArtifact means the call succeeded but the response carried no
	// inline media. Retrying won't change the response shape.
	ErrNoArtifact = errors.New("response contained no inline artifact")
)

// CredentialProvider supplies the API key on demand.
type CredentialProvider interface {
	APIKey() (string, error)
}

// CredentialFunc adapts a plain function to CredentialProvider.
type CredentialFunc func() (string, error)

func (f CredentialFunc) APIKey() (string, error) { return f() }

// StaticCredential returns a provider that always yields key, or
// ErrNoCredential when key is empty.
func StaticCredential(key string) CredentialProvider {
	return CredentialFunc(func() (string, error) {
		if key == "" {
			return "", ErrNoCredential
		}
		return key, nil
	})
}

// Request describes one artifact generation call.
type Request struct {
	Prompt      string
	References  []string // artifact refs: data URLs or remote URLs
	Model       string
	MaxAttempts int // 0 means DefaultMaxAttempts
}

// Artifact is one generated piece of media, referenced as a data URL.
type Artifact struct {
	URL  string
	MIME string
}

// caller is the transport seam; tests substitute a fake.
type caller interface {
	generateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type genaiCaller struct{ client *genai.Client }

func (g genaiCaller) generateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, cfg)
}

// Client issues generation calls with exponential-backoff retry. The genai
// client is created lazily on first use so a missing credential only fails
// the calls that need it.
type Client struct {
	creds     CredentialProvider
	retryable func(error) bool
	sleep     func(time.Duration)

	mu     sync.Mutex
	caller caller
}

// NewClient builds a client around a credential provider.
func NewClient(creds CredentialProvider) *Client {
	return &Client{
		creds:     creds,
		retryable: Retryable,
		sleep:     time.Sleep,
	}
}

func (c *Client) ensureCaller(ctx context.Context) (caller, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.caller != nil {
		return c.caller, nil
	}
	if c.creds == nil {
		return nil, ErrNoCredential
	}
	key, err := c.creds.APIKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoCredential, err)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	c.caller = genaiCaller{client: client}
	return c.caller, nil
}

// Image generates one illustration from a prompt plus optional reference
// images and returns it as a data-URL artifact.
func (c *Client) Image(ctx context.Context, req Request) (Artifact, error) {
	contents, err := c.buildContents(ctx, req)
	if err != nil {
		return Artifact{}, err
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"TEXT", "IMAGE"},
	}
	resp, err := c.do(ctx, req.model(), contents, cfg, req.attempts())
	if err != nil {
		return Artifact{}, err
	}
	return firstInlineArtifact(resp)
}

// buildContents assembles the single multi-part request: prompt text first,
// then every reference image converted to inline bytes.
func (c *Client) buildContents(ctx context.Context, req Request) ([]*genai.Content, error) {
	parts := []*genai.Part{genai.NewPartFromText(req.Prompt)}
	for _, ref := range req.References {
		data, mimeType, err := media.Inline(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("reference image: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(data, mimeType))
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

func (req Request) model() string {
	if req.Model == "" {
		return "gemini-2.5-flash-image"
	}
	return req.Model
}

func (req Request) attempts() int {
	if req.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return req.MaxAttempts
}

// firstInlineArtifact scans the response for the first part carrying inline
// binary data. A response without one is a shape error, not a retry case.
func firstInlineArtifact(resp *genai.GenerateContentResponse) (Artifact, error) {
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return Artifact{
					URL:  media.DataURL(part.InlineData.Data, part.InlineData.MIMEType),
					MIME: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return Artifact{}, ErrNoArtifact
}
