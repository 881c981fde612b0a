package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// Retryable classifies an error from a generation attempt. Server-side 5xx
// responses and transport failures are transient; any other API status is a
// hard failure and is not retried.
func Retryable(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 500
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code >= 500
	}
	// Anything not carrying an API status is treated like a thrown
	// exception: transient until attempts run out.
	return true
}

// do runs the generation call with up to maxAttempts tries, sleeping
// 2^attempt seconds between retries (attempt indices 0-based). The final
// error names the attempt count and the last underlying failure so callers
// can show it to the user as-is.
func (c *Client) do(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig, maxAttempts int) (*genai.GenerateContentResponse, error) {
	call, err := c.ensureCaller(ctx)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		resp, err := call.generateContent(ctx, model, contents, cfg)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !c.retryable(err) {
			return nil, fmt.Errorf("generation failed after %d attempt(s): %w", attempt+1, err)
		}
		if attempt < maxAttempts-1 {
			c.sleep(time.Duration(1<<attempt) * time.Second)
		}
	}
	return nil, fmt.Errorf("generation failed after %d attempt(s): %w", maxAttempts, lastErr)
}
