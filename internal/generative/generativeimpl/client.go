package generativeimpl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/orgball2608/reel-studio/internal/domain"
	"github.com/orgball2608/reel-studio/internal/generative"
	"github.com/orgball2608/reel-studio/internal/ratelimit"
	"github.com/orgball2608/reel-studio/pkg/errors"
	"github.com/orgball2608/reel-studio/pkg/logger"
	"github.com/orgball2608/reel-studio/pkg/retry"
)

const (
	narratePath    = "/v1/narrate"
	transcribePath = "/v1/transcribe"

	// maxResponse caps a synthesized narration or transcript body.
	maxResponse = 32 << 20
)

type ClientOpts struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Limiter ratelimit.Limiter
	Retry   retry.Config
}

// HTTPClient calls a JSON speech API: POST /v1/narrate returns audio/wav,
// POST /v1/transcribe returns timed segments in seconds.
type HTTPClient struct {
	log     logger.Logger
	http    *http.Client
	baseURL string
	apiKey  string
	limiter ratelimit.Limiter
	retry   retry.Config
}

var _ generative.Client = (*HTTPClient)(nil)

func NewHTTPClient(log logger.Logger, opts ClientOpts) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}
	return &HTTPClient{
		log:     log.WithComponent("generative"),
		http:    &http.Client{Timeout: opts.Timeout},
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		limiter: opts.Limiter,
		retry:   opts.Retry,
	}
}

type narrateRequest struct {
	Text   string `json:"text"`
	Format string `json:"format"`
}

type transcribeRequest struct {
	URI string `json:"uri"`
}

type transcriptionData struct {
	Text     string              `json:"text"`
	Segments []transcriptSegment `json:"segments"`
}

type transcriptSegment struct {
	Text      string  `json:"text"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (c *HTTPClient) Narrate(ctx context.Context, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.Wrap(errors.ErrInvalidInput, "nothing to narrate")
	}
	body, err := c.call(ctx, "narrate", narratePath, narrateRequest{Text: text, Format: "wav"})
	if err != nil {
		return nil, err
	}
	c.log.Debug("Narration synthesized", "chars", len(text), "bytes", len(body))
	return body, nil
}

func (c *HTTPClient) Transcribe(ctx context.Context, uri string) ([]domain.TranscriptEntry, error) {
	body, err := c.call(ctx, "transcribe", transcribePath, transcribeRequest{URI: uri})
	if err != nil {
		return nil, err
	}

	var data transcriptionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeDecodeFailure, "decode transcript")
	}
	entries := make([]domain.TranscriptEntry, 0, len(data.Segments))
	for _, s := range data.Segments {
		entries = append(entries, domain.TranscriptEntry{
			Start: seconds(s.StartTime),
			End:   seconds(s.EndTime),
			Text:  s.Text,
		})
	}
	c.log.Debug("Transcript received", "uri", uri, "segments", len(entries))
	return entries, nil
}

// call rate limits, then posts payload with retries. Throttling and server
// errors are retried; other client errors are permanent.
func (c *HTTPClient) call(ctx context.Context, op, path string, payload any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, errors.Wrap(errors.ErrInvalidState, "generative service is not configured")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, op); err != nil {
			return nil, errors.Wrapf(err, "%s rate limit", op)
		}
	}
	req, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s request", op)
	}

	var body []byte
	err = retry.Do(ctx, c.log, op, func() error {
		b, err := c.post(ctx, path, req)
		body = b
		return err
	}, c.retry)
	return body, err
}

func (c *HTTPClient) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, retry.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer safeClose(resp.Body, c.log)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponse))
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%s: %s", resp.Status, snippet(body))
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, retry.Permanent(errors.Wrapf(errors.ErrInvalidInput, "%s: %s", resp.Status, snippet(body)))
	}
	return body, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func snippet(body []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		s = s[:limit]
	}
	return s
}

func safeClose(closer io.ReadCloser, log logger.Logger) {
	if err := closer.Close(); err != nil {
		log.Error("Error closing response body", "error", err)
	}
}
