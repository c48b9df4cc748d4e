// Package transcription talks to a Whisper-compatible speech-to-text
// endpoint.
package transcription

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/voicediary/internal/netx"
)

// URLSigner produces a short-lived download URL for a stored recording.
type URLSigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

type request struct {
	AudioURL string `json:"audio_url"`
	Language string `json:"language,omitempty"`
	Model    string `json:"model,omitempty"`
}

type response struct {
	Text string `json:"text"`
}

// HTTPClient implements the pipeline transcriber over HTTP. The endpoint
// fetches the audio itself from a presigned URL.
type HTTPClient struct {
	endpoint string
	model    string
	signer   URLSigner
	client   *http.Client
}

// NewHTTPClient returns a client for endpoint. A zero timeout means the
// request is bounded only by the caller's context.
func NewHTTPClient(endpoint, model string, timeout time.Duration, signer URLSigner) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		model:    model,
		signer:   signer,
		client:   &http.Client{Timeout: timeout},
	}
}

// Transcribe returns the text spoken in the recording stored at audioRef.
func (c *HTTPClient) Transcribe(ctx context.Context, audioRef, language string) (string, error) {
	if strings.TrimSpace(audioRef) == "" {
		return "", errors.New("empty audio reference")
	}

	url, err := c.signer.PresignGet(ctx, audioRef)
	if err != nil {
		return "", fmt.Errorf("presign audio: %w", err)
	}

	var resp response
	err = netx.PostJSON(ctx, c.client, c.endpoint, request{AudioURL: url, Language: language, Model: c.model}, &resp)
	if err != nil {
		return "", fmt.Errorf("transcribe %s: %w", audioRef, err)
	}

	return strings.TrimSpace(resp.Text), nil
}
