package detector

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-resty/resty/v2"
)

type HTTPConfig struct {
	// Endpoint receives a JSON POST of {"url": "<image url>"} and answers {"ai": <fraction>}.
	Endpoint string
	APIKey   string
	Timeout  time.Duration
	// Transport is optional; resty's default transport is used when nil.
	Transport http.RoundTripper
}

// HTTPClassifier calls a JSON detection endpoint. Requests are not retried.
type HTTPClassifier struct {
	client   *resty.Client
	endpoint string
}

type classifyRequest struct {
	URL string `json:"url"`
}

type classifyResponse struct {
	AI *float64 `json:"ai"`
}

func (r classifyResponse) result() (Result, error) {
	if r.AI == nil {
		return Result{}, fmt.Errorf("detector response is missing the ai score")
	}
	res := Result{AI: *r.AI}
	if err := res.validate(); err != nil {
		return Result{}, err
	}
	return res, nil
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewHTTPClassifier(cfg HTTPConfig) (*HTTPClassifier, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("detector endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("User-Agent", "aibot/"+versioninfo.Short())
	client.SetHeader("Accept", "application/json")
	if cfg.Transport != nil {
		client.SetTransport(cfg.Transport)
	}
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &HTTPClassifier{
		client:   client,
		endpoint: cfg.Endpoint,
	}, nil
}

func (c *HTTPClassifier) Classify(ctx context.Context, imageURL string) (Result, error) {
	var out classifyResponse
	var apiErr errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(classifyRequest{URL: imageURL}).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("calling detector: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Error
		}
		if msg == "" {
			msg = strings.TrimSpace(resp.String())
		}
		return Result{}, &APIError{StatusCode: resp.StatusCode(), Message: msg}
	}
	return out.result()
}
