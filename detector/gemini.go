package detector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/go-resty/resty/v2"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

const geminiPrompt = `You are an image forensics assistant. Estimate the probability that the attached image was generated or substantially edited by an AI image model.
Respond with only a JSON object of the form {"ai": <number between 0 and 1>} and nothing else.`

type GeminiConfig struct {
	APIKey string
	Model  string
	// Transport is optional and used both for image downloads and Gemini API calls.
	Transport http.RoundTripper
}

// GeminiClassifier downloads the image and asks a Gemini model for an AI-probability estimate.
type GeminiClassifier struct {
	client *genai.Client
	fetch  *resty.Client
	model  string
}

func NewGeminiClassifier(ctx context.Context, cfg GeminiConfig) (*GeminiClassifier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini detector")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	gcfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Transport != nil {
		gcfg.HTTPClient = &http.Client{Transport: cfg.Transport}
	}
	client, err := genai.NewClient(ctx, gcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClassifier{
		client: client,
		fetch:  newImageFetcher(cfg.Transport),
		model:  model,
	}, nil
}

func newImageFetcher(transport http.RoundTripper) *resty.Client {
	fetch := resty.New()
	fetch.SetTimeout(20 * time.Second)
	fetch.SetHeader("User-Agent", "aibot/"+versioninfo.Short())
	if transport != nil {
		fetch.SetTransport(transport)
	}
	return fetch
}

func (g *GeminiClassifier) Classify(ctx context.Context, imageURL string) (Result, error) {
	img, mimeType, err := fetchImage(ctx, g.fetch, imageURL)
	if err != nil {
		return Result{}, err
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(img, mimeType),
			genai.NewPartFromText(geminiPrompt),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("gemini generate failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Result{}, fmt.Errorf("no response from gemini")
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text += part.Text
		}
	}
	return parseVerdict(text)
}

func fetchImage(ctx context.Context, fetch *resty.Client, imageURL string) ([]byte, string, error) {
	resp, err := fetch.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("downloading image: %w", err)
	}
	if resp.IsError() {
		return nil, "", &APIError{StatusCode: resp.StatusCode(), Message: "image download failed"}
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, "", fmt.Errorf("downloaded image is empty")
	}
	mimeType := resp.Header().Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, "", fmt.Errorf("url did not return an image (%s)", mimeType)
	}
	return body, mimeType, nil
}

// parseVerdict reads {"ai": fraction} out of model output, tolerating a markdown code fence.
func parseVerdict(text string) (Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var out classifyResponse
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return Result{}, fmt.Errorf("parsing gemini verdict: %w", err)
	}
	return out.result()
}
