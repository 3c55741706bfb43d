// Package detector asks an external service whether an image looks AI-generated.
package detector

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/bluesky-social/aibot/social"
)

var (
	ErrNoImages     = errors.New("I couldn't detect any images to classify.")
	ErrInvalidScore = errors.New("detector returned a score outside [0,1]")
)

// Result is the detector's verdict. AI is the probability, as a fraction, that the image is
// AI-generated.
type Result struct {
	AI float64 `json:"ai"`
}

// Percent returns AI as a whole percentage, rounded half away from zero.
func (r Result) Percent() int {
	return int(math.Round(r.AI * 100))
}

func (r Result) validate() error {
	if math.IsNaN(r.AI) || r.AI < 0 || r.AI > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidScore, r.AI)
	}
	return nil
}

type Classifier interface {
	Classify(ctx context.Context, imageURL string) (Result, error)
}

// ClassifyPost classifies the first image attached to post. Posts without images return
// ErrNoImages without calling the classifier.
func ClassifyPost(ctx context.Context, cls Classifier, post *social.Post) (Result, error) {
	images := social.ImagesOfPost(post)
	if len(images) == 0 {
		return Result{}, ErrNoImages
	}
	return cls.Classify(ctx, images[0])
}

// APIError is a non-2xx response from a detection service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("detector request failed (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("detector request failed (HTTP %d): %s", e.StatusCode, e.Message)
}
