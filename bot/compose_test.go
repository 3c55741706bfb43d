package bot

import (
	"errors"
	"testing"

	"github.com/bluesky-social/aibot/detector"

	"github.com/stretchr/testify/assert"
)

func TestComposeVerdict(t *testing.T) {
	assert := assert.New(t)

	ai := ComposeVerdict(detector.Result{AI: 0.82})
	assert.Equal("Hi there! This image is probably AI generated (82% probability)", ai)

	human := ComposeVerdict(detector.Result{AI: 0.3})
	assert.Equal("Hi there! This image is probably not AI Generated (30% probability)", human)

	// exactly at the threshold is not reported as AI
	assert.Contains(ComposeVerdict(detector.Result{AI: 0.5}), "probably not AI Generated (50% probability)")
	assert.Contains(ComposeVerdict(detector.Result{AI: 1}), "probably AI generated (100% probability)")
}

func TestComposeApology(t *testing.T) {
	assert.Equal(t, "Oops! An error occurred: detector timed out", ComposeApology(errors.New("detector timed out")))
	assert.Equal(t, "Oops! An error occurred: I couldn't detect any images to classify.", ComposeApology(detector.ErrNoImages))
}
