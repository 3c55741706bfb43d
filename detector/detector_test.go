package detector_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bluesky-social/aibot/detector"
	"github.com/bluesky-social/aibot/internal/testutil"
	"github.com/bluesky-social/aibot/social"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPostNoImages(t *testing.T) {
	assert := assert.New(t)

	cls := &testutil.FakeClassifier{Default: 0.9}
	_, err := detector.ClassifyPost(context.Background(), cls, &social.Post{URI: "at://did:plc:a/app.bsky.feed.post/1"})
	assert.ErrorIs(err, detector.ErrNoImages)
	assert.Equal("I couldn't detect any images to classify.", err.Error())
	assert.Equal(0, cls.CallCount())
}

func TestClassifyPostFirstImage(t *testing.T) {
	assert := assert.New(t)

	cls := &testutil.FakeClassifier{Scores: map[string]float64{
		"https://cdn.example.com/t1": 0.82,
		"https://cdn.example.com/t2": 0.1,
	}}
	post := &social.Post{Images: []social.Image{
		{Thumb: "https://cdn.example.com/t1", Fullsize: "https://cdn.example.com/f1"},
		{Thumb: "https://cdn.example.com/t2", Fullsize: "https://cdn.example.com/f2"},
	}}
	res, err := detector.ClassifyPost(context.Background(), cls, post)
	assert.NoError(err)
	assert.Equal(0.82, res.AI)
	assert.Equal([]string{"https://cdn.example.com/t1"}, cls.Calls)

	cls.Err = errors.New("service unavailable")
	_, err = detector.ClassifyPost(context.Background(), cls, post)
	assert.EqualError(err, "service unavailable")
}

func TestResultPercent(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(82, detector.Result{AI: 0.82}.Percent())
	assert.Equal(30, detector.Result{AI: 0.3}.Percent())
	assert.Equal(0, detector.Result{AI: 0}.Percent())
	assert.Equal(100, detector.Result{AI: 1}.Percent())
}
