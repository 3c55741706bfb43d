// Package testutil holds in-memory fakes of the bot's external collaborators.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/bluesky-social/aibot/detector"
	"github.com/bluesky-social/aibot/social"
)

type PostedReply struct {
	Text  string
	Reply social.ReplyRef
}

// FakeNetwork is a social.Network backed by maps. It is safe for concurrent use and records every
// call it receives.
type FakeNetwork struct {
	mu sync.Mutex

	Threads       map[string]*social.Thread
	ThreadErrs    map[string]error
	Notifications []social.Notification
	ListErr       error
	PostErr       error

	ThreadCalls []string
	ListCalls   [][]string
	Posted      []PostedReply
}

func NewFakeNetwork() *FakeNetwork {
	return &FakeNetwork{
		Threads:    make(map[string]*social.Thread),
		ThreadErrs: make(map[string]error),
	}
}

// AddThread registers a thread rooted at post, with the given direct replies.
func (f *FakeNetwork) AddThread(post social.Post, replies ...social.Post) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Threads[post.URI] = &social.Thread{Post: post, Replies: replies}
}

func (f *FakeNetwork) GetPostThread(ctx context.Context, uri string, depth int64) (*social.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ThreadCalls = append(f.ThreadCalls, uri)
	if err, ok := f.ThreadErrs[uri]; ok {
		return nil, err
	}
	th, ok := f.Threads[uri]
	if !ok {
		return nil, fmt.Errorf("%w: %s", social.ErrNotFound, uri)
	}
	cp := *th
	return &cp, nil
}

func (f *FakeNetwork) ListNotifications(ctx context.Context, limit int64, reasons []string) ([]social.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls = append(f.ListCalls, reasons)
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	var out []social.Notification
	for _, n := range f.Notifications {
		if int64(len(out)) >= limit {
			break
		}
		if len(reasons) > 0 && !contains(reasons, n.Reason) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (f *FakeNetwork) CreatePost(ctx context.Context, text string, reply social.ReplyRef) (social.StrongRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PostErr != nil {
		return social.StrongRef{}, f.PostErr
	}
	f.Posted = append(f.Posted, PostedReply{Text: text, Reply: reply})
	n := len(f.Posted)
	return social.StrongRef{
		URI: fmt.Sprintf("at://did:plc:bot/app.bsky.feed.post/reply%d", n),
		CID: fmt.Sprintf("bafyreply%d", n),
	}, nil
}

// Replies returns a snapshot of the posts created so far.
func (f *FakeNetwork) Replies() []PostedReply {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PostedReply(nil), f.Posted...)
}

// FetchedThreads returns a snapshot of every URI passed to GetPostThread.
func (f *FakeNetwork) FetchedThreads() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ThreadCalls...)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// FakeClassifier returns Scores[imageURL] (or Default) and records each call.
type FakeClassifier struct {
	mu sync.Mutex

	Scores  map[string]float64
	Default float64
	Err     error
	Calls   []string
}

func (f *FakeClassifier) Classify(ctx context.Context, imageURL string) (detector.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, imageURL)
	if f.Err != nil {
		return detector.Result{}, f.Err
	}
	if s, ok := f.Scores[imageURL]; ok {
		return detector.Result{AI: s}, nil
	}
	return detector.Result{AI: f.Default}, nil
}

func (f *FakeClassifier) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Calls)
}
