// Package social reads posts, threads, and notifications from Bluesky and publishes reply posts.
//
// Callers go through the Network interface. XRPCNetwork is the production implementation, and
// internal/testutil provides an in-memory fake.
package social

import (
	"context"
	"fmt"
	"strings"
)

// GetPost fetches the post at uri (with direct replies) and returns only the post itself.
func GetPost(ctx context.Context, net Network, uri string) (*Post, error) {
	th, err := net.GetPostThread(ctx, uri, 1)
	if err != nil {
		return nil, err
	}
	return &th.Post, nil
}

// ImagesOfPost returns the thumbnail URL of each image attached to the post. A post without
// images yields an empty slice.
func ImagesOfPost(post *Post) []string {
	out := []string{}
	if post == nil {
		return out
	}
	for _, img := range post.Images {
		if img.Thumb == "" {
			continue
		}
		out = append(out, img.Thumb)
	}
	return out
}

// GetNotifications fetches the most recent NotificationLimit notifications, optionally
// restricted to the given reasons.
func GetNotifications(ctx context.Context, net Network, reasons ...string) ([]Notification, error) {
	var filter []string
	if len(reasons) > 0 {
		filter = reasons
	}
	return net.ListNotifications(ctx, NotificationLimit, filter)
}

// AlreadyReplied reports whether botHandle authored any direct reply to the post at uri. An empty
// uri is treated as "not yet replied" without touching the network.
func AlreadyReplied(ctx context.Context, net Network, uri, botHandle string) (bool, error) {
	if uri == "" {
		return false, nil
	}
	th, err := net.GetPostThread(ctx, uri, 1)
	if err != nil {
		return false, err
	}
	for _, r := range th.Replies {
		if strings.EqualFold(r.AuthorHandle, botHandle) {
			return true, nil
		}
	}
	return false, nil
}

// RespondToComment publishes text as a reply to parent, inside the thread rooted at root.
func RespondToComment(ctx context.Context, net Network, text string, root, parent StrongRef) (StrongRef, error) {
	if root.URI == "" || parent.URI == "" {
		return StrongRef{}, fmt.Errorf("reply needs both root and parent references")
	}
	return net.CreatePost(ctx, text, ReplyRef{Root: root, Parent: parent})
}
