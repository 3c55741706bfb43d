package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMention(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	root := StrongRef{URI: "at://did:plc:abc123/app.bsky.feed.post/rkey123", CID: "bafyroot"}
	n := Notification{
		URI:    "at://did:plc:321abc/app.bsky.feed.post/rkey456",
		Reason: ReasonMention,
		Reply:  &ReplyRef{Root: root, Parent: root},
	}
	m, err := DecodeMention(n)
	require.NoError(err)
	rm, ok := m.(ReplyMention)
	require.True(ok)
	assert.Equal(root, rm.Root)
	assert.Equal(n.URI, rm.Source().URI)

	m, err = DecodeMention(Notification{URI: "at://did:plc:321abc/app.bsky.feed.post/rkey789"})
	require.NoError(err)
	_, ok = m.(TopLevelMention)
	assert.True(ok)

	m, err = DecodeMention(Notification{Reply: &ReplyRef{Parent: root}})
	require.NoError(err)
	_, ok = m.(TopLevelMention)
	assert.True(ok)

	_, err = DecodeMention(Notification{Reply: &ReplyRef{Root: StrongRef{URI: "https://example.com/not-an-at-uri"}}})
	assert.ErrorIs(err, ErrInvalidMention)
}
