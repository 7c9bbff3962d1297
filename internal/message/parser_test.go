package message

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "hey there", "hey there"},
		{"attachment placeholder", "look at this ￼", "look at this"},
		{"only placeholder", "￼", ""},
		{"collapses whitespace", "  hey   there \n ok ", "hey there ok"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Clean(tt.in))
		})
	}
}

func TestIsArtifact(t *testing.T) {
	assert.True(t, IsArtifact("&__kIMReactionName"))
	assert.True(t, IsArtifact("__kIMMessagePartAttributeName"))
	assert.False(t, IsArtifact("hey __kIM is a weird string"))
	assert.False(t, IsArtifact("hello"))
}

func TestFilter_DropsArtifactsAndSorts(t *testing.T) {
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	msgs := []Message{
		{ID: "3", Text: "third", Timestamp: base.Add(2 * time.Minute)},
		{ID: "r", Text: "&__kIMReaction", Timestamp: base},
		{ID: "1", Text: "first", Timestamp: base},
		{ID: "e", Text: "￼", Timestamp: base},
		{ID: "2", Text: "second", Timestamp: base.Add(time.Minute)},
	}

	got := Filter(msgs, "conv-1")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{got[0].Text, got[1].Text, got[2].Text})
	for _, m := range got {
		assert.Equal(t, "conv-1", m.ConversationID)
	}
}

func TestFilter_KeepsExistingConversationID(t *testing.T) {
	msgs := []Message{{ID: "1", Text: "hi", ConversationID: "thread-9"}}
	got := Filter(msgs, "default")
	require.Len(t, got, 1)
	assert.Equal(t, "thread-9", got[0].ConversationID)
}

func TestParseExport_WrappedShape(t *testing.T) {
	data := []byte(`{
		"conversation_id": "chat-1",
		"participants": ["me", "them"],
		"messages": [
			{"id": "1", "text": "hello", "sender_id": "them", "is_from_me": false},
			{"id": "2", "text": "hi!", "sender_id": "me", "is_from_me": true}
		]
	}`)

	msgs, err := ParseExport(data)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "chat-1", msgs[0].ConversationID)
}

func TestParseExport_BareArray(t *testing.T) {
	data := []byte(`[{"id": "1", "text": "hello"}]`)

	msgs, err := ParseExport(data)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
}

func TestParseExport_Invalid(t *testing.T) {
	_, err := ParseExport([]byte(`not json`))
	assert.Error(t, err)
}

func TestFromTexts(t *testing.T) {
	msgs := FromTexts([]string{"hey", "&__kIMReaction", "", "what's up"}, "alice")
	require.Len(t, msgs, 2)
	assert.Equal(t, "hey", msgs[0].Text)
	assert.Equal(t, "what's up", msgs[1].Text)
	assert.True(t, msgs[0].IsFromMe)
	assert.Equal(t, "alice", msgs[0].SenderID)
}
