package imessage

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appleNS(t time.Time) int64 {
	return (t.Unix() - appleEpochOffset) * 1e9
}

// newFixtureDB creates a minimal chat.db with two handles, a direct chat, a
// group chat, and a handful of messages including a tapback and an
// attributedBody-only row.
func newFixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chat.db")

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	schema := []string{
		`CREATE TABLE handle (ROWID INTEGER PRIMARY KEY, id TEXT, service TEXT)`,
		`CREATE TABLE chat (ROWID INTEGER PRIMARY KEY, chat_identifier TEXT, display_name TEXT, service_name TEXT)`,
		`CREATE TABLE chat_handle_join (chat_id INTEGER, handle_id INTEGER)`,
		`CREATE TABLE message (
			ROWID INTEGER PRIMARY KEY,
			text TEXT,
			attributedBody BLOB,
			is_from_me INTEGER DEFAULT 0,
			date INTEGER,
			date_read INTEGER,
			date_delivered INTEGER,
			service TEXT,
			cache_has_attachments INTEGER DEFAULT 0,
			handle_id INTEGER,
			associated_message_type INTEGER DEFAULT 0
		)`,
		`CREATE TABLE chat_message_join (chat_id INTEGER, message_id INTEGER)`,
	}
	for _, stmt := range schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}

	_, err = db.Exec(`INSERT INTO handle (ROWID, id, service) VALUES
		(1, '+15551234567', 'iMessage'),
		(2, 'friend@example.com', 'iMessage')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO chat (ROWID, chat_identifier, display_name, service_name) VALUES
		(1, '+15551234567', '', 'iMessage'),
		(2, 'chat123456', 'Group Chat', 'iMessage')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO chat_handle_join (chat_id, handle_id) VALUES
		(1, 1), (2, 1), (2, 2)`)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	insert := `INSERT INTO message
		(ROWID, text, attributedBody, is_from_me, date, date_delivered, service, handle_id, associated_message_type)
		VALUES (?, ?, ?, ?, ?, ?, 'iMessage', ?, ?)`

	rows := []struct {
		id       int
		text     any
		body     any
		fromMe   int
		at       time.Time
		handleID int
		assoc    int
	}{
		{1, "hey, you around?", nil, 0, base, 1, 0},
		{2, "yeah what's up", nil, 1, base.Add(time.Minute), 1, 0},
		{3, nil, []byte("NSString\x00recovered from attributed body\x00"), 1, base.Add(2 * time.Minute), 1, 0},
		{4, "Loved “yeah what's up”", nil, 1, base.Add(3 * time.Minute), 1, 2000}, // tapback
		{5, "group hello", nil, 0, base.Add(4 * time.Minute), 2, 0},
	}
	for _, r := range rows {
		_, err = db.Exec(insert, r.id, r.text, r.body, r.fromMe, appleNS(r.at), appleNS(r.at), r.handleID, r.assoc)
		require.NoError(t, err)
	}

	_, err = db.Exec(`INSERT INTO chat_message_join (chat_id, message_id) VALUES
		(1, 1), (1, 2), (1, 3), (1, 4), (2, 5)`)
	require.NoError(t, err)

	return path
}

func openFixture(t *testing.T) *Extractor {
	t.Helper()
	e, err := Open(newFixtureDB(t))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestOpen_MissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.db"))
	assert.Error(t, err)
}

func TestAppleTime(t *testing.T) {
	want := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	// Nanosecond format.
	got := appleTime(sql.NullInt64{Int64: appleNS(want), Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, want.Unix(), got.Unix())

	// Second format (older databases).
	got = appleTime(sql.NullInt64{Int64: want.Unix() - appleEpochOffset, Valid: true})
	require.NotNil(t, got)
	assert.Equal(t, want.Unix(), got.Unix())

	assert.Nil(t, appleTime(sql.NullInt64{}))
	assert.Nil(t, appleTime(sql.NullInt64{Int64: 0, Valid: true}))
}

func TestContacts(t *testing.T) {
	e := openFixture(t)

	contacts, err := e.Contacts()
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "+15551234567", contacts[0].Identifier)
	assert.Equal(t, "friend@example.com", contacts[1].Identifier)
}

func TestChats_GroupDetection(t *testing.T) {
	e := openFixture(t)

	chats, err := e.Chats()
	require.NoError(t, err)
	require.Len(t, chats, 2)

	assert.False(t, chats[0].IsGroup)
	assert.Len(t, chats[0].Participants, 1)

	assert.True(t, chats[1].IsGroup)
	assert.Equal(t, "Group Chat", chats[1].DisplayName)
	assert.Len(t, chats[1].Participants, 2)
}

func TestMessages_All(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.Messages(Query{})
	require.NoError(t, err)
	require.Len(t, msgs, 5)

	// Ordered oldest first.
	assert.Equal(t, "hey, you around?", msgs[0].Text)
	assert.False(t, msgs[0].IsFromMe)
	require.NotNil(t, msgs[0].Timestamp)
	assert.Equal(t, time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC).Unix(), msgs[0].Timestamp.Unix())
}

func TestMessages_OnlyFromMe(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.Messages(Query{OnlyFromMe: true})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.True(t, m.IsFromMe)
		assert.Equal(t, "me", m.Sender)
	}
}

func TestMessages_DirectOnly(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.Messages(Query{DirectOnly: true})
	require.NoError(t, err)
	for _, m := range msgs {
		assert.EqualValues(t, 1, m.ChatID)
	}
	assert.Len(t, msgs, 4)
}

func TestMessages_ByChat(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.Messages(Query{ChatID: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "group hello", msgs[0].Text)
}

func TestMessages_Limit(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.Messages(Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestMyTexts_SkipsTapbacksAndDecodesBlobs(t *testing.T) {
	e := openFixture(t)

	msgs, err := e.MyTexts(Query{})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, "yeah what's up", msgs[0].Text)
	assert.Equal(t, "recovered from attributed body", msgs[1].Text)
	for _, m := range msgs {
		assert.True(t, m.IsFromMe)
	}
}

func TestGetConversation(t *testing.T) {
	e := openFixture(t)

	conv, err := e.GetConversation("+15551234567")
	require.NoError(t, err)

	assert.Equal(t, "+15551234567", conv.Contact)
	assert.Equal(t, 4, conv.MessageCount)
	assert.EqualValues(t, 1, conv.ChatID)
	require.NotNil(t, conv.FirstMessage)
	require.NotNil(t, conv.LastMessage)
	assert.True(t, conv.LastMessage.After(*conv.FirstMessage))
}

func TestGetStats(t *testing.T) {
	e := openFixture(t)

	stats, err := e.GetStats()
	require.NoError(t, err)

	assert.Equal(t, 5, stats.TotalMessages)
	assert.Equal(t, 3, stats.MessagesFromMe)
	assert.Equal(t, 2, stats.MessagesToMe)
	assert.Equal(t, 2, stats.TotalChats)
	assert.Equal(t, 2, stats.TotalContacts)
}
