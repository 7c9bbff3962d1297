// Package imessage reads the macOS Messages database (chat.db) and extracts
// conversations and sent-message histories in the shape the profile API
// accepts. The database is always opened read-only so no WAL files are
// created next to the user's copy.
package imessage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// appleEpochOffset is the offset of Apple's timestamp epoch (2001-01-01)
// from the Unix epoch, in seconds.
const appleEpochOffset = 978307200

// Contact is one handle (phone number or email) in the database.
type Contact struct {
	HandleID   int64  `json:"handle_id"`
	Identifier string `json:"identifier"`
	Service    string `json:"service"`
}

// Chat is one thread, direct or group.
type Chat struct {
	ChatID         int64    `json:"chat_id"`
	ChatIdentifier string   `json:"chat_identifier"`
	DisplayName    string   `json:"display_name"`
	Service        string   `json:"service"`
	Participants   []string `json:"participants"`
	IsGroup        bool     `json:"is_group"`
}

// StoreMessage is one message row with delivery metadata.
type StoreMessage struct {
	MessageID      int64      `json:"message_id"`
	Text           string     `json:"text"`
	IsFromMe       bool       `json:"is_from_me"`
	Timestamp      *time.Time `json:"timestamp"`
	DateRead       *time.Time `json:"date_read,omitempty"`
	DateDelivered  *time.Time `json:"date_delivered,omitempty"`
	Service        string     `json:"service"`
	HasAttachments bool       `json:"has_attachments"`
	Sender         string     `json:"sender"`
	ChatID         int64      `json:"chat_id"`
	ChatIdentifier string     `json:"chat_identifier"`
	ChatName       string     `json:"chat_name"`
}

// Conversation is a full thread with one contact.
type Conversation struct {
	Contact      string         `json:"contact"`
	ChatID       int64          `json:"chat_id,omitempty"`
	ChatName     string         `json:"chat_name,omitempty"`
	MessageCount int            `json:"message_count"`
	FirstMessage *time.Time     `json:"first_message,omitempty"`
	LastMessage  *time.Time     `json:"last_message,omitempty"`
	Messages     []StoreMessage `json:"messages"`
}

// Stats summarizes the database.
type Stats struct {
	TotalMessages  int `json:"total_messages"`
	MessagesFromMe int `json:"messages_from_me"`
	MessagesToMe   int `json:"messages_to_me"`
	TotalChats     int `json:"total_chats"`
	TotalContacts  int `json:"total_contacts"`
}

// Query filters message extraction. Zero values mean "no filter".
type Query struct {
	ChatID     int64
	Contact    string
	Limit      int
	OnlyFromMe bool
	OnlyToMe   bool
	DirectOnly bool
}

// Extractor reads a chat.db file.
type Extractor struct {
	db *sql.DB
}

// Open opens a chat.db file read-only.
func Open(path string) (*Extractor, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Extractor{db: db}, nil
}

// Close closes the database.
func (e *Extractor) Close() error {
	return e.db.Close()
}

// appleTime converts an Apple timestamp (seconds or nanoseconds since
// 2001-01-01) to wall-clock time. NULL and zero timestamps yield nil.
func appleTime(raw sql.NullInt64) *time.Time {
	if !raw.Valid || raw.Int64 == 0 {
		return nil
	}
	v := raw.Int64
	// Newer databases store nanoseconds.
	if v > 1e12 {
		v = v / 1e9
	}
	t := time.Unix(v+appleEpochOffset, 0)
	return &t
}

// Contacts returns every handle, ordered by identifier.
func (e *Extractor) Contacts() ([]Contact, error) {
	rows, err := e.db.Query(`
		SELECT h.ROWID, h.id, COALESCE(h.service, '')
		FROM handle h
		ORDER BY h.id`)
	if err != nil {
		return nil, fmt.Errorf("querying handles: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.HandleID, &c.Identifier, &c.Service); err != nil {
			return nil, fmt.Errorf("scanning handle: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Chats returns every thread with its participant handles.
func (e *Extractor) Chats() ([]Chat, error) {
	rows, err := e.db.Query(`
		SELECT c.ROWID, COALESCE(c.chat_identifier, ''), COALESCE(c.display_name, ''),
		       COALESCE(c.service_name, ''), COALESCE(GROUP_CONCAT(h.id), '')
		FROM chat c
		LEFT JOIN chat_handle_join chj ON c.ROWID = chj.chat_id
		LEFT JOIN handle h ON chj.handle_id = h.ROWID
		GROUP BY c.ROWID
		ORDER BY c.ROWID`)
	if err != nil {
		return nil, fmt.Errorf("querying chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var c Chat
		var participants string
		if err := rows.Scan(&c.ChatID, &c.ChatIdentifier, &c.DisplayName, &c.Service, &participants); err != nil {
			return nil, fmt.Errorf("scanning chat: %w", err)
		}
		if participants != "" {
			c.Participants = strings.Split(participants, ",")
		}
		c.IsGroup = len(c.Participants) > 1
		out = append(out, c)
	}
	return out, rows.Err()
}

// Messages extracts messages matching the query, ordered oldest first.
func (e *Extractor) Messages(q Query) ([]StoreMessage, error) {
	query := `
		SELECT m.ROWID, COALESCE(m.text, ''), m.is_from_me,
		       m.date, m.date_read, m.date_delivered,
		       COALESCE(m.service, ''), m.cache_has_attachments,
		       COALESCE(h.id, ''), COALESCE(c.ROWID, 0),
		       COALESCE(c.chat_identifier, ''), COALESCE(c.display_name, '')
		FROM message m
		LEFT JOIN handle h ON m.handle_id = h.ROWID
		LEFT JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
		LEFT JOIN chat c ON cmj.chat_id = c.ROWID
		WHERE 1=1`

	var args []any
	if q.ChatID != 0 {
		query += " AND c.ROWID = ?"
		args = append(args, q.ChatID)
	}
	if q.Contact != "" {
		query += " AND (h.id LIKE ? OR c.chat_identifier LIKE ?)"
		pattern := "%" + q.Contact + "%"
		args = append(args, pattern, pattern)
	}
	if q.DirectOnly {
		query += ` AND c.ROWID IN (
			SELECT chat_id FROM chat_handle_join
			GROUP BY chat_id
			HAVING COUNT(*) = 1
		)`
	}
	if q.OnlyFromMe {
		query += " AND m.is_from_me = 1"
	} else if q.OnlyToMe {
		query += " AND m.is_from_me = 0"
	}
	query += " ORDER BY m.date ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var out []StoreMessage
	for rows.Next() {
		var m StoreMessage
		var isFromMe, hasAttachments int
		var date, dateRead, dateDelivered sql.NullInt64
		var sender string
		if err := rows.Scan(&m.MessageID, &m.Text, &isFromMe,
			&date, &dateRead, &dateDelivered,
			&m.Service, &hasAttachments,
			&sender, &m.ChatID, &m.ChatIdentifier, &m.ChatName); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}
		m.IsFromMe = isFromMe == 1
		m.HasAttachments = hasAttachments == 1
		m.Timestamp = appleTime(date)
		m.DateRead = appleTime(dateRead)
		m.DateDelivered = appleTime(dateDelivered)
		if m.IsFromMe {
			m.Sender = "me"
		} else {
			m.Sender = sender
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetConversation returns the full 1-on-1 thread with a contact.
func (e *Extractor) GetConversation(contact string) (*Conversation, error) {
	msgs, err := e.Messages(Query{Contact: contact, DirectOnly: true})
	if err != nil {
		return nil, err
	}

	conv := &Conversation{
		Contact:      contact,
		MessageCount: len(msgs),
		Messages:     msgs,
	}
	if len(msgs) > 0 {
		conv.ChatID = msgs[0].ChatID
		conv.ChatName = msgs[0].ChatName
		conv.FirstMessage = msgs[0].Timestamp
		conv.LastMessage = msgs[len(msgs)-1].Timestamp
	}
	return conv, nil
}

// MyTexts returns messages the user sent, excluding reactions and tapbacks.
// Messages whose text lives only in the attributedBody blob are decoded
// best-effort; rows with no recoverable text are skipped.
func (e *Extractor) MyTexts(q Query) ([]StoreMessage, error) {
	query := `
		SELECT m.ROWID, COALESCE(m.text, ''), m.attributedBody,
		       m.date, m.date_delivered,
		       COALESCE(m.service, ''), m.cache_has_attachments,
		       COALESCE(h.id, ''), COALESCE(c.ROWID, 0),
		       COALESCE(c.chat_identifier, ''), COALESCE(c.display_name, '')
		FROM message m
		LEFT JOIN handle h ON m.handle_id = h.ROWID
		LEFT JOIN chat_message_join cmj ON m.ROWID = cmj.message_id
		LEFT JOIN chat c ON cmj.chat_id = c.ROWID
		WHERE m.is_from_me = 1
		  AND (m.text IS NOT NULL OR m.attributedBody IS NOT NULL)
		  AND m.associated_message_type = 0`

	var args []any
	if q.ChatID != 0 {
		query += " AND c.ROWID = ?"
		args = append(args, q.ChatID)
	}
	if q.Contact != "" {
		query += " AND (h.id LIKE ? OR c.chat_identifier LIKE ?)"
		pattern := "%" + q.Contact + "%"
		args = append(args, pattern, pattern)
	}
	query += " ORDER BY m.date ASC"
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := e.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sent messages: %w", err)
	}
	defer rows.Close()

	var out []StoreMessage
	for rows.Next() {
		var m StoreMessage
		var attributedBody []byte
		var hasAttachments int
		var date, dateDelivered sql.NullInt64
		var recipient string
		if err := rows.Scan(&m.MessageID, &m.Text, &attributedBody,
			&date, &dateDelivered,
			&m.Service, &hasAttachments,
			&recipient, &m.ChatID, &m.ChatIdentifier, &m.ChatName); err != nil {
			return nil, fmt.Errorf("scanning sent message: %w", err)
		}
		if m.Text == "" {
			m.Text = decodeAttributedBody(attributedBody)
		}
		if m.Text == "" {
			continue
		}
		m.IsFromMe = true
		m.Sender = recipient
		m.HasAttachments = hasAttachments == 1
		m.Timestamp = appleTime(date)
		m.DateDelivered = appleTime(dateDelivered)
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetStats summarizes the database contents.
func (e *Extractor) GetStats() (*Stats, error) {
	var s Stats
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM message`).Scan(&s.TotalMessages); err != nil {
		return nil, fmt.Errorf("counting messages: %w", err)
	}
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM message WHERE is_from_me = 1`).Scan(&s.MessagesFromMe); err != nil {
		return nil, fmt.Errorf("counting sent messages: %w", err)
	}
	s.MessagesToMe = s.TotalMessages - s.MessagesFromMe
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM chat`).Scan(&s.TotalChats); err != nil {
		return nil, fmt.Errorf("counting chats: %w", err)
	}
	if err := e.db.QueryRow(`SELECT COUNT(*) FROM handle`).Scan(&s.TotalContacts); err != nil {
		return nil, fmt.Errorf("counting handles: %w", err)
	}
	return &s, nil
}
