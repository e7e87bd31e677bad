package cache

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Message roles as stored in the transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat transcript entry.
type Message struct {
	ID             int64
	ConversationID string
	Agent          string
	Role           string
	Content        string
	Citations      []string
	CreatedAt      time.Time
}

// AppendMessage stores a transcript entry. A zero CreatedAt is filled in
// with the current time.
func (d *DB) AppendMessage(m *Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	var citations sql.NullString
	if len(m.Citations) > 0 {
		data, err := json.Marshal(m.Citations)
		if err != nil {
			return err
		}
		citations = sql.NullString{String: string(data), Valid: true}
	}

	res, err := d.db.Exec(`INSERT INTO messages
		(conversation_id, agent, role, content, citations, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ConversationID, m.Agent, m.Role, m.Content, citations, m.CreatedAt.Unix())
	if err != nil {
		return err
	}
	m.ID, _ = res.LastInsertId()
	return nil
}

// RecentMessages returns the newest limit transcript entries for the agent,
// oldest first.
func (d *DB) RecentMessages(agent string, limit int) ([]*Message, error) {
	rows, err := d.db.Query(`SELECT id, conversation_id, agent, role, content, citations, created_at
		FROM messages WHERE agent = ? ORDER BY id DESC LIMIT ?`, agent, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		var citations sql.NullString
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Agent, &m.Role, &m.Content, &citations, &createdAt); err != nil {
			return nil, err
		}
		if citations.Valid && citations.String != "" {
			if err := json.Unmarshal([]byte(citations.String), &m.Citations); err != nil {
				return nil, err
			}
		}
		m.CreatedAt = time.Unix(createdAt, 0)
		msgs = append(msgs, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query runs newest-first to apply the limit; flip to reading order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
