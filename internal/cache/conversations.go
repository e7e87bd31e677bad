package cache

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Conversation groups the transcript entries of one chat run with an agent.
type Conversation struct {
	ID        string
	Agent     string
	StartedAt time.Time
}

// StartConversation records a new conversation for the agent under a fresh id.
func (d *DB) StartConversation(agent string) (*Conversation, error) {
	c := &Conversation{
		ID:        uuid.NewString(),
		Agent:     agent,
		StartedAt: time.Now(),
	}
	_, err := d.db.Exec(`INSERT INTO conversations (id, agent, started_at) VALUES (?, ?, ?)`,
		c.ID, c.Agent, c.StartedAt.Unix())
	if err != nil {
		return nil, err
	}
	return c, nil
}

// LatestConversation returns the most recent conversation for the agent,
// or nil when the agent has none yet.
func (d *DB) LatestConversation(agent string) (*Conversation, error) {
	row := d.db.QueryRow(`SELECT id, agent, started_at FROM conversations
		WHERE agent = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, agent)

	var c Conversation
	var startedAt int64
	err := row.Scan(&c.ID, &c.Agent, &startedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.StartedAt = time.Unix(startedAt, 0)
	return &c, nil
}
