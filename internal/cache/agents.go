package cache

import (
	"database/sql"
	"encoding/json"
	"time"
)

const agentListKey = "default"

// GetAgents retrieves the cached agent list.
// Returns (names, isFresh, error). names is nil on cache miss.
func (d *DB) GetAgents(ttl time.Duration) ([]string, bool, error) {
	row := d.db.QueryRow(`SELECT names, fetched_at FROM agent_lists WHERE list_key = ?`, agentListKey)

	var namesJSON string
	var fetchedAt int64
	err := row.Scan(&namesJSON, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var names []string
	if err := json.Unmarshal([]byte(namesJSON), &names); err != nil {
		return nil, false, err
	}

	isFresh := time.Since(time.Unix(fetchedAt, 0)) < ttl
	return names, isFresh, nil
}

// PutAgents stores the agent list in the cache.
func (d *DB) PutAgents(names []string) error {
	namesJSON, err := json.Marshal(names)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`INSERT OR REPLACE INTO agent_lists (list_key, names, fetched_at) VALUES (?, ?, ?)`,
		agentListKey, string(namesJSON), time.Now().Unix())
	return err
}
