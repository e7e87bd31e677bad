package cache

import (
	"database/sql"
	"time"
)

// Upload statuses as stored in the log.
const (
	UploadOK      = "ok"
	UploadFailed  = "failed"
	UploadSkipped = "skipped"
)

// Upload is one recorded document upload attempt.
type Upload struct {
	ID          int64
	BatchID     string
	Agent       string
	Filename    string
	VectorStore string
	Status      string
	Error       string
	CreatedAt   time.Time
}

// RecordUpload appends an upload attempt to the log. A zero CreatedAt is
// filled in with the current time.
func (d *DB) RecordUpload(u *Upload) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := d.db.Exec(`INSERT INTO uploads
		(batch_id, agent, filename, vector_store, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nullStr(u.BatchID), u.Agent, u.Filename, nullStr(u.VectorStore),
		u.Status, nullStr(u.Error), u.CreatedAt.Unix())
	if err != nil {
		return err
	}
	u.ID, _ = res.LastInsertId()
	return nil
}

// RecentUploads returns the newest limit upload records, newest first.
func (d *DB) RecentUploads(limit int) ([]*Upload, error) {
	rows, err := d.db.Query(`SELECT id, batch_id, agent, filename, vector_store, status, error, created_at
		FROM uploads ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var uploads []*Upload
	for rows.Next() {
		var u Upload
		var batchID, vectorStore, uploadErr sql.NullString
		var createdAt int64
		if err := rows.Scan(&u.ID, &batchID, &u.Agent, &u.Filename, &vectorStore, &u.Status, &uploadErr, &createdAt); err != nil {
			return nil, err
		}
		u.BatchID = batchID.String
		u.VectorStore = vectorStore.String
		u.Error = uploadErr.String
		u.CreatedAt = time.Unix(createdAt, 0)
		uploads = append(uploads, &u)
	}
	return uploads, rows.Err()
}
