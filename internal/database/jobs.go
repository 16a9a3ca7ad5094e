package database

import (
	"fmt"
	"strings"
)

// Job is one entry in the append-only log of completed work.
type Job struct {
	ID            int64  `json:"job_id"`
	Username      string `json:"username"`
	Time          string `json:"time"`
	PartStoreName string `json:"part_store_name"`
	PartsUsed     string `json:"parts_used"`
}

// CreateJob appends a job record. The username is stored lowercased.
func (db *DB) CreateJob(j *Job) error {
	j.Username = strings.ToLower(j.Username)
	result, err := db.exec(`
		INSERT INTO jobs (username, time, part_store_name, parts_used)
		VALUES (?, ?, ?, ?)
	`, j.Username, j.Time, j.PartStoreName, j.PartsUsed)
	if err != nil {
		return fmt.Errorf("failed to record job: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get job id: %w", err)
	}
	j.ID = id
	return nil
}

// ListJobs returns every job in insertion order.
func (db *DB) ListJobs() ([]*Job, error) {
	rows, err := db.query(`
		SELECT job_id, username, time, part_store_name, parts_used
		FROM jobs ORDER BY job_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j := &Job{}
		if err := rows.Scan(&j.ID, &j.Username, &j.Time, &j.PartStoreName, &j.PartsUsed); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
