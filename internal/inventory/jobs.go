package inventory

import "github.com/saltyorg/partsroom/internal/database"

// RecordJob appends a job. Nothing is validated; the username is lowercased.
func (s *Service) RecordJob(username, time, partStoreName, partsUsed string) (*database.Job, error) {
	job := &database.Job{
		Username:      username,
		Time:          time,
		PartStoreName: partStoreName,
		PartsUsed:     partsUsed,
	}
	if err := s.db.CreateJob(job); err != nil {
		return nil, err
	}

	s.publish(EventJobRecorded, job)
	return job, nil
}

// GetJobs returns every recorded job
func (s *Service) GetJobs() ([]*database.Job, error) {
	return s.db.ListJobs()
}
