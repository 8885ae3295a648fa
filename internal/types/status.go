package types

import (
	"encoding/json"
	"fmt"
)

// JobStatus represents the lifecycle state of a sync job.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// String returns the string representation of JobStatus
func (s JobStatus) String() string {
	return string(s)
}

// IsValid checks if the JobStatus is a valid value
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusRunning, JobStatusSucceeded, JobStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the job can no longer change state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// MarshalJSON implements json.Marshaler
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := JobStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid job status: %s", str)
	}

	*s = status
	return nil
}

// SourceStatus represents the per-source outcome of a sync run.
type SourceStatus string

const (
	SourceStatusSuccess SourceStatus = "success"
	SourceStatusError   SourceStatus = "error"
)

// String returns the string representation of SourceStatus
func (s SourceStatus) String() string {
	return string(s)
}

// IsValid checks if the SourceStatus is a valid value
func (s SourceStatus) IsValid() bool {
	switch s {
	case SourceStatusSuccess, SourceStatusError:
		return true
	default:
		return false
	}
}

// MarshalJSON implements json.Marshaler
func (s SourceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler
func (s *SourceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status := SourceStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid source status: %s", str)
	}

	*s = status
	return nil
}
