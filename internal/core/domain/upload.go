package domain

// UploadStatus is the lifecycle of one upload attempt.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "PENDING"
	UploadStatusInProgress UploadStatus = "IN_PROGRESS"
	UploadStatusSucceeded  UploadStatus = "SUCCEEDED"
	UploadStatusFailed     UploadStatus = "FAILED"
)

// UploadSession tracks the progress of a single artifact upload. It is
// transient state owned by the uploader for the duration of one publish
// attempt and discarded once the terminal status has been consumed.
type UploadSession struct {
	Key              string       `json:"key"`
	BytesTransferred int64        `json:"bytes_transferred"`
	TotalBytes       int64        `json:"total_bytes"`
	Status           UploadStatus `json:"status"`
}

// Percent reports upload completion in the range [0,100].
func (s UploadSession) Percent() float64 {
	if s.TotalBytes <= 0 {
		return 0
	}
	return float64(s.BytesTransferred) / float64(s.TotalBytes) * 100
}

// Terminal reports whether the session has reached a final status.
func (s UploadSession) Terminal() bool {
	return s.Status == UploadStatusSucceeded || s.Status == UploadStatusFailed
}
