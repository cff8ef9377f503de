package domain

// VideoStatus tracks where a video sits in the ingestion lifecycle.
type VideoStatus string

const (
	StatusDiscovered  VideoStatus = "discovered"
	StatusFilteredOut VideoStatus = "filtered_out"
	StatusFilteredIn  VideoStatus = "filtered_in"
	StatusClassified  VideoStatus = "classified"
	StatusSkipped     VideoStatus = "skipped"
	StatusAligned     VideoStatus = "aligned"
	StatusPersisted   VideoStatus = "persisted"
	StatusFailed      VideoStatus = "failed"
)

func (s VideoStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the video will see no further pipeline work.
func (s VideoStatus) IsTerminal() bool {
	switch s {
	case StatusFilteredOut, StatusSkipped, StatusPersisted, StatusFailed:
		return true
	default:
		return false
	}
}
