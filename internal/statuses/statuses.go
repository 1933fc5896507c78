package statuses

const (
	StatusInProgress = "in_progress"
	StatusOver       = "over"
)
