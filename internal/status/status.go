package status

// Status represents the lifecycle state of a fetch job.
type Status = int32

const (
	Queued Status = iota
	Active
	Completed
	Failed
	Cancelled
)

// String returns a human readable label for a status.
func String(s Status) string {
	switch s {
	case Queued:
		return "queued"
	case Active:
		return "active"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}
