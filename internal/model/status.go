package model

// Status is the preparation state shared by every line of an order that
// routes to the same dashboard category. It is stored per line but always
// mutated for the whole (order, category) pair at once.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusPreparing Status = "preparing"
	StatusReady     Status = "ready"
	StatusCompleted Status = "completed"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusWaiting, StatusPreparing, StatusReady, StatusCompleted:
		return true
	}
	return false
}

// Next returns the status a manual advance moves a category to.
//
// The forward chain is waiting -> preparing -> ready. A manual action on a
// category that is already ready moves it back to preparing: staff use this
// to undo a premature ready, and only the expiry timer ever writes
// completed. Advancing a completed category is a caller error.
func (s Status) Next() (Status, error) {
	switch s {
	case StatusWaiting:
		return StatusPreparing, nil
	case StatusPreparing:
		return StatusReady, nil
	case StatusReady:
		return StatusPreparing, nil
	case StatusCompleted:
		return "", ErrAlreadyCompleted
	}
	return "", ErrInvalidStatus
}
