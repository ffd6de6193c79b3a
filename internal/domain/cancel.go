package domain

// CancelReason is an entry from the platform's cancellation reason list.
// A reason must be selected before a cancellation can be submitted.
type CancelReason struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
