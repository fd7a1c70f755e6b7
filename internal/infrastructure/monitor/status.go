package monitor

import "time"

// Status is the latest connectivity snapshot.
type Status struct {
	NetworkReachable  bool      `json:"network_reachable"`
	InternetReachable bool      `json:"internet_reachable"`
	LastCheck         time.Time `json:"last_check"`
	LastError         string    `json:"last_error,omitempty"`
}

// Connected reports whether the store can be reached: a LAN without an internet route does not count.
func (s Status) Connected() bool {
	return s.NetworkReachable && s.InternetReachable
}

// Event is a connectivity transition.
type Event int

const (
	BecameUnreachable Event = iota
	BecameReachable
)

func (e Event) String() string {
	if e == BecameReachable {
		return "became_reachable"
	}
	return "became_unreachable"
}
