package models

import "time"

// ConnectionState is one side's view of a relationship.
type ConnectionState string

const (
	ConnectionNone            ConnectionState = ""
	ConnectionConnected       ConnectionState = "connected"
	ConnectionPendingSent     ConnectionState = "pending_sent"
	ConnectionPendingReceived ConnectionState = "pending_received"
)

type ConnectionStatus string

const (
	ConnectionStatusPending   ConnectionStatus = "pending"
	ConnectionStatusConnected ConnectionStatus = "connected"
)

// Connection is the single stored record for an unordered pair of users.
// UserLow < UserHigh always holds.
type Connection struct {
	UserLow     string
	UserHigh    string
	RequesterID string
	Status      ConnectionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OrderPair returns the two ids in storage order.
func OrderPair(a, b string) (string, string) {
	if a <= b {
		return a, b
	}
	return b, a
}

func NewConnectionRequest(fromID, toID string) Connection {
	low, high := OrderPair(fromID, toID)
	return Connection{
		UserLow:     low,
		UserHigh:    high,
		RequesterID: fromID,
		Status:      ConnectionStatusPending,
	}
}

func (c Connection) Involves(userID string) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

func (c Connection) Peer(viewerID string) string {
	if c.UserLow == viewerID {
		return c.UserHigh
	}
	return c.UserLow
}

// StateFor derives the viewer's side of the relationship.
func (c Connection) StateFor(viewerID string) ConnectionState {
	if !c.Involves(viewerID) {
		return ConnectionNone
	}
	if c.Status == ConnectionStatusConnected {
		return ConnectionConnected
	}
	if c.RequesterID == viewerID {
		return ConnectionPendingSent
	}
	return ConnectionPendingReceived
}

// ConnectionMap builds the viewer's peer -> state map from stored rows.
func ConnectionMap(viewerID string, conns []Connection) map[string]ConnectionState {
	out := make(map[string]ConnectionState, len(conns))
	for _, c := range conns {
		if state := c.StateFor(viewerID); state != ConnectionNone {
			out[c.Peer(viewerID)] = state
		}
	}
	return out
}
