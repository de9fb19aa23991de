package amqp

import (
	"encoding/json"
	"time"
)

// RefreshRequestMessage asks the worker to pull the source table and rebuild
// the snapshot. It carries no data, the worker fetches everything itself.
type RefreshRequestMessage struct {
	Reason      string    `json:"reason"`
	RequestedBy string    `json:"requested_by"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRefreshRequestMessage creates a refresh request
func NewRefreshRequestMessage(reason, requestedBy string) *RefreshRequestMessage {
	return &RefreshRequestMessage{
		Reason:      reason,
		RequestedBy: requestedBy,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshRequestMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshRequestMessageFromJSON creates a message from JSON bytes
func RefreshRequestMessageFromJSON(data []byte) (*RefreshRequestMessage, error) {
	var msg RefreshRequestMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RefreshCompletedMessage announces a finished snapshot replacement so other
// consumers can invalidate caches.
type RefreshCompletedMessage struct {
	Source      string    `json:"source"`
	RowCount    int       `json:"row_count"`
	TotalAmount float64   `json:"total_amount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewRefreshCompletedMessage creates a completion event
func NewRefreshCompletedMessage(source string, rowCount int, totalAmount float64) *RefreshCompletedMessage {
	return &RefreshCompletedMessage{
		Source:      source,
		RowCount:    rowCount,
		TotalAmount: totalAmount,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RefreshCompletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RefreshCompletedMessageFromJSON creates a message from JSON bytes
func RefreshCompletedMessageFromJSON(data []byte) (*RefreshCompletedMessage, error) {
	var msg RefreshCompletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
