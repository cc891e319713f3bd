package outbox

// OpType identifies the upstream write a queued item carries.
type OpType string

const (
	// OpComplete marks an answer as published upstream.
	OpComplete OpType = "COMPLETE"
	// OpNoChange marks a question as needing no change.
	OpNoChange OpType = "NOCHANGE"
)

// ItemPayload carries the answer fields for answer-bearing operations.
type ItemPayload struct {
	Answer string `json:"answer,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Item is a single pending write operation. Type, Row and Payload are fixed
// at enqueue time; only TryCount, NextAt and Dead change afterwards.
type Item struct {
	ID        string       `json:"id"`
	Type      OpType       `json:"type"`
	Row       int          `json:"row"`
	Payload   *ItemPayload `json:"payload,omitempty"`
	TryCount  int          `json:"tryCount"`
	NextAt    int64        `json:"nextAt"`
	CreatedAt int64        `json:"createdAt"`
	Dead      bool         `json:"dead,omitempty"`
}

// Op describes a new operation to enqueue.
type Op struct {
	Type    OpType
	Row     int
	Payload *ItemPayload
}

func (o Op) validate() error {
	if o.Type != OpComplete && o.Type != OpNoChange {
		return ErrUnknownOpType
	}
	if o.Row < 0 {
		return ErrInvalidRow
	}
	return nil
}
