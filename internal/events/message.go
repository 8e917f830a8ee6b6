package events

import (
	"encoding/json"
	"time"

	"github.com/MrJamesThe3rd/pocket/internal/ledger"
)

// Message is the JSON body published for every ledger event.
type Message struct {
	Kind      string    `json:"kind"`
	IDs       []string  `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMessage(e ledger.Event) Message {
	ids := e.IDs
	if ids == nil {
		ids = []string{}
	}

	return Message{Kind: string(e.Kind), IDs: ids, Timestamp: e.At.UTC()}
}

func (m Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MessageFromJSON(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, err
	}

	return msg, nil
}
