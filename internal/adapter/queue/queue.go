package queue

import (
	"encoding/json"
	"fmt"
)

// MessageQueue is the event bus between the ledger, the reconciliation flow
// and the alert engine. Delivery is at-most-once; consumers must tolerate
// missed events because the scheduled sweep re-evaluates every rule.
type MessageQueue interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, handler func(data []byte) error) error
	Close() error
}

// PublishJSON encodes v and publishes it on subject.
func PublishJSON(q MessageQueue, subject string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", subject, err)
	}
	return q.Publish(subject, data)
}
