package mq

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func TestDecide(t *testing.T) {
	transient := errors.New("db timeout")

	tests := []struct {
		name        string
		err         error
		redelivered bool
		want        decision
	}{
		{"success", nil, false, decisionAck},
		{"success on redelivery", nil, true, decisionAck},
		{"transient first attempt", transient, false, decisionRequeue},
		{"transient redelivered", transient, true, decisionDeadLetter},
		{"permanent", fmt.Errorf("bad job: %w", ErrPermanent), false, decisionDeadLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decide(tt.err, tt.redelivered); got != tt.want {
				t.Errorf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestParsePayload(t *testing.T) {
	jobID := uuid.New()
	msg := &Message{
		Type: MessageTypeRenderRequested,
		Payload: map[string]any{
			"job_id":      jobID.String(),
			"contract_id": uuid.Nil.String(),
		},
	}

	p, err := ParsePayload[RenderRequestedPayload](msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.JobID != jobID {
		t.Errorf("expected job %s, got %s", jobID, p.JobID)
	}
}
