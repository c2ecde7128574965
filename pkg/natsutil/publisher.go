package natsutil

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/mco-registration/pkg/models"
)

// ReportPublisher publishes registration reports onto a JetStream subject.
type ReportPublisher struct {
	js      jetstream.JetStream
	subject string
}

// NewReportPublisher creates a publisher for subject.
func NewReportPublisher(js jetstream.JetStream, subject string) *ReportPublisher {
	return &ReportPublisher{js: js, subject: subject}
}

// Publish sends body as-is. When senderID is set the body is wrapped in a
// models.Envelope first. The returned value is the stream sequence.
func (p *ReportPublisher) Publish(ctx context.Context, senderID string, body []byte) (uint64, error) {
	payload := body

	if senderID != "" {
		var err error

		payload, err = json.Marshal(models.Envelope{SenderID: senderID, Body: body})
		if err != nil {
			return 0, fmt.Errorf("failed to marshal envelope: %w", err)
		}
	}

	msg := nats.NewMsg(p.subject)
	msg.Data = payload
	msg.Header.Set(jetstream.MsgIDHeader, uuid.NewString())

	ack, err := p.js.PublishMsg(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("failed to publish report to %s: %w", p.subject, err)
	}

	return ack.Sequence, nil
}
