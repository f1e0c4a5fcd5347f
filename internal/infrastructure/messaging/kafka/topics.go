// Package kafka publishes the engine's integration events: deadline upserts
// and document generations.  Consumers (calendar sync, notifications) live
// outside this repository.
package kafka

import (
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/pkg/types/common"
)

// Topic names.  Keyed by claim ID so per-claim ordering is preserved within
// a partition.
const (
	TopicDeadlineUpserted  = "paidup.deadlines.upserted"
	TopicDocumentGenerated = "paidup.documents.generated"
)

// EventEnvelope is the wire frame around every published payload.
type EventEnvelope struct {
	EventID    common.ID   `json:"event_id"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
	ClaimID    common.ID   `json:"claim_id"`
	Payload    interface{} `json:"payload"`
}

// DeadlineUpsertedPayload describes one deadline written by the scheduler.
type DeadlineUpsertedPayload struct {
	Deadline deadline.Deadline `json:"deadline"`
	Created  bool              `json:"created"`
}

// DocumentGeneratedPayload describes one content build.  Section text is not
// carried on the bus; consumers fetch it through the API when needed.
type DocumentGeneratedPayload struct {
	DocumentType claim.DocumentType `json:"document_type"`
	Fingerprint  string             `json:"fingerprint"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

// NewEnvelope frames a payload.
func NewEnvelope(eventType string, claimID common.ID, payload interface{}) EventEnvelope {
	return EventEnvelope{
		EventID:    common.NewID(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		ClaimID:    claimID,
		Payload:    payload,
	}
}
