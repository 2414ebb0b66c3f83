// Package events carries material lifecycle events between the dashboard
// gateway and the notification service over Kafka.
package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/google/uuid"
)

const (
	// TopicMaterialConsigned is the default topic for consignment events.
	TopicMaterialConsigned = "material.consigned"

	TypeMaterialConsigned = "material.consigned"
)

// MaterialConsigned is published once a material gets a departure date.
type MaterialConsigned struct {
	EventID        string    `json:"event_id"`
	Type           string    `json:"type"`
	MaterialID     int64     `json:"material_id"`
	MaterialTitle  string    `json:"material_title"`
	LabDestination string    `json:"lab_destination,omitempty"`
	OwnerUserID    int64     `json:"owner_user_id"`
	OwnerEmail     string    `json:"owner_email,omitempty"`
	ConsignedBy    int64     `json:"consigned_by,omitempty"`
	DateDepart     time.Time `json:"date_depart"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// NewMaterialConsigned builds the event for a consigned material. by may be
// nil when the change did not come from a signed-in user.
func NewMaterialConsigned(m *models.Material, by *models.User) (MaterialConsigned, error) {
	if m == nil {
		return MaterialConsigned{}, fmt.Errorf("nil material")
	}
	if !m.Consigned() {
		return MaterialConsigned{}, fmt.Errorf("material %d has no departure date", m.MaterialID)
	}
	ev := MaterialConsigned{
		EventID:        uuid.NewString(),
		Type:           TypeMaterialConsigned,
		MaterialID:     m.MaterialID,
		MaterialTitle:  m.Title,
		LabDestination: m.LabDestination,
		DateDepart:     m.DateDepart.Time.UTC(),
		OccurredAt:     time.Now().UTC(),
	}
	if ownerID, ok := m.OwnerUserID(); ok {
		ev.OwnerUserID = ownerID
	}
	if m.OwnerDetails != nil {
		ev.OwnerEmail = m.OwnerDetails.Email
	} else {
		ev.OwnerEmail = m.OwnerEmail
	}
	if by != nil {
		ev.ConsignedBy = by.UserID
	}
	return ev, nil
}

// Key is the partition key: events for one material stay ordered.
func (e MaterialConsigned) Key() []byte {
	return []byte(fmt.Sprintf("material-%d", e.MaterialID))
}

func (e MaterialConsigned) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeMaterialConsigned parses a message value. Unknown event types are
// reported as errors so consumers can skip them.
func DecodeMaterialConsigned(value []byte) (MaterialConsigned, error) {
	var ev MaterialConsigned
	if err := json.Unmarshal(value, &ev); err != nil {
		return ev, fmt.Errorf("decode event: %w", err)
	}
	if ev.Type != TypeMaterialConsigned {
		return ev, fmt.Errorf("unexpected event type %q", ev.Type)
	}
	if ev.MaterialID == 0 {
		return ev, fmt.Errorf("event %s has no material id", ev.EventID)
	}
	return ev, nil
}

// SplitBrokers turns "a:9092, b:9092" into a broker list.
func SplitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
