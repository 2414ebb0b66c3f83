package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Labs a material can be destined to.
const (
	LabLIPhy = "LIPhy"
	LabIGE   = "IGE"
)

// Material is a gas cylinder record as served by the Material Record Service.
// The list endpoint flattens the owner into owner_first_name/owner_last_name,
// the detail endpoint nests it into owner_details; both shapes decode here.
type Material struct {
	MaterialID     int64         `json:"material_id"`
	Title          string        `json:"material_title"`
	Team           string        `json:"team,omitempty"`
	Origin         string        `json:"origin,omitempty"`
	CodeCommande   string        `json:"codeCommande,omitempty"`
	CodeBarres     string        `json:"codeBarres,omitempty"`
	Size           string        `json:"size,omitempty"`
	LevRisk        string        `json:"levRisk,omitempty"`
	LabDestination string        `json:"lab_destination,omitempty"`
	Owner          *int64        `json:"owner,omitempty"`
	OwnerDetails   *OwnerDetails `json:"owner_details,omitempty"`
	OwnerFirstName string        `json:"owner_first_name,omitempty"`
	OwnerLastName  string        `json:"owner_last_name,omitempty"`
	OwnerEmail     string        `json:"owner_email,omitempty"`
	DateArrivee    NullTime      `json:"date_arrivee"`
	DateDepart     NullTime      `json:"date_depart"`
	Tags           []string      `json:"tags,omitempty"`
	QRCode         string        `json:"qrcode,omitempty"`
}

// OwnerDetails is the denormalized owner snapshot attached to a detail record.
type OwnerDetails struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Consigned reports whether the material has departed. A consigned material
// is read-only and can never be deleted.
func (m *Material) Consigned() bool {
	return m.DateDepart.Valid
}

// OwnerUserID returns the user id of the owner and whether one is known.
func (m *Material) OwnerUserID() (int64, bool) {
	if m.OwnerDetails != nil && m.OwnerDetails.UserID != 0 {
		return m.OwnerDetails.UserID, true
	}
	if m.Owner != nil {
		return *m.Owner, true
	}
	return 0, false
}

// OwnerFirst and OwnerLast resolve the owner name from whichever shape was decoded.
func (m *Material) OwnerFirst() string {
	if m.OwnerDetails != nil && m.OwnerDetails.FirstName != "" {
		return m.OwnerDetails.FirstName
	}
	return m.OwnerFirstName
}

func (m *Material) OwnerLast() string {
	if m.OwnerDetails != nil && m.OwnerDetails.LastName != "" {
		return m.OwnerDetails.LastName
	}
	return m.OwnerLastName
}

// HasTag is case-sensitive.
func (m *Material) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Date layouts emitted by the API and accepted on input.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05.000Z"
)

var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	DateLayout,
}

// NullTime is an optional timestamp that tolerates null, "" and the date
// formats the API mixes.
type NullTime struct {
	Time  time.Time
	Valid bool
}

func NewNullTime(t time.Time) NullTime {
	return NullTime{Time: t, Valid: true}
}

// ParseNullTime parses s; an empty string yields an invalid NullTime.
func ParseNullTime(s string) (NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NullTime{}, nil
	}
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NullTime{Time: t, Valid: true}, nil
		}
	}
	return NullTime{}, fmt.Errorf("unrecognized date %q", s)
}

func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time.UTC().Format(DateTimeLayout))
}

func (n *NullTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*n = NullTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseNullTime(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// DateString formats the date part only, or "" when unset.
func (n NullTime) DateString() string {
	if !n.Valid {
		return ""
	}
	return n.Time.Format(DateLayout)
}
