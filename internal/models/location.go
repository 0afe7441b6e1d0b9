package models

import "strings"

// LocationType is the high-level category of a known location.
type LocationType string

const (
	// LocationTypeRoom is a numbered or named room.
	LocationTypeRoom LocationType = "ROOM"
	// LocationTypeService is a service point such as an info desk.
	LocationTypeService LocationType = "SERVICE"
	// LocationTypeArea is an open area or zone.
	LocationTypeArea LocationType = "AREA"
	// LocationTypeBuilding is a whole building.
	LocationTypeBuilding LocationType = "BUILDING"
	// LocationTypeOther covers everything else.
	LocationTypeOther LocationType = "OTHER"
)

// Location is a single known place the robot can guide users to or talk
// about. CanonicalName is the stable key used in code and on disk; synonyms
// cover the names users actually say ("reception" for "Info Desk").
type Location struct {
	CanonicalName string       `json:"canonical_name"`
	DisplayName   string       `json:"display_name"`
	Type          LocationType `json:"type,omitempty"`
	Building      string       `json:"building,omitempty"`
	Floor         *int         `json:"floor,omitempty"`
	Description   string       `json:"description,omitempty"`
	Tags          []string     `json:"tags,omitempty"`
	Synonyms      []string     `json:"synonyms,omitempty"`
	X             *float64     `json:"x,omitempty"`
	Y             *float64     `json:"y,omitempty"`
}

// AllNamesLower returns the canonical name plus all synonyms, lowercased and
// trimmed, for case-insensitive matching.
func (l *Location) AllNamesLower() []string {
	names := make([]string, 0, len(l.Synonyms)+1)
	for _, n := range append([]string{l.CanonicalName}, l.Synonyms...) {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			names = append(names, n)
		}
	}
	return names
}
