package models

import "fmt"

// PersonaID identifies one of the fixed team roles.
type PersonaID string

const (
	PersonaProductOwner PersonaID = "product_owner"
	PersonaStrategist   PersonaID = "strategist"
	PersonaArchitect    PersonaID = "architect"
	PersonaDeveloper    PersonaID = "developer"
	PersonaTester       PersonaID = "tester"
	PersonaWriter       PersonaID = "writer"
	PersonaSecurity     PersonaID = "security"
	PersonaDevOps       PersonaID = "devops"
	PersonaSynthesizer  PersonaID = "synthesizer"
)

// AllPersonas lists every persona in a stable order.
var AllPersonas = []PersonaID{
	PersonaProductOwner,
	PersonaStrategist,
	PersonaArchitect,
	PersonaDeveloper,
	PersonaTester,
	PersonaWriter,
	PersonaSecurity,
	PersonaDevOps,
	PersonaSynthesizer,
}

var personaTitles = map[PersonaID]string{
	PersonaProductOwner: "Product Owner",
	PersonaStrategist:   "Strategist",
	PersonaArchitect:    "Architect",
	PersonaDeveloper:    "Developer",
	PersonaTester:       "Tester",
	PersonaWriter:       "Technical Writer",
	PersonaSecurity:     "Security Reviewer",
	PersonaDevOps:       "DevOps Engineer",
	PersonaSynthesizer:  "Synthesizer",
}

// Valid returns true if the persona is a known value.
func (p PersonaID) Valid() bool {
	_, ok := personaTitles[p]
	return ok
}

// Title returns the display name used in headings and comments.
func (p PersonaID) Title() string {
	if t, ok := personaTitles[p]; ok {
		return t
	}
	return string(p)
}

// ParsePersonaID converts a string to a PersonaID, rejecting unknown values.
func ParsePersonaID(s string) (PersonaID, error) {
	p := PersonaID(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown persona %q", s)
	}
	return p, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PersonaID) UnmarshalText(b []byte) error {
	parsed, err := ParsePersonaID(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
