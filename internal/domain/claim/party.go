// Package claim implements the claim bounded context: the parties, invoice,
// and event timeline that describe a debt, plus the aggregate snapshot every
// downstream computation (interest, deadlines, documents) reads.  The package
// is pure; persistence and transport live in the infrastructure layer.
package claim

import (
	"strings"

	"github.com/paidup/paidup/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Party
// ─────────────────────────────────────────────────────────────────────────────

// PartyType discriminates the two legal personalities a claim can involve.
// It is a closed enum; the statutory interest basis is selected exclusively
// from the claimant and defendant types, so an unknown value must surface as
// an error rather than fall through to a default regime.
type PartyType string

const (
	// PartyIndividual is a natural person, including sole traders suing in
	// their own name.
	PartyIndividual PartyType = "individual"

	// PartyCompany is an incorporated entity with a Companies House number.
	PartyCompany PartyType = "company"
)

// Valid reports whether t is one of the declared variants.
func (t PartyType) Valid() bool {
	return t == PartyIndividual || t == PartyCompany
}

// String returns the wire representation.
func (t PartyType) String() string { return string(t) }

// Party identifies one side of the debt.  Address fields follow the layout
// Form N1 expects; CompanyNumber is set only for PartyCompany.
type Party struct {
	Name          string    `json:"name"`
	Type          PartyType `json:"type,omitempty"`
	AddressLine1  string    `json:"address_line1,omitempty"`
	AddressLine2  string    `json:"address_line2,omitempty"`
	City          string    `json:"city,omitempty"`
	Postcode      string    `json:"postcode,omitempty"`
	CompanyNumber string    `json:"company_number,omitempty"`
}

// Validate checks the structural invariants of a fully captured party.  A
// partially captured party is representable (the capture flow fills fields
// incrementally); callers that need completeness use this before acting.
func (p Party) Validate() error {
	var missing []string
	if strings.TrimSpace(p.Name) == "" {
		missing = append(missing, "name")
	}
	if p.Type == "" {
		missing = append(missing, "type")
	} else if !p.Type.Valid() {
		return errors.NewValidation("unrecognised party type: "+string(p.Type), "type")
	}
	if len(missing) > 0 {
		return errors.NewValidation("party is missing required fields", missing...)
	}
	return nil
}

// HasType reports whether the party type has been captured and is valid.
func (p Party) HasType() bool { return p.Type.Valid() }

// DisplayAddress renders the captured address lines as a single
// comma-separated string, skipping blanks.
func (p Party) DisplayAddress() string {
	parts := make([]string, 0, 4)
	for _, s := range []string{p.AddressLine1, p.AddressLine2, p.City, p.Postcode} {
		if strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, ", ")
}
