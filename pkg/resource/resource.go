package resource

import (
	"github.com/gofrs/uuid"
)

// CandidateIdentity is the authenticated candidate resolved by the session
// middleware. It is passed explicitly into the service layer so the workflow
// stays free of transport concerns.
type CandidateIdentity struct {
	UID   uuid.UUID
	Email string
}

// IsZero reports whether no candidate was resolved.
func (c CandidateIdentity) IsZero() bool {
	return c.UID.IsNil()
}
