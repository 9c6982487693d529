package event

// Type identifies the type of domain event
type Type string

const (
	TypeClaimSubmitted     Type = "claim.submitted"
	TypeClaimApproved      Type = "claim.approved"
	TypeClaimRejected      Type = "claim.rejected"
	TypeClaimStatusChanged Type = "claim.status_changed"
	TypeDocumentAccepted   Type = "document.accepted"
	TypeDocumentRejected   Type = "document.rejected"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeClaimSubmitted,
		TypeClaimApproved,
		TypeClaimRejected,
		TypeClaimStatusChanged,
		TypeDocumentAccepted,
		TypeDocumentRejected:
		return true
	default:
		return false
	}
}
