package desk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/entity"
)

// User-facing messages
const (
	MsgMissingFields       = "Please fill in all required fields and upload a supporting document."
	MsgFileTooLarge        = "File size exceeds the 5MB limit."
	MsgUnsupportedDocument = "Only PDF, Word or Excel documents can be uploaded."
	MsgDocumentUploaded    = "Document Uploaded Successfully!"
	MsgClaimSubmitted      = "Claim Submitted Successfully!"
	MsgClaimApproved       = "Claim Approved!"
	MsgClaimRejected       = "Claim Rejected!"
	msgExportedFormat      = "Claims exported to %s"
	msgFileTooLargePrefix  = "File size exceeds the "
)

// ErrorMessage formats any other failure
func ErrorMessage(err error) string {
	return fmt.Sprintf("Error: %s", err.Error())
}

// FileTooLargeMessage names the configured size limit. The default limit
// yields MsgFileTooLarge.
func FileTooLargeMessage(maxSize int64) string {
	return msgFileTooLargePrefix + sizeLabel(maxSize) + " limit."
}

func sizeLabel(size int64) string {
	const (
		kib = 1 << 10
		mib = 1 << 20
	)
	switch {
	case size > 0 && size%mib == 0:
		return fmt.Sprintf("%dMB", size/mib)
	case size > 0 && size%kib == 0:
		return fmt.Sprintf("%dKB", size/kib)
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}

// MessageFor maps a handler error to the message shown to the operator,
// assuming the default document size limit
func MessageFor(err error) string {
	return MessageForLimit(err, entity.MaxDocumentSize)
}

// MessageForLimit maps a handler error to the operator message for a desk
// whose document size limit is maxSize
func MessageForLimit(err error, maxSize int64) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, service.ErrMissingFields):
		return MsgMissingFields
	case errors.Is(err, service.ErrFileTooLarge):
		return FileTooLargeMessage(maxSize)
	case errors.Is(err, service.ErrUnsupportedDocument):
		return MsgUnsupportedDocument
	default:
		return ErrorMessage(err)
	}
}

// IsWarning reports whether message is a validation notice rather than a
// success or an unexpected error
func IsWarning(message string) bool {
	switch message {
	case MsgMissingFields, MsgUnsupportedDocument:
		return true
	}
	return strings.HasPrefix(message, msgFileTooLargePrefix)
}
