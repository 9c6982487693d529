package port

import (
	"context"
	"io"

	"github.com/garyjia/claimdesk/internal/domain/entity"
)

// ClaimWorkbook renders claims as a spreadsheet
type ClaimWorkbook interface {
	Write(ctx context.Context, claims []*entity.Claim, w io.Writer) error
}

// MoneyFormatter renders an amount for display
type MoneyFormatter interface {
	Format(amount float64) string
}
