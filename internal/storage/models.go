package storage

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Product is a paint product row. Price is carried as the text rendering of
// the NUMERIC column so the API can serve the exact decimal string.
type Product struct {
	ID          int64
	Name        string
	Description string
	Price       string
	Image       pgtype.Text
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

// ContactRequest is a contact request row. Processed flips to true exactly
// once, via MarkContactRequestProcessed; the API never writes it.
type ContactRequest struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Message   string
	CreatedAt pgtype.Timestamptz
	Processed bool
}
