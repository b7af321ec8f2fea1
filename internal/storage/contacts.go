package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const contactColumns = `id, name, email, phone, message, created_at, processed`

// CreateContactRequestParams holds the client-supplied contact request
// fields. Processed is deliberately absent: new rows always start
// unprocessed.
type CreateContactRequestParams struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

// CreateContactRequest inserts a contact request and returns the stored row.
func (q *Queries) CreateContactRequest(ctx context.Context, arg CreateContactRequestParams) (ContactRequest, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO contact_requests (name, email, phone, message)
		VALUES ($1, $2, $3, $4)
		RETURNING `+contactColumns,
		arg.Name, arg.Email, arg.Phone, arg.Message,
	)
	return scanContactRequest(row)
}

// GetContactRequestByID fetches a single contact request.
func (q *Queries) GetContactRequestByID(ctx context.Context, id int64) (ContactRequest, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT `+contactColumns+`
		FROM contact_requests
		WHERE id = $1`,
		id,
	)
	return scanContactRequest(row)
}

// ListContactRequestsParams controls contact request listing.
type ListContactRequestsParams struct {
	Limit  int32
	Offset int32
}

// ListContactRequests returns contact requests ordered newest first.
func (q *Queries) ListContactRequests(ctx context.Context, arg ListContactRequestsParams) ([]ContactRequest, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contact_requests
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`,
		arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []ContactRequest
	for rows.Next() {
		cr, err := scanContactRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, cr)
	}
	return requests, rows.Err()
}

// CountContactRequests returns the total number of contact requests.
func (q *Queries) CountContactRequests(ctx context.Context) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_requests`).Scan(&count)
	return count, err
}

// CountUnprocessedContactRequests returns the unprocessed backlog size.
func (q *Queries) CountUnprocessedContactRequests(ctx context.Context) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_requests WHERE NOT processed`).Scan(&count)
	return count, err
}

// UpdateContactRequestParams holds the full set of client-mutable fields.
// Processed cannot be set through here.
type UpdateContactRequestParams struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Message string
}

// UpdateContactRequest overwrites the client-mutable fields.
func (q *Queries) UpdateContactRequest(ctx context.Context, arg UpdateContactRequestParams) (ContactRequest, error) {
	row := q.pool.QueryRow(ctx, `
		UPDATE contact_requests
		SET name = $2, email = $3, phone = $4, message = $5
		WHERE id = $1
		RETURNING `+contactColumns,
		arg.ID, arg.Name, arg.Email, arg.Phone, arg.Message,
	)
	return scanContactRequest(row)
}

// DeleteContactRequest removes a contact request row.
func (q *Queries) DeleteContactRequest(ctx context.Context, id int64) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM contact_requests WHERE id = $1`, id)
	return err
}

// MarkContactRequestProcessed flips processed to true. It is idempotent for
// already-processed rows and returns pgx.ErrNoRows when the record does not
// exist.
func (q *Queries) MarkContactRequestProcessed(ctx context.Context, id int64) error {
	tag, err := q.pool.Exec(ctx, `
		UPDATE contact_requests
		SET processed = TRUE
		WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanContactRequest(row rowScanner) (ContactRequest, error) {
	var cr ContactRequest
	err := row.Scan(&cr.ID, &cr.Name, &cr.Email, &cr.Phone, &cr.Message, &cr.CreatedAt, &cr.Processed)
	return cr, err
}
