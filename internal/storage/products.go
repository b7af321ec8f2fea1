package storage

import (
	"context"
)

const productColumns = `id, name, description, price::text, image, created_at, updated_at`

// CreateProductParams holds the fields for a new product. Price is a decimal
// string and is cast to NUMERIC by the insert.
type CreateProductParams struct {
	Name        string
	Description string
	Price       string
}

// CreateProduct inserts a product and returns the stored row.
func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	row := q.pool.QueryRow(ctx, `
		INSERT INTO products (name, description, price)
		VALUES ($1, $2, $3::numeric)
		RETURNING `+productColumns,
		arg.Name, arg.Description, arg.Price,
	)
	return scanProduct(row)
}

// GetProductByID fetches a single product. Returns pgx.ErrNoRows when absent.
func (q *Queries) GetProductByID(ctx context.Context, id int64) (Product, error) {
	row := q.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`,
		id,
	)
	return scanProduct(row)
}

// ListProductsParams controls product listing. Search filters on name with a
// case-insensitive substring match; empty means no filter.
type ListProductsParams struct {
	Search string
	Limit  int32
	Offset int32
}

// ListProducts returns products ordered newest first.
func (q *Queries) ListProducts(ctx context.Context, arg ListProductsParams) ([]Product, error) {
	rows, err := q.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`,
		arg.Search, arg.Limit, arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts returns the number of products matching the search filter.
func (q *Queries) CountProducts(ctx context.Context, search string) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%')`,
		search,
	).Scan(&count)
	return count, err
}

// UpdateProductParams holds the full set of mutable product fields.
type UpdateProductParams struct {
	ID          int64
	Name        string
	Description string
	Price       string
}

// UpdateProduct overwrites the mutable fields and refreshes updated_at.
func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	row := q.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, description = $3, price = $4::numeric, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		arg.ID, arg.Name, arg.Description, arg.Price,
	)
	return scanProduct(row)
}

// SetProductImageParams associates a media store key with a product.
type SetProductImageParams struct {
	ID    int64
	Image string
}

// SetProductImage stores the image key and refreshes updated_at.
func (q *Queries) SetProductImage(ctx context.Context, arg SetProductImageParams) (Product, error) {
	row := q.pool.QueryRow(ctx, `
		UPDATE products
		SET image = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		arg.ID, arg.Image,
	)
	return scanProduct(row)
}

// DeleteProduct removes a product row.
func (q *Queries) DeleteProduct(ctx context.Context, id int64) error {
	_, err := q.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return err
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Image, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
