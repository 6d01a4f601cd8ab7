package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"billed/api/internal/models"
)

var ErrBillNotFound = errors.New("bill not found")

type BillRepository struct {
	pool *pgxpool.Pool
}

func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

const billColumns = `
	id, email, type, name, amount, date, vat, pct, commentary,
	file_url, file_name, object_key, status, comment_admin, signature,
	created_at, updated_at
`

// Create inserts the draft produced by the upload phase. Only the receipt
// fields and the owner are known at this point.
func (r *BillRepository) Create(ctx context.Context, bill models.Bill) error {
	const query = `
		INSERT INTO bills (
			id, email, type, name, amount, date, vat, pct, commentary,
			file_url, file_name, object_key, status, comment_admin, signature,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9,
			$10, $11, $12, $13, $14, $15, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		bill.ID,
		bill.Email,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.FileURL,
		bill.FileName,
		bill.ObjectKey,
		bill.Status,
		bill.CommentAdmin,
		bill.Signature,
	)
	return err
}

// Update fills the form fields against an existing draft (second persist
// phase). Receipt fields are owned by the upload phase and left untouched.
func (r *BillRepository) Update(ctx context.Context, bill models.Bill) error {
	const query = `
		UPDATE bills
		SET type = $2,
		    name = $3,
		    amount = $4,
		    date = $5,
		    vat = $6,
		    pct = $7,
		    commentary = $8,
		    status = $9,
		    updated_at = NOW()
		WHERE id = $1
	`

	cmd, err := r.pool.Exec(ctx, query,
		bill.ID,
		bill.Type,
		bill.Name,
		bill.Amount,
		bill.Date,
		bill.VAT,
		bill.Pct,
		bill.Commentary,
		bill.Status,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

// Review records the administrator's decision.
func (r *BillRepository) Review(ctx context.Context, id string, status models.BillStatus, commentAdmin string) error {
	const query = `
		UPDATE bills
		SET status = $2, comment_admin = $3, updated_at = NOW()
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query, id, status, commentAdmin)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrBillNotFound
	}
	return nil
}

func (r *BillRepository) GetByID(ctx context.Context, id string) (models.Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM bills WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	bill, err := scanBill(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Bill{}, ErrBillNotFound
		}
		return models.Bill{}, err
	}
	return bill, nil
}

// ListByEmail returns the owner's bills in retrieval (insertion) order;
// chronological ordering is presentation logic and happens upstream.
func (r *BillRepository) ListByEmail(ctx context.Context, email string) ([]models.Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM bills
		WHERE email = $1
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBills(rows)
}

func (r *BillRepository) List(ctx context.Context) ([]models.Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM bills
		ORDER BY created_at ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBills(rows)
}

// Delete removes an orphaned draft during compensation.
func (r *BillRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bills WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func scanBill(row pgx.Row) (models.Bill, error) {
	var bill models.Bill
	err := row.Scan(
		&bill.ID,
		&bill.Email,
		&bill.Type,
		&bill.Name,
		&bill.Amount,
		&bill.Date,
		&bill.VAT,
		&bill.Pct,
		&bill.Commentary,
		&bill.FileURL,
		&bill.FileName,
		&bill.ObjectKey,
		&bill.Status,
		&bill.CommentAdmin,
		&bill.Signature,
		&bill.CreatedAt,
		&bill.UpdatedAt,
	)
	return bill, err
}

func collectBills(rows pgx.Rows) ([]models.Bill, error) {
	var bills []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, bill)
	}
	return bills, rows.Err()
}
