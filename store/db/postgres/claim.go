package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/policydesk/policydesk/store"
)

func (d *DB) EnsureClaimTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS expense_claim (
			id          TEXT PRIMARY KEY,
			email       TEXT NOT NULL,
			description TEXT NOT NULL,
			amount      NUMERIC(12, 2) NOT NULL,
			status      TEXT NOT NULL DEFAULT 'Submitted',
			created_ts  BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expense_claim_email ON expense_claim(email)`,
	}
	for _, s := range stmts {
		if _, err := d.db.ExecContext(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) CreateClaim(ctx context.Context, create *store.ExpenseClaim) (*store.ExpenseClaim, error) {
	stmt := `INSERT INTO expense_claim (id, email, description, amount, status)
	         VALUES ($1, $2, $3, $4, $5)
	         RETURNING created_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.ID, create.Email, create.Description, create.Amount.String(), create.Status,
	).Scan(&create.CreatedTs); err != nil {
		return nil, err
	}
	return create, nil
}

func (d *DB) ListClaims(ctx context.Context, find *store.FindClaim) ([]*store.ExpenseClaim, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Email; v != nil {
		where, args = append(where, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	query := fmt.Sprintf(
		`SELECT id, email, description, amount::text, status, created_ts
		 FROM expense_claim WHERE %s ORDER BY created_ts DESC, id`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.ExpenseClaim
	for rows.Next() {
		c := &store.ExpenseClaim{}
		var amount string
		if err := rows.Scan(&c.ID, &c.Email, &c.Description, &amount, &c.Status, &c.CreatedTs); err != nil {
			return nil, err
		}
		if c.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}
