package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const complaintColumns = `id, customer_name, customer_email, complaint_text, category, sentiment,
               category_conf, sentiment_conf, priority, status, created_at, response_due_at, resolved_at`

type postgresComplaintRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresComplaintRepository instantiates the pgx-backed store. The
// schema lives in migrations/001_complaints.sql.
func NewPostgresComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &postgresComplaintRepository{pool: pool}
}

func (r *postgresComplaintRepository) Create(ctx context.Context, complaint *domain.Complaint) error {
	const query = `
        INSERT INTO complaints (customer_name, customer_email, complaint_text, category, sentiment,
            category_conf, sentiment_conf, priority, status, created_at, response_due_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING id`
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var id int64
		if err := tx.QueryRow(ctx, query,
			complaint.CustomerName,
			complaint.CustomerEmail,
			complaint.Text,
			complaint.Category,
			complaint.Sentiment,
			complaint.Confidence.Category,
			complaint.Confidence.Sentiment,
			complaint.Priority,
			complaint.Status,
			complaint.CreatedAt,
			complaint.ResponseDueAt,
			complaint.ResolvedAt,
		).Scan(&id); err != nil {
			return err
		}
		if err := bumpVersion(ctx, tx); err != nil {
			return err
		}
		complaint.ID = id
		return nil
	})
}

func (r *postgresComplaintRepository) GetByID(ctx context.Context, id int64) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	c, err := scanComplaint(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (r *postgresComplaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		clauses = append(clauses, fmt.Sprintf("category=$%d", len(args)))
	}
	if filter.Sentiment != nil {
		args = append(args, *filter.Sentiment)
		clauses = append(clauses, fmt.Sprintf("sentiment=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM complaints WHERE %s ORDER BY created_at DESC, id DESC`,
		complaintColumns, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *postgresComplaintRepository) Transition(ctx context.Context, id int64, next domain.ComplaintStatus, at time.Time) (*domain.Complaint, error) {
	var updated *domain.Complaint
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1 FOR UPDATE`
		current, err := scanComplaint(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := domain.ValidateTransition(current.Status, next); err != nil {
			return err
		}

		current.Status = next
		if next == domain.StatusResolved {
			resolvedAt := at
			current.ResolvedAt = &resolvedAt
		}
		if _, err := tx.Exec(ctx, `UPDATE complaints SET status=$1, resolved_at=$2 WHERE id=$3`,
			current.Status, current.ResolvedAt, id); err != nil {
			return err
		}
		if err := bumpVersion(ctx, tx); err != nil {
			return err
		}
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postgresComplaintRepository) Delete(ctx context.Context, id int64) (*domain.Complaint, error) {
	var removed *domain.Complaint
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		query := `DELETE FROM complaints WHERE id=$1 RETURNING ` + complaintColumns
		c, err := scanComplaint(tx.QueryRow(ctx, query, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		removed = c
		return bumpVersion(ctx, tx)
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *postgresComplaintRepository) Snapshot(ctx context.Context) ([]domain.Complaint, int64, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int64
	if err := tx.QueryRow(ctx, `SELECT version FROM complaint_store_version`).Scan(&version); err != nil {
		return nil, 0, err
	}
	rows, err := tx.Query(ctx, `SELECT `+complaintColumns+` FROM complaints ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	result, err := scanComplaints(rows)
	if err != nil {
		return nil, 0, err
	}
	return result, version, tx.Commit(ctx)
}

func (r *postgresComplaintRepository) Version(ctx context.Context) (int64, error) {
	var version int64
	err := r.pool.QueryRow(ctx, `SELECT version FROM complaint_store_version`).Scan(&version)
	return version, err
}

func (r *postgresComplaintRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func bumpVersion(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `UPDATE complaint_store_version SET version = version + 1`)
	return err
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.CustomerName,
		&c.CustomerEmail,
		&c.Text,
		&c.Category,
		&c.Sentiment,
		&c.Confidence.Category,
		&c.Confidence.Sentiment,
		&c.Priority,
		&c.Status,
		&c.CreatedAt,
		&c.ResponseDueAt,
		&c.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	result := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	return result, rows.Err()
}
