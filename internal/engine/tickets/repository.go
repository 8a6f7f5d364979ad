package tickets

import (
	"context"
	"database/sql"
	"time"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const ticketColumns = `id, title, description, urgency, status, created_by, assigned_to,
		       deadline, solved_at, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, t *Ticket) error {
	query := `
		INSERT INTO tickets (
			id, title, description, urgency, status, created_by, assigned_to,
			deadline, solved_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.Urgency,
		t.Status,
		t.CreatedBy,
		nullString(t.AssignedTo),
		t.Deadline,
		t.SolvedAt,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return err
}

// GetByID returns nil, nil when the ticket does not exist.
func (r *Repository) GetByID(ctx context.Context, id string) (*Ticket, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id)
	t, err := scanTicket(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return t, err
}

func (r *Repository) List(ctx context.Context, f ListFilter) ([]*Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE 1 = 1`
	var args []interface{}
	if f.CreatedBy != "" {
		query += ` AND created_by = ?`
		args = append(args, f.CreatedBy)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := []*Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func (r *Repository) Update(ctx context.Context, t *Ticket) error {
	query := `
		UPDATE tickets SET
			title = ?, description = ?, urgency = ?, status = ?,
			assigned_to = ?, deadline = ?, solved_at = ?, updated_at = ?
		WHERE id = ?
	`
	t.UpdatedAt = time.Now().Unix()
	_, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Description,
		t.Urgency,
		t.Status,
		nullString(t.AssignedTo),
		t.Deadline,
		t.SolvedAt,
		t.UpdatedAt,
		t.ID,
	)
	return err
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tickets WHERE id = ?`, id)
	return err
}

func scanTicket(s interface {
	Scan(dest ...interface{}) error
}) (*Ticket, error) {
	var t Ticket
	var assignedTo sql.NullString
	var deadline, solvedAt sql.NullInt64

	err := s.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Urgency,
		&t.Status,
		&t.CreatedBy,
		&assignedTo,
		&deadline,
		&solvedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.AssignedTo = assignedTo.String
	if deadline.Valid {
		val := deadline.Int64
		t.Deadline = &val
	}
	if solvedAt.Valid {
		val := solvedAt.Int64
		t.SolvedAt = &val
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
