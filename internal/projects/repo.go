package projects

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/issuedesk/issuedesk-backend/internal/authz"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Repo) Create(ctx context.Context, ownerID, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	for i := 0; i < 5; i++ {
		id, err := NewPublicID("proj")
		if err != nil {
			return nil, err
		}

		const q = `
insert into projects (id, owner_id, name)
values ($1, $2::uuid, $3)
returning id, name, owner_id::text, created_at, updated_at;
`
		var p Project
		err = r.db.QueryRow(ctx, q, id, ownerID, name).
			Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)

		if err == nil {
			return &p, nil
		}

		// unique violation on id → retry with a fresh one
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("failed to generate unique project id")
}

func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Project, error) {
	const q = `
select id, name, owner_id::text, created_at, updated_at
from projects
where owner_id = $1::uuid and deleted_at is null
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Project, 0, 16)
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Project, error) {
	const q = `
select id, name, owner_id::text, created_at, updated_at
from projects
where id = $1 and deleted_at is null;
`
	var p Project
	err := r.db.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// OwnerOf resolves a project to its owner, the shape authz.CheckOwner
// consumes.
func (r *Repo) OwnerOf(ctx context.Context, id string) (string, error) {
	const q = `
select owner_id::text
from projects
where id = $1 and deleted_at is null;
`
	var ownerID string
	if err := r.db.QueryRow(ctx, q, id).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", authz.ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}

func (r *Repo) Rename(ctx context.Context, id, newName string) (*Project, error) {
	const q = `
update projects
set name = $2, updated_at = now()
where id = $1 and deleted_at is null
returning id, name, owner_id::text, created_at, updated_at;
`
	var p Project
	err := r.db.QueryRow(ctx, q, id, newName).
		Scan(&p.ID, &p.Name, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SoftDelete marks a project as deleted. Its issues stay in place until
// the nightly purge removes the whole subtree.
func (r *Repo) SoftDelete(ctx context.Context, id string) (bool, error) {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where id = $1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
