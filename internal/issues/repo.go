package issues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/issuedesk/issuedesk-backend/internal/authz"
)

const (
	StatusOpen   = "open"
	StatusSolved = "solved"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	ProjectID   string    `json:"project_id"`
	AuthorID    string    `json:"author_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

const issueColumns = `id::text, title, description, status, project_id, author_id::text, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, projectID, authorID, title, description string) (*Issue, error) {
	if title == "" {
		return nil, fmt.Errorf("title required")
	}

	const q = `
insert into issues (id, project_id, author_id, title, description, status)
values ($1::uuid, $2, $3::uuid, $4, $5, $6)
returning ` + issueColumns + `;
`
	var i Issue
	err := r.db.QueryRow(ctx, q, uuid.NewString(), projectID, authorID, title, description, StatusOpen).
		Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.ProjectID, &i.AuthorID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// ListByOwner returns every issue across all live projects the user owns.
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Issue, error) {
	const q = `
select i.id::text, i.title, i.description, i.status, i.project_id, i.author_id::text, i.created_at, i.updated_at
from issues i
join projects p on p.id = i.project_id
where p.owner_id = $1::uuid and p.deleted_at is null
order by i.created_at desc;
`
	rows, err := r.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Issue, 0, 16)
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.ProjectID, &i.AuthorID, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, id string) (*Issue, error) {
	const q = `
select ` + issueColumns + `
from issues
where id = $1::uuid;
`
	var i Issue
	err := r.db.QueryRow(ctx, q, id).
		Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.ProjectID, &i.AuthorID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

// ProjectOwner resolves an issue to the owner of its parent project.
// The issue's author has no bearing on authorization.
func (r *Repo) ProjectOwner(ctx context.Context, issueID string) (string, error) {
	const q = `
select p.owner_id::text
from issues i
join projects p on p.id = i.project_id
where i.id = $1::uuid and p.deleted_at is null;
`
	var ownerID string
	if err := r.db.QueryRow(ctx, q, issueID).Scan(&ownerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", authz.ErrNotFound
		}
		return "", err
	}
	return ownerID, nil
}

// Update changes title and/or description; nil fields keep their value.
func (r *Repo) Update(ctx context.Context, id string, title, description *string) (*Issue, error) {
	const q = `
update issues
set title = coalesce($2, title),
    description = coalesce($3, description),
    updated_at = now()
where id = $1::uuid
returning ` + issueColumns + `;
`
	var i Issue
	err := r.db.QueryRow(ctx, q, id, title, description).
		Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.ProjectID, &i.AuthorID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *Repo) SetStatus(ctx context.Context, id, status string) (*Issue, error) {
	const q = `
update issues
set status = $2, updated_at = now()
where id = $1::uuid
returning ` + issueColumns + `;
`
	var i Issue
	err := r.db.QueryRow(ctx, q, id, status).
		Scan(&i.ID, &i.Title, &i.Description, &i.Status, &i.ProjectID, &i.AuthorID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, authz.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (bool, error) {
	const q = `delete from issues where id = $1::uuid;`

	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() > 0, nil
}
