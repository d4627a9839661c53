package tag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound    = apperr.NotFound("TAG_NOT_FOUND", "tag not found")
	ErrInUse       = apperr.Conflict("TAG_IN_USE", "tag is linked to posts")
	ErrInvalidName = apperr.Validation("INVALID_TAG", "tag name required")
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func normalize(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrInvalidName
	}
	return name, nil
}

// ResolveOrCreate returns the tag named name, creating it on a miss. q may be
// a transaction.
func ResolveOrCreate(ctx context.Context, q db.Querier, name string) (Tag, error) {
	name, err := normalize(name)
	if err != nil {
		return Tag{}, err
	}

	t, err := findByName(ctx, q, name)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Tag{}, err
	}

	t = Tag{ID: uuid.NewString(), Name: name}
	row := q.QueryRow(ctx, `
		INSERT INTO tags (id, name)
		VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
		RETURNING id, created_at
	`, t.ID, t.Name)
	if err := row.Scan(&t.ID, &t.CreatedAt); err != nil {
		return Tag{}, fmt.Errorf("insert tag: %w", err)
	}
	return t, nil
}

// CreateExplicit creates a tag and fails with DUPLICATE_TAG when the name is
// already taken.
func (s *Service) CreateExplicit(ctx context.Context, name string) (Tag, error) {
	name, err := normalize(name)
	if err != nil {
		return Tag{}, err
	}

	t := Tag{ID: uuid.NewString(), Name: name}
	row := s.db.QueryRow(ctx, `
		INSERT INTO tags (id, name)
		VALUES ($1,$2)
		ON CONFLICT (name) DO NOTHING
		RETURNING created_at
	`, t.ID, t.Name)
	err = row.Scan(&t.CreatedAt)
	if db.IsNoRows(err) || db.IsUniqueViolation(err) {
		return Tag{}, apperr.WithMessage(apperr.ErrDuplicateTag, fmt.Sprintf("tag %q already exists", name))
	}
	if err != nil {
		return Tag{}, err
	}
	return t, nil
}

func (s *Service) FindByName(ctx context.Context, name string) (Tag, error) {
	t, err := findByName(ctx, s.db, strings.TrimSpace(name))
	if db.IsNoRows(err) {
		return Tag{}, ErrNotFound
	}
	return t, err
}

func (s *Service) List(ctx context.Context) ([]Tag, error) {
	rows, err := s.db.Query(ctx, `SELECT id, name, created_at FROM tags ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM tags WHERE id=$1`, id)
	if db.IsForeignKeyViolation(err) {
		return ErrInUse
	}
	if db.IsInvalidText(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func findByName(ctx context.Context, q db.Querier, name string) (Tag, error) {
	var t Tag
	err := q.QueryRow(ctx, `SELECT id, name, created_at FROM tags WHERE name=$1`, name).Scan(&t.ID, &t.Name, &t.CreatedAt)
	return t, err
}
