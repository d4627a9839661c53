package location

import (
	"context"
	"errors"
	"fmt"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = apperr.NotFound("LOCATION_NOT_FOUND", "location not found")
	ErrInUse    = apperr.Conflict("LOCATION_IN_USE", "location is linked to posts")
	ErrExists   = apperr.Conflict("LOCATION_EXISTS", "location already exists")
)

const selectColumns = `id, country, region, city, description, created_at`

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (in Input) Validate() error {
	if in.Country == "" || in.Region == "" || in.City == "" {
		return apperr.Validation("INVALID_LOCATION", "country, region and city required")
	}
	return nil
}

// ResolveOrCreate returns the location matching all four fields of in,
// creating it on a miss. q may be a transaction. Concurrent callers with the
// same tuple converge on a single row through the unique constraint.
func ResolveOrCreate(ctx context.Context, q db.Querier, in Input) (Location, error) {
	if err := in.Validate(); err != nil {
		return Location{}, err
	}

	loc, err := scanOne(q.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM locations
		WHERE country=$1 AND region=$2 AND city=$3 AND description=$4
	`, in.Country, in.Region, in.City, in.Description))
	if err == nil {
		return loc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Location{}, err
	}

	loc = Location{
		ID:          uuid.NewString(),
		Country:     in.Country,
		Region:      in.Region,
		City:        in.City,
		Description: in.Description,
	}
	row := q.QueryRow(ctx, `
		INSERT INTO locations (id, country, region, city, description)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (country, region, city, description) DO UPDATE SET city=EXCLUDED.city
		RETURNING id, created_at
	`, loc.ID, loc.Country, loc.Region, loc.City, loc.Description)
	if err := row.Scan(&loc.ID, &loc.CreatedAt); err != nil {
		return Location{}, fmt.Errorf("insert location: %w", err)
	}
	return loc, nil
}

// Create is the direct-management entry point; an existing tuple is returned
// as is.
func (s *Service) Create(ctx context.Context, in Input) (Location, error) {
	return ResolveOrCreate(ctx, s.db, in)
}

func (s *Service) Get(ctx context.Context, id string) (Location, error) {
	loc, err := scanOne(s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM locations WHERE id=$1`, id))
	if db.IsMissing(err) {
		return Location{}, ErrNotFound
	}
	return loc, err
}

func (s *Service) List(ctx context.Context) ([]Location, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM locations ORDER BY country, region, city, description`)
}

func (s *Service) ByCity(ctx context.Context, city string) ([]Location, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM locations WHERE city=$1 ORDER BY created_at`, city)
}

func (s *Service) ByRegion(ctx context.Context, region string) ([]Location, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM locations WHERE region=$1 ORDER BY created_at`, region)
}

func (s *Service) ByCountry(ctx context.Context, country string) ([]Location, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM locations WHERE country=$1 ORDER BY created_at`, country)
}

// ByDescription matches descriptions containing text.
func (s *Service) ByDescription(ctx context.Context, text string) ([]Location, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM locations WHERE strpos(description, $1) > 0 ORDER BY created_at`, text)
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Location, error) {
	loc, err := scanOne(s.db.QueryRow(ctx, `
		UPDATE locations
		SET country=COALESCE($2, country),
		    region=COALESCE($3, region),
		    city=COALESCE($4, city),
		    description=COALESCE($5, description)
		WHERE id=$1
		RETURNING `+selectColumns, id, patch.Country, patch.Region, patch.City, patch.Description))
	switch {
	case db.IsMissing(err):
		return Location{}, ErrNotFound
	case db.IsUniqueViolation(err):
		return Location{}, ErrExists
	}
	return loc, err
}

func (s *Service) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM locations WHERE id=$1`, id)
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

func (s *Service) list(ctx context.Context, sql string, args ...any) ([]Location, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []Location{}
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Country, &l.Region, &l.City, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

func scanOne(row pgx.Row) (Location, error) {
	var l Location
	if err := row.Scan(&l.ID, &l.Country, &l.Region, &l.City, &l.Description, &l.CreatedAt); err != nil {
		return Location{}, err
	}
	return l, nil
}
