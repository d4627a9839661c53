package user

import (
	"context"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound = apperr.NotFound("USER_NOT_FOUND", "user not found")
	ErrExists   = apperr.Conflict("USER_EXISTS", "username or email already in use")
)

const selectColumns = `id, nickname, username, email, password_hash, phone, photo_profile, description, privacity, created_at`

// hashCost is lowered in tests.
var hashCost = bcrypt.DefaultCost

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return User{}, apperr.Validation("INVALID_USER", "username, email and password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), hashCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.NewString(),
		Nickname:     in.Nickname,
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Phone:        in.Phone,
		PhotoProfile: in.PhotoProfile,
		Description:  in.Description,
		Privacity:    in.Privacity,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, nickname, username, email, password_hash, phone, photo_profile, description, privacity)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at
	`, u.ID, u.Nickname, u.Username, u.Email, u.PasswordHash, u.Phone, u.PhotoProfile, u.Description, u.Privacity)
	if err := row.Scan(&u.CreatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrExists
		}
		return User{}, err
	}
	return u, nil
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE id=$1`, id))
	if db.IsMissing(err) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	u, err := scanUser(s.db.QueryRow(ctx, `SELECT `+selectColumns+` FROM users WHERE email=$1`, email))
	if db.IsMissing(err) {
		return User{}, ErrNotFound
	}
	return u, err
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+selectColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update applies a partial update. Only the user may update their own record.
func (s *Service) Update(ctx context.Context, id, callerID string, in UpdateInput) (User, error) {
	if id != callerID {
		return User{}, apperr.ErrNotAuthorized
	}

	var hash *string
	if in.Password != nil {
		if *in.Password == "" {
			return User{}, apperr.Validation("INVALID_USER", "password must not be empty")
		}
		b, err := bcrypt.GenerateFromPassword([]byte(*in.Password), hashCost)
		if err != nil {
			return User{}, err
		}
		h := string(b)
		hash = &h
	}

	u, err := scanUser(s.db.QueryRow(ctx, `
		UPDATE users
		SET nickname=COALESCE($2, nickname),
		    username=COALESCE($3, username),
		    email=COALESCE($4, email),
		    password_hash=COALESCE($5, password_hash),
		    phone=COALESCE($6, phone),
		    photo_profile=COALESCE($7, photo_profile),
		    description=COALESCE($8, description),
		    privacity=COALESCE($9, privacity)
		WHERE id=$1
		RETURNING `+selectColumns,
		id, in.Nickname, in.Username, in.Email, hash, in.Phone, in.PhotoProfile, in.Description, in.Privacity))
	switch {
	case db.IsMissing(err):
		return User{}, ErrNotFound
	case db.IsUniqueViolation(err):
		return User{}, ErrExists
	}
	return u, err
}

func (s *Service) Delete(ctx context.Context, id, callerID string) error {
	if id != callerID {
		return apperr.ErrNotAuthorized
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Nickname, &u.Username, &u.Email, &u.PasswordHash, &u.Phone, &u.PhotoProfile, &u.Description, &u.Privacity, &u.CreatedAt)
	return u, err
}
