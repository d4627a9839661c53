package connection

import (
	"context"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"
	"backend-travelapp/internal/stream"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound          = apperr.NotFound("CONNECTION_NOT_FOUND", "connection not found")
	ErrUserNotFound      = apperr.NotFound("USER_NOT_FOUND", "user not found")
	ErrSelfFollow        = apperr.Validation("SELF_FOLLOW", "cannot follow yourself")
	ErrInvalidTransition = apperr.Conflict("INVALID_TRANSITION", "connection is not pending")
)

const selectColumns = `id, follow_user_id, following_user_id, state, created_at, updated_at`

type Service struct {
	db       db.Querier
	notifier stream.Notifier
}

func NewService(db db.Querier, notifier stream.Notifier) *Service {
	if notifier == nil {
		notifier = stream.Nop{}
	}
	return &Service{db: db, notifier: notifier}
}

// Follow creates a pending edge from followerID to followingID. A previously
// rejected edge is revived to pending; a pending or accepted one is a
// DUPLICATE_REQUEST conflict.
func (s *Service) Follow(ctx context.Context, followerID, followingID string) (Connection, error) {
	if followingID == "" {
		return Connection{}, apperr.Validation("INVALID_CONNECTION", "following_user_id required")
	}
	if followerID == followingID {
		return Connection{}, ErrSelfFollow
	}

	conn, err := scanConnection(s.db.QueryRow(ctx, `
		INSERT INTO connections (id, follow_user_id, following_user_id, state)
		VALUES ($1,$2,$3,'pending')
		ON CONFLICT (follow_user_id, following_user_id) DO UPDATE
			SET state='pending', updated_at=NOW()
			WHERE connections.state='rejected'
		RETURNING `+selectColumns,
		uuid.NewString(), followerID, followingID))
	switch {
	case db.IsNoRows(err):
		return Connection{}, apperr.ErrDuplicateRequest
	case db.IsForeignKeyViolation(err), db.IsInvalidText(err):
		return Connection{}, ErrUserNotFound
	case err != nil:
		return Connection{}, err
	}

	s.notifier.Publish(followingID, stream.NewEvent(stream.EventFollowRequested, conn))
	return conn, nil
}

func (s *Service) Accept(ctx context.Context, edgeID, callerID string) (Connection, error) {
	conn, err := s.transition(ctx, edgeID, callerID, StateAccepted)
	if err != nil {
		return Connection{}, err
	}
	s.notifier.Publish(conn.FollowUserID, stream.NewEvent(stream.EventFollowAccepted, conn))
	return conn, nil
}

func (s *Service) Reject(ctx context.Context, edgeID, callerID string) (Connection, error) {
	return s.transition(ctx, edgeID, callerID, StateRejected)
}

// transition moves a pending edge to next. Only the followed user may decide.
func (s *Service) transition(ctx context.Context, edgeID, callerID string, next State) (Connection, error) {
	var out Connection
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		conn, err := scanConnection(tx.QueryRow(ctx, `SELECT `+selectColumns+` FROM connections WHERE id=$1 FOR UPDATE`, edgeID))
		if db.IsMissing(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if conn.FollowingUserID != callerID {
			return apperr.ErrNotAuthorized
		}
		if conn.State != StatePending {
			return ErrInvalidTransition
		}

		out, err = scanConnection(tx.QueryRow(ctx, `
			UPDATE connections SET state=$2, updated_at=NOW()
			WHERE id=$1
			RETURNING `+selectColumns, edgeID, string(next)))
		return err
	})
	if err != nil {
		return Connection{}, err
	}
	return out, nil
}

// Unfollow removes the accepted edge from followerID to followingID and
// reports whether one existed.
func (s *Service) Unfollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM connections
		WHERE follow_user_id=$1 AND following_user_id=$2 AND state='accepted'
	`, followerID, followingID)
	if db.IsInvalidText(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ListFollowers returns accepted edges pointing at userID.
func (s *Service) ListFollowers(ctx context.Context, userID string) ([]Connection, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM connections WHERE following_user_id=$1 AND state='accepted' ORDER BY updated_at DESC`, userID)
}

// ListFollowing returns accepted edges leaving userID.
func (s *Service) ListFollowing(ctx context.Context, userID string) ([]Connection, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM connections WHERE follow_user_id=$1 AND state='accepted' ORDER BY updated_at DESC`, userID)
}

// ListPending returns requests waiting for userID to decide.
func (s *Service) ListPending(ctx context.Context, userID string) ([]Connection, error) {
	return s.list(ctx, `SELECT `+selectColumns+` FROM connections WHERE following_user_id=$1 AND state='pending' ORDER BY created_at`, userID)
}

func (s *Service) list(ctx context.Context, sql string, args ...any) ([]Connection, error) {
	return db.NoMatches(s.collect(ctx, sql, args...))
}

func (s *Service) collect(ctx context.Context, sql string, args ...any) ([]Connection, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Connection{}
	for rows.Next() {
		c, err := scanConnection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanConnection(row pgx.Row) (Connection, error) {
	var c Connection
	var state string
	if err := row.Scan(&c.ID, &c.FollowUserID, &c.FollowingUserID, &state, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return Connection{}, err
	}
	c.State = State(state)
	return c, nil
}
