package comment

import (
	"context"
	"strings"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"
	"backend-travelapp/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = apperr.NotFound("COMMENT_NOT_FOUND", "comment not found")
	ErrPostNotFound = apperr.NotFound("POST_NOT_FOUND", "post not found")
	ErrEmptyContent = apperr.Validation("INVALID_COMMENT", "content required")
)

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

// Create stores a comment by userID on postID and notifies the post owner.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return Comment{}, ErrEmptyContent
	}
	if in.PostID == "" {
		return Comment{}, apperr.Validation("INVALID_COMMENT", "post_id required")
	}

	var ownerID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM posts WHERE id=$1`, in.PostID).Scan(&ownerID)
	if db.IsMissing(err) {
		return Comment{}, ErrPostNotFound
	}
	if err != nil {
		return Comment{}, err
	}

	c := Comment{ID: uuid.NewString(), Content: content, UserID: userID, PostID: in.PostID}
	err = s.db.QueryRow(ctx, `
		INSERT INTO comments (id, content, user_id, post_id)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at, updated_at
	`, c.ID, c.Content, c.UserID, c.PostID).Scan(&c.CreatedAt, &c.UpdatedAt)
	if db.IsForeignKeyViolation(err) {
		return Comment{}, ErrPostNotFound
	}
	if err != nil {
		return Comment{}, err
	}

	if ownerID != userID {
		s.notifier.Publish(ownerID, stream.NewEvent(stream.EventCommentCreated, c))
	}
	return c, nil
}

// ListByPost returns the comments of a post, newest first, with author usernames.
func (s *Service) ListByPost(ctx context.Context, postID string) ([]Comment, error) {
	return s.list(ctx, `
		SELECT c.id, c.content, c.user_id, c.post_id, u.username, c.created_at, c.updated_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id=$1
		ORDER BY c.created_at DESC
	`, postID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Comment, error) {
	return s.list(ctx, `
		SELECT c.id, c.content, c.user_id, c.post_id, u.username, c.created_at, c.updated_at
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.user_id=$1
		ORDER BY c.created_at DESC
	`, userID)
}

// Edit replaces the content of a comment. Only its author may edit it.
func (s *Service) Edit(ctx context.Context, commentID, callerID, content string) (Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, ErrEmptyContent
	}

	var authorID string
	err := s.db.QueryRow(ctx, `SELECT user_id FROM comments WHERE id=$1`, commentID).Scan(&authorID)
	if db.IsMissing(err) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	if authorID != callerID {
		return Comment{}, apperr.ErrNotAuthorized
	}

	c := Comment{ID: commentID, Content: content, UserID: authorID}
	err = s.db.QueryRow(ctx, `
		UPDATE comments SET content=$2, updated_at=NOW()
		WHERE id=$1
		RETURNING post_id, created_at, updated_at
	`, commentID, content).Scan(&c.PostID, &c.CreatedAt, &c.UpdatedAt)
	if db.IsMissing(err) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	return c, nil
}

// Delete removes a comment. The author and the owner of the post may delete it.
func (s *Service) Delete(ctx context.Context, commentID, callerID string) error {
	var authorID, postOwnerID string
	err := s.db.QueryRow(ctx, `
		SELECT c.user_id, p.user_id
		FROM comments c JOIN posts p ON p.id = c.post_id
		WHERE c.id=$1
	`, commentID).Scan(&authorID, &postOwnerID)
	if db.IsMissing(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if callerID != authorID && callerID != postOwnerID {
		return apperr.ErrNotAuthorized
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM comments WHERE id=$1`, commentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) list(ctx context.Context, sql string, args ...any) ([]Comment, error) {
	return db.NoMatches(s.collect(ctx, sql, args...))
}

func (s *Service) collect(ctx context.Context, sql string, args ...any) ([]Comment, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.PostID, &c.Username, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
