package post

import (
	"context"
	"errors"
	"fmt"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/location"
	"backend-travelapp/internal/shared/apperr"
	"backend-travelapp/internal/tag"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrNotFound = apperr.NotFound("POST_NOT_FOUND", "post not found")

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// Create stores a post with its components, location links and tag links in
// one transaction.
func (s *Service) Create(ctx context.Context, ownerID string, in CreateInput) (Post, error) {
	if in.Privacity == nil {
		return Post{}, apperr.Validation("INVALID_POST", "privacity required")
	}
	comps, err := parseComponents(in.Components)
	if err != nil {
		return Post{}, err
	}
	if err := validateLocations(in.Locations); err != nil {
		return Post{}, err
	}

	p := Post{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Description: in.Description,
		Privacity:   *in.Privacity,
		Tags:        []tag.Tag{},
		Locations:   []location.Location{},
	}
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO posts (id, user_id, description, privacity, like_number)
			VALUES ($1,$2,$3,$4,0)
			RETURNING created_at
		`, p.ID, p.UserID, p.Description, p.Privacity).Scan(&p.CreatedAt); err != nil {
			return fmt.Errorf("insert post: %w", err)
		}

		locs, err := linkLocations(ctx, tx, p.ID, in.Locations)
		if err != nil {
			return err
		}
		p.Locations = locs

		if err := insertComponents(ctx, tx, p.ID, comps); err != nil {
			return err
		}
		p.Components = comps

		tags, err := linkTags(ctx, tx, p.ID, in.Tags)
		if err != nil {
			return err
		}
		p.Tags = append(p.Tags, tags...)
		return nil
	})
	if err != nil {
		return Post{}, txError(err)
	}

	sortComponents(p.Components)
	return p, nil
}

// Update applies a partial update to a post owned by callerID. Posts owned by
// someone else are reported as not found.
func (s *Service) Update(ctx context.Context, postID, callerID string, in UpdateInput) (Post, error) {
	var comps []Component
	if in.Components != nil {
		var err error
		if comps, err = parseComponents(in.Components); err != nil {
			return Post{}, err
		}
	}
	if err := validateLocations(in.Locations); err != nil {
		return Post{}, err
	}

	var out Post
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, postID, callerID); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx, `
			UPDATE posts
			SET description = COALESCE($2, description),
				privacity = COALESCE($3, privacity)
			WHERE id=$1
		`, postID, in.Description, in.Privacity); err != nil {
			return fmt.Errorf("update post: %w", err)
		}

		if comps != nil {
			if _, err := tx.Exec(ctx, `DELETE FROM post_components WHERE post_id=$1`, postID); err != nil {
				return fmt.Errorf("clear components: %w", err)
			}
			if err := insertComponents(ctx, tx, postID, comps); err != nil {
				return err
			}
		}

		if len(in.Locations) > 0 {
			if _, err := tx.Exec(ctx, `DELETE FROM post_locations WHERE post_id=$1`, postID); err != nil {
				return fmt.Errorf("clear locations: %w", err)
			}
			if _, err := linkLocations(ctx, tx, postID, in.Locations); err != nil {
				return err
			}
		}

		if _, err := linkTags(ctx, tx, postID, in.Tags); err != nil {
			return err
		}

		posts, err := loadComposed(ctx, tx, `SELECT `+postColumns+` FROM posts p WHERE p.id=$1`, postID)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			return ErrNotFound
		}
		out = posts[0]
		return nil
	})
	if err != nil {
		return Post{}, txError(err)
	}
	return out, nil
}

// Delete removes a post owned by callerID and returns its last state. Shared
// locations and tags are kept; only the links go.
func (s *Service) Delete(ctx context.Context, postID, callerID string) (Post, error) {
	var out Post
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, postID, callerID); err != nil {
			return err
		}
		posts, err := loadComposed(ctx, tx, `SELECT `+postColumns+` FROM posts p WHERE p.id=$1`, postID)
		if err != nil {
			return err
		}
		if len(posts) == 0 {
			return ErrNotFound
		}
		out = posts[0]

		for _, stmt := range []string{
			`DELETE FROM post_locations WHERE post_id=$1`,
			`DELETE FROM post_tags WHERE post_id=$1`,
			`DELETE FROM posts WHERE id=$1`,
		} {
			if _, err := tx.Exec(ctx, stmt, postID); err != nil {
				return fmt.Errorf("delete post: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return Post{}, txError(err)
	}
	return out, nil
}

func (s *Service) Like(ctx context.Context, postID string) (Post, error) {
	return s.bumpLikes(ctx, `UPDATE posts p SET like_number = like_number + 1 WHERE id=$1 RETURNING `+postColumns, postID)
}

// Unlike decrements the like counter without going below zero.
func (s *Service) Unlike(ctx context.Context, postID string) (Post, error) {
	return s.bumpLikes(ctx, `UPDATE posts p SET like_number = GREATEST(like_number - 1, 0) WHERE id=$1 RETURNING `+postColumns, postID)
}

func (s *Service) bumpLikes(ctx context.Context, sql, postID string) (Post, error) {
	posts, err := loadComposed(ctx, s.db, sql, postID)
	if db.IsInvalidText(err) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, ErrNotFound
	}
	return posts[0], nil
}

// RemoveTag unlinks tagName from a post owned by callerID and reports whether
// a link existed. The tag itself is kept.
func (s *Service) RemoveTag(ctx context.Context, postID, callerID, tagName string) (bool, error) {
	var removed bool
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockOwned(ctx, tx, postID, callerID); err != nil {
			return err
		}
		res, err := tx.Exec(ctx, `
			DELETE FROM post_tags pt
			USING tags t
			WHERE pt.tag_id = t.id AND pt.post_id=$1 AND t.name=$2
		`, postID, tagName)
		if err != nil {
			return err
		}
		removed = res.RowsAffected() > 0
		return nil
	})
	if err != nil {
		return false, txError(err)
	}
	return removed, nil
}

// lockOwned locks the post row for the rest of the transaction. A post owned
// by someone else is indistinguishable from a missing one.
func lockOwned(ctx context.Context, tx pgx.Tx, postID, callerID string) error {
	var ownerID string
	err := tx.QueryRow(ctx, `SELECT user_id FROM posts WHERE id=$1 FOR UPDATE`, postID).Scan(&ownerID)
	if db.IsMissing(err) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != callerID {
		return ErrNotFound
	}
	return nil
}

func validateLocations(inputs []location.Input) error {
	for _, in := range inputs {
		if err := in.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func linkLocations(ctx context.Context, tx pgx.Tx, postID string, inputs []location.Input) ([]location.Location, error) {
	out := []location.Location{}
	seen := map[string]bool{}
	for _, in := range inputs {
		loc, err := location.ResolveOrCreate(ctx, tx, in)
		if err != nil {
			return nil, err
		}
		if seen[loc.ID] {
			continue
		}
		seen[loc.ID] = true
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_locations (post_id, location_id)
			VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, postID, loc.ID); err != nil {
			return nil, fmt.Errorf("link location: %w", err)
		}
		out = append(out, loc)
	}
	return out, nil
}

func insertComponents(ctx context.Context, tx pgx.Tx, postID string, comps []Component) error {
	for i := range comps {
		c := &comps[i]
		c.ID = uuid.NewString()
		c.PostID = postID
		if _, err := tx.Exec(ctx, `
			INSERT INTO post_components (id, post_id, kind, sort_order, position)
			VALUES ($1,$2,$3,$4,$5)
		`, c.ID, postID, string(c.Type), c.Order, c.position); err != nil {
			return fmt.Errorf("insert component: %w", err)
		}

		var err error
		switch c.Type {
		case ComponentText:
			_, err = tx.Exec(ctx, `INSERT INTO component_texts (component_id, content) VALUES ($1,$2)`,
				c.ID, c.Text.Content)
		case ComponentPhoto:
			_, err = tx.Exec(ctx, `INSERT INTO component_photos (component_id, url, caption) VALUES ($1,$2,$3)`,
				c.ID, c.Photo.URL, c.Photo.Caption)
		case ComponentVideo:
			_, err = tx.Exec(ctx, `INSERT INTO component_videos (component_id, url, duration_seconds) VALUES ($1,$2,$3)`,
				c.ID, c.Video.URL, c.Video.Duration)
		default:
			return apperr.ErrInvalidComponentType
		}
		if err != nil {
			return fmt.Errorf("insert %s payload: %w", c.Type, err)
		}
	}
	return nil
}

// linkTags resolves each name and links it to the post. Linking a tag twice
// fails the whole write with DUPLICATE_TAG_LINK.
func linkTags(ctx context.Context, tx pgx.Tx, postID string, names []string) ([]tag.Tag, error) {
	out := []tag.Tag{}
	for _, name := range names {
		t, err := tag.ResolveOrCreate(ctx, tx, name)
		if err != nil {
			return nil, err
		}
		res, err := tx.Exec(ctx, `
			INSERT INTO post_tags (id, post_id, tag_id)
			VALUES ($1,$2,$3)
			ON CONFLICT (post_id, tag_id) DO NOTHING
		`, uuid.NewString(), postID, t.ID)
		if err != nil {
			return nil, fmt.Errorf("link tag: %w", err)
		}
		if res.RowsAffected() == 0 {
			return nil, apperr.WithMessage(apperr.ErrDuplicateTagLink, fmt.Sprintf("tag %q already linked to post", t.Name))
		}
		out = append(out, t)
	}
	return out, nil
}

// txError keeps typed failures and reports anything else as a failed
// transaction.
func txError(err error) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Wrap(apperr.ErrTransaction, err)
}
