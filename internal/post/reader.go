package post

import (
	"context"
	"strings"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/location"
	"backend-travelapp/internal/tag"

	"github.com/jackc/pgx/v5"
)

const postColumns = `p.id, p.user_id, p.description, p.privacity, p.like_number, p.created_at`

// GetByID returns a post owned by callerID with all of its relations.
func (s *Service) GetByID(ctx context.Context, postID, callerID string) (Post, error) {
	posts, err := loadComposed(ctx, s.db, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.id=$1 AND p.user_id=$2
	`, postID, callerID)
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

// ListByOwner returns the caller's posts, newest first.
func (s *Service) ListByOwner(ctx context.Context, callerID string) ([]Post, error) {
	return loadComposed(ctx, s.db, `
		SELECT `+postColumns+`
		FROM posts p
		WHERE p.user_id=$1
		ORDER BY p.created_at DESC
	`, callerID)
}

// ListByTag returns posts of any owner linked to tagName, each with an owner
// summary. An unknown tag yields an empty list.
func (s *Service) ListByTag(ctx context.Context, tagName string) ([]Post, error) {
	tagName = strings.TrimSpace(tagName)
	if tagName == "" {
		return []Post{}, nil
	}

	rows, err := s.db.Query(ctx, `
		SELECT `+postColumns+`, u.username, u.nickname, u.photo_profile
		FROM posts p
		JOIN post_tags pt ON pt.post_id = p.id
		JOIN tags t ON t.id = pt.tag_id
		JOIN users u ON u.id = p.user_id
		WHERE t.name=$1
		ORDER BY p.created_at DESC
	`, tagName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var p Post
		o := &Owner{}
		if err := rows.Scan(&p.ID, &p.UserID, &p.Description, &p.Privacity, &p.LikeNumber, &p.CreatedAt,
			&o.Username, &o.Nickname, &o.PhotoProfile); err != nil {
			return nil, err
		}
		o.ID = p.UserID
		p.Owner = o
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := compose(ctx, s.db, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func loadComposed(ctx context.Context, q db.Querier, sql string, args ...any) ([]Post, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := compose(ctx, q, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// compose attaches components, locations and tags to posts, one query per
// relation.
func compose(ctx context.Context, q db.Querier, posts []Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}

	comps, err := loadComponents(ctx, q, ids)
	if err != nil {
		return err
	}
	locs, err := loadLocations(ctx, q, ids)
	if err != nil {
		return err
	}
	tags, err := loadTags(ctx, q, ids)
	if err != nil {
		return err
	}

	for i := range posts {
		id := posts[i].ID
		posts[i].Components = orEmpty(comps[id])
		posts[i].Locations = orEmpty(locs[id])
		posts[i].Tags = orEmpty(tags[id])
		sortComponents(posts[i].Components)
	}
	return nil
}

func loadComponents(ctx context.Context, q db.Querier, postIDs []string) (map[string][]Component, error) {
	rows, err := q.Query(ctx, `
		SELECT pc.id, pc.post_id, pc.kind, pc.sort_order, pc.position,
			ct.content, cp.url, cp.caption, cv.url, cv.duration_seconds
		FROM post_components pc
		LEFT JOIN component_texts ct ON ct.component_id = pc.id
		LEFT JOIN component_photos cp ON cp.component_id = pc.id
		LEFT JOIN component_videos cv ON cv.component_id = pc.id
		WHERE pc.post_id = ANY($1)
		ORDER BY pc.sort_order, pc.position
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]Component{}
	for rows.Next() {
		var (
			c                            Component
			kind                         string
			text, photoURL, caption, vid *string
			duration                     *int
		)
		if err := rows.Scan(&c.ID, &c.PostID, &kind, &c.Order, &c.position,
			&text, &photoURL, &caption, &vid, &duration); err != nil {
			return nil, err
		}
		c.Type = ComponentType(kind)
		switch c.Type {
		case ComponentText:
			c.Text = &TextPayload{Content: deref(text)}
		case ComponentPhoto:
			c.Photo = &PhotoPayload{URL: deref(photoURL), Caption: deref(caption)}
		case ComponentVideo:
			c.Video = &VideoPayload{URL: deref(vid)}
			if duration != nil {
				c.Video.Duration = *duration
			}
		}
		out[c.PostID] = append(out[c.PostID], c)
	}
	return out, rows.Err()
}

func loadLocations(ctx context.Context, q db.Querier, postIDs []string) (map[string][]location.Location, error) {
	rows, err := q.Query(ctx, `
		SELECT pl.post_id, l.id, l.country, l.region, l.city, l.description, l.created_at
		FROM post_locations pl
		JOIN locations l ON l.id = pl.location_id
		WHERE pl.post_id = ANY($1)
		ORDER BY l.country, l.region, l.city
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]location.Location{}
	for rows.Next() {
		var postID string
		var l location.Location
		if err := rows.Scan(&postID, &l.ID, &l.Country, &l.Region, &l.City, &l.Description, &l.CreatedAt); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], l)
	}
	return out, rows.Err()
}

func loadTags(ctx context.Context, q db.Querier, postIDs []string) (map[string][]tag.Tag, error) {
	rows, err := q.Query(ctx, `
		SELECT pt.post_id, t.id, t.name, t.created_at
		FROM post_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.post_id = ANY($1)
		ORDER BY pt.created_at
	`, postIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string][]tag.Tag{}
	for rows.Next() {
		var postID string
		var t tag.Tag
		if err := rows.Scan(&postID, &t.ID, &t.Name, &t.CreatedAt); err != nil {
			return nil, err
		}
		out[postID] = append(out[postID], t)
	}
	return out, rows.Err()
}

func scanPost(row pgx.Row) (Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.UserID, &p.Description, &p.Privacity, &p.LikeNumber, &p.CreatedAt)
	return p, err
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
