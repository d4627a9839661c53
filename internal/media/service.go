package media

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/shared/apperr"

	"github.com/google/uuid"
)

// UploadTTL is how long an upload URL stays valid for the client.
const UploadTTL = 15 * time.Minute

var ErrInvalidKind = apperr.Validation("INVALID_MEDIA_KIND", "kind must be PHOTO or VIDEO")

type Service struct {
	db      db.Querier
	baseURL string
}

func NewService(db db.Querier, baseURL string) *Service {
	return &Service{db: db, baseURL: strings.TrimRight(baseURL, "/")}
}

// SaveObject records an object for userID and returns the URL clients put
// into PHOTO and VIDEO components.
func (s *Service) SaveObject(ctx context.Context, userID, fileName string, kind Kind) (Object, error) {
	if kind != KindPhoto && kind != KindVideo {
		return Object{}, ErrInvalidKind
	}
	fileName = path.Base(strings.TrimSpace(fileName))
	if fileName == "" || fileName == "." || fileName == "/" || fileName == ".." {
		fileName = "upload"
	}

	obj := Object{ID: uuid.NewString(), UserID: userID, Kind: kind}
	obj.URL = s.baseURL + "/" + url.PathEscape(userID) + "/" + obj.ID + "-" + url.PathEscape(fileName)

	err := s.db.QueryRow(ctx, `
		INSERT INTO media_objects (id, user_id, url, kind)
		VALUES ($1,$2,$3,$4)
		RETURNING created_at
	`, obj.ID, obj.UserID, obj.URL, string(obj.Kind)).Scan(&obj.CreatedAt)
	if err != nil {
		return Object{}, err
	}
	return obj, nil
}

// List returns the objects uploaded by userID, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Object, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, url, kind, created_at
		FROM media_objects
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Object{}
	for rows.Next() {
		var o Object
		var kind string
		if err := rows.Scan(&o.ID, &o.UserID, &o.URL, &kind, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Kind = Kind(kind)
		out = append(out, o)
	}
	return out, rows.Err()
}
