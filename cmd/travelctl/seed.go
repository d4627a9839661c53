package main

import (
	"context"
	"errors"
	"fmt"

	"backend-travelapp/internal/db"
	"backend-travelapp/internal/location"
	"backend-travelapp/internal/tag"
	"backend-travelapp/internal/user"
)

var seedUsers = []user.CreateInput{
	{Nickname: "Ana", Username: "ana", Email: "ana@example.com", Password: "viajar123", Phone: "+55 92 90000-0001"},
	{Nickname: "Bruno", Username: "bruno", Email: "bruno@example.com", Password: "viajar123", Phone: "+55 92 90000-0002"},
}

var seedTags = []string{"natureza", "aventura"}

var seedLocations = []location.Input{
	{Country: "Brasil", Region: "Norte", City: "Manaus", Description: "Encontro das Águas"},
}

type seedReport struct {
	Users     int
	Tags      int
	Locations int
}

// seed is idempotent: existing users are skipped, tags and locations are
// resolved rather than inserted.
func seed(ctx context.Context, q db.Querier) (seedReport, error) {
	var r seedReport

	users := user.NewService(q)
	for _, in := range seedUsers {
		if _, err := users.Create(ctx, in); err != nil {
			if errors.Is(err, user.ErrExists) {
				continue
			}
			return r, fmt.Errorf("seed user %s: %w", in.Username, err)
		}
		r.Users++
	}

	for _, name := range seedTags {
		if _, err := tag.ResolveOrCreate(ctx, q, name); err != nil {
			return r, fmt.Errorf("seed tag %s: %w", name, err)
		}
		r.Tags++
	}

	for _, in := range seedLocations {
		if _, err := location.ResolveOrCreate(ctx, q, in); err != nil {
			return r, fmt.Errorf("seed location %s: %w", in.City, err)
		}
		r.Locations++
	}
	return r, nil
}
