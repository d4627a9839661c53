//go:build integration

package connection_test

import (
	"context"
	"testing"

	"backend-travelapp/internal/connection"
	"backend-travelapp/internal/db/dbtest"
	"backend-travelapp/internal/shared/apperr"
	"backend-travelapp/internal/user"

	"github.com/stretchr/testify/require"
)

func TestFollowScenarioAgainstPostgres(t *testing.T) {
	pool := dbtest.Start(t)
	ctx := context.Background()
	users := user.NewService(pool)

	var ids []string
	for _, name := range []string{"ana", "bruno"} {
		u, err := users.Create(ctx, user.CreateInput{
			Nickname: name,
			Username: name,
			Email:    name + "@example.com",
			Password: "viajar123",
			Phone:    "+55 92 90000-0000",
		})
		require.NoError(t, err)
		ids = append(ids, u.ID)
	}
	a, b := ids[0], ids[1]

	svc := connection.NewService(pool, nil)
	edge, err := svc.Follow(ctx, a, b)
	require.NoError(t, err)
	require.Equal(t, connection.StatePending, edge.State)

	_, err = svc.Follow(ctx, a, b)
	require.ErrorIs(t, err, apperr.ErrDuplicateRequest)

	accepted, err := svc.Accept(ctx, edge.ID, b)
	require.NoError(t, err)
	require.Equal(t, connection.StateAccepted, accepted.State)

	followers, err := svc.ListFollowers(ctx, b)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	require.Equal(t, edge.ID, followers[0].ID)

	removed, err := svc.Unfollow(ctx, a, b)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = svc.Unfollow(ctx, a, b)
	require.NoError(t, err)
	require.False(t, removed)
}
