//go:build integration_test || all_tests

package test

import (
	"context"
	"errors"
	"net/http"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/workoutlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestLoginLogout() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := workoutlog.NewClient(serverEndpoint, 0)

	_, err := client.Login(ctx, testUsername, "bad-password")
	var serviceErr *workoutlog.ServiceError
	require.True(t, errors.As(err, &serviceErr))
	assert.Equal(t, http.StatusUnauthorized, serviceErr.StatusCode)

	session, err := client.Login(ctx, testUsername, testPassword)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, session.Identity.Role)

	routinesList, err := client.Routines(ctx)
	require.NoError(t, err)
	assert.NotNil(t, routinesList)

	token := client.Token()
	require.NoError(t, client.Logout(ctx))

	// the old token is gone
	status := s.doJSON(ctx, t, http.MethodGet, "/routines", token, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestProtectedRoutesNeedToken() {
	t := s.T()
	ctx := context.Background()

	for _, path := range []string{"/routines", "/workouts/page/1/size/10", "/exercises"} {
		status := s.doJSON(ctx, t, http.MethodGet, path, "", nil, nil)
		assert.Equal(t, http.StatusUnauthorized, status, path)
	}
}
