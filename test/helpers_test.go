//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/2beens/gymlog/internal/workoutlog"

	"github.com/stretchr/testify/require"
)

// doJSON sends a JSON request as the terminal client would, decoding any JSON response into
// out when it is not nil. It returns the response status.
func (s *IntegrationTestSuite) doJSON(ctx context.Context, t *testing.T, method, path, token string, in, out any) int {
	t.Helper()

	var body io.Reader
	if in != nil {
		reqBytes, err := json.Marshal(in)
		require.NoError(t, err)
		body = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, body)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(respBytes, out), string(respBytes))
	}
	return resp.StatusCode
}

func (s *IntegrationTestSuite) loggedInClient(ctx context.Context, t *testing.T, username, password string) *workoutlog.Client {
	t.Helper()

	client := workoutlog.NewClient(serverEndpoint, 0)
	_, err := client.Login(ctx, username, password)
	require.NoError(t, err)
	require.NotEmpty(t, client.Token())
	return client
}
