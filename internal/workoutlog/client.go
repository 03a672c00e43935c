package workoutlog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/2beens/gymlog/internal/auth"
	"github.com/2beens/gymlog/internal/routines"
	"github.com/2beens/gymlog/internal/workouts"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const ClientUserAgent = "gymlog-cli/1.0"

// Client talks to the gymlog REST services. It satisfies RoutineSource and WorkoutCreator;
// the identity on the server side comes from the bearer token, so the identity arguments
// are only used for logging.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// do sends a JSON request and decodes a JSON response into out, when out is not nil.
// Non-2xx answers become a *ServiceError carrying the response body as message.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		reqBytes, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(reqBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", ClientUserAgent)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debugf("%s %s: status %d", method, path, resp.StatusCode)
		return &ServiceError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBytes)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Login opens a session and keeps its token for the following calls.
func (c *Client) Login(ctx context.Context, username, password string) (*auth.LoginSession, error) {
	var session auth.LoginSession
	if err := c.do(ctx, http.MethodPost, "/a/login", auth.Credentials{
		Username: username,
		Password: password,
	}, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.Token)
	return &session, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/a/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}

func (c *Client) Routines(ctx context.Context) ([]routines.Routine, error) {
	var list []routines.Routine
	if err := c.do(ctx, http.MethodGet, "/routines", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) Routine(ctx context.Context, identity auth.Identity, id int) (*routines.Routine, error) {
	log.Tracef("user %d: get routine %d", identity.UserID, id)
	var routine routines.Routine
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/routines/%d", id), nil, &routine); err != nil {
		return nil, err
	}
	return &routine, nil
}

func (c *Client) CreateWorkout(ctx context.Context, identity auth.Identity, nw workouts.NewWorkout) (*workouts.Workout, error) {
	log.Tracef("user %d: create workout for routine %d", identity.UserID, nw.RoutineID)
	var workout workouts.Workout
	if err := c.do(ctx, http.MethodPost, "/workouts", nw, &workout); err != nil {
		return nil, err
	}
	return &workout, nil
}

func (c *Client) WorkoutSummary(ctx context.Context, id int) (*workouts.Summary, error) {
	var summary workouts.Summary
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/workouts/%d/summary", id), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
