package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	sessionKeyPrefix = "gymlog-session||"
	tokensSetKey     = "gymlog-sessions"
	tokenLength      = 35
)

var (
	ErrWrongCredentials = errors.New("wrong credentials")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrMalformedSession = errors.New("malformed session")
)

type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginSession struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"createdAt"`
}

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=auth_test

type usersRepo interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type Service struct {
	redisClient *redis.Client
	users       usersRepo
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
	Now            func() time.Time
}

func NewAuthService(
	users usersRepo,
	ttl time.Duration,
	redisClient *redis.Client,
) *Service {
	return &Service{
		users:          users,
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
		Now:            time.Now,
	}
}

func sessionValue(identity Identity, createdAt time.Time) string {
	return fmt.Sprintf("%d|%s|%d", identity.UserID, identity.Role, createdAt.Unix())
}

func parseSessionValue(val string) (Identity, time.Time, error) {
	parts := strings.Split(val, "|")
	if len(parts) != 3 {
		return Identity{}, time.Time{}, ErrMalformedSession
	}

	userID, err := strconv.Atoi(parts[0])
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("%w: user id: %s", ErrMalformedSession, err)
	}
	role := Role(parts[1])
	if !role.Valid() {
		return Identity{}, time.Time{}, fmt.Errorf("%w: role %q", ErrMalformedSession, parts[1])
	}
	createdAtUnix, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return Identity{}, time.Time{}, fmt.Errorf("%w: created at: %s", ErrMalformedSession, err)
	}

	return Identity{UserID: userID, Role: role}, time.Unix(createdAtUnix, 0), nil
}

func (as *Service) Login(ctx context.Context, credentials Credentials, createdAt time.Time) (_ *LoginSession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	user, err := as.users.GetByUsername(ctx, credentials.Username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[username] failed login attempt for user: %s", credentials.Username)
			return nil, ErrWrongCredentials
		}
		return nil, err
	}

	if !pkg.CheckPasswordHash(credentials.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", credentials.Username)
		return nil, ErrWrongCredentials
	}

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return nil, err
	}

	identity := user.Identity()
	sessionKey := sessionKeyPrefix + token
	cmdSet := as.redisClient.Set(ctx, sessionKey, sessionValue(identity, createdAt), 0)
	if err := cmdSet.Err(); err != nil {
		return nil, err
	}

	// add token to list of sessions
	cmdSAdd := as.redisClient.SAdd(ctx, tokensSetKey, token)
	if err := cmdSAdd.Err(); err != nil {
		return nil, err
	}

	return &LoginSession{
		Token:     token,
		Identity:  identity,
		CreatedAt: createdAt,
	}, nil
}

// Logout removes the session. Reports false when there was nothing to log out from.
func (as *Service) Logout(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmdDel := as.redisClient.Del(ctx, sessionKey)
	if err := cmdDel.Err(); err != nil {
		return false, err
	}

	// remove token from the list of sessions
	cmdSRem := as.redisClient.SRem(ctx, tokensSetKey, token)
	if err := cmdSRem.Err(); err != nil {
		return false, err
	}

	return cmdDel.Val() > 0, nil
}

// Identity resolves a token to the caller identity, enforcing the session TTL.
func (as *Service) Identity(ctx context.Context, token string) (Identity, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := as.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, ErrSessionNotFound
		}
		return Identity{}, err
	}

	identity, createdAt, err := parseSessionValue(cmd.Val())
	if err != nil {
		return Identity{}, err
	}

	if as.Now().Sub(createdAt) > as.ttl {
		return Identity{}, ErrSessionExpired
	}

	return identity, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old
func (as *Service) ScanAndClean(ctx context.Context) {
	cmd := as.redisClient.SMembers(ctx, tokensSetKey)
	if err := cmd.Err(); err != nil {
		log.Errorf("!!! auth service, scan and clean, get sessions: %s", err)
		return
	}

	sessionTokens := cmd.Val()
	if len(sessionTokens) == 0 {
		log.Debugln("=> auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> auth service, scan and clean [%d sessions] start ...", len(sessionTokens))
	now := as.Now()
	var toRemove []string
	for _, token := range sessionTokens {
		sessionKey := sessionKeyPrefix + token
		cmd := as.redisClient.Get(ctx, sessionKey)
		if err := cmd.Err(); err != nil {
			if errors.Is(err, redis.Nil) {
				// dangling token in the set
				toRemove = append(toRemove, token)
				continue
			}
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			continue
		}

		_, createdAt, err := parseSessionValue(cmd.Val())
		if err != nil {
			log.Errorf("=> auth service, scan and clean token %s: %s", token, err)
			toRemove = append(toRemove, token)
			continue
		}

		if now.Sub(createdAt) > as.ttl {
			log.Debugf("=>\twill clean the session with token: %s", token)
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if _, err := as.Logout(ctx, token); err != nil {
			log.Errorf("=> auth service, clean token %s: %s", token, err)
		}
	}
}

// RunScanAndClean calls ScanAndClean every interval until ctx is done.
func (as *Service) RunScanAndClean(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			as.ScanAndClean(ctx)
		}
	}
}
