package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/internal/validation"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=auth_test

type authService interface {
	Login(ctx context.Context, credentials Credentials, createdAt time.Time) (*LoginSession, error)
	Logout(ctx context.Context, token string) (bool, error)
}

type usersCreator interface {
	Create(ctx context.Context, username, passwordHash string, role Role) (*User, error)
}

type Handler struct {
	authService authService
	users       usersCreator
	validator   *validation.Validator
}

func NewHandler(authService authService, users usersCreator) *Handler {
	return &Handler{
		authService: authService,
		users:       users,
		validator:   validation.New(),
	}
}

// SetupRoutes registers the session routes on a router mounted at /a.
// Rate limiting and CORS are applied by the caller on that router.
func (handler *Handler) SetupRoutes(authRouter *mux.Router) {
	authRouter.
		HandleFunc("/login", handler.HandleLogin).
		Methods("POST", "OPTIONS").Name("login")
	authRouter.
		HandleFunc("/logout", handler.HandleLogout).
		Methods("GET", "POST", "OPTIONS").Name("logout")
	authRouter.
		HandleFunc("/users", handler.HandleCreateUser).
		Methods("POST", "OPTIONS").Name("users-new")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	var credentials Credentials
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusBadRequest)
			return
		}
		credentials = Credentials{
			Username: r.Form.Get("username"),
			Password: r.Form.Get("password"),
		}
	}

	if err := handler.validator.Validate(credentials); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := handler.authService.Login(ctx, credentials, time.Now())
	if err != nil {
		if errors.Is(err, ErrWrongCredentials) {
			http.Error(w, "error, wrong credentials", http.StatusUnauthorized)
			return
		}
		log.Errorf("login failed: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	sessionJson, err := json.Marshal(session)
	if err != nil {
		log.Errorf("login, marshal session: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	log.Tracef("new login success, user %d", session.Identity.UserID)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, sessionJson)
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := BearerToken(r)
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		log.Errorf("logout => %s: %s", r.URL.Path, err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

type newUserRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     Role   `json:"role" validate:"omitempty,oneof=user admin"`
}

// HandleCreateUser registers a new account. Admin only.
func (handler *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "authHandler.createUser")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	identity, ok := FromContext(ctx)
	if !ok || !identity.IsAdmin() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	var req newUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Errorf("create user, unmarshal json params: %s", err)
		http.Error(w, "invalid user data", http.StatusBadRequest)
		return
	}
	if err := handler.validator.Validate(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = RoleUser
	}

	passwordHash, err := pkg.HashPassword(req.Password)
	if err != nil {
		log.Errorf("create user, hash password: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	user, err := handler.users.Create(ctx, req.Username, passwordHash, req.Role)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "user already exists", http.StatusConflict)
			return
		}
		log.Errorf("create user: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("create user, marshal: %s", err)
		http.Error(w, "create user failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, userJson, http.StatusCreated)
}
