package auth

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/faciam-dev/gforms/internal/tenant"
)

// Handler serves the login and refresh endpoints.
type Handler struct {
	Repo *UserRepo
	JWT  *JWT
}

type loginBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type loginInput struct {
	Body loginBody
}

type loginOutput struct {
	Body tokenResponse
}

type refreshInput struct {
	Authorization string `header:"Authorization"`
}

// Register wires the auth endpoints. They are public; callers authenticate
// with credentials (login) or a still-valid token (refresh).
func Register(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/v1/auth/login",
		Summary:     "Login",
		Tags:        []string{"Auth"},
	}, h.login)

	huma.Register(api, huma.Operation{
		OperationID: "refresh",
		Method:      http.MethodPost,
		Path:        "/v1/auth/refresh",
		Summary:     "Refresh token",
		Tags:        []string{"Auth"},
	}, h.refresh)
}

func (h *Handler) issue(uid uint64, tid string) (*loginOutput, error) {
	tok, err := h.JWT.GenerateWithTenant(uid, tid)
	if err != nil {
		return nil, err
	}
	return &loginOutput{Body: tokenResponse{AccessToken: tok, ExpiresAt: time.Now().Add(h.JWT.exp)}}, nil
}

// login exchanges credentials for a token. Users are looked up within the
// caller's tenant; the same username may exist under different tenants.
func (h *Handler) login(ctx context.Context, in *loginInput) (*loginOutput, error) {
	tid := tenant.FromContext(ctx)
	u, err := h.Repo.GetByUsername(ctx, tid, in.Body.Username)
	if err != nil || u == nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	return h.issue(u.ID, tid)
}

// refresh re-issues a token from a still-valid one, preserving its tenant
// claim. The endpoint validates the bearer token itself so it works without
// the auth middleware.
func (h *Handler) refresh(ctx context.Context, in *refreshInput) (*loginOutput, error) {
	raw := strings.TrimPrefix(in.Authorization, "Bearer ")
	if raw == "" || raw == in.Authorization {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	claims, err := h.JWT.Validate(raw)
	if err != nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	uid, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return nil, huma.Error401Unauthorized("unauthorized")
	}
	return h.issue(uid, claims.TenantID)
}
