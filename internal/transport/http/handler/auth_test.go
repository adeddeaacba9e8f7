package handler_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/abakirov/storefront/internal/domain"
	"github.com/abakirov/storefront/internal/transport/http/handler"
	"github.com/abakirov/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuthUsecase implements the unexported authUsecaser interface via method matching.
type fakeAuthUsecase struct {
	register           func(ctx context.Context, input usecase.RegisterInput) (*domain.User, string, error)
	login              func(ctx context.Context, email, password string) (*domain.User, string, error)
	forgotPassword     func(ctx context.Context, email string) error
	validateResetToken func(ctx context.Context, rawToken string) (*domain.User, error)
	resetPassword      func(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, string, error)
}

func (f *fakeAuthUsecase) Register(ctx context.Context, input usecase.RegisterInput) (*domain.User, string, error) {
	return f.register(ctx, input)
}

func (f *fakeAuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return f.login(ctx, email, password)
}

func (f *fakeAuthUsecase) ForgotPassword(ctx context.Context, email string) error {
	return f.forgotPassword(ctx, email)
}

func (f *fakeAuthUsecase) ValidateResetToken(ctx context.Context, rawToken string) (*domain.User, error) {
	return f.validateResetToken(ctx, rawToken)
}

func (f *fakeAuthUsecase) ResetPassword(ctx context.Context, rawToken, password, passwordConfirm string) (*domain.User, string, error) {
	return f.resetPassword(ctx, rawToken, password, passwordConfirm)
}

func newTestEngine(uc *fakeAuthUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	h := handler.NewAuthHandler(uc, logger)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/forgot", h.Forgot)
	r.GET("/auth/reset/:token", h.ValidateReset)
	r.POST("/auth/reset/:token", h.Reset)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

var testUser = &domain.User{ID: "user-1", Email: "test@example.com", Name: "Test User"}

// ---- Register ----

func TestRegister_InvalidJSON_Returns400(t *testing.T) {
	w := postJSON(t, newTestEngine(&fakeAuthUsecase{}), "/auth/register", `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_ShortPassword_Returns400(t *testing.T) {
	w := postJSON(t, newTestEngine(&fakeAuthUsecase{}), "/auth/register",
		`{"name":"Test","email":"test@example.com","password":"short","password_confirm":"short"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_ConfirmMismatch_Returns400(t *testing.T) {
	w := postJSON(t, newTestEngine(&fakeAuthUsecase{}), "/auth/register",
		`{"name":"Test","email":"test@example.com","password":"password123","password_confirm":"password124"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestRegister_EmailTaken_Returns409(t *testing.T) {
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, string, error) {
			return nil, "", domain.ErrEmailTaken
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/register",
		`{"name":"Test","email":"test@example.com","password":"password123","password_confirm":"password123"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestRegister_Success_Returns201WithSession(t *testing.T) {
	const fakeJWT = "header.payload.signature"
	uc := &fakeAuthUsecase{
		register: func(_ context.Context, _ usecase.RegisterInput) (*domain.User, string, error) {
			return testUser, fakeJWT, nil
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/register",
		`{"name":"Test","email":"test@example.com","password":"password123","password_confirm":"password123"}`)
	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", w.Code)
	}
	if !strings.Contains(w.Body.String(), fakeJWT) {
		t.Errorf("body %q does not contain session token", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "gravatar.com/avatar/") {
		t.Errorf("body %q does not contain gravatar URL", w.Body.String())
	}
}

// ---- Login ----

func TestLogin_InvalidCredentials_Returns401(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestLogin_InternalError_Returns500(t *testing.T) {
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, string, error) {
			return nil, "", errors.New("db down")
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"password123"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "db down") {
		t.Error("internal error detail leaked to the client")
	}
}

func TestLogin_Success_Returns200WithSession(t *testing.T) {
	const fakeJWT = "header.payload.signature"
	uc := &fakeAuthUsecase{
		login: func(_ context.Context, _, _ string) (*domain.User, string, error) {
			return testUser, fakeJWT, nil
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/login",
		`{"email":"test@example.com","password":"password123"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), fakeJWT) {
		t.Errorf("body %q does not contain session token", w.Body.String())
	}
}

// ---- Forgot ----

func TestForgot_UnknownEmail_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		forgotPassword: func(_ context.Context, _ string) error {
			return domain.ErrUserNotFound
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/forgot", `{"email":"nobody@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestForgot_Success_Returns200(t *testing.T) {
	uc := &fakeAuthUsecase{
		forgotPassword: func(_ context.Context, _ string) error { return nil },
	}
	w := postJSON(t, newTestEngine(uc), "/auth/forgot", `{"email":"test@example.com"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}

// ---- ValidateReset ----

func TestValidateReset_InvalidToken_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		validateResetToken: func(_ context.Context, _ string) (*domain.User, error) {
			return nil, domain.ErrTokenInvalid
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/reset/bad-token", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestValidateReset_LiveToken_Returns200WithEmail(t *testing.T) {
	uc := &fakeAuthUsecase{
		validateResetToken: func(_ context.Context, _ string) (*domain.User, error) {
			return testUser, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/auth/reset/live-token", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), testUser.Email) {
		t.Errorf("body %q does not contain the account email", w.Body.String())
	}
}

// ---- Reset ----

func TestReset_SpentToken_Returns404(t *testing.T) {
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, _, _, _ string) (*domain.User, string, error) {
			return nil, "", domain.ErrTokenInvalid
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/reset/spent-token",
		`{"password":"new-password-1","password_confirm":"new-password-1"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReset_PassesTokenFromPath(t *testing.T) {
	var capturedToken string
	uc := &fakeAuthUsecase{
		resetPassword: func(_ context.Context, rawToken, _, _ string) (*domain.User, string, error) {
			capturedToken = rawToken
			return testUser, "header.payload.signature", nil
		},
	}
	w := postJSON(t, newTestEngine(uc), "/auth/reset/the-raw-token",
		`{"password":"new-password-1","password_confirm":"new-password-1"}`)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if capturedToken != "the-raw-token" {
		t.Errorf("token = %q, want the-raw-token", capturedToken)
	}
}
