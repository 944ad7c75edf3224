package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/locaspot/booking-api/internal/model"
	"github.com/locaspot/booking-api/internal/repository"
	"github.com/locaspot/booking-api/internal/utils"
)

const testSecret = "session-test-secret"

type fixedLoader struct {
	users map[uint64]model.User
}

func (l fixedLoader) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := l.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func resolveRequest(t *testing.T, loader UserLoader, decorate func(*http.Request)) (*model.User, int) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if decorate != nil {
		decorate(req)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var seen *model.User
	h := ResolveUser(testSecret, loader)(func(c echo.Context) error {
		seen = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return seen, rec.Code
}

func TestResolveUser_ValidCookie(t *testing.T) {
	loader := fixedLoader{users: map[uint64]model.User{
		5: {ID: 5, Email: "a@b.io", Role: model.RoleUser, Active: true},
	}}
	tok, err := utils.NewSessionToken(testSecret, 5, 7)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	u, code := resolveRequest(t, loader, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if u == nil || u.ID != 5 {
		t.Fatalf("expected user 5 resolved, got %+v", u)
	}
}

func TestResolveUser_BearerFallback(t *testing.T) {
	loader := fixedLoader{users: map[uint64]model.User{
		5: {ID: 5, Role: model.RoleUser, Active: true},
	}}
	tok, err := utils.NewSessionToken(testSecret, 5, 7)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	u, _ := resolveRequest(t, loader, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+tok.Token)
	})
	if u == nil || u.ID != 5 {
		t.Fatalf("expected user 5 resolved via bearer header, got %+v", u)
	}
}

func TestResolveUser_GarbageTokenIsGuest(t *testing.T) {
	loader := fixedLoader{users: map[uint64]model.User{}}

	u, code := resolveRequest(t, loader, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-jwt"})
	})
	if code != http.StatusOK {
		t.Fatalf("garbage token must not fail the request, got %d", code)
	}
	if u != nil {
		t.Fatalf("garbage token must resolve as guest, got %+v", u)
	}
}

func TestResolveUser_WrongSecretIsGuest(t *testing.T) {
	loader := fixedLoader{users: map[uint64]model.User{
		5: {ID: 5, Role: model.RoleUser, Active: true},
	}}
	tok, err := utils.NewSessionToken("some-other-secret", 5, 7)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	u, _ := resolveRequest(t, loader, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	})
	if u != nil {
		t.Fatalf("token signed with another secret must resolve as guest, got %+v", u)
	}
}

func TestResolveUser_InactiveAccountIsGuest(t *testing.T) {
	loader := fixedLoader{users: map[uint64]model.User{
		5: {ID: 5, Role: model.RoleUser, Active: false},
	}}
	tok, err := utils.NewSessionToken(testSecret, 5, 7)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	u, _ := resolveRequest(t, loader, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: SessionCookie, Value: tok.Token})
	})
	if u != nil {
		t.Fatalf("inactive account must resolve as guest, got %+v", u)
	}
}

func TestRequireAuth_GuestRejected(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := RequireAuth()(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if called {
		t.Fatal("handler must not run for guests")
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		name string
		user *model.User
		want int
	}{
		{"guest", nil, http.StatusUnauthorized},
		{"plain user", &model.User{ID: 2, Role: model.RoleUser, Active: true}, http.StatusForbidden},
		{"admin", &model.User{ID: 1, Role: model.RoleAdmin, Active: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.user != nil {
				SetCurrentUser(c, tc.user)
			}

			h := RequireRole(model.RoleAdmin)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
