package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/amilimetros/internal/db/dbtest"
	"github.com/Skotchmaster/amilimetros/internal/events"
	"github.com/Skotchmaster/amilimetros/internal/logging"
	"github.com/Skotchmaster/amilimetros/internal/middleware"
	"github.com/Skotchmaster/amilimetros/internal/repo"
	"github.com/Skotchmaster/amilimetros/internal/service"
	"github.com/Skotchmaster/amilimetros/internal/session"
	"github.com/Skotchmaster/amilimetros/internal/watch"
)

var testSecret = []byte("http-secret")

type testEnv struct {
	E      *echo.Echo
	Events *events.Recorder
	Logos  *repo.LogoRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := dbtest.NewSeeded(t)
	hub := watch.NewHub(50*time.Millisecond, nil)
	rec := &events.Recorder{}

	users := repo.NewUserRepo(gdb, hub)
	products := repo.NewProductRepo(gdb, hub)
	animals := repo.NewAnimalRepo(gdb, hub)
	sessions := session.NewStore(&session.GormBackend{DB: gdb})
	logos := repo.NewLogoRepo(gdb)

	e := echo.New()
	e.Use(middleware.RequestLogger(logging.Discard()))
	Register(e, &Deps{
		Auth: &middleware.Auth{Secret: testSecret, Sessions: sessions, Admins: users},
		AuthHandler: &AuthHandler{Auth: &service.AuthService{
			Users: users, Sessions: sessions, Events: rec,
			JWTSecret: testSecret, AccessTTL: time.Hour,
		}},
		ProductHandler: &ProductHandler{Catalog: &service.CatalogService{Products: products, Events: rec}},
		AnimalHandler:  &AnimalHandler{Animals: &service.AnimalService{Animals: animals, Events: rec}},
		CartHandler: &CartHandler{Cart: &service.CartService{
			Cart: repo.NewCartRepo(gdb, hub), Products: products, Events: rec,
		}},
		AdoptionHandler: &AdoptionHandler{Adoptions: &service.AdoptionService{
			Forms: repo.NewAdoptionRepo(gdb, hub), Animals: animals, Users: users, Events: rec,
		}},
		LogoHandler: &LogoHandler{Logos: logos},
	})
	return &testEnv{E: e, Events: rec, Logos: logos}
}

// call sends body as JSON with an optional bearer token.
func (env *testEnv) call(method, path, tok string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	rec := env.call(http.MethodPost, "/auth/login", "", echo.Map{"email": email, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.AccessToken)
	return res.AccessToken
}

func (env *testEnv) admin(t *testing.T) string {
	return env.login(t, "admin@amilimetros.com", "Admin123!_")
}

func (env *testEnv) user(t *testing.T) string {
	return env.login(t, "user@demo.com", "User123!_")
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}
