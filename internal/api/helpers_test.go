package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cleanapi/cleanapi/internal/api/shared"
	"github.com/cleanapi/cleanapi/internal/domain"
	"github.com/cleanapi/cleanapi/internal/mocks"
	"github.com/cleanapi/cleanapi/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type testEnvelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, env testEnvelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAPI mounts the handlers on a chi router. Requests made through do are
// authenticated as the given user without a token.
type testAPI struct {
	router  chi.Router
	users   *mocks.MockUserStore
	creds   *mocks.MockCredentialStore
	devices *mocks.MockDeviceStore
	files   *mocks.MockFileStore
	objects *mocks.MockObjectStore
}

func newTestAPI(maxUpload int64) *testAPI {
	a := &testAPI{
		users:   mocks.NewMockUserStore(),
		creds:   mocks.NewMockCredentialStore(),
		devices: mocks.NewMockDeviceStore(),
		files:   mocks.NewMockFileStore(),
		objects: mocks.NewMockObjectStore(),
	}
	log := discardLogger()

	userHandler := NewUserHandler(service.NewUserService(a.users, a.creds, &mocks.MockPasswordHasher{}, mocks.TxRunner(), log))
	deviceHandler := NewDeviceHandler(service.NewDeviceService(a.devices, mocks.TxRunner(), log))
	fileHandler := NewFileHandler(service.NewFileService(a.files, a.objects, maxUpload, log))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if raw := req.Header.Get("X-Test-User"); raw != "" {
				ctx := shared.WithIdentity(req.Context(), domain.Identity{UserID: uuid.MustParse(raw), ClientID: "test"})
				req = req.WithContext(ctx)
			}
			next.ServeHTTP(w, req)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Get("/", Handle(userHandler.List))
		r.Post("/", Handle(userHandler.Create))
		r.Get("/{id}", Handle(userHandler.Get))
		r.Put("/{id}", Handle(userHandler.Update))
		r.Delete("/{id}", Handle(userHandler.Delete))
		r.Put("/{id}/credential", Handle(userHandler.SetCredential))
	})
	r.Route("/device", func(r chi.Router) {
		r.Get("/", Handle(deviceHandler.List))
		r.Post("/", Handle(deviceHandler.Create))
		r.Put("/batch", Handle(deviceHandler.BatchUpsert))
		r.Get("/{id}", Handle(deviceHandler.Get))
		r.Put("/{id}", Handle(deviceHandler.Update))
		r.Delete("/{id}", Handle(deviceHandler.Delete))
	})
	r.Route("/file", func(r chi.Router) {
		r.Get("/", Handle(fileHandler.List))
		r.With(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				req.Body = http.MaxBytesReader(w, req.Body, fileHandler.MaxRequestBytes())
				next.ServeHTTP(w, req)
			})
		}).Post("/", Handle(fileHandler.Upload))
		r.Get("/{id}", fileHandler.Download)
		r.Delete("/{id}", Handle(fileHandler.Delete))
	})

	a.router = r
	return a
}

func (a *testAPI) do(t *testing.T, user uuid.UUID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != uuid.Nil {
		req.Header.Set("X-Test-User", user.String())
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// seedUser stores a user directly and returns its id.
func (a *testAPI) seedUser(t *testing.T, username string) uuid.UUID {
	t.Helper()
	user, err := domain.NewUser(username, username+"@example.com", uuid.Nil)
	require.NoError(t, err)
	a.users.Users[user.ID] = user
	return user.ID
}
