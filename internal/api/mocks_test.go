package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"example.com/galaxyfit/internal/auth"
	"example.com/galaxyfit/internal/domain"
)

type mockUserRepo struct {
	byEmail map[string]*domain.User
	created []domain.User
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.byEmail == nil {
		return nil, nil
	}
	return m.byEmail[email], nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user domain.User) error {
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	return nil
}

type mockWorkoutRepo struct {
	logs      []domain.WorkoutLog
	get       *domain.WorkoutLog
	lastPatch *domain.WorkoutPatch
	deleted   bool
	stats     domain.WorkoutStats
}

func (m *mockWorkoutRepo) ListByUser(ctx context.Context, userID string) ([]domain.WorkoutLog, error) {
	return m.logs, nil
}

func (m *mockWorkoutRepo) Get(ctx context.Context, id, userID string) (*domain.WorkoutLog, error) {
	return m.get, nil
}

func (m *mockWorkoutRepo) Create(ctx context.Context, log domain.WorkoutLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *mockWorkoutRepo) Update(ctx context.Context, id, userID string, patch domain.WorkoutPatch) (*domain.WorkoutLog, error) {
	m.lastPatch = &patch
	return m.get, nil
}

func (m *mockWorkoutRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	return m.deleted, nil
}

func (m *mockWorkoutRepo) StatsByUser(ctx context.Context, userID string) (domain.WorkoutStats, error) {
	return m.stats, nil
}

// mockTemplateRepo stores the created tree and serves it back on GetByID,
// close enough to the real read-after-write flow for handler tests.
type mockTemplateRepo struct {
	summaries    []domain.TemplateSummary
	active       *domain.TemplateDetail
	created      *domain.TemplateDetail
	replaced     *domain.TemplateDetail
	allowReplace bool
	activated    bool
	deleted      bool
}

func (m *mockTemplateRepo) ListSummaries(ctx context.Context, userID string) ([]domain.TemplateSummary, error) {
	return m.summaries, nil
}

func (m *mockTemplateRepo) GetActive(ctx context.Context, userID string) (*domain.TemplateDetail, error) {
	return m.active, nil
}

func (m *mockTemplateRepo) GetByID(ctx context.Context, id, userID string) (*domain.TemplateDetail, error) {
	if m.created != nil && m.created.ID == id {
		return m.created, nil
	}
	return nil, nil
}

func (m *mockTemplateRepo) CreateTree(ctx context.Context, tpl domain.TemplateDetail) error {
	tpl.IsActive = false
	m.created = &tpl
	return nil
}

func (m *mockTemplateRepo) ReplaceTree(ctx context.Context, tpl domain.TemplateDetail) (*domain.TemplateDetail, error) {
	if !m.allowReplace {
		return nil, nil
	}
	m.replaced = &tpl
	return m.replaced, nil
}

func (m *mockTemplateRepo) Activate(ctx context.Context, id, userID string, at time.Time) (bool, error) {
	return m.activated, nil
}

func (m *mockTemplateRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	return m.deleted, nil
}

type staticIssuer struct{ token string }

func (s staticIssuer) Issue(userID, email string) (string, error) { return s.token, nil }

func newTestHandler(users *mockUserRepo, workouts *mockWorkoutRepo, templates *mockTemplateRepo) *Handler {
	if users == nil {
		users = &mockUserRepo{}
	}
	if workouts == nil {
		workouts = &mockWorkoutRepo{}
	}
	if templates == nil {
		templates = &mockTemplateRepo{}
	}
	return NewHandler(
		domain.NewIdentityService(users, staticIssuer{token: "test-token"}),
		domain.NewWorkoutService(workouts),
		domain.NewTemplateService(templates),
		"/nonexistent/version.json",
	)
}

func authedRequest(t *testing.T, method, target string, body io.Reader) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	claims := &auth.Claims{
		UserID:    "user-1",
		Email:     "a@x.com",
		ExpiresAt: time.Now().Add(time.Hour),
	}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func jsonBody(t *testing.T, v interface{}) *strings.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return strings.NewReader(string(raw))
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func serve(h *Handler, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return env
}
