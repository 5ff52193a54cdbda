package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-pool/internal/config"
	"github.com/jonathan/talent-pool/internal/recompute"
	"github.com/jonathan/talent-pool/internal/schemas"
	"github.com/jonathan/talent-pool/internal/scoring"
	"github.com/jonathan/talent-pool/internal/server/ratelimit"
	"github.com/jonathan/talent-pool/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type memoryStore struct {
	mu          sync.Mutex
	candidates  map[uuid.UUID]*types.Candidate
	assessments map[uuid.UUID]*types.AssessmentCompletion
	jobs        map[uuid.UUID]*types.JobRequirements
	users       map[string]*types.User
	listErr     error
	saves       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		candidates:  map[uuid.UUID]*types.Candidate{},
		assessments: map[uuid.UUID]*types.AssessmentCompletion{},
		jobs:        map[uuid.UUID]*types.JobRequirements{},
		users:       map[string]*types.User{},
	}
}

func (m *memoryStore) addCandidate(c types.Candidate) uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.Role = types.RoleJobSeeker
	if c.ScoreVersion == 0 {
		c.ScoreVersion = 1
	}
	m.candidates[c.ID] = &c
	return c.ID
}

func (m *memoryStore) sorted() []types.Candidate {
	var out []types.Candidate
	for _, c := range m.candidates {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProfileScore != out[j].ProfileScore {
			return out[i].ProfileScore > out[j].ProfileScore
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (m *memoryStore) ListCandidates(_ context.Context, filter types.CandidateFilter) ([]types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []types.Candidate
	for _, c := range m.sorted() {
		if len(filter.IDs) > 0 {
			found := false
			for _, id := range filter.IDs {
				found = found || id == c.ID
			}
			if !found {
				continue
			}
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) GetCandidate(_ context.Context, id uuid.UUID) (*types.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memoryStore) SaveScore(_ context.Context, id uuid.UUID, update types.ScoreUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.candidates[id]
	if !ok {
		return types.ErrCandidateNotFound
	}
	scores := update.Scores
	computedAt := update.ComputedAt
	c.Scores = &scores
	c.ProfileScore = update.ProfileScore
	c.ScoreVersion = update.ScoreVersion
	c.LastScoreComputedAt = &computedAt
	m.saves++
	return nil
}

func (m *memoryStore) LatestAssessment(_ context.Context, id uuid.UUID) (*types.AssessmentCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assessments[id], nil
}

func (m *memoryStore) ListTalentPool(_ context.Context, q types.TalentPoolQuery) ([]types.Candidate, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	q.Normalize()
	all := m.sorted()
	start := min(q.Offset(), len(all))
	end := min(start+q.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *memoryStore) GetJobRequirements(_ context.Context, id uuid.UUID) (*types.JobRequirements, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.jobs[id], nil
}

func (m *memoryStore) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

type testEnv struct {
	server *Server
	store  *memoryStore
	jwt    *JWTService
	pw     *config.PasswordConfig
}

func setupTestServer(t *testing.T, rateCfg *ratelimit.Config) *testEnv {
	t.Helper()
	store := newMemoryStore()
	validator, err := schemas.NewBreakdownValidator(1)
	require.NoError(t, err)
	scorer := scoring.NewScorer(store, scoring.WithClock(func() time.Time { return fixedNow }))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	driver := recompute.NewDriver(store, scorer, validator, recompute.DefaultConfig(), logger)

	if rateCfg == nil {
		rateCfg = &ratelimit.Config{Enabled: false}
	}
	pw := &config.PasswordConfig{BcryptCost: bcrypt.MinCost}
	srv, err := New(Config{
		JWT:       &config.JWTConfig{Secret: "server-test-secret-0123456789", Issuer: "talent-pool", ExpirationHours: 1},
		Password:  pw,
		RateLimit: rateCfg,
		Logger:    logger,
	}, store, driver)
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, store: store, jwt: srv.JWT(), pw: pw}
}

func (e *testEnv) token(t *testing.T, id uuid.UUID, role types.Role) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(types.Session{UserID: id, Email: "u@example.com", Role: role})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t, nil)
	w := env.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
}

func TestCORSPreflight(t *testing.T) {
	env := setupTestServer(t, nil)
	w := env.do(t, http.MethodOptions, "/v1/talent-pool", "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestLogin(t *testing.T) {
	env := setupTestServer(t, nil)
	hash, err := env.pw.HashPassword("s3cret-pass")
	require.NoError(t, err)
	recruiterID := uuid.New()
	env.store.users["rita@example.com"] = &types.User{
		ID: recruiterID, Name: "Rita", Email: "rita@example.com", PasswordHash: hash, Role: types.RoleRecruiter,
	}

	t.Run("success", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/v1/auth/login", "", `{"email":"Rita@example.com","password":"s3cret-pass"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[types.LoginResponse](t, w)
		assert.Equal(t, recruiterID, resp.Session.UserID)
		assert.Equal(t, types.RoleRecruiter, resp.Session.Role)

		claims, err := env.jwt.ValidateToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, types.RoleRecruiter, claims.Role)
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{name: "wrong password", body: `{"email":"rita@example.com","password":"nope"}`, wantStatus: http.StatusUnauthorized},
		{name: "unknown email", body: `{"email":"ghost@example.com","password":"s3cret-pass"}`, wantStatus: http.StatusUnauthorized},
		{name: "invalid email", body: `{"email":"rita","password":"x"}`, wantStatus: http.StatusBadRequest},
		{name: "malformed body", body: `{`, wantStatus: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/v1/auth/login", "", tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.False(t, decode[failureResponse](t, w).Success)
		})
	}
}

func TestRecompute_Authorization(t *testing.T) {
	env := setupTestServer(t, nil)

	w := env.do(t, http.MethodPost, "/v1/talent-pool/recompute", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/v1/talent-pool/recompute", env.token(t, uuid.New(), types.RoleJobSeeker), "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodPost, "/v1/talent-pool/recompute", env.token(t, uuid.New(), types.RoleAdmin), "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecompute_UpdatesScores(t *testing.T) {
	env := setupTestServer(t, nil)
	years := 5.0
	a := env.store.addCandidate(types.Candidate{Skills: []string{"Go", "SQL"}, YearsOfExperience: &years, UpdatedAt: fixedNow})
	b := env.store.addCandidate(types.Candidate{Skills: []string{"Python"}, UpdatedAt: fixedNow})
	env.store.addCandidate(types.Candidate{Skills: []string{"Rust"}, UpdatedAt: fixedNow})
	recruiter := env.token(t, uuid.New(), types.RoleRecruiter)

	body, err := json.Marshal(types.RecomputeRequest{CandidateIDs: []uuid.UUID{a, b}})
	require.NoError(t, err)
	w := env.do(t, http.MethodPost, "/v1/talent-pool/recompute", recruiter, string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[types.RecomputeResponse](t, w)
	assert.True(t, resp.Success)
	assert.Equal(t, 2, resp.UpdatedCount)
	assert.Empty(t, resp.FailedIDs)
	assert.Equal(t, 2, env.store.saves)

	stored, err := env.store.GetCandidate(context.Background(), a)
	require.NoError(t, err)
	require.NotNil(t, stored.Scores)
	assert.Equal(t, stored.Scores.Total, stored.ProfileScore)
	assert.Positive(t, stored.ProfileScore)
}

func TestRecompute_EmptyBodyUsesDefaults(t *testing.T) {
	env := setupTestServer(t, nil)
	for i := 0; i < 3; i++ {
		env.store.addCandidate(types.Candidate{Skills: []string{"Go"}, UpdatedAt: fixedNow})
	}
	w := env.do(t, http.MethodPost, "/v1/talent-pool/recompute", env.token(t, uuid.New(), types.RoleRecruiter), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, decode[types.RecomputeResponse](t, w).UpdatedCount)
}

func TestRecompute_Errors(t *testing.T) {
	env := setupTestServer(t, nil)
	recruiter := env.token(t, uuid.New(), types.RoleRecruiter)

	w := env.do(t, http.MethodPost, "/v1/talent-pool/recompute", recruiter, `{"limit": "lots"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.store.listErr = errors.New("database unavailable")
	w = env.do(t, http.MethodPost, "/v1/talent-pool/recompute", recruiter, `{}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[types.RecomputeResponse](t, w)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
}

func TestListTalentPool_LazyScoring(t *testing.T) {
	env := setupTestServer(t, nil)
	unscored := env.store.addCandidate(types.Candidate{Name: "New", Skills: []string{"Go", "SQL", "K8s"}, UpdatedAt: fixedNow})
	scored := env.store.addCandidate(types.Candidate{Name: "Old", ProfileScore: 42, Scores: &types.ScoreBreakdown{Total: 42}, UpdatedAt: fixedNow})
	env.store.assessments[scored] = &types.AssessmentCompletion{Score: 80, CompletedAt: fixedNow}

	w := env.do(t, http.MethodGet, "/v1/talent-pool", env.token(t, uuid.New(), types.RoleRecruiter), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[types.TalentPoolPage](t, w)
	assert.True(t, page.Success)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, types.DefaultTalentPoolLimit, page.Limit)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Candidates, 2)

	byID := map[uuid.UUID]types.TalentPoolEntry{}
	for _, e := range page.Candidates {
		byID[e.ID] = e
	}
	assert.Positive(t, byID[unscored].ProfileScore)
	require.NotNil(t, byID[unscored].Scores)
	assert.Equal(t, 42, byID[scored].ProfileScore, "existing score is not recomputed")
	require.NotNil(t, byID[scored].LatestAssessment)
	assert.InDelta(t, 80, byID[scored].LatestAssessment.Score, 1e-9)
	assert.Equal(t, 1, env.store.saves)
}

func TestListTalentPool_JobRanking(t *testing.T) {
	env := setupTestServer(t, nil)
	five := 5.0
	strong := env.store.addCandidate(types.Candidate{ProfileScore: 50, Skills: []string{"go", "postgres"}, YearsOfExperience: &five})
	weak := env.store.addCandidate(types.Candidate{ProfileScore: 60, Skills: []string{"php"}})
	jobID := uuid.New()
	env.store.jobs[jobID] = &types.JobRequirements{ID: jobID, SkillsRequired: []string{"Go", "Postgres"}, Experience: "3+ years"}

	w := env.do(t, http.MethodGet, "/v1/talent-pool?sort=job&jobId="+jobID.String(), env.token(t, uuid.New(), types.RoleAdmin), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	page := decode[types.TalentPoolPage](t, w)
	require.Len(t, page.Candidates, 2)
	require.NotNil(t, page.JobID)
	assert.Equal(t, jobID, *page.JobID)

	first, second := page.Candidates[0], page.Candidates[1]
	assert.Equal(t, strong, first.ID)
	assert.Equal(t, weak, second.ID)
	require.NotNil(t, first.JobMatchScore)
	assert.Equal(t, 100, *first.JobMatchScore)
	assert.Equal(t, 65, *first.FinalScore)
	assert.Equal(t, 0, *second.JobMatchScore)
	assert.Equal(t, 42, *second.FinalScore)
}

func TestListTalentPool_BadParams(t *testing.T) {
	env := setupTestServer(t, nil)
	recruiter := env.token(t, uuid.New(), types.RoleRecruiter)

	for _, query := range []string{"sort=alphabetical", "jobId=not-a-uuid", "minScore=high", "minYears=many", "page=x"} {
		t.Run(query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/v1/talent-pool?"+query, recruiter, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := env.do(t, http.MethodGet, "/v1/talent-pool", env.token(t, uuid.New(), types.RoleJobSeeker), "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestListTalentPool_StoreFailure(t *testing.T) {
	env := setupTestServer(t, nil)
	env.store.listErr = errors.New("boom")
	w := env.do(t, http.MethodGet, "/v1/talent-pool", env.token(t, uuid.New(), types.RoleRecruiter), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.False(t, decode[failureResponse](t, w).Success)
}

func TestParseTalentPoolQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/talent-pool?q=+ada+&minScore=30&skills=Go,%20SQL,,&minYears=2.5&sort=recent&page=2&limit=500", nil)
	q, err := parseTalentPoolQuery(req.URL.Query())
	require.NoError(t, err)
	assert.Equal(t, "ada", q.Q)
	assert.Equal(t, 30, q.MinScore)
	assert.Equal(t, []string{"Go", "SQL"}, q.Skills)
	assert.InDelta(t, 2.5, q.MinYears, 1e-9)
	assert.Equal(t, types.SortByRecent, q.Sort)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, types.MaxTalentPoolLimit, q.Limit)
	assert.Nil(t, q.JobID)
}

func TestCandidateScore(t *testing.T) {
	env := setupTestServer(t, nil)
	self := env.store.addCandidate(types.Candidate{Skills: []string{"Go"}, UpdatedAt: fixedNow})
	other := env.store.addCandidate(types.Candidate{Skills: []string{"Go"}, UpdatedAt: fixedNow})
	selfToken := env.token(t, self, types.RoleJobSeeker)
	recruiter := env.token(t, uuid.New(), types.RoleRecruiter)

	w := env.do(t, http.MethodPost, "/v1/candidates/"+self.String()+"/score", selfToken, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	posted := decode[CandidateScoreResponse](t, w)
	require.NotNil(t, posted.Scores)
	assert.Equal(t, posted.Scores.Total, posted.ProfileScore)
	require.NotNil(t, posted.LastScoreComputedAt)
	assert.True(t, fixedNow.Equal(*posted.LastScoreComputedAt))

	w = env.do(t, http.MethodGet, "/v1/candidates/"+self.String()+"/score", selfToken, "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[CandidateScoreResponse](t, w)
	assert.Equal(t, posted.ProfileScore, got.ProfileScore)

	w = env.do(t, http.MethodGet, "/v1/candidates/"+other.String()+"/score", selfToken, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/v1/candidates/"+other.String()+"/score", recruiter, "")
	assert.Equal(t, http.StatusOK, w.Code)

	missing := uuid.New().String()
	w = env.do(t, http.MethodGet, "/v1/candidates/"+missing+"/score", recruiter, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do(t, http.MethodPost, "/v1/candidates/"+missing+"/score", recruiter, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/v1/candidates/not-a-uuid/score", recruiter, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/v1/candidates/"+self.String()+"/score", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit(t *testing.T) {
	env := setupTestServer(t, &ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []ratelimit.EndpointConfig{
			{Path: "/v1/talent-pool/recompute", Method: "POST", Limit: 6, Window: time.Hour, Burst: 1},
		},
	})
	admin := env.token(t, uuid.New(), types.RoleAdmin)

	w := env.do(t, http.MethodPost, "/v1/talent-pool/recompute", admin, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "6", w.Header().Get("X-RateLimit-Limit"))

	w = env.do(t, http.MethodPost, "/v1/talent-pool/recompute", admin, "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	var body bytes.Buffer
	body.Write(w.Body.Bytes())
	assert.Contains(t, body.String(), "rate_limit_exceeded")
}
