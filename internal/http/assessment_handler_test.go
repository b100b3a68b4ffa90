package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"personabot/internal/catalog"
	"personabot/internal/domain"
	"personabot/internal/llm"
	"personabot/internal/repository"
	"personabot/internal/service"
)

type memSessionRepo struct {
	sessions map[string]domain.AssessmentSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]domain.AssessmentSession)}
}

func (m *memSessionRepo) Create(_ context.Context, s domain.AssessmentSession) error {
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionRepo) Update(_ context.Context, s domain.AssessmentSession) (domain.AssessmentSession, error) {
	stored, ok := m.sessions[s.ID]
	if !ok {
		return domain.AssessmentSession{}, repository.ErrNotFound
	}
	if stored.Version != s.Version {
		return domain.AssessmentSession{}, repository.ErrConcurrentModification
	}
	s.Version++
	m.sessions[s.ID] = s
	return s, nil
}

func (m *memSessionRepo) GetByID(_ context.Context, id string) (domain.AssessmentSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domain.AssessmentSession{}, repository.ErrNotFound
	}
	return s, nil
}

func (m *memSessionRepo) FindOpenByUser(_ context.Context, userID string) (domain.AssessmentSession, error) {
	for _, s := range m.sessions {
		if s.UserID == userID && !s.Completed {
			return s, nil
		}
	}
	return domain.AssessmentSession{}, repository.ErrNotFound
}

func (m *memSessionRepo) DeleteAbandoned(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type memResultRepo struct {
	results []domain.Result
}

func (m *memResultRepo) Create(_ context.Context, r domain.Result) error {
	m.results = append(m.results, r)
	return nil
}

func (m *memResultRepo) FindLatestForUser(_ context.Context, userID string) (domain.Result, error) {
	var latest *domain.Result
	for i := range m.results {
		if m.results[i].UserID != userID {
			continue
		}
		if latest == nil || m.results[i].CompletedAt.After(latest.CompletedAt) {
			latest = &m.results[i]
		}
	}
	if latest == nil {
		return domain.Result{}, repository.ErrNotFound
	}
	return *latest, nil
}

const handlerBankYAML = `
questions:
  - id: q1
    text: "first"
    dimension: EI
    options:
      - { text: "A", weight: 2 }
      - { text: "B", weight: -2 }
  - id: q2
    text: "second"
    dimension: SN
    options:
      - { text: "A", weight: 1 }
      - { text: "B", weight: -1 }
`

func newTestRouter(t *testing.T) (*gin.Engine, *memSessionRepo, *memResultRepo, *service.JWTService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bank, err := catalog.ParseQuestionBank([]byte(handlerBankYAML))
	if err != nil {
		t.Fatalf("bank: %v", err)
	}

	var profilesYAML strings.Builder
	profilesYAML.WriteString("profiles:\n")
	for _, c := range domain.AllClassifications() {
		fmt.Fprintf(&profilesYAML, "  - classification: %s\n    title: \"T\"\n    description: \"D\"\n", c)
	}
	profiles, err := catalog.ParseProfileCatalog([]byte(profilesYAML.String()))
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}

	logger := zap.NewNop()
	sessionRepo := newMemSessionRepo()
	resultRepo := &memResultRepo{}

	assessSvc := service.NewAssessmentService(logger, sessionRepo, bank, nil)
	resultsSvc := service.NewResultsService(logger, bank, profiles)
	prayerSvc := service.NewPrayerService(logger, &llm.MockClient{Responses: []string{"NO_PRAYER"}}, &noopPrayerRepo{}, time.UTC)
	engagementSvc := service.NewEngagementService(logger, &llm.MockClient{Errs: []error{llm.ErrDisabled}})
	jwtSvc := service.NewJWTService("test-secret", "mentor-key", time.Hour)

	router := NewRouter(
		logger,
		NewAssessmentHandler(logger, assessSvc, resultsSvc, resultRepo),
		NewPrayerHandler(logger, prayerSvc, engagementSvc),
		NewAuthHandler(logger, jwtSvc),
		jwtSvc,
	)
	return router, sessionRepo, resultRepo, jwtSvc
}

type noopPrayerRepo struct{}

func (noopPrayerRepo) Create(context.Context, domain.Prayer) error { return nil }
func (noopPrayerRepo) ListBetween(context.Context, time.Time, time.Time) ([]domain.Prayer, error) {
	return nil, nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestStartEndpoint_ReturnsFirstQuestion(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Session  domain.AssessmentSession `json:"session"`
		Question struct {
			Number   int             `json:"number"`
			Total    int             `json:"total"`
			Question domain.Question `json:"question"`
		} `json:"question"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Question.Question.ID != "q1" || resp.Question.Number != 1 || resp.Question.Total != 2 {
		t.Fatalf("unexpected question payload: %+v", resp.Question)
	}
	if resp.Session.UserID != "u1" {
		t.Fatalf("unexpected session: %+v", resp.Session)
	}
}

func TestStartEndpoint_IdempotentResume(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	first := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)
	second := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)

	var a, b struct {
		Session domain.AssessmentSession `json:"session"`
	}
	json.Unmarshal(first.Body.Bytes(), &a)
	json.Unmarshal(second.Body.Bytes(), &b)
	if a.Session.ID == "" || a.Session.ID != b.Session.ID {
		t.Fatalf("expected resume of same session, got %q and %q", a.Session.ID, b.Session.ID)
	}
}

func TestAnswerEndpoint_FullFlow(t *testing.T) {
	router, _, resultRepo, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)
	var started struct {
		Session domain.AssessmentSession `json:"session"`
	}
	json.Unmarshal(w.Body.Bytes(), &started)

	w = doJSON(t, router, http.MethodPost, "/assessment/answer", gin.H{
		"session_id": started.Session.ID, "question_id": "q1", "option_index": 0,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on q1, got %d: %s", w.Code, w.Body.String())
	}
	var mid struct {
		Completed bool `json:"completed"`
		Question  struct {
			Question domain.Question `json:"question"`
		} `json:"question"`
	}
	json.Unmarshal(w.Body.Bytes(), &mid)
	if mid.Completed || mid.Question.Question.ID != "q2" {
		t.Fatalf("expected next question q2, got %+v", mid)
	}

	w = doJSON(t, router, http.MethodPost, "/assessment/answer", gin.H{
		"session_id": started.Session.ID, "question_id": "q2", "option_index": 1,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on q2, got %d: %s", w.Code, w.Body.String())
	}
	var done struct {
		Completed bool          `json:"completed"`
		Result    domain.Result `json:"result"`
	}
	json.Unmarshal(w.Body.Bytes(), &done)
	if !done.Completed || done.Result.Classification != "ENTJ" {
		t.Fatalf("expected completed ENTJ result, got %+v", done)
	}
	if len(resultRepo.results) != 1 {
		t.Fatalf("result must be persisted once, got %d", len(resultRepo.results))
	}

	// The latest-result endpoint now serves it.
	w = doJSON(t, router, http.MethodGet, "/results/latest?user_id=u1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from latest result, got %d", w.Code)
	}
}

func TestAnswerEndpoint_OutOfOrderConflict(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)
	var started struct {
		Session domain.AssessmentSession `json:"session"`
	}
	json.Unmarshal(w.Body.Bytes(), &started)

	w = doJSON(t, router, http.MethodPost, "/assessment/answer", gin.H{
		"session_id": started.Session.ID, "question_id": "q2", "option_index": 0,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for out-of-order answer, got %d", w.Code)
	}
}

func TestAnswerEndpoint_ZeroOptionIndexAccepted(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/assessment/start", gin.H{"user_id": "u1"}, nil)
	var started struct {
		Session domain.AssessmentSession `json:"session"`
	}
	json.Unmarshal(w.Body.Bytes(), &started)

	// option_index 0 must not be rejected by required-field binding.
	w = doJSON(t, router, http.MethodPost, "/assessment/answer", gin.H{
		"session_id": started.Session.ID, "question_id": "q1", "option_index": 0,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for option 0, got %d: %s", w.Code, w.Body.String())
	}
}

func TestLatestResult_NotFound(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/results/latest?user_id=nobody", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCurrentQuestion_NoOpenSession(t *testing.T) {
	router, _, _, _ := newTestRouter(t)
	w := doJSON(t, router, http.MethodGet, "/assessment/current?user_id=nobody", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestMentorRoutes_RequireToken(t *testing.T) {
	router, _, _, jwtSvc := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/prayers/week", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	token, err := jwtSvc.IssueMentorToken("mentor-key")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	w = doJSON(t, router, http.MethodGet, "/prayers/week", nil, map[string]string{
		"Authorization": "Bearer " + token,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}

func TestMentorTokenEndpoint(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/auth/mentor", gin.H{"mentor_key": "wrong"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong key, got %d", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/auth/mentor", gin.H{"mentor_key": "mentor-key"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Token == "" {
		t.Fatalf("expected a token in the response")
	}
}

func TestPrayerCapture_NoPrayerIsOK(t *testing.T) {
	router, _, _, _ := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/prayers", gin.H{
		"message_id": "m1",
		"user_id":    "u1",
		"content":    "just saying hi",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for no-prayer message, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Stored bool `json:"stored"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Stored {
		t.Fatalf("no-prayer message must not be stored")
	}
}
