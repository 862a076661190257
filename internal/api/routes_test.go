package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fernnog/reading-plan/internal/domain"
	"fernnog/reading-plan/internal/repository"
	"fernnog/reading-plan/internal/service"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "route-test-secret"

type memPlanRepo struct {
	mu    sync.Mutex
	plans map[primitive.ObjectID]*domain.ReadingPlan
}

func (r *memPlanRepo) Create(ctx context.Context, plan *domain.ReadingPlan) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	plan.ID = primitive.NewObjectID()
	plan.Version = 1
	r.plans[plan.ID] = plan.Clone()
	return plan.ID, nil
}

func (r *memPlanRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ReadingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (r *memPlanRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.ReadingPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ReadingPlan{}
	for _, p := range r.plans {
		if p.UserID == userID {
			out = append(out, *p.Clone())
		}
	}
	return out, nil
}

func (r *memPlanRepo) Update(ctx context.Context, plan *domain.ReadingPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.plans[plan.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != plan.Version {
		return repository.ErrConflict
	}
	plan.Version++
	r.plans[plan.ID] = plan.Clone()
	return nil
}

func (r *memPlanRepo) Delete(ctx context.Context, id, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.plans[id]; !ok || p.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.plans, id)
	return nil
}

type memBackupRepo struct{}

func (memBackupRepo) Create(ctx context.Context, b *domain.PlanBackup) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}
func (memBackupRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PlanBackup, error) {
	return nil, repository.ErrNotFound
}
func (memBackupRepo) GetByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanBackup, error) {
	return []domain.PlanBackup{}, nil
}
func (memBackupRepo) Delete(ctx context.Context, id primitive.ObjectID) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	if email == "taken@example.com" {
		return nil, service.ErrUserAlreadyExists
	}
	return &domain.User{ID: primitive.NewObjectID(), Name: name, Email: email, Role: domain.RoleReader}, nil
}

func (stubAuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	return "", nil, service.ErrAuthenticationFailed
}

func (stubAuthService) GetJWTSecret() string { return testSecret }

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	planService := service.NewReadingPlanService(&memPlanRepo{plans: map[primitive.ObjectID]*domain.ReadingPlan{}}, 3)
	backupService := service.NewBackupService(planService, memBackupRepo{}, nil, 0)
	SetupRoutes(router, testSecret, stubAuthService{}, planService, backupService)
	return router
}

func tokenFor(t *testing.T, userID primitive.ObjectID, role domain.Role) string {
	t.Helper()
	claims := &jwtClaims{
		UserID: userID.Hex(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func doRequest(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createTestPlan(t *testing.T, router *gin.Engine, token string) PlanResponse {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/api/v1/plans", token, gin.H{
		"name":           "Gospel of Mark",
		"creationMethod": "interval",
		"startBook":      "Mark",
		"startChapter":   1,
		"endBook":        "Mark",
		"endChapter":     16,
		"durationMethod": "chapters-per-day",
		"chaptersPerDay": 2,
		"startDate":      "2024-01-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create plan: %d %s", w.Code, w.Body.String())
	}
	var resp CreatePlanResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Diagnostics == nil || len(resp.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", resp.Diagnostics)
	}
	return resp.Plan
}

func TestPublicRoutes(t *testing.T) {
	router := newTestRouter()

	if w := doRequest(router, http.MethodGet, "/ping", "", nil); w.Code != http.StatusOK {
		t.Errorf("ping: %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, "/api/v1/books", "", nil)
	var books []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &books); err != nil || len(books) != 66 {
		t.Errorf("books: %d entries, err %v", len(books), err)
	}

	w = doRequest(router, http.MethodPost, "/api/v1/books/parse", "", gin.H{"text": "John 3, Mystery 2"})
	var parsed ChapterParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Diagnostics) != 1 {
		t.Errorf("parse: %+v", parsed)
	}

	if w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "A", "email": "taken@example.com", "password": "longenough"}); w.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "A", "email": "not-an-email", "password": "longenough"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad email: %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "a@example.com", "password": "x"}); w.Code != http.StatusUnauthorized {
		t.Errorf("failed login: %d", w.Code)
	}
}

func TestPlanRoutes(t *testing.T) {
	router := newTestRouter()
	owner := primitive.NewObjectID()
	token := tokenFor(t, owner, domain.RoleReader)

	if w := doRequest(router, http.MethodGet, "/api/v1/plans", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("missing token: %d", w.Code)
	}

	plan := createTestPlan(t, router, token)
	if plan.TotalChapters != 16 || plan.State != "active" || plan.EndDate != "2024-01-08" {
		t.Errorf("created plan: %+v", plan)
	}
	base := "/api/v1/plans/" + plan.ID

	stranger := tokenFor(t, primitive.NewObjectID(), domain.RoleReader)
	if w := doRequest(router, http.MethodGet, base, stranger, nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign plan: %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, "/api/v1/plans/not-an-id", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: %d", w.Code)
	}

	w := doRequest(router, http.MethodPost, base+"/read", token, gin.H{"date": "2024-01-01"})
	if w.Code != http.StatusOK {
		t.Fatalf("read: %d %s", w.Code, w.Body.String())
	}
	var read MarkReadResponse
	_ = json.Unmarshal(w.Body.Bytes(), &read)
	if read.Plan.CurrentDay != 2 || len(read.ChaptersRead) != 2 || read.Plan.Version != 2 {
		t.Errorf("read response: %+v", read)
	}

	// Empty body means today.
	if w := doRequest(router, http.MethodPost, base+"/read", token, nil); w.Code != http.StatusOK {
		t.Errorf("read without body: %d %s", w.Code, w.Body.String())
	}

	if w := doRequest(router, http.MethodPost, base+"/recalculate", token, gin.H{"targetEndDate": "2099-01-01", "pace": 2}); w.Code != http.StatusBadRequest {
		t.Errorf("both targets: %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, base+"/recalculate", token, gin.H{"targetEndDate": "2000-01-01"}); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("past target: %d", w.Code)
	}
	w = doRequest(router, http.MethodPost, base+"/recalculate", token, gin.H{"pace": 4})
	if w.Code != http.StatusOK {
		t.Fatalf("recalculate: %d %s", w.Code, w.Body.String())
	}
	var recalc RecalculateResponse
	_ = json.Unmarshal(w.Body.Bytes(), &recalc)
	if recalc.Event == nil || recalc.Plan.State != "recalculated" || len(recalc.Plan.RecalculationHistory) != 1 {
		t.Errorf("recalculate response: %+v", recalc)
	}

	if w := doRequest(router, http.MethodGet, base+"/pace-preview?pace=abc", token, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad pace: %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, base+"/pace-preview?pace=1e-15", token, nil); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("pace too slow to finish: %d %s", w.Code, w.Body.String())
	}
	if w := doRequest(router, http.MethodGet, base+"/pace-preview?pace=3", token, nil); w.Code != http.StatusOK {
		t.Errorf("pace preview: %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, base+"/schedule", token, nil); w.Code != http.StatusOK {
		t.Errorf("schedule: %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, base+"/progress", token, nil); w.Code != http.StatusOK {
		t.Errorf("progress: %d", w.Code)
	}
	if w := doRequest(router, http.MethodPost, base+"/backups", token, nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("backups disabled: %d", w.Code)
	}

	if w := doRequest(router, http.MethodDelete, base, token, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete: %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, base, token, nil); w.Code != http.StatusNotFound {
		t.Errorf("deleted plan: %d", w.Code)
	}
}

func TestAdminRoutes(t *testing.T) {
	router := newTestRouter()
	owner := primitive.NewObjectID()
	createTestPlan(t, router, tokenFor(t, owner, domain.RoleReader))

	path := "/api/v1/admin/users/" + owner.Hex() + "/plans"
	if w := doRequest(router, http.MethodGet, path, tokenFor(t, owner, domain.RoleReader), nil); w.Code != http.StatusForbidden {
		t.Errorf("reader on admin route: %d", w.Code)
	}

	w := doRequest(router, http.MethodGet, path, tokenFor(t, primitive.NewObjectID(), domain.RoleAdmin), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin list: %d", w.Code)
	}
	var plans []PlanSummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &plans); err != nil || len(plans) != 1 || plans[0].TotalDays != 8 {
		t.Errorf("admin list: %+v %v", plans, err)
	}
}
