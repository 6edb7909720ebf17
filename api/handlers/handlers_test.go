package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/alxdev/echocheck-backend/api/middleware"
	"github.com/alxdev/echocheck-backend/internal/auth"
	"github.com/alxdev/echocheck-backend/internal/classifier"
	"github.com/alxdev/echocheck-backend/internal/extract"
	"github.com/alxdev/echocheck-backend/internal/models"
	"github.com/alxdev/echocheck-backend/internal/store"
	"github.com/alxdev/echocheck-backend/pkg/logger"
	"github.com/alxdev/echocheck-backend/pkg/metrics"
	"github.com/alxdev/echocheck-backend/pkg/queue"
)

type fakeUsers struct {
	byEmail   map[string]*models.User
	createErr error
	deleted   []string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*models.User)}
}

func (f *fakeUsers) add(email, password string, verified bool) *models.User {
	hash, err := auth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: hash,
		IsVerified:   verified,
		CreatedAt:    time.Now().UTC(),
	}
	f.byEmail[email] = u
	return u
}

func (f *fakeUsers) Create(_ context.Context, email, passwordHash string) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, store.ErrDuplicate
	}
	u := &models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUsers) MarkVerified(_ context.Context, email string) error {
	u, ok := f.byEmail[email]
	if !ok {
		return store.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUsers) DeleteUnverified(_ context.Context, email string) error {
	if u, ok := f.byEmail[email]; ok && !u.IsVerified {
		delete(f.byEmail, email)
		f.deleted = append(f.deleted, email)
	}
	return nil
}

type issuedCode struct {
	email   string
	code    string
	purpose models.VerificationPurpose
	used    bool
}

type fakeCodes struct {
	issued    []issuedCode
	createErr error
}

func (f *fakeCodes) Create(_ context.Context, email, code string, purpose models.VerificationPurpose) (*models.VerificationCode, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.issued = append(f.issued, issuedCode{email: email, code: code, purpose: purpose})
	return &models.VerificationCode{Email: email, Code: code, Purpose: purpose}, nil
}

func (f *fakeCodes) Consume(_ context.Context, email, code string, purpose models.VerificationPurpose) error {
	for i := range f.issued {
		ic := &f.issued[i]
		if !ic.used && ic.email == email && ic.code == code && ic.purpose == purpose {
			ic.used = true
			return nil
		}
	}
	return store.ErrNotFound
}

// lastCode returns the most recently issued code for the email, if any.
func (f *fakeCodes) lastCode(email string) string {
	for i := len(f.issued) - 1; i >= 0; i-- {
		if f.issued[i].email == email {
			return f.issued[i].code
		}
	}
	return ""
}

type fakeQueue struct {
	tasks      []*queue.Task
	enqueueErr error
}

func (f *fakeQueue) Enqueue(_ context.Context, task *queue.Task) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.tasks = append(f.tasks, task)
	return nil
}

func (f *fakeQueue) SaveFinalStatus(context.Context, *queue.TaskStatus) error { return nil }

func (f *fakeQueue) Close() error { return nil }

func (f *fakeQueue) taskTypes() []string {
	types := make([]string, len(f.tasks))
	for i, t := range f.tasks {
		types[i] = t.Type
	}
	return types
}

type fakeClassifier struct {
	prediction *classifier.Prediction
	err        error
	healthy    bool
	lastText   string
}

func (f *fakeClassifier) Predict(_ context.Context, text string) (*classifier.Prediction, error) {
	f.lastText = text
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

func (f *fakeClassifier) Healthy(context.Context) bool { return f.healthy }

func (f *fakeClassifier) ModelName() string { return "alxdev/echocheck-political-stance" }

type fakeFeedback struct {
	entries   []models.Feedback
	insertErr error
	statsErr  error
}

func (f *fakeFeedback) Insert(_ context.Context, fb *models.Feedback) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	fb.ID = primitive.NewObjectID()
	fb.CreatedAt = time.Now().UTC()
	f.entries = append(f.entries, *fb)
	return nil
}

func (f *fakeFeedback) Stats(context.Context) (*models.FeedbackStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	stats := &models.FeedbackStats{TotalFeedback: int64(len(f.entries))}
	for _, e := range f.entries {
		if e.IsCorrect {
			stats.CorrectPredictions++
		}
	}
	stats.IncorrectPredictions = stats.TotalFeedback - stats.CorrectPredictions
	if stats.TotalFeedback > 0 {
		rate := float64(stats.CorrectPredictions) / float64(stats.TotalFeedback)
		stats.AccuracyRate = math.Round(rate*10000) / 10000
	}
	return stats, nil
}

func (f *fakeFeedback) Recent(_ context.Context, limit int64) ([]models.Feedback, error) {
	return f.list(limit, func(models.Feedback) bool { return true }), nil
}

func (f *fakeFeedback) Incorrect(_ context.Context, limit int64) ([]models.Feedback, error) {
	return f.list(limit, func(e models.Feedback) bool { return !e.IsCorrect }), nil
}

func (f *fakeFeedback) list(limit int64, keep func(models.Feedback) bool) []models.Feedback {
	out := make([]models.Feedback, 0)
	for i := len(f.entries) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		if keep(f.entries[i]) {
			out = append(out, f.entries[i])
		}
	}
	return out
}

type fakePinger struct{ up bool }

func (f *fakePinger) Connected(context.Context) bool { return f.up }

type testEnv struct {
	router *gin.Engine
	users  *fakeUsers
	codes  *fakeCodes
	queue  *fakeQueue
	cls    *fakeClassifier
	fb     *fakeFeedback
	db     *fakePinger
	tokens *auth.TokenManager
}

// newTestEnv builds the full route table against fakes. Routes are
// registered here rather than through the routes package to avoid an import
// cycle.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewTestLogger()

	env := &testEnv{
		users:  newFakeUsers(),
		codes:  &fakeCodes{},
		queue:  &fakeQueue{},
		fb:     &fakeFeedback{},
		db:     &fakePinger{up: true},
		tokens: auth.NewTokenManager("test-secret", 0, 0),
		cls: &fakeClassifier{
			healthy: true,
			prediction: &classifier.Prediction{
				Prediction: "center",
				Confidence: 0.92,
				Probabilities: map[string]float64{
					"center": 0.92, "left": 0.05, "right": 0.03,
				},
			},
		},
	}

	h := NewHandlers(Deps{
		Extractor:  extract.NewExtractor(extract.Config{}, log),
		Classifier: env.cls,
		Users:      env.users,
		Codes:      env.codes,
		Feedback:   env.fb,
		Tokens:     env.tokens,
		Queue:      env.queue,
		Database:   env.db,
		Metrics:    metrics.New(),
		Logger:     log,
		CodeTTL:    10 * time.Minute,
		CodeLength: 6,
	})
	authRequired := middleware.AuthRequired(env.tokens, env.users, log)

	r := gin.New()
	r.GET("/", h.Health.Root)
	r.GET("/health", h.Health.Check)
	r.POST("/api/v1/classify/text", h.Classify.ClassifyText)
	r.POST("/api/v1/classify/file", authRequired, h.Classify.ClassifyFile)
	r.POST("/api/v1/auth/register", h.Auth.Register)
	r.POST("/api/v1/auth/register/verify", h.Auth.RegisterVerify)
	r.POST("/api/v1/auth/login", h.Auth.Login)
	r.POST("/api/v1/auth/login/verify", h.Auth.LoginVerify)
	r.POST("/api/v1/auth/refresh", h.Auth.Refresh)
	r.POST("/api/v1/auth/resend-code", h.Auth.ResendCode)
	r.GET("/api/v1/auth/me", authRequired, h.Auth.Me)
	r.POST("/api/v1/auth/logout", authRequired, h.Auth.Logout)
	r.POST("/api/v1/feedback", authRequired, h.Feedback.Submit)
	r.GET("/api/v1/feedback/stats", h.Feedback.Stats)
	r.GET("/api/v1/feedback/recent", authRequired, h.Feedback.Recent)
	r.GET("/api/v1/feedback/incorrect", authRequired, h.Feedback.Incorrect)
	env.router = r

	return env
}

func (env *testEnv) postJSON(t *testing.T, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	setHeaders(req, headers)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) get(t *testing.T, path string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	setHeaders(req, headers)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) postFile(t *testing.T, path, filename string, content []byte, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	setHeaders(req, headers)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func setHeaders(req *http.Request, headers []string) {
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
}

// accessHeader returns an Authorization header pair for the user.
func (env *testEnv) accessHeader(t *testing.T, u *models.User) []string {
	t.Helper()
	pair, err := env.tokens.Pair(u.ID.Hex())
	require.NoError(t, err)
	return []string{"Authorization", "Bearer " + pair.AccessToken}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst))
}
