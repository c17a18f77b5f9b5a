package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"issue-tracker/internal/config"
	"issue-tracker/internal/database"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	database.DB = db

	cfg := &config.Config{
		SessionSecret: "test-secret",
		UploadDir:     t.TempDir(),
	}
	return NewRouter(cfg)
}

func doJSON(r *gin.Engine, method, path string, payload any, cookie string) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doForm(r *gin.Engine, method, path string, fields map[string]string, cookie string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	return body
}

func registerAdmin(t *testing.T, r *gin.Engine, email string) {
	t.Helper()
	w := doJSON(r, "POST", "/api/auth/register", map[string]string{
		"name":        "Admin",
		"email":       email,
		"employee_id": "EMP-" + email,
		"password":    "secret1",
	}, "")
	body := decode(t, w)
	require.Equal(t, true, body["success"], "register failed: %v", body)
}

func login(t *testing.T, r *gin.Engine, email, password string) string {
	t.Helper()
	w := doJSON(r, "POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	body := decode(t, w)
	require.Equal(t, true, body["success"], "login failed: %v", body)

	cookie := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	return cookie
}

func entityID(t *testing.T, body map[string]any, key string) uint {
	t.Helper()
	entity, ok := body[key].(map[string]any)
	require.True(t, ok, "missing %q in %v", key, body)
	id, ok := entity["id"].(float64)
	require.True(t, ok)
	return uint(id)
}

func TestUnauthenticatedRequest(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(r, "GET", "/api/issues", nil, "")

	// logical failures always ride in the body with HTTP 200
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "authentication required", body["message"])
}

func TestRegisterLoginMe(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doJSON(r, "GET", "/api/auth/me", nil, cookie)
	body := decode(t, w)
	assert.Equal(t, true, body["success"])
	account := body["account"].(map[string]any)
	assert.Equal(t, "boss@tracker.local", account["email"])
	assert.Equal(t, "admin", account["role"])
	// password hashes never leave the server
	_, leaked := account["PasswordHash"]
	assert.False(t, leaked)
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")

	w := doJSON(r, "POST", "/api/auth/login", map[string]string{
		"email":    "boss@tracker.local",
		"password": "wrong",
	}, "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid email or password", body["message"])
}

func TestDuplicateEmailRejected(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")

	w := doJSON(r, "POST", "/api/auth/register", map[string]string{
		"name":        "Imposter",
		"email":       "boss@tracker.local",
		"employee_id": "EMP-other",
		"password":    "secret1",
	}, "")
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "an account with this email already exists", body["message"])
}

func TestRegularUserCannotUseAdminRoutes(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	adminCookie := login(t, r, "boss@tracker.local", "secret1")

	w := doJSON(r, "POST", "/api/accounts", map[string]string{
		"name":        "Worker",
		"email":       "worker@tracker.local",
		"employee_id": "EMP-42",
		"password":    "secret1",
	}, adminCookie)
	require.Equal(t, true, decode(t, w)["success"])

	userCookie := login(t, r, "worker@tracker.local", "secret1")

	w = doForm(r, "POST", "/api/projects", map[string]string{"name": "Billing"}, userCookie)
	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "access denied", body["message"])
}

func TestAssignmentFlow(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doForm(r, "POST", "/api/projects", map[string]string{
		"name":        "Billing",
		"description": "invoices and payments",
	}, cookie)
	projectID := entityID(t, decode(t, w), "project")

	w = doForm(r, "POST", fmt.Sprintf("/api/issues/create/%d", projectID), map[string]string{
		"title":    "Totals drift on refunds",
		"priority": "high",
	}, cookie)
	issueID := entityID(t, decode(t, w), "issue")

	w = doJSON(r, "POST", "/api/accounts", map[string]string{
		"name":        "Worker",
		"email":       "worker@tracker.local",
		"employee_id": "EMP-42",
		"password":    "secret1",
	}, cookie)
	workerID := entityID(t, decode(t, w), "account")

	// assign: one newly added account comes back
	w = doJSON(r, "PUT", fmt.Sprintf("/api/issues/assign/%d", issueID), map[string]any{
		"user_ids": []uint{workerID},
	}, cookie)
	body := decode(t, w)
	require.Equal(t, true, body["success"], "assign failed: %v", body)
	assigned := body["assigned"].([]any)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Worker", assigned[0].(map[string]any)["name"])

	// assigning the same user again is a reported no-op
	w = doJSON(r, "PUT", fmt.Sprintf("/api/issues/assign/%d", issueID), map[string]any{
		"user_ids": []uint{workerID},
	}, cookie)
	body = decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "users already assigned", body["message"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/issues/assignment/%d", issueID), nil, cookie)
	body = decode(t, w)
	require.Equal(t, true, body["success"])
	assert.Len(t, body["assignees"].([]any), 1)

	w = doJSON(r, "PUT", fmt.Sprintf("/api/issues/clear-assignment/%d", issueID), nil, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/issues/assignment/%d", issueID), nil, cookie)
	body = decode(t, w)
	assert.Empty(t, body["assignees"])
	assert.Nil(t, body["assigner"])
}

func TestIssueStatusAndComments(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doForm(r, "POST", "/api/projects", map[string]string{"name": "Billing"}, cookie)
	projectID := entityID(t, decode(t, w), "project")

	w = doForm(r, "POST", fmt.Sprintf("/api/issues/create/%d", projectID), map[string]string{
		"title": "Totals drift",
	}, cookie)
	issueID := entityID(t, decode(t, w), "issue")

	w = doJSON(r, "PUT", fmt.Sprintf("/api/issues/status/%d", issueID), map[string]string{
		"status": "working",
	}, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "PUT", fmt.Sprintf("/api/issues/status/%d", issueID), map[string]string{
		"status": "shipped",
	}, cookie)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "invalid status", body["message"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/issues/status/%d", issueID), nil, cookie)
	body = decode(t, w)
	assert.Equal(t, "working", body["status"])

	w = doJSON(r, "POST", fmt.Sprintf("/api/issues/comment/%d", issueID), map[string]string{
		"text": "reproduced on staging",
	}, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/issues/comments/%d", issueID), nil, cookie)
	body = decode(t, w)
	comments := body["comments"].([]any)
	require.Len(t, comments, 1)
	assert.Equal(t, "reproduced on staging", comments[0].(map[string]any)["text"])
}

func TestDeleteProjectCascades(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doForm(r, "POST", "/api/projects", map[string]string{"name": "Billing"}, cookie)
	projectID := entityID(t, decode(t, w), "project")

	w = doForm(r, "POST", fmt.Sprintf("/api/issues/create/%d", projectID), map[string]string{
		"title": "orphan candidate",
	}, cookie)
	issueID := entityID(t, decode(t, w), "issue")

	w = doJSON(r, "DELETE", fmt.Sprintf("/api/projects/%d", projectID), nil, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/issues/%d", issueID), nil, cookie)
	body := decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "issue not found", body["message"])
}

func TestPromoteAndDeleteAccount(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doJSON(r, "POST", "/api/accounts", map[string]string{
		"name":        "Worker",
		"email":       "worker@tracker.local",
		"employee_id": "EMP-42",
		"password":    "secret1",
	}, cookie)
	workerID := entityID(t, decode(t, w), "account")

	w = doJSON(r, "PUT", fmt.Sprintf("/api/accounts/promote/%d", workerID), nil, cookie)
	body := decode(t, w)
	require.Equal(t, true, body["success"])
	assert.Equal(t, "admin", body["account"].(map[string]any)["role"])

	// promotion is one-way and not repeatable
	w = doJSON(r, "PUT", fmt.Sprintf("/api/accounts/promote/%d", workerID), nil, cookie)
	body = decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "account is already an admin", body["message"])

	w = doJSON(r, "DELETE", fmt.Sprintf("/api/accounts/%d", workerID), nil, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "GET", fmt.Sprintf("/api/accounts/%d", workerID), nil, cookie)
	body = decode(t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "account not found", body["message"])
}

func TestAuditTrailRecordsActions(t *testing.T) {
	r := newTestRouter(t)
	registerAdmin(t, r, "boss@tracker.local")
	cookie := login(t, r, "boss@tracker.local", "secret1")

	w := doForm(r, "POST", "/api/projects", map[string]string{"name": "Billing"}, cookie)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(r, "GET", "/api/audit", nil, cookie)
	body := decode(t, w)
	require.Equal(t, true, body["success"])

	logs := body["logs"].([]any)
	require.NotEmpty(t, logs)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.(map[string]any)["action"].(string))
	}
	assert.Contains(t, actions, "create")
	assert.Contains(t, actions, "register")
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
