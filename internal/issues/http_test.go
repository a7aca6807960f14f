package issues

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/issuedesk/issuedesk-backend/internal/auth"
	"github.com/issuedesk/issuedesk-backend/internal/authz"
)

type stubStore struct {
	issues        map[string]*Issue
	projectOwners map[string]string // project id -> owner id
}

func newStubStore() *stubStore {
	return &stubStore{issues: map[string]*Issue{}, projectOwners: map[string]string{}}
}

func (s *stubStore) addProject(id, ownerID string) {
	s.projectOwners[id] = ownerID
}

func (s *stubStore) addIssue(projectID, authorID, title string) *Issue {
	i := &Issue{
		ID:        uuid.NewString(),
		Title:     title,
		Status:    StatusOpen,
		ProjectID: projectID,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.issues[i.ID] = i
	return i
}

func (s *stubStore) Create(_ context.Context, projectID, authorID, title, description string) (*Issue, error) {
	i := s.addIssue(projectID, authorID, title)
	i.Description = description
	return i, nil
}

func (s *stubStore) ListByOwner(_ context.Context, ownerID string) ([]Issue, error) {
	out := []Issue{}
	for _, i := range s.issues {
		if s.projectOwners[i.ProjectID] == ownerID {
			out = append(out, *i)
		}
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*Issue, error) {
	i, ok := s.issues[id]
	if !ok {
		return nil, authz.ErrNotFound
	}
	return i, nil
}

func (s *stubStore) ProjectOwner(_ context.Context, issueID string) (string, error) {
	i, ok := s.issues[issueID]
	if !ok {
		return "", authz.ErrNotFound
	}
	return s.projectOwners[i.ProjectID], nil
}

func (s *stubStore) Update(_ context.Context, id string, title, description *string) (*Issue, error) {
	i, ok := s.issues[id]
	if !ok {
		return nil, authz.ErrNotFound
	}
	if title != nil {
		i.Title = *title
	}
	if description != nil {
		i.Description = *description
	}
	return i, nil
}

func (s *stubStore) SetStatus(_ context.Context, id, status string) (*Issue, error) {
	i, ok := s.issues[id]
	if !ok {
		return nil, authz.ErrNotFound
	}
	i.Status = status
	return i, nil
}

func (s *stubStore) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := s.issues[id]; !ok {
		return false, nil
	}
	delete(s.issues, id)
	return true, nil
}

func (s *stubStore) resolveProject(_ context.Context, projectID string) (string, error) {
	owner, ok := s.projectOwners[projectID]
	if !ok {
		return "", authz.ErrNotFound
	}
	return owner, nil
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.CtxUserID, userID)
		c.Next()
	}
}

func newIssuesRouter(store *stubStore, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/issues")
	g.Use(asUser(userID))
	Register(g, store, store.resolveProject)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		buf, _ := json.Marshal(body)
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestCreateIssue_Validation(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-1", "ann")
	r := newIssuesRouter(store, "ann")

	w := do(r, "POST", "/api/issues", map[string]string{"project_id": "proj-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing title")

	w = do(r, "POST", "/api/issues", map[string]string{"title": "bug"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing project_id")
}

func TestCreateIssue_ProjectOwnership(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	store.addProject("proj-bob", "bob")
	r := newIssuesRouter(store, "ann")

	// Own project works, and the new issue starts open.
	w := do(r, "POST", "/api/issues", map[string]string{"title": "bug", "project_id": "proj-ann"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"open"`)
	assert.Contains(t, w.Body.String(), `"author_id":"ann"`)

	// Someone else's project is indistinguishable from a missing one.
	wForeign := do(r, "POST", "/api/issues", map[string]string{"title": "bug", "project_id": "proj-bob"})
	wAbsent := do(r, "POST", "/api/issues", map[string]string{"title": "bug", "project_id": "proj-none"})
	assert.Equal(t, http.StatusNotFound, wForeign.Code)
	assert.Equal(t, http.StatusNotFound, wAbsent.Code)
}

func TestListIssues_AcrossOwnedProjects(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	store.addProject("proj-bob", "bob")
	store.addIssue("proj-ann", "ann", "mine")
	store.addIssue("proj-bob", "bob", "theirs")

	w := do(newIssuesRouter(store, "ann"), "GET", "/api/issues", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mine")
	assert.NotContains(t, w.Body.String(), "theirs")
}

func TestGetIssue_AuthorIrrelevant(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	// Bob wrote the issue, but the project owner authorizes.
	i := store.addIssue("proj-ann", "bob", "reported by bob")

	w := do(newIssuesRouter(store, "ann"), "GET", "/api/issues/id/"+i.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Authorship grants nothing.
	w = do(newIssuesRouter(store, "bob"), "GET", "/api/issues/id/"+i.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateIssue(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	i := store.addIssue("proj-ann", "ann", "old title")
	r := newIssuesRouter(store, "ann")

	w := do(r, "PATCH", "/api/issues/"+i.ID, map[string]string{"title": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, "PATCH", "/api/issues/"+i.ID, map[string]string{"description": "details"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "old title", i.Title, "partial update keeps the title")
	assert.Equal(t, "details", i.Description)

	w = do(r, "PATCH", "/api/issues/"+i.ID, map[string]string{"title": "new title"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new title", i.Title)
}

func TestSolveIssue(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	i := store.addIssue("proj-ann", "ann", "bug")

	w := do(newIssuesRouter(store, "ann"), "PATCH", "/api/issues/"+i.ID+"/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusSolved, i.Status)
}

func TestSolveIssue_Foreign(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-bob", "bob")
	i := store.addIssue("proj-bob", "bob", "bug")

	w := do(newIssuesRouter(store, "ann"), "PATCH", "/api/issues/"+i.ID+"/status", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, StatusOpen, i.Status, "refused mutation must not change status")
}

func TestDeleteIssue_OwnershipChecked(t *testing.T) {
	store := newStubStore()
	store.addProject("proj-ann", "ann")
	store.addProject("proj-bob", "bob")
	mine := store.addIssue("proj-ann", "ann", "mine")
	theirs := store.addIssue("proj-bob", "bob", "theirs")

	r := newIssuesRouter(store, "ann")

	w := do(r, "DELETE", "/api/issues/"+theirs.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, store.issues, theirs.ID)

	w = do(r, "DELETE", "/api/issues/"+mine.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.issues, mine.ID)
}
