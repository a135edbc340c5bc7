package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
)

type fakeAuth struct {
	tokens map[string]*models.User
	users  map[uint64]*models.User
}

func (f *fakeAuth) Authenticate(ctx context.Context, key string) (*models.User, error) {
	if u, ok := f.tokens[key]; ok {
		return u, nil
	}
	return nil, services.ErrInvalidToken
}

func (f *fakeAuth) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, services.ErrUserNotFound
}

type fakeLookup struct {
	project *models.Project
	task    *models.Task
	err     error
}

func (f *fakeLookup) GetProject(ctx context.Context, projectID, userID uint64) (*models.Project, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.project, nil
}

func (f *fakeLookup) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.task, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(auth Authenticator) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.POST("/login/:id", func(c *gin.Context) {
		session := sessions.Default(c)
		id := uint64(7)
		if c.Param("id") != "7" {
			id = 99
		}
		session.Set(constants.ContextKeyUserID, id)
		if err := session.Save(); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusOK)
	})
	protected := r.Group("/", RequireAuth(auth))
	protected.GET("/me", func(c *gin.Context) {
		user, _ := GetUser(c)
		c.String(http.StatusOK, user.Username)
	})
	protected.GET("/admin", RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequireAuth_Token(t *testing.T) {
	alice := &models.User{ID: 7, Username: "alice"}
	r := newAuthRouter(&fakeAuth{tokens: map[string]*models.User{"abc": alice}})

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid", "Token abc", http.StatusOK},
		{"case insensitive scheme", "token abc", http.StatusOK},
		{"unknown key", "Token nope", http.StatusUnauthorized},
		{"wrong scheme", "Bearer abc", http.StatusUnauthorized},
		{"no key", "Token", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "alice", w.Body.String())
			} else {
				assert.Equal(t, "Token", w.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestRequireAuth_Session(t *testing.T) {
	alice := &models.User{ID: 7, Username: "alice"}
	r := newAuthRouter(&fakeAuth{users: map[uint64]*models.User{7: alice}})

	login := func(id string) []*http.Cookie {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/"+id, nil))
		require.Equal(t, http.StatusOK, w.Code)
		return w.Result().Cookies()
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range login("7") {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice", w.Body.String())

	// session pointing at a user that no longer exists
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, ck := range login("99") {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireStaff(t *testing.T) {
	r := newAuthRouter(&fakeAuth{tokens: map[string]*models.User{
		"staff": {ID: 1, Username: "admin", IsStaff: true},
		"plain": {ID: 2, Username: "bob"},
	}})

	for key, want := range map[string]int{"staff": http.StatusOK, "plain": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Token "+key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, key)
	}
}

func scopedRequest(t *testing.T, mw gin.HandlerFunc, path string, userID *uint64) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()

	var seen *gin.Context
	r := gin.New()
	r.GET("/items/:id", func(c *gin.Context) {
		if userID != nil {
			c.Set(constants.ContextKeyUserID, *userID)
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		seen = c.Copy()
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w, seen
}

func TestRequireProjectAccess(t *testing.T) {
	uid := uint64(1)
	project := &models.Project{ID: 3, Name: "P"}

	w, c := scopedRequest(t, RequireProjectAccess(&fakeLookup{project: project}), "/items/3", &uid)
	require.Equal(t, http.StatusOK, w.Code)
	loaded, ok := GetProject(c)
	require.True(t, ok)
	assert.Equal(t, "P", loaded.Name)

	w, _ = scopedRequest(t, RequireProjectAccess(&fakeLookup{err: services.ErrProjectNotFound}), "/items/3", &uid)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = scopedRequest(t, RequireProjectAccess(&fakeLookup{project: project}), "/items/abc", &uid)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = scopedRequest(t, RequireProjectAccess(&fakeLookup{err: errors.New("db down")}), "/items/3", &uid)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w, _ = scopedRequest(t, RequireProjectAccess(&fakeLookup{project: project}), "/items/3", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireTaskAccess(t *testing.T) {
	uid := uint64(1)
	task := &models.Task{ID: 4, Title: "T"}

	w, c := scopedRequest(t, RequireTaskAccess(&fakeLookup{task: task}), "/items/4", &uid)
	require.Equal(t, http.StatusOK, w.Code)
	loaded, ok := GetTask(c)
	require.True(t, ok)
	assert.Equal(t, "T", loaded.Title)

	w, _ = scopedRequest(t, RequireTaskAccess(&fakeLookup{err: services.ErrTaskNotFound}), "/items/4", &uid)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		rid, _ := c.Get(constants.ContextKeyRequestID)
		c.String(http.StatusOK, rid.(string))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(constants.RequestIDHeader)
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(constants.RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "client-id", w.Header().Get(constants.RequestIDHeader))
}
