package testutil

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// FakeAPISecret signs the tokens FakeAPI issues.
const FakeAPISecret = "fake-api-secret"

type apiTask struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority,omitempty"`
	Owner       string  `json:"-"`
}

// FakeAPI is an httptest server speaking the remote task API.
type FakeAPI struct {
	Server *httptest.Server

	// WrapTasks makes GET /tasks/ answer {"tasks": [...]} instead of an array.
	WrapTasks bool

	// EmptyUpdateBody makes PUT /tasks/{id} answer 204 without a body.
	EmptyUpdateBody bool

	// TokenTTL is the lifetime of issued tokens.
	TokenTTL time.Duration

	mu         sync.Mutex
	users      map[string]string
	tasks      []apiTask
	nextID     int
	requestIDs []string
	failNext   map[string]int // "METHOD /path" -> status
}

// NewFakeAPI starts a FakeAPI and stops it when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	api := &FakeAPI{
		TokenTTL: time.Hour,
		users:    make(map[string]string),
		nextID:   1,
		failNext: make(map[string]int),
	}

	r := gin.New()
	r.Use(api.recordRequest, api.injectFailure)
	r.POST("/token", api.handleToken)
	r.POST("/register", api.handleRegister)

	tasks := r.Group("/tasks", api.authenticate)
	tasks.GET("/", api.handleList)
	tasks.POST("/", api.handleCreate)
	tasks.PUT("/:id", api.handleUpdate)
	tasks.DELETE("/:id", api.handleDelete)

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// URL returns the server base URL.
func (a *FakeAPI) URL() string {
	return a.Server.URL
}

// AddUser registers a user.
func (a *FakeAPI) AddUser(username, password string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[username] = password
}

// HasUser reports whether username is registered.
func (a *FakeAPI) HasUser(username string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.users[username]
	return ok
}

// AddTask stores a task for owner and returns its ID. An empty priority is
// omitted from responses.
func (a *FakeAPI) AddTask(owner, title, description, priority string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	d := description
	a.tasks = append(a.tasks, apiTask{ID: a.nextID, Title: title, Description: &d, Priority: priority, Owner: owner})
	a.nextID++
	return a.nextID - 1
}

// TaskCount returns how many tasks owner has.
func (a *FakeAPI) TaskCount(owner string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, t := range a.tasks {
		if t.Owner == owner {
			n++
		}
	}
	return n
}

// Fail makes the next request to "METHOD /path" answer status.
func (a *FakeAPI) Fail(route string, status int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failNext[route] = status
}

// RequestIDs returns the X-Request-ID headers seen so far.
func (a *FakeAPI) RequestIDs() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.requestIDs...)
}

// IssueToken signs an access token for username.
func (a *FakeAPI) IssueToken(username string, ttl time.Duration) string {
	now := time.Now()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}).SignedString([]byte(FakeAPISecret))
	if err != nil {
		panic(err)
	}
	return s
}

func (a *FakeAPI) recordRequest(c *gin.Context) {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		a.mu.Lock()
		a.requestIDs = append(a.requestIDs, id)
		a.mu.Unlock()
	}
	c.Next()
}

func (a *FakeAPI) injectFailure(c *gin.Context) {
	route := c.Request.Method + " " + c.Request.URL.Path
	a.mu.Lock()
	status, ok := a.failNext[route]
	delete(a.failNext, route)
	a.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(status, gin.H{"detail": http.StatusText(status)})
		return
	}
	c.Next()
}

const usernameCtxKey = "username"

func (a *FakeAPI) authenticate(c *gin.Context) {
	raw, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
		return
	}
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return []byte(FakeAPISecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
		return
	}
	c.Set(usernameCtxKey, claims.Subject)
	c.Next()
}

func (a *FakeAPI) handleToken(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	a.mu.Lock()
	pw, ok := a.users[username]
	a.mu.Unlock()
	if !ok || pw != password {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": a.IssueToken(username, a.TokenTTL),
		"token_type":   "bearer",
	})
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *FakeAPI) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "Field required"}}})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.users[req.Username]; ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already registered"})
		return
	}
	a.users[req.Username] = req.Password
	c.JSON(http.StatusCreated, gin.H{"username": req.Username})
}

func (a *FakeAPI) handleList(c *gin.Context) {
	owner := c.GetString(usernameCtxKey)

	a.mu.Lock()
	out := []apiTask{}
	for _, t := range a.tasks {
		if t.Owner == owner {
			out = append(out, t)
		}
	}
	a.mu.Unlock()

	if a.WrapTasks {
		c.JSON(http.StatusOK, gin.H{"tasks": out, "total": len(out), "page": 1, "size": len(out), "pages": 1})
		return
	}
	c.JSON(http.StatusOK, out)
}

type taskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func (a *FakeAPI) handleCreate(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "title: Field required"}}})
		return
	}

	a.mu.Lock()
	task := apiTask{ID: a.nextID, Title: req.Title, Description: &req.Description, Priority: req.Priority, Owner: c.GetString(usernameCtxKey)}
	a.nextID++
	a.tasks = append(a.tasks, task)
	a.mu.Unlock()

	c.JSON(http.StatusOK, task)
}

func (a *FakeAPI) handleUpdate(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid id"})
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": []gin.H{{"msg": "title: Field required"}}})
		return
	}

	a.mu.Lock()
	i := a.find(id, c.GetString(usernameCtxKey))
	if i < 0 {
		a.mu.Unlock()
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	a.tasks[i].Title = req.Title
	a.tasks[i].Description = &req.Description
	a.tasks[i].Priority = req.Priority
	task := a.tasks[i]
	a.mu.Unlock()

	if a.EmptyUpdateBody {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (a *FakeAPI) handleDelete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "invalid id"})
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	i := a.find(id, c.GetString(usernameCtxKey))
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Task not found"})
		return
	}
	a.tasks = append(a.tasks[:i], a.tasks[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// find must be called with mu held.
func (a *FakeAPI) find(id int, owner string) int {
	for i, t := range a.tasks {
		if t.ID == id && t.Owner == owner {
			return i
		}
	}
	return -1
}
