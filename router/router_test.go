package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"blogapp/config"
	"blogapp/global"
	"blogapp/utils"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type client struct {
	t *testing.T
	r *gin.Engine
}

func newClient(t *testing.T) *client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	utils.PasswordCost = bcrypt.MinCost

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := config.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	global.Db = db
	global.Tokens = utils.NewTokenService("router-test", 0)
	t.Cleanup(func() {
		global.Db = nil
		global.Tokens = nil
		sqlDB.Close()
	})
	return &client{t: t, r: SetupRouter()}
}

func (c *client) do(method, path, token string, body interface{}) (int, map[string]interface{}, *httptest.ResponseRecorder) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.r.ServeHTTP(rec, req)

	out := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			c.t.Fatalf("%s %s: decode %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec.Code, out, rec
}

// register returns the session token and user id of a new account.
func (c *client) register(name, email string) (string, string) {
	c.t.Helper()
	code, body, _ := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": email, "password": "secret1",
	})
	if code != http.StatusCreated {
		c.t.Fatalf("register %s: expected 201, got %d %v", email, code, body)
	}
	user := body["user"].(map[string]interface{})
	return body["token"].(string), user["id"].(string)
}

func TestAuthFlow(t *testing.T) {
	c := newClient(t)
	_, annID := c.register("Ann", "ann@example.com")

	code, _, _ := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", code)
	}

	code, _, _ = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com"})
	if code != http.StatusBadRequest {
		t.Fatalf("missing password: expected 400, got %d", code)
	}
	code, body, rec := c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "nope"})
	if code != http.StatusUnauthorized || body["message"] != "Invalid email or password" {
		t.Fatalf("bad password: got %d %v", code, body)
	}

	code, body, rec = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "ann@example.com", "password": "secret1"})
	if code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d %v", code, body)
	}
	cookie := rec.Header().Get("Set-Cookie")
	for _, attr := range []string{"auth-token=", "Path=/", "Max-Age=604800", "HttpOnly", "SameSite=Lax"} {
		if !strings.Contains(cookie, attr) {
			t.Fatalf("expected %s in auth cookie, got %q", attr, cookie)
		}
	}
	if strings.Contains(cookie, "Secure") {
		t.Fatalf("expected no Secure flag outside production, got %q", cookie)
	}
	claims, err := global.Tokens.Verify(body["token"].(string))
	if err != nil {
		t.Fatalf("verify login token: %v", err)
	}
	if claims.UserID != annID {
		t.Fatalf("expected token for %s, got %s", annID, claims.UserID)
	}
	user := body["user"].(map[string]interface{})
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password leaked in %v", user)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "auth-token", Value: body["token"].(string)})
	me := httptest.NewRecorder()
	c.r.ServeHTTP(me, req)
	if me.Code != http.StatusOK || !strings.Contains(me.Body.String(), annID) {
		t.Fatalf("me: got %d %s", me.Code, me.Body.String())
	}

	code, body, _ = c.do(http.MethodGet, "/api/auth/me", "", nil)
	if code != http.StatusUnauthorized || body["message"] != "No token provided" {
		t.Fatalf("me without token: got %d %v", code, body)
	}
	code, body, _ = c.do(http.MethodGet, "/api/auth/me", "garbage", nil)
	if code != http.StatusUnauthorized || body["message"] != "Invalid token" {
		t.Fatalf("me with bad token: got %d %v", code, body)
	}

	ghost, err := global.Tokens.Issue("6f1c2b7e-3f0a-4d4e-9a51-2d7c5e0b9f10", "ghost@example.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if code, _, _ = c.do(http.MethodGet, "/api/auth/me", ghost, nil); code != http.StatusNotFound {
		t.Fatalf("me for vanished user: expected 404, got %d", code)
	}

	_, _, rec = c.do(http.MethodPost, "/api/auth/logout", "", nil)
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Fatalf("expected cookie cleared, got %q", rec.Header().Get("Set-Cookie"))
	}
}

func TestArticleOwnership(t *testing.T) {
	c := newClient(t)
	ann, _ := c.register("Ann", "ann@example.com")
	bob, _ := c.register("Bob", "bob@example.com")

	code, body, _ := c.do(http.MethodPost, "/api/articles", ann, map[string]string{
		"title": "Hello", "content": "first post", "excerpt": "hi", "category": "Tech", "tags": "go",
	})
	if code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d %v", code, body)
	}
	id := body["id"].(string)
	path := "/api/articles/" + id
	edit := map[string]string{"title": "Mine now"}

	code, body, _ = c.do(http.MethodPut, path, bob, edit)
	if code != http.StatusForbidden || !strings.Contains(body["message"].(string), "your own articles") {
		t.Fatalf("non-owner edit: got %d %v", code, body)
	}
	if code, _, _ = c.do(http.MethodDelete, path, bob, nil); code != http.StatusForbidden {
		t.Fatalf("non-owner delete: expected 403, got %d", code)
	}
	if code, _, _ = c.do(http.MethodPut, path, "", edit); code != http.StatusUnauthorized {
		t.Fatalf("anonymous edit: expected 401, got %d", code)
	}
	if code, _, _ = c.do(http.MethodPut, "/api/articles/a1", bob, edit); code != http.StatusBadRequest {
		t.Fatalf("invalid id: expected 400, got %d", code)
	}
	missing := "/api/articles/6f1c2b7e-3f0a-4d4e-9a51-2d7c5e0b9f10"
	if code, _, _ = c.do(http.MethodPut, missing, bob, edit); code != http.StatusNotFound {
		t.Fatalf("missing article: expected 404, got %d", code)
	}

	code, body, _ = c.do(http.MethodPut, path, ann, edit)
	if code != http.StatusOK {
		t.Fatalf("owner edit: got %d %v", code, body)
	}

	code, body, _ = c.do(http.MethodGet, path, "", nil)
	article := body["article"].(map[string]interface{})
	if code != http.StatusOK || article["title"] != "Mine now" || article["views"].(float64) != 1 {
		t.Fatalf("get: got %d %v", code, body)
	}

	code, body, _ = c.do(http.MethodGet, "/api/articles?category=Tech", "", nil)
	if code != http.StatusOK || len(body["articles"].([]interface{})) != 1 {
		t.Fatalf("list: got %d %v", code, body)
	}

	if code, _, _ = c.do(http.MethodDelete, path, ann, nil); code != http.StatusOK {
		t.Fatalf("owner delete: expected 200, got %d", code)
	}
	if code, _, _ = c.do(http.MethodGet, path, "", nil); code != http.StatusNotFound {
		t.Fatalf("deleted article: expected 404, got %d", code)
	}
}

func TestLikeAndFollow(t *testing.T) {
	c := newClient(t)
	ann, annID := c.register("Ann", "ann@example.com")
	bob, bobID := c.register("Bob", "bob@example.com")

	_, body, _ := c.do(http.MethodPost, "/api/articles", ann, map[string]string{
		"title": "Hello", "content": "first post", "excerpt": "hi", "category": "Tech",
	})
	like := "/api/articles/" + body["id"].(string) + "/like"

	if code, _, _ := c.do(http.MethodPost, like, "", nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous like: expected 401, got %d", code)
	}

	code, body, _ := c.do(http.MethodPost, like, bob, nil)
	likedBy := body["likedBy"].([]interface{})
	if code != http.StatusOK || body["likes"].(float64) != 1 || len(likedBy) != 1 || likedBy[0] != bobID {
		t.Fatalf("like: got %d %v", code, body)
	}
	code, body, _ = c.do(http.MethodPost, like, bob, nil)
	if code != http.StatusOK || body["likes"].(float64) != 0 || len(body["likedBy"].([]interface{})) != 0 {
		t.Fatalf("unlike: got %d %v", code, body)
	}

	code, body, _ = c.do(http.MethodPost, like, bob, nil)
	if code != http.StatusOK || body["likes"].(float64) != 1 {
		t.Fatalf("like again: got %d %v", code, body)
	}
	article := strings.TrimSuffix(like, "/like")
	if _, body, _ = c.do(http.MethodGet, article, bob, nil); body["likedByMe"] != true {
		t.Fatalf("expected likedByMe for bob, got %v", body["likedByMe"])
	}
	if _, body, _ = c.do(http.MethodGet, article, "", nil); body["likedByMe"] != false {
		t.Fatalf("expected likedByMe false for anonymous, got %v", body["likedByMe"])
	}

	missingLike := "/api/articles/6f1c2b7e-3f0a-4d4e-9a51-2d7c5e0b9f10/like"
	if code, _, _ = c.do(http.MethodPost, missingLike, bob, nil); code != http.StatusNotFound {
		t.Fatalf("missing article like: expected 404, got %d", code)
	}

	code, body, _ = c.do(http.MethodPost, "/api/authors/"+annID+"/follow", ann, nil)
	if code != http.StatusBadRequest || body["message"] != "You cannot follow yourself." {
		t.Fatalf("self follow: got %d %v", code, body)
	}
	if code, _, _ = c.do(http.MethodPost, "/api/authors/a1/follow", bob, nil); code != http.StatusBadRequest {
		t.Fatalf("invalid author id: expected 400, got %d", code)
	}

	code, body, _ = c.do(http.MethodPost, "/api/authors/"+annID+"/follow", bob, nil)
	if code != http.StatusOK || body["followersCount"].(float64) != 1 || body["userIsFollowing"] != true {
		t.Fatalf("follow: got %d %v", code, body)
	}

	code, body, _ = c.do(http.MethodPost, "/api/authors/"+annID+"/like", bob, nil)
	if code != http.StatusOK || body["likes"].(float64) != 1 || body["message"] != "Author liked successfully" {
		t.Fatalf("author like: got %d %v", code, body)
	}

	code, body, _ = c.do(http.MethodGet, "/api/authors", "", nil)
	if code != http.StatusOK || len(body["authors"].([]interface{})) != 2 {
		t.Fatalf("authors: got %d %v", code, body)
	}
	for _, a := range body["authors"].([]interface{}) {
		if _, leaked := a.(map[string]interface{})["password"]; leaked {
			t.Fatalf("password leaked in %v", a)
		}
	}
}

func TestAuthCheckedBeforeID(t *testing.T) {
	c := newClient(t)
	bob, _ := c.register("Bob", "bob@example.com")

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/articles/not-an-id/like"},
		{http.MethodPut, "/api/articles/not-an-id"},
		{http.MethodDelete, "/api/articles/not-an-id"},
		{http.MethodPost, "/api/authors/not-an-id/like"},
		{http.MethodPost, "/api/authors/not-an-id/follow"},
	}
	for _, route := range routes {
		code, body, _ := c.do(route.method, route.path, "", map[string]string{})
		if code != http.StatusUnauthorized || body["message"] != "No token provided" {
			t.Fatalf("%s %s without token: got %d %v", route.method, route.path, code, body)
		}
		if code, _, _ = c.do(route.method, route.path, bob, map[string]string{}); code != http.StatusBadRequest {
			t.Fatalf("%s %s with token: expected 400, got %d", route.method, route.path, code)
		}
	}

	// public reads validate the id without a token
	if code, _, _ := c.do(http.MethodGet, "/api/articles/not-an-id", "", nil); code != http.StatusBadRequest {
		t.Fatalf("public read: expected 400, got %d", code)
	}
}

func TestAuthCookieSecureInProduction(t *testing.T) {
	c := newClient(t)
	cfg := &config.Config{}
	cfg.App.Env = "production"
	config.AppConfig = cfg
	t.Cleanup(func() { config.AppConfig = nil })

	_, _, rec := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Ann", "email": "ann@example.com", "password": "secret1",
	})
	cookie := rec.Header().Get("Set-Cookie")
	for _, attr := range []string{"auth-token=", "Secure", "HttpOnly", "SameSite=Lax", "Max-Age=604800"} {
		if !strings.Contains(cookie, attr) {
			t.Fatalf("expected %s in production cookie, got %q", attr, cookie)
		}
	}
}

func TestHealthz(t *testing.T) {
	c := newClient(t)
	if code, body, _ := c.do(http.MethodGet, "/healthz", "", nil); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: got %d %v", code, body)
	}
}
