package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sociogram/backend/internal/models"
	"github.com/sociogram/backend/internal/repositories"
	"github.com/sociogram/backend/validators"
	"github.com/stretchr/testify/require"
)

// nopWaker satisfies events.Waker for handlers under test; delivery is
// covered by the dispatcher's own tests.
type nopWaker struct{}

func (nopWaker) Wake() {}

type testEnv struct {
	e     *echo.Echo
	store *repositories.MemoryStore
}

func newTestEnv() *testEnv {
	e := echo.New()
	e.Validator = validators.NewValidator()
	return &testEnv{e: e, store: repositories.NewMemoryStore()}
}

func (env *testEnv) newUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "hashed"}
	require.NoError(t, env.store.Users().CreateUser(context.Background(), user))
	return user
}

func (env *testEnv) newPost(t *testing.T, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{UserID: author.ID, Content: content}
	require.NoError(t, env.store.Posts().CreatePost(context.Background(), post))
	return post
}

func (env *testEnv) newComment(t *testing.T, author *models.User, post *models.Post, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{PostID: post.ID, UserID: author.ID, Content: content}
	require.NoError(t, env.store.Comments().CreateComment(context.Background(), comment))
	require.NoError(t, env.store.Posts().IncrementCommentsCount(context.Background(), post.ID))
	return comment
}

func (env *testEnv) newReply(t *testing.T, author *models.User, comment *models.Comment, content string) *models.Reply {
	t.Helper()
	reply := &models.Reply{CommentID: comment.ID, UserID: author.ID, Content: content}
	require.NoError(t, env.store.Replies().CreateReply(context.Background(), reply))
	require.NoError(t, env.store.Comments().IncrementRepliesCount(context.Background(), comment.ID))
	return reply
}

// newContext builds an echo context with an optional JSON body and the JWT
// claims the auth middleware would have set.
func (env *testEnv) newContext(method, body string, as *models.User) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	if as != nil {
		c.Set("user", &models.JwtCustomClaims{UserID: as.ID, Username: as.Username})
	}
	return c, rec
}

func setParam(c echo.Context, name string, id uint) {
	c.SetParamNames(name)
	c.SetParamValues(strconv.FormatUint(uint64(id), 10))
}

// pendingEvents returns all undelivered outbox rows
func (env *testEnv) pendingEvents(t *testing.T) []models.OutboxEvent {
	t.Helper()
	pending, err := env.store.Outbox().FetchPending(context.Background(), 100, 5)
	require.NoError(t, err)
	return pending
}

func decodePayload(t *testing.T, payload string, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(payload), into))
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he := &echo.HTTPError{}
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), into))
}
