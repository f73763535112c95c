package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/infra/cache"
	"github.com/totegamma/concrnt-aspects/internal/infra/database"
	"github.com/totegamma/concrnt-aspects/internal/infra/repository"
	"github.com/totegamma/concrnt-aspects/internal/present/rest/middleware"
	"github.com/totegamma/concrnt-aspects/internal/service"
	"github.com/totegamma/concrnt-aspects/internal/usecase"
)

type testServer struct {
	e        *echo.Echo
	auth     *service.AuthService
	users    *usecase.UserUsecase
	relation *usecase.RelationshipUsecase
	aspects  *repository.AspectRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewSQLite("file::memory:?_foreign_keys=on")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	config := domain.Config{FQDN: "pod.example"}
	pc := cache.NewPersonCache(cache.NewLocalStore(time.Minute), time.Minute)

	userRepo := repository.NewUserRepository(db, pc)
	personRepo := repository.NewPersonRepository(db, pc)
	aspectRepo := repository.NewAspectRepository(db)
	contactRepo := repository.NewContactRepository(db)
	postRepo := repository.NewPostRepository(db)
	visibilityRepo := repository.NewVisibilityRepository(db)

	users := usecase.NewUserUsecase(userRepo, config)
	relation := usecase.NewRelationshipUsecase(contactRepo, aspectRepo, personRepo)
	auth := service.NewAuthService(config, "test secret", userRepo)

	handler := NewHandler(
		usecase.NewVisibilityUsecase(visibilityRepo, personRepo),
		relation,
		usecase.NewPostUsecase(postRepo, nil),
		middleware.NewAuthMiddleware(auth),
	)

	e := echo.New()
	handler.RegisterRoutes(e)

	return &testServer{e: e, auth: auth, users: users, relation: relation, aspects: aspectRepo}
}

func (s *testServer) register(t *testing.T, name string) (domain.User, domain.Aspect, string) {
	t.Helper()
	ctx := context.Background()

	user, err := s.users.Register(ctx, name)
	require.NoError(t, err)
	aspects, err := s.relation.Aspects(ctx, user)
	require.NoError(t, err)
	require.Len(t, aspects, 1)

	token, err := s.auth.Issue(user, time.Hour)
	require.NoError(t, err)
	return user, aspects[0], token
}

func (s *testServer) do(t *testing.T, method, path, token, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}

	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodePage(t *testing.T, rec *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var page pageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	return page
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamRequiresAuth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/stream", "not-a-token", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStreamShowsSharedPosts(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	alice, alicesAspect, aliceToken := s.register(t, "alice")
	bob, bobsAspect, bobToken := s.register(t, "bob")
	_, _, eveToken := s.register(t, "eve")
	require.NoError(t, s.relation.Connect(ctx, alice, alicesAspect.ID, bob, bobsAspect.ID))

	body := fmt.Sprintf(`{"type":"StatusMessage","text":"hello bob","aspectIDs":[%d]}`, alicesAspect.ID)
	rec := s.do(t, http.MethodPost, "/api/v1/posts", aliceToken, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post domain.Post
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &post))

	rec = s.do(t, http.MethodGet, "/api/v1/stream", bobToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodePage(t, rec)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, post.ID, page.Posts[0].ID)
	assert.Empty(t, page.NextCursor)

	etag := rec.Header().Get("ETag")
	require.NotEmpty(t, etag)
	rec = s.do(t, http.MethodGet, "/api/v1/stream", bobToken, "", "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/stream", eveToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodePage(t, rec).Posts)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), eveToken, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), bobToken, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStreamPagination(t *testing.T) {
	s := newTestServer(t)

	_, aspect, token := s.register(t, "alice")
	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"text":"post %d","aspectIDs":[%d]}`, i, aspect.ID)
		rec := s.do(t, http.MethodPost, "/api/v1/posts", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	var seen []int64
	path := "/api/v1/stream?limit=2"
	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodGet, path, token, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		page := decodePage(t, rec)
		for _, p := range page.Posts {
			seen = append(seen, p.ID)
		}
		if page.NextCursor == "" {
			break
		}
		path = "/api/v1/stream?limit=2&max_time=" + page.NextCursor
	}

	assert.Len(t, seen, 3)
	assert.Greater(t, seen[0], seen[1])
	assert.Greater(t, seen[1], seen[2])
}

func TestStreamRejectsBadOptions(t *testing.T) {
	s := newTestServer(t)
	_, _, token := s.register(t, "alice")

	for _, query := range []string{"order=id", "limit=-1", "limit=ten", "max_time=yesterday", "type=Reshare", "aspect_ids=1,x", "aspect_ids=,", "aspect_ids=%20"} {
		rec := s.do(t, http.MethodGet, "/api/v1/stream?"+query, token, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestMoveContactIntoForeignAspect(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	alice, alicesAspect, aliceToken := s.register(t, "alice")
	bob, bobsAspect, _ := s.register(t, "bob")
	require.NoError(t, s.relation.Connect(ctx, alice, alicesAspect.ID, bob, bobsAspect.ID))

	body := fmt.Sprintf(`{"personID":%d,"from":%d,"to":%d}`, bob.PersonID, alicesAspect.ID, bobsAspect.ID)
	rec := s.do(t, http.MethodPost, "/api/v1/contacts/move", aliceToken, body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/aspects", aliceToken, `{"name":"friends"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var friends domain.Aspect
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friends))

	body = fmt.Sprintf(`{"personID":%d,"from":%d,"to":%d}`, bob.PersonID, alicesAspect.ID, friends.ID)
	rec = s.do(t, http.MethodPost, "/api/v1/contacts/move", aliceToken, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/people/%d/aspects", bob.PersonID), aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var aspects []domain.Aspect
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &aspects))
	require.Len(t, aspects, 1)
	assert.Equal(t, friends.ID, aspects[0].ID)
}

func TestPeopleInAspectsEndpoint(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	alice, alicesAspect, aliceToken := s.register(t, "alice")
	bob, bobsAspect, _ := s.register(t, "bob")
	require.NoError(t, s.relation.Connect(ctx, alice, alicesAspect.ID, bob, bobsAspect.ID))

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/aspects/people?aspect_ids=%d&type=local", alicesAspect.ID), aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var people []domain.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	require.Len(t, people, 1)
	assert.Equal(t, bob.PersonID, people[0].ID)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/aspects/people?aspect_ids=%d&type=remote", alicesAspect.ID), aliceToken, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &people))
	assert.Empty(t, people)

	rec = s.do(t, http.MethodGet, "/api/v1/aspects/people?type=martian", aliceToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/aspects/people?aspect_ids=,", aliceToken, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactLifecycle(t *testing.T) {
	s := newTestServer(t)

	_, aspect, token := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/v1/people", token, `{"handle":"carol@remote.example"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var carol domain.Person
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carol))
	assert.False(t, carol.IsLocal())

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/people/%d/contact", carol.ID), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	body := fmt.Sprintf(`{"personID":%d,"aspectIDs":[%d],"pending":true}`, carol.ID, aspect.ID)
	rec = s.do(t, http.MethodPost, "/api/v1/contacts", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/people/%d/contact/accept", carol.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/people/%d/contact", carol.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var contact domain.Contact
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contact))
	assert.False(t, contact.Pending)
	assert.Equal(t, []int64{aspect.ID}, contact.AspectIDs)

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/contacts/%d/aspects/%d", contact.ID, aspect.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/contacts/%d/aspects/%d", contact.ID, aspect.ID), token, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
