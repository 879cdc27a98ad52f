package user_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackson951/flexileave-app-sub001/internal/domain"
	"github.com/jackson951/flexileave-app-sub001/internal/middleware"
	"github.com/jackson951/flexileave-app-sub001/internal/user"
	usererrors "github.com/jackson951/flexileave-app-sub001/internal/user/errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUserService struct {
	createFn         func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error)
	getAllFn         func(ctx context.Context, filter user.ListUsersFilter) ([]user.UserResponse, int64, error)
	updateBalancesFn func(ctx context.Context, id string, req user.UpdateBalancesRequest) (user.BalancesResponse, error)
	deleteFn         func(ctx context.Context, actor domain.Actor, id string) error
}

func (f *fakeUserService) Create(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	return f.createFn(ctx, req)
}

func (f *fakeUserService) GetAll(ctx context.Context, filter user.ListUsersFilter) ([]user.UserResponse, int64, error) {
	return f.getAllFn(ctx, filter)
}

func (f *fakeUserService) GetByID(ctx context.Context, id string) (user.UserResponse, error) {
	return user.UserResponse{ID: id}, nil
}

func (f *fakeUserService) ToggleStatus(ctx context.Context, actor domain.Actor, id string, isActive bool) error {
	return nil
}

func (f *fakeUserService) UpdateBalances(ctx context.Context, id string, req user.UpdateBalancesRequest) (user.BalancesResponse, error) {
	return f.updateBalancesFn(ctx, id, req)
}

func (f *fakeUserService) MyBalances(ctx context.Context, actor domain.Actor) (user.BalancesResponse, error) {
	return user.BalancesResponse{UserID: actor.UserID, LeaveBalances: map[string]int{"AnnualLeave": 3}}, nil
}

func (f *fakeUserService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	return f.deleteFn(ctx, actor, id)
}

type apiEnvelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newUserRouter(svc user.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := user.NewHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, "admin-1")
		c.Set(middleware.ContextRole, domain.RoleAdmin)
		c.Next()
	})
	r.GET("/users", h.GetAll)
	r.POST("/users", h.Create)
	r.GET("/users/me/balances", h.MyBalances)
	r.PUT("/users/:id/balances", h.UpdateBalances)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_Create(t *testing.T) {
	svc := &fakeUserService{createFn: func(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
		return user.UserResponse{ID: "u-1", Email: req.Email, Role: req.Role}, nil
	}}
	r := newUserRouter(svc)

	t.Run("created", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/users", `{"name":"Ana","email":"ana@mail.com","password":"secret123","role":"manager"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var env apiEnvelope
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.OK)
	})

	t.Run("short password", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/users", `{"name":"Ana","email":"ana@mail.com","password":"123"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := serve(r, http.MethodPost, "/users", `{"name":"Ana","email":"ana@mail.com","password":"secret123","role":"owner"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUserHandler_GetAll(t *testing.T) {
	var got user.ListUsersFilter
	svc := &fakeUserService{getAllFn: func(ctx context.Context, filter user.ListUsersFilter) ([]user.UserResponse, int64, error) {
		got = filter
		return []user.UserResponse{{ID: "u-1"}}, 1, nil
	}}

	w := serve(newUserRouter(svc), http.MethodGet, "/users?q=ana&role=manager&page=2&page_size=20", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.ListUsersFilter{Query: "ana", Role: "manager", Page: 2, PageSize: 20}, got)
}

func TestUserHandler_MyBalances(t *testing.T) {
	w := serve(newUserRouter(&fakeUserService{}), http.MethodGet, "/users/me/balances", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.JSONEq(t, `{"user_id":"admin-1","leave_balances":{"AnnualLeave":3}}`, string(env.Data))
}

func TestUserHandler_UpdateBalances(t *testing.T) {
	svc := &fakeUserService{updateBalancesFn: func(ctx context.Context, id string, req user.UpdateBalancesRequest) (user.BalancesResponse, error) {
		return user.BalancesResponse{UserID: id, LeaveBalances: req.LeaveBalances}, nil
	}}
	r := newUserRouter(svc)

	w := serve(r, http.MethodPut, "/users/u-9/balances", `{"leave_balances":{"SickLeave":4}}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(r, http.MethodPut, "/users/u-9/balances", `{"leave_balances":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserHandler_Delete_Conflict(t *testing.T) {
	svc := &fakeUserService{deleteFn: func(ctx context.Context, actor domain.Actor, id string) error {
		return usererrors.ErrUserHasDependents
	}}

	w := serve(newUserRouter(svc), http.MethodDelete, "/users/u-2", "")

	assert.Equal(t, http.StatusConflict, w.Code)
	var env apiEnvelope
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "CONFLICT", env.Error.Code)
}
