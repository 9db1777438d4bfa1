package leasing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"playerhire/internal/domain"
	"playerhire/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

type playerData struct {
	Player domain.PlayerListing `json:"player"`
}

func setupTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := setupTestService(t)
	h := NewHandler(svc)

	r := gin.New()
	v1 := r.Group("/api/v1")

	protected := v1.Group("")
	protected.Use(func(c *gin.Context) {
		raw := c.GetHeader("X-Test-User-ID")
		if raw == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		id, _ := strconv.ParseInt(raw, 10, 64)
		c.Set("user_id", id)
		role := c.GetHeader("X-Test-Role")
		if role == "" {
			role = string(domain.RoleClient)
		}
		c.Set("role", role)
		c.Next()
	})

	h.RegisterRoutes(v1, protected, middleware.AdminOnly())
	return r, svc
}

func doJSONRequest(r http.Handler, method, path string, body any, userID int64, role domain.UserRole) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User-ID", strconv.FormatInt(userID, 10))
	}
	if role != "" {
		req.Header.Set("X-Test-Role", string(role))
	}

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr, env
}

func createBody(game string) map[string]any {
	return map[string]any{
		"username":       "shadow",
		"game_name":      game,
		"rank":           "Diamond",
		"role":           "Support",
		"server":         "EU",
		"price_per_hour": 15,
	}
}

func createPlayer(t *testing.T, r http.Handler, owner int64) domain.PlayerListing {
	t.Helper()
	rr, env := doJSONRequest(r, http.MethodPost, "/api/v1/players", createBody("Valorant"), owner, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var data playerData
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Player
}

func TestPlayerEndpoints_Unauthorized(t *testing.T) {
	r, _ := setupTestRouter(t)
	id := uuid.New().String()

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/players"},
		{http.MethodPut, "/api/v1/players/" + id},
		{http.MethodDelete, "/api/v1/players/" + id},
		{http.MethodPost, "/api/v1/players/" + id + "/hire"},
		{http.MethodPost, "/api/v1/players/" + id + "/return"},
		{http.MethodPost, "/api/v1/players/" + id + "/rate"},
	}
	for _, tc := range cases {
		rr, _ := doJSONRequest(r, tc.method, tc.path, nil, 0, "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestPlayerEndpoints_FullFlow(t *testing.T) {
	r, _ := setupTestRouter(t)

	p := createPlayer(t, r, 1)
	assert.Equal(t, domain.ListingAvailable, p.Status)
	base := "/api/v1/players/" + p.ID.String()

	rr, env := doJSONRequest(r, http.MethodPost, base+"/hire", map[string]any{"hours": 2}, 2, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var hired playerData
	require.NoError(t, json.Unmarshal(env.Data, &hired))
	assert.Equal(t, domain.ListingHired, hired.Player.Status)
	assert.Equal(t, 2, *hired.Player.HoursHired)

	rr, env = doJSONRequest(r, http.MethodPost, base+"/hire", map[string]any{"hours": 1}, 3, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "NOT_AVAILABLE", env.Error.Code)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/players/available", nil, 0, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Players []domain.PlayerListing `json:"players"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Empty(t, list.Players)

	rr, env = doJSONRequest(r, http.MethodPost, base+"/return", nil, 3, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = doJSONRequest(r, http.MethodPost, base+"/return", nil, 2, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr, env = doJSONRequest(r, http.MethodPost, base+"/return", nil, 1, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "NOT_HIRED", env.Error.Code)

	rr, _ = doJSONRequest(r, http.MethodPost, base+"/rate", map[string]any{"rating": 4}, 2, "")
	require.Equal(t, http.StatusOK, rr.Code)
	rr, env = doJSONRequest(r, http.MethodPost, base+"/rate", map[string]any{"rating": 2}, 3, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var rated playerData
	require.NoError(t, json.Unmarshal(env.Data, &rated))
	assert.Equal(t, 3.0, *rated.Player.Rating)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/players/available", nil, 0, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Players, 1)
}

func TestCreate_Errors(t *testing.T) {
	r, _ := setupTestRouter(t)
	createPlayer(t, r, 1)

	rr, env := doJSONRequest(r, http.MethodPost, "/api/v1/players", createBody("Dota 2"), 1, "")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "ALREADY_LISTED", env.Error.Code)

	bad := createBody("")
	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/players", bad, 2, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "game_name")

	onBehalf := createBody("Valorant")
	onBehalf["owner_user_id"] = 7
	rr, _ = doJSONRequest(r, http.MethodPost, "/api/v1/players", onBehalf, 2, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/players", onBehalf, 100, domain.RoleAdmin)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created playerData
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, int64(7), created.Player.OwnerUserID)
}

func TestHire_Errors(t *testing.T) {
	r, _ := setupTestRouter(t)
	p := createPlayer(t, r, 1)
	base := "/api/v1/players/" + p.ID.String()

	rr, env := doJSONRequest(r, http.MethodPost, base+"/hire", map[string]any{"hours": 2}, 1, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "SELF_HIRE_FORBIDDEN", env.Error.Code)

	rr, env = doJSONRequest(r, http.MethodPost, base+"/hire", map[string]any{"hours": 0}, 2, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_HOURS", env.Error.Code)

	rr, env = doJSONRequest(r, http.MethodPost, base+"/hire", map[string]any{}, 2, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_HOURS", env.Error.Code)

	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/players/"+uuid.New().String()+"/hire", map[string]any{"hours": 1}, 2, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, env = doJSONRequest(r, http.MethodPost, "/api/v1/players/not-a-uuid/hire", map[string]any{"hours": 1}, 2, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_ID", env.Error.Code)
}

func TestRate_Errors(t *testing.T) {
	r, _ := setupTestRouter(t)
	p := createPlayer(t, r, 1)
	path := "/api/v1/players/" + p.ID.String() + "/rate"

	for _, body := range []map[string]any{{"rating": -0.1}, {"rating": 5.1}, {}} {
		rr, env := doJSONRequest(r, http.MethodPost, path, body, 2, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "INVALID_RATING", env.Error.Code)
	}
}

func TestUpdate_Permissions(t *testing.T) {
	r, svc := setupTestRouter(t)
	p := createPlayer(t, r, 1)
	path := "/api/v1/players/" + p.ID.String()

	body := createBody("Valorant")
	body["rank"] = "Immortal"

	rr, _ := doJSONRequest(r, http.MethodPut, path, body, 2, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = doJSONRequest(r, http.MethodPut, path, body, 1, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	withStatus := createBody("Valorant")
	withStatus["status"] = "HIRED"
	rr, _ = doJSONRequest(r, http.MethodPut, path, withStatus, 1, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = doJSONRequest(r, http.MethodPut, path, withStatus, 100, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	got, err := svc.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Immortal", got.Rank)
	assert.Equal(t, domain.ListingHired, got.Status)
}

func TestDelete_AdminOnly(t *testing.T) {
	r, _ := setupTestRouter(t)
	p := createPlayer(t, r, 1)
	path := "/api/v1/players/" + p.ID.String()

	rr, _ := doJSONRequest(r, http.MethodDelete, path, nil, 1, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = doJSONRequest(r, http.MethodDelete, path, nil, 100, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rr.Code)

	rr, env := doJSONRequest(r, http.MethodDelete, path, nil, 100, domain.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	rr, _ = doJSONRequest(r, http.MethodGet, path, nil, 0, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestList_InvalidStatus(t *testing.T) {
	r, _ := setupTestRouter(t)

	rr, env := doJSONRequest(r, http.MethodGet, "/api/v1/players?status=lost", nil, 0, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
}

func TestList_GameFilterShowsAvailableOnly(t *testing.T) {
	r, _ := setupTestRouter(t)

	free := createPlayer(t, r, 1)
	taken := createPlayer(t, r, 2)
	rr, _ := doJSONRequest(r, http.MethodPost, "/api/v1/players/"+taken.ID.String()+"/hire", map[string]any{"hours": 1}, 3, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var list struct {
		Players []domain.PlayerListing `json:"players"`
	}

	rr, env := doJSONRequest(r, http.MethodGet, "/api/v1/players?game=Valorant", nil, 0, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list.Players, 1)
	assert.Equal(t, free.ID, list.Players[0].ID)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/players?game=Valorant&status=any", nil, 0, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Players, 2)

	rr, env = doJSONRequest(r, http.MethodGet, "/api/v1/players", nil, 0, "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list.Players, 2)
}
