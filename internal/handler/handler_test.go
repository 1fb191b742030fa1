package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/tennis-players-service/internal/handler"
	"github.com/maxviazov/tennis-players-service/internal/metrics"
	"github.com/maxviazov/tennis-players-service/internal/model"
	"github.com/maxviazov/tennis-players-service/internal/repository/memory"
	"github.com/maxviazov/tennis-players-service/internal/service"
	"github.com/maxviazov/tennis-players-service/pkg/response"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

// stubPlayerService records the arguments it was called with and returns canned results.
type stubPlayerService struct {
	player model.Player
	page   model.PlayerPage
	err    error

	gotID     int64
	gotParams service.ListParams
	gotInput  model.PlayerInput
	gotBatch  []model.PlayerInput
	gotRank   int
	gotStats  model.StatsUpdate
}

func (s *stubPlayerService) ListPlayers(_ context.Context, p service.ListParams) (model.PlayerPage, error) {
	s.gotParams = p
	return s.page, s.err
}
func (s *stubPlayerService) GetPlayer(_ context.Context, id int64) (model.Player, error) {
	s.gotID = id
	return s.player, s.err
}
func (s *stubPlayerService) CreatePlayer(_ context.Context, in model.PlayerInput) (model.Player, error) {
	s.gotInput = in
	return s.player, s.err
}
func (s *stubPlayerService) CreatePlayers(_ context.Context, in []model.PlayerInput) ([]model.Player, error) {
	s.gotBatch = in
	return []model.Player{s.player}, s.err
}
func (s *stubPlayerService) ReplacePlayer(_ context.Context, id int64, in model.PlayerInput) (model.Player, error) {
	s.gotID, s.gotInput = id, in
	return s.player, s.err
}
func (s *stubPlayerService) UpdateRank(_ context.Context, id int64, rank int) (model.Player, error) {
	s.gotID, s.gotRank = id, rank
	return s.player, s.err
}
func (s *stubPlayerService) UpdateStats(_ context.Context, id int64, st model.StatsUpdate) (model.Player, error) {
	s.gotID, s.gotStats = id, st
	return s.player, s.err
}
func (s *stubPlayerService) UpdatePartial(_ context.Context, id int64, in model.PlayerInput) (model.Player, error) {
	s.gotID, s.gotInput = id, in
	return s.player, s.err
}
func (s *stubPlayerService) DeletePlayer(_ context.Context, id int64) (model.DeleteResult, error) {
	s.gotID = id
	return model.DeleteResult{Message: fmt.Sprintf("Player with id %d deleted successfully", id)}, s.err
}

type stubAnalytics struct {
	countries model.CountryReport
	err       error
}

func (s stubAnalytics) BestAndWorstCountry(context.Context) (model.CountryReport, error) {
	return s.countries, s.err
}
func (s stubAnalytics) PlayersBMI(context.Context) (model.BMIReport, error) {
	return model.BMIReport{Average: 22.5}, s.err
}
func (s stubAnalytics) HeightStats(context.Context) (model.HeightStats, error) {
	return model.HeightStats{Min: 170, Max: 190, Average: 180, Median: 180}, s.err
}

func newRouter(ps service.PlayerService, as service.AnalyticsService, rec *metrics.Recorder) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := handler.NewEngine(zerolog.New(io.Discard), rec, 0)
	handler.Register(r, handler.ServiceInfo{Name: "tennis-players-service", Version: "test"}, stubPinger{}, ps, as, rec)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorPayload {
	t.Helper()
	var p response.ErrorPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p), w.Body.String())
	return p
}

func TestHealthRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		pinger handler.Pinger
		path   string
		want   int
	}{
		{"live_root", stubPinger{}, "/live", http.StatusOK},
		{"ready_root", stubPinger{}, "/ready", http.StatusOK},
		{"live_api", stubPinger{}, "/api/health/live", http.StatusOK},
		{"ready_api", stubPinger{}, "/api/health/ready", http.StatusOK},
		{"ready_unavailable", stubPinger{err: errors.New("db down")}, "/api/health/ready", http.StatusServiceUnavailable},
		{"health", stubPinger{err: errors.New("ignored")}, "/api/health", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			handler.Register(r, handler.ServiceInfo{}, tc.pinger, nil, nil, nil)
			w := do(r, http.MethodGet, tc.path, "")
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestInfo(t *testing.T) {
	r := newRouter(&stubPlayerService{}, stubAnalytics{}, nil)
	w := do(r, http.MethodGet, "/api", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Service   handler.ServiceInfo `json:"service"`
		Endpoints []string            `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "tennis-players-service", body.Service.Name)
	assert.Contains(t, body.Endpoints, "GET /api/players/analytics/bmi")
}

func TestDocs(t *testing.T) {
	r := newRouter(&stubPlayerService{}, stubAnalytics{}, nil)

	w := do(r, http.MethodGet, "/openapi.yaml", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/players/analytics/countries")

	w = do(r, http.MethodGet, "/docs", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")
}

func TestPlayerHandler_List(t *testing.T) {
	stub := &stubPlayerService{page: model.PlayerPage{Total: 1, Page: 2, Limit: 5, TotalPages: 1, Players: []model.Player{{ID: 1}}}}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodGet, "/api/players?page=2&limit=5&sort=-data.points&country=esp&sex=F", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, service.ListParams{Page: 2, Limit: 5, Sort: "-data.points", Country: "esp", Sex: "F"}, stub.gotParams)

	var page model.PlayerPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.Page)
	assert.Len(t, page.Players, 1)
}

func TestPlayerHandler_ListIgnoresGarbageNumbers(t *testing.T) {
	stub := &stubPlayerService{}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodGet, "/api/players?page=abc&limit=", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, stub.gotParams.Page)
	assert.Equal(t, 0, stub.gotParams.Limit)
}

func TestPlayerHandler_GetByID(t *testing.T) {
	stub := &stubPlayerService{player: model.Player{ID: 7, Firstname: "Iga"}}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodGet, "/api/players/7", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(7), stub.gotID)

	var p model.Player
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "Iga", p.Firstname)
}

func TestPlayerHandler_InvalidID(t *testing.T) {
	r := newRouter(&stubPlayerService{}, stubAnalytics{}, nil)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/players/abc", ""},
		{http.MethodPut, "/api/players/1.5", "{}"},
		{http.MethodPatch, "/api/players/x", "{}"},
		{http.MethodPatch, "/api/players/x/rank", `{"rank": 1}`},
		{http.MethodPatch, "/api/players/x/stats", `{"age": 1}`},
		{http.MethodDelete, "/api/players/x", ""},
	} {
		t.Run(tc.method+tc.path, func(t *testing.T) {
			w := do(r, tc.method, tc.path, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			p := decodeError(t, w)
			assert.Equal(t, "invalid_input", p.Error)
			assert.Equal(t, "Invalid player ID", p.Message)
			assert.Equal(t, []service.FieldError{{Field: "id", Message: "Invalid player ID"}}, p.FieldErrors)
		})
	}
}

func TestPlayerHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not_found", &service.Error{Kind: service.KindNotFound, Message: "Player with id 9 not found"}, http.StatusNotFound, "Player with id 9 not found"},
		{"conflict", &service.Error{Kind: service.KindConflict, Message: "Another player with this shortname exists"}, http.StatusConflict, "Another player with this shortname exists"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newRouter(&stubPlayerService{err: tc.err}, stubAnalytics{}, nil)
			w := do(r, http.MethodGet, "/api/players/9", "")
			require.Equal(t, tc.code, w.Code)
			assert.Equal(t, tc.msg, decodeError(t, w).Message)
		})
	}
}

func TestPlayerHandler_Create(t *testing.T) {
	stub := &stubPlayerService{player: model.Player{ID: 1, Shortname: "N.DJO"}}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodPost, "/api/players", `{"id": 1, "shortname": "n.djo", "data": {"rank": 1}}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, stub.gotInput.ID)
	assert.Equal(t, int64(1), *stub.gotInput.ID)
	assert.True(t, stub.gotInput.Has("data"))
	assert.False(t, stub.gotInput.Has("country"))
}

func TestPlayerHandler_CreateBindingErrors(t *testing.T) {
	r := newRouter(&stubPlayerService{}, stubAnalytics{}, nil)

	w := do(r, http.MethodPost, "/api/players", `{"id": 1,`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid JSON payload", decodeError(t, w).Message)

	w = do(r, http.MethodPost, "/api/players", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Request body is required", decodeError(t, w).Message)

	w = do(r, http.MethodPost, "/api/players", `{"id": "one"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	p := decodeError(t, w)
	require.Len(t, p.FieldErrors, 1)
	assert.Equal(t, "id", p.FieldErrors[0].Field)
	assert.Equal(t, service.MsgIDNotInteger, p.FieldErrors[0].Message)

	w = do(r, http.MethodPost, "/api/players", `{"data": {"rank": "first"}}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	p = decodeError(t, w)
	require.Len(t, p.FieldErrors, 1)
	assert.Equal(t, "data.rank", p.FieldErrors[0].Field)
}

func TestPlayerHandler_CreateBulk(t *testing.T) {
	stub := &stubPlayerService{player: model.Player{ID: 1}}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodPost, "/api/players/bulk", `[{"id": 1}, {"id": 2}]`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Len(t, stub.gotBatch, 2)

	var out []model.Player
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Len(t, out, 1)
}

func TestPlayerHandler_Updates(t *testing.T) {
	stub := &stubPlayerService{player: model.Player{ID: 3}}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodPut, "/api/players/3", `{"id": 3, "firstname": "Coco"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(3), stub.gotID)
	assert.Equal(t, "Coco", *stub.gotInput.Firstname)

	w = do(r, http.MethodPatch, "/api/players/4", `{"country": {"code": "usa"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(4), stub.gotID)
	assert.Equal(t, "usa", *stub.gotInput.Country.Code)

	w = do(r, http.MethodPatch, "/api/players/5/rank", `{"rank": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), stub.gotID)
	assert.Equal(t, 2, stub.gotRank)

	w = do(r, http.MethodPatch, "/api/players/6/stats", `{"age": 31, "unknown": true}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(6), stub.gotID)
	require.NotNil(t, stub.gotStats.Age)
	assert.Equal(t, 31, *stub.gotStats.Age)
}

func TestPlayerHandler_Delete(t *testing.T) {
	stub := &stubPlayerService{}
	r := newRouter(stub, stubAnalytics{}, nil)

	w := do(r, http.MethodDelete, "/api/players/8", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message": "Player with id 8 deleted successfully"}`, w.Body.String())
}

func TestAnalyticsHandler(t *testing.T) {
	stub := stubAnalytics{countries: model.CountryReport{
		Best:  []model.CountryRatio{{Code: "ESP", WinRatio: 0.5}},
		Worst: []model.CountryRatio{{Code: "FRA", WinRatio: 0.2}},
	}}
	players := &stubPlayerService{}
	r := newRouter(players, stub, nil)

	w := do(r, http.MethodGet, "/api/players/analytics/countries", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"best":[{"code":"ESP","winRatio":0.5}],"worst":[{"code":"FRA","winRatio":0.2}]}`, w.Body.String())
	assert.Zero(t, players.gotID, "analytics must not be routed to GET /players/:id")

	w = do(r, http.MethodGet, "/api/players/analytics/bmi", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/players/analytics/height", "")
	require.Equal(t, http.StatusOK, w.Code)
	var hs model.HeightStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &hs))
	assert.Equal(t, 190.0, hs.Max)
}

func TestAnalyticsHandler_Errors(t *testing.T) {
	r := newRouter(&stubPlayerService{}, stubAnalytics{err: &service.Error{Kind: service.KindNotFound, Message: "No players found for analysis"}}, nil)
	w := do(r, http.MethodGet, "/api/players/analytics/countries", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "No players found for analysis", decodeError(t, w).Message)
}

// The whole stack over the in-memory store.
func TestPlayersAPI_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := memory.New()
	log := zerolog.New(io.Discard)
	r := handler.NewEngine(log, nil, 0)
	handler.Register(r, handler.ServiceInfo{}, store,
		service.NewPlayerService(store, service.Options{}, log),
		service.NewAnalyticsService(store, log), nil)

	body := `{
		"id": 52, "firstname": "Novak", "lastname": "Djokovic", "shortname": "n.djo", "sex": "M",
		"country": {"picture": "https://flags.example/srb.png", "code": "srb"},
		"picture": "https://img.example/djokovic.png",
		"data": {"rank": 2, "points": 2542, "weight": 80000, "height": 188, "age": 31, "last": [1, 1, 1, 1, 1]}
	}`
	w := do(r, http.MethodPost, "/api/players", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(r, http.MethodPost, "/api/players", body)
	require.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodPatch, "/api/players/52", `{"data": {"age": 32}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var p model.Player
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "N.DJO", p.Shortname)
	assert.Equal(t, "SRB", p.Country.Code)
	assert.Equal(t, 32, p.Data.Age)
	assert.Equal(t, 2542, p.Data.Points)

	w = do(r, http.MethodPatch, "/api/players/52", `{"id": 53}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Player ID cannot be modified", decodeError(t, w).Message)

	w = do(r, http.MethodGet, "/api/players/analytics/bmi", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"average": 22.63, "players": [{"id": 52, "name": "Novak Djokovic", "bmi": 22.63}]}`, w.Body.String())

	w = do(r, http.MethodDelete, "/api/players/52", "")
	require.Equal(t, http.StatusOK, w.Code)
	w = do(r, http.MethodGet, "/api/players/52", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Player with id 52 not found", decodeError(t, w).Message)
}
