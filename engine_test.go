package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/cons"
	"github.com/gm2211/hudson-dashboard/message"
	"github.com/gm2211/hudson-dashboard/middleware"
	"github.com/gm2211/hudson-dashboard/response"
	"github.com/gm2211/hudson-dashboard/service"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

type testServer struct {
	t      *testing.T
	engine *DashboardEngine
	srv    *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqldb, err := db.DB()
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	e, err := NewEngine(WithDB(db))
	require.NoError(t, err)
	t.Cleanup(e.Close)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.GinZapLogger(nil))
	e.RegisterRoutes(r.Group("/api/v1"))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testServer{t: t, engine: e, srv: srv}
}

// do 发请求并解析统一响应，data 解析到 out（可为 nil）
func (s *testServer) do(method, path string, body any, out any) (int, int) {
	s.t.Helper()

	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, s.srv.URL+"/api/v1"+path, rd)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.srv.Client().Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	var env envelope[json.RawMessage]
	require.NoError(s.t, json.NewDecoder(resp.Body).Decode(&env))
	if out != nil && len(env.Data) > 0 {
		require.NoError(s.t, json.Unmarshal(env.Data, out))
	}
	return resp.StatusCode, env.Code
}

func TestNewEngineRequiresDB(t *testing.T) {
	_, err := NewEngine()
	require.Error(t, err)
}

func TestHTTPPublishFlow(t *testing.T) {
	s := newTestServer(t)

	var created board.StatusItem
	status, code := s.do(http.MethodPost, "/status", board.StatusItem{
		Name:        "Elevators",
		Status:      board.StatusOperational,
		LastChecked: time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}, &created)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, response.CodeSuccess, code)
	require.NotZero(t, created.ID)

	var ds service.DraftStatus
	status, _ = s.do(http.MethodGet, "/draft/status", nil, &ds)
	require.Equal(t, http.StatusOK, status)
	require.True(t, ds.HasChanges)
	require.Nil(t, ds.LatestPublished)

	var pub service.PublishResult
	status, _ = s.do(http.MethodPost, "/draft/publish", nil, &pub)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, pub.Version)

	var live service.VersionDetail
	status, _ = s.do(http.MethodGet, "/live", nil, &live)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, live.Version)
	require.Len(t, live.State.StatusSection.Items, 1)
	require.Equal(t, "Elevators", live.State.StatusSection.Items[0].Name)

	status, _ = s.do(http.MethodGet, "/draft/status", nil, &ds)
	require.Equal(t, http.StatusOK, status)
	require.False(t, ds.HasChanges)
	require.NotNil(t, ds.LatestPublished)
	require.Equal(t, 1, ds.LatestPublished.Version)

	// 标记删除后草稿有修改，diff 到草稿能看到删除
	status, _ = s.do(http.MethodDelete, "/status/"+itoa(created.ID), nil, nil)
	require.Equal(t, http.StatusOK, status)

	var diff board.DiffResult
	status, _ = s.do(http.MethodGet, "/versions/1/diff/draft", nil, &diff)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, diff.Status.Removed, 1)

	status, _ = s.do(http.MethodPost, "/status/"+itoa(created.ID)+"/unmark", nil, nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodGet, "/draft/status", nil, &ds)
	require.Equal(t, http.StatusOK, status)
	require.False(t, ds.HasChanges)

	var versions []service.VersionInfo
	status, _ = s.do(http.MethodGet, "/versions", nil, &versions)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, versions, 1)
}

func TestHTTPErrorMapping(t *testing.T) {
	s := newTestServer(t)

	status, code := s.do(http.MethodGet, "/live", nil, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, response.CodeNotFound, code)

	status, code = s.do(http.MethodGet, "/versions/7", nil, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.Equal(t, response.CodeNotFound, code)

	status, code = s.do(http.MethodGet, "/versions/abc", nil, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, response.CodeParamError, code)

	status, code = s.do(http.MethodPost, "/status", board.StatusItem{Name: "Gym", Status: "Broken"}, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, response.CodeParamError, code)

	status, _ = s.do(http.MethodPut, "/advisories/42", board.AdvisoryItem{Label: "x", Message: "y"}, nil)
	require.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodPut, "/config", board.Config{StatusPageSeconds: -1}, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodPost, "/draft/publish", nil, nil)
	require.Equal(t, http.StatusOK, status)

	// 唯一的版本不能删
	status, code = s.do(http.MethodDelete, "/versions/1", nil, nil)
	require.Equal(t, http.StatusBadRequest, status)
	require.Equal(t, response.CodeParamError, code)

	status, _ = s.do(http.MethodGet, "/versions/1/diff/latest", nil, nil)
	require.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(http.MethodPost, "/versions/1/restore-items", service.ItemSelection{}, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestHTTPConfigAndRestoreItems(t *testing.T) {
	s := newTestServer(t)

	var cfg *board.Config
	status, _ := s.do(http.MethodGet, "/config", nil, &cfg)
	require.Equal(t, http.StatusOK, status)
	require.Nil(t, cfg)

	status, _ = s.do(http.MethodPut, "/config", board.Config{BuildingName: "Hudson", AdvisoryTickerSeconds: 20}, &cfg)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, cfg)
	require.Equal(t, "Hudson", cfg.BuildingName)

	var adv board.AdvisoryItem
	status, _ = s.do(http.MethodPost, "/advisories", board.AdvisoryItem{Label: "Water", Message: "Shutoff at noon", Active: true}, &adv)
	require.Equal(t, http.StatusOK, status)
	status, _ = s.do(http.MethodPost, "/draft/publish", nil, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = s.do(http.MethodPut, "/advisories/"+itoa(adv.ID), board.AdvisoryItem{Label: "Water", Message: "Restored", Active: false}, nil)
	require.Equal(t, http.StatusOK, status)

	var restored service.ItemSelection
	status, _ = s.do(http.MethodPost, "/versions/1/restore-items", service.ItemSelection{Advisories: []uint64{adv.ID, 999}}, &restored)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, []uint64{adv.ID}, restored.Advisories)

	var got board.AdvisoryItem
	status, _ = s.do(http.MethodGet, "/advisories/"+itoa(adv.ID), nil, &got)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "Shutoff at noon", got.Message)
	require.True(t, got.Active)
}

func TestHTTPPurgeHistory(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 3; i++ {
		status, _ := s.do(http.MethodPost, "/draft/publish", nil, nil)
		require.Equal(t, http.StatusOK, status)
	}

	var raw map[string]json.RawMessage
	status, code := s.do(http.MethodPost, "/versions/purge", nil, &raw)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, response.CodeSuccess, code)
	require.JSONEq(t, "2", string(raw["deletedCount"]))
	require.NotContains(t, raw, "deleted_count")

	var versions []service.VersionInfo
	status, _ = s.do(http.MethodGet, "/versions", nil, &versions)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, versions, 1)
	require.Equal(t, 3, versions[0].Version)
}

func TestWebSocketPublishedEventAndPong(t *testing.T) {
	s := newTestServer(t)

	url := "ws" + strings.TrimPrefix(s.srv.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return s.engine.WsServer.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteJSON(message.Req{Type: message.WsTypePing, PacketID: "p-1"}))
	var pong message.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&pong))
	require.Equal(t, cons.EventPong, pong.Type)
	require.Equal(t, "p-1", pong.PacketID)

	status, _ := s.do(http.MethodPost, "/draft/publish", nil, nil)
	require.Equal(t, http.StatusOK, status)

	var ev message.Event
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, cons.EventPublished, ev.Type)
	require.Equal(t, 1, ev.Version)
	require.NotEmpty(t, ev.EventID)
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
