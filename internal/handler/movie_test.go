package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/hypertube/internal/handler"
	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/router"
	"github.com/user/hypertube/internal/service"
	"github.com/user/hypertube/internal/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeStore struct {
	reviews []model.Review
	listErr error
}

func (s *fakeStore) Create(rev *model.Review) error {
	s.reviews = append(s.reviews, *rev)
	return nil
}

func (s *fakeStore) ListByMovieID(movieID string) ([]model.Review, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []model.Review
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return out, nil
}

// fakeFetcher 只认识 knownID 这一部影片
type fakeFetcher struct {
	knownID string
}

func (f *fakeFetcher) FetchMetadata(movieID string) (*model.ArchiveDocument, error) {
	if movieID != f.knownID {
		return nil, service.ErrNotFound
	}
	return &model.ArchiveDocument{
		Metadata: &model.ArchiveMetadata{Title: "Night of the Living Dead", Date: "1968"},
		Reviews: []model.ArchiveReview{
			{CreateDate: "2021-01-01 00:00:00", Reviewer: "alice", ReviewDate: "2021-01-01 00:00:00", Stars: "4", Body: "great"},
		},
	}, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(room, event string, data interface{}) {}

// newTestRouter 组装带假依赖的路由
func newTestRouter(store *fakeStore, hub *ws.Hub) *gin.Engine {
	var publisher service.ReviewPublisher = nopPublisher{}
	if hub != nil {
		publisher = hub
	}
	h := &handler.Handler{
		Hub:     hub,
		Reviews: service.NewReviewService(store, &fakeFetcher{knownID: "12345"}, publisher),
	}
	r := gin.New()
	router.RegisterRoutes(r, h)
	return r
}

func postReview(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/movie/review", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func reviewJSON(movieID, body string) string {
	raw, _ := json.Marshal(gin.H{
		"movieId": movieID,
		"name":    "bob",
		"date":    "2022-05-30",
		"stars":   4,
		"body":    body,
	})
	return string(raw)
}

func TestGetMovieInfos(t *testing.T) {
	t.Run("返回聚合详情", func(t *testing.T) {
		store := &fakeStore{reviews: []model.Review{
			{MovieID: "12345", Name: "bob", Date: "2022-05-30", Stars: 5, Body: "ok",
				CreatedAt: time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)},
		}}
		r := newTestRouter(store, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movie/infos/12345", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var detail model.MovieDetail
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, "Night of the Living Dead", detail.Infos.Title)
		require.Len(t, detail.Reviews, 2)
		// 本站影评入库时间更晚，排在前面
		assert.Equal(t, "bob", detail.Reviews[0].Name)
		assert.Equal(t, "alice", detail.Reviews[1].Name)
	})

	t.Run("未知影片返回 404", func(t *testing.T) {
		r := newTestRouter(&fakeStore{}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movie/infos/00000", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("本地库失败返回 500", func(t *testing.T) {
		r := newTestRouter(&fakeStore{listErr: errors.New("connection refused")}, nil)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/movie/infos/12345", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestCreateReview(t *testing.T) {
	t.Run("正文 1000 字符接受", func(t *testing.T) {
		store := &fakeStore{}
		r := newTestRouter(store, nil)

		w := postReview(r, reviewJSON("12345", strings.Repeat("a", 1000)))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, store.reviews, 1)
	})

	t.Run("正文 1001 字符返回 409", func(t *testing.T) {
		store := &fakeStore{}
		r := newTestRouter(store, nil)

		w := postReview(r, reviewJSON("12345", strings.Repeat("a", 1001)))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, store.reviews)
	})

	t.Run("未知影片返回 409", func(t *testing.T) {
		store := &fakeStore{}
		r := newTestRouter(store, nil)

		w := postReview(r, reviewJSON("99999", "ok"))
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, store.reviews)
	})

	t.Run("缺字段返回 409", func(t *testing.T) {
		r := newTestRouter(&fakeStore{}, nil)

		w := postReview(r, `{"movieId": "12345"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestSearchMoviesMissingKeyword(t *testing.T) {
	r := newTestRouter(&fakeStore{}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/search", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// TestReviewBroadcastOverWebsocket 完整链路：
// 订阅影片房间 -> 提交影评 -> 订阅者收到广播，其他房间收不到
func TestReviewBroadcastOverWebsocket(t *testing.T) {
	store := &fakeStore{}
	hub := ws.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	r := newTestRouter(store, hub)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	dial := func(movieID string) *websocket.Conn {
		conn, _, err := websocket.DefaultDialer.Dial(fmt.Sprintf("%s/ws/movie/%s", wsURL, movieID), nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}

	subscriber := dial("12345")
	other := dial("67890")

	// 等两个房间都注册完成
	require.Eventually(t, func() bool {
		return hub.RoomCount("12345") == 1 && hub.RoomCount("67890") == 1
	}, time.Second, 5*time.Millisecond)

	w := postReview(r, reviewJSON("12345", "ok"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.reviews, 1)

	var event struct {
		Event string           `json:"event"`
		Data  model.ReviewView `json:"data"`
	}
	require.NoError(t, subscriber.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, subscriber.ReadJSON(&event))
	assert.Equal(t, "New comments", event.Event)
	assert.Equal(t, "ok", event.Data.Body)
	assert.Equal(t, "bob", event.Data.Name)

	// 订阅了其他影片的连接收不到
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var unexpected map[string]interface{}
	err := other.ReadJSON(&unexpected)
	var nerr net.Error
	require.True(t, errors.As(err, &nerr) && nerr.Timeout(), "应超时而不是收到事件: %v", err)
}
