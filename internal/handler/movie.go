package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/service"
	"github.com/user/hypertube/internal/utils"
	"github.com/user/hypertube/internal/ws"
)

// GetMovieInfos 影片详情：元数据 + 归并后的影评列表
func (h *Handler) GetMovieInfos(c *gin.Context) {
	movieID := c.Param("id")

	detail, err := h.Reviews.GetMovieInfo(movieID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			utils.Fail(c, http.StatusNotFound)
		default:
			log.Printf("[Movie] 获取影片详情失败 (影片: %s): %v", movieID, err)
			utils.Fail(c, http.StatusInternalServerError)
		}
		return
	}

	utils.OK(c, detail)
}

// CreateReview 提交影评，成功后广播给该影片的全部订阅者
func (h *Handler) CreateReview(c *gin.Context) {
	var req model.NewReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Printf("[Review] 提交字段校验失败: %v", verrs)
		}
		// 非法提交和格式错误统一按冲突处理
		utils.Fail(c, http.StatusConflict)
		return
	}

	view, err := h.Reviews.SubmitReview(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSubmission):
			utils.Fail(c, http.StatusConflict)
		default:
			log.Printf("[Review] 提交影评失败 (影片: %s): %v", req.MovieID, err)
			utils.Fail(c, http.StatusInternalServerError)
		}
		return
	}

	utils.OK(c, view)
}

// DownloadMovie 触发影片文件物化，完成前阻塞
func (h *Handler) DownloadMovie(c *gin.Context) {
	movieID := c.Param("id")

	if _, err := h.Download.Download(movieID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			utils.Fail(c, http.StatusNotFound)
		default:
			log.Printf("[Movie] 下载影片失败 (影片: %s): %v", movieID, err)
			utils.Fail(c, http.StatusInternalServerError)
		}
		return
	}

	c.Status(http.StatusOK)
}

// StreamMovie 按 Range 下发已物化的影片文件
func (h *Handler) StreamMovie(c *gin.Context) {
	path, err := h.Download.Path(c.Param("id"))
	if err != nil {
		utils.Fail(c, http.StatusNotFound)
		return
	}
	// c.File 底层是 http.ServeFile，原生支持 Range
	c.File(path)
}

// SearchMovies 搜索影片
func (h *Handler) SearchMovies(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		utils.Fail(c, http.StatusBadRequest)
		return
	}

	results, err := h.Search.Search(keyword)
	if err != nil {
		log.Printf("[Search] 搜索失败 (关键词: %s): %v", keyword, err)
		utils.Fail(c, http.StatusInternalServerError)
		return
	}

	utils.OK(c, gin.H{"results": results})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// 前端单独部署，跨域升级放行
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS 升级 websocket 并加入影片房间
func (h *Handler) ServeWS(c *gin.Context) {
	movieID := c.Param("id")
	if movieID == "" {
		utils.Fail(c, http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] 升级连接失败: %v", err)
		return
	}

	client := ws.NewClient(h.Hub, conn, movieID)
	h.Hub.Join(client)
	client.Start()
}
