package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/user/hypertube/internal/handler"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 影片搜索
	r.GET("/search", h.SearchMovies)

	// ==================== 影片 ====================
	movie := r.Group("/movie")
	{
		movie.GET("/infos/:id", h.GetMovieInfos)
		movie.GET("/download/:id", h.DownloadMovie)
		movie.GET("/streaming/:id", h.StreamMovie)
		movie.POST("/review", h.CreateReview)
	}

	// ==================== 实时推送 ====================
	r.GET("/ws/movie/:id", h.ServeWS)
}
