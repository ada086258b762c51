package handler

import (
	"github.com/user/hypertube/internal/config"
	"github.com/user/hypertube/internal/repository"
	"github.com/user/hypertube/internal/service"
	"github.com/user/hypertube/internal/ws"
)

// Handler HTTP 处理器
type Handler struct {
	Repos    *repository.Repositories
	Config   *config.Config
	Hub      *ws.Hub
	Reviews  *service.ReviewService
	Download *service.DownloadService
	Search   *service.SearchService
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config, hub *ws.Hub) *Handler {
	// 外部元数据客户端
	archive := service.NewArchiveService(cfg)

	return &Handler{
		Repos:    repos,
		Config:   cfg,
		Hub:      hub,
		Reviews:  service.NewReviewService(repos.Review, archive, hub),
		Download: service.NewDownloadService(archive, cfg),
		Search:   service.NewSearchService(archive),
	}
}
