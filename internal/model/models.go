package model

import (
	"time"
)

// Review 本站影评（持久化模型，只增不改）
type Review struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	MovieID   string    `json:"movie_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	Date      string    `json:"date"` // 客户端提交的原始日期串
	Stars     int       `json:"stars"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (Review) TableName() string {
	return "reviews"
}

// ReviewView 归并后的展示影评
// ID 是毫秒时间戳，只用于排序和展示，不是存储主键
type ReviewView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Date  string `json:"date"`
	Stars int    `json:"stars"`
	Body  string `json:"body"`
}

// MovieInfo 影片聚合信息（来自 archive.org 元数据）
type MovieInfo struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	ProdDate    string `json:"prodDate"`
	RunTime     string `json:"runTime"`
	Stars       *int   `json:"stars"` // 外部影评星级均值，无有效评分时为 null
	Extension   string `json:"extension"`
}

// MovieDetail 影片详情接口的完整响应
type MovieDetail struct {
	Infos   MovieInfo    `json:"infos"`
	Reviews []ReviewView `json:"reviews"`
}

// NewReviewRequest 提交影评的请求体
type NewReviewRequest struct {
	MovieID string `json:"movieId" binding:"required"`
	Name    string `json:"name" binding:"required,min=1,max=64"`
	Date    string `json:"date" binding:"required"`
	Stars   int    `json:"stars" binding:"min=0,max=5"`
	Body    string `json:"body" binding:"max=1000"`
}

// SearchResult 影片搜索结果条目
type SearchResult struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Year        int    `json:"year,omitempty"`
	Description string `json:"description,omitempty"`
}
