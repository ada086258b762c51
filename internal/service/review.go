package service

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/utils"
)

var (
	// ErrStorageUnavailable 本地影评库读写失败
	ErrStorageUnavailable = errors.New("本地存储不可用")
	// ErrInvalidSubmission 影评提交不合法（正文超长或影片不存在）
	ErrInvalidSubmission = errors.New("影评提交不合法")
)

// maxReviewBodyLen 影评正文最大长度
const maxReviewBodyLen = 1000

// eventNewReview 推送给订阅者的事件名
const eventNewReview = "New comments"

// movieFileExtension 播放文件统一按 mp4 下发
const movieFileExtension = "mp4"

// ReviewStore 本站影评存取
type ReviewStore interface {
	Create(rev *model.Review) error
	ListByMovieID(movieID string) ([]model.Review, error)
}

// MetadataFetcher 外部元数据获取
type MetadataFetcher interface {
	FetchMetadata(movieID string) (*model.ArchiveDocument, error)
}

// ReviewPublisher 向影片房间推送事件，尽力投递，不保证送达
type ReviewPublisher interface {
	Publish(room, event string, data interface{})
}

// ReviewService 影评归并与推送
type ReviewService struct {
	store   ReviewStore
	archive MetadataFetcher
	hub     ReviewPublisher
}

// NewReviewService 创建影评服务
func NewReviewService(store ReviewStore, archive MetadataFetcher, hub ReviewPublisher) *ReviewService {
	return &ReviewService{
		store:   store,
		archive: archive,
		hub:     hub,
	}
}

// normalizeArchiveReview 把外部影评归一为展示结构
// createdate 解析失败时归并键取 0，降序排列时自然沉底
func normalizeArchiveReview(raw model.ArchiveReview) model.ReviewView {
	var id int64
	if t, ok := utils.ParseFlexibleDate(raw.CreateDate); ok {
		id = t.UnixMilli()
	}

	stars, err := strconv.Atoi(strings.TrimSpace(raw.Stars))
	if err != nil {
		stars = 0
	}

	date := raw.ReviewDate
	if t, ok := utils.ParseFlexibleDate(raw.ReviewDate); ok {
		date = utils.FormatReviewDate(t)
	}

	return model.ReviewView{
		ID:    id,
		Name:  raw.Reviewer,
		Date:  date,
		Stars: stars,
		Body:  raw.Body,
	}
}

// normalizeStoredReview 把本站影评归一为展示结构
// 归并键用入库时间，不用客户端提交的日期
func normalizeStoredReview(raw model.Review) model.ReviewView {
	date := raw.Date
	if t, ok := utils.ParseFlexibleDate(raw.Date); ok {
		date = utils.FormatReviewDate(t)
	}

	return model.ReviewView{
		ID:    raw.CreatedAt.UnixMilli(),
		Name:  raw.Name,
		Date:  date,
		Stars: raw.Stars,
		Body:  raw.Body,
	}
}

// averageStars 外部影评星级均值向下取整
// 零星级和解析失败的条目不计入分母，没有有效评分时返回 nil
func averageStars(reviews []model.ArchiveReview) *int {
	total, rated := 0, 0
	for _, r := range reviews {
		stars, err := strconv.Atoi(strings.TrimSpace(r.Stars))
		if err != nil {
			stars = 0
		}
		total += stars
		if stars > 0 {
			rated++
		}
	}
	if rated == 0 {
		return nil
	}
	avg := total / rated
	return &avg
}

// mergeReviews 合并外部影评和本站影评，按归并键降序（最新在前）
// 稳定排序保证同键条目维持各自来源内的先后顺序
func mergeReviews(external []model.ArchiveReview, local []model.Review) []model.ReviewView {
	merged := make([]model.ReviewView, 0, len(external)+len(local))
	for _, r := range external {
		merged = append(merged, normalizeArchiveReview(r))
	}
	for _, r := range local {
		merged = append(merged, normalizeStoredReview(r))
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].ID > merged[j].ID
	})
	return merged
}

// GetMovieInfo 聚合影片元数据和归并后的影评列表
// 先查外部元数据，空文档直接返回 ErrNotFound，不再查本地库；
// 本地库查询失败整个请求失败，不给部分结果
func (s *ReviewService) GetMovieInfo(movieID string) (*model.MovieDetail, error) {
	doc, err := s.archive.FetchMetadata(movieID)
	if err != nil {
		return nil, err
	}

	local, err := s.store.ListByMovieID(movieID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	infos := model.MovieInfo{
		Title:       doc.Metadata.Title,
		Description: doc.Metadata.Description,
		Creator:     doc.Metadata.Creator,
		ProdDate:    doc.Metadata.Date,
		RunTime:     doc.Metadata.Runtime,
		Stars:       averageStars(doc.Reviews),
		Extension:   movieFileExtension,
	}

	return &model.MovieDetail{
		Infos:   infos,
		Reviews: mergeReviews(doc.Reviews, local),
	}, nil
}

// SubmitReview 校验、入库并广播一条新影评
// 每次提交都同步回查一次元数据确认影片存在，这里选正确性不选延迟；
// 入库和广播不在一个事务里，进程在两步之间崩溃时靠客户端重新拉取详情兜底
func (s *ReviewService) SubmitReview(req model.NewReviewRequest) (*model.ReviewView, error) {
	if len(req.Body) > maxReviewBodyLen {
		return nil, ErrInvalidSubmission
	}

	if _, err := s.archive.FetchMetadata(req.MovieID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidSubmission
		}
		return nil, err
	}

	rev := &model.Review{
		ID:        uuid.NewString(),
		MovieID:   req.MovieID,
		Name:      req.Name,
		Date:      req.Date,
		Stars:     req.Stars,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(rev); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	view := normalizeStoredReview(*rev)
	s.hub.Publish(req.MovieID, eventNewReview, view)
	log.Printf("[Review] 新影评已广播 (影片: %s)", req.MovieID)

	return &view, nil
}
