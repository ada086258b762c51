package service

import (
	"log"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/utils"
)

// SearchService 影片搜索服务
type SearchService struct {
	archive *ArchiveService
	cache   *utils.SearchCache[[]model.SearchResult]
	group   singleflight.Group
}

// NewSearchService 创建搜索服务
func NewSearchService(archive *ArchiveService) *SearchService {
	return &SearchService{
		archive: archive,
		cache:   utils.NewSearchCache[[]model.SearchResult](1000, time.Hour),
	}
}

// Search 搜索影片
// 1. 先查本地缓存
// 2. 未命中则请求 archive.org，singleflight 合并并发的同词请求
func (s *SearchService) Search(keyword string) ([]model.SearchResult, error) {
	if hit, ok := s.cache.Get(keyword); ok {
		return hit, nil
	}

	val, err, _ := s.group.Do(keyword, func() (interface{}, error) {
		results, err := s.archive.SearchMovies(keyword)
		if err != nil {
			return nil, err
		}
		s.cache.Set(keyword, results)
		return results, nil
	})
	if err != nil {
		log.Printf("[Search] 搜索失败 (关键词: %s): %v", keyword, err)
		return nil, err
	}

	return val.([]model.SearchResult), nil
}
