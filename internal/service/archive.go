package service

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/user/hypertube/internal/config"
	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/utils"
)

var (
	// ErrProviderUnavailable 外部元数据服务不可达或返回非 2xx
	ErrProviderUnavailable = errors.New("外部元数据服务不可用")
	// ErrNotFound 外部服务返回空文档，影片不存在
	ErrNotFound = errors.New("影片不存在")
)

// ArchiveService archive.org 客户端
// 元数据接口对未知 id 返回空文档 {} 而不是 404，所以按文档内容判断存在性
type ArchiveService struct {
	baseURL string
	client  *utils.HTTPClient
}

// NewArchiveService 创建 archive.org 客户端
func NewArchiveService(cfg *config.Config) *ArchiveService {
	return &ArchiveService{
		baseURL: cfg.ArchiveBaseURL,
		client:  utils.NewHTTPClient(cfg.ProviderTimeout),
	}
}

// FetchMetadata 获取影片元数据文档
func (s *ArchiveService) FetchMetadata(movieID string) (*model.ArchiveDocument, error) {
	var doc model.ArchiveDocument
	reqURL := fmt.Sprintf("%s/metadata/%s", s.baseURL, url.PathEscape(movieID))
	if err := s.client.GetJSON(reqURL, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if doc.Metadata == nil {
		return nil, ErrNotFound
	}
	return &doc, nil
}

// archiveSearchResponse advancedsearch 接口的响应
type archiveSearchResponse struct {
	Response struct {
		Docs []archiveSearchDoc `json:"docs"`
	} `json:"response"`
}

type archiveSearchDoc struct {
	Identifier  string `json:"identifier"`
	Title       string `json:"title"`
	Year        int    `json:"year"`
	Description string `json:"description"`
}

// SearchMovies 按关键词搜索影片
func (s *ArchiveService) SearchMovies(keyword string) ([]model.SearchResult, error) {
	query := url.QueryEscape(fmt.Sprintf("(%s) AND mediatype:(movies)", keyword))
	reqURL := fmt.Sprintf(
		"%s/advancedsearch.php?q=%s&fl[]=identifier&fl[]=title&fl[]=year&fl[]=description&rows=50&page=1&output=json",
		s.baseURL, query)

	var resp archiveSearchResponse
	if err := s.client.GetJSON(reqURL, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	results := make([]model.SearchResult, 0, len(resp.Response.Docs))
	for _, doc := range resp.Response.Docs {
		if doc.Identifier == "" {
			continue
		}
		results = append(results, model.SearchResult{
			Identifier:  doc.Identifier,
			Title:       doc.Title,
			Year:        doc.Year,
			Description: utils.Truncate(utils.StripHTML(doc.Description), 200),
		})
	}
	return results, nil
}
