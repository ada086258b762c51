package service

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/user/hypertube/internal/config"
	"github.com/user/hypertube/internal/model"
	"github.com/user/hypertube/internal/utils"
)

// metadataCacheTTL 下载路径上的元数据文档缓存时间
const metadataCacheTTL = 5 * time.Minute

// DownloadService 影片文件物化服务
// 把 archive.org 上的播放文件下载到本地目录，之后由流媒体接口按 Range 下发
type DownloadService struct {
	archive *ArchiveService
	baseURL string
	dataDir string
	client  *http.Client
	group   singleflight.Group
}

// NewDownloadService 创建下载服务
func NewDownloadService(archive *ArchiveService, cfg *config.Config) *DownloadService {
	return &DownloadService{
		archive: archive,
		baseURL: cfg.ArchiveBaseURL,
		dataDir: cfg.MovieDataDir,
		// 下载大文件不设总超时，靠连接级错误终止
		client: &http.Client{},
	}
}

// Download 把影片文件物化到本地，重复请求同一影片只触发一次下载
func (s *DownloadService) Download(movieID string) (string, error) {
	val, err, _ := s.group.Do(movieID, func() (interface{}, error) {
		return s.downloadInternal(movieID)
	})
	if err != nil {
		return "", err
	}
	return val.(string), nil
}

// Path 返回已物化文件的本地路径，文件不存在时返回 ErrNotFound
func (s *DownloadService) Path(movieID string) (string, error) {
	dest := s.localPath(movieID)
	if _, err := os.Stat(dest); err != nil {
		return "", ErrNotFound
	}
	return dest, nil
}

func (s *DownloadService) localPath(movieID string) string {
	// filepath.Base 防止 id 里带路径分隔符逃出数据目录
	return filepath.Join(s.dataDir, filepath.Base(movieID)+"."+movieFileExtension)
}

func (s *DownloadService) downloadInternal(movieID string) (string, error) {
	dest := s.localPath(movieID)
	if _, err := os.Stat(dest); err == nil {
		// 已物化过，直接复用
		return dest, nil
	}

	doc, err := s.fetchMetadataCached(movieID)
	if err != nil {
		return "", err
	}

	name := pickPlayableFile(doc.Files)
	if name == "" {
		return "", fmt.Errorf("%w: 没有可播放文件", ErrNotFound)
	}

	fileURL := fmt.Sprintf("%s%s/%s", s.baseURL, doc.Dir, url.PathEscape(name))
	log.Printf("[Download] 开始下载 %s -> %s", fileURL, dest)

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return "", fmt.Errorf("创建数据目录失败: %w", err)
	}

	resp, err := s.client.Get(fileURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: 下载状态码 %d", ErrProviderUnavailable, resp.StatusCode)
	}

	// 先写临时文件再改名，避免半截文件被流媒体接口读到
	tmp, err := os.CreateTemp(s.dataDir, filepath.Base(movieID)+".part-*")
	if err != nil {
		return "", fmt.Errorf("创建临时文件失败: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("写入影片文件失败: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("关闭影片文件失败: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", fmt.Errorf("落盘影片文件失败: %w", err)
	}

	log.Printf("[Download] 下载完成 (影片: %s)", movieID)
	return dest, nil
}

// fetchMetadataCached 带短缓存的元数据获取
// 只用于下载路径，影评归并和提交校验始终走实时查询
func (s *DownloadService) fetchMetadataCached(movieID string) (*model.ArchiveDocument, error) {
	key := "archive:metadata:" + movieID
	if cached, ok := utils.CacheGet(key); ok {
		return cached.(*model.ArchiveDocument), nil
	}

	doc, err := s.archive.FetchMetadata(movieID)
	if err != nil {
		return nil, err
	}
	utils.CacheSet(key, doc, metadataCacheTTL)
	return doc, nil
}

// pickPlayableFile 挑出第一个 mp4 或 webm 文件
func pickPlayableFile(files []model.ArchiveFile) string {
	for _, f := range files {
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".mp4", ".webm":
			return f.Name
		}
	}
	return ""
}
