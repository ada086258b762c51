package model

// ArchiveDocument archive.org metadata 接口返回的文档
// 未知影片会返回空文档 {}，此时 Metadata 为 nil
type ArchiveDocument struct {
	Metadata *ArchiveMetadata `json:"metadata"`
	Reviews  []ArchiveReview  `json:"reviews"`
	Dir      string           `json:"dir"`
	Files    []ArchiveFile    `json:"files"`
}

// ArchiveMetadata 影片元数据字段
type ArchiveMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	Date        string `json:"date"`
	Runtime     string `json:"ia_orig__runtime"`
}

// ArchiveReview 外部影评，字段可能缺失或格式异常，只读
type ArchiveReview struct {
	CreateDate string `json:"createdate"`
	Reviewer   string `json:"reviewer"`
	ReviewDate string `json:"reviewdate"`
	Stars      string `json:"stars"` // 字符串编码的 0-5
	Body       string `json:"reviewbody"`
}

// ArchiveFile 影片目录下的文件
type ArchiveFile struct {
	Name string `json:"name"`
}
