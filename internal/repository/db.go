package repository

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/user/hypertube/internal/model"
)

// InitDB 初始化数据库连接并自动建表
func InitDB(databaseURL string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("初始化 gorm 失败: %w", err)
	}

	// 影评表只增不改，迁移只负责建表和索引
	if err := db.AutoMigrate(&model.Review{}); err != nil {
		return nil, fmt.Errorf("自动迁移失败: %w", err)
	}

	return db, nil
}

// Repositories 仓库集合
type Repositories struct {
	DB     *sql.DB
	Review *ReviewRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		DB:     db,
		Review: NewReviewRepository(db),
	}
}
