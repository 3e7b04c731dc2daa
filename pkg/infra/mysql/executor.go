package mysql

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// QueryExecutor 指标仓库查询执行器
// 执行 QueryLibrary 生成的 SQL，返回通用行结构交给 engine 转换
type QueryExecutor struct {
	db *gorm.DB
}

// NewQueryExecutor 创建 QueryExecutor 实例
func NewQueryExecutor(db *gorm.DB) *QueryExecutor {
	return &QueryExecutor{
		db: db,
	}
}

// Query 执行查询并返回通用行
func (e *QueryExecutor) Query(ctx context.Context, sql string) ([]map[string]interface{}, error) {
	var rows []map[string]interface{}
	result := e.db.WithContext(ctx).Raw(sql).Find(&rows)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to execute query: %w", result.Error)
	}
	return rows, nil
}
