package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

type PatternDb struct{}

// FindByHash 按hash查找模式, 未找到返回(nil, nil)
func (d *PatternDb) FindByHash(ctx context.Context, hash string) (*dto.LearningPattern, error) {
	var row db.LearningPatterns
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `pattern_hash` = ? LIMIT 1", db.LearningPatterns{}.TableName())

	if err := DB.GetContext(ctx, &row, query, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询模式失败: %w", err)
	}
	return patternRowToDto(&row)
}

// Upsert 按hash插入或更新模式
func (d *PatternDb) Upsert(ctx context.Context, pattern *dto.LearningPattern) error {
	keywordsJson, err := json.Marshal(pattern.Keywords)
	if err != nil {
		return fmt.Errorf("序列化关键词失败: %w", err)
	}
	sourcesJson, err := json.Marshal(pattern.Sources)
	if err != nil {
		return fmt.Errorf("序列化来源失败: %w", err)
	}

	var existingId uint
	query := fmt.Sprintf("SELECT `id` FROM `%s` WHERE `pattern_hash` = ? LIMIT 1", db.LearningPatterns{}.TableName())
	err = DB.GetContext(ctx, &existingId, query, pattern.PatternHash)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("查询模式失败: %w", err)
	}

	data := map[string]interface{}{
		"pattern":      pattern.Pattern,
		"pattern_hash": pattern.PatternHash,
		"type":         string(pattern.Type),
		"frequency":    pattern.Frequency,
		"confidence":   pattern.Confidence,
		"keywords":     string(keywordsJson),
		"category":     pattern.Category,
		"sources":      string(sourcesJson),
	}

	if existingId > 0 {
		sqlStr, args := utils.getUpdateSql(db.LearningPatterns{}, existingId, data)
		if _, err = DB.ExecContext(ctx, DB.Rebind(sqlStr), args...); err != nil {
			return fmt.Errorf("更新模式失败: %w", err)
		}
		return nil
	}

	sqlStr, args := utils.getInsertSql(db.LearningPatterns{}, data)
	if _, err = DB.ExecContext(ctx, DB.Rebind(sqlStr), args...); err != nil {
		return fmt.Errorf("插入模式失败: %w", err)
	}
	return nil
}

// All 返回全部持久化模式, 按频次降序
func (d *PatternDb) All(ctx context.Context) ([]*dto.LearningPattern, error) {
	var rows []db.LearningPatterns
	query := fmt.Sprintf("SELECT * FROM `%s` ORDER BY `frequency` DESC, `id` ASC", db.LearningPatterns{}.TableName())

	if err := DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("查询模式列表失败: %w", err)
	}

	result := make([]*dto.LearningPattern, 0, len(rows))
	for i := range rows {
		p, err := patternRowToDto(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

// Count 模式总数
func (d *PatternDb) Count(ctx context.Context) (int64, error) {
	var count int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM `%s`", db.LearningPatterns{}.TableName())
	if err := DB.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("统计模式数量失败: %w", err)
	}
	return count, nil
}

// PruneToLimit 只保留频次最高的maxPatterns条, 其余删除
func (d *PatternDb) PruneToLimit(ctx context.Context, maxPatterns int) (int64, error) {
	if maxPatterns <= 0 {
		return 0, nil
	}
	table := db.LearningPatterns{}.TableName()
	query := fmt.Sprintf(
		"DELETE FROM `%s` WHERE `id` NOT IN (SELECT `id` FROM (SELECT `id` FROM `%s` ORDER BY `frequency` DESC, `id` ASC LIMIT %d) AS keep)",
		table, table, maxPatterns)

	result, err := DB.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("清理模式失败: %w", err)
	}
	return result.RowsAffected()
}

func patternRowToDto(row *db.LearningPatterns) (*dto.LearningPattern, error) {
	p := &dto.LearningPattern{
		Pattern:     row.Pattern,
		PatternHash: row.PatternHash,
		Type:        enum.PatternType(row.Type),
		Frequency:   row.Frequency,
		Confidence:  row.Confidence,
		Category:    row.Category,
	}
	if row.Keywords != "" {
		if err := json.Unmarshal([]byte(row.Keywords), &p.Keywords); err != nil {
			return nil, fmt.Errorf("解析模式关键词失败: %w", err)
		}
	}
	if row.Sources != "" {
		if err := json.Unmarshal([]byte(row.Sources), &p.Sources); err != nil {
			return nil, fmt.Errorf("解析模式来源失败: %w", err)
		}
	}
	return p, nil
}
