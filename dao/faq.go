package dao

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitee.com/taoJie_1/faq-agent/global"
	"gitee.com/taoJie_1/faq-agent/model/db"
	"gitee.com/taoJie_1/faq-agent/model/dto"
	"gitee.com/taoJie_1/faq-agent/model/enum"
)

type FaqDb struct{}

// PublishedFaqCacheKey 已发布FAQ的redis hash键
const PublishedFaqCacheKey = "faq:published"

// ListActive 返回未被拒绝的全部条目, 用于重复检测
func (d *FaqDb) ListActive(ctx context.Context) ([]db.LearnedFaqs, error) {
	var rows []db.LearnedFaqs
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `status` != ? ORDER BY `id` ASC", db.LearnedFaqs{}.TableName())

	if err := DB.SelectContext(ctx, &rows, query, string(enum.FaqStatusRejected)); err != nil {
		return nil, fmt.Errorf("查询FAQ列表失败: %w", err)
	}
	return rows, nil
}

// Persist 持久化新条目并返回id, 发布状态的条目同步写缓存
func (d *FaqDb) Persist(ctx context.Context, faq *dto.GeneratedFaq, status enum.FaqStatus, factors *dto.ConfidenceFactors) (uint, error) {
	keywordsJson, err := json.Marshal(faq.Keywords)
	if err != nil {
		return 0, fmt.Errorf("序列化关键词失败: %w", err)
	}
	patternsJson, err := json.Marshal(faq.SourcePatterns)
	if err != nil {
		return 0, fmt.Errorf("序列化来源模式失败: %w", err)
	}

	data := map[string]interface{}{
		"question":          faq.Question,
		"answer":            faq.Answer,
		"category":          faq.Category,
		"keywords":          string(keywordsJson),
		"confidence":        faq.Confidence,
		"quality_score":     faq.QualityScore,
		"generation_method": string(faq.GenerationMethod),
		"status":            string(status),
		"source_patterns":   string(patternsJson),
		"confidence_factors": "",
		"adjustment_history": "[]",
	}
	if factors != nil {
		factorsJson, err := json.Marshal(factors)
		if err != nil {
			return 0, fmt.Errorf("序列化置信度因子失败: %w", err)
		}
		data["confidence_factors"] = string(factorsJson)
	}
	if len(faq.MergedFrom) > 0 {
		mergedJson, err := json.Marshal(faq.MergedFrom)
		if err != nil {
			return 0, fmt.Errorf("序列化合并来源失败: %w", err)
		}
		data["merged_from"] = string(mergedJson)
	}
	if status == enum.FaqStatusPublished {
		data["published_at"] = time.Now().Unix()
	}

	sqlStr, args := utils.getInsertSql(db.LearnedFaqs{}, data)
	result, err := DB.ExecContext(ctx, DB.Rebind(sqlStr), args...)
	if err != nil {
		return 0, fmt.Errorf("插入FAQ失败: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("获取FAQ id失败: %w", err)
	}

	if status == enum.FaqStatusPublished {
		d.cachePublished(ctx, faq.Question, faq.Answer)
	}
	return uint(id), nil
}

// Merge 将候选条目合并进既有条目
func (d *FaqDb) Merge(ctx context.Context, targetId uint, faq *dto.GeneratedFaq) error {
	target, err := d.GetFaq(ctx, targetId)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("合并目标FAQ %d 不存在", targetId)
	}

	keywordsJson, err := json.Marshal(faq.Keywords)
	if err != nil {
		return fmt.Errorf("序列化关键词失败: %w", err)
	}
	mergedJson, err := json.Marshal(faq.MergedFrom)
	if err != nil {
		return fmt.Errorf("序列化合并来源失败: %w", err)
	}

	data := map[string]interface{}{
		"answer":            faq.Answer,
		"keywords":          string(keywordsJson),
		"generation_method": string(enum.GenerationMerged),
		"merged_from":       string(mergedJson),
	}
	// 合并只提升不降低置信度
	if faq.Confidence > target.Confidence {
		data["confidence"] = faq.Confidence
	}

	sqlStr, args := utils.getUpdateSql(db.LearnedFaqs{}, targetId, data)
	if _, err = DB.ExecContext(ctx, DB.Rebind(sqlStr), args...); err != nil {
		return fmt.Errorf("合并FAQ失败: %w", err)
	}

	if target.Status == string(enum.FaqStatusPublished) {
		d.cachePublished(ctx, target.Question, faq.Answer)
	}
	return nil
}

// GetFaq 按id读取条目, 未找到返回(nil, nil)
func (d *FaqDb) GetFaq(ctx context.Context, id uint) (*db.LearnedFaqs, error) {
	var row db.LearnedFaqs
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `id` = ? LIMIT 1", db.LearnedFaqs{}.TableName())

	if err := DB.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询FAQ失败: %w", err)
	}
	return &row, nil
}

// ApplyFeedback 原子更新票数、置信度与调整历史
func (d *FaqDb) ApplyFeedback(ctx context.Context, id uint, feedback enum.FeedbackType, confidence int, historyJson string) error {
	voteColumn := "helpful_count"
	if feedback == enum.FeedbackNotHelpful {
		voteColumn = "not_helpful_count"
	}

	query := fmt.Sprintf(
		"UPDATE `%s` SET `%s` = `%s` + 1, `confidence` = ?, `adjustment_history` = ?, `updated_at` = ? WHERE `id` = ?",
		db.LearnedFaqs{}.TableName(), voteColumn, voteColumn)

	if _, err := DB.ExecContext(ctx, query, confidence, historyJson, time.Now().Unix(), id); err != nil {
		return fmt.Errorf("更新FAQ反馈失败: %w", err)
	}
	return nil
}

// IncrUsage 命中计数+1
func (d *FaqDb) IncrUsage(ctx context.Context, id uint) error {
	return d.incrCounter(ctx, id, "usage_count")
}

// IncrView 浏览计数+1
func (d *FaqDb) IncrView(ctx context.Context, id uint) error {
	return d.incrCounter(ctx, id, "view_count")
}

func (d *FaqDb) incrCounter(ctx context.Context, id uint, column string) error {
	query := fmt.Sprintf("UPDATE `%s` SET `%s` = `%s` + 1 WHERE `id` = ?", db.LearnedFaqs{}.TableName(), column, column)
	if _, err := DB.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("更新计数 %s 失败: %w", column, err)
	}
	return nil
}

// ListByStatus 按状态分页查询, 置信度降序
func (d *FaqDb) ListByStatus(ctx context.Context, status enum.FaqStatus, limit, offset int) ([]db.LearnedFaqs, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var rows []db.LearnedFaqs
	query := fmt.Sprintf(
		"SELECT * FROM `%s` WHERE `status` = ? ORDER BY `confidence` DESC, `id` ASC LIMIT %d OFFSET %d",
		db.LearnedFaqs{}.TableName(), limit, offset)

	if err := DB.SelectContext(ctx, &rows, query, string(status)); err != nil {
		return nil, fmt.Errorf("按状态查询FAQ失败: %w", err)
	}
	return rows, nil
}

// UpdateStatus 审核状态流转, 发布/下线同步维护缓存
func (d *FaqDb) UpdateStatus(ctx context.Context, id uint, status enum.FaqStatus) error {
	faq, err := d.GetFaq(ctx, id)
	if err != nil {
		return err
	}
	if faq == nil {
		return fmt.Errorf("FAQ %d 不存在", id)
	}

	data := map[string]interface{}{
		"status": string(status),
	}
	if status == enum.FaqStatusPublished {
		data["published_at"] = time.Now().Unix()
	}

	sqlStr, args := utils.getUpdateSql(db.LearnedFaqs{}, id, data)
	if _, err = DB.ExecContext(ctx, DB.Rebind(sqlStr), args...); err != nil {
		return fmt.Errorf("更新FAQ状态失败: %w", err)
	}

	switch status {
	case enum.FaqStatusPublished:
		d.cachePublished(ctx, faq.Question, faq.Answer)
	default:
		// 从发布态回退时摘除缓存
		if faq.Status == string(enum.FaqStatusPublished) {
			d.dropPublished(ctx, faq.Question)
		}
	}
	return nil
}

// ListPublished 返回全部已发布条目
func (d *FaqDb) ListPublished(ctx context.Context) ([]db.LearnedFaqs, error) {
	var rows []db.LearnedFaqs
	query := fmt.Sprintf("SELECT * FROM `%s` WHERE `status` = ? ORDER BY `id` ASC", db.LearnedFaqs{}.TableName())

	if err := DB.SelectContext(ctx, &rows, query, string(enum.FaqStatusPublished)); err != nil {
		return nil, fmt.Errorf("查询已发布FAQ失败: %w", err)
	}
	return rows, nil
}

// ListByCategory 按分类查询已发布条目, 置信度降序
func (d *FaqDb) ListByCategory(ctx context.Context, category string) ([]db.LearnedFaqs, error) {
	var rows []db.LearnedFaqs
	query := fmt.Sprintf(
		"SELECT * FROM `%s` WHERE `status` = ? AND `category` = ? ORDER BY `confidence` DESC, `id` ASC",
		db.LearnedFaqs{}.TableName())

	if err := DB.SelectContext(ctx, &rows, query, string(enum.FaqStatusPublished), strings.ToLower(strings.TrimSpace(category))); err != nil {
		return nil, fmt.Errorf("按分类查询FAQ失败: %w", err)
	}
	return rows, nil
}

// SearchByKeyword 按关键词模糊检索已发布条目, 匹配问题文本或关键词列表
func (d *FaqDb) SearchByKeyword(ctx context.Context, keyword string) ([]db.LearnedFaqs, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"

	var rows []db.LearnedFaqs
	query := fmt.Sprintf(
		"SELECT * FROM `%s` WHERE `status` = ? AND (LOWER(`question`) LIKE ? OR LOWER(`keywords`) LIKE ?) ORDER BY `confidence` DESC, `id` ASC",
		db.LearnedFaqs{}.TableName())

	if err := DB.SelectContext(ctx, &rows, query, string(enum.FaqStatusPublished), like, like); err != nil {
		return nil, fmt.Errorf("按关键词检索FAQ失败: %w", err)
	}
	return rows, nil
}

// GetPublishedIdByQuestion 按问题文本查找已发布条目id, 未找到返回0
func (d *FaqDb) GetPublishedIdByQuestion(ctx context.Context, question string) (uint, error) {
	var id uint
	query := fmt.Sprintf("SELECT `id` FROM `%s` WHERE `status` = ? AND LOWER(`question`) = ? LIMIT 1", db.LearnedFaqs{}.TableName())

	err := DB.GetContext(ctx, &id, query, string(enum.FaqStatusPublished), strings.ToLower(strings.TrimSpace(question)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("按问题查询FAQ失败: %w", err)
	}
	return id, nil
}

// Stats 学习看板统计, 分档阈值由调用方传入
func (d *FaqDb) Stats(ctx context.Context, medium, high, veryHigh int) (*dto.DashboardStats, error) {
	table := db.LearnedFaqs{}.TableName()
	stats := &dto.DashboardStats{ByConfidenceLevel: make(map[string]int64)}

	var summary struct {
		Total         int64           `db:"total"`
		Published     int64           `db:"published"`
		PendingReview int64           `db:"pending_review"`
		AvgConfidence sql.NullFloat64 `db:"avg_confidence"`
	}
	query := fmt.Sprintf(`SELECT COUNT(*) AS total,
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS published,
		SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending_review,
		AVG(confidence) AS avg_confidence
		FROM `+"`%s`", table)
	if err := DB.GetContext(ctx, &summary, query, string(enum.FaqStatusPublished), string(enum.FaqStatusPendingReview)); err != nil {
		return nil, fmt.Errorf("统计FAQ失败: %w", err)
	}
	stats.TotalFaqs = summary.Total
	stats.PublishedFaqs = summary.Published
	stats.PendingReview = summary.PendingReview
	if summary.AvgConfidence.Valid {
		stats.AvgConfidence = summary.AvgConfidence.Float64
	}

	type levelCount struct {
		Level string `db:"level"`
		Count int64  `db:"count"`
	}
	var levels []levelCount
	levelQuery := fmt.Sprintf(`SELECT CASE
		WHEN confidence < %d THEN 'low'
		WHEN confidence < %d THEN 'medium'
		WHEN confidence < %d THEN 'high'
		ELSE 'very_high' END AS level, COUNT(*) AS count
		FROM `+"`%s`"+` GROUP BY level`, medium, high, veryHigh, table)
	if err := DB.SelectContext(ctx, &levels, levelQuery); err != nil {
		return nil, fmt.Errorf("统计置信度分档失败: %w", err)
	}
	for _, lc := range levels {
		stats.ByConfidenceLevel[lc.Level] = lc.Count
	}
	return stats, nil
}

// cachePublished 写入内存缓存与redis hash
func (d *FaqDb) cachePublished(ctx context.Context, question, answer string) {
	key := strings.ToLower(strings.TrimSpace(question))
	global.PublishedFaqs.Lock()
	global.PublishedFaqs.Data[key] = answer
	global.PublishedFaqs.Unlock()

	if global.RedisClient != nil {
		if err := global.RedisClient.HSet(ctx, PublishedFaqCacheKey, key, answer).Err(); err != nil {
			global.Log.Warnf("写入FAQ发布缓存失败: %v", err)
		}
	}
}

// dropPublished 从内存缓存与redis hash摘除
func (d *FaqDb) dropPublished(ctx context.Context, question string) {
	key := strings.ToLower(strings.TrimSpace(question))
	global.PublishedFaqs.Lock()
	delete(global.PublishedFaqs.Data, key)
	global.PublishedFaqs.Unlock()

	if global.RedisClient != nil {
		if err := global.RedisClient.HDel(ctx, PublishedFaqCacheKey, key).Err(); err != nil {
			global.Log.Warnf("摘除FAQ发布缓存失败: %v", err)
		}
	}
}
