package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/eduprep/exam-service/internal/cache"
	"github.com/eduprep/exam-service/internal/models"
	"github.com/eduprep/exam-service/internal/repositories"
)

type ResultPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewResultPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ResultRepository {
	return &ResultPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (r *ResultPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ResultPostgreSQL) Create(ctx context.Context, tx *gorm.DB, result *models.ExamResult) error {
	if err := r.getDB(tx).WithContext(ctx).Create(result).Error; err != nil {
		return fmt.Errorf("failed to create exam result: %w", err)
	}
	cache.InvalidateResultCache(ctx, r.cacheManager, result.ExamID, result.StudentID)
	return nil
}

func (r *ResultPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamResult, error) {
	var result models.ExamResult
	if err := r.getDB(tx).WithContext(ctx).First(&result, id).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *ResultPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.ExamResult{})

	if filters.ExamID != nil {
		query = query.Where("exam_id = ?", *filters.ExamID)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count exam results: %w", err)
	}

	query = applySortAndPage(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset, map[string]bool{
		"created_at": true,
		"percentage": true,
		"time_taken": true,
	})

	var results []*models.ExamResult
	if err := query.Find(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list exam results: %w", err)
	}

	return results, total, nil
}

func (r *ResultPostgreSQL) GetByExam(ctx context.Context, tx *gorm.DB, examID string, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	filters.ExamID = &examID
	return r.List(ctx, tx, filters)
}

func (r *ResultPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.ResultFilters) ([]*models.ExamResult, int64, error) {
	filters.StudentID = &studentID
	return r.List(ctx, tx, filters)
}

// GetExamStats aggregates every stored result for one exam; cached because
// it runs on dashboards far more often than results arrive.
func (r *ResultPostgreSQL) GetExamStats(ctx context.Context, tx *gorm.DB, examID string) (*repositories.ExamStats, error) {
	cacheKey := fmt.Sprintf("exam:%s:stats", examID)
	var stats repositories.ExamStats

	err := r.cacheManager.Stats.CacheOrExecute(ctx, cacheKey, &stats, cache.StatsCacheConfig.TTL, func() (interface{}, error) {
		var row struct {
			TotalAttempts     int
			AveragePercentage float64
			HighestPercentage float64
			LowestPercentage  float64
			AverageTimeTaken  float64
		}
		err := r.getDB(tx).WithContext(ctx).
			Model(&models.ExamResult{}).
			Select(`COUNT(*) as total_attempts,
				COALESCE(AVG(percentage), 0) as average_percentage,
				COALESCE(MAX(percentage), 0) as highest_percentage,
				COALESCE(MIN(percentage), 0) as lowest_percentage,
				COALESCE(AVG(time_taken), 0) as average_time_taken`).
			Where("exam_id = ?", examID).
			Scan(&row).Error
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate exam stats: %w", err)
		}
		return &repositories.ExamStats{
			TotalAttempts:     row.TotalAttempts,
			AveragePercentage: row.AveragePercentage,
			HighestPercentage: row.HighestPercentage,
			LowestPercentage:  row.LowestPercentage,
			AverageTimeTaken:  int(row.AverageTimeTaken),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	return &stats, nil
}
