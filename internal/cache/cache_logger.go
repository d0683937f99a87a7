package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateExamCache drops the cached payload and list entries for one exam
func InvalidateExamCache(ctx context.Context, cm *CacheManager, examID string) {
	SafeDelete(ctx, cm.Exam,
		fmt.Sprintf("id:%s", examID),
		fmt.Sprintf("full:%s", examID))
	SafeInvalidatePattern(ctx, cm.Exam, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("exam:%s:*", examID))
}

// InvalidateResultCache drops cached result lists touched by a new submission
func InvalidateResultCache(ctx context.Context, cm *CacheManager, examID, studentID string) {
	SafeInvalidatePattern(ctx, cm.Result, fmt.Sprintf("exam:%s:*", examID))
	if studentID != "" {
		SafeInvalidatePattern(ctx, cm.Result, fmt.Sprintf("student:%s:*", studentID))
	}
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("exam:%s:*", examID))
}
