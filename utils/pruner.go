package utils

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/forumapp/models"
)

// PrunePageViews deletes aggregated page views older than retention and returns the row count.
func PrunePageViews(db *gorm.DB, retention time.Duration, now time.Time) (int64, error) {
	cutoff := now.Add(-retention)
	res := db.Where("date < ?", cutoff).Delete(&models.PageView{})
	return res.RowsAffected, res.Error
}

// StartPageViewPruner periodically prunes old page views until ctx is done.
// The returned channel is closed once the goroutine exits.
func StartPageViewPruner(ctx context.Context, db *gorm.DB, interval, retention time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = time.Hour
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				n, err := PrunePageViews(db, retention, now)
				if err != nil {
					Sugar.Warnf("page view pruner failed: %v", err)
					continue
				}
				if n > 0 {
					Sugar.Infof("page view pruner removed %d rows", n)
				}
			}
		}
	}()
	return done
}
