package scheduler

import (
	"log"
	"time"

	"gorm.io/gorm"

	model "kampusku_backend/internals/features/users/auth/model"
)

// StartBlacklistCleanup prunes revoked tokens whose own expiry has
// passed; they can no longer authenticate anything, so the rows are
// pure dead weight.
func StartBlacklistCleanup(db *gorm.DB) {
	go func() {
		for {
			res := db.
				Where("blacklist_expires_at < ?", time.Now()).
				Delete(&model.TokenBlacklist{})
			if res.Error != nil {
				log.Printf("[ERROR] token_blacklist cleanup failed: %v", res.Error)
			} else if res.RowsAffected > 0 {
				log.Printf("[INFO] token_blacklist cleanup removed %d rows", res.RowsAffected)
			}

			time.Sleep(24 * time.Hour)
		}
	}()
}
