package migrations

import (
	"gorm.io/gorm"
)

// Migration002AddNotificationIndexes covers the notification center queries:
// the badge count (unread rows per profile) and the paginated feed.
func Migration002AddNotificationIndexes() Migration {
	return Migration{
		ID:   "002_add_notification_indexes",
		Name: "Add indexes for unread badge counts and the notification feed",
		Up: func(db *gorm.DB) error {
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_notifications_profile_unread
				ON notifications (profile_id, is_read)
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_notifications_profile_created
				ON notifications (profile_id, created_at DESC, id DESC)
			`
			return db.Exec(idx2).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_notifications_profile_created`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_notifications_profile_unread`).Error
		},
	}
}
