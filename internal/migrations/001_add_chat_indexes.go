package migrations

import (
	"gorm.io/gorm"
)

// Migration001AddChatIndexes adds composite indexes for the chat hot paths:
// keyset pagination over a conversation's history and the unread count scan.
func Migration001AddChatIndexes() Migration {
	return Migration{
		ID:   "001_add_chat_indexes",
		Name: "Add composite indexes for message pagination and unread counts",
		Up: func(db *gorm.DB) error {
			// Keyset pages order by (created_at, id) within one conversation
			idx1 := `
				CREATE INDEX IF NOT EXISTS idx_messages_conv_created_id
				ON messages (conversation_id, created_at, id)
			`
			if err := db.Exec(idx1).Error; err != nil {
				return err
			}

			// Unread count: messages after the reader's cursor from the other party
			idx2 := `
				CREATE INDEX IF NOT EXISTS idx_messages_conv_sender_created
				ON messages (conversation_id, sender_id, created_at)
			`
			return db.Exec(idx2).Error
		},
		Down: func(db *gorm.DB) error {
			if err := db.Exec(`DROP INDEX IF EXISTS idx_messages_conv_sender_created`).Error; err != nil {
				return err
			}
			return db.Exec(`DROP INDEX IF EXISTS idx_messages_conv_created_id`).Error
		},
	}
}
