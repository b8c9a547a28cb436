package services

import (
	"codenest/internal/models"

	"gorm.io/gorm"
)

// PurgeContent removes every row that depends on one content item: likes,
// bookmarks, comments (and reports against those comments), reports and
// notifications that reference it. Run inside the same transaction that
// deletes the content row so a crash cannot leave orphaned edges.
func PurgeContent(tx *gorm.DB, kind models.ContentKind, itemID uint) error {
	if err := tx.Where("kind = ? AND item_id = ?", kind, itemID).
		Delete(&models.Like{}).Error; err != nil {
		return err
	}
	if err := tx.Where("kind = ? AND item_id = ?", kind, itemID).
		Delete(&models.Bookmark{}).Error; err != nil {
		return err
	}

	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).
		Where("kind = ? AND item_id = ?", kind, itemID).
		Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("comment_id IN ?", commentIDs).
			Delete(&models.Report{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("kind = ? AND item_id = ?", kind, itemID).
		Delete(&models.Comment{}).Error; err != nil {
		return err
	}

	if err := tx.Where("kind = ? AND item_id = ?", kind, itemID).
		Delete(&models.Report{}).Error; err != nil {
		return err
	}
	return tx.Where("kind = ? AND item_id = ?", kind, itemID).
		Delete(&models.Notification{}).Error
}
