package handlers

import (
	"errors"
	"time"

	"codenest/internal/models"
	"codenest/internal/services"

	"gorm.io/gorm"
)

var (
	errContentNotFound = errors.New("content not found")
	errContentGone     = errors.New("content expired")
)

// contentInfo is the kind-independent view of one content item that the
// interaction controllers need.
type contentInfo struct {
	Ref      models.ContentRef
	RowID    uint
	AuthorID uint
	Title    string
	Private  bool
}

// resolveContent looks the referenced item up in its own table. Expired bugs
// resolve to errContentGone even before the sweep removes them.
func resolveContent(db *gorm.DB, ref models.ContentRef) (*contentInfo, error) {
	switch ref.Kind {
	case models.KindSnippet:
		var s models.Snippet
		if err := db.Where("sid = ?", ref.ID).First(&s).Error; err != nil {
			return nil, wrapLookupErr(err)
		}
		return &contentInfo{Ref: ref, RowID: s.ID, AuthorID: s.UserID, Title: s.Title, Private: !s.Public()}, nil
	case models.KindDoc:
		var d models.Doc
		if err := db.Where("did = ?", ref.ID).First(&d).Error; err != nil {
			return nil, wrapLookupErr(err)
		}
		return &contentInfo{Ref: ref, RowID: d.ID, AuthorID: d.UserID, Title: d.Title, Private: !d.Public()}, nil
	case models.KindBug:
		var b models.Bug
		if err := db.Where("bid = ?", ref.ID).First(&b).Error; err != nil {
			return nil, wrapLookupErr(err)
		}
		if b.Expired(time.Now()) {
			return nil, errContentGone
		}
		return &contentInfo{Ref: ref, RowID: b.ID, AuthorID: b.UserID, Title: b.Title}, nil
	}
	return nil, errContentNotFound
}

func wrapLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errContentNotFound
	}
	return err
}

// visibleTo reports whether the viewer may read the item at all.
func (ci *contentInfo) visibleTo(viewerID uint) bool {
	return !ci.Private || ci.AuthorID == viewerID
}

// engagement carries the per-item aggregates plus the caller's own edges.
type engagement struct {
	LikeCount     int64 `json:"like_count"`
	BookmarkCount int64 `json:"bookmark_count"`
	CommentCount  int64 `json:"comment_count"`
	IsLiked       bool  `json:"is_liked"`
	IsBookmarked  bool  `json:"is_bookmarked"`
}

// loadEngagement batches the aggregate counts and the viewer's membership
// checks for a page of items of one kind.
func loadEngagement(db *gorm.DB, kind models.ContentKind, itemIDs []uint, viewerID uint) map[uint]*engagement {
	result := make(map[uint]*engagement, len(itemIDs))
	if len(itemIDs) == 0 {
		return result
	}
	for _, id := range itemIDs {
		result[id] = &engagement{}
	}

	type countRow struct {
		ItemID uint
		Count  int64
	}

	var rows []countRow
	db.Model(&models.Like{}).
		Select("item_id, COUNT(*) as count").
		Where("kind = ? AND item_id IN ?", kind, itemIDs).
		Group("item_id").
		Scan(&rows)
	for _, r := range rows {
		result[r.ItemID].LikeCount = r.Count
	}

	rows = nil
	db.Model(&models.Bookmark{}).
		Select("item_id, COUNT(*) as count").
		Where("kind = ? AND item_id IN ?", kind, itemIDs).
		Group("item_id").
		Scan(&rows)
	for _, r := range rows {
		result[r.ItemID].BookmarkCount = r.Count
	}

	rows = nil
	db.Model(&models.Comment{}).
		Select("item_id, COUNT(*) as count").
		Where("kind = ? AND item_id IN ?", kind, itemIDs).
		Group("item_id").
		Scan(&rows)
	for _, r := range rows {
		result[r.ItemID].CommentCount = r.Count
	}

	if viewerID > 0 {
		var likedIDs []uint
		db.Model(&models.Like{}).
			Where("user_id = ? AND kind = ? AND item_id IN ?", viewerID, kind, itemIDs).
			Pluck("item_id", &likedIDs)
		for _, id := range likedIDs {
			result[id].IsLiked = true
		}

		var markedIDs []uint
		db.Model(&models.Bookmark{}).
			Where("user_id = ? AND kind = ? AND item_id IN ?", viewerID, kind, itemIDs).
			Pluck("item_id", &markedIDs)
		for _, id := range markedIDs {
			result[id].IsBookmarked = true
		}
	}

	return result
}

// deleteContentTx removes the content row and every dependent edge in one
// transaction.
func deleteContentTx(db *gorm.DB, ref models.ContentRef, rowID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := services.PurgeContent(tx, ref.Kind, rowID); err != nil {
			return err
		}
		switch ref.Kind {
		case models.KindSnippet:
			return tx.Delete(&models.Snippet{}, rowID).Error
		case models.KindDoc:
			return tx.Delete(&models.Doc{}, rowID).Error
		case models.KindBug:
			return tx.Delete(&models.Bug{}, rowID).Error
		}
		return errContentNotFound
	})
}
