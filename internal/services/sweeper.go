package services

import (
	"log"
	"time"

	"codenest/internal/models"

	"gorm.io/gorm"
)

// Sweeper deletes Bug rows past their expiry, with the same cascade the
// owner delete uses. It must run on exactly one instance of a deployment;
// the caller gates Start behind the primary-instance flag.
type Sweeper struct {
	db       *gorm.DB
	interval time.Duration
}

func NewSweeper(db *gorm.DB, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Sweeper{db: db, interval: interval}
}

// Start runs the sweep loop in the background.
func (s *Sweeper) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for range ticker.C {
			purged, err := s.Sweep()
			if err != nil {
				log.Printf("[sweep] failed: %v", err)
				continue
			}
			if purged > 0 {
				log.Printf("[sweep] purged %d expired bugs", purged)
			}
		}
	}()
}

// Sweep deletes all currently expired bugs and returns how many went.
func (s *Sweeper) Sweep() (int, error) {
	var bugs []models.Bug
	if err := s.db.Select("id").Where("expires_at < ?", time.Now()).Find(&bugs).Error; err != nil {
		return 0, err
	}

	purged := 0
	for _, bug := range bugs {
		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := PurgeContent(tx, models.KindBug, bug.ID); err != nil {
				return err
			}
			return tx.Delete(&models.Bug{}, bug.ID).Error
		})
		if err != nil {
			log.Printf("[sweep] bug %d: %v", bug.ID, err)
			continue
		}
		purged++
	}
	return purged, nil
}
