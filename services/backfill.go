// services/backfill.go - Retroactive Detection
package services

import (
	"errors"
	"log"
	"time"

	"vidverse/models"

	"gorm.io/gorm"
)

// BackfillReport summarizes one retroactive detection sweep.
type BackfillReport struct {
	Users    int           `json:"users"`
	Granted  int           `json:"granted"`
	Failures int           `json:"failures"`
	Duration time.Duration `json:"duration"`
}

// BackfillService walks stored activity and grants every counter
// achievement a user already satisfies. Needed after new definitions
// ship, or for users whose triggers were missed. Flag conditions are
// skipped: their moment has passed and cannot be recomputed.
type BackfillService struct {
	db      *gorm.DB
	catalog *CatalogService
	grants  *GrantService
	metrics MetricProvider
}

func NewBackfillService(db *gorm.DB, catalog *CatalogService, grants *GrantService, metrics MetricProvider) *BackfillService {
	return &BackfillService{db: db, catalog: catalog, grants: grants, metrics: metrics}
}

// DetectUser evaluates the whole active catalog against one user's
// stored metrics. Returns how many achievements were newly granted.
// Definitions are isolated from each other: a failure on one is logged
// and the sweep continues.
func (s *BackfillService) DetectUser(userID uint) (int, error) {
	achievements, err := s.catalog.ListActive()
	if err != nil {
		return 0, err
	}

	granted := 0
	for i := range achievements {
		a := &achievements[i]
		if a.ConditionType.IsFlag() {
			continue
		}
		value, err := s.metrics.Metric(userID, a.ConditionType)
		if errors.Is(err, ErrMetricUnavailable) {
			continue
		}
		if err != nil {
			log.Printf("⚠️ Backfill metric %s failed for user %d: %v", a.ConditionType, userID, err)
			continue
		}
		if !Matches(*a, a.ConditionType, value) {
			continue
		}
		created, err := s.grants.Grant(userID, a)
		if err != nil {
			log.Printf("⚠️ Backfill grant failed for achievement %d (user %d): %v", a.ID, userID, err)
			continue
		}
		if created {
			granted++
		}
	}
	return granted, nil
}

// DetectAll sweeps every user. Users are isolated from each other, so a
// partial run still grants for everyone it reached.
func (s *BackfillService) DetectAll() (*BackfillReport, error) {
	start := time.Now()

	var userIDs []uint
	if err := s.db.Model(&models.User{}).Order("id").Pluck("id", &userIDs).Error; err != nil {
		return nil, err
	}

	report := &BackfillReport{Users: len(userIDs)}
	for _, id := range userIDs {
		granted, err := s.DetectUser(id)
		if err != nil {
			report.Failures++
			log.Printf("⚠️ Backfill failed for user %d: %v", id, err)
			continue
		}
		report.Granted += granted
	}
	report.Duration = time.Since(start)

	log.Printf("✅ Backfill done: %d users, %d granted, %d failures in %s",
		report.Users, report.Granted, report.Failures, report.Duration.Round(time.Millisecond))
	return report, nil
}

// RunAsync kicks off a full sweep in the background, for admin endpoints
// that should not hold the request open.
func (s *BackfillService) RunAsync() {
	go func() {
		if _, err := s.DetectAll(); err != nil {
			log.Printf("⚠️ Async backfill failed: %v", err)
		}
	}()
}
