package services

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"vidverse/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// newTestDB opens a fresh in-memory SQLite database per test. The shared
// cache keeps all pooled connections on the same database, and the busy
// timeout lets concurrent writers wait instead of failing.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&testDBCounter, 1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared&_busy_timeout=5000", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection serializes writers, which sqlite wants anyway.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievement{},
		&models.Video{},
		&models.VideoLike{},
		&models.Comment{},
		&models.ViewHistory{},
		&models.UserFollow{},
		&models.DailyCheckin{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

// testEngine bundles the full achievement stack on one test database
// with a synchronous dispatcher, so side effects are visible immediately.
type testEngine struct {
	db         *gorm.DB
	dispatcher *Dispatcher
	catalog    *CatalogService
	metrics    *DBMetricProvider
	grants     *GrantService
	triggers   *TriggerService
	progress   *ProgressService
	backfill   *BackfillService
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()

	db := newTestDB(t)
	dispatcher := NewSyncDispatcher()
	catalog := NewCatalogService(db)
	metrics := NewDBMetricProvider(db)
	grants := NewGrantService(db, catalog, dispatcher)
	return &testEngine{
		db:         db,
		dispatcher: dispatcher,
		catalog:    catalog,
		metrics:    metrics,
		grants:     grants,
		triggers:   NewTriggerService(db, catalog, grants, metrics),
		progress:   NewProgressService(db, catalog, metrics),
		backfill:   NewBackfillService(db, catalog, grants, metrics),
	}
}

// faultyMetrics wraps a provider and breaks exactly one condition type,
// for exercising candidate isolation when a metric read fails.
type faultyMetrics struct {
	inner   MetricProvider
	failFor models.ConditionType
}

func (f *faultyMetrics) Metric(userID uint, cond models.ConditionType) (int64, error) {
	if cond == f.failFor {
		return 0, errors.New("metric backend down")
	}
	return f.inner.Metric(userID, cond)
}

// countingMetrics records how many reads each condition type gets.
type countingMetrics struct {
	inner MetricProvider
	calls map[models.ConditionType]int
}

func (c *countingMetrics) Metric(userID uint, cond models.ConditionType) (int64, error) {
	c.calls[cond]++
	return c.inner.Metric(userID, cond)
}

func (e *testEngine) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Level: 1}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (e *testEngine) createAchievement(t *testing.T, name string, cond models.ConditionType, value int64, points int) *models.Achievement {
	t.Helper()
	a := &models.Achievement{
		Name:           name,
		Description:    name,
		Category:       models.CategoryBasic,
		Rarity:         models.RarityCommon,
		Points:         points,
		ConditionType:  cond,
		ConditionValue: value,
		IsActive:       true,
	}
	if err := e.catalog.Create(a); err != nil {
		t.Fatalf("failed to create achievement %q: %v", name, err)
	}
	return a
}
