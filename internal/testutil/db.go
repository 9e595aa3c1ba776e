package testutil

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/straye-as/attendance-api/internal/config"
	"github.com/straye-as/attendance-api/internal/database"
	"github.com/straye-as/attendance-api/internal/domain"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupTestDB creates a fresh, migrated in-memory database for one test.
// Every call gets its own database name, so tests never share rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Name:         "test_" + uuid.NewString(),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := database.NewDatabase(cfg, zap.NewNop())
	require.NoError(t, err, "Failed to open in-memory test database")

	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}

// CreateTestStudent inserts a student directly, bypassing id allocation
func CreateTestStudent(t *testing.T, db *gorm.DB, seq int, name string, department domain.Department) *domain.Student {
	t.Helper()

	student := &domain.Student{
		ID:         fmt.Sprintf("ST%03d", seq),
		Seq:        seq,
		Name:       name,
		Department: department,
		DateAdded:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

// FakeClock is a settable clock for services that take a func() time.Time
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
