package services

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/werta666/jifen-go/models"
	"github.com/werta666/jifen-go/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	utils.Logger = zap.NewNop()
	utils.Sugar = utils.Logger.Sugar()
	os.Exit(m.Run())
}

var testDBSeq atomic.Int64

// memoryAudit records audit events for assertions.
type memoryAudit struct {
	mu      sync.Mutex
	entries []string
}

func (a *memoryAudit) Log(actor Identity, action string, fields map[string]any) {
	a.mu.Lock()
	a.entries = append(a.entries, action)
	a.mu.Unlock()
}

func (a *memoryAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.entries...)
}

// newTestService builds a Service over a fresh in-memory database with a
// deterministic clock and fixed settings.
func newTestService(t *testing.T) (*Service, *memoryAudit) {
	t.Helper()

	dsn := fmt.Sprintf("file:svc_test_%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.SignIn{}, &models.ShopProduct{}, &models.ShopOrder{}))

	audit := &memoryAudit{}
	svc := New(db, audit)
	svc.Settings = func() Settings {
		return Settings{
			Enabled:             true,
			BasePoints:          10,
			RewardsJSON:         `{"3": 20, "7": 50}`,
			MakeupCardPrice:     20,
			MakeupRatioPercent:  100,
			LeaderboardInterval: 3 * time.Minute,
		}
	}
	setDay(t, svc, "2025-03-10")
	return svc, audit
}

// setDay pins the service clock to noon UTC on the given date.
func setDay(t *testing.T, svc *Service, date string) {
	t.Helper()
	d, err := time.Parse(dateLayout, date)
	require.NoError(t, err)
	fixed := d.Add(12 * time.Hour)
	svc.Now = func() time.Time { return fixed }
}

func testUser(id uint) Identity {
	return Identity{ID: id, Username: fmt.Sprintf("user%d", id)}
}

func TestEnsureUserMirrorsIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	user := Identity{ID: 42, Username: "alice"}

	_, err := svc.Signin(user)
	require.NoError(t, err)

	var row models.User
	require.NoError(t, svc.db.First(&row, 42).Error)
	require.Equal(t, "alice", row.Username)
	require.False(t, row.IsAdmin)

	// Renames and role changes propagate on the next operation.
	_, err = svc.Summary(Identity{ID: 42, Username: "alice2", IsAdmin: true})
	require.NoError(t, err)
	require.NoError(t, svc.db.First(&row, 42).Error)
	require.Equal(t, "alice2", row.Username)
	require.True(t, row.IsAdmin)
}

func TestEnsureUserIgnoresPartialIdentity(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Signin(Identity{ID: 42, Username: "alice", IsAdmin: true})
	require.NoError(t, err)

	// A bare-ID identity (admin by-id lookups) must not blank the stored
	// username or demote the admin flag.
	_, err = svc.AvailablePoints(Identity{ID: 42})
	require.NoError(t, err)

	var row models.User
	require.NoError(t, svc.db.First(&row, 42).Error)
	require.Equal(t, "alice", row.Username)
	require.True(t, row.IsAdmin)

	found, err := svc.FindIdentityByUsername("alice")
	require.NoError(t, err)
	require.Equal(t, uint(42), found.ID)
}

func TestFindIdentityByID(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Signin(Identity{ID: 7, Username: "bob"})
	require.NoError(t, err)

	found, err := svc.FindIdentityByID(7)
	require.NoError(t, err)
	require.Equal(t, "bob", found.Username)

	// Unknown ids are a not-found; the lookup never mints a mirror row.
	_, err = svc.FindIdentityByID(777)
	require.ErrorIs(t, err, ErrUserNotFound)

	var count int64
	require.NoError(t, svc.db.Model(&models.User{}).Where("id = ?", 777).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestFindIdentityByUsername(t *testing.T) {
	svc, _ := newTestService(t)
	user := Identity{ID: 7, Username: "bob"}
	_, err := svc.Signin(user)
	require.NoError(t, err)

	found, err := svc.FindIdentityByUsername("bob")
	require.NoError(t, err)
	require.Equal(t, uint(7), found.ID)

	_, err = svc.FindIdentityByUsername("nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
