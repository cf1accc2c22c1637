package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/werta666/jifen-go/models"
)

const dateLayout = "2006-01-02"

// Identity is the verified per-request identity supplied by the forum's
// auth layer. The core trusts it without re-validating credentials.
type Identity struct {
	ID       uint
	Username string
	IsAdmin  bool
}

// Service is the points accounting core: signin ledger, balance accounting,
// streak/reward computation, makeup state machine, leaderboard and shop.
type Service struct {
	db    *gorm.DB
	audit AuditLogger

	// Now is the clock used for "today"; overridable in tests.
	Now func() time.Time
	// Settings supplies a fresh configuration snapshot per operation.
	Settings func() Settings
}

// New creates a Service bound to db. A nil audit falls back to a no-op sink.
func New(db *gorm.DB, audit AuditLogger) *Service {
	if audit == nil {
		audit = NewZapAudit(nil)
	}
	return &Service{
		db:       db,
		audit:    audit,
		Now:      time.Now,
		Settings: SettingsFromConfig,
	}
}

func (s *Service) today() string {
	return s.Now().Format(dateLayout)
}

func (s *Service) yesterday() string {
	return s.Now().AddDate(0, 0, -1).Format(dateLayout)
}

// lockForUpdate applies a row lock on databases that support it. SQLite (used
// in tests) serializes writers anyway and rejects FOR UPDATE.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "mysql" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// ensureUser upserts the local mirror row for a verified identity and keeps
// username/admin flag in sync with the forum.
func ensureUser(tx *gorm.DB, id Identity) (*models.User, error) {
	var user models.User
	err := lockForUpdate(tx).First(&user, id.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{ID: id.ID, Username: id.Username, IsAdmin: id.IsAdmin}
		if err := tx.Create(&user).Error; err != nil {
			// Lost a concurrent creation race; reread the winner's row.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				err = lockForUpdate(tx).First(&user, id.ID).Error
			}
			if err != nil {
				return nil, err
			}
		}
		return &user, nil
	}
	if err != nil {
		return nil, err
	}
	// Sync only from identities carrying verified claims; by-id lookups pass
	// a bare ID and must not blank the stored username or demote the flag.
	if id.Username != "" && (user.Username != id.Username || user.IsAdmin != id.IsAdmin) {
		user.Username = id.Username
		user.IsAdmin = id.IsAdmin
		if err := tx.Save(&user).Error; err != nil {
			return nil, err
		}
	}
	return &user, nil
}

// findUserByUsername resolves an admin-supplied username to the local mirror.
func (s *Service) findUserByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindIdentityByUsername is the admin-facing lookup used by adjust/reset
// endpoints that address users by name.
func (s *Service) FindIdentityByUsername(username string) (Identity, error) {
	user, err := s.findUserByUsername(username)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}

// FindIdentityByID resolves an admin-supplied user id against the mirror.
// Unlike request identities, an unknown id is a not-found, never an upsert.
func (s *Service) FindIdentityByID(userID uint) (Identity, error) {
	var user models.User
	err := s.db.First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Identity{}, ErrUserNotFound
	}
	if err != nil {
		return Identity{}, err
	}
	return Identity{ID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}, nil
}
