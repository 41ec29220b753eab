package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nucleusmind/contextengine/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type (
	// Service is the billing-side collaborator: it answers which plan an
	// organization is on and whether a user carries a context-size
	// override. It may be unavailable; callers degrade, never propagate.
	Service interface {
		GetActivePlan(ctx context.Context, organizationID string) (*Plan, error)
		GetUserSetting(ctx context.Context, organizationID, userID string) (*UserSetting, error)
	}

	Plan struct {
		OrganizationID string `gorm:"primaryKey"`
		Tier           string `gorm:"not null"`
		Status         string `gorm:"not null"`
	}

	UserSetting struct {
		OrganizationID string `gorm:"primaryKey"`
		UserID         string `gorm:"primaryKey"`

		// MaxContextSize overrides the tier budget when positive.
		MaxContextSize int
	}

	SqliteService struct {
		db *gorm.DB
	}
)

const (
	PlanStatusActive   = "active"
	PlanStatusCanceled = "canceled"
)

var (
	_ Service = (*SqliteService)(nil)
)

func (Plan) TableName() string        { return "subscription_plans" }
func (UserSetting) TableName() string { return "user_settings" }

func NewSqliteService(dbPath string, logger *slog.Logger) (*SqliteService, error) {
	if dbPath == "" {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "subscription sqlite path is not configured")
	}
	if dbPath != ":memory:" {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
				return nil, errors.Wrapf(err, "failed to create sqlite directory at %s", dbPath)
			}
			logger.Info("created sqlite directory", slog.String("path", dbPath))
		}
	}

	db, err := gorm.Open(
		sqlite.Open(
			fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on", dbPath),
		),
		&gorm.Config{},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database at %s", dbPath)
	}

	if err := db.AutoMigrate(&Plan{}, &UserSetting{}); err != nil {
		return nil, errors.Wrapf(err, "failed to auto-migrate sqlite database at %s", dbPath)
	}

	return &SqliteService{db: db}, nil
}

// NewSqliteServiceWithDB reuses an already-open handle so the
// subscription tables can share the memory store's database file.
func NewSqliteServiceWithDB(db *gorm.DB) (*SqliteService, error) {
	if err := db.AutoMigrate(&Plan{}, &UserSetting{}); err != nil {
		return nil, errors.Wrapf(err, "failed to auto-migrate subscription tables")
	}
	return &SqliteService{db: db}, nil
}

func (s *SqliteService) GetActivePlan(ctx context.Context, organizationID string) (*Plan, error) {
	tx := s.db.WithContext(ctx)

	var plan Plan
	if r := tx.Find(&plan, "organization_id = ? AND status = ?", organizationID, PlanStatusActive); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to get plan for %s", organizationID)
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no active plan for %s", organizationID)
	}

	return &plan, nil
}

func (s *SqliteService) GetUserSetting(ctx context.Context, organizationID, userID string) (*UserSetting, error) {
	tx := s.db.WithContext(ctx)

	var setting UserSetting
	if r := tx.Find(&setting, "organization_id = ? AND user_id = ?", organizationID, userID); r.Error != nil {
		return nil, errors.Wrapf(r.Error, "failed to get user setting for %s/%s", organizationID, userID)
	} else if r.RowsAffected == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "no setting for user %s", userID)
	}

	return &setting, nil
}

// SavePlan upserts a plan row. The write path belongs to the billing
// system; this exists for provisioning and tests.
func (s *SqliteService) SavePlan(ctx context.Context, plan *Plan) error {
	if plan == nil {
		return errors.New("plan cannot be nil")
	}
	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return errors.Wrapf(err, "failed to save plan for %s", plan.OrganizationID)
	}
	return nil
}

func (s *SqliteService) SaveUserSetting(ctx context.Context, setting *UserSetting) error {
	if setting == nil {
		return errors.New("setting cannot be nil")
	}
	if err := s.db.WithContext(ctx).Save(setting).Error; err != nil {
		return errors.Wrapf(err, "failed to save setting for %s/%s", setting.OrganizationID, setting.UserID)
	}
	return nil
}
