package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/carteira-app/carteira/internal/apperrors"
	"github.com/carteira-app/carteira/internal/database"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db *sql.DB
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB) *SystemService {
	return &SystemService{
		db: db,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth(ctx context.Context) error {
	return database.HealthCheck(ctx, s.db)
}

// CheckVersion returns the application version and the applied schema version.
func (s *SystemService) CheckVersion(ctx context.Context) (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(ctx, s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToGetVersionInfo, err)
	}
	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  dbVersion,
	}, nil
}
