package services

import (
	"context"
	"fmt"

	"pub_pos_backend/internal/models"
	"pub_pos_backend/internal/repositories"
	"pub_pos_backend/pkg/utils"
)

// UpsertSettingsRequest DTO. Tax rates outside [0,1] are clamped.
type UpsertSettingsRequest struct {
	TaxRate        *float64               `json:"taxRate" binding:"required"`
	PaymentMethods *models.PaymentMethods `json:"paymentMethods" binding:"required"`
}

// SettingsService reads and upserts the venue settings.
type SettingsService interface {
	GetSettings(ctx context.Context) (models.AppSettings, error)
	UpsertSettings(ctx context.Context, req UpsertSettingsRequest) (models.AppSettings, error)
}

type settingsService struct {
	repo repositories.SettingsRepository
	view Snapshot[models.AppSettings]
}

// NewSettingsService reads from view when given, falling back to the repository.
func NewSettingsService(repo repositories.SettingsRepository, view Snapshot[models.AppSettings]) SettingsService {
	return &settingsService{repo: repo, view: view}
}

// GetSettings returns the first settings record or the defaults.
func (s *settingsService) GetSettings(ctx context.Context) (models.AppSettings, error) {
	if s.view != nil {
		items, err := current(ctx, s.view)
		if err == nil {
			if len(items) > 0 {
				return items[0], nil
			}
			return models.DefaultSettings(), nil
		}
		utils.LogWarn(err, "SettingsService.GetSettings: live view unavailable, reading store")
	}
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return models.DefaultSettings(), fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return settings, nil
}

func (s *settingsService) UpsertSettings(ctx context.Context, req UpsertSettingsRequest) (models.AppSettings, error) {
	if req.TaxRate == nil || req.PaymentMethods == nil {
		return models.AppSettings{}, validationError("taxRate and paymentMethods are required")
	}

	existing, err := s.GetSettings(ctx)
	if err != nil {
		return models.AppSettings{}, err
	}
	next := models.AppSettings{
		ID:             existing.ID,
		TaxRate:        models.ClampTaxRate(*req.TaxRate),
		PaymentMethods: *req.PaymentMethods,
	}
	saved, err := s.repo.UpsertSettings(ctx, next)
	if err != nil {
		return models.AppSettings{}, fmt.Errorf("failed to save settings: %w", err)
	}
	utils.LogInfo("Settings updated", map[string]interface{}{"tax_rate": saved.TaxRate})
	return saved, nil
}
