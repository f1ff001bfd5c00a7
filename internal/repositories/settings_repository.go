package repositories

import (
	"context"

	"pub_pos_backend/internal/models"
)

// SettingsRepository reads and writes the venue settings singleton.
type SettingsRepository interface {
	// GetSettings returns the first settings record, or defaults when there is none.
	GetSettings(ctx context.Context) (models.AppSettings, error)
	UpsertSettings(ctx context.Context, settings models.AppSettings) (models.AppSettings, error)
}

type settingsRepository struct {
	db DocumentExecutor
}

func NewSettingsRepository(db DocumentExecutor) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSettings(ctx context.Context) (models.AppSettings, error) {
	docs, err := r.db.Query(ctx, CollectionSettings, "", nil, 1)
	if err != nil {
		return models.DefaultSettings(), wrapStoreError(err, "reading settings")
	}
	if len(docs) == 0 {
		return models.DefaultSettings(), nil
	}
	return DecodeSettings(docs[0]), nil
}

// UpsertSettings updates the existing record (settings.ID, else the first stored one)
// or creates the singleton.
func (r *settingsRepository) UpsertSettings(ctx context.Context, settings models.AppSettings) (models.AppSettings, error) {
	settings.TaxRate = models.ClampTaxRate(settings.TaxRate)

	id := settings.ID
	if id == "" {
		current, err := r.GetSettings(ctx)
		if err != nil {
			return settings, err
		}
		id = current.ID
	}

	if id != "" {
		if err := r.db.Update(ctx, CollectionSettings, id, settingsFields(&settings)); err != nil {
			return settings, wrapStoreError(err, "updating settings")
		}
		settings.ID = id
		return settings, nil
	}

	doc, err := r.db.Create(ctx, CollectionSettings, settingsFields(&settings))
	if err != nil {
		return settings, wrapStoreError(err, "creating settings")
	}
	return DecodeSettings(doc), nil
}
