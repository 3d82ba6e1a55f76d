// internal/repository/settings_repository.go
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"print-service/internal/database"
	"print-service/internal/model"
)

// Keys under which the print settings are stored.
const (
	keyReceiptPrinter = "receipt_printer"
	keyKitchenPrinter = "kitchen_printer"
	keyReceiptCopies  = "receipt_copies"
	keyKitchenCopies  = "kitchen_copies"
	keyRollWidth      = "roll_width"
	keyDensity        = "density"
	keyShopName       = "shop_name"
	keyShopAddress    = "shop_address"
	keyFooterText     = "footer_text"
	keyLogoPath       = "logo_path"
)

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db     *database.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *database.DB, logger *zap.Logger) SettingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

// Get loads the full settings document. Missing keys fall back to the
// normalized defaults.
func (r *settingsRepository) Get(ctx context.Context) (*model.PrintSettings, error) {
	query := `SELECT key, value FROM print_settings`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to load print settings", zap.Error(err))
		return nil, fmt.Errorf("failed to load print settings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting row: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	settings := &model.PrintSettings{
		ReceiptPrinter: values[keyReceiptPrinter],
		KitchenPrinter: values[keyKitchenPrinter],
		ReceiptCopies:  atoiOr(values[keyReceiptCopies], 1),
		KitchenCopies:  atoiOr(values[keyKitchenCopies], 1),
		RollWidth:      model.RollWidth(atoiOr(values[keyRollWidth], int(model.RollWidth58))),
		Density:        atoiOr(values[keyDensity], 3),
		ShopName:       values[keyShopName],
		ShopAddress:    values[keyShopAddress],
		FooterText:     values[keyFooterText],
		LogoPath:       values[keyLogoPath],
	}
	settings.Normalize()
	return settings, nil
}

// Save upserts the full settings document in one transaction.
func (r *settingsRepository) Save(ctx context.Context, settings *model.PrintSettings) error {
	settings.Normalize()

	pairs := map[string]string{
		keyReceiptPrinter: settings.ReceiptPrinter,
		keyKitchenPrinter: settings.KitchenPrinter,
		keyReceiptCopies:  strconv.Itoa(settings.ReceiptCopies),
		keyKitchenCopies:  strconv.Itoa(settings.KitchenCopies),
		keyRollWidth:      strconv.Itoa(int(settings.RollWidth)),
		keyDensity:        strconv.Itoa(settings.Density),
		keyShopName:       settings.ShopName,
		keyShopAddress:    settings.ShopAddress,
		keyFooterText:     settings.FooterText,
		keyLogoPath:       settings.LogoPath,
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin settings transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO print_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	for key, value := range pairs {
		if _, err := tx.ExecContext(ctx, query, key, value); err != nil {
			r.logger.Error("Failed to save setting", zap.Error(err), zap.String("key", key))
			return fmt.Errorf("failed to save setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	r.logger.Info("Print settings saved",
		zap.String("receipt_printer", settings.ReceiptPrinter),
		zap.String("kitchen_printer", settings.KitchenPrinter))
	return nil
}

// GetValue reads a single setting, "" when unset.
func (r *settingsRepository) GetValue(ctx context.Context, key string) (string, error) {
	query := `SELECT value FROM print_settings WHERE key = $1`

	var value string
	err := r.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

// SetValue upserts a single setting.
func (r *settingsRepository) SetValue(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO print_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	if _, err := r.db.ExecContext(ctx, query, key, value); err != nil {
		r.logger.Error("Failed to set setting", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
