package app

import (
	"errors"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/common"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Settings categories and keys stored in sys_config.
const (
	SettingsShop = "shop"

	KeyShopCurrency        = "currency"
	KeyShopFreeShipping    = "free_shipping"
	KeyShopOrderMailNotify = "order_mail_notify"
	KeyCartStaleDays       = "cart_stale_days"
)

// ConfigManager reads and writes sys_config settings.
type ConfigManager struct {
	app *Application
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app}
}

func (m *ConfigManager) getValue(category, name string) (string, bool) {
	var cfgRow domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&cfgRow).Error
	if err != nil {
		return "", false
	}
	return cfgRow.Value, true
}

func (m *ConfigManager) GetString(category, name string) string {
	v, _ := m.getValue(category, name)
	return v
}

func (m *ConfigManager) GetInt64(category, name string) int64 {
	v, ok := m.getValue(category, name)
	if !ok {
		return 0
	}
	return cast.ToInt64(v)
}

func (m *ConfigManager) GetBool(category, name string) bool {
	v, ok := m.getValue(category, name)
	if !ok {
		return false
	}
	return cast.ToBool(v)
}

// SetValue creates or updates one setting row.
func (m *ConfigManager) SetValue(category, name, value string) error {
	var cfgRow domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, name).First(&cfgRow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m.app.gormDB.Create(&domain.SysConfig{
			ID:        common.UUIDint64(),
			Type:      category,
			Name:      name,
			Value:     value,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error
	}
	if err != nil {
		return err
	}
	return m.app.gormDB.Model(&domain.SysConfig{}).
		Where("id = ?", cfgRow.ID).
		Updates(map[string]interface{}{"value": value, "updated_at": time.Now()}).Error
}

func (m *ConfigManager) ensureDefault(category, name, value, remark string) {
	if _, ok := m.getValue(category, name); ok {
		return
	}
	if err := m.SetValue(category, name, value); err != nil {
		zap.S().Errorf("init setting %s.%s failed: %v", category, name, err)
		return
	}
	m.app.gormDB.Model(&domain.SysConfig{}).
		Where("type = ? AND name = ?", category, name).
		Update("remark", remark)
}
