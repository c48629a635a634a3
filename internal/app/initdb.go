package app

import (
	"errors"
	"strings"
	"time"

	"github.com/ablewear/ablewear/internal/domain"
	"github.com/ablewear/ablewear/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "ablewear"

	hashedPassword := common.Sha256HashWithSalt(defaultPassword, common.GetSecretSalt())

	var operator domain.SysOpr
	err := a.gormDB.Where("username = ?", superUsername).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     common.NA,
			Username:  superUsername,
			Password:  hashedPassword,
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = hashedPassword
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}
	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
	}
}

func (a *Application) checkSettings() {
	m := a.configManager
	if m == nil {
		m = NewConfigManager(a)
	}
	m.ensureDefault(SettingsShop, KeyShopCurrency, "INR", "Display currency")
	m.ensureDefault(SettingsShop, KeyShopFreeShipping, "true", "Shipping is free on all orders")
	m.ensureDefault(SettingsShop, KeyShopOrderMailNotify, "true", "Send order confirmation emails")
	m.ensureDefault(SettingsShop, KeyCartStaleDays, "90", "Days before abandoned cart rows are purged")
}

// checkDemoCatalog seeds a small adaptive-clothing catalog so a fresh
// install has something to browse.
func (a *Application) checkDemoCatalog() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	demo := []domain.Product{
		{
			Name:        "Magnetic Closure Shirt",
			Description: "Button-look shirt with hidden magnetic closures for limited dexterity.",
			Price:       1500,
			Category:    "tops",
			Colors:      []string{"blue", "white"},
			Sizes:       []string{"S", "M", "L", "XL"},
			Features:    []string{"magnetic closures", "side-seam pulls"},
			Stock:       50,
			IsFeatured:  true,
		},
		{
			Name:        "Seated-Fit Trousers",
			Description: "Higher back rise and flat seams, cut for all-day wheelchair use.",
			Price:       1800,
			Category:    "bottoms",
			Colors:      []string{"black", "navy"},
			Sizes:       []string{"S", "M", "L"},
			Features:    []string{"elastic waistband", "no back pockets"},
			Stock:       40,
		},
		{
			Name:        "Easy-Wear Pullover",
			Description: "Wide neck opening and stretch panels, no fasteners at all.",
			Price:       800,
			Category:    "tops",
			Colors:      []string{"grey", "maroon"},
			Sizes:       []string{"M", "L", "XL"},
			Features:    []string{"wide neck", "stretch panels"},
			Stock:       60,
		},
	}
	now := time.Now()
	for i := range demo {
		demo[i].ID = common.UUIDint64()
		demo[i].CreatedAt = now
		demo[i].UpdatedAt = now
	}
	if err := a.gormDB.Create(&demo).Error; err != nil {
		zap.L().Error("failed to seed demo catalog", zap.Error(err))
		return
	}
	zap.L().Info("seeded demo catalog", zap.Int("products", len(demo)))
}
