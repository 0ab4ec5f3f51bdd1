package repository

import (
	"errors"

	"github.com/gm2211/hudson-dashboard/models"
	"gorm.io/gorm"
)

// ConfigDAO 单例配置
type ConfigDAO struct {
	db *gorm.DB
}

func NewConfigDAO(db *gorm.DB) *ConfigDAO {
	return &ConfigDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *ConfigDAO) WithDB(db *gorm.DB) *ConfigDAO {
	if db == nil {
		return dao
	}
	return &ConfigDAO{db: db}
}

// Get 读取配置；尚未配置时返回 (nil, nil)
func (dao *ConfigDAO) Get() (*models.BoardConfig, error) {
	var c models.BoardConfig
	err := dao.db.First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Save 新建或整行更新
func (dao *ConfigDAO) Save(c *models.BoardConfig) error {
	return dao.db.Save(c).Error
}
