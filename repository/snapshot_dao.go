package repository

import (
	"github.com/gm2211/hudson-dashboard/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SnapshotDAO 已发布版本（只追加，不修改）
type SnapshotDAO struct {
	db *gorm.DB
}

func NewSnapshotDAO(db *gorm.DB) *SnapshotDAO {
	return &SnapshotDAO{db: db}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *SnapshotDAO) WithDB(db *gorm.DB) *SnapshotDAO {
	if db == nil {
		return dao
	}
	return &SnapshotDAO{db: db}
}

// Create 写入新版本；version 唯一索引冲突时返回错误
func (dao *SnapshotDAO) Create(s *models.Snapshot) error {
	return dao.db.Create(s).Error
}

// FindByVersion 不存在时返回 gorm.ErrRecordNotFound
func (dao *SnapshotDAO) FindByVersion(version int) (*models.Snapshot, error) {
	var s models.Snapshot
	if err := dao.db.Where("version = ?", version).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// Latest 版本号最大的快照；没有任何快照时返回 gorm.ErrRecordNotFound
func (dao *SnapshotDAO) Latest() (*models.Snapshot, error) {
	var s models.Snapshot
	if err := dao.db.Order("version DESC").First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MaxVersion 当前最大版本号，没有快照时为 0。
// forUpdate 为 true 时加行锁，让并发发布在事务内串行。
func (dao *SnapshotDAO) MaxVersion(forUpdate bool) (int, error) {
	var v int
	q := dao.db.Model(&models.Snapshot{}).Select("COALESCE(MAX(version), 0)")
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Scan(&v).Error; err != nil {
		return 0, err
	}
	return v, nil
}

// List 版本列表（不含载荷），新版本在前
func (dao *SnapshotDAO) List() ([]models.Snapshot, error) {
	var list []models.Snapshot
	err := dao.db.Model(&models.Snapshot{}).
		Select("id, version, published_at").
		Order("version DESC").
		Find(&list).Error
	return list, err
}

// Count 快照数量
func (dao *SnapshotDAO) Count() (int64, error) {
	var n int64
	err := dao.db.Model(&models.Snapshot{}).Count(&n).Error
	return n, err
}

// DeleteByVersion 删除指定版本，不影响其它版本号
func (dao *SnapshotDAO) DeleteByVersion(version int) (int64, error) {
	res := dao.db.Where("version = ?", version).Delete(&models.Snapshot{})
	return res.RowsAffected, res.Error
}

// DeleteAllExcept 删除除 keep 之外的全部版本
func (dao *SnapshotDAO) DeleteAllExcept(keep int) (int64, error) {
	res := dao.db.Where("version <> ?", keep).Delete(&models.Snapshot{})
	return res.RowsAffected, res.Error
}
