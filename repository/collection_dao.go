package repository

import (
	"github.com/gm2211/hudson-dashboard/models"
	"gorm.io/gorm"
)

// Row 草稿集合的行类型
type Row interface {
	models.StatusRow | models.AnnouncementCard | models.Advisory
}

// CollectionDAO 封装单个草稿集合的数据库操作
//
// 约定：
// - 只做数据访问，不做业务编排。
// - 事务边界由 service 控制；在事务中使用 WithDB(tx)。
type CollectionDAO[R Row] struct {
	db      *gorm.DB
	orderBy string
}

// NewStatusDAO 状态行按 display_order 排序
func NewStatusDAO(db *gorm.DB) *CollectionDAO[models.StatusRow] {
	return &CollectionDAO[models.StatusRow]{db: db, orderBy: "display_order ASC, id ASC"}
}

// NewAnnouncementDAO 公告按 display_order 排序
func NewAnnouncementDAO(db *gorm.DB) *CollectionDAO[models.AnnouncementCard] {
	return &CollectionDAO[models.AnnouncementCard]{db: db, orderBy: "display_order ASC, id ASC"}
}

// NewAdvisoryDAO 提示没有展示顺序，按 id 排序
func NewAdvisoryDAO(db *gorm.DB) *CollectionDAO[models.Advisory] {
	return &CollectionDAO[models.Advisory]{db: db, orderBy: "id ASC"}
}

// WithDB 用于在事务（tx）中复用 DAO
func (dao *CollectionDAO[R]) WithDB(db *gorm.DB) *CollectionDAO[R] {
	if db == nil {
		return dao
	}
	return &CollectionDAO[R]{db: db, orderBy: dao.orderBy}
}

// List 全部行（包含待删除的行）
func (dao *CollectionDAO[R]) List() ([]R, error) {
	var rows []R
	err := dao.db.Order(dao.orderBy).Find(&rows).Error
	return rows, err
}

// FindByID 不存在时返回 gorm.ErrRecordNotFound
func (dao *CollectionDAO[R]) FindByID(id uint64) (*R, error) {
	var row R
	if err := dao.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Create 插入一行；row 中已有 ID 时沿用该 ID（恢复时保持原 id）
func (dao *CollectionDAO[R]) Create(row *R) error {
	return dao.db.Create(row).Error
}

// CreateMany 批量插入，保留各行已有的 ID
func (dao *CollectionDAO[R]) CreateMany(rows []R) error {
	if len(rows) == 0 {
		return nil
	}
	return dao.db.Create(&rows).Error
}

// UpdateColumns 按 id 更新 columns 指定的列（包括零值）
func (dao *CollectionDAO[R]) UpdateColumns(id uint64, row *R, columns []string) (int64, error) {
	res := dao.db.Model(new(R)).Where("id = ?", id).Select(columns).Updates(row)
	return res.RowsAffected, res.Error
}

// SetMarked 设置/取消待删除标记
func (dao *CollectionDAO[R]) SetMarked(id uint64, marked bool) (int64, error) {
	res := dao.db.Model(new(R)).Where("id = ?", id).Update("marked_for_deletion", marked)
	return res.RowsAffected, res.Error
}

// DeleteMarked 物理删除所有待删除的行
func (dao *CollectionDAO[R]) DeleteMarked() (int64, error) {
	res := dao.db.Where("marked_for_deletion = ?", true).Delete(new(R))
	return res.RowsAffected, res.Error
}

// DeleteByID 物理删除一行
func (dao *CollectionDAO[R]) DeleteByID(id uint64) (int64, error) {
	res := dao.db.Where("id = ?", id).Delete(new(R))
	return res.RowsAffected, res.Error
}

// DeleteAll 清空集合
func (dao *CollectionDAO[R]) DeleteAll() (int64, error) {
	res := dao.db.Where("1 = 1").Delete(new(R))
	return res.RowsAffected, res.Error
}
