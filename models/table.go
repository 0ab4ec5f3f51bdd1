package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	prefix = "dash_"
)

// StatusRow 运行状态行（草稿）
type StatusRow struct {
	ID                uint64    `gorm:"primarykey"`
	Name              string    `gorm:"size:100;not null"`             // 名称
	Status            string    `gorm:"size:20;not null"`              // Operational | Maintenance | Outage
	Notes             string    `gorm:"type:text"`                     // 备注
	LastChecked       time.Time `gorm:"not null"`                      // 最后检查时间
	DisplayOrder      int       `gorm:"not null;default:0;index"`      // 展示顺序
	MarkedForDeletion bool      `gorm:"not null;default:false;index"` // 待删除（发布时物理删除）
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (StatusRow) TableName() string {
	return prefix + "status"
}

// AnnouncementCard 公告卡片（草稿）
type AnnouncementCard struct {
	ID                uint64   `gorm:"primarykey"`
	Title             string   `gorm:"size:200;not null"`
	Subtitle          string   `gorm:"size:200"`
	Details           []string `gorm:"type:text;serializer:json"` // 多行详情
	ImageRef          string   `gorm:"size:500"`                  // 图片地址
	AccentColor       string   `gorm:"size:32"`                   // 强调色
	DisplayOrder      int      `gorm:"not null;default:0;index"`
	MarkedForDeletion bool     `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (AnnouncementCard) TableName() string {
	return prefix + "announcement"
}

// Advisory 滚动提示（草稿）
type Advisory struct {
	ID                uint64 `gorm:"primarykey"`
	Label             string `gorm:"size:100;not null"`
	Message           string `gorm:"type:text;not null"`
	Active            bool   `gorm:"not null"`
	MarkedForDeletion bool   `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Advisory) TableName() string {
	return prefix + "advisory"
}

// BoardConfig 单例配置。表内最多一行；没有行表示尚未配置。
type BoardConfig struct {
	ID                        uint64 `gorm:"primarykey"`
	BuildingNumber            string `gorm:"size:32"`
	BuildingName              string `gorm:"size:200"`
	Subtitle                  string `gorm:"size:200"`
	AnnouncementScrollSeconds int    `gorm:"not null"` // 0 表示静态
	AdvisoryTickerSeconds     int    `gorm:"not null"`
	StatusPageSeconds         int    `gorm:"not null"`
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}

func (BoardConfig) TableName() string {
	return prefix + "config"
}

// Snapshot 已发布版本（不可变）。State 为序列化后的规范化状态，可能是旧形状。
type Snapshot struct {
	ID          uint64         `gorm:"primarykey"`
	Version     int            `gorm:"uniqueIndex;not null"` // 从 1 开始递增，删除后不重新编号
	State       datatypes.JSON `gorm:"type:json;not null"`
	PublishedAt time.Time      `gorm:"index;not null"`
}

func (Snapshot) TableName() string {
	return prefix + "snapshot"
}

// All 全部表，用于 AutoMigrate
func All() []any {
	return []any{
		&StatusRow{},
		&AnnouncementCard{},
		&Advisory{},
		&BoardConfig{},
		&Snapshot{},
	}
}
