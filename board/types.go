// Package board 定义看板的规范化状态（草稿投影与快照共用的形状）、
// 快照格式归一化以及两份状态之间的差异计算。包内全部为纯函数，不做任何 IO。
package board

import "time"

// 状态行的运行状态
const (
	StatusOperational = "Operational"
	StatusMaintenance = "Maintenance"
	StatusOutage      = "Outage"
)

// 各区块轮播速度默认值（秒），0 表示静态不自动切换
const (
	DefaultAnnouncementScrollSeconds = 30
	DefaultAdvisoryTickerSeconds     = 25
	DefaultStatusPageSeconds         = 8
)

// StatusItem 运行状态行
type StatusItem struct {
	ID                uint64    `json:"id"`
	Name              string    `json:"name"`
	Status            string    `json:"status"`
	Notes             string    `json:"notes,omitempty"`
	LastChecked       time.Time `json:"lastChecked"`
	DisplayOrder      int       `json:"displayOrder"`
	MarkedForDeletion bool      `json:"markedForDeletion,omitempty"`
}

// AnnouncementItem 公告卡片
type AnnouncementItem struct {
	ID                uint64   `json:"id"`
	Title             string   `json:"title"`
	Subtitle          string   `json:"subtitle"`
	Details           []string `json:"details"`
	ImageRef          string   `json:"imageRef,omitempty"`
	AccentColor       string   `json:"accentColor,omitempty"`
	DisplayOrder      int      `json:"displayOrder"`
	MarkedForDeletion bool     `json:"markedForDeletion,omitempty"`
}

// AdvisoryItem 滚动提示
type AdvisoryItem struct {
	ID                uint64 `json:"id"`
	Label             string `json:"label"`
	Message           string `json:"message"`
	Active            bool   `json:"active"`
	MarkedForDeletion bool   `json:"markedForDeletion,omitempty"`
}

// Config 单例配置
type Config struct {
	BuildingNumber            string `json:"buildingNumber"`
	BuildingName              string `json:"buildingName"`
	Subtitle                  string `json:"subtitle"`
	AnnouncementScrollSeconds int    `json:"announcementScrollSeconds"`
	AdvisoryTickerSeconds     int    `json:"advisoryTickerSeconds"`
	StatusPageSeconds         int    `json:"statusPageSeconds"`
}

// Section 一个集合加上它的轮播速度
type Section[T any] struct {
	Items []T `json:"items"`
	Speed int `json:"speed"`
}

// State 规范化状态。Config 为 nil 表示尚未配置。
type State struct {
	Config              *Config                   `json:"config"`
	StatusSection       Section[StatusItem]       `json:"statusSection"`
	AnnouncementSection Section[AnnouncementItem] `json:"announcementSection"`
	AdvisorySection     Section[AdvisoryItem]     `json:"advisorySection"`

	// Carried 快照载荷里实际出现过的配置字段（Field* 常量），区块上的 speed 计入对应的速度字段。
	// 只由 Normalize 填充；草稿投影出的状态为 nil。
	Carried map[string]bool `json:"-"`
}

// Carries 快照是否携带了该配置字段
func (s *State) Carries(field string) bool {
	return s.Carried[field]
}

// EmptyState 返回没有任何条目、速度为默认值的状态
func EmptyState() *State {
	return &State{
		StatusSection:       Section[StatusItem]{Items: []StatusItem{}, Speed: DefaultStatusPageSeconds},
		AnnouncementSection: Section[AnnouncementItem]{Items: []AnnouncementItem{}, Speed: DefaultAnnouncementScrollSeconds},
		AdvisorySection:     Section[AdvisoryItem]{Items: []AdvisoryItem{}, Speed: DefaultAdvisoryTickerSeconds},
	}
}

// HasMarkedStatus 是否存在待删除的状态行
func (s *State) HasMarkedStatus() bool {
	for _, it := range s.StatusSection.Items {
		if it.MarkedForDeletion {
			return true
		}
	}
	return false
}

func (s *State) HasMarkedAnnouncements() bool {
	for _, it := range s.AnnouncementSection.Items {
		if it.MarkedForDeletion {
			return true
		}
	}
	return false
}

func (s *State) HasMarkedAdvisories() bool {
	for _, it := range s.AdvisorySection.Items {
		if it.MarkedForDeletion {
			return true
		}
	}
	return false
}

// FindStatus / FindAnnouncement / FindAdvisory 按 id 查找条目
func (s *State) FindStatus(id uint64) (StatusItem, bool) {
	for _, it := range s.StatusSection.Items {
		if it.ID == id {
			return it, true
		}
	}
	return StatusItem{}, false
}

func (s *State) FindAnnouncement(id uint64) (AnnouncementItem, bool) {
	for _, it := range s.AnnouncementSection.Items {
		if it.ID == id {
			return it, true
		}
	}
	return AnnouncementItem{}, false
}

func (s *State) FindAdvisory(id uint64) (AdvisoryItem, bool) {
	for _, it := range s.AdvisorySection.Items {
		if it.ID == id {
			return it, true
		}
	}
	return AdvisoryItem{}, false
}
