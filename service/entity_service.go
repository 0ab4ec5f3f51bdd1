package service

import (
	"context"
	"strings"
	"time"

	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/models"
	"github.com/gm2211/hudson-dashboard/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// itemAdapter 描述一种草稿集合的行/条目转换与校验
type itemAdapter[R repository.Row, I any] struct {
	name   string
	newDAO func(*gorm.DB) *repository.CollectionDAO[R]
	toItem func(R) I
	// forCreate 新建时的行：忽略传入的 id 与待删除标记
	forCreate func(I, time.Time) R
	// forUpdate 更新时的行与需要写入的列
	forUpdate func(I, time.Time) (R, []string)
	validate  func(I) error
}

// CollectionService 单个草稿集合的编辑操作（新建/更新/标记删除/取消标记/列表）
type CollectionService[R repository.Row, I any] struct {
	*Service
	adapter itemAdapter[R, I]
	dao     *repository.CollectionDAO[R]
}

func newCollectionService[R repository.Row, I any](s *Service, adapter itemAdapter[R, I]) *CollectionService[R, I] {
	return &CollectionService[R, I]{Service: s, adapter: adapter, dao: adapter.newDAO(s.DB)}
}

// List 当前草稿中的全部条目（包含待删除的条目）
func (s *CollectionService[R, I]) List(ctx context.Context) ([]I, error) {
	rows, err := s.dao.WithDB(s.DB.WithContext(ctx)).List()
	if err != nil {
		return nil, classify("list "+s.adapter.name, err)
	}
	return mapSlice(rows, s.adapter.toItem), nil
}

// Get 按 id 读取
func (s *CollectionService[R, I]) Get(ctx context.Context, id uint64) (I, error) {
	var zero I
	row, err := s.dao.WithDB(s.DB.WithContext(ctx)).FindByID(id)
	if isRecordNotFound(err) {
		return zero, notFoundf("%s %d", s.adapter.name, id)
	}
	if err != nil {
		return zero, classify("get "+s.adapter.name, err)
	}
	return s.adapter.toItem(*row), nil
}

// Create 新建条目，id 由数据库分配
func (s *CollectionService[R, I]) Create(ctx context.Context, item I) (I, error) {
	var zero I
	if err := s.adapter.validate(item); err != nil {
		return zero, err
	}
	row := s.adapter.forCreate(item, s.now())
	if err := s.dao.WithDB(s.DB.WithContext(ctx)).Create(&row); err != nil {
		return zero, classify("create "+s.adapter.name, err)
	}
	out := s.adapter.toItem(row)
	s.log().Debug("draft item created", zap.String("collection", s.adapter.name))
	return out, nil
}

// Update 更新可编辑字段；id 不存在时返回 ErrNotFound
func (s *CollectionService[R, I]) Update(ctx context.Context, id uint64, item I) (I, error) {
	var zero I
	if err := s.adapter.validate(item); err != nil {
		return zero, err
	}
	var out I
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dao := s.dao.WithDB(tx)
		if _, err := dao.FindByID(id); err != nil {
			if isRecordNotFound(err) {
				return notFoundf("%s %d", s.adapter.name, id)
			}
			return err
		}
		row, columns := s.adapter.forUpdate(item, s.now())
		if _, err := dao.UpdateColumns(id, &row, columns); err != nil {
			return err
		}
		updated, err := dao.FindByID(id)
		if err != nil {
			return err
		}
		out = s.adapter.toItem(*updated)
		return nil
	})
	if err != nil {
		return zero, classify("update "+s.adapter.name, err)
	}
	return out, nil
}

// MarkDeleted 标记为待删除，下次发布时物理删除
func (s *CollectionService[R, I]) MarkDeleted(ctx context.Context, id uint64) error {
	return s.setMarked(ctx, id, true)
}

// UnmarkDeleted 撤销待删除标记
func (s *CollectionService[R, I]) UnmarkDeleted(ctx context.Context, id uint64) error {
	return s.setMarked(ctx, id, false)
}

func (s *CollectionService[R, I]) setMarked(ctx context.Context, id uint64, marked bool) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dao := s.dao.WithDB(tx)
		if _, err := dao.FindByID(id); err != nil {
			if isRecordNotFound(err) {
				return notFoundf("%s %d", s.adapter.name, id)
			}
			return err
		}
		_, err := dao.SetMarked(id, marked)
		return err
	})
	return classify("mark "+s.adapter.name, err)
}

// EntityService 草稿实体：三个集合 + 单例配置
type EntityService struct {
	*Service
	configDAO     *repository.ConfigDAO
	status        *CollectionService[models.StatusRow, board.StatusItem]
	announcements *CollectionService[models.AnnouncementCard, board.AnnouncementItem]
	advisories    *CollectionService[models.Advisory, board.AdvisoryItem]
}

func NewEntityService(s *Service) *EntityService {
	return &EntityService{
		Service:       s,
		configDAO:     repository.NewConfigDAO(s.DB),
		status:        newCollectionService(s, statusAdapter),
		announcements: newCollectionService(s, announcementAdapter),
		advisories:    newCollectionService(s, advisoryAdapter),
	}
}

func (s *EntityService) Status() *CollectionService[models.StatusRow, board.StatusItem] {
	return s.status
}

func (s *EntityService) Announcements() *CollectionService[models.AnnouncementCard, board.AnnouncementItem] {
	return s.announcements
}

func (s *EntityService) Advisories() *CollectionService[models.Advisory, board.AdvisoryItem] {
	return s.advisories
}

// GetConfig 读取单例配置；尚未配置时返回 nil
func (s *EntityService) GetConfig(ctx context.Context) (*board.Config, error) {
	c, err := s.configDAO.WithDB(s.DB.WithContext(ctx)).Get()
	if err != nil {
		return nil, classify("get config", err)
	}
	return configToBoard(c), nil
}

// SaveConfig 新建或更新单例配置
func (s *EntityService) SaveConfig(ctx context.Context, in board.Config) (*board.Config, error) {
	if in.AnnouncementScrollSeconds < 0 || in.AdvisoryTickerSeconds < 0 || in.StatusPageSeconds < 0 {
		return nil, validationf("speed settings must be non-negative")
	}
	var out *board.Config
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dao := s.configDAO.WithDB(tx)
		c, err := dao.Get()
		if err != nil {
			return err
		}
		if c == nil {
			c = &models.BoardConfig{}
		}
		c.BuildingNumber = in.BuildingNumber
		c.BuildingName = in.BuildingName
		c.Subtitle = in.Subtitle
		c.AnnouncementScrollSeconds = in.AnnouncementScrollSeconds
		c.AdvisoryTickerSeconds = in.AdvisoryTickerSeconds
		c.StatusPageSeconds = in.StatusPageSeconds
		if err := dao.Save(c); err != nil {
			return err
		}
		out = configToBoard(c)
		return nil
	})
	if err != nil {
		return nil, classify("save config", err)
	}
	return out, nil
}

var statusAdapter = itemAdapter[models.StatusRow, board.StatusItem]{
	name:   "status",
	newDAO: repository.NewStatusDAO,
	toItem: statusToItem,
	forCreate: func(it board.StatusItem, now time.Time) models.StatusRow {
		it.ID = 0
		it.MarkedForDeletion = false
		if it.LastChecked.IsZero() {
			it.LastChecked = now
		}
		return statusToRow(it)
	},
	forUpdate: func(it board.StatusItem, now time.Time) (models.StatusRow, []string) {
		// 每次编辑都视为一次检查
		it.ID = 0
		it.LastChecked = now
		return statusToRow(it), []string{"name", "status", "notes", "display_order", "last_checked"}
	},
	validate: func(it board.StatusItem) error {
		if strings.TrimSpace(it.Name) == "" {
			return validationf("status name is required")
		}
		switch it.Status {
		case board.StatusOperational, board.StatusMaintenance, board.StatusOutage:
			return nil
		}
		return validationf("invalid status %q", it.Status)
	},
}

var announcementAdapter = itemAdapter[models.AnnouncementCard, board.AnnouncementItem]{
	name:   "announcement",
	newDAO: repository.NewAnnouncementDAO,
	toItem: announcementToItem,
	forCreate: func(it board.AnnouncementItem, _ time.Time) models.AnnouncementCard {
		it.ID = 0
		it.MarkedForDeletion = false
		return announcementToRow(it)
	},
	forUpdate: func(it board.AnnouncementItem, _ time.Time) (models.AnnouncementCard, []string) {
		it.ID = 0
		return announcementToRow(it), []string{"title", "subtitle", "details", "image_ref", "accent_color", "display_order"}
	},
	validate: func(it board.AnnouncementItem) error {
		if strings.TrimSpace(it.Title) == "" {
			return validationf("announcement title is required")
		}
		return nil
	},
}

var advisoryAdapter = itemAdapter[models.Advisory, board.AdvisoryItem]{
	name:   "advisory",
	newDAO: repository.NewAdvisoryDAO,
	toItem: advisoryToItem,
	forCreate: func(it board.AdvisoryItem, _ time.Time) models.Advisory {
		it.ID = 0
		it.MarkedForDeletion = false
		return advisoryToRow(it)
	},
	forUpdate: func(it board.AdvisoryItem, _ time.Time) (models.Advisory, []string) {
		it.ID = 0
		return advisoryToRow(it), []string{"label", "message", "active"}
	},
	validate: func(it board.AdvisoryItem) error {
		if strings.TrimSpace(it.Label) == "" {
			return validationf("advisory label is required")
		}
		return nil
	},
}
