package service

import (
	"context"

	"github.com/gm2211/hudson-dashboard/board"
	"gorm.io/gorm"
)

// ProjectorService 从草稿表组装规范化状态
type ProjectorService struct {
	*Service
	daos draftDAOs
}

func NewProjectorService(s *Service) *ProjectorService {
	return &ProjectorService{Service: s, daos: newDraftDAOs(s.DB)}
}

// Project 当前草稿（包含待删除条目）。四张表在同一个事务里读，避免读到一半的编辑。
func (s *ProjectorService) Project(ctx context.Context) (*board.State, error) {
	var st *board.State
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		st, err = s.daos.in(tx).project()
		return err
	})
	if err != nil {
		return nil, classify("project draft", err)
	}
	return st, nil
}

// project 读取草稿，d 应已绑定到事务
func (d draftDAOs) project() (*board.State, error) {
	cfg, err := d.config.Get()
	if err != nil {
		return nil, err
	}
	statusRows, err := d.status.List()
	if err != nil {
		return nil, err
	}
	cards, err := d.announcements.List()
	if err != nil {
		return nil, err
	}
	advisories, err := d.advisories.List()
	if err != nil {
		return nil, err
	}

	st := board.EmptyState()
	if cfg != nil {
		st.Config = configToBoard(cfg)
		st.StatusSection.Speed = cfg.StatusPageSeconds
		st.AnnouncementSection.Speed = cfg.AnnouncementScrollSeconds
		st.AdvisorySection.Speed = cfg.AdvisoryTickerSeconds
	}
	st.StatusSection.Items = mapSlice(statusRows, statusToItem)
	st.AnnouncementSection.Items = mapSlice(cards, announcementToItem)
	st.AdvisorySection.Items = mapSlice(advisories, advisoryToItem)
	return st, nil
}
