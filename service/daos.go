package service

import (
	"github.com/gm2211/hudson-dashboard/models"
	"github.com/gm2211/hudson-dashboard/repository"
	"gorm.io/gorm"
)

// draftDAOs 服务持有的一组 DAO。事务内用 in(tx) 得到绑定到 tx 的副本。
type draftDAOs struct {
	status        *repository.CollectionDAO[models.StatusRow]
	announcements *repository.CollectionDAO[models.AnnouncementCard]
	advisories    *repository.CollectionDAO[models.Advisory]
	config        *repository.ConfigDAO
	snapshots     *repository.SnapshotDAO
}

func newDraftDAOs(db *gorm.DB) draftDAOs {
	return draftDAOs{
		status:        repository.NewStatusDAO(db),
		announcements: repository.NewAnnouncementDAO(db),
		advisories:    repository.NewAdvisoryDAO(db),
		config:        repository.NewConfigDAO(db),
		snapshots:     repository.NewSnapshotDAO(db),
	}
}

func (d draftDAOs) in(tx *gorm.DB) draftDAOs {
	return draftDAOs{
		status:        d.status.WithDB(tx),
		announcements: d.announcements.WithDB(tx),
		advisories:    d.advisories.WithDB(tx),
		config:        d.config.WithDB(tx),
		snapshots:     d.snapshots.WithDB(tx),
	}
}
