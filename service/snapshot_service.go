package service

import (
	"context"
	"time"

	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/models"
	"github.com/gm2211/hudson-dashboard/repository"
)

// VersionInfo 版本列表项
type VersionInfo struct {
	Version     int       `json:"version"`
	PublishedAt time.Time `json:"publishedAt"`
}

// VersionDetail 单个版本：归一化后的状态以及原始存储格式
type VersionDetail struct {
	VersionInfo
	Format string       `json:"format"`
	State  *board.State `json:"state"`
}

// SnapshotService 已发布版本的只读查询
type SnapshotService struct {
	*Service
	snapshotDAO *repository.SnapshotDAO
}

func NewSnapshotService(s *Service) *SnapshotService {
	return &SnapshotService{Service: s, snapshotDAO: repository.NewSnapshotDAO(s.DB)}
}

// ListVersions 新版本在前
func (s *SnapshotService) ListVersions(ctx context.Context) ([]VersionInfo, error) {
	list, err := s.snapshotDAO.WithDB(s.DB.WithContext(ctx)).List()
	if err != nil {
		return nil, classify("list versions", err)
	}
	out := make([]VersionInfo, 0, len(list))
	for i := range list {
		out = append(out, *versionInfo(&list[i]))
	}
	return out, nil
}

// GetVersion 指定版本
func (s *SnapshotService) GetVersion(ctx context.Context, version int) (*VersionDetail, error) {
	snap, err := s.snapshotDAO.WithDB(s.DB.WithContext(ctx)).FindByVersion(version)
	if isRecordNotFound(err) {
		return nil, notFoundf("version %d", version)
	}
	if err != nil {
		return nil, classify("get version", err)
	}
	return versionDetail(snap), nil
}

// GetLive 线上展示的内容，即最新版本；还没有发布过时返回 ErrNotFound
func (s *SnapshotService) GetLive(ctx context.Context) (*VersionDetail, error) {
	snap, err := s.snapshotDAO.WithDB(s.DB.WithContext(ctx)).Latest()
	if isRecordNotFound(err) {
		return nil, notFoundf("nothing published yet")
	}
	if err != nil {
		return nil, classify("get live", err)
	}
	return versionDetail(snap), nil
}

func versionInfo(s *models.Snapshot) *VersionInfo {
	return &VersionInfo{Version: s.Version, PublishedAt: s.PublishedAt.UTC()}
}

func versionDetail(s *models.Snapshot) *VersionDetail {
	return &VersionDetail{
		VersionInfo: *versionInfo(s),
		Format:      board.DetectFormat(s.State).String(),
		State:       board.Normalize(s.State),
	}
}
