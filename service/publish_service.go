package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gm2211/hudson-dashboard/board"
	"github.com/gm2211/hudson-dashboard/models"
	"github.com/gm2211/hudson-dashboard/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DraftRef 对比时表示“当前草稿”的版本号写法
const DraftRef = "draft"

// SectionChanges 各区块是否有未发布的修改
type SectionChanges struct {
	Config        bool `json:"config"`
	Status        bool `json:"status"`
	Announcements bool `json:"announcements"`
	Advisories    bool `json:"advisories"`
}

// DraftStatus 草稿相对最新发布版本的状态
type DraftStatus struct {
	HasChanges      bool              `json:"hasChanges"`
	SectionChanges  SectionChanges    `json:"sectionChanges"`
	LatestPublished *VersionInfo      `json:"latestPublished"` // 尚未发布过时为 nil
	CurrentDraft    *board.State      `json:"currentDraft"`
	Diff            *board.DiffResult `json:"diff"`
}

// PublishResult 发布结果
type PublishResult struct {
	Version     int          `json:"version"`
	PublishedAt time.Time    `json:"publishedAt"`
	State       *board.State `json:"state"`
}

// ItemSelection 按集合列出的条目 id
type ItemSelection struct {
	Status        []uint64 `json:"status"`
	Announcements []uint64 `json:"announcements"`
	Advisories    []uint64 `json:"advisories"`
}

// Empty 三个集合都没有 id
func (s ItemSelection) Empty() bool {
	return len(s.Status) == 0 && len(s.Announcements) == 0 && len(s.Advisories) == 0
}

// VersionRef 对比的第二个操作数：某个版本号或当前草稿
type VersionRef struct {
	Draft   bool
	Version int
}

// ParseVersionRef 解析 "draft" 或正整数版本号
func ParseVersionRef(s string) (VersionRef, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, DraftRef) {
		return VersionRef{Draft: true}, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return VersionRef{}, validationf("invalid version %q", s)
	}
	return VersionRef{Version: v}, nil
}

func (r VersionRef) String() string {
	if r.Draft {
		return DraftRef
	}
	return strconv.Itoa(r.Version)
}

// PublishService 发布编排：发布、放弃草稿、整体/选择性恢复、历史清理、版本对比。
// 每个操作都在一个事务里完成，失败时草稿和历史都保持原样。
type PublishService struct {
	*Service
	daos draftDAOs
}

func NewPublishService(s *Service) *PublishService {
	return &PublishService{Service: s, daos: newDraftDAOs(s.DB)}
}

// GetDraftStatus 当前草稿与最新发布版本的差异
func (s *PublishService) GetDraftStatus(ctx context.Context) (*DraftStatus, error) {
	var out *DraftStatus
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := s.daos.in(tx)
		draft, err := d.project()
		if err != nil {
			return err
		}
		latest, err := d.snapshots.Latest()
		if isRecordNotFound(err) {
			// 没有发布过，什么都算修改
			out = &DraftStatus{
				HasChanges:     true,
				SectionChanges: SectionChanges{Config: true, Status: true, Announcements: true, Advisories: true},
				CurrentDraft:   draft,
				Diff:           board.Diff(board.EmptyState(), draft),
			}
			return nil
		}
		if err != nil {
			return err
		}

		diff := board.Diff(board.Normalize(latest.State), draft)
		sc := SectionChanges{
			Config:        len(diff.Config) > 0,
			Status:        !diff.Status.Empty() || draft.HasMarkedStatus(),
			Announcements: !diff.Announcements.Empty() || draft.HasMarkedAnnouncements(),
			Advisories:    !diff.Advisories.Empty() || draft.HasMarkedAdvisories(),
		}
		out = &DraftStatus{
			HasChanges:      sc.Config || sc.Status || sc.Announcements || sc.Advisories,
			SectionChanges:  sc,
			LatestPublished: versionInfo(latest),
			CurrentDraft:    draft,
			Diff:            diff,
		}
		return nil
	})
	if err != nil {
		return nil, classify("draft status", err)
	}
	return out, nil
}

// Publish 物理删除待删除条目，把草稿保存为新版本，提交后通知订阅方。
// 草稿没有修改时同样会生成新版本。
func (s *PublishService) Publish(ctx context.Context) (*PublishResult, error) {
	var (
		res    *PublishResult
		purged int64
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := s.daos.in(tx)
		n, err := d.deleteMarked()
		if err != nil {
			return err
		}
		purged = n

		st, err := d.project()
		if err != nil {
			return err
		}
		last, err := d.snapshots.MaxVersion(true)
		if err != nil {
			return err
		}
		payload, err := board.Marshal(st)
		if err != nil {
			return err
		}
		snap := &models.Snapshot{
			Version:     last + 1,
			State:       datatypes.JSON(payload),
			PublishedAt: s.now(),
		}
		if err := d.snapshots.Create(snap); err != nil {
			return err
		}
		res = &PublishResult{Version: snap.Version, PublishedAt: snap.PublishedAt, State: st}
		return nil
	})
	if err != nil {
		return nil, classify("publish", err)
	}

	s.log().Info("draft published",
		zap.Int("version", res.Version),
		zap.Int64("purged_items", purged),
	)
	if s.Notify != nil {
		s.Notify.Published(ctx, res.Version, res.PublishedAt)
	}
	return res, nil
}

// Discard 用最新发布版本覆盖草稿；还没有发布过时什么都不做
func (s *PublishService) Discard(ctx context.Context) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := s.daos.in(tx)
		latest, err := d.snapshots.Latest()
		if isRecordNotFound(err) {
			return nil
		}
		if err != nil {
			return err
		}
		return d.replaceDraft(board.Normalize(latest.State))
	})
	if err != nil {
		return classify("discard draft", err)
	}
	s.log().Info("draft discarded")
	return nil
}

// RestoreVersion 用指定版本覆盖草稿。不生成新版本，需要再发布才会上线。
func (s *PublishService) RestoreVersion(ctx context.Context, version int) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := s.daos.in(tx)
		st, err := d.loadVersion(version)
		if err != nil {
			return err
		}
		return d.replaceDraft(st)
	})
	if err != nil {
		return classify("restore version", err)
	}
	s.log().Info("draft restored from version", zap.Int("version", version))
	return nil
}

// RestoreItems 从指定版本恢复选中的条目（保持原 id），其它行不受影响。
// 版本中不存在的 id 直接跳过，不出现在返回结果里。
func (s *PublishService) RestoreItems(ctx context.Context, version int, sel ItemSelection) (*ItemSelection, error) {
	if sel.Empty() {
		return nil, validationf("no items selected")
	}
	var restored *ItemSelection
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		d := s.daos.in(tx)
		st, err := d.loadVersion(version)
		if err != nil {
			return err
		}
		out := &ItemSelection{}
		if out.Status, err = restoreSelected(d.status, sel.Status, st.FindStatus, statusRestoreRow); err != nil {
			return err
		}
		if out.Announcements, err = restoreSelected(d.announcements, sel.Announcements, st.FindAnnouncement, announcementRestoreRow); err != nil {
			return err
		}
		if out.Advisories, err = restoreSelected(d.advisories, sel.Advisories, st.FindAdvisory, advisoryRestoreRow); err != nil {
			return err
		}
		restored = out
		return nil
	})
	if err != nil {
		return nil, classify("restore items", err)
	}
	s.log().Info("draft items restored",
		zap.Int("version", version),
		zap.Int("status", len(restored.Status)),
		zap.Int("announcements", len(restored.Announcements)),
		zap.Int("advisories", len(restored.Advisories)),
	)
	return restored, nil
}

// DeleteVersion 删除一个版本；唯一剩下的版本不能删除。其它版本号保持不变。
func (s *PublishService) DeleteVersion(ctx context.Context, version int) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshots := s.daos.snapshots.WithDB(tx)
		if _, err := snapshots.FindByVersion(version); err != nil {
			if isRecordNotFound(err) {
				return notFoundf("version %d", version)
			}
			return err
		}
		n, err := snapshots.Count()
		if err != nil {
			return err
		}
		if n <= 1 {
			return validationf("cannot delete the only remaining version")
		}
		_, err = snapshots.DeleteByVersion(version)
		return err
	})
	if err != nil {
		return classify("delete version", err)
	}
	s.log().Info("version deleted", zap.Int("version", version))
	return nil
}

// PurgeHistory 只保留最新版本，返回删除的数量
func (s *PublishService) PurgeHistory(ctx context.Context) (int64, error) {
	var deleted int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snapshots := s.daos.snapshots.WithDB(tx)
		latest, err := snapshots.MaxVersion(true)
		if err != nil {
			return err
		}
		if latest == 0 {
			return nil
		}
		deleted, err = snapshots.DeleteAllExcept(latest)
		return err
	})
	if err != nil {
		return 0, classify("purge history", err)
	}
	s.log().Info("history purged", zap.Int64("deleted", deleted))
	return deleted, nil
}

// DiffVersions 对比版本 from 与 to（版本或当前草稿）
func (s *PublishService) DiffVersions(ctx context.Context, from int, to VersionRef) (*board.DiffResult, error) {
	var d *board.DiffResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		daos := s.daos.in(tx)
		a, err := daos.loadVersion(from)
		if err != nil {
			return err
		}
		var b *board.State
		if to.Draft {
			b, err = daos.project()
		} else {
			b, err = daos.loadVersion(to.Version)
		}
		if err != nil {
			return err
		}
		d = board.Diff(a, b)
		return nil
	})
	if err != nil {
		return nil, classify("diff versions", err)
	}
	return d, nil
}

// loadVersion 读取并归一化指定版本
func (d draftDAOs) loadVersion(version int) (*board.State, error) {
	snap, err := d.snapshots.FindByVersion(version)
	if isRecordNotFound(err) {
		return nil, notFoundf("version %d", version)
	}
	if err != nil {
		return nil, err
	}
	return board.Normalize(snap.State), nil
}

func (d draftDAOs) deleteMarked() (int64, error) {
	a, err := d.status.DeleteMarked()
	if err != nil {
		return 0, err
	}
	b, err := d.announcements.DeleteMarked()
	if err != nil {
		return 0, err
	}
	c, err := d.advisories.DeleteMarked()
	if err != nil {
		return 0, err
	}
	return a + b + c, nil
}

// replaceDraft 清空三个集合，按原 id 原样重建 st 中的条目，并同步配置。
// 配置只写快照实际携带的字段，其余保持当前值；当前没有配置行时按快照新建。
func (d draftDAOs) replaceDraft(st *board.State) error {
	if err := replaceAll(d.status, st.StatusSection.Items, statusRestoreRow); err != nil {
		return err
	}
	if err := replaceAll(d.announcements, st.AnnouncementSection.Items, announcementRestoreRow); err != nil {
		return err
	}
	if err := replaceAll(d.advisories, st.AdvisorySection.Items, advisoryRestoreRow); err != nil {
		return err
	}

	// 快照没有配置对象时，区块速度只是默认值，不动当前配置
	if st.Config == nil {
		return nil
	}
	c, err := d.config.Get()
	if err != nil {
		return err
	}
	if c == nil {
		c = &models.BoardConfig{}
	}
	if !applyCarried(c, st) {
		return nil
	}
	return d.config.Save(c)
}

// applyCarried 把快照携带的配置字段写到 c，返回是否需要保存。
// 新建的配置行（ID 为 0）写入全部字段，缺失的速度即区块上的默认值。
func applyCarried(c *models.BoardConfig, st *board.State) bool {
	type field struct {
		name string
		set  func()
	}
	var text board.Config
	if st.Config != nil {
		text = *st.Config
	}
	fields := []field{
		{board.FieldBuildingNumber, func() { c.BuildingNumber = text.BuildingNumber }},
		{board.FieldBuildingName, func() { c.BuildingName = text.BuildingName }},
		{board.FieldSubtitle, func() { c.Subtitle = text.Subtitle }},
		{board.FieldAnnouncementScrollSeconds, func() { c.AnnouncementScrollSeconds = st.AnnouncementSection.Speed }},
		{board.FieldAdvisoryTickerSeconds, func() { c.AdvisoryTickerSeconds = st.AdvisorySection.Speed }},
		{board.FieldStatusPageSeconds, func() { c.StatusPageSeconds = st.StatusSection.Speed }},
	}
	fresh := c.ID == 0
	changed := false
	for _, f := range fields {
		if fresh || st.Carries(f.name) {
			f.set()
			changed = true
		}
	}
	return changed
}

func replaceAll[R repository.Row, I any](dao *repository.CollectionDAO[R], items []I, toRow func(I) R) error {
	if _, err := dao.DeleteAll(); err != nil {
		return err
	}
	return dao.CreateMany(mapSlice(items, toRow))
}

// restoreSelected 对 ids 中在快照里存在的条目：删除当前同 id 行并原样重建
func restoreSelected[R repository.Row, I any](
	dao *repository.CollectionDAO[R],
	ids []uint64,
	find func(uint64) (I, bool),
	toRow func(I) R,
) ([]uint64, error) {
	restored := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		it, ok := find(id)
		if !ok {
			continue
		}
		if _, err := dao.DeleteByID(id); err != nil {
			return nil, err
		}
		row := toRow(it)
		if err := dao.Create(&row); err != nil {
			return nil, err
		}
		restored = append(restored, id)
	}
	return restored, nil
}

func statusRestoreRow(it board.StatusItem) models.StatusRow {
	it.MarkedForDeletion = false
	return statusToRow(it)
}

func announcementRestoreRow(it board.AnnouncementItem) models.AnnouncementCard {
	it.MarkedForDeletion = false
	return announcementToRow(it)
}

func advisoryRestoreRow(it board.AdvisoryItem) models.Advisory {
	it.MarkedForDeletion = false
	return advisoryToRow(it)
}
