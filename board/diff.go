package board

import (
	"slices"
	"sort"
	"strconv"
)

// Change 同一 id 在两份状态中的变化。Fields 为界面展示用的逐字段差异。
type Change[T any] struct {
	ID     uint64   `json:"id"`
	From   T        `json:"from"`
	To     T        `json:"to"`
	Fields []string `json:"fields"`
}

// CollectionDiff 单个集合的差异
type CollectionDiff[T any] struct {
	Added   []T         `json:"added"`
	Removed []T         `json:"removed"`
	Changed []Change[T] `json:"changed"`
}

// Empty 没有任何新增/删除/修改
func (d CollectionDiff[T]) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// ConfigChange 配置的单个字段变化
type ConfigChange struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// DiffResult 两份状态的完整差异
type DiffResult struct {
	Config        []ConfigChange                   `json:"config"`
	Status        CollectionDiff[StatusItem]       `json:"status"`
	Announcements CollectionDiff[AnnouncementItem] `json:"announcements"`
	Advisories    CollectionDiff[AdvisoryItem]     `json:"advisories"`
}

// Empty 两份状态无差异
func (d *DiffResult) Empty() bool {
	return len(d.Config) == 0 && d.Status.Empty() && d.Announcements.Empty() && d.Advisories.Empty()
}

// 配置字段名（也是配置差异的排序键）
const (
	FieldBuildingNumber            = "buildingNumber"
	FieldBuildingName              = "buildingName"
	FieldSubtitle                  = "subtitle"
	FieldAnnouncementScrollSeconds = "announcementScrollSeconds"
	FieldAdvisoryTickerSeconds     = "advisoryTickerSeconds"
	FieldStatusPageSeconds         = "statusPageSeconds"
)

// Diff 计算 from -> to 的差异。
// 被标记删除的条目不算“存在”：它在 to 中出现时按删除处理。
// 输出在各分组内按 id（配置按字段名）排序，相同输入得到相同输出。
func Diff(from, to *State) *DiffResult {
	if from == nil {
		from = EmptyState()
	}
	if to == nil {
		to = EmptyState()
	}
	return &DiffResult{
		Config:        diffConfig(from, to),
		Status:        diffCollection(from.StatusSection.Items, to.StatusSection.Items, statusAccess),
		Announcements: diffCollection(from.AnnouncementSection.Items, to.AnnouncementSection.Items, announcementAccess),
		Advisories:    diffCollection(from.AdvisorySection.Items, to.AdvisorySection.Items, advisoryAccess),
	}
}

// accessor 描述一种条目如何取 id、是否已标记、以及哪些字段参与比较
type accessor[T any] struct {
	id     func(T) uint64
	marked func(T) bool
	// semantic 决定“是否变化”的字段
	semantic func(a, b T) bool
	// fields 变化条目上展示的逐字段差异，可包含不参与判定的字段
	fields func(a, b T) []string
}

var statusAccess = accessor[StatusItem]{
	id:     func(it StatusItem) uint64 { return it.ID },
	marked: func(it StatusItem) bool { return it.MarkedForDeletion },
	semantic: func(a, b StatusItem) bool {
		return a.Name == b.Name && a.Status == b.Status && a.Notes == b.Notes
	},
	fields: func(a, b StatusItem) []string {
		var out []string
		if a.Name != b.Name {
			out = append(out, "name")
		}
		if a.Status != b.Status {
			out = append(out, "status")
		}
		if a.Notes != b.Notes {
			out = append(out, "notes")
		}
		// lastChecked 每次编辑都会变，只在条目本身已有变化时展示
		if !a.LastChecked.Equal(b.LastChecked) {
			out = append(out, "lastChecked")
		}
		return out
	},
}

var announcementAccess = accessor[AnnouncementItem]{
	id:     func(it AnnouncementItem) uint64 { return it.ID },
	marked: func(it AnnouncementItem) bool { return it.MarkedForDeletion },
	semantic: func(a, b AnnouncementItem) bool {
		return a.Title == b.Title && a.Subtitle == b.Subtitle && a.ImageRef == b.ImageRef &&
			slices.Equal(a.Details, b.Details)
	},
	fields: func(a, b AnnouncementItem) []string {
		var out []string
		if a.Title != b.Title {
			out = append(out, "title")
		}
		if a.Subtitle != b.Subtitle {
			out = append(out, "subtitle")
		}
		if a.ImageRef != b.ImageRef {
			out = append(out, "imageRef")
		}
		if !slices.Equal(a.Details, b.Details) {
			out = append(out, "details")
		}
		return out
	},
}

var advisoryAccess = accessor[AdvisoryItem]{
	id:     func(it AdvisoryItem) uint64 { return it.ID },
	marked: func(it AdvisoryItem) bool { return it.MarkedForDeletion },
	semantic: func(a, b AdvisoryItem) bool {
		return a.Label == b.Label && a.Message == b.Message && a.Active == b.Active
	},
	fields: func(a, b AdvisoryItem) []string {
		var out []string
		if a.Label != b.Label {
			out = append(out, "label")
		}
		if a.Message != b.Message {
			out = append(out, "message")
		}
		if a.Active != b.Active {
			out = append(out, "active")
		}
		return out
	},
}

func diffCollection[T any](from, to []T, acc accessor[T]) CollectionDiff[T] {
	out := CollectionDiff[T]{Added: []T{}, Removed: []T{}, Changed: []Change[T]{}}

	fromMap := indexPresent(from, acc)
	toMap := indexPresent(to, acc)

	for id, t := range toMap {
		f, ok := fromMap[id]
		if !ok {
			out.Added = append(out.Added, t)
			continue
		}
		if acc.semantic(f, t) {
			continue
		}
		out.Changed = append(out.Changed, Change[T]{ID: acc.id(t), From: f, To: t, Fields: acc.fields(f, t)})
	}
	for id, f := range fromMap {
		if _, ok := toMap[id]; !ok {
			out.Removed = append(out.Removed, f)
		}
	}

	sort.Slice(out.Added, func(i, j int) bool { return acc.id(out.Added[i]) < acc.id(out.Added[j]) })
	sort.Slice(out.Removed, func(i, j int) bool { return acc.id(out.Removed[i]) < acc.id(out.Removed[j]) })
	sort.Slice(out.Changed, func(i, j int) bool { return out.Changed[i].ID < out.Changed[j].ID })
	return out
}

// indexPresent id -> 条目，跳过被标记删除的条目
func indexPresent[T any](items []T, acc accessor[T]) map[uint64]T {
	m := make(map[uint64]T, len(items))
	for _, it := range items {
		if acc.marked(it) {
			continue
		}
		m[acc.id(it)] = it
	}
	return m
}

func diffConfig(from, to *State) []ConfigChange {
	a, b := configValues(from), configValues(to)
	out := []ConfigChange{}
	for field, fv := range a {
		if tv := b[field]; fv != tv {
			out = append(out, ConfigChange{Field: field, From: fv, To: tv})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// configValues 配置字段的字符串值；无配置时文本字段为空串，速度取区块上的值
func configValues(st *State) map[string]string {
	m := map[string]string{
		FieldBuildingNumber:            "",
		FieldBuildingName:              "",
		FieldSubtitle:                  "",
		FieldAnnouncementScrollSeconds: strconv.Itoa(st.AnnouncementSection.Speed),
		FieldAdvisoryTickerSeconds:     strconv.Itoa(st.AdvisorySection.Speed),
		FieldStatusPageSeconds:         strconv.Itoa(st.StatusSection.Speed),
	}
	if st.Config != nil {
		m[FieldBuildingNumber] = st.Config.BuildingNumber
		m[FieldBuildingName] = st.Config.BuildingName
		m[FieldSubtitle] = st.Config.Subtitle
	}
	return m
}
