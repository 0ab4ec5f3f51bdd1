package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
)

// Format 快照载荷的存储形状
type Format int

const (
	// FormatSection 当前形状：每个区块是 {items, speed}
	FormatSection Format = iota
	// FormatLegacy 旧形状：区块直接是条目数组，没有 speed
	FormatLegacy
)

func (f Format) String() string {
	if f == FormatLegacy {
		return "legacy"
	}
	return "section"
}

const (
	keyConfig       = "config"
	keyStatus       = "statusSection"
	keyAnnouncement = "announcementSection"
	keyAdvisory     = "advisorySection"
)

var sectionKeys = [...]string{keyStatus, keyAnnouncement, keyAdvisory}

// DetectFormat 判断载荷形状：任意一个区块位置上是数组即视为旧形状。
// 无法解析的载荷按当前形状处理。
func DetectFormat(raw []byte) Format {
	top, ok := decodeTop(raw)
	if !ok {
		return FormatSection
	}
	return detectFormat(top)
}

func detectFormat(top map[string]json.RawMessage) Format {
	for _, k := range sectionKeys {
		if isArray(top[k]) {
			return FormatLegacy
		}
	}
	return FormatSection
}

// Normalize 把任意形状的快照载荷转换为规范化状态。
// 从不返回错误：缺失字段取默认值，无法识别的部分按空处理，历史数据始终可查看。
func Normalize(raw []byte) *State {
	st := EmptyState()
	top, ok := decodeTop(raw)
	if !ok {
		return st
	}

	var cfgKeys map[string]json.RawMessage
	st.Config, cfgKeys = decodeConfig(top[keyConfig])
	st.Carried = map[string]bool{}
	for _, f := range textFields {
		if _, ok := cfgKeys[f]; ok {
			st.Carried[f] = true
		}
	}

	var statusOK, annOK, advOK bool
	switch detectFormat(top) {
	case FormatLegacy:
		st.StatusSection, statusOK = wrapLegacy[StatusItem](top[keyStatus], DefaultStatusPageSeconds)
		st.AnnouncementSection, annOK = wrapLegacy[AnnouncementItem](top[keyAnnouncement], DefaultAnnouncementScrollSeconds)
		st.AdvisorySection, advOK = wrapLegacy[AdvisoryItem](top[keyAdvisory], DefaultAdvisoryTickerSeconds)
	default:
		st.StatusSection, statusOK = decodeSection[StatusItem](top[keyStatus], DefaultStatusPageSeconds)
		st.AnnouncementSection, annOK = decodeSection[AnnouncementItem](top[keyAnnouncement], DefaultAnnouncementScrollSeconds)
		st.AdvisorySection, advOK = decodeSection[AdvisoryItem](top[keyAdvisory], DefaultAdvisoryTickerSeconds)
	}
	// 区块上没有 speed 时（旧形状总是如此）退回配置对象里的速度字段
	carrySpeed(st, cfgKeys, FieldStatusPageSeconds, &st.StatusSection.Speed, statusOK)
	carrySpeed(st, cfgKeys, FieldAnnouncementScrollSeconds, &st.AnnouncementSection.Speed, annOK)
	carrySpeed(st, cfgKeys, FieldAdvisoryTickerSeconds, &st.AdvisorySection.Speed, advOK)

	for i := range st.StatusSection.Items {
		st.StatusSection.Items[i].LastChecked = st.StatusSection.Items[i].LastChecked.UTC()
	}
	for i := range st.AnnouncementSection.Items {
		if st.AnnouncementSection.Items[i].Details == nil {
			st.AnnouncementSection.Items[i].Details = []string{}
		}
	}
	return st
}

// Marshal 序列化状态，发布时写入快照
func Marshal(st *State) ([]byte, error) {
	if st == nil {
		st = EmptyState()
	}
	return json.Marshal(st)
}

func decodeTop(raw []byte) (map[string]json.RawMessage, bool) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, false
	}
	return top, true
}

var textFields = [...]string{FieldBuildingNumber, FieldBuildingName, FieldSubtitle}

// decodeConfig 同时返回配置对象里出现过的 key，用于区分“缺失”和“零值”
func decodeConfig(raw json.RawMessage) (*Config, map[string]json.RawMessage) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, nil
	}
	var c Config
	if !lenientUnmarshal(raw, &c) {
		return nil, nil
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return &c, nil
	}
	for k, v := range keys {
		if isNull(v) {
			delete(keys, k)
		}
	}
	return &c, keys
}

// carrySpeed 记录速度字段是否由快照携带；区块上没有时尝试配置对象里的同名字段
func carrySpeed(st *State, cfgKeys map[string]json.RawMessage, field string, speed *int, fromSection bool) {
	if fromSection {
		st.Carried[field] = true
		return
	}
	if v, ok := parseSpeed(cfgKeys[field]); ok {
		*speed = v
		st.Carried[field] = true
	}
}

// wrapLegacy 旧形状：数组包装为 {items, speed: 默认值}；不是数组时尽力按当前形状解析
func wrapLegacy[T any](raw json.RawMessage, def int) (Section[T], bool) {
	if isArray(raw) {
		return Section[T]{Items: decodeItems[T](raw), Speed: def}, false
	}
	return decodeSection[T](raw, def)
}

// decodeSection 第二个返回值表示区块上是否带有可用的 speed
func decodeSection[T any](raw json.RawMessage, def int) (Section[T], bool) {
	sec := Section[T]{Items: []T{}, Speed: def}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return sec, false
	}
	switch raw[0] {
	case '[':
		sec.Items = decodeItems[T](raw)
	case '{':
		var obj struct {
			Items json.RawMessage `json:"items"`
			Speed json.RawMessage `json:"speed"`
		}
		if !lenientUnmarshal(raw, &obj) {
			return sec, false
		}
		sec.Items = decodeItems[T](obj.Items)
		if v, ok := parseSpeed(obj.Speed); ok {
			sec.Speed = v
			return sec, true
		}
	}
	return sec, false
}

// parseSpeed 只接受有限的非负数
func parseSpeed(raw json.RawMessage) (int, bool) {
	var f float64
	if len(raw) == 0 || isNull(raw) || json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return int(f), true
}

// decodeItems 逐条解析，单条无法解析时跳过
func decodeItems[T any](raw json.RawMessage) []T {
	out := []T{}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return out
	}
	for _, e := range elems {
		e = bytes.TrimSpace(e)
		if len(e) == 0 || e[0] != '{' {
			continue
		}
		var item T
		if !lenientUnmarshal(e, &item) {
			continue
		}
		out = append(out, item)
	}
	return out
}

// lenientUnmarshal 忽略字段类型不匹配（encoding/json 遇到类型错误会继续填充其余字段）
func lenientUnmarshal(raw []byte, v any) bool {
	err := json.Unmarshal(raw, v)
	if err == nil {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}
