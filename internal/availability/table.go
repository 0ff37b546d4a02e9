// Package availability 计算面试可用性表：每个时间段有哪些干事可用、是否满足人数阈值，
// 以及指定干事的共同可用时间段。计算为纯函数，可在后台 Worker 中执行。
package availability

import (
	"sort"

	"github.com/samber/lo"
)

// Slot 时间段（可用性表的一行）
type Slot struct {
	ID        string `json:"time_slot_id"`
	Date      string `json:"date"`       // YYYY-MM-DD
	StartTime string `json:"start_time"` // HH:MM
	EndTime   string `json:"end_time"`
}

// Selection 干事勾选的一个时间段
type Selection struct {
	OfficerID string `json:"officer_id"`
	SlotID    string `json:"time_slot_id"`
}

// Options 计算参数
type Options struct {
	// MinOfficers 满足面试所需的最少可用干事数
	MinOfficers int `json:"min_officers"`
	// Officers 非空时只统计这些干事
	Officers []string `json:"officer_ids,omitempty"`
	// RequiredOfficers 非空时计算这些干事的共同可用时间段
	RequiredOfficers []string `json:"required_officer_ids,omitempty"`
}

// Row 单个时间段的统计结果
type Row struct {
	Slot
	OfficerIDs     []string `json:"officer_ids"`
	Count          int      `json:"count"`
	MeetsThreshold bool     `json:"meets_threshold"`
	HasRequired    bool     `json:"has_required"`
}

// Table 可用性表
type Table struct {
	Rows []Row `json:"rows"`
	// Intersection 所有 RequiredOfficers 都可用的时间段 ID（按行顺序）
	Intersection []string `json:"intersection"`
	// OfficerCount 在表内至少勾选了一个时间段的干事数
	OfficerCount int `json:"officer_count"`
}

// Calculate 构建可用性表
// 不在 slots 中的勾选会被忽略；重复勾选只计一次；
// 输出与 slots、selections 的输入顺序无关（行按日期、开始时间、ID 排序）。
func Calculate(slots []Slot, selections []Selection, opts Options) Table {
	rows := make([]Row, 0, len(slots))
	index := make(map[string]int, len(slots))

	ordered := make([]Slot, len(slots))
	copy(ordered, slots)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})

	for _, s := range ordered {
		if _, dup := index[s.ID]; dup {
			continue
		}
		index[s.ID] = len(rows)
		rows = append(rows, Row{Slot: s, OfficerIDs: []string{}})
	}

	var allowed map[string]struct{}
	if len(opts.Officers) > 0 {
		allowed = lo.SliceToMap(opts.Officers, func(id string) (string, struct{}) { return id, struct{}{} })
	}

	// slotID -> officer 集合
	picked := make(map[string]map[string]struct{}, len(rows))
	officers := make(map[string]struct{})
	for _, sel := range selections {
		if _, ok := index[sel.SlotID]; !ok {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[sel.OfficerID]; !ok {
				continue
			}
		}
		set, ok := picked[sel.SlotID]
		if !ok {
			set = make(map[string]struct{})
			picked[sel.SlotID] = set
		}
		set[sel.OfficerID] = struct{}{}
		officers[sel.OfficerID] = struct{}{}
	}

	required := lo.Uniq(opts.RequiredOfficers)
	intersection := []string{}

	for i := range rows {
		set := picked[rows[i].ID]
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		rows[i].OfficerIDs = ids
		rows[i].Count = len(ids)
		rows[i].MeetsThreshold = len(ids) >= opts.MinOfficers

		if len(required) > 0 {
			rows[i].HasRequired = lo.EveryBy(required, func(id string) bool {
				_, ok := set[id]
				return ok
			})
			if rows[i].HasRequired {
				intersection = append(intersection, rows[i].ID)
			}
		}
	}

	return Table{
		Rows:         rows,
		Intersection: intersection,
		OfficerCount: len(officers),
	}
}

// Candidates 返回满足阈值的时间段行
func (t Table) Candidates() []Row {
	return lo.Filter(t.Rows, func(r Row, _ int) bool { return r.MeetsThreshold })
}
