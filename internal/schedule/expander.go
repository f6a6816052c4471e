package schedule

import (
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"tutoros/backend/internal/model"
)

// Template 每周重复模板：一个原型课程加上包含当天在内的截止日期
type Template struct {
	Prototype model.Occurrence
	Frequency string // 目前只支持 weekly
	EndDate   Date
	Location  *time.Location // 原型墙上时间所属时区，截止日按该时区的 23:59:59.999 计算
}

// Expander 系列展开器
type Expander struct {
	MaxOccurrences int // <= 0 表示不限制
}

// Expand 展开为共享同一 series_id 的具体课程列表，按开始时间升序
//
// 截止日早于首次课程日期时返回空列表和 ErrSeriesEndBeforeStart。
// 每周步进保持原型在 Location 中的墙上时间，跨夏令时也不漂移。
func (e Expander) Expand(tpl Template) ([]model.Occurrence, error) {
	proto := tpl.Prototype
	if !proto.EndAt.After(proto.StartAt) {
		return nil, ErrInvalidTimeRange
	}
	if tpl.Frequency != "" && tpl.Frequency != model.RecurrencePatternWeekly {
		return nil, ErrUnsupportedFrequency
	}
	loc := tpl.Location
	if loc == nil {
		loc = time.Local
	}

	dtstart := proto.StartAt.In(loc)
	until := time.Date(tpl.EndDate.Year, tpl.EndDate.Month, tpl.EndDate.Day, 23, 59, 59, int(999*time.Millisecond), loc)
	if until.Before(dtstart) {
		return []model.Occurrence{}, ErrSeriesEndBeforeStart
	}

	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.WEEKLY,
		Dtstart: dtstart,
		Until:   until,
	})
	if err != nil {
		return nil, err
	}
	var starts []time.Time
	next := rule.Iterator()
	for s, ok := next(); ok; s, ok = next() {
		if e.MaxOccurrences > 0 && len(starts) == e.MaxOccurrences {
			return nil, ErrSeriesTooLong
		}
		starts = append(starts, s)
	}

	seriesID := uuid.NewString()
	pattern := model.RecurrencePatternWeekly
	dur := proto.Duration()
	status := proto.Status
	if status == "" {
		status = model.OccurrenceStatusScheduled
	}

	out := make([]model.Occurrence, 0, len(starts))
	for _, s := range starts {
		occ := proto
		occ.OccurrenceID = ""
		sid := seriesID
		occ.SeriesID = &sid
		p := pattern
		occ.RecurrencePattern = &p
		occ.StartAt = s.UTC()
		occ.EndAt = s.Add(dur).UTC()
		occ.Status = status
		out = append(out, occ)
	}
	return out, nil
}
