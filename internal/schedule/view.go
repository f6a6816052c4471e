package schedule

import "time"

// ViewMode 日历视图模式
type ViewMode string

const (
	ViewDay  ViewMode = "day"
	ViewWeek ViewMode = "week"
)

// ParseViewMode 解析视图模式；空字符串默认为周视图
func ParseViewMode(s string) (ViewMode, error) {
	switch ViewMode(s) {
	case "", ViewWeek:
		return ViewWeek, nil
	case ViewDay:
		return ViewDay, nil
	default:
		return "", ErrInvalidViewMode
	}
}

// CalendarView 日历的显示状态（纯值）
type CalendarView struct {
	Date      Date
	Mode      ViewMode
	Timezone  string       // 空字符串 = 服务器本地时区
	WeekStart time.Weekday // 周视图的起始日，零值为周日
}

// Location 解析视图时区
func (v CalendarView) Location() (*time.Location, error) {
	return ResolveLocation(v.Timezone)
}

// Days 返回视图中可见的日期
func (v CalendarView) Days() []Date {
	if v.Mode == ViewDay {
		return []Date{v.Date}
	}
	offset := (int(v.Date.Weekday()) - int(v.WeekStart) + 7) % 7
	first := v.Date.AddDays(-offset)
	days := make([]Date, 7)
	for i := range days {
		days[i] = first.AddDays(i)
	}
	return days
}

// Range 返回视图覆盖的绝对时间区间 [start, end)
func (v CalendarView) Range(anchor *Anchor, loc *time.Location) (time.Time, time.Time) {
	days := v.Days()
	start := anchor.ToInstant(days[0], 0, 0, loc)
	end := anchor.ToInstant(days[len(days)-1].AddDays(1), 0, 0, loc)
	return start, end
}
