package schedule

import (
	"fmt"
	"time"
)

// Date 不带时区的日历日期
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf 返回 t 在 loc 中的日历日期
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate 解析 YYYY-MM-DD
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// AddDays 按日历天数偏移（与时区无关）
func (d Date) AddDays(n int) Date {
	t := d.utc().AddDate(0, 0, n)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Weekday 星期几
func (d Date) Weekday() time.Weekday { return d.utc().Weekday() }

// Before 是否早于 o
func (d Date) Before(o Date) bool { return d.utc().Before(o.utc()) }

// After 是否晚于 o
func (d Date) After(o Date) bool { return d.utc().After(o.utc()) }

// IsZero 是否为零值
func (d Date) IsZero() bool { return d.Year == 0 && d.Month == 0 && d.Day == 0 }

// String 格式化为 YYYY-MM-DD
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
