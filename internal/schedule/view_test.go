package schedule

import (
	"testing"
	"time"
)

func TestCalendarView_Days(t *testing.T) {
	wed := Date{2024, time.May, 8}

	week := CalendarView{Date: wed, Mode: ViewWeek}.Days()
	if len(week) != 7 || week[0] != (Date{2024, time.May, 5}) || week[6] != (Date{2024, time.May, 11}) {
		t.Errorf("周日起始的周视图应为 05-05 至 05-11，实际 %v", week)
	}

	monday := CalendarView{Date: wed, Mode: ViewWeek, WeekStart: time.Monday}.Days()
	if monday[0] != (Date{2024, time.May, 6}) {
		t.Errorf("周一起始的周视图应从 05-06 开始，实际 %s", monday[0])
	}

	day := CalendarView{Date: wed, Mode: ViewDay}.Days()
	if len(day) != 1 || day[0] != wed {
		t.Errorf("日视图应只有当天，实际 %v", day)
	}
}

func TestCalendarView_Range(t *testing.T) {
	loc := mustLoad(t, "Asia/Shanghai")
	v := CalendarView{Date: Date{2024, time.May, 8}, Mode: ViewDay, Timezone: "Asia/Shanghai"}

	start, end := v.Range(NewAnchor(time.UTC), loc)
	if want := time.Date(2024, time.May, 7, 16, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("期望开始 %v，实际 %v", want, start)
	}
	if end.Sub(start) != 24*time.Hour {
		t.Errorf("日视图应覆盖 24 小时，实际 %v", end.Sub(start))
	}
}

func TestParseViewMode(t *testing.T) {
	if m, err := ParseViewMode(""); err != nil || m != ViewWeek {
		t.Errorf("空值应默认为周视图，实际 %v, %v", m, err)
	}
	if _, err := ParseViewMode("month"); err == nil {
		t.Error("month 应解析失败")
	}
}
