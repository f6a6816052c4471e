package schedule

import (
	"errors"
	"testing"
	"time"

	"tutoros/backend/internal/model"
)

func prototype(start time.Time, dur time.Duration) model.Occurrence {
	return model.Occurrence{
		TenantScoped: model.TenantScoped{TenantID: "t1"},
		OwnerID:      "tutor-1",
		CourseID:     "course-1",
		Title:        "数学一对一",
		StartAt:      start,
		EndAt:        start.Add(dur),
	}
}

func TestExpand_InclusiveEndDate(t *testing.T) {
	loc := mustLoad(t, "Asia/Shanghai")
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, loc) // 周一

	occs, err := Expander{}.Expand(Template{
		Prototype: prototype(start, time.Hour),
		Frequency: model.RecurrencePatternWeekly,
		EndDate:   Date{2024, time.January, 15},
		Location:  loc,
	})
	if err != nil {
		t.Fatalf("Expand 应成功: %v", err)
	}
	if len(occs) != 2 {
		t.Fatalf("期望 2 次课程，实际 %d", len(occs))
	}
	for _, o := range occs {
		if o.Duration() != time.Hour {
			t.Errorf("每次课程应为 60 分钟，实际 %v", o.Duration())
		}
		if o.SeriesID == nil || *o.SeriesID == "" {
			t.Error("应分配 series_id")
		}
		if o.RecurrencePattern == nil || *o.RecurrencePattern != "weekly" {
			t.Error("recurrence_pattern 应为 weekly")
		}
		if o.Status != model.OccurrenceStatusScheduled {
			t.Errorf("默认状态应为 scheduled，实际 %s", o.Status)
		}
	}
	if *occs[0].SeriesID != *occs[1].SeriesID {
		t.Error("同一系列的 series_id 应一致")
	}
	if gap := occs[1].StartAt.Sub(occs[0].StartAt); gap != 7*24*time.Hour {
		t.Errorf("间隔应为 7 天，实际 %v", gap)
	}
}

func TestExpand_SameDayEnd(t *testing.T) {
	start := time.Date(2024, time.January, 8, 22, 0, 0, 0, time.UTC)
	occs, err := Expander{}.Expand(Template{
		Prototype: prototype(start, 30*time.Minute),
		EndDate:   Date{2024, time.January, 8},
		Location:  time.UTC,
	})
	if err != nil {
		t.Fatalf("Expand 应成功: %v", err)
	}
	if len(occs) != 1 {
		t.Errorf("截止日为当天时应包含当天课程，实际 %d", len(occs))
	}
}

func TestExpand_EndBeforeStart(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)
	occs, err := Expander{}.Expand(Template{
		Prototype: prototype(start, time.Hour),
		EndDate:   Date{2024, time.January, 7},
		Location:  time.UTC,
	})
	if !errors.Is(err, ErrSeriesEndBeforeStart) {
		t.Fatalf("期望 ErrSeriesEndBeforeStart，实际 %v", err)
	}
	if len(occs) != 0 {
		t.Errorf("应返回空系列，实际 %d", len(occs))
	}
}

func TestExpand_KeepsWallClockAcrossDST(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	start := time.Date(2024, time.March, 4, 9, 0, 0, 0, loc)

	occs, err := Expander{}.Expand(Template{
		Prototype: prototype(start, 45*time.Minute),
		EndDate:   Date{2024, time.March, 18},
		Location:  loc,
	})
	if err != nil {
		t.Fatalf("Expand 应成功: %v", err)
	}
	if len(occs) != 3 {
		t.Fatalf("期望 3 次课程，实际 %d", len(occs))
	}
	for i, o := range occs {
		if wc := ToWallClock(o.StartAt, loc); wc != (WallClock{9, 0}) {
			t.Errorf("第 %d 次课程墙上时间应为 09:00，实际 %s", i, wc)
		}
		if o.Duration() != 45*time.Minute {
			t.Errorf("第 %d 次课程时长应为 45 分钟，实际 %v", i, o.Duration())
		}
	}
}

func TestExpand_Validation(t *testing.T) {
	start := time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

	bad := prototype(start, 0)
	if _, err := (Expander{}).Expand(Template{Prototype: bad, EndDate: Date{2024, time.February, 1}, Location: time.UTC}); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("期望 ErrInvalidTimeRange，实际 %v", err)
	}

	monthly := Template{Prototype: prototype(start, time.Hour), Frequency: "monthly", EndDate: Date{2024, time.June, 1}, Location: time.UTC}
	if _, err := (Expander{}).Expand(monthly); !errors.Is(err, ErrUnsupportedFrequency) {
		t.Errorf("期望 ErrUnsupportedFrequency，实际 %v", err)
	}

	long := Template{Prototype: prototype(start, time.Hour), EndDate: Date{2024, time.December, 31}, Location: time.UTC}
	if _, err := (Expander{MaxOccurrences: 3}).Expand(long); !errors.Is(err, ErrSeriesTooLong) {
		t.Errorf("期望 ErrSeriesTooLong，实际 %v", err)
	}
}
