package schedule

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"tutoros/backend/internal/model"
)

// weeklySeries 构造从 start 开始每周一次、共 n 次的系列
func weeklySeries(t *testing.T, start time.Time, dur time.Duration, n int) []model.Occurrence {
	t.Helper()
	sid := "series-1"
	pattern := model.RecurrencePatternWeekly
	occs := make([]model.Occurrence, n)
	for i := range occs {
		s := start.AddDate(0, 0, 7*i)
		occs[i] = model.Occurrence{
			OccurrenceID:      fmt.Sprintf("o%d", i),
			SeriesID:          &sid,
			RecurrencePattern: &pattern,
			Title:             "英语口语",
			StartAt:           s,
			EndAt:             s.Add(dur),
			Status:            model.OccurrenceStatusScheduled,
		}
	}
	return occs
}

func TestPlanFutureEdit_PreservesEachDate(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	series := weeklySeries(t, time.Date(2024, time.March, 4, 9, 0, 0, 0, loc), time.Hour, 4)
	edited := series[1]

	// 把第二次课程拖到周二 14:00，时长改为 90 分钟
	newStart := time.Date(2024, time.March, 12, 14, 0, 0, 0, loc)
	newEnd := newStart.Add(90 * time.Minute)
	title := "英语口语（进阶）"
	patch := model.OccurrencePatch{StartAt: &newStart, EndAt: &newEnd, Title: &title}

	updates, err := PlanFutureEdit(NewAnchor(time.UTC), edited, patch, series[1:], loc)
	if err != nil {
		t.Fatalf("PlanFutureEdit 应成功: %v", err)
	}
	if len(updates) != 3 {
		t.Fatalf("期望更新 3 次课程，实际 %d", len(updates))
	}
	for i, u := range updates {
		orig := series[i+1]
		if u.OccurrenceID != orig.OccurrenceID {
			t.Errorf("第 %d 项 id 期望 %s，实际 %s", i, orig.OccurrenceID, u.OccurrenceID)
		}
		if u.Patch.StartAt == nil || u.Patch.EndAt == nil {
			t.Fatalf("第 %d 项应包含新的起止时间", i)
		}
		if got, want := DateOf(*u.Patch.StartAt, loc), DateOf(orig.StartAt, loc); got != want {
			t.Errorf("第 %d 项日期应保持 %s，实际 %s", i, want, got)
		}
		if wc := ToWallClock(*u.Patch.StartAt, loc); wc != (WallClock{14, 0}) {
			t.Errorf("第 %d 项墙上时间应为 14:00，实际 %s", i, wc)
		}
		if d := u.Patch.EndAt.Sub(*u.Patch.StartAt); d != 90*time.Minute {
			t.Errorf("第 %d 项时长应为 90 分钟，实际 %v", i, d)
		}
		if u.Patch.Title == nil || *u.Patch.Title != title {
			t.Errorf("第 %d 项标题应统一更新", i)
		}
		if u.Patch.DetachSeries {
			t.Errorf("第 %d 项不应脱离系列", i)
		}
	}
	for _, u := range updates {
		if u.OccurrenceID == series[0].OccurrenceID {
			t.Error("早于被编辑课程的成员不应被更新")
		}
	}
}

func TestPlanFutureEdit_IgnoresEarlierAndForeignSiblings(t *testing.T) {
	series := weeklySeries(t, time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC), time.Hour, 3)
	other := "series-2"
	foreign := series[2]
	foreign.OccurrenceID = "x"
	foreign.SeriesID = &other

	title := "新标题"
	siblings := []model.Occurrence{series[0], series[1], series[2], foreign}
	updates, err := PlanFutureEdit(NewAnchor(time.UTC), series[1], model.OccurrencePatch{Title: &title}, siblings, time.UTC)
	if err != nil {
		t.Fatalf("PlanFutureEdit 应成功: %v", err)
	}
	if len(updates) != 2 || updates[0].OccurrenceID != "o1" || updates[1].OccurrenceID != "o2" {
		t.Fatalf("期望只更新 o1、o2，实际 %+v", updates)
	}
	for _, u := range updates {
		if u.Patch.StartAt != nil || u.Patch.EndAt != nil {
			t.Error("只改标题时不应下发起止时间")
		}
	}
}

func TestPlanFutureEdit_NoSiblingsIsNoop(t *testing.T) {
	series := weeklySeries(t, time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC), time.Hour, 1)
	title := "x"
	updates, err := PlanFutureEdit(NewAnchor(time.UTC), series[0], model.OccurrencePatch{Title: &title}, nil, time.UTC)
	if err != nil {
		t.Fatalf("无成员时应视为成功，实际 %v", err)
	}
	if len(updates) != 0 {
		t.Errorf("期望无更新，实际 %d", len(updates))
	}
}

func TestPlanFutureEdit_Rejects(t *testing.T) {
	start := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	standalone := model.Occurrence{OccurrenceID: "s", StartAt: start, EndAt: start.Add(time.Hour)}
	if _, err := PlanFutureEdit(NewAnchor(time.UTC), standalone, model.OccurrencePatch{}, nil, time.UTC); !errors.Is(err, ErrNotInSeries) {
		t.Errorf("独立课程应返回 ErrNotInSeries，实际 %v", err)
	}

	series := weeklySeries(t, start, time.Hour, 2)
	early := start.Add(-time.Hour)
	if _, err := PlanFutureEdit(NewAnchor(time.UTC), series[0], model.OccurrencePatch{EndAt: &early}, series, time.UTC); !errors.Is(err, ErrInvalidTimeRange) {
		t.Errorf("结束早于开始应返回 ErrInvalidTimeRange，实际 %v", err)
	}
}

func TestPlanThisOccurrence(t *testing.T) {
	start := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	series := weeklySeries(t, start, time.Hour, 2)
	newEnd := start.Add(2 * time.Hour)

	u, err := PlanThisOccurrence(series[0], model.OccurrencePatch{EndAt: &newEnd})
	if err != nil {
		t.Fatalf("PlanThisOccurrence 应成功: %v", err)
	}
	if !u.Patch.DetachSeries {
		t.Error("系列成员仅改此次时应脱离系列")
	}
	detached := series[0]
	u.Patch.Apply(&detached)
	if detached.SeriesID != nil || detached.RecurrencePattern != nil {
		t.Error("应用后 series_id 与 recurrence_pattern 应被清空")
	}

	standalone := model.Occurrence{OccurrenceID: "s", StartAt: start, EndAt: start.Add(time.Hour)}
	u, err = PlanThisOccurrence(standalone, model.OccurrencePatch{EndAt: &newEnd})
	if err != nil {
		t.Fatalf("PlanThisOccurrence 应成功: %v", err)
	}
	if u.Patch.DetachSeries {
		t.Error("独立课程无需脱离系列")
	}
}

func TestParseEditScope(t *testing.T) {
	cases := map[string]EditScope{"": nil, "this": ThisOccurrence{}, "future": ThisAndFuture{}}
	for in, want := range cases {
		got, err := ParseEditScope(in)
		if err != nil || got != want {
			t.Errorf("ParseEditScope(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEditScope("all"); !errors.Is(err, ErrInvalidEditScope) {
		t.Errorf("期望 ErrInvalidEditScope，实际 %v", err)
	}
}
