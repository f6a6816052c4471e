package schedule

import (
	"testing"
	"time"

	"tutoros/backend/internal/model"
)

func lesson(start time.Time, dur time.Duration, series bool) model.Occurrence {
	occ := model.Occurrence{OccurrenceID: "o1", StartAt: start, EndAt: start.Add(dur)}
	if series {
		sid := "series-1"
		occ.SeriesID = &sid
	}
	return occ
}

func TestDrag_SnapsAndKeepsDuration(t *testing.T) {
	occ := lesson(time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC), time.Hour, false)
	target := Date{2024, time.May, 8}

	// 190-20=170px → 170 分钟 → 吸附为 165 → 07:00+2:45
	p := testGrid.Drag(NewAnchor(time.UTC), occ, DragCommand{OccurrenceID: "o1", TargetDay: target, PixelOffset: 190, GrabOffset: 20}, time.UTC)

	want := time.Date(2024, time.May, 8, 9, 45, 0, 0, time.UTC)
	if !p.Occurrence.StartAt.Equal(want) {
		t.Errorf("期望开始 %v，实际 %v", want, p.Occurrence.StartAt)
	}
	if p.Occurrence.Duration() != time.Hour {
		t.Errorf("拖拽应保持时长，实际 %v", p.Occurrence.Duration())
	}
	if p.NeedsScope {
		t.Error("独立课程无需选择编辑范围")
	}
	if p.Patch.StartAt == nil || !p.Patch.StartAt.Equal(want) {
		t.Error("补丁应携带新的开始时间")
	}
}

func TestDrag_ClampsToDay(t *testing.T) {
	occ := lesson(time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC), time.Hour, false)
	target := Date{2024, time.May, 6}
	anchor := NewAnchor(time.UTC)

	up := testGrid.Drag(anchor, occ, DragCommand{TargetDay: target, PixelOffset: -500}, time.UTC)
	if wc := ToWallClock(up.Occurrence.StartAt, time.UTC); wc != (WallClock{0, 0}) {
		t.Errorf("向上越界应夹到 00:00，实际 %s", wc)
	}
	down := testGrid.Drag(anchor, occ, DragCommand{TargetDay: target, PixelOffset: 5000}, time.UTC)
	if wc := ToWallClock(down.Occurrence.StartAt, time.UTC); wc != (WallClock{23, 45}) {
		t.Errorf("向下越界应夹到 23:45，实际 %s", wc)
	}
	if DateOf(down.Occurrence.StartAt, time.UTC) != target {
		t.Error("夹紧后仍应落在目标日期")
	}
}

func TestDrag_DisplayTimezoneAndSeries(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	occ := lesson(time.Date(2024, time.March, 4, 14, 0, 0, 0, time.UTC), 30*time.Minute, true)
	target := Date{2024, time.March, 11} // 夏令时之后

	p := testGrid.Drag(NewAnchor(time.UTC), occ, DragCommand{TargetDay: target, PixelOffset: 120}, loc)
	if wc := ToWallClock(p.Occurrence.StartAt, loc); wc != (WallClock{9, 0}) {
		t.Errorf("应在显示时区落到 09:00，实际 %s", wc)
	}
	if !p.NeedsScope {
		t.Error("系列成员拖拽后应要求选择编辑范围")
	}
	if p.Occurrence.SeriesID == nil {
		t.Error("候选结果不应自行脱离系列")
	}
}

func TestResize_SnapsDelta(t *testing.T) {
	start := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	occ := lesson(start, time.Hour, false)

	p := testGrid.Resize(occ, ResizeCommand{OccurrenceID: "o1", PixelDelta: 37})
	if want := start.Add(90 * time.Minute); !p.Occurrence.EndAt.Equal(want) {
		t.Errorf("期望结束 %v，实际 %v", want, p.Occurrence.EndAt)
	}
	if !p.Occurrence.StartAt.Equal(start) {
		t.Error("缩放不应改变开始时间")
	}
}

func TestResize_Floor(t *testing.T) {
	start := time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC)
	occ := lesson(start, time.Hour, true)

	p := testGrid.Resize(occ, ResizeCommand{PixelDelta: -200})
	if want := start.Add(15 * time.Minute); !p.Occurrence.EndAt.Equal(want) {
		t.Errorf("结束时间应夹到开始后一个吸附粒度 %v，实际 %v", want, p.Occurrence.EndAt)
	}
	if !p.Occurrence.EndAt.After(p.Occurrence.StartAt) {
		t.Error("缩放后结束必须晚于开始")
	}
	if !p.NeedsScope {
		t.Error("系列成员缩放后应要求选择编辑范围")
	}
}
