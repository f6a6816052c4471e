package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/schedule"
)

func setupTestCalendarService() (CalendarService, *testDeps) {
	deps := newTestDeps()
	return NewCalendarService(deps.repo, deps.settings, nopLogger), deps
}

func TestCalendarService_Layout_WeekClusters(t *testing.T) {
	svc, deps := setupTestCalendarService()
	deps.seed("a", at(8, 9, 0), time.Hour, "")
	deps.seed("b", at(8, 9, 30), time.Hour, "")
	deps.seed("c", at(8, 10, 15), 45*time.Minute, "")
	deps.seed("d", at(9, 12, 0), time.Hour, "")

	resp, err := svc.Layout(context.Background(), testActor, &dto.CalendarRequest{Date: "2024-05-08"})
	if err != nil {
		t.Fatalf("生成布局失败: %v", err)
	}
	if resp.View != "week" || len(resp.Days) != 7 {
		t.Fatalf("应为 7 天的周视图，实际 %s / %d", resp.View, len(resp.Days))
	}
	if resp.Days[0].Date != "2024-05-06" {
		t.Errorf("周一起始时第一天应为 05-06，实际 %s", resp.Days[0].Date)
	}

	wed := resp.Days[2]
	if len(wed.Placements) != 3 {
		t.Fatalf("05-08 应有 3 节课，实际 %d", len(wed.Placements))
	}
	for _, p := range wed.Placements {
		if p.TrackCount != 3 {
			t.Errorf("A/B/C 链式重叠应同组 3 轨，%s 实际 %d", p.Occurrence.ID, p.TrackCount)
		}
	}
	if wed.Placements[0].Top != 120 {
		t.Errorf("09:00 在 07:00 起的网格中应位于 120px，实际 %v", wed.Placements[0].Top)
	}

	thu := resp.Days[3]
	if len(thu.Placements) != 1 || thu.Placements[0].TrackCount != 1 || thu.Placements[0].WidthPercent != 100 {
		t.Errorf("独立课程应独占整列: %+v", thu.Placements)
	}
	if len(resp.Days[6].Placements) != 0 {
		t.Error("无课日期应为空列表")
	}
}

func TestCalendarService_Build_DisplayTimezone(t *testing.T) {
	svc, deps := setupTestCalendarService()
	// UTC 05-08 23:30 = 上海 05-09 07:30
	deps.seed("late", at(8, 23, 30), time.Hour, "")

	layout, err := svc.Build(context.Background(), testActor, &dto.CalendarRequest{
		Date: "2024-05-09", View: "day", Timezone: "Asia/Shanghai",
	})
	if err != nil {
		t.Fatalf("生成布局失败: %v", err)
	}
	if len(layout.Days) != 1 || len(layout.Days[0].Placements) != 1 {
		t.Fatalf("上海时区下课程应落在 05-09: %+v", layout.Days)
	}
	p := layout.Days[0].Placements[0]
	if wc := schedule.ToWallClock(p.Occurrence.StartAt, layout.Location); wc != (schedule.WallClock{Hour: 7, Minute: 30}) {
		t.Errorf("显示时间应为 07:30，实际 %s", wc)
	}
	if p.Top != 30 {
		t.Errorf("07:30 应位于 30px，实际 %v", p.Top)
	}
}

func TestCalendarService_Build_CrossMidnightBelongsToStartDay(t *testing.T) {
	svc, deps := setupTestCalendarService()
	// 05-08 23:30 - 05-09 00:30 (UTC)
	deps.seed("night", at(8, 23, 30), time.Hour, "")
	deps.seed("morning", at(9, 8, 0), time.Hour, "")
	ctx := context.Background()

	day9, err := svc.Build(ctx, testActor, &dto.CalendarRequest{Date: "2024-05-09", View: "day"})
	if err != nil {
		t.Fatalf("生成布局失败: %v", err)
	}
	if len(day9.Days[0].Placements) != 1 || day9.Days[0].Placements[0].Occurrence.OccurrenceID != "morning" {
		t.Errorf("05-09 只应展示当天开始的课程: %+v", day9.Days[0].Placements)
	}

	day8, err := svc.Build(ctx, testActor, &dto.CalendarRequest{Date: "2024-05-08", View: "day"})
	if err != nil {
		t.Fatalf("生成布局失败: %v", err)
	}
	if len(day8.Days[0].Placements) != 1 || day8.Days[0].Placements[0].Occurrence.OccurrenceID != "night" {
		t.Errorf("跨零点课程应展示在开始日 05-08: %+v", day8.Days[0].Placements)
	}
}

func TestCalendarService_Build_Errors(t *testing.T) {
	svc, deps := setupTestCalendarService()
	ctx := context.Background()

	if _, err := svc.Build(ctx, testActor, &dto.CalendarRequest{Date: "05/08/2024"}); !errors.Is(err, schedule.ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际: %v", err)
	}
	if _, err := svc.Build(ctx, testActor, &dto.CalendarRequest{Date: "2024-05-08", View: "month"}); !errors.Is(err, schedule.ErrInvalidViewMode) {
		t.Errorf("期望 ErrInvalidViewMode，实际: %v", err)
	}

	deps.occRepo.failOn = "QueryByOwnerAndDateRange"
	if _, err := svc.Build(ctx, testActor, &dto.CalendarRequest{Date: "2024-05-08"}); !errors.Is(err, errMock) {
		t.Errorf("存储错误应原样返回，实际: %v", err)
	}
}
