package service

import (
	"context"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"tutoros/backend/internal/dto"
)

func setupTestExportService() (ExportService, *testDeps) {
	deps := newTestDeps()
	calendar := NewCalendarService(deps.repo, deps.settings, nopLogger)
	return NewExportService(calendar, nopLogger), deps
}

func TestExportService_ExportWeek(t *testing.T) {
	svc, deps := setupTestExportService()
	deps.seed("a", at(6, 9, 0), time.Hour, "")
	deps.seed("b", at(6, 9, 30), time.Hour, "")

	buf, filename, err := svc.ExportWeek(context.Background(), testActor, &dto.CalendarRequest{Date: "2024-05-08"})
	if err != nil {
		t.Fatalf("导出失败: %v", err)
	}
	if filename != "课表_2024-05-06.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件无法打开: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("课表")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	// 标题 + 表头 + 周一 2 行 + 其余 6 天各 1 行
	if len(rows) != 10 {
		t.Fatalf("期望 10 行，实际 %d", len(rows))
	}
	if rows[1][0] != "星期" || rows[1][3] != "课程" {
		t.Errorf("表头错误: %v", rows[1])
	}
	if rows[2][0] != "周一" || rows[2][2] != "09:00-10:00" || rows[2][5] != "1/2" {
		t.Errorf("第一节课行错误: %v", rows[2])
	}
	if rows[3][5] != "2/2" {
		t.Errorf("重叠课程应在第 2 轨: %v", rows[3])
	}
	if rows[4][2] != "-" {
		t.Errorf("无课日期应显示 -: %v", rows[4])
	}
}
