package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/schedule"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	// ExportWeek 把周视图的分轨布局导出为 Excel
	ExportWeek(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*bytes.Buffer, string, error)
}

type exportService struct {
	calendar CalendarService
	logger   *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(calendar CalendarService, logger *zap.Logger) ExportService {
	return &exportService{calendar: calendar, logger: logger}
}

var weekdayNames = [7]string{"周日", "周一", "周二", "周三", "周四", "周五", "周六"}

var statusNames = map[string]string{
	model.OccurrenceStatusScheduled: "已排",
	model.OccurrenceStatusCancelled: "已取消",
	model.OccurrenceStatusCompleted: "已完成",
}

// ═══════════════════════════════════════════════════════════
// ExportWeek
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单个 Sheet "课表"
//   - 标题行：起止日期与时区
//   - 表头：星期 | 日期 | 时间 | 课程 | 状态 | 分轨
//   - 每节课一行，无课的日期保留一行 "-"

func (s *exportService) ExportWeek(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*bytes.Buffer, string, error) {
	weekReq := *req
	if weekReq.View == "" {
		weekReq.View = string(schedule.ViewWeek)
	}
	layout, err := s.calendar.Build(ctx, actor, &weekReq)
	if err != nil {
		return nil, "", err
	}
	if len(layout.Days) == 0 {
		return nil, "", ErrExportGenerateFail
	}
	first := layout.Days[0].Date
	last := layout.Days[len(layout.Days)-1].Date

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "课表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 12)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 28)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 8)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s ~ %s 课表 (%s)", first, last, layout.Location))
	f.MergeCell(sheetName, "A1", "F1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 2
	for i, title := range []string{"星期", "日期", "时间", "课程", "状态", "分轨"} {
		f.SetCellValue(sheetName, cell(colName(i), row), title)
	}
	f.SetCellStyle(sheetName, "A2", "F2", headerStyle)

	row = 3
	for _, day := range layout.Days {
		if len(day.Placements) == 0 {
			f.SetCellValue(sheetName, cell("A", row), weekdayNames[day.Date.Weekday()])
			f.SetCellValue(sheetName, cell("B", row), day.Date.String())
			f.SetCellValue(sheetName, cell("C", row), "-")
			row++
			continue
		}
		for _, p := range day.Placements {
			o := p.Occurrence
			start := schedule.ToWallClock(o.StartAt, layout.Location)
			end := schedule.ToWallClock(o.EndAt, layout.Location)
			f.SetCellValue(sheetName, cell("A", row), weekdayNames[day.Date.Weekday()])
			f.SetCellValue(sheetName, cell("B", row), day.Date.String())
			f.SetCellValue(sheetName, cell("C", row), fmt.Sprintf("%s-%s", start, end))
			f.SetCellValue(sheetName, cell("D", row), o.Title)
			f.SetCellValue(sheetName, cell("E", row), statusName(o.Status))
			f.SetCellValue(sheetName, cell("F", row), fmt.Sprintf("%d/%d", p.TrackIndex+1, p.TrackCount))
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_%s.xlsx", first)
	return buf, filename, nil
}

func statusName(status string) string {
	if name, ok := statusNames[status]; ok {
		return name
	}
	return status
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
