package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
)

// DayLayout 单日的分轨结果
type DayLayout struct {
	Date       schedule.Date
	Placements []schedule.Placement
}

// CalendarLayout 一个视图内所有日期的布局
type CalendarLayout struct {
	View     schedule.CalendarView
	Location *time.Location
	Grid     schedule.Grid
	Days     []DayLayout
}

// CalendarService 日历视图业务接口
type CalendarService interface {
	// Build 查询视图范围内开始的课程，按显示时区分日并分轨
	Build(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*CalendarLayout, error)
	Layout(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*dto.CalendarResponse, error)
}

type calendarService struct {
	repo     *repository.Repository
	settings calendarSettings
	logger   *zap.Logger
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, settings calendarSettings, logger *zap.Logger) CalendarService {
	return &calendarService{repo: repo, settings: settings, logger: logger}
}

func (s *calendarService) view(req *dto.CalendarRequest) (schedule.CalendarView, *time.Location, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return schedule.CalendarView{}, nil, err
	}
	mode, err := schedule.ParseViewMode(req.View)
	if err != nil {
		return schedule.CalendarView{}, nil, err
	}
	loc, tzName, err := s.settings.location(req.Timezone)
	if err != nil {
		return schedule.CalendarView{}, nil, err
	}
	return schedule.CalendarView{
		Date:      date,
		Mode:      mode,
		Timezone:  tzName,
		WeekStart: s.settings.weekStart,
	}, loc, nil
}

func (s *calendarService) Build(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*CalendarLayout, error) {
	view, loc, err := s.view(req)
	if err != nil {
		return nil, err
	}
	start, end := view.Range(s.settings.anchor, loc)

	occs, err := s.repo.Occurrence.QueryByOwnerAndDateRange(ctx, actor.TenantID, actor.ownerOr(req.OwnerID), start, end)
	if err != nil {
		s.logger.Error("查询日历课程失败", zap.String("tenant_id", actor.TenantID), zap.Error(err))
		return nil, err
	}

	days := view.Days()
	buckets := make(map[schedule.Date][]model.Occurrence, len(days))
	for _, o := range occs {
		// 课程归属其开始日；前一天开始、跨零点进入视图的课程由前一天的视图展示
		if o.StartAt.Before(start) {
			continue
		}
		d := schedule.DateOf(o.StartAt, loc)
		buckets[d] = append(buckets[d], o)
	}

	layout := &CalendarLayout{View: view, Location: loc, Grid: s.settings.grid, Days: make([]DayLayout, 0, len(days))}
	for _, d := range days {
		layout.Days = append(layout.Days, DayLayout{
			Date:       d,
			Placements: schedule.Pack(buckets[d], loc, s.settings.grid),
		})
	}
	return layout, nil
}

func (s *calendarService) Layout(ctx context.Context, actor Actor, req *dto.CalendarRequest) (*dto.CalendarResponse, error) {
	layout, err := s.Build(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	g := layout.Grid
	resp := &dto.CalendarResponse{
		View:     string(layout.View.Mode),
		Timezone: layout.Location.String(),
		Grid: dto.GridResponse{
			StartHour:   g.StartHour,
			EndHour:     g.EndHour,
			HourHeight:  g.HourHeight,
			SnapMinutes: g.SnapMinutes,
		},
		Days: make([]dto.DayLayoutResponse, 0, len(layout.Days)),
	}
	for _, day := range layout.Days {
		placements := make([]dto.PlacementResponse, 0, len(day.Placements))
		for i := range day.Placements {
			p := &day.Placements[i]
			placements = append(placements, dto.PlacementResponse{
				Occurrence:   toOccurrenceResponse(&p.Occurrence),
				StartLocal:   schedule.ToWallClock(p.Occurrence.StartAt, layout.Location).String(),
				EndLocal:     schedule.ToWallClock(p.Occurrence.EndAt, layout.Location).String(),
				TrackIndex:   p.TrackIndex,
				TrackCount:   p.TrackCount,
				Top:          p.Top,
				Height:       p.Height,
				LeftPercent:  p.LeftPercent,
				WidthPercent: p.WidthPercent,
			})
		}
		resp.Days = append(resp.Days, dto.DayLayoutResponse{Date: day.Date.String(), Placements: placements})
	}
	return resp, nil
}
