package service

import (
	"time"

	"go.uber.org/zap"

	"tutoros/backend/config"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
)

// Actor 当前操作者，来自访问令牌
type Actor struct {
	UserID   string
	TenantID string
	Role     string
}

// ownerOr 未指定教师时默认为操作者本人
func (a Actor) ownerOr(ownerID string) string {
	if ownerID != "" {
		return ownerID
	}
	return a.UserID
}

// Service 所有 Service 的聚合入口
type Service struct {
	Occurrence   OccurrenceService
	Calendar     CalendarService
	Availability AvailabilityService
	Interchange  InterchangeService
	Export       ExportService
	Completion   CompletionService
}

// NewService 创建 Service 聚合
func NewService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) *Service {
	settings := newCalendarSettings(&cfg.Calendar)
	calendar := NewCalendarService(repo, settings, logger)
	return &Service{
		Occurrence:   NewOccurrenceService(repo, settings, logger),
		Calendar:     calendar,
		Availability: NewAvailabilityService(repo, settings, logger),
		Interchange:  NewInterchangeService(repo, settings, logger),
		Export:       NewExportService(calendar, logger),
		Completion:   NewCompletionService(repo, logger),
	}
}

// calendarSettings 各服务共享的日历参数
type calendarSettings struct {
	grid            schedule.Grid
	anchor          *schedule.Anchor
	defaultTimezone string
	weekStart       time.Weekday
	maxSeries       int
}

func newCalendarSettings(cfg *config.CalendarConfig) calendarSettings {
	return calendarSettings{
		grid: schedule.Grid{
			StartHour:      cfg.GridStartHour,
			EndHour:        cfg.GridEndHour,
			HourHeight:     cfg.HourHeight,
			SnapMinutes:    cfg.SnapMinutes,
			MinEventHeight: cfg.MinEventHeight,
		},
		anchor:          schedule.DefaultAnchor,
		defaultTimezone: cfg.DefaultTimezone,
		weekStart:       time.Weekday(cfg.WeekStartsOn),
		maxSeries:       cfg.MaxSeriesOccurrences,
	}
}

// location 按优先级解析时区：显式参数 > 候选值（如课程自身时区）> 配置默认值
func (s calendarSettings) location(explicit string, fallbacks ...string) (*time.Location, string, error) {
	name := explicit
	for _, f := range fallbacks {
		if name != "" {
			break
		}
		name = f
	}
	if name == "" {
		name = s.defaultTimezone
	}
	loc, err := schedule.ResolveLocation(name)
	if err != nil {
		return nil, "", err
	}
	return loc, name, nil
}
