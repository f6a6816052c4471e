package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
)

// ── 可授课时间模块业务错误 ──

var (
	ErrInvalidSlot = errors.New("可授课时段无效")
	ErrSlotOverlap = errors.New("同一天的可授课时段不能重叠")
)

// AvailabilityService 可授课时间业务接口
type AvailabilityService interface {
	ListSlots(ctx context.Context, actor Actor, ownerID string) ([]dto.AvailabilitySlotResponse, error)
	ReplaceSlots(ctx context.Context, actor Actor, req *dto.ReplaceAvailabilityRequest) ([]dto.AvailabilitySlotResponse, error)
	// Overview 一周内每天的可授课时段、已排课程及利用率
	Overview(ctx context.Context, actor Actor, req *dto.AvailabilityOverviewRequest) (*dto.AvailabilityOverviewResponse, error)
}

type availabilityService struct {
	repo     *repository.Repository
	settings calendarSettings
	logger   *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(repo *repository.Repository, settings calendarSettings, logger *zap.Logger) AvailabilityService {
	return &availabilityService{repo: repo, settings: settings, logger: logger}
}

func (s *availabilityService) ListSlots(ctx context.Context, actor Actor, ownerID string) ([]dto.AvailabilitySlotResponse, error) {
	slots, err := s.repo.Availability.ListByOwner(ctx, actor.TenantID, actor.ownerOr(ownerID))
	if err != nil {
		s.logger.Error("查询可授课时间失败", zap.Error(err))
		return nil, err
	}
	sortSlots(slots)
	return toSlotResponses(slots), nil
}

func (s *availabilityService) ReplaceSlots(ctx context.Context, actor Actor, req *dto.ReplaceAvailabilityRequest) ([]dto.AvailabilitySlotResponse, error) {
	owner := actor.ownerOr(req.OwnerID)

	slots := make([]model.AvailabilitySlot, 0, len(req.Slots))
	for i, in := range req.Slots {
		startTime, endTime, err := validateSlot(in)
		if err != nil {
			return nil, fmt.Errorf("第 %d 个时段: %w", i+1, err)
		}
		status := in.Status
		if status == "" {
			status = model.AvailabilityStatusAvailable
		}
		slot := model.AvailabilitySlot{
			DayOfWeek: in.DayOfWeek,
			StartTime: startTime,
			EndTime:   endTime,
			Status:    status,
		}
		slot.CreatedBy = &actor.UserID
		slot.UpdatedBy = &actor.UserID
		slots = append(slots, slot)
	}
	if err := checkSlotOverlap(slots); err != nil {
		return nil, err
	}

	if err := s.repo.Availability.ReplaceByOwner(ctx, actor.TenantID, owner, slots); err != nil {
		s.logger.Error("替换可授课时间失败", zap.String("owner_id", owner), zap.Error(err))
		return nil, err
	}
	sortSlots(slots)
	return toSlotResponses(slots), nil
}

// validateSlot 校验时段并返回规范化的 HH:MM 起止时间
func validateSlot(in dto.AvailabilitySlotInput) (string, string, error) {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return "", "", fmt.Errorf("%w: day_of_week 必须在 0-6 之间", ErrInvalidSlot)
	}
	start, err := parseClock(in.StartTime)
	if err != nil {
		return "", "", err
	}
	end, err := parseClock(in.EndTime)
	if err != nil {
		return "", "", err
	}
	if end.Hour*60+end.Minute <= start.Hour*60+start.Minute {
		return "", "", fmt.Errorf("%w: 结束时间必须晚于开始时间", ErrInvalidSlot)
	}
	return start.String(), end.String(), nil
}

func checkSlotOverlap(slots []model.AvailabilitySlot) error {
	sorted := make([]model.AvailabilitySlot, len(slots))
	copy(sorted, slots)
	sortSlots(sorted)
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.DayOfWeek == cur.DayOfWeek && slotMinutes(cur.StartTime) < slotMinutes(prev.EndTime) {
			return fmt.Errorf("%w: 周%d %s-%s 与 %s-%s", ErrSlotOverlap,
				cur.DayOfWeek, prev.StartTime, prev.EndTime, cur.StartTime, cur.EndTime)
		}
	}
	return nil
}

// sortSlots 按星期、开始分钟排序
func sortSlots(slots []model.AvailabilitySlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slotMinutes(slots[i].StartTime) < slotMinutes(slots[j].StartTime)
	})
}

// slotMinutes 无法解析的时间排在最后
func slotMinutes(s string) int {
	m, err := clockMinutes(s)
	if err != nil {
		return math.MaxInt32
	}
	return m
}

// ────────────────────── Overview ──────────────────────

func (s *availabilityService) Overview(ctx context.Context, actor Actor, req *dto.AvailabilityOverviewRequest) (*dto.AvailabilityOverviewResponse, error) {
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	loc, _, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	owner := actor.ownerOr(req.OwnerID)

	slots, err := s.repo.Availability.ListByOwner(ctx, actor.TenantID, owner)
	if err != nil {
		s.logger.Error("查询可授课时间失败", zap.Error(err))
		return nil, err
	}

	view := schedule.CalendarView{Date: date, Mode: schedule.ViewWeek, WeekStart: s.settings.weekStart}
	start, end := view.Range(s.settings.anchor, loc)
	occs, err := s.repo.Occurrence.QueryByOwnerAndDateRange(ctx, actor.TenantID, owner, start, end)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	slotsByDay := make(map[int][]model.AvailabilitySlot)
	for _, sl := range slots {
		if sl.Status != model.AvailabilityStatusAvailable {
			continue
		}
		slotsByDay[sl.DayOfWeek] = append(slotsByDay[sl.DayOfWeek], sl)
	}
	occsByDay := make(map[schedule.Date][]model.Occurrence)
	for _, o := range occs {
		if o.Status == model.OccurrenceStatusCancelled {
			continue
		}
		d := schedule.DateOf(o.StartAt, loc)
		occsByDay[d] = append(occsByDay[d], o)
	}

	resp := &dto.AvailabilityOverviewResponse{}
	for _, d := range view.Days() {
		dow := int(d.Weekday())
		daySlots := slotsByDay[dow]
		day := dto.OverviewDayResponse{
			Date:      d.String(),
			DayOfWeek: dow,
			Slots:     toSlotResponses(daySlots),
			Bookings:  []dto.BookingResponse{},
		}
		for _, sl := range daySlots {
			sm, _ := clockMinutes(sl.StartTime)
			em, _ := clockMinutes(sl.EndTime)
			resp.AvailableMinutes += em - sm
		}
		for _, o := range occsByDay[d] {
			sw := schedule.ToWallClock(o.StartAt, loc)
			ew := schedule.ToWallClock(o.EndAt, loc)
			startMin := sw.Hour*60 + sw.Minute
			endMin := ew.Hour*60 + ew.Minute
			if schedule.DateOf(o.EndAt, loc) != d {
				endMin += 24 * 60
			}
			resp.BookedMinutes += int(o.Duration().Minutes())
			day.Bookings = append(day.Bookings, dto.BookingResponse{
				OccurrenceID:       o.OccurrenceID,
				Title:              o.Title,
				StartTime:          sw.String(),
				EndTime:            ew.String(),
				WithinAvailability: withinSlots(daySlots, startMin, endMin),
			})
		}
		resp.Days = append(resp.Days, day)
	}
	if resp.AvailableMinutes > 0 {
		resp.UtilizationPercent = int(math.Round(float64(resp.BookedMinutes) / float64(resp.AvailableMinutes) * 100))
	}
	return resp, nil
}

// withinSlots 课程是否完整落在某个可授课时段内
func withinSlots(slots []model.AvailabilitySlot, startMin, endMin int) bool {
	for _, sl := range slots {
		sm, err1 := clockMinutes(sl.StartTime)
		em, err2 := clockMinutes(sl.EndTime)
		if err1 != nil || err2 != nil {
			continue
		}
		if sm <= startMin && endMin <= em {
			return true
		}
	}
	return false
}

func toSlotResponses(slots []model.AvailabilitySlot) []dto.AvailabilitySlotResponse {
	out := make([]dto.AvailabilitySlotResponse, 0, len(slots))
	for _, sl := range slots {
		out = append(out, dto.AvailabilitySlotResponse{
			ID:        sl.AvailabilitySlotID,
			DayOfWeek: sl.DayOfWeek,
			StartTime: sl.StartTime,
			EndTime:   sl.EndTime,
			Status:    sl.Status,
		})
	}
	return out
}
