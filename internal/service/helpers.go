package service

import (
	"errors"
	"fmt"
	"time"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/schedule"
)

// ErrInvalidClock 时间格式错误
var ErrInvalidClock = errors.New("时间格式无效，应为 HH:MM")

// parseClock 解析 "HH:MM"，允许 24:00 表示当日结束
func parseClock(s string) (schedule.WallClock, error) {
	if s == "24:00" {
		return schedule.WallClock{Hour: 24}, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return schedule.WallClock{}, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return schedule.WallClock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// clockMinutes "HH:MM" 转为当日分钟数，24:00 记为 1440
func clockMinutes(s string) (int, error) {
	wc, err := parseClock(s)
	if err != nil {
		return 0, err
	}
	return wc.Hour*60 + wc.Minute, nil
}

// wallRange 在 loc 中把 date + start/end 墙上时间换算为绝对时刻
func wallRange(anchor *schedule.Anchor, date schedule.Date, start, end string, loc *time.Location) (time.Time, time.Time, error) {
	sc, err := parseClock(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	ec, err := parseClock(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	startAt := anchor.ToInstant(date, sc.Hour, sc.Minute, loc)
	endDate := date
	if ec.Hour == 24 {
		endDate = date.AddDays(1)
	}
	endAt := anchor.ToInstant(endDate, ec.Hour, ec.Minute, loc)
	if !endAt.After(startAt) {
		return time.Time{}, time.Time{}, schedule.ErrInvalidTimeRange
	}
	return startAt, endAt, nil
}

// dateRange 解析闭区间日期 [start, end] 并转为绝对时间 [startAt, endAt)
func dateRange(anchor *schedule.Anchor, start, end string, loc *time.Location) (time.Time, time.Time, error) {
	from, err := schedule.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := schedule.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, schedule.ErrInvalidTimeRange
	}
	return anchor.ToInstant(from, 0, 0, loc), anchor.ToInstant(to.AddDays(1), 0, 0, loc), nil
}

func formatInstant(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func toOccurrenceResponse(o *model.Occurrence) dto.OccurrenceResponse {
	resp := dto.OccurrenceResponse{
		ID:                o.OccurrenceID,
		SeriesID:          o.SeriesID,
		RecurrencePattern: o.RecurrencePattern,
		OwnerID:           o.OwnerID,
		CourseID:          o.CourseID,
		Title:             o.Title,
		MeetingLink:       o.MeetingLink,
		Start:             formatInstant(o.StartAt),
		End:               formatInstant(o.EndAt),
		Timezone:          o.Timezone,
		Status:            o.Status,
		RescheduleStatus:  o.RescheduleStatus,
		RequestedBy:       o.RequestedBy,
		RescheduleReason:  o.RescheduleReason,
	}
	if o.RequestedStartAt != nil {
		rs := formatInstant(*o.RequestedStartAt)
		resp.RequestedStart = &rs
	}
	return resp
}

func toOccurrenceResponses(occs []model.Occurrence) []dto.OccurrenceResponse {
	out := make([]dto.OccurrenceResponse, 0, len(occs))
	for i := range occs {
		out = append(out, toOccurrenceResponse(&occs[i]))
	}
	return out
}
