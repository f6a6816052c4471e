package schedule

import "errors"

// ── 排课核心校验错误 ──

var (
	ErrInvalidTimeRange     = errors.New("结束时间必须晚于开始时间")
	ErrSeriesEndBeforeStart = errors.New("系列截止日期早于首次课程日期")
	ErrUnsupportedFrequency = errors.New("仅支持每周重复")
	ErrSeriesTooLong        = errors.New("系列课程数量超过上限")
	ErrNotInSeries          = errors.New("该课程不属于任何系列，不能按「此次及以后」编辑")
	ErrInvalidEditScope     = errors.New("无效的编辑范围，只能为 this 或 future")
	ErrInvalidTimezone      = errors.New("无效的时区")
	ErrInvalidDate          = errors.New("无效的日期，格式应为 YYYY-MM-DD")
	ErrInvalidViewMode      = errors.New("无效的视图模式，只能为 day 或 week")
)
