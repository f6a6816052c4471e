// Package schedule 排课核心：墙上时间锚定、每周系列展开、系列编辑传播、
// 日视图重叠分轨以及拖拽/缩放换算。包内函数均为纯计算，不访问存储。
package schedule

import (
	"fmt"
	"time"
)

// WallClock 某时区下的墙上时间（时:分）
type WallClock struct {
	Hour   int
	Minute int
}

// String 格式化为 HH:MM
func (w WallClock) String() string { return fmt.Sprintf("%02d:%02d", w.Hour, w.Minute) }

// anchorPasses 固定点修正的迭代次数
//
// 一次 60 分钟的夏令时跳变在首轮修正得到近似偏移之后，第二轮即可收敛。
// 偏移变化小于一分钟或修正窗口内存在多次跳变的历史时区可能无法收敛，结果为近似值。
const anchorPasses = 2

// Anchor 将「日期 + 墙上时:分 + 时区」换算为绝对时刻
//
// 初始猜测使用 guess 时区构造，随后在目标时区回读墙上时间，
// 用完整日期时间的差值修正猜测，共修正 anchorPasses 次。
// 夏令时缺口内的时间与重复时间都取迭代收敛到的第一个值。
type Anchor struct {
	guess *time.Location
}

// NewAnchor 创建 Anchor；guess 为空时使用服务器本地时区
func NewAnchor(guess *time.Location) *Anchor {
	if guess == nil {
		guess = time.Local
	}
	return &Anchor{guess: guess}
}

// DefaultAnchor 以服务器本地时区作为初始猜测
var DefaultAnchor = NewAnchor(time.Local)

// ToInstant 返回在 loc 中显示为 date hour:minute 的绝对时刻
func (a *Anchor) ToInstant(date Date, hour, minute int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if hour == 24 {
		hour = 0
	}
	want := time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, time.UTC)
	guess := time.Date(date.Year, date.Month, date.Day, hour, minute, 0, 0, a.guess)

	for i := 0; i < anchorPasses; i++ {
		diff := wallAsUTC(guess.In(loc)).Sub(want)
		if diff == 0 {
			break
		}
		guess = guess.Add(-diff)
	}
	return guess
}

// ToWallClock 返回 t 在 loc 中的墙上时:分
func ToWallClock(t time.Time, loc *time.Location) WallClock {
	if loc == nil {
		loc = time.Local
	}
	w := t.In(loc)
	h := w.Hour()
	if h == 24 {
		h = 0
	}
	return WallClock{Hour: h, Minute: w.Minute()}
}

// wallAsUTC 把一个已换算到目标时区的时刻的墙上字段原样放到 UTC 上，便于做差
func wallAsUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// ResolveLocation 解析时区标识；空字符串表示服务器本地时区
func ResolveLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTimezone, name)
	}
	return loc, nil
}
