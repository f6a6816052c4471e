package schedule

import (
	"errors"
	"testing"
	"time"
)

func mustLoad(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	if err != nil {
		t.Fatalf("加载时区 %s 失败: %v", name, err)
	}
	return loc
}

func TestToInstant_RoundTrip(t *testing.T) {
	anchor := NewAnchor(time.UTC)
	zones := []string{"UTC", "America/New_York", "Asia/Shanghai", "Europe/London", "Asia/Kolkata", "Pacific/Auckland"}
	dates := []Date{{2024, time.January, 15}, {2024, time.June, 12}, {2024, time.December, 31}}
	clocks := []WallClock{{0, 0}, {0, 30}, {9, 0}, {13, 45}, {23, 15}}

	for _, name := range zones {
		loc := mustLoad(t, name)
		for _, d := range dates {
			for _, wc := range clocks {
				got := anchor.ToInstant(d, wc.Hour, wc.Minute, loc)
				if back := ToWallClock(got, loc); back != wc {
					t.Errorf("%s %s %s: 回读墙上时间为 %s", name, d, wc, back)
				}
				if gotDate := DateOf(got, loc); gotDate != d {
					t.Errorf("%s %s %s: 回读日期为 %s", name, d, wc, gotDate)
				}
			}
		}
	}
}

func TestToInstant_GuessZoneIndependent(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	d := Date{2024, time.July, 4}

	a := NewAnchor(time.UTC).ToInstant(d, 9, 30, loc)
	b := NewAnchor(mustLoad(t, "Asia/Tokyo")).ToInstant(d, 9, 30, loc)
	if !a.Equal(b) {
		t.Errorf("不同初始猜测时区结果应一致: %v vs %v", a, b)
	}
	want := time.Date(2024, time.July, 4, 13, 30, 0, 0, time.UTC)
	if !a.Equal(want) {
		t.Errorf("期望 %v，实际 %v", want, a)
	}
}

func TestToInstant_SpringForwardGap(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	anchor := NewAnchor(time.UTC)
	d := Date{2024, time.March, 10}

	first := anchor.ToInstant(d, 2, 30, loc)
	second := anchor.ToInstant(d, 2, 30, loc)
	if !first.Equal(second) {
		t.Fatalf("夏令时缺口内结果应可复现: %v vs %v", first, second)
	}
	want := time.Date(2024, time.March, 10, 6, 30, 0, 0, time.UTC)
	if !first.Equal(want) {
		t.Errorf("期望收敛到 %v，实际 %v", want, first)
	}
}

func TestToInstant_FallBackAmbiguous(t *testing.T) {
	loc := mustLoad(t, "America/New_York")
	got := NewAnchor(time.UTC).ToInstant(Date{2024, time.November, 3}, 1, 30, loc)

	want := time.Date(2024, time.November, 3, 5, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("重复时间应取第一个有效值 %v，实际 %v", want, got)
	}
	if wc := ToWallClock(got, loc); wc != (WallClock{1, 30}) {
		t.Errorf("期望墙上时间 01:30，实际 %s", wc)
	}
}

func TestToInstant_Hour24Normalized(t *testing.T) {
	anchor := NewAnchor(time.UTC)
	d := Date{2024, time.May, 1}
	if a, b := anchor.ToInstant(d, 24, 0, time.UTC), anchor.ToInstant(d, 0, 0, time.UTC); !a.Equal(b) {
		t.Errorf("24 点应按 0 点处理: %v vs %v", a, b)
	}
}

func TestResolveLocation(t *testing.T) {
	loc, err := ResolveLocation("")
	if err != nil || loc != time.Local {
		t.Errorf("空时区应解析为本地时区，实际 %v, %v", loc, err)
	}
	if _, err := ResolveLocation("Mars/Olympus"); !errors.Is(err, ErrInvalidTimezone) {
		t.Errorf("期望 ErrInvalidTimezone，实际 %v", err)
	}
}

func TestDate_Helpers(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	if err != nil {
		t.Fatalf("ParseDate 应成功: %v", err)
	}
	if got := d.AddDays(2).String(); got != "2024-03-01" {
		t.Errorf("闰年加两天期望 2024-03-01，实际 %s", got)
	}
	if d.Weekday() != time.Wednesday {
		t.Errorf("2024-02-28 应为周三，实际 %v", d.Weekday())
	}
	if _, err := ParseDate("28/02/2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("期望 ErrInvalidDate，实际 %v", err)
	}
}
