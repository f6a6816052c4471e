package schedule

import (
	"math"
	"sort"
	"time"

	"tutoros/backend/internal/model"
)

const minutesPerDay = 24 * 60

// Grid 日历网格的显示参数
type Grid struct {
	StartHour      int
	EndHour        int
	HourHeight     float64 // 每小时像素
	SnapMinutes    int
	MinEventHeight float64
}

// Placement 单个课程块在日列中的位置
type Placement struct {
	Occurrence   model.Occurrence
	StartMinute  int // 显示时区中的当日分钟数
	EndMinute    int // 跨零点时已加 24h，只用于布局
	TrackIndex   int
	TrackCount   int
	Top          float64
	Height       float64
	LeftPercent  float64
	WidthPercent float64
}

// Pack 对同一天的课程做重叠分组并分配并列轨道
//
// 按开始分钟稳定排序后贪心聚簇：下一个课程的开始早于当前簇的最大结束时就并入该簇。
// 簇按可达重叠划分，A 与 B 重叠、B 与 C 重叠时 A、B、C 同簇，即使 A 与 C 不相交。
// 簇内按排序后的到达顺序编号，TrackCount 为簇大小。
func Pack(occs []model.Occurrence, loc *time.Location, grid Grid) []Placement {
	if len(occs) == 0 {
		return []Placement{}
	}
	if loc == nil {
		loc = time.Local
	}

	items := make([]Placement, len(occs))
	for i, o := range occs {
		start := minuteOfDay(o.StartAt, loc)
		end := minuteOfDay(o.EndAt, loc)
		if end <= start {
			end += minutesPerDay
		}
		items[i] = Placement{Occurrence: o, StartMinute: start, EndMinute: end}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].StartMinute < items[j].StartMinute })

	clusterStart := 0
	maxEnd := items[0].EndMinute
	for i := 1; i <= len(items); i++ {
		if i < len(items) && items[i].StartMinute < maxEnd {
			if items[i].EndMinute > maxEnd {
				maxEnd = items[i].EndMinute
			}
			continue
		}
		assignTracks(items[clusterStart:i])
		if i < len(items) {
			clusterStart = i
			maxEnd = items[i].EndMinute
		}
	}

	for i := range items {
		grid.position(&items[i])
	}
	return items
}

func assignTracks(cluster []Placement) {
	width := 100 / float64(len(cluster))
	for idx := range cluster {
		cluster[idx].TrackIndex = idx
		cluster[idx].TrackCount = len(cluster)
		cluster[idx].WidthPercent = width
		cluster[idx].LeftPercent = float64(idx) * width
	}
}

func (g Grid) position(p *Placement) {
	p.Top = float64(p.StartMinute-g.StartHour*60) / 60 * g.HourHeight
	dur := float64(p.EndMinute-p.StartMinute) / 60 * g.HourHeight
	p.Height = math.Max(dur, g.MinEventHeight)
}

func minuteOfDay(t time.Time, loc *time.Location) int {
	w := ToWallClock(t, loc)
	return w.Hour*60 + w.Minute
}
