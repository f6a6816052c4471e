package schedule

import (
	"math"
	"time"

	"tutoros/backend/internal/model"
)

// DragCommand 一次拖拽释放：目标日期与落点在日列中的像素位置
type DragCommand struct {
	OccurrenceID string
	TargetDay    Date
	PixelOffset  float64 // 指针相对网格顶部的像素
	GrabOffset   float64 // 按下时指针相对课程块顶部的像素
}

// ResizeCommand 一次下边缘缩放：指针移动的像素差
type ResizeCommand struct {
	OccurrenceID string
	PixelDelta   float64
}

// Proposal 拖拽或缩放得到的候选新时间
//
// NeedsScope 为 true 时课程属于系列，需要调用方选择编辑范围后再提交。
type Proposal struct {
	Occurrence model.Occurrence // 已应用新时间的副本，供乐观更新
	Patch      model.OccurrencePatch
	NeedsScope bool
}

func (g Grid) step() int {
	if g.SnapMinutes <= 0 {
		return 1
	}
	return g.SnapMinutes
}

// snap 把分钟数四舍五入到吸附粒度
func (g Grid) snap(minutes float64) int {
	step := g.step()
	return int(math.Round(minutes/float64(step))) * step
}

// pixelsToMinutes 像素换算为分钟
func (g Grid) pixelsToMinutes(px float64) float64 {
	return px / g.HourHeight * 60
}

// Drag 计算拖拽后的新起止时间，时长保持不变
func (g Grid) Drag(anchor *Anchor, occ model.Occurrence, cmd DragCommand, loc *time.Location) Proposal {
	fromTop := g.snap(g.pixelsToMinutes(cmd.PixelOffset - cmd.GrabOffset))
	total := g.StartHour*60 + fromTop
	if total < 0 {
		total = 0
	}
	if latest := minutesPerDay - g.step(); total > latest {
		total = latest
	}

	start := anchor.ToInstant(cmd.TargetDay, total/60, total%60, loc)
	end := start.Add(occ.Duration())
	return newProposal(occ, start, end)
}

// Resize 计算缩放后的新结束时间，结束时间不早于开始时间加一个吸附粒度
func (g Grid) Resize(occ model.Occurrence, cmd ResizeCommand) Proposal {
	delta := g.snap(g.pixelsToMinutes(cmd.PixelDelta))
	end := occ.EndAt.Add(time.Duration(delta) * time.Minute)
	if floor := occ.StartAt.Add(time.Duration(g.step()) * time.Minute); end.Before(floor) {
		end = floor
	}
	return newProposal(occ, occ.StartAt, end)
}

func newProposal(occ model.Occurrence, start, end time.Time) Proposal {
	patch := model.OccurrencePatch{StartAt: &start, EndAt: &end}
	moved := occ
	patch.Apply(&moved)
	return Proposal{Occurrence: moved, Patch: patch, NeedsScope: occ.InSeries()}
}
