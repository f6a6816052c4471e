package schedule

import (
	"time"

	"tutoros/backend/internal/model"
)

// PlanThisOccurrence 生成「仅此次」编辑的更新：应用补丁并脱离系列
//
// 独立课程直接应用补丁，不涉及系列字段。
func PlanThisOccurrence(occ model.Occurrence, patch model.OccurrencePatch) (model.OccurrenceUpdate, error) {
	if err := validatePatchedRange(occ, patch); err != nil {
		return model.OccurrenceUpdate{}, err
	}
	if occ.InSeries() {
		patch.DetachSeries = true
	}
	return model.OccurrenceUpdate{OccurrenceID: occ.OccurrenceID, Patch: patch}, nil
}

// PlanFutureEdit 生成「此次及以后」编辑的批量更新
//
// edited 为编辑前的课程，siblings 为同系列中开始时间不早于 edited.StartAt 的课程
// （包含 edited 本身）。补丁中的新开始时间在 loc 中的墙上时:分与新时长
// 套用到每个成员自己的日期上，成员日期保持不变；非时间字段统一下发。
// siblings 为空时返回空列表，不视为错误。
func PlanFutureEdit(
	anchor *Anchor,
	edited model.Occurrence,
	patch model.OccurrencePatch,
	siblings []model.Occurrence,
	loc *time.Location,
) ([]model.OccurrenceUpdate, error) {
	if !edited.InSeries() {
		return nil, ErrNotInSeries
	}
	if err := validatePatchedRange(edited, patch); err != nil {
		return nil, err
	}
	if len(siblings) == 0 {
		return nil, nil
	}

	var (
		retime = patch.HasTimeChange()
		wall   WallClock
		dur    time.Duration
		shared = patch.WithoutTimes()
	)
	if retime {
		newStart, newEnd := patchedRange(edited, patch)
		wall = ToWallClock(newStart, loc)
		dur = newEnd.Sub(newStart)
	}

	updates := make([]model.OccurrenceUpdate, 0, len(siblings))
	for _, sib := range siblings {
		if sib.SeriesID == nil || *sib.SeriesID != *edited.SeriesID {
			continue
		}
		if sib.StartAt.Before(edited.StartAt) {
			continue
		}
		p := shared
		if retime {
			start := anchor.ToInstant(DateOf(sib.StartAt, loc), wall.Hour, wall.Minute, loc)
			end := start.Add(dur)
			p.StartAt = &start
			p.EndAt = &end
		}
		updates = append(updates, model.OccurrenceUpdate{OccurrenceID: sib.OccurrenceID, Patch: p})
	}
	return updates, nil
}

// patchedRange 返回应用补丁后的起止时间
func patchedRange(occ model.Occurrence, patch model.OccurrencePatch) (time.Time, time.Time) {
	start, end := occ.StartAt, occ.EndAt
	if patch.StartAt != nil {
		start = *patch.StartAt
	}
	if patch.EndAt != nil {
		end = *patch.EndAt
	}
	return start, end
}

func validatePatchedRange(occ model.Occurrence, patch model.OccurrencePatch) error {
	start, end := patchedRange(occ, patch)
	if !end.After(start) {
		return ErrInvalidTimeRange
	}
	return nil
}
