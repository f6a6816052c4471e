package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
)

// ── 课程场次模块业务错误 ──

var (
	ErrOccurrenceNotFound  = errors.New("课程不存在")
	ErrEditScopeRequired   = errors.New("该课程属于重复系列，请选择仅修改此次或此次及以后")
	ErrNoPendingReschedule = errors.New("该课程没有待处理的调课申请")
	ErrOccurrenceInactive  = errors.New("已取消或已完成的课程不能申请调课")
)

// OccurrenceService 课程场次业务接口
type OccurrenceService interface {
	Create(ctx context.Context, actor Actor, req *dto.CreateOccurrenceRequest) (*dto.OccurrenceResponse, error)
	CreateSeries(ctx context.Context, actor Actor, req *dto.CreateSeriesRequest) (*dto.SeriesResponse, error)
	GetByID(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error)
	List(ctx context.Context, actor Actor, req *dto.OccurrenceListRequest) ([]dto.OccurrenceResponse, error)
	Update(ctx context.Context, actor Actor, id string, req *dto.UpdateOccurrenceRequest) (*dto.EditResultResponse, error)
	Delete(ctx context.Context, actor Actor, id string) error

	// Drag / Resize 系列成员未给出 scope 时返回 ErrEditScopeRequired 与候选结果
	Drag(ctx context.Context, actor Actor, id string, req *dto.DragRequest) (*dto.EditResultResponse, error)
	Resize(ctx context.Context, actor Actor, id string, req *dto.ResizeRequest) (*dto.EditResultResponse, error)

	RequestReschedule(ctx context.Context, actor Actor, id string, req *dto.RescheduleRequest) (*dto.OccurrenceResponse, error)
	ApproveReschedule(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error)
	RejectReschedule(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error)
}

type occurrenceService struct {
	repo     *repository.Repository
	settings calendarSettings
	logger   *zap.Logger
}

// NewOccurrenceService 创建 OccurrenceService 实例
func NewOccurrenceService(repo *repository.Repository, settings calendarSettings, logger *zap.Logger) OccurrenceService {
	return &occurrenceService{repo: repo, settings: settings, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *occurrenceService) Create(ctx context.Context, actor Actor, req *dto.CreateOccurrenceRequest) (*dto.OccurrenceResponse, error) {
	occ, _, err := s.buildPrototype(actor, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Occurrence.Create(ctx, occ); err != nil {
		s.logger.Error("创建课程失败", zap.String("tenant_id", actor.TenantID), zap.Error(err))
		return nil, err
	}

	resp := toOccurrenceResponse(occ)
	return &resp, nil
}

func (s *occurrenceService) CreateSeries(ctx context.Context, actor Actor, req *dto.CreateSeriesRequest) (*dto.SeriesResponse, error) {
	proto, loc, err := s.buildPrototype(actor, &req.CreateOccurrenceRequest)
	if err != nil {
		return nil, err
	}
	endDate, err := schedule.ParseDate(req.EndDate)
	if err != nil {
		return nil, err
	}

	occs, err := schedule.Expander{MaxOccurrences: s.settings.maxSeries}.Expand(schedule.Template{
		Prototype: *proto,
		Frequency: model.RecurrencePatternWeekly,
		EndDate:   endDate,
		Location:  loc,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Occurrence.BatchCreate(ctx, occs); err != nil {
		s.logger.Error("批量创建系列课程失败",
			zap.String("tenant_id", actor.TenantID),
			zap.Int("count", len(occs)),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("创建系列课程",
		zap.String("series_id", *occs[0].SeriesID),
		zap.Int("count", len(occs)),
	)
	return &dto.SeriesResponse{
		SeriesID:    *occs[0].SeriesID,
		Occurrences: toOccurrenceResponses(occs),
	}, nil
}

// buildPrototype 根据创建请求构造课程（尚未持久化）
func (s *occurrenceService) buildPrototype(actor Actor, req *dto.CreateOccurrenceRequest) (*model.Occurrence, *time.Location, error) {
	loc, tzName, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, nil, err
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, nil, err
	}
	start, end, err := wallRange(s.settings.anchor, date, req.StartTime, req.EndTime, loc)
	if err != nil {
		return nil, nil, err
	}

	none := model.RescheduleStatusNone
	occ := &model.Occurrence{
		TenantScoped:     model.TenantScoped{TenantID: actor.TenantID},
		OwnerID:          actor.ownerOr(req.OwnerID),
		CourseID:         req.CourseID,
		Title:            req.Title,
		MeetingLink:      req.MeetingLink,
		StartAt:          start,
		EndAt:            end,
		Timezone:         tzName,
		Status:           model.OccurrenceStatusScheduled,
		RescheduleStatus: &none,
	}
	occ.CreatedBy = &actor.UserID
	occ.UpdatedBy = &actor.UserID
	return occ, loc, nil
}

// ────────────────────── Query ──────────────────────

func (s *occurrenceService) GetByID(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	resp := toOccurrenceResponse(occ)
	return &resp, nil
}

func (s *occurrenceService) List(ctx context.Context, actor Actor, req *dto.OccurrenceListRequest) ([]dto.OccurrenceResponse, error) {
	loc, _, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, err
	}
	start, end, err := dateRange(s.settings.anchor, req.Start, req.End, loc)
	if err != nil {
		return nil, err
	}

	occs, err := s.repo.Occurrence.QueryByOwnerAndDateRange(ctx, actor.TenantID, actor.ownerOr(req.OwnerID), start, end)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	return toOccurrenceResponses(occs), nil
}

func (s *occurrenceService) load(ctx context.Context, actor Actor, id string) (*model.Occurrence, error) {
	occ, err := s.repo.Occurrence.GetByID(ctx, actor.TenantID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOccurrenceNotFound
		}
		return nil, err
	}
	return occ, nil
}

// ────────────────────── Update ──────────────────────

func (s *occurrenceService) Update(ctx context.Context, actor Actor, id string, req *dto.UpdateOccurrenceRequest) (*dto.EditResultResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope, err := schedule.ParseEditScope(req.Scope)
	if err != nil {
		return nil, err
	}
	loc, _, err := s.settings.location(req.Timezone, occ.Timezone)
	if err != nil {
		return nil, err
	}

	patch := model.OccurrencePatch{
		Title:       req.Title,
		CourseID:    req.CourseID,
		OwnerID:     req.OwnerID,
		MeetingLink: req.MeetingLink,
		Status:      req.Status,
	}
	if req.Date != nil || req.StartTime != nil || req.EndTime != nil {
		start, end, err := s.retime(occ, req, loc)
		if err != nil {
			return nil, err
		}
		patch.StartAt, patch.EndAt = &start, &end
	}

	return s.applyEdit(ctx, actor, occ, patch, scope, loc)
}

// retime 用请求中给出的日期/时间覆盖课程当前的墙上时间
// 只给出开始时间时保持原时长
func (s *occurrenceService) retime(occ *model.Occurrence, req *dto.UpdateOccurrenceRequest, loc *time.Location) (time.Time, time.Time, error) {
	date := schedule.DateOf(occ.StartAt, loc)
	if req.Date != nil {
		d, err := schedule.ParseDate(*req.Date)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		date = d
	}
	startClock := schedule.ToWallClock(occ.StartAt, loc).String()
	if req.StartTime != nil {
		startClock = *req.StartTime
	}
	if req.EndTime != nil {
		return wallRange(s.settings.anchor, date, startClock, *req.EndTime, loc)
	}

	sc, err := parseClock(startClock)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := s.settings.anchor.ToInstant(date, sc.Hour, sc.Minute, loc)
	return start, start.Add(occ.Duration()), nil
}

// applyEdit 按编辑范围落库：独立课程直接更新；系列成员必须指定范围
func (s *occurrenceService) applyEdit(
	ctx context.Context,
	actor Actor,
	occ *model.Occurrence,
	patch model.OccurrencePatch,
	scope schedule.EditScope,
	loc *time.Location,
) (*dto.EditResultResponse, error) {
	patch.UpdatedBy = &actor.UserID

	if scope == nil {
		if occ.InSeries() {
			return nil, ErrEditScopeRequired
		}
		scope = schedule.ThisOccurrence{}
	}

	switch scope.(type) {
	case schedule.ThisOccurrence:
		upd, err := schedule.PlanThisOccurrence(*occ, patch)
		if err != nil {
			return nil, err
		}
		if err := s.repo.Occurrence.Update(ctx, actor.TenantID, upd.OccurrenceID, upd.Patch); err != nil {
			s.logger.Error("更新课程失败", zap.String("occurrence_id", occ.OccurrenceID), zap.Error(err))
			return nil, err
		}
		updated := *occ
		upd.Patch.Apply(&updated)
		return &dto.EditResultResponse{
			Scope:   scope.String(),
			Updated: []dto.OccurrenceResponse{toOccurrenceResponse(&updated)},
		}, nil

	case schedule.ThisAndFuture:
		if !occ.InSeries() {
			return nil, schedule.ErrNotInSeries
		}
		siblings, err := s.repo.Occurrence.QueryBySeriesAndStartAfter(ctx, actor.TenantID, *occ.SeriesID, occ.StartAt)
		if err != nil {
			s.logger.Error("查询系列课程失败", zap.String("series_id", *occ.SeriesID), zap.Error(err))
			return nil, err
		}
		updates, err := schedule.PlanFutureEdit(s.settings.anchor, *occ, patch, siblings, loc)
		if err != nil {
			return nil, err
		}
		if len(updates) == 0 {
			s.logger.Info("系列中无需要同步的课程", zap.String("series_id", *occ.SeriesID))
			return &dto.EditResultResponse{Scope: scope.String(), Updated: []dto.OccurrenceResponse{}}, nil
		}
		if err := s.repo.Occurrence.BatchUpdate(ctx, actor.TenantID, updates); err != nil {
			s.logger.Error("批量更新系列课程失败",
				zap.String("series_id", *occ.SeriesID),
				zap.Int("count", len(updates)),
				zap.Error(err),
			)
			return nil, err
		}

		byID := make(map[string]model.Occurrence, len(siblings))
		for _, sib := range siblings {
			byID[sib.OccurrenceID] = sib
		}
		result := make([]dto.OccurrenceResponse, 0, len(updates))
		for _, u := range updates {
			sib := byID[u.OccurrenceID]
			u.Patch.Apply(&sib)
			result = append(result, toOccurrenceResponse(&sib))
		}
		return &dto.EditResultResponse{Scope: scope.String(), Updated: result}, nil

	default:
		return nil, schedule.ErrInvalidEditScope
	}
}

// ────────────────────── Delete ──────────────────────

// Delete 只删除当前课程，系列中的其他课程不受影响
func (s *occurrenceService) Delete(ctx context.Context, actor Actor, id string) error {
	if _, err := s.load(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Occurrence.Delete(ctx, actor.TenantID, id, actor.UserID); err != nil {
		s.logger.Error("删除课程失败", zap.String("occurrence_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Drag / Resize ──────────────────────

func (s *occurrenceService) Drag(ctx context.Context, actor Actor, id string, req *dto.DragRequest) (*dto.EditResultResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope, err := schedule.ParseEditScope(req.Scope)
	if err != nil {
		return nil, err
	}
	day, err := schedule.ParseDate(req.TargetDate)
	if err != nil {
		return nil, err
	}
	loc, _, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, err
	}

	proposal := s.settings.grid.Drag(s.settings.anchor, *occ, schedule.DragCommand{
		OccurrenceID: id,
		TargetDay:    day,
		PixelOffset:  req.PixelOffset,
		GrabOffset:   req.GrabOffset,
	}, loc)
	return s.commitProposal(ctx, actor, occ, proposal, scope, loc)
}

func (s *occurrenceService) Resize(ctx context.Context, actor Actor, id string, req *dto.ResizeRequest) (*dto.EditResultResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	scope, err := schedule.ParseEditScope(req.Scope)
	if err != nil {
		return nil, err
	}
	loc, _, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, err
	}

	proposal := s.settings.grid.Resize(*occ, schedule.ResizeCommand{OccurrenceID: id, PixelDelta: req.PixelDelta})
	return s.commitProposal(ctx, actor, occ, proposal, scope, loc)
}

// commitProposal 系列成员且未选择范围时只返回候选结果
func (s *occurrenceService) commitProposal(
	ctx context.Context,
	actor Actor,
	occ *model.Occurrence,
	proposal schedule.Proposal,
	scope schedule.EditScope,
	loc *time.Location,
) (*dto.EditResultResponse, error) {
	if scope == nil && proposal.NeedsScope {
		return &dto.EditResultResponse{
			Updated: []dto.OccurrenceResponse{},
			Proposal: &dto.ProposalResponse{
				Occurrence: toOccurrenceResponse(&proposal.Occurrence),
				NeedsScope: true,
			},
		}, ErrEditScopeRequired
	}
	return s.applyEdit(ctx, actor, occ, proposal.Patch, scope, loc)
}

// ────────────────────── Reschedule ──────────────────────

func (s *occurrenceService) RequestReschedule(ctx context.Context, actor Actor, id string, req *dto.RescheduleRequest) (*dto.OccurrenceResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if occ.Status != model.OccurrenceStatusScheduled {
		return nil, ErrOccurrenceInactive
	}
	loc, _, err := s.settings.location(req.Timezone, occ.Timezone)
	if err != nil {
		return nil, err
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	clock, err := parseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	requested := s.settings.anchor.ToInstant(date, clock.Hour, clock.Minute, loc)

	status := model.RescheduleStatusRequested
	patch := model.OccurrencePatch{
		RescheduleStatus: &status,
		RequestedStartAt: &requested,
		RequestedBy:      &actor.UserID,
		UpdatedBy:        &actor.UserID,
	}
	if req.Reason != "" {
		patch.RescheduleReason = &req.Reason
	}
	return s.patchOne(ctx, actor, occ, patch)
}

// ApproveReschedule 按申请时间移动课程并保持时长；系列成员按「仅此次」处理
func (s *occurrenceService) ApproveReschedule(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !occ.HasPendingReschedule() || occ.RequestedStartAt == nil {
		return nil, ErrNoPendingReschedule
	}

	start := *occ.RequestedStartAt
	end := start.Add(occ.Duration())
	upd, err := schedule.PlanThisOccurrence(*occ, model.OccurrencePatch{
		StartAt:         &start,
		EndAt:           &end,
		ClearReschedule: true,
		UpdatedBy:       &actor.UserID,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("批准调课",
		zap.String("occurrence_id", id),
		zap.Time("from", occ.StartAt),
		zap.Time("to", start),
	)
	return s.patchOne(ctx, actor, occ, upd.Patch)
}

func (s *occurrenceService) RejectReschedule(ctx context.Context, actor Actor, id string) (*dto.OccurrenceResponse, error) {
	occ, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !occ.HasPendingReschedule() {
		return nil, ErrNoPendingReschedule
	}
	return s.patchOne(ctx, actor, occ, model.OccurrencePatch{ClearReschedule: true, UpdatedBy: &actor.UserID})
}

func (s *occurrenceService) patchOne(ctx context.Context, actor Actor, occ *model.Occurrence, patch model.OccurrencePatch) (*dto.OccurrenceResponse, error) {
	if err := s.repo.Occurrence.Update(ctx, actor.TenantID, occ.OccurrenceID, patch); err != nil {
		s.logger.Error("更新课程失败", zap.String("occurrence_id", occ.OccurrenceID), zap.Error(err))
		return nil, err
	}
	patch.Apply(occ)
	resp := toOccurrenceResponse(occ)
	return &resp, nil
}
