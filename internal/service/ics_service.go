package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"tutoros/backend/internal/dto"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
)

// ── ICS 导入导出 ──────────────────────────────────────────────
//
// 导入：每个带 SUMMARY/DTSTART 的 VEVENT 生成独立课程，RRULE 按规则展开
// 后同样作为独立课程写入，不建立系列关系。全天事件跳过。
// 导出：按 UID=课程 ID 输出 VCALENDAR。
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize   = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout  = 30 * time.Second
	icsDefaultLength = 60 * time.Minute
	icsMaxExpansion  = 520 // 未配置系列上限时，单个 RRULE 最多展开的节数
	icsProductID     = "-//TutorOS//Scheduling//CN"
)

var (
	ErrICSEmpty   = errors.New("ICS 中没有可导入的课程")
	ErrICSInvalid = errors.New("ICS 格式解析失败")
	ErrICSFetch   = errors.New("获取 ICS 失败")
)

// InterchangeService 日历导入导出业务接口
type InterchangeService interface {
	Import(ctx context.Context, actor Actor, req *dto.ICSImportRequest, r io.Reader) (*dto.ICSImportResponse, error)
	ImportURL(ctx context.Context, actor Actor, req *dto.ICSImportRequest) (*dto.ICSImportResponse, error)
	Feed(ctx context.Context, actor Actor, req *dto.ICSFeedRequest) ([]byte, error)
}

type interchangeService struct {
	repo     *repository.Repository
	settings calendarSettings
	client   *http.Client
	logger   *zap.Logger
}

// NewInterchangeService 创建 InterchangeService 实例
func NewInterchangeService(repo *repository.Repository, settings calendarSettings, logger *zap.Logger) InterchangeService {
	return &interchangeService{
		repo:     repo,
		settings: settings,
		client:   &http.Client{Timeout: icsFetchTimeout},
		logger:   logger,
	}
}

// ────────────────────── Import ──────────────────────

func (s *interchangeService) Import(ctx context.Context, actor Actor, req *dto.ICSImportRequest, r io.Reader) (*dto.ICSImportResponse, error) {
	loc, tzName, err := s.settings.location(req.Timezone)
	if err != nil {
		return nil, err
	}

	cal, err := ics.ParseCalendar(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSInvalid, err)
	}

	owner := actor.ownerOr(req.OwnerID)
	var occs []model.Occurrence
	skipped := 0
	for _, evt := range cal.Events() {
		parsed, ok := s.parseEvent(evt, loc)
		if !ok {
			skipped++
			continue
		}
		for _, span := range parsed.spans {
			occ := model.Occurrence{
				OwnerID:  owner,
				CourseID: req.CourseID,
				Title:    parsed.title,
				StartAt:  span[0].UTC(),
				EndAt:    span[1].UTC(),
				Timezone: tzName,
				Status:   model.OccurrenceStatusScheduled,
			}
			occ.TenantID = actor.TenantID
			occ.MeetingLink = parsed.link
			occ.CreatedBy = &actor.UserID
			occ.UpdatedBy = &actor.UserID
			occs = append(occs, occ)
		}
	}
	if len(occs) == 0 {
		return nil, ErrICSEmpty
	}

	if err := s.repo.Occurrence.BatchCreate(ctx, occs); err != nil {
		s.logger.Error("ICS 导入写入失败", zap.String("owner_id", owner), zap.Error(err))
		return nil, err
	}
	s.logger.Info("ICS 导入完成",
		zap.String("owner_id", owner),
		zap.Int("imported", len(occs)),
		zap.Int("skipped", skipped))

	return &dto.ICSImportResponse{
		Imported:    len(occs),
		Skipped:     skipped,
		Occurrences: toOccurrenceResponses(occs),
	}, nil
}

func (s *interchangeService) ImportURL(ctx context.Context, actor Actor, req *dto.ICSImportRequest) (*dto.ICSImportResponse, error) {
	body, err := s.fetch(ctx, req.URL)
	if err != nil {
		s.logger.Warn("获取远程 ICS 失败", zap.String("url", req.URL), zap.Error(err))
		return nil, err
	}
	defer body.Close()
	return s.Import(ctx, actor, req, body)
}

// fetch 从 URL 获取 ICS 内容，webcal:// 按 https 处理
func (s *interchangeService) fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSFetch, err)
	}
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: HTTP %d", ErrICSFetch, resp.StatusCode)
	}
	// 限制响应体大小
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parsedEvent 单个 VEVENT 展开后的结果
type parsedEvent struct {
	title string
	link  *string
	spans [][2]time.Time
}

func (s *interchangeService) parseEvent(evt *ics.VEvent, loc *time.Location) (parsedEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedEvent{}, false
	}
	startProp := evt.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil || isAllDay(startProp) {
		return parsedEvent{}, false
	}

	start, err := s.parseDateTime(startProp, loc)
	if err != nil {
		return parsedEvent{}, false
	}
	length := icsDefaultLength
	if endProp := evt.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
		end, err := s.parseDateTime(endProp, loc)
		if err != nil {
			return parsedEvent{}, false
		}
		length = end.Sub(start)
	} else if durProp := evt.GetProperty(ics.ComponentPropertyDuration); durProp != nil {
		if d, err := parseICSDuration(durProp.Value); err == nil {
			length = d
		}
	}
	if length <= 0 {
		return parsedEvent{}, false
	}

	out := parsedEvent{title: strings.TrimSpace(summary.Value)}
	if p := evt.GetProperty(ics.ComponentPropertyUrl); p != nil && p.Value != "" {
		link := p.Value
		out.link = &link
	}

	rruleProp := evt.GetProperty(ics.ComponentPropertyRrule)
	if rruleProp == nil {
		out.spans = [][2]time.Time{{start, start.Add(length)}}
		return out, true
	}

	starts, err := s.expandRule(rruleProp.Value, evt, start, loc)
	if err != nil {
		s.logger.Warn("RRULE 解析失败，按单次课程导入", zap.String("rrule", rruleProp.Value), zap.Error(err))
		starts = []time.Time{start}
	}
	for _, st := range starts {
		out.spans = append(out.spans, [2]time.Time{st, st.Add(length)})
	}
	return out, len(out.spans) > 0
}

// expandRule 用 rrule-go 展开重复事件并排除 EXDATE，数量上限与系列一致
func (s *interchangeService) expandRule(value string, evt *ics.VEvent, start time.Time, loc *time.Location) ([]time.Time, error) {
	rule, err := rrule.StrToRRule(value)
	if err != nil {
		return nil, err
	}
	rule.DTStart(start)

	var set rrule.Set
	set.RRule(rule)
	for _, p := range evt.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			ex := &ics.IANAProperty{BaseProperty: ics.BaseProperty{
				IANAToken:      p.IANAToken,
				ICalParameters: p.ICalParameters,
				Value:          strings.TrimSpace(part),
			}}
			if t, err := s.parseDateTime(ex, loc); err == nil {
				set.ExDate(t.In(start.Location()))
			}
		}
	}

	limit := s.settings.maxSeries
	if limit <= 0 || limit > icsMaxExpansion {
		limit = icsMaxExpansion
	}
	var out []time.Time
	next := set.Iterator()
	for {
		t, ok := next()
		if !ok {
			break
		}
		if len(out) >= limit {
			s.logger.Warn("RRULE 展开超过上限，已截断", zap.String("rrule", value), zap.Int("limit", limit))
			break
		}
		out = append(out, t)
	}
	return out, nil
}

func isAllDay(prop *ics.IANAProperty) bool {
	if vs, ok := prop.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(prop.Value, "T")
}

// parseDateTime 解析 DTSTART/DTEND/EXDATE，结果保留事件自身的时区
// 带 Z 的按 UTC；带 TZID 的在该时区换算墙上时间；其余视为导入时区的本地时间。
// RRULE 依 DTSTART 所在时区的墙上时间展开，入库前再统一转 UTC。
func (s *interchangeService) parseDateTime(prop *ics.IANAProperty, loc *time.Location) (time.Time, error) {
	val := strings.TrimSpace(prop.Value)
	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("20060102T150405", val)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
	}

	target := loc
	for k, v := range prop.ICalParameters {
		if strings.EqualFold(k, "TZID") && len(v) > 0 {
			if tzLoc, err := schedule.ResolveLocation(v[0]); err == nil {
				target = tzLoc
			}
		}
	}
	date := schedule.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
	at := s.settings.anchor.ToInstant(date, t.Hour(), t.Minute(), target)
	return at.Add(time.Duration(t.Second()) * time.Second).In(target), nil
}

var icsDurationPattern = regexp.MustCompile(`^([+-])?P(?:(\d+)W)?(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// parseICSDuration 解析 RFC 5545 DURATION，如 PT1H30M、P1D、P2W
func parseICSDuration(v string) (time.Duration, error) {
	norm := strings.ToUpper(strings.TrimSpace(v))
	m := icsDurationPattern.FindStringSubmatch(norm)
	// 至少要有一个单位，且 T 之后不能为空
	if m == nil || strings.HasSuffix(norm, "T") || strings.Join(m[2:], "") == "" {
		return 0, fmt.Errorf("无法解析时长: %s", v)
	}
	units := []time.Duration{7 * 24 * time.Hour, 24 * time.Hour, time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, unit := range units {
		if m[i+2] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+2])
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * unit
	}
	if m[1] == "-" {
		total = -total
	}
	return total, nil
}

// ────────────────────── Feed ──────────────────────

func (s *interchangeService) Feed(ctx context.Context, actor Actor, req *dto.ICSFeedRequest) ([]byte, error) {
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
		s.logger.Error("查询导出课程失败", zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)
	now := time.Now().UTC()
	for i := range occs {
		o := &occs[i]
		evt := cal.AddEvent(o.OccurrenceID)
		evt.SetDtStampTime(now)
		evt.SetStartAt(o.StartAt.UTC())
		evt.SetEndAt(o.EndAt.UTC())
		evt.SetSummary(o.Title)
		if o.MeetingLink != nil && *o.MeetingLink != "" {
			evt.SetURL(*o.MeetingLink)
		}
		if o.Status == model.OccurrenceStatusCancelled {
			evt.SetStatus(ics.ObjectStatusCancelled)
		} else {
			evt.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), nil
}
