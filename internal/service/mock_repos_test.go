package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutoros/backend/config"
	"tutoros/backend/internal/model"
	"tutoros/backend/internal/repository"
	"tutoros/backend/internal/schedule"
	pkgerrors "tutoros/backend/pkg/errors"
)

// ── Mock OccurrenceRepository ──

type mockOccurrenceRepo struct {
	occs   map[string]*model.Occurrence
	seq    int
	failOn string // 非空时对应方法返回 errMock
}

var errMock = fmt.Errorf("mock 存储故障")

func newMockOccurrenceRepo() *mockOccurrenceRepo {
	return &mockOccurrenceRepo{occs: make(map[string]*model.Occurrence)}
}

func (m *mockOccurrenceRepo) nextID() string {
	m.seq++
	return fmt.Sprintf("occ-%03d", m.seq)
}

func (m *mockOccurrenceRepo) Create(_ context.Context, occ *model.Occurrence) error {
	if m.failOn == "Create" {
		return errMock
	}
	if occ.OccurrenceID == "" {
		occ.OccurrenceID = m.nextID()
	}
	cp := *occ
	m.occs[occ.OccurrenceID] = &cp
	return nil
}

func (m *mockOccurrenceRepo) BatchCreate(_ context.Context, occs []model.Occurrence) error {
	if m.failOn == "BatchCreate" {
		return errMock
	}
	for i := range occs {
		if occs[i].OccurrenceID == "" {
			occs[i].OccurrenceID = m.nextID()
		}
		cp := occs[i]
		m.occs[cp.OccurrenceID] = &cp
	}
	return nil
}

func (m *mockOccurrenceRepo) GetByID(_ context.Context, tenantID, id string) (*model.Occurrence, error) {
	if o, ok := m.occs[id]; ok && o.TenantID == tenantID {
		cp := *o
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOccurrenceRepo) Update(_ context.Context, tenantID, id string, patch model.OccurrencePatch) error {
	if m.failOn == "Update" {
		return errMock
	}
	o, ok := m.occs[id]
	if !ok || o.TenantID != tenantID {
		return pkgerrors.ErrStaleRecord
	}
	patch.Apply(o)
	return nil
}

// BatchUpdate 全部存在才应用，模拟事务的原子性
func (m *mockOccurrenceRepo) BatchUpdate(_ context.Context, tenantID string, updates []model.OccurrenceUpdate) error {
	if m.failOn == "BatchUpdate" {
		return errMock
	}
	for _, u := range updates {
		if o, ok := m.occs[u.OccurrenceID]; !ok || o.TenantID != tenantID {
			return pkgerrors.ErrStaleRecord
		}
	}
	for _, u := range updates {
		u.Patch.Apply(m.occs[u.OccurrenceID])
	}
	return nil
}

func (m *mockOccurrenceRepo) Delete(_ context.Context, tenantID, id, _ string) error {
	o, ok := m.occs[id]
	if !ok || o.TenantID != tenantID {
		return pkgerrors.ErrStaleRecord
	}
	delete(m.occs, id)
	return nil
}

func (m *mockOccurrenceRepo) QueryBySeriesAndStartAfter(_ context.Context, tenantID, seriesID string, from time.Time) ([]model.Occurrence, error) {
	var result []model.Occurrence
	for _, o := range m.occs {
		if o.TenantID != tenantID || o.SeriesID == nil || *o.SeriesID != seriesID || o.StartAt.Before(from) {
			continue
		}
		result = append(result, *o)
	}
	sortByStart(result)
	return result, nil
}

func (m *mockOccurrenceRepo) QueryByOwnerAndDateRange(_ context.Context, tenantID, ownerID string, start, end time.Time) ([]model.Occurrence, error) {
	if m.failOn == "QueryByOwnerAndDateRange" {
		return nil, errMock
	}
	var result []model.Occurrence
	for _, o := range m.occs {
		if o.TenantID != tenantID || (ownerID != "" && o.OwnerID != ownerID) {
			continue
		}
		if o.StartAt.Before(end) && o.EndAt.After(start) {
			result = append(result, *o)
		}
	}
	sortByStart(result)
	return result, nil
}

func (m *mockOccurrenceRepo) CompleteEndedBefore(_ context.Context, before time.Time) (int64, error) {
	if m.failOn == "CompleteEndedBefore" {
		return 0, errMock
	}
	var n int64
	for _, o := range m.occs {
		if o.Status == model.OccurrenceStatusScheduled && !o.EndAt.After(before) && !o.HasPendingReschedule() {
			o.Status = model.OccurrenceStatusCompleted
			n++
		}
	}
	return n, nil
}

// series 返回某系列当前的全部成员（按开始时间排序）
func (m *mockOccurrenceRepo) series(seriesID string) []model.Occurrence {
	var result []model.Occurrence
	for _, o := range m.occs {
		if o.SeriesID != nil && *o.SeriesID == seriesID {
			result = append(result, *o)
		}
	}
	sortByStart(result)
	return result
}

func sortByStart(occs []model.Occurrence) {
	sort.Slice(occs, func(i, j int) bool {
		if !occs[i].StartAt.Equal(occs[j].StartAt) {
			return occs[i].StartAt.Before(occs[j].StartAt)
		}
		return occs[i].OccurrenceID < occs[j].OccurrenceID
	})
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	slots map[string][]model.AvailabilitySlot // key: tenant/owner
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{slots: make(map[string][]model.AvailabilitySlot)}
}

func (m *mockAvailabilityRepo) ListByOwner(_ context.Context, tenantID, ownerID string) ([]model.AvailabilitySlot, error) {
	return append([]model.AvailabilitySlot(nil), m.slots[tenantID+"/"+ownerID]...), nil
}

func (m *mockAvailabilityRepo) ReplaceByOwner(_ context.Context, tenantID, ownerID string, slots []model.AvailabilitySlot) error {
	stored := make([]model.AvailabilitySlot, len(slots))
	for i, sl := range slots {
		sl.TenantID = tenantID
		sl.OwnerID = ownerID
		sl.AvailabilitySlotID = fmt.Sprintf("slot-%d", i+1)
		stored[i] = sl
	}
	m.slots[tenantID+"/"+ownerID] = stored
	return nil
}

// ── 测试辅助 ──

const testTenant = "tenant-1"

var testActor = Actor{UserID: "tutor-1", TenantID: testTenant, Role: "tutor"}

func testSettings() calendarSettings {
	return newCalendarSettings(&config.CalendarConfig{
		GridStartHour:        7,
		GridEndHour:          22,
		HourHeight:           60,
		SnapMinutes:          15,
		MinEventHeight:       20,
		DefaultTimezone:      "UTC",
		MaxSeriesOccurrences: 500,
		WeekStartsOn:         1,
	})
}

type testDeps struct {
	occRepo   *mockOccurrenceRepo
	availRepo *mockAvailabilityRepo
	repo      *repository.Repository
	settings  calendarSettings
}

func newTestDeps() *testDeps {
	occRepo := newMockOccurrenceRepo()
	availRepo := newMockAvailabilityRepo()
	settings := testSettings()
	settings.anchor = schedule.NewAnchor(time.UTC)
	return &testDeps{
		occRepo:   occRepo,
		availRepo: availRepo,
		repo:      &repository.Repository{Occurrence: occRepo, Availability: availRepo},
		settings:  settings,
	}
}

var nopLogger = zap.NewNop()

// seed 直接写入一条课程
func (d *testDeps) seed(id string, start time.Time, dur time.Duration, seriesID string) *model.Occurrence {
	occ := &model.Occurrence{
		OccurrenceID: id,
		TenantScoped: model.TenantScoped{TenantID: testTenant},
		OwnerID:      testActor.UserID,
		CourseID:     "course-1",
		Title:        "数学",
		StartAt:      start,
		EndAt:        start.Add(dur),
		Timezone:     "UTC",
		Status:       model.OccurrenceStatusScheduled,
	}
	if seriesID != "" {
		sid := seriesID
		pattern := model.RecurrencePatternWeekly
		occ.SeriesID = &sid
		occ.RecurrencePattern = &pattern
	}
	_ = d.occRepo.Create(context.Background(), occ)
	return occ
}

func strPtr(s string) *string { return &s }
