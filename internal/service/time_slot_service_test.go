package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
)

// ── 测试辅助 ──

func setupTestTimeSlotService() (TimeSlotService, *mockRepos, *fakeCache) {
	m := newMockRepos()
	cache := newFakeCache()
	return NewTimeSlotService(m.repo, cache, zap.NewNop()), m, cache
}

// ── Create 测试 ──

func TestTimeSlotService_Create_Success(t *testing.T) {
	svc, m, cache := setupTestTimeSlotService()
	c := m.activeCycle("c1")

	resp, err := svc.Create(context.Background(), &dto.CreateTimeSlotRequest{
		CycleID:   "c1",
		Date:      formatDate(c.StartsOn),
		StartTime: "9:00",
		EndTime:   "09:30",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.StartTime != "09:00" || resp.EndTime != "09:30" {
		t.Errorf("期望规范化为 09:00-09:30，实际=%s-%s", resp.StartTime, resp.EndTime)
	}
	if len(cache.invalidated) != 1 || cache.invalidated[0] != "c1" {
		t.Errorf("期望清除 c1 的可用性缓存，实际=%v", cache.invalidated)
	}
}

func TestTimeSlotService_Create_Errors(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	day := formatDate(c.StartsOn)
	m.addSlot("ts-1", "c1", c.StartsOn, "10:00:00", "10:30:00")

	tests := []struct {
		name    string
		req     dto.CreateTimeSlotRequest
		wantErr error
	}{
		{"开始不早于结束", dto.CreateTimeSlotRequest{CycleID: "c1", Date: day, StartTime: "11:00", EndTime: "10:00"}, ErrTimeSlotInvalid},
		{"时间格式错误", dto.CreateTimeSlotRequest{CycleID: "c1", Date: day, StartTime: "ab", EndTime: "10:00"}, ErrTimeSlotInvalid},
		{"超出周期", dto.CreateTimeSlotRequest{CycleID: "c1", Date: formatDate(c.EndsOn.AddDate(0, 0, 1)), StartTime: "10:00", EndTime: "10:30"}, ErrTimeSlotOutOfCycle},
		{"重复开始时间", dto.CreateTimeSlotRequest{CycleID: "c1", Date: day, StartTime: "10:00", EndTime: "10:45"}, ErrTimeSlotDuplicate},
		{"周期不存在", dto.CreateTimeSlotRequest{CycleID: "missing", Date: day, StartTime: "10:00", EndTime: "10:30"}, ErrCycleNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := svc.Create(context.Background(), &req, "admin-001")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

// ── Generate 测试 ──

func TestTimeSlotService_Generate(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	from := c.StartsOn
	to := c.StartsOn.AddDate(0, 0, 2)
	// 已有的 09:00 会被跳过
	m.addSlot("ts-1", "c1", from, "09:00", "09:30")

	resp, err := svc.Generate(context.Background(), &dto.GenerateTimeSlotsRequest{
		CycleID:     "c1",
		StartDate:   formatDate(from),
		EndDate:     formatDate(to),
		DayStart:    "09:00",
		DayEnd:      "10:30",
		SlotMinutes: 30,
	}, "admin-001")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	// 3 天 × 3 个时间段，跳过 1 个
	if resp.Created != 8 || resp.Skipped != 1 {
		t.Errorf("期望 created=8 skipped=1，实际=%+v", resp)
	}
	if len(m.slots.slots) != 9 {
		t.Errorf("期望共9个时间段，实际=%d", len(m.slots.slots))
	}
}

func TestTimeSlotService_Generate_Weekdays(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	from := c.StartsOn
	to := c.StartsOn.AddDate(0, 0, 6)

	resp, err := svc.Generate(context.Background(), &dto.GenerateTimeSlotsRequest{
		CycleID:     "c1",
		StartDate:   formatDate(from),
		EndDate:     formatDate(to),
		DayStart:    "09:00",
		DayEnd:      "10:00",
		SlotMinutes: 60,
		Weekdays:    []int{int(from.Weekday())},
	}, "admin-001")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if resp.Created != 1 {
		t.Errorf("一周内只应生成1个时间段，实际=%d", resp.Created)
	}
}

func TestTimeSlotService_Generate_Invalid(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	day := formatDate(c.StartsOn)

	_, err := svc.Generate(context.Background(), &dto.GenerateTimeSlotsRequest{
		CycleID: "c1", StartDate: day, EndDate: day, DayStart: "10:00", DayEnd: "10:15", SlotMinutes: 30,
	}, "admin-001")
	if !errors.Is(err, ErrTimeSlotInvalid) {
		t.Errorf("期望 ErrTimeSlotInvalid，实际: %v", err)
	}

	_, err = svc.Generate(context.Background(), &dto.GenerateTimeSlotsRequest{
		CycleID: "c1", StartDate: day, EndDate: day, DayStart: "10:00", DayEnd: "12:00", SlotMinutes: 0,
	}, "admin-001")
	if !errors.Is(err, ErrTimeSlotInvalid) {
		t.Errorf("期望 ErrTimeSlotInvalid，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestTimeSlotService_Delete_InUse(t *testing.T) {
	svc, m, cache := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	m.addSlot("ts-1", "c1", c.StartsOn, "09:00", "09:30")
	m.interviews.interviews["iv-1"] = &model.Interview{
		InterviewID: "iv-1", CycleID: "c1", TimeSlotID: "ts-1", Status: model.InterviewScheduled,
	}

	if err := svc.Delete(context.Background(), "ts-1", "admin-001"); !errors.Is(err, ErrTimeSlotInUse) {
		t.Errorf("期望 ErrTimeSlotInUse，实际: %v", err)
	}

	// 已取消的面试不占用时间段
	m.interviews.interviews["iv-1"].Status = model.InterviewCancelled
	if err := svc.Delete(context.Background(), "ts-1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(cache.invalidated) != 1 {
		t.Errorf("期望清除一次缓存，实际=%d", len(cache.invalidated))
	}
}

// ── Update / List 测试 ──

func TestTimeSlotService_Update(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	m.addSlot("ts-1", "c1", c.StartsOn, "09:00", "09:30")
	m.addSlot("ts-2", "c1", c.StartsOn, "10:00", "10:30")

	start := "10:00"
	end := "10:45"
	_, err := svc.Update(context.Background(), "ts-1", &dto.UpdateTimeSlotRequest{StartTime: &start, EndTime: &end}, "admin-001")
	if !errors.Is(err, ErrTimeSlotDuplicate) {
		t.Errorf("期望 ErrTimeSlotDuplicate，实际: %v", err)
	}

	end = "09:45"
	resp, err := svc.Update(context.Background(), "ts-1", &dto.UpdateTimeSlotRequest{EndTime: &end}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.EndTime != "09:45" {
		t.Errorf("期望EndTime=09:45，实际=%s", resp.EndTime)
	}
}

func TestTimeSlotService_List_ByDate(t *testing.T) {
	svc, m, _ := setupTestTimeSlotService()
	c := m.activeCycle("c1")
	m.addSlot("ts-1", "c1", c.StartsOn, "09:00", "09:30")
	m.addSlot("ts-2", "c1", c.StartsOn.AddDate(0, 0, 1), "09:00", "09:30")

	list, err := svc.List(context.Background(), &dto.TimeSlotListRequest{Date: formatDate(c.StartsOn)})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(list) != 1 || list[0].ID != "ts-1" {
		t.Errorf("期望只返回 ts-1，实际=%v", list)
	}
}
