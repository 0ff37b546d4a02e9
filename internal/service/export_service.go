package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// interviewTimezone 时间段按学校所在时区解释
const interviewTimezone = "America/Chicago"

// ExportService 导出业务接口
//
// 导出以内存 buffer 返回，由 Handler 层设置 Content-Type / Content-Disposition 后写出。
type ExportService interface {
	// ExportApplications 导出周期内全部申请为 Excel，每个状态一个 Sheet
	ExportApplications(ctx context.Context, cycleID string) (*bytes.Buffer, string, error)
	// ExportInterviewCalendar 导出干事自己的面试安排为 iCalendar
	ExportInterviewCalendar(ctx context.Context, cycleID, officerID string) ([]byte, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	loc, err := time.LoadLocation(interviewTimezone)
	if err != nil {
		logger.Warn("加载时区失败，日历导出使用 UTC", zap.String("tz", interviewTimezone), zap.Error(err))
		loc = time.UTC
	}
	return &exportService{repo: repo, logger: logger, loc: loc, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// ExportApplications 申请导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 每个申请状态一个 Sheet（submitted / reviewing / ...），无数据时仅保留表头
//   - 第一行为标题，第二行为表头，之后每行一份申请

var applicationHeaders = []string{"姓名", "邮箱", "UIN", "专业", "毕业年份", "意向小组", "分配小组", "研究方向", "评审均分", "评审数", "简历", "提交时间"}

func (s *exportService) ExportApplications(ctx context.Context, cycleID string) (*bytes.Buffer, string, error) {
	cycle, err := resolveCycle(ctx, s.repo, cycleID)
	if err != nil {
		return nil, "", err
	}

	apps, err := s.repo.Application.ListByCycle(ctx, cycle.CycleID)
	if err != nil {
		s.logger.Error("查询周期申请失败", zap.String("cycle_id", cycle.CycleID), zap.Error(err))
		return nil, "", err
	}
	byStatus := lo.GroupBy(apps, func(a model.Application) string { return a.Status })

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, status := range model.ApplicationStatuses {
		sheet := status
		idx, err := f.NewSheet(sheet)
		if err != nil {
			s.logger.Error("创建工作表失败", zap.String("sheet", sheet), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		last := colName(len(applicationHeaders) - 1)
		f.SetCellValue(sheet, "A1", fmt.Sprintf("%s - %s", cycle.Name, status))
		f.MergeCell(sheet, "A1", last+"1")
		f.SetCellStyle(sheet, "A1", "A1", headerStyle)

		for c, h := range applicationHeaders {
			f.SetCellValue(sheet, cell(colName(c), 2), h)
		}
		f.SetCellStyle(sheet, "A2", last+"2", headerStyle)
		f.SetColWidth(sheet, "A", "B", 24)
		f.SetColWidth(sheet, "C", last, 14)

		row := 3
		for _, a := range byStatus[status] {
			values := []interface{}{
				a.Name,
				a.Email,
				a.UIN,
				a.Major,
				a.GradYear,
				teamName(a.PreferredTeam),
				teamName(a.AssignedTeam),
				strings.Join(lo.Map(a.ResearchAreas, func(r model.ResearchArea, _ int) string { return r.Name }), ", "),
				scoreText(a.ScoreAvg),
				a.ReviewCount,
				a.ResumeURL,
				formatTime(a.CreatedAt),
			}
			for c, v := range values {
				f.SetCellValue(sheet, cell(colName(c), row), v)
			}
			row++
		}
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("applications_%s.xlsx", strings.ReplaceAll(cycle.Name, " ", "_"))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportInterviewCalendar 面试安排导出为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportInterviewCalendar(ctx context.Context, cycleID, officerID string) ([]byte, string, error) {
	cycle, err := resolveCycle(ctx, s.repo, cycleID)
	if err != nil {
		return nil, "", err
	}

	interviews, err := s.repo.Interview.List(ctx, repository.InterviewFilter{
		CycleID:   cycle.CycleID,
		OfficerID: officerID,
	})
	if err != nil {
		s.logger.Error("查询面试失败", zap.String("officer_id", officerID), zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ThinkTank//Recruitment//EN")
	cal.SetXWRCalName(fmt.Sprintf("%s 面试", cycle.Name))
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now().UTC()
	for _, iv := range interviews {
		if iv.TimeSlot == nil {
			continue
		}
		start, end, err := s.slotBounds(iv.TimeSlot)
		if err != nil {
			s.logger.Warn("时间段格式异常，跳过", zap.String("time_slot_id", iv.TimeSlotID), zap.Error(err))
			continue
		}

		event := cal.AddEvent(iv.InterviewID + "@recruitment")
		event.SetDtStampTime(stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetLocation(iv.Location)
		applicant := "申请人"
		if iv.Application != nil {
			applicant = iv.Application.Name
			event.SetDescription(fmt.Sprintf("%s <%s>", iv.Application.Name, iv.Application.Email))
		}
		event.SetSummary(fmt.Sprintf("面试：%s", applicant))
		if iv.Status == model.InterviewCancelled {
			event.SetStatus(ics.ObjectStatusCancelled)
		} else {
			event.SetStatus(ics.ObjectStatusConfirmed)
		}
	}

	return []byte(cal.Serialize()), "interviews.ics", nil
}

// slotBounds 将 date + "HH:MM" 解释为面试所在时区的时刻
func (s *exportService) slotBounds(slot *model.TimeSlot) (time.Time, time.Time, error) {
	startMin, err := parseClock(slot.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMin, err := parseClock(slot.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	y, m, d := slot.Date.Date()
	start := time.Date(y, m, d, startMin/60, startMin%60, 0, 0, s.loc)
	end := time.Date(y, m, d, endMin/60, endMin%60, 0, 0, s.loc)
	return start, end, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func teamName(t *model.Team) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func scoreText(avg *float64) string {
	if avg == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *avg)
}
