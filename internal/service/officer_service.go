package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/dto"
	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
)

// ── 干事模块业务错误 ──

var (
	ErrOfficerNotFound    = errors.New("干事不存在")
	ErrOfficerEmailExists = errors.New("该邮箱已录入")
	ErrOfficerSelfDelete  = errors.New("不能删除自己")
	ErrOfficerSelfDemote  = errors.New("不能修改自己的角色或停用自己")
)

// OfficerService 干事业务接口
type OfficerService interface {
	Create(ctx context.Context, req *dto.CreateOfficerRequest, callerID string) (*dto.OfficerResponse, error)
	GetByID(ctx context.Context, id string) (*dto.OfficerResponse, error)
	List(ctx context.Context, req *dto.OfficerListRequest) ([]dto.OfficerResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateOfficerRequest, callerID string) (*dto.OfficerResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportOfficerRow, error)
	ImportOfficers(ctx context.Context, rows []ImportOfficerRow, callerID string) (*dto.ImportOfficerResponse, error)
}

// ImportOfficerRow Excel 导入解析后的单行数据
type ImportOfficerRow struct {
	Row      int
	Name     string
	Email    string
	Role     string
	TeamName string
}

type officerService struct {
	repo     *repository.Repository
	cache    AvailabilityCache
	revoker  OfficerRevoker
	tokenTTL time.Duration
	logger   *zap.Logger
}

// NewOfficerService 创建 OfficerService 实例
// cache 与 revoker 允许为 nil；tokenTTL 为 Access Token 有效期，决定吊销记录的保留时长
func NewOfficerService(
	repo *repository.Repository,
	cache AvailabilityCache,
	revoker OfficerRevoker,
	tokenTTL time.Duration,
	logger *zap.Logger,
) OfficerService {
	return &officerService{repo: repo, cache: cache, revoker: revoker, tokenTTL: tokenTTL, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *officerService) Create(ctx context.Context, req *dto.CreateOfficerRequest, callerID string) (*dto.OfficerResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.Officer.GetByEmail(ctx, email); err == nil {
		return nil, ErrOfficerEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询干事失败", zap.Error(err))
		return nil, err
	}

	if req.TeamID != nil {
		if err := s.ensureTeam(ctx, *req.TeamID); err != nil {
			return nil, err
		}
	}

	role := req.Role
	if role == "" {
		role = model.RoleOfficer
	}

	officer := &model.Officer{
		Name:     req.Name,
		Email:    email,
		Role:     role,
		TeamID:   req.TeamID,
		IsActive: true,
	}
	officer.CreatedBy = &callerID
	officer.UpdatedBy = &callerID

	if err := s.repo.Officer.Create(ctx, officer); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrOfficerEmailExists
		}
		s.logger.Error("创建干事失败", zap.Error(err))
		return nil, err
	}

	created, err := s.repo.Officer.GetByID(ctx, officer.OfficerID)
	if err != nil {
		return nil, err
	}
	return toOfficerResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *officerService) GetByID(ctx context.Context, id string) (*dto.OfficerResponse, error) {
	officer, err := s.repo.Officer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficerNotFound
		}
		s.logger.Error("查询干事失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toOfficerResponse(officer), nil
}

// ────────────────────── List ──────────────────────

func (s *officerService) List(ctx context.Context, req *dto.OfficerListRequest) ([]dto.OfficerResponse, int64, error) {
	filter := repository.OfficerFilter{
		Role:            req.Role,
		TeamID:          req.TeamID,
		Keyword:         req.Keyword,
		IncludeInactive: req.IncludeInactive,
	}
	officers, total, err := s.repo.Officer.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出干事失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.OfficerResponse, 0, len(officers))
	for i := range officers {
		result = append(result, *toOfficerResponse(&officers[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *officerService) Update(ctx context.Context, id string, req *dto.UpdateOfficerRequest, callerID string) (*dto.OfficerResponse, error) {
	officer, err := s.repo.Officer.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfficerNotFound
		}
		s.logger.Error("查询干事失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if id == callerID {
		if (req.Role != nil && *req.Role != officer.Role) || (req.IsActive != nil && !*req.IsActive) {
			return nil, ErrOfficerSelfDemote
		}
	}

	wasActive := officer.IsActive
	oldRole := officer.Role
	oldTeam := lo.FromPtr(officer.TeamID)

	if req.Name != nil {
		officer.Name = *req.Name
	}
	if req.Role != nil {
		officer.Role = *req.Role
	}
	if req.IsActive != nil {
		officer.IsActive = *req.IsActive
	}
	if req.TeamID != nil {
		if *req.TeamID == "" {
			officer.TeamID = nil
		} else {
			if err := s.ensureTeam(ctx, *req.TeamID); err != nil {
				return nil, err
			}
			officer.TeamID = req.TeamID
		}
		officer.Team = nil
	}

	officer.UpdatedBy = &callerID

	if err := s.repo.Officer.Update(ctx, officer); err != nil {
		s.logger.Error("更新干事失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// Token 中携带角色与小组，任一变化都需重新登录
	if officer.Role != oldRole || lo.FromPtr(officer.TeamID) != oldTeam || (wasActive && !officer.IsActive) {
		s.revokeTokens(ctx, id)
	}
	if wasActive != officer.IsActive {
		s.invalidateAvailability(ctx, id)
	}

	updated, err := s.repo.Officer.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toOfficerResponse(updated), nil
}

// ────────────────────── Delete ──────────────────────

func (s *officerService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrOfficerSelfDelete
	}
	if _, err := s.repo.Officer.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOfficerNotFound
		}
		s.logger.Error("查询干事失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.Officer.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除干事失败", zap.String("id", id), zap.Error(err))
		return err
	}
	s.revokeTokens(ctx, id)
	s.invalidateAvailability(ctx, id)
	return nil
}

// revokeTokens 失败只记录日志，Token 仍会在有效期后自然失效
func (s *officerService) revokeTokens(ctx context.Context, officerID string) {
	if s.revoker == nil {
		return
	}
	if err := s.revoker.RevokeOfficer(ctx, officerID, s.tokenTTL); err != nil {
		s.logger.Warn("吊销干事 Token 失败", zap.String("officer_id", officerID), zap.Error(err))
	}
}

// invalidateAvailability 清除该干事勾选过的所有周期的可用性缓存
func (s *officerService) invalidateAvailability(ctx context.Context, officerID string) {
	if s.cache == nil {
		return
	}
	cycleIDs, err := s.repo.OfficerTime.CycleIDsByOfficer(ctx, officerID)
	if err != nil {
		s.logger.Warn("查询干事勾选周期失败", zap.String("officer_id", officerID), zap.Error(err))
		return
	}
	for _, cycleID := range cycleIDs {
		if err := s.cache.InvalidateAvailability(ctx, cycleID); err != nil {
			s.logger.Warn("清除可用性缓存失败", zap.String("cycle_id", cycleID), zap.Error(err))
		}
	}
}

func (s *officerService) ensureTeam(ctx context.Context, teamID string) error {
	if _, err := s.repo.Team.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return err
	}
	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 500

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱）")
)

// ParseImportFile 解析干事名单 Excel：姓名、邮箱必填，角色、小组可选
func (s *officerService) ParseImportFile(reader io.Reader) ([]ImportOfficerRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["name"] < 0 || colIndex["email"] < 0 {
		return nil, ErrImportBadHeader
	}

	cell := func(row []string, key string) string {
		if idx := colIndex[key]; idx >= 0 && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	var rows []ImportOfficerRow
	for i := 1; i < len(excelRows); i++ {
		item := ImportOfficerRow{
			Row:      i + 1,
			Name:     cell(excelRows[i], "name"),
			Email:    strings.ToLower(cell(excelRows[i], "email")),
			Role:     strings.ToLower(cell(excelRows[i], "role")),
			TeamName: cell(excelRows[i], "team"),
		}
		if item.Name == "" && item.Email == "" && item.Role == "" && item.TeamName == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// parseHeaderIndex 解析表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{"name": -1, "email": -1, "role": -1, "team": -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			idx["name"] = i
		case "邮箱", "email":
			idx["email"] = i
		case "角色", "role":
			idx["role"] = i
		case "小组", "team":
			idx["team"] = i
		}
	}
	return idx
}

// ────────────────────── ImportOfficers ──────────────────────

func (s *officerService) ImportOfficers(ctx context.Context, rows []ImportOfficerRow, callerID string) (*dto.ImportOfficerResponse, error) {
	resp := &dto.ImportOfficerResponse{Total: len(rows)}

	teams, err := s.repo.Team.List(ctx, true)
	if err != nil {
		s.logger.Error("加载小组列表失败", zap.Error(err))
		return nil, err
	}
	teamByName := make(map[string]string, len(teams))
	for _, t := range teams {
		teamByName[t.Name] = t.TeamID
	}

	fail := func(row int, reason string) {
		resp.Failed++
		resp.Errors = append(resp.Errors, dto.ImportOfficerError{Row: row, Reason: reason})
	}

	// 第一阶段：预校验
	var valid []*model.Officer
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		if row.Name == "" || row.Email == "" || !strings.Contains(row.Email, "@") {
			fail(row.Row, "姓名或邮箱为空/格式错误")
			continue
		}
		if seen[row.Email] {
			fail(row.Row, fmt.Sprintf("文件内邮箱重复: %s", row.Email))
			continue
		}
		role := row.Role
		if role == "" {
			role = model.RoleOfficer
		}
		if role != model.RoleOfficer && role != model.RoleAdmin {
			fail(row.Row, fmt.Sprintf("角色无效: %s", row.Role))
			continue
		}
		var teamID *string
		if row.TeamName != "" {
			id, ok := teamByName[row.TeamName]
			if !ok {
				fail(row.Row, fmt.Sprintf("小组不存在: %s", row.TeamName))
				continue
			}
			teamID = strPtr(id)
		}
		if _, err := s.repo.Officer.GetByEmail(ctx, row.Email); err == nil {
			fail(row.Row, fmt.Sprintf("邮箱已录入: %s", row.Email))
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		seen[row.Email] = true
		officer := &model.Officer{Name: row.Name, Email: row.Email, Role: role, TeamID: teamID, IsActive: true}
		officer.CreatedBy = &callerID
		officer.UpdatedBy = &callerID
		valid = append(valid, officer)
	}

	// 第二阶段：事务内批量创建
	if len(valid) > 0 {
		err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
			for _, o := range valid {
				if err := txRepo.Officer.Create(ctx, o); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.logger.Error("批量导入干事失败", zap.Error(err))
			return nil, err
		}
		resp.Success = len(valid)
	}

	s.logger.Info("批量导入干事完成",
		zap.Int("total", resp.Total),
		zap.Int("success", resp.Success),
		zap.Int("failed", resp.Failed),
	)
	return resp, nil
}
