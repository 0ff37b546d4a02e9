package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tamu-thinktank/website-sub002/internal/model"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type fixture struct {
	repo    *Repository
	cycle   *model.RecruitmentCycle
	team    *model.Team
	area    *model.ResearchArea
	officer *model.Officer
	slot    *model.TimeSlot
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	repo := NewRepository(newTestDB(t))

	cycle := &model.RecruitmentCycle{
		Name:     "Fall 2026",
		StartsOn: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndsOn:   time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		IsActive: true,
	}
	require.NoError(t, repo.Cycle.Create(ctx, cycle))

	team := &model.Team{Name: "Propulsion", IsActive: true}
	require.NoError(t, repo.Team.Create(ctx, team))

	area := &model.ResearchArea{TeamID: team.TeamID, Name: "Hybrid Engines"}
	require.NoError(t, repo.ResearchArea.Create(ctx, area))

	officer := &model.Officer{Name: "Alice", Email: "alice@tamu.edu", Role: model.RoleAdmin}
	require.NoError(t, repo.Officer.Create(ctx, officer))

	slot := &model.TimeSlot{
		CycleID:   cycle.CycleID,
		Date:      time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC),
		StartTime: "10:00",
		EndTime:   "10:30",
	}
	require.NoError(t, repo.TimeSlot.Create(ctx, slot))

	return &fixture{repo: repo, cycle: cycle, team: team, area: area, officer: officer, slot: slot}
}

func (f *fixture) newApplication(t *testing.T, name, status string) *model.Application {
	t.Helper()
	app := &model.Application{
		CycleID:        f.cycle.CycleID,
		Name:           name,
		Email:          fmt.Sprintf("%s@tamu.edu", name),
		UIN:            "123456789",
		Major:          "Aerospace",
		GradYear:       2028,
		Statement:      "I like rockets",
		Status:         status,
		LookupCodeHash: "hash",
	}
	require.NoError(t, f.repo.Application.Create(context.Background(), app, nil))
	return app
}

// ═══════════════════════════════════════════════════════════
// Application
// ═══════════════════════════════════════════════════════════

func TestApplicationRepo_CreateWithResearchAreas(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	app := &model.Application{
		CycleID:         f.cycle.CycleID,
		Name:            "Bob",
		Email:           "Bob@TAMU.edu",
		UIN:             "987654321",
		Major:           "Mechanical",
		GradYear:        2027,
		Statement:       "statement",
		Status:          model.StatusSubmitted,
		PreferredTeamID: &f.team.TeamID,
		LookupCodeHash:  "hash",
	}
	require.NoError(t, f.repo.Application.Create(ctx, app, []string{f.area.ResearchAreaID}))
	assert.NotEmpty(t, app.ApplicationID)
	assert.Equal(t, 1, app.Version)

	detail, err := f.repo.Application.GetDetail(ctx, app.ApplicationID)
	require.NoError(t, err)
	require.Len(t, detail.ResearchAreas, 1)
	assert.Equal(t, "Hybrid Engines", detail.ResearchAreas[0].Name)
	require.NotNil(t, detail.PreferredTeam)
	assert.Equal(t, "Propulsion", detail.PreferredTeam.Name)

	byEmail, err := f.repo.Application.GetByCycleAndEmail(ctx, f.cycle.CycleID, "bob@tamu.edu")
	require.NoError(t, err)
	assert.Equal(t, app.ApplicationID, byEmail.ApplicationID)
}

func TestApplicationRepo_GetByID_NotFound(t *testing.T) {
	f := setupFixture(t)
	_, err := f.repo.Application.GetByID(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestApplicationRepo_UpdateOptimisticLock(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	app := f.newApplication(t, "carol", model.StatusSubmitted)

	stale := *app

	app.Status = model.StatusReviewing
	require.NoError(t, f.repo.Application.Update(ctx, app))
	assert.Equal(t, 2, app.Version)

	stale.Status = model.StatusRejected
	err := f.repo.Application.Update(ctx, &stale)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)

	got, err := f.repo.Application.GetByID(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReviewing, got.Status)
}

func TestApplicationRepo_TransferStatus(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	a := f.newApplication(t, "a", model.StatusSubmitted)
	b := f.newApplication(t, "b", model.StatusSubmitted)
	f.newApplication(t, "c", model.StatusSubmitted)
	d := f.newApplication(t, "d", model.StatusReviewing)

	// 仅限指定 ID，且 d 的状态不匹配
	moved, err := f.repo.Application.TransferStatus(ctx, f.cycle.CycleID,
		model.StatusSubmitted, model.StatusRejected,
		[]string{a.ApplicationID, b.ApplicationID, d.ApplicationID}, f.officer.OfficerID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, moved)

	got, err := f.repo.Application.GetByID(ctx, a.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
	assert.Equal(t, 2, got.Version)

	got, err = f.repo.Application.GetByID(ctx, d.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusReviewing, got.Status)

	// 不指定 ID 时转移全部剩余 submitted
	moved, err = f.repo.Application.TransferStatus(ctx, f.cycle.CycleID,
		model.StatusSubmitted, model.StatusWaitlisted, nil, f.officer.OfficerID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)
}

func TestApplicationRepo_ListFilters(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	f.newApplication(t, "dave", model.StatusSubmitted)
	e := f.newApplication(t, "erin", model.StatusReviewing)
	e.AssignedTeamID = &f.team.TeamID
	require.NoError(t, f.repo.Application.Update(ctx, e))

	list, total, err := f.repo.Application.List(ctx, ApplicationFilter{CycleID: f.cycle.CycleID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = f.repo.Application.List(ctx, ApplicationFilter{Status: model.StatusReviewing}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "erin", list[0].Name)

	_, total, err = f.repo.Application.List(ctx, ApplicationFilter{TeamID: f.team.TeamID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	list, total, err = f.repo.Application.List(ctx, ApplicationFilter{Keyword: "DAV"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "dave", list[0].Name)

	count, err := f.repo.Team.CountAssigned(ctx, f.team.TeamID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

// ═══════════════════════════════════════════════════════════
// Review
// ═══════════════════════════════════════════════════════════

func TestReviewRepo_UpsertAndAggregate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	app := f.newApplication(t, "frank", model.StatusSubmitted)

	other := &model.Officer{Name: "Bob", Email: "bob@tamu.edu"}
	require.NoError(t, f.repo.Officer.Create(ctx, other))

	require.NoError(t, f.repo.Review.Upsert(ctx, &model.ApplicationReview{
		ApplicationID: app.ApplicationID, OfficerID: f.officer.OfficerID, Score: 2,
	}))
	require.NoError(t, f.repo.Review.Upsert(ctx, &model.ApplicationReview{
		ApplicationID: app.ApplicationID, OfficerID: other.OfficerID, Score: 5,
	}))
	// 同一干事再次评审覆盖旧分数
	require.NoError(t, f.repo.Review.Upsert(ctx, &model.ApplicationReview{
		ApplicationID: app.ApplicationID, OfficerID: f.officer.OfficerID, Score: 4, Comment: "改为 4 分",
	}))

	reviews, err := f.repo.Review.ListByApplication(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	mine, err := f.repo.Review.GetByApplicationAndOfficer(ctx, app.ApplicationID, f.officer.OfficerID)
	require.NoError(t, err)
	assert.Equal(t, 4, mine.Score)
	assert.Equal(t, "改为 4 分", mine.Comment)

	avg, count, err := f.repo.Review.Aggregate(ctx, app.ApplicationID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	assert.InDelta(t, 4.5, avg, 0.001)
}

func TestReviewRepo_AggregateEmpty(t *testing.T) {
	f := setupFixture(t)
	app := f.newApplication(t, "gina", model.StatusSubmitted)

	avg, count, err := f.repo.Review.Aggregate(context.Background(), app.ApplicationID)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, avg)
}

// ═══════════════════════════════════════════════════════════
// Availability / Interview
// ═══════════════════════════════════════════════════════════

func TestOfficerTimeRepo_Replace(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	slot2 := &model.TimeSlot{CycleID: f.cycle.CycleID, Date: f.slot.Date, StartTime: "10:30", EndTime: "11:00"}
	require.NoError(t, f.repo.TimeSlot.Create(ctx, slot2))

	require.NoError(t, f.repo.OfficerTime.Replace(ctx, f.officer.OfficerID, f.cycle.CycleID,
		[]string{f.slot.TimeSlotID, slot2.TimeSlotID}))
	times, err := f.repo.OfficerTime.ListByOfficer(ctx, f.officer.OfficerID, f.cycle.CycleID)
	require.NoError(t, err)
	assert.Len(t, times, 2)

	// 整体替换
	require.NoError(t, f.repo.OfficerTime.Replace(ctx, f.officer.OfficerID, f.cycle.CycleID,
		[]string{slot2.TimeSlotID}))
	times, err = f.repo.OfficerTime.ListByCycle(ctx, f.cycle.CycleID)
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, slot2.TimeSlotID, times[0].TimeSlotID)

	ok, err := f.repo.OfficerTime.Exists(ctx, f.officer.OfficerID, f.slot.TimeSlotID)
	require.NoError(t, err)
	assert.False(t, ok)

	// 清空
	require.NoError(t, f.repo.OfficerTime.Replace(ctx, f.officer.OfficerID, f.cycle.CycleID, nil))
	times, err = f.repo.OfficerTime.ListBySlot(ctx, slot2.TimeSlotID)
	require.NoError(t, err)
	assert.Empty(t, times)
}

func TestOfficerTimeRepo_ListByCycle_SkipsInactiveOfficers(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	bob := &model.Officer{Name: "Bob", Email: "bob@tamu.edu", Role: model.RoleOfficer, IsActive: true}
	require.NoError(t, f.repo.Officer.Create(ctx, bob))
	carol := &model.Officer{Name: "Carol", Email: "carol@tamu.edu", Role: model.RoleOfficer, IsActive: true}
	require.NoError(t, f.repo.Officer.Create(ctx, carol))

	for _, o := range []*model.Officer{f.officer, bob, carol} {
		require.NoError(t, f.repo.OfficerTime.Replace(ctx, o.OfficerID, f.cycle.CycleID, []string{f.slot.TimeSlotID}))
	}
	times, err := f.repo.OfficerTime.ListByCycle(ctx, f.cycle.CycleID)
	require.NoError(t, err)
	assert.Len(t, times, 3)

	require.NoError(t, f.repo.Officer.Delete(ctx, bob.OfficerID, f.officer.OfficerID))
	carol.IsActive = false
	require.NoError(t, f.repo.Officer.Update(ctx, carol))

	times, err = f.repo.OfficerTime.ListByCycle(ctx, f.cycle.CycleID)
	require.NoError(t, err)
	require.Len(t, times, 1)
	assert.Equal(t, f.officer.OfficerID, times[0].OfficerID)

	// 勾选记录保留，恢复在职后重新计入
	cycles, err := f.repo.OfficerTime.CycleIDsByOfficer(ctx, carol.OfficerID)
	require.NoError(t, err)
	assert.Equal(t, []string{f.cycle.CycleID}, cycles)
}

func TestInterviewRepo_ActiveAndStatus(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	app := f.newApplication(t, "hank", model.StatusSubmitted)

	iv := &model.Interview{
		CycleID:       f.cycle.CycleID,
		ApplicationID: app.ApplicationID,
		OfficerID:     f.officer.OfficerID,
		TimeSlotID:    f.slot.TimeSlotID,
		Location:      "Zachry 420",
		Status:        model.InterviewScheduled,
	}
	require.NoError(t, f.repo.Interview.Create(ctx, iv))

	busy, err := f.repo.Interview.HasActive(ctx, f.officer.OfficerID, f.slot.TimeSlotID)
	require.NoError(t, err)
	assert.True(t, busy)

	got, err := f.repo.Interview.GetByID(ctx, iv.InterviewID)
	require.NoError(t, err)
	require.NotNil(t, got.Application)
	require.NotNil(t, got.TimeSlot)
	assert.Equal(t, "hank", got.Application.Name)

	got.Status = model.InterviewCancelled
	require.NoError(t, f.repo.Interview.UpdateStatus(ctx, got))

	busy, err = f.repo.Interview.HasActive(ctx, f.officer.OfficerID, f.slot.TimeSlotID)
	require.NoError(t, err)
	assert.False(t, busy, "已取消的面试不占用时间段")

	active, err := f.repo.Interview.ListActiveByCycle(ctx, f.cycle.CycleID)
	require.NoError(t, err)
	assert.Empty(t, active)

	list, err := f.repo.Interview.List(ctx, InterviewFilter{OfficerID: f.officer.OfficerID})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	note := &model.InterviewNote{
		InterviewID: iv.InterviewID, OfficerID: f.officer.OfficerID,
		Content: "表现不错", Rating: 4, Recommendation: model.RecommendYes,
	}
	require.NoError(t, f.repo.Note.Create(ctx, note))
	notes, err := f.repo.Note.ListByInterview(ctx, iv.InterviewID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.NotNil(t, notes[0].Officer)
	assert.Equal(t, "Alice", notes[0].Officer.Name)
}

// ═══════════════════════════════════════════════════════════
// Organization
// ═══════════════════════════════════════════════════════════

func TestCycleRepo_ClearActive(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	active, err := f.repo.Cycle.GetActive(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.cycle.CycleID, active.CycleID)

	require.NoError(t, f.repo.Cycle.ClearActive(ctx))
	_, err = f.repo.Cycle.GetActive(ctx)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOfficerRepo_BindFirebaseUIDOnce(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Officer.BindFirebaseUID(ctx, f.officer.OfficerID, "uid-1"))
	require.NoError(t, f.repo.Officer.BindFirebaseUID(ctx, f.officer.OfficerID, "uid-2"))

	got, err := f.repo.Officer.GetByFirebaseUID(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, f.officer.OfficerID, got.OfficerID)

	_, err = f.repo.Officer.GetByFirebaseUID(ctx, "uid-2")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	byEmail, err := f.repo.Officer.GetByEmail(ctx, "ALICE@tamu.edu")
	require.NoError(t, err)
	assert.Equal(t, f.officer.OfficerID, byEmail.OfficerID)
}

func TestTeamRepo_SoftDelete(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	require.NoError(t, f.repo.Team.Delete(ctx, f.team.TeamID, f.officer.OfficerID))
	_, err := f.repo.Team.GetByID(ctx, f.team.TeamID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	teams, err := f.repo.Team.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, teams)
}

func TestRecruitmentConfigRepo_DefaultAndUpdate(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	cfg, err := f.repo.Config.Get(ctx)
	require.NoError(t, err)
	assert.True(t, cfg.ApplicationsOpen)
	assert.Equal(t, 2, cfg.MinInterviewers)

	cfg.ApplicationsOpen = false
	cfg.MinInterviewers = 3
	require.NoError(t, f.repo.Config.Update(ctx, cfg))

	again, err := f.repo.Config.Get(ctx)
	require.NoError(t, err)
	assert.False(t, again.ApplicationsOpen)
	assert.Equal(t, 3, again.MinInterviewers)
}

// ═══════════════════════════════════════════════════════════
// Transaction
// ═══════════════════════════════════════════════════════════

func TestRepository_TransactionRollback(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var teamID string
	err := f.repo.Transaction(ctx, func(txRepo *Repository) error {
		team := &model.Team{Name: "Avionics", IsActive: true}
		if err := txRepo.Team.Create(ctx, team); err != nil {
			return err
		}
		teamID = team.TeamID
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = f.repo.Team.GetByID(ctx, teamID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "回滚后不应查到数据")
}

func TestRepository_TransactionCommit(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	var teamID string
	err := f.repo.Transaction(ctx, func(txRepo *Repository) error {
		team := &model.Team{Name: "Structures", IsActive: true}
		err := txRepo.Team.Create(ctx, team)
		teamID = team.TeamID
		return err
	})
	require.NoError(t, err)

	got, err := f.repo.Team.GetByID(ctx, teamID)
	require.NoError(t, err)
	assert.Equal(t, "Structures", got.Name)
}

func TestRepository_BeginTxWithoutDB(t *testing.T) {
	repo := &Repository{}
	tx, err := repo.BeginTx(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, tx)
	assert.Same(t, repo, repo.WithTx(nil))
}
