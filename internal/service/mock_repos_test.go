package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/tamu-thinktank/website-sub002/internal/model"
	"github.com/tamu-thinktank/website-sub002/internal/repository"
	pkgerrors "github.com/tamu-thinktank/website-sub002/pkg/errors"
	"github.com/tamu-thinktank/website-sub002/pkg/identity"
	"github.com/tamu-thinktank/website-sub002/pkg/storage"
)

// ── Mock 聚合 ──

type mockRepos struct {
	cycles     *mockCycleRepo
	teams      *mockTeamRepo
	areas      *mockResearchAreaRepo
	officers   *mockOfficerRepo
	apps       *mockApplicationRepo
	reviews    *mockReviewRepo
	slots      *mockTimeSlotRepo
	times      *mockOfficerTimeRepo
	interviews *mockInterviewRepo
	notes      *mockNoteRepo
	config     *mockConfigRepo

	repo *repository.Repository
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		cycles:     &mockCycleRepo{cycles: map[string]*model.RecruitmentCycle{}},
		teams:      &mockTeamRepo{teams: map[string]*model.Team{}, assigned: map[string]int64{}},
		areas:      &mockResearchAreaRepo{areas: map[string]*model.ResearchArea{}},
		officers:   &mockOfficerRepo{officers: map[string]*model.Officer{}},
		apps:       &mockApplicationRepo{apps: map[string]*model.Application{}, areaIDs: map[string][]string{}},
		reviews:    &mockReviewRepo{reviews: map[string]*model.ApplicationReview{}},
		slots:      &mockTimeSlotRepo{slots: map[string]*model.TimeSlot{}},
		times:      &mockOfficerTimeRepo{},
		interviews: &mockInterviewRepo{interviews: map[string]*model.Interview{}},
		notes:      &mockNoteRepo{},
		config: &mockConfigRepo{cfg: model.RecruitmentConfig{
			Singleton:         true,
			ApplicationsOpen:  true,
			MinInterviewers:   2,
			InterviewLocation: "Zachry 420",
		}},
	}
	m.times.officers = m.officers
	m.repo = &repository.Repository{
		Cycle:        m.cycles,
		Team:         m.teams,
		ResearchArea: m.areas,
		Officer:      m.officers,
		Application:  m.apps,
		Review:       m.reviews,
		TimeSlot:     m.slots,
		OfficerTime:  m.times,
		Interview:    m.interviews,
		Note:         m.notes,
		Config:       m.config,
	}
	return m
}

// activeCycle 写入一个覆盖今天前后十天的当前周期
func (m *mockRepos) activeCycle(id string) *model.RecruitmentCycle {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	c := &model.RecruitmentCycle{
		CycleID:  id,
		Name:     "Fall " + id,
		StartsOn: today.AddDate(0, 0, -10),
		EndsOn:   today.AddDate(0, 0, 10),
		IsActive: true,
	}
	m.cycles.cycles[id] = c
	return c
}

func (m *mockRepos) addOfficer(id, role string) *model.Officer {
	o := &model.Officer{OfficerID: id, Name: "干事" + id, Email: id + "@tamu.edu", Role: role, IsActive: true}
	m.officers.officers[id] = o
	return o
}

func (m *mockRepos) addSlot(id, cycleID string, date time.Time, start, end string) *model.TimeSlot {
	s := &model.TimeSlot{TimeSlotID: id, CycleID: cycleID, Date: date, StartTime: start, EndTime: end}
	m.slots.slots[id] = s
	return s
}

func (m *mockRepos) addApplication(id, cycleID, status string) *model.Application {
	a := &model.Application{
		ApplicationID: id,
		CycleID:       cycleID,
		Name:          "申请人" + id,
		Email:         id + "@tamu.edu",
		UIN:           "123456789",
		Major:         "CS",
		GradYear:      2028,
		Status:        status,
	}
	a.Version = 1
	m.apps.apps[id] = a
	return a
}

// ── Mock CycleRepository ──

type mockCycleRepo struct {
	cycles map[string]*model.RecruitmentCycle
}

func (m *mockCycleRepo) Create(_ context.Context, cycle *model.RecruitmentCycle) error {
	if cycle.CycleID == "" {
		cycle.CycleID = "cycle-" + cycle.Name
	}
	m.cycles[cycle.CycleID] = cycle
	return nil
}

func (m *mockCycleRepo) GetByID(_ context.Context, id string) (*model.RecruitmentCycle, error) {
	if c, ok := m.cycles[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCycleRepo) GetActive(_ context.Context) (*model.RecruitmentCycle, error) {
	for _, c := range m.cycles {
		if c.IsActive {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCycleRepo) List(_ context.Context) ([]model.RecruitmentCycle, error) {
	var result []model.RecruitmentCycle
	for _, c := range m.cycles {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCycleRepo) Update(_ context.Context, cycle *model.RecruitmentCycle) error {
	m.cycles[cycle.CycleID] = cycle
	return nil
}

func (m *mockCycleRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.cycles, id)
	return nil
}

func (m *mockCycleRepo) ClearActive(_ context.Context) error {
	for _, c := range m.cycles {
		c.IsActive = false
	}
	return nil
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams    map[string]*model.Team
	assigned map[string]int64
}

func (m *mockTeamRepo) Create(_ context.Context, team *model.Team) error {
	if team.TeamID == "" {
		team.TeamID = "team-" + team.Name
	}
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) GetByName(_ context.Context, name string) (*model.Team, error) {
	for _, t := range m.teams {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeamRepo) List(_ context.Context, includeInactive bool) ([]model.Team, error) {
	var result []model.Team
	for _, t := range m.teams {
		if !includeInactive && !t.IsActive {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func (m *mockTeamRepo) Update(_ context.Context, team *model.Team) error {
	m.teams[team.TeamID] = team
	return nil
}

func (m *mockTeamRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.teams, id)
	return nil
}

func (m *mockTeamRepo) CountAssigned(_ context.Context, teamID string) (int64, error) {
	return m.assigned[teamID], nil
}

// ── Mock ResearchAreaRepository ──

type mockResearchAreaRepo struct {
	areas map[string]*model.ResearchArea
}

func (m *mockResearchAreaRepo) Create(_ context.Context, area *model.ResearchArea) error {
	if area.ResearchAreaID == "" {
		area.ResearchAreaID = "ra-" + area.Name
	}
	m.areas[area.ResearchAreaID] = area
	return nil
}

func (m *mockResearchAreaRepo) GetByID(_ context.Context, id string) (*model.ResearchArea, error) {
	if a, ok := m.areas[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResearchAreaRepo) GetByTeamAndName(_ context.Context, teamID, name string) (*model.ResearchArea, error) {
	for _, a := range m.areas {
		if a.TeamID == teamID && a.Name == name {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResearchAreaRepo) List(_ context.Context, teamID string) ([]model.ResearchArea, error) {
	var result []model.ResearchArea
	for _, a := range m.areas {
		if teamID != "" && a.TeamID != teamID {
			continue
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockResearchAreaRepo) ListByIDs(_ context.Context, ids []string) ([]model.ResearchArea, error) {
	var result []model.ResearchArea
	for _, id := range ids {
		if a, ok := m.areas[id]; ok {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockResearchAreaRepo) Update(_ context.Context, area *model.ResearchArea) error {
	m.areas[area.ResearchAreaID] = area
	return nil
}

func (m *mockResearchAreaRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.areas, id)
	return nil
}

// ── Mock OfficerRepository ──

type mockOfficerRepo struct {
	officers map[string]*model.Officer
}

func (m *mockOfficerRepo) Create(_ context.Context, officer *model.Officer) error {
	if officer.OfficerID == "" {
		officer.OfficerID = "off-" + officer.Email
	}
	m.officers[officer.OfficerID] = officer
	return nil
}

func (m *mockOfficerRepo) GetByID(_ context.Context, id string) (*model.Officer, error) {
	if o, ok := m.officers[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficerRepo) GetByEmail(_ context.Context, email string) (*model.Officer, error) {
	for _, o := range m.officers {
		if o.Email == email {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficerRepo) GetByFirebaseUID(_ context.Context, uid string) (*model.Officer, error) {
	for _, o := range m.officers {
		if o.FirebaseUID != nil && *o.FirebaseUID == uid {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockOfficerRepo) List(_ context.Context, filter repository.OfficerFilter, offset, limit int) ([]model.Officer, int64, error) {
	var result []model.Officer
	for _, o := range m.officers {
		if filter.Role != "" && o.Role != filter.Role {
			continue
		}
		if !filter.IncludeInactive && !o.IsActive {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(o.Name, filter.Keyword) && !strings.Contains(o.Email, filter.Keyword) {
			continue
		}
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OfficerID < result[j].OfficerID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockOfficerRepo) ListByIDs(_ context.Context, ids []string) ([]model.Officer, error) {
	var result []model.Officer
	for _, id := range ids {
		if o, ok := m.officers[id]; ok {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockOfficerRepo) Update(_ context.Context, officer *model.Officer) error {
	m.officers[officer.OfficerID] = officer
	return nil
}

func (m *mockOfficerRepo) BindFirebaseUID(_ context.Context, officerID, uid string) error {
	o, ok := m.officers[officerID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.FirebaseUID = &uid
	return nil
}

func (m *mockOfficerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.officers, id)
	return nil
}

// ── Mock ApplicationRepository ──

// GetByID 返回副本，便于验证乐观锁
type mockApplicationRepo struct {
	apps    map[string]*model.Application
	areaIDs map[string][]string
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application, researchAreaIDs []string) error {
	if app.ApplicationID == "" {
		app.ApplicationID = "app-" + app.Email
	}
	if app.Version == 0 {
		app.Version = 1
	}
	c := *app
	m.apps[app.ApplicationID] = &c
	m.areaIDs[app.ApplicationID] = researchAreaIDs
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	if a, ok := m.apps[id]; ok {
		c := *a
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) GetDetail(ctx context.Context, id string) (*model.Application, error) {
	return m.GetByID(ctx, id)
}

func (m *mockApplicationRepo) GetByCycleAndEmail(_ context.Context, cycleID, email string) (*model.Application, error) {
	for _, a := range m.apps {
		if a.CycleID == cycleID && a.Email == email {
			c := *a
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) List(_ context.Context, filter repository.ApplicationFilter, offset, limit int) ([]model.Application, int64, error) {
	var result []model.Application
	for _, a := range m.apps {
		if filter.CycleID != "" && a.CycleID != filter.CycleID {
			continue
		}
		if filter.Status != "" && a.Status != filter.Status {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ApplicationID < result[j].ApplicationID })
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockApplicationRepo) ListByCycle(_ context.Context, cycleID string) ([]model.Application, error) {
	var result []model.Application
	for _, a := range m.apps {
		if a.CycleID == cycleID {
			result = append(result, *a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ApplicationID < result[j].ApplicationID })
	return result, nil
}

func (m *mockApplicationRepo) Update(_ context.Context, app *model.Application) error {
	stored, ok := m.apps[app.ApplicationID]
	if !ok || stored.Version != app.Version {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version++
	c := *app
	m.apps[app.ApplicationID] = &c
	return nil
}

func (m *mockApplicationRepo) UpdateScore(_ context.Context, id string, avg *float64, count int) error {
	a, ok := m.apps[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.ScoreAvg = avg
	a.ReviewCount = count
	return nil
}

func (m *mockApplicationRepo) TransferStatus(_ context.Context, cycleID, from, to string, ids []string, _ string) (int64, error) {
	only := make(map[string]bool, len(ids))
	for _, id := range ids {
		only[id] = true
	}
	var n int64
	for _, a := range m.apps {
		if a.CycleID != cycleID || a.Status != from {
			continue
		}
		if len(ids) > 0 && !only[a.ApplicationID] {
			continue
		}
		a.Status = to
		a.Version++
		n++
	}
	return n, nil
}

func (m *mockApplicationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.apps, id)
	return nil
}

// ── Mock ReviewRepository ──

type mockReviewRepo struct {
	reviews map[string]*model.ApplicationReview
}

func reviewKey(applicationID, officerID string) string {
	return applicationID + "|" + officerID
}

func (m *mockReviewRepo) Upsert(_ context.Context, review *model.ApplicationReview) error {
	key := reviewKey(review.ApplicationID, review.OfficerID)
	if existing, ok := m.reviews[key]; ok {
		existing.Score = review.Score
		existing.Comment = review.Comment
		return nil
	}
	if review.ReviewID == "" {
		review.ReviewID = "rev-" + key
	}
	m.reviews[key] = review
	return nil
}

func (m *mockReviewRepo) GetByApplicationAndOfficer(_ context.Context, applicationID, officerID string) (*model.ApplicationReview, error) {
	if r, ok := m.reviews[reviewKey(applicationID, officerID)]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReviewRepo) ListByApplication(_ context.Context, applicationID string) ([]model.ApplicationReview, error) {
	var result []model.ApplicationReview
	for _, r := range m.reviews {
		if r.ApplicationID == applicationID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockReviewRepo) Aggregate(_ context.Context, applicationID string) (float64, int64, error) {
	var sum, count int64
	for _, r := range m.reviews {
		if r.ApplicationID == applicationID {
			sum += int64(r.Score)
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

// ── Mock TimeSlotRepository ──

type mockTimeSlotRepo struct {
	slots map[string]*model.TimeSlot
}

func (m *mockTimeSlotRepo) Create(_ context.Context, slot *model.TimeSlot) error {
	if slot.TimeSlotID == "" {
		slot.TimeSlotID = fmt.Sprintf("ts-%s-%s", formatDate(slot.Date), slot.StartTime)
	}
	m.slots[slot.TimeSlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) BatchCreate(ctx context.Context, slots []model.TimeSlot) error {
	for i := range slots {
		s := slots[i]
		if err := m.Create(ctx, &s); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockTimeSlotRepo) GetByID(_ context.Context, id string) (*model.TimeSlot, error) {
	if s, ok := m.slots[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTimeSlotRepo) List(_ context.Context, cycleID string, date *time.Time) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, s := range m.slots {
		if cycleID != "" && s.CycleID != cycleID {
			continue
		}
		if date != nil && formatDate(s.Date) != formatDate(*date) {
			continue
		}
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockTimeSlotRepo) ListByIDs(_ context.Context, ids []string) ([]model.TimeSlot, error) {
	var result []model.TimeSlot
	for _, id := range ids {
		if s, ok := m.slots[id]; ok {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockTimeSlotRepo) Update(_ context.Context, slot *model.TimeSlot) error {
	m.slots[slot.TimeSlotID] = slot
	return nil
}

func (m *mockTimeSlotRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.slots, id)
	return nil
}

// ── Mock OfficerTimeRepository ──

type mockOfficerTimeRepo struct {
	times    []model.OfficerTime
	officers *mockOfficerRepo
}

func (m *mockOfficerTimeRepo) add(officerID, slotID, cycleID string) {
	m.times = append(m.times, model.OfficerTime{OfficerID: officerID, TimeSlotID: slotID, CycleID: cycleID})
}

func (m *mockOfficerTimeRepo) ListByOfficer(_ context.Context, officerID, cycleID string) ([]model.OfficerTime, error) {
	var result []model.OfficerTime
	for _, t := range m.times {
		if t.OfficerID == officerID && t.CycleID == cycleID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockOfficerTimeRepo) ListByCycle(_ context.Context, cycleID string) ([]model.OfficerTime, error) {
	var result []model.OfficerTime
	for _, t := range m.times {
		if t.CycleID != cycleID {
			continue
		}
		if m.officers != nil {
			o, ok := m.officers.officers[t.OfficerID]
			if !ok || !o.IsActive {
				continue
			}
		}
		result = append(result, t)
	}
	return result, nil
}

func (m *mockOfficerTimeRepo) CycleIDsByOfficer(_ context.Context, officerID string) ([]string, error) {
	var result []string
	for _, t := range m.times {
		if t.OfficerID == officerID && !lo.Contains(result, t.CycleID) {
			result = append(result, t.CycleID)
		}
	}
	return result, nil
}

func (m *mockOfficerTimeRepo) ListBySlot(_ context.Context, slotID string) ([]model.OfficerTime, error) {
	var result []model.OfficerTime
	for _, t := range m.times {
		if t.TimeSlotID == slotID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockOfficerTimeRepo) Exists(_ context.Context, officerID, slotID string) (bool, error) {
	for _, t := range m.times {
		if t.OfficerID == officerID && t.TimeSlotID == slotID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockOfficerTimeRepo) Replace(_ context.Context, officerID, cycleID string, slotIDs []string) error {
	kept := m.times[:0]
	for _, t := range m.times {
		if t.OfficerID == officerID && t.CycleID == cycleID {
			continue
		}
		kept = append(kept, t)
	}
	m.times = kept
	for _, id := range slotIDs {
		m.add(officerID, id, cycleID)
	}
	return nil
}

// ── Mock InterviewRepository ──

type mockInterviewRepo struct {
	interviews map[string]*model.Interview
}

func (m *mockInterviewRepo) Create(_ context.Context, interview *model.Interview) error {
	if interview.InterviewID == "" {
		interview.InterviewID = fmt.Sprintf("iv-%d", len(m.interviews)+1)
	}
	if interview.Version == 0 {
		interview.Version = 1
	}
	c := *interview
	m.interviews[interview.InterviewID] = &c
	return nil
}

func (m *mockInterviewRepo) GetByID(_ context.Context, id string) (*model.Interview, error) {
	if iv, ok := m.interviews[id]; ok {
		c := *iv
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockInterviewRepo) List(_ context.Context, filter repository.InterviewFilter) ([]model.Interview, error) {
	var result []model.Interview
	for _, iv := range m.interviews {
		if filter.CycleID != "" && iv.CycleID != filter.CycleID {
			continue
		}
		if filter.OfficerID != "" && iv.OfficerID != filter.OfficerID {
			continue
		}
		if filter.ApplicationID != "" && iv.ApplicationID != filter.ApplicationID {
			continue
		}
		if filter.TimeSlotID != "" && iv.TimeSlotID != filter.TimeSlotID {
			continue
		}
		if filter.Status != "" && iv.Status != filter.Status {
			continue
		}
		result = append(result, *iv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].InterviewID < result[j].InterviewID })
	return result, nil
}

func (m *mockInterviewRepo) ListActiveByCycle(_ context.Context, cycleID string) ([]model.Interview, error) {
	var result []model.Interview
	for _, iv := range m.interviews {
		if iv.CycleID == cycleID && iv.Status != model.InterviewCancelled {
			result = append(result, *iv)
		}
	}
	return result, nil
}

func (m *mockInterviewRepo) HasActive(_ context.Context, officerID, slotID string) (bool, error) {
	for _, iv := range m.interviews {
		if iv.OfficerID == officerID && iv.TimeSlotID == slotID && iv.Status != model.InterviewCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockInterviewRepo) UpdateStatus(_ context.Context, interview *model.Interview) error {
	stored, ok := m.interviews[interview.InterviewID]
	if !ok || stored.Version != interview.Version {
		return pkgerrors.ErrOptimisticLock
	}
	interview.Version++
	c := *interview
	m.interviews[interview.InterviewID] = &c
	return nil
}

// ── Mock InterviewNoteRepository ──

type mockNoteRepo struct {
	notes []model.InterviewNote
}

func (m *mockNoteRepo) Create(_ context.Context, note *model.InterviewNote) error {
	if note.NoteID == "" {
		note.NoteID = fmt.Sprintf("note-%d", len(m.notes)+1)
	}
	m.notes = append(m.notes, *note)
	return nil
}

func (m *mockNoteRepo) ListByInterview(_ context.Context, interviewID string) ([]model.InterviewNote, error) {
	var result []model.InterviewNote
	for _, n := range m.notes {
		if n.InterviewID == interviewID {
			result = append(result, n)
		}
	}
	return result, nil
}

// ── Mock RecruitmentConfigRepository ──

type mockConfigRepo struct {
	cfg model.RecruitmentConfig
}

func (m *mockConfigRepo) Get(_ context.Context) (*model.RecruitmentConfig, error) {
	c := m.cfg
	return &c, nil
}

func (m *mockConfigRepo) Update(_ context.Context, cfg *model.RecruitmentConfig) error {
	m.cfg = *cfg
	return nil
}

// ── 外部依赖替身 ──

type fakeVerifier struct {
	identities map[string]*identity.Identity
}

func (f *fakeVerifier) Verify(_ context.Context, idToken string) (*identity.Identity, error) {
	if id, ok := f.identities[idToken]; ok {
		return id, nil
	}
	return nil, identity.ErrInvalidIDToken
}

type fakeUploader struct {
	uploaded map[string][]byte
	deleted  []string
	onUpload func()
}

func (f *fakeUploader) Upload(_ context.Context, name, _ string, r io.Reader) (*storage.Object, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[name] = buf.Bytes()
	if f.onUpload != nil {
		f.onUpload()
	}
	return &storage.Object{FileID: "file-" + name, Link: "https://storage.example/" + name}, nil
}

func (f *fakeUploader) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, fileID)
	return nil
}

type fakeCache struct {
	mu          sync.Mutex
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (f *fakeCache) GetAvailability(_ context.Context, cycleID string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.data[cycleID]
	return payload, ok, nil
}

func (f *fakeCache) SetAvailability(_ context.Context, cycleID string, payload []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[cycleID] = payload
	return nil
}

func (f *fakeCache) InvalidateAvailability(_ context.Context, cycleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, cycleID)
	f.invalidated = append(f.invalidated, cycleID)
	return nil
}

type fakeRevoker struct {
	revoked map[string]time.Duration
}

func (f *fakeRevoker) RevokeOfficer(_ context.Context, officerID string, ttl time.Duration) error {
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[officerID] = ttl
	return nil
}

type fakeBlacklist struct {
	tokens map[string]time.Duration
}

func (f *fakeBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if f.tokens == nil {
		f.tokens = map[string]time.Duration{}
	}
	f.tokens[jti] = ttl
	return nil
}

func (f *fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := f.tokens[jti]
	return ok, nil
}
