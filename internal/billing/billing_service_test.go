package billing_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/AdamWu1996/YCS/internal/billing"
	billingerrors "github.com/AdamWu1996/YCS/internal/billing/errors"
	"github.com/AdamWu1996/YCS/internal/events"
	"github.com/AdamWu1996/YCS/internal/messaging/kafka"
	"github.com/AdamWu1996/YCS/internal/task"
	"github.com/AdamWu1996/YCS/internal/timerecord"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type fakeBillingRepository struct {
	withTxFn                   func(tx *sql.Tx) billing.Repository
	lockTimeRecordsFn          func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error)
	findActiveDecisionIDsFn    func(ctx context.Context, recordIDs []uuid.UUID) ([]uuid.UUID, error)
	findRecordIDsOfDecisionsFn func(ctx context.Context, decisionIDs []uuid.UUID) ([]uuid.UUID, error)
	deactivateDecisionsFn      func(ctx context.Context, decisionIDs []uuid.UUID) error
	createDecisionFn           func(ctx context.Context, d *billing.Decision) error
	createDecisionRecordsFn    func(ctx context.Context, links []billing.DecisionRecord) error
	assignTaskFn               func(ctx context.Context, recordIDs []uuid.UUID, taskID uuid.UUID) error
	clearTaskFn                func(ctx context.Context, recordIDs []uuid.UUID) error
	listPendingFn              func(ctx context.Context) ([]billing.PendingRow, error)
	findDecisionByIDFn         func(ctx context.Context, id string) (*billing.Decision, error)
	listDecisionsByTaskFn      func(ctx context.Context, taskID string) ([]billing.Decision, error)
}

func (f *fakeBillingRepository) WithTx(tx *sql.Tx) billing.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeBillingRepository) LockTimeRecords(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
	if f.lockTimeRecordsFn != nil {
		return f.lockTimeRecordsFn(ctx, ids)
	}
	records := make([]timerecord.TimeRecord, len(ids))
	for i, id := range ids {
		records[i] = timerecord.TimeRecord{ID: id}
	}
	return records, nil
}

func (f *fakeBillingRepository) FindActiveDecisionIDs(ctx context.Context, recordIDs []uuid.UUID) ([]uuid.UUID, error) {
	if f.findActiveDecisionIDsFn != nil {
		return f.findActiveDecisionIDsFn(ctx, recordIDs)
	}
	return nil, nil
}

func (f *fakeBillingRepository) FindRecordIDsOfDecisions(ctx context.Context, decisionIDs []uuid.UUID) ([]uuid.UUID, error) {
	if f.findRecordIDsOfDecisionsFn != nil {
		return f.findRecordIDsOfDecisionsFn(ctx, decisionIDs)
	}
	return nil, nil
}

func (f *fakeBillingRepository) DeactivateDecisions(ctx context.Context, decisionIDs []uuid.UUID) error {
	if f.deactivateDecisionsFn != nil {
		return f.deactivateDecisionsFn(ctx, decisionIDs)
	}
	return nil
}

func (f *fakeBillingRepository) CreateDecision(ctx context.Context, d *billing.Decision) error {
	if f.createDecisionFn != nil {
		return f.createDecisionFn(ctx, d)
	}
	return nil
}

func (f *fakeBillingRepository) CreateDecisionRecords(ctx context.Context, links []billing.DecisionRecord) error {
	if f.createDecisionRecordsFn != nil {
		return f.createDecisionRecordsFn(ctx, links)
	}
	return nil
}

func (f *fakeBillingRepository) AssignTask(ctx context.Context, recordIDs []uuid.UUID, taskID uuid.UUID) error {
	if f.assignTaskFn != nil {
		return f.assignTaskFn(ctx, recordIDs, taskID)
	}
	return nil
}

func (f *fakeBillingRepository) ClearTask(ctx context.Context, recordIDs []uuid.UUID) error {
	if f.clearTaskFn != nil {
		return f.clearTaskFn(ctx, recordIDs)
	}
	return nil
}

func (f *fakeBillingRepository) ListPending(ctx context.Context) ([]billing.PendingRow, error) {
	if f.listPendingFn != nil {
		return f.listPendingFn(ctx)
	}
	return nil, nil
}

func (f *fakeBillingRepository) FindDecisionByID(ctx context.Context, id string) (*billing.Decision, error) {
	if f.findDecisionByIDFn != nil {
		return f.findDecisionByIDFn(ctx, id)
	}
	return nil, nil
}

func (f *fakeBillingRepository) ListDecisionsByTask(ctx context.Context, taskID string) ([]billing.Decision, error) {
	if f.listDecisionsByTaskFn != nil {
		return f.listDecisionsByTaskFn(ctx, taskID)
	}
	return nil, nil
}

type fakeTaskRepository struct {
	findByIDFn func(ctx context.Context, id string) (*task.Task, error)
}

func (f *fakeTaskRepository) FindByID(ctx context.Context, id string) (*task.Task, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return &task.Task{ID: uuid.MustParse(id), Status: task.StatusActive}, nil
}

func (f *fakeTaskRepository) FindByCodes(ctx context.Context, projectCode, taskCode string) (*task.Task, error) {
	return nil, nil
}

func (f *fakeTaskRepository) ListActiveWithUsedMD(ctx context.Context) ([]task.ClaimableTaskRow, error) {
	return nil, nil
}

func (f *fakeTaskRepository) SumUsedMD(ctx context.Context, taskID string) (float64, error) {
	return 0, nil
}

type fakeOutboxRepository struct {
	withTxFn func(tx *sql.Tx) kafka.OutboxRepository
	createFn func(ctx context.Context, event kafka.OutboxEvent) error
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	if f.createFn != nil {
		return f.createFn(ctx, event)
	}
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error {
	return nil
}

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return nil
}

type billingServiceDeps struct {
	db       *sql.DB
	sqlMock  sqlmock.Sqlmock
	service  billing.Service
	repo     *fakeBillingRepository
	taskRepo *fakeTaskRepository
}

func setupBillingServiceTest(t *testing.T) *billingServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeBillingRepository{}
	taskRepo := &fakeTaskRepository{}
	svc := billing.NewService(db, repo, taskRepo, billing.DefaultMDRule())

	return &billingServiceDeps{db: db, sqlMock: sqlMock, service: svc, repo: repo, taskRepo: taskRepo}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func idsToStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func TestBillingService_Claim_FreshRecords(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordIDs := []uuid.UUID{uuid.New(), uuid.New()}

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	deps.repo.lockTimeRecordsFn = func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
		assert.ElementsMatch(t, recordIDs, ids)
		return []timerecord.TimeRecord{
			{ID: ids[0], HoursWorked: 4.0},
			{ID: ids[1], HoursWorked: 4.0},
		}, nil
	}

	var created billing.Decision
	deps.repo.createDecisionFn = func(ctx context.Context, d *billing.Decision) error {
		created = *d
		return nil
	}
	var links []billing.DecisionRecord
	deps.repo.createDecisionRecordsFn = func(ctx context.Context, ls []billing.DecisionRecord) error {
		links = ls
		return nil
	}
	var assignedTask uuid.UUID
	deps.repo.assignTaskFn = func(ctx context.Context, ids []uuid.UUID, tid uuid.UUID) error {
		assert.ElementsMatch(t, recordIDs, ids)
		assignedTask = tid
		return nil
	}

	resp, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: idsToStrings(recordIDs),
		TaskID:        taskID.String(),
		FinalMD:       1.0,
		IsBillable:    true,
	})

	assert.NoError(t, err)
	assert.Equal(t, billing.DecisionTypeMerged, created.DecisionType)
	assert.True(t, created.IsActive)
	// 8 hours over the records, full-day recommendation matches final
	assert.NotNil(t, created.RecommendedMD)
	assert.Equal(t, 1.0, *created.RecommendedMD)
	assert.False(t, created.IsForcedMD)
	assert.Len(t, links, 2)
	assert.Equal(t, taskID, assignedTask)
	assert.Equal(t, 8.0, resp.TotalHours)
	assert.Equal(t, 2, resp.RecordCount)
	assert.Empty(t, resp.SupersededDecisionIDs)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_SupersedesAndReleasesSiblings(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	claimed := uuid.New()
	sibling := uuid.New()
	oldDecision := uuid.New()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	deps.repo.lockTimeRecordsFn = func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
		return []timerecord.TimeRecord{{ID: claimed, HoursWorked: 5.0}}, nil
	}
	deps.repo.findActiveDecisionIDsFn = func(ctx context.Context, recordIDs []uuid.UUID) ([]uuid.UUID, error) {
		return []uuid.UUID{oldDecision}, nil
	}
	deps.repo.findRecordIDsOfDecisionsFn = func(ctx context.Context, decisionIDs []uuid.UUID) ([]uuid.UUID, error) {
		assert.Equal(t, []uuid.UUID{oldDecision}, decisionIDs)
		return []uuid.UUID{claimed, sibling}, nil
	}

	var deactivated []uuid.UUID
	deps.repo.deactivateDecisionsFn = func(ctx context.Context, decisionIDs []uuid.UUID) error {
		deactivated = decisionIDs
		return nil
	}
	var cleared []uuid.UUID
	deps.repo.clearTaskFn = func(ctx context.Context, recordIDs []uuid.UUID) error {
		cleared = recordIDs
		return nil
	}

	resp, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: []string{claimed.String()},
		TaskID:        taskID.String(),
		FinalMD:       0.5,
	})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{oldDecision}, deactivated)
	assert.Equal(t, []uuid.UUID{sibling}, cleared)
	assert.Equal(t, []string{oldDecision.String()}, resp.SupersededDecisionIDs)
	assert.Equal(t, []string{sibling.String()}, resp.ReleasedRecordIDs)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_ConflictRecordsResolveType(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordID := uuid.New()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	deps.repo.lockTimeRecordsFn = func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
		return []timerecord.TimeRecord{{ID: recordID, HoursWorked: 2.0, HasConflict: true}}, nil
	}

	var created billing.Decision
	deps.repo.createDecisionFn = func(ctx context.Context, d *billing.Decision) error {
		created = *d
		return nil
	}

	_, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: []string{recordID.String()},
		TaskID:        taskID.String(),
		FinalMD:       0.5,
	})

	assert.NoError(t, err)
	assert.Equal(t, billing.DecisionTypeConflictResolved, created.DecisionType)
	assert.True(t, created.HasConflict)
	// resolution is the caller's statement, not implied by the conflict
	assert.False(t, created.IsConflictResolved)
	// 2 hours recommends 0, final 0.5 diverges
	assert.Equal(t, 0.0, *created.RecommendedMD)
	assert.True(t, created.IsForcedMD)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_CarriesConflictResolutionFromRequest(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordID := uuid.New()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, true)
	deps.repo.lockTimeRecordsFn = func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
		return []timerecord.TimeRecord{{ID: recordID, HoursWorked: 8.0, HasConflict: true}}, nil
	}

	var created billing.Decision
	deps.repo.createDecisionFn = func(ctx context.Context, d *billing.Decision) error {
		created = *d
		return nil
	}

	conflictType := "overlapping_swipes"
	notes := "second swipe confirmed with the site supervisor"
	_, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs:           []string{recordID.String()},
		TaskID:                  taskID.String(),
		FinalMD:                 1.0,
		ConflictType:            &conflictType,
		IsConflictResolved:      true,
		ConflictResolutionNotes: &notes,
	})

	assert.NoError(t, err)
	assert.True(t, created.HasConflict)
	assert.True(t, created.IsConflictResolved)
	if assert.NotNil(t, created.ConflictType) {
		assert.Equal(t, conflictType, *created.ConflictType)
	}
	if assert.NotNil(t, created.ConflictResolutionNotes) {
		assert.Equal(t, notes, *created.ConflictResolutionNotes)
	}
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_ValidationFailures(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	cases := []struct {
		name string
		req  billing.ClaimRequest
		want error
	}{
		{
			name: "no task",
			req:  billing.ClaimRequest{TimeRecordIDs: []string{uuid.New().String()}, FinalMD: 1},
			want: billingerrors.ErrNoTaskSelected,
		},
		{
			name: "empty record set",
			req:  billing.ClaimRequest{TaskID: uuid.New().String(), FinalMD: 1},
			want: billingerrors.ErrEmptyRecordSet,
		},
		{
			name: "zero final md",
			req:  billing.ClaimRequest{TaskID: uuid.New().String(), TimeRecordIDs: []string{uuid.New().String()}},
			want: billingerrors.ErrInvalidFinalMD,
		},
		{
			name: "bad record id",
			req:  billing.ClaimRequest{TaskID: uuid.New().String(), TimeRecordIDs: []string{"not-a-uuid"}, FinalMD: 1},
			want: billingerrors.ErrInvalidRecordID,
		},
		{
			name: "bad task id",
			req:  billing.ClaimRequest{TaskID: "not-a-uuid", TimeRecordIDs: []string{uuid.New().String()}, FinalMD: 1},
			want: billingerrors.ErrInvalidTaskID,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := deps.service.Claim(ctx, actorID, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_TaskNotActive(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	deps.taskRepo.findByIDFn = func(ctx context.Context, id string) (*task.Task, error) {
		return &task.Task{ID: uuid.MustParse(id), Status: task.StatusArchived}, nil
	}

	_, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: []string{uuid.New().String()},
		TaskID:        taskID.String(),
		FinalMD:       1,
	})

	assert.ErrorIs(t, err, billingerrors.ErrTaskNotClaimable)
}

func TestBillingService_Claim_MissingRecordRollsBack(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordIDs := []uuid.UUID{uuid.New(), uuid.New()}

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.lockTimeRecordsFn = func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
		// only one of the two requested rows exists
		return []timerecord.TimeRecord{{ID: ids[0]}}, nil
	}

	_, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: idsToStrings(recordIDs),
		TaskID:        taskID.String(),
		FinalMD:       1,
	})

	assert.ErrorIs(t, err, billingerrors.ErrRecordNotFound)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_StorageFailureWrapsClaimSentinel(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordID := uuid.New()

	deps := setupBillingServiceTest(t)
	defer deps.db.Close()

	expectTx(t, deps.sqlMock, false)
	deps.repo.createDecisionFn = func(ctx context.Context, d *billing.Decision) error {
		return errors.New("insert failed")
	}

	_, err := deps.service.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: []string{recordID.String()},
		TaskID:        taskID.String(),
		FinalMD:       1,
	})

	assert.ErrorIs(t, err, billingerrors.ErrClaimFailed)
	assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
}

func TestBillingService_Claim_QueuesDecisionEvent(t *testing.T) {
	ctx := context.Background()
	actorID := uuid.New().String()
	taskID := uuid.New()
	recordID := uuid.New()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := &fakeBillingRepository{
		lockTimeRecordsFn: func(ctx context.Context, ids []uuid.UUID) ([]timerecord.TimeRecord, error) {
			return []timerecord.TimeRecord{{ID: recordID, HoursWorked: 8.0}}, nil
		},
	}
	outbox := &fakeOutboxRepository{
		createFn: func(ctx context.Context, event kafka.OutboxEvent) error {
			assert.Equal(t, events.TopicBillingDecisions, event.Topic)
			assert.Equal(t, events.TypeDecisionCreated, event.EventType)
			var payload events.DecisionCreated
			assert.NoError(t, json.Unmarshal(event.Payload, &payload))
			assert.Equal(t, taskID.String(), payload.TaskID)
			assert.Equal(t, []string{recordID.String()}, payload.TimeRecordIDs)
			return nil
		},
	}
	svc := billing.NewServiceWithOutbox(db, repo, &fakeTaskRepository{}, billing.DefaultMDRule(), outbox)

	sqlMock.ExpectBegin()
	sqlMock.ExpectCommit()
	_, err = svc.Claim(ctx, actorID, billing.ClaimRequest{
		TimeRecordIDs: []string{recordID.String()},
		TaskID:        taskID.String(),
		FinalMD:       1,
	})
	assert.NoError(t, err)
	assert.NoError(t, sqlMock.ExpectationsWereMet())
}
