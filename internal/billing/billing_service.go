package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	billingerrors "github.com/AdamWu1996/YCS/internal/billing/errors"
	"github.com/AdamWu1996/YCS/internal/events"
	"github.com/AdamWu1996/YCS/internal/messaging/kafka"
	"github.com/AdamWu1996/YCS/internal/shared/apperror"
	"github.com/AdamWu1996/YCS/internal/shared/contextutil"
	"github.com/AdamWu1996/YCS/internal/task"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service interface {
	// Claim atomically converts a set of time records into one new active
	// billing decision, superseding whatever decisions previously claimed
	// any of those records.
	Claim(ctx context.Context, actorID string, req ClaimRequest) (DecisionResponse, error)
	ListPending(ctx context.Context) ([]PendingRecordResponse, error)
	GetDecision(ctx context.Context, id string) (DecisionResponse, error)
	ListDecisionsByTask(ctx context.Context, taskID string) ([]DecisionResponse, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	taskRepo task.Repository
	outbox   kafka.OutboxRepository
	mdRule   MDRule
}

func NewService(db *sql.DB, repo Repository, taskRepo task.Repository, mdRule MDRule) Service {
	return &service{db: db, repo: repo, taskRepo: taskRepo, mdRule: mdRule}
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	taskRepo task.Repository,
	mdRule MDRule,
	outbox kafka.OutboxRepository,
) Service {
	return &service{db: db, repo: repo, taskRepo: taskRepo, mdRule: mdRule, outbox: outbox}
}

func (s *service) Claim(ctx context.Context, actorID string, req ClaimRequest) (DecisionResponse, error) {
	recordIDs, err := validateClaimRequest(req)
	if err != nil {
		return DecisionResponse{}, err
	}

	taskRow, err := s.taskRepo.FindByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionResponse{}, billingerrors.ErrTaskNotFound
		}
		return DecisionResponse{}, err
	}
	if taskRow.Status != task.StatusActive {
		return DecisionResponse{}, billingerrors.ErrTaskNotClaimable
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return DecisionResponse{}, txError(err)
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	// Row locks serialize concurrent claims over overlapping record sets:
	// every claim must lock its records before reading link rows.
	records, err := qtx.LockTimeRecords(ctx, recordIDs)
	if err != nil {
		return DecisionResponse{}, txError(err)
	}
	if len(records) != len(recordIDs) {
		return DecisionResponse{}, billingerrors.ErrRecordNotFound
	}

	supersededIDs, err := qtx.FindActiveDecisionIDs(ctx, recordIDs)
	if err != nil {
		return DecisionResponse{}, txError(err)
	}

	var releasedIDs []uuid.UUID
	if len(supersededIDs) > 0 {
		siblingIDs, err := qtx.FindRecordIDsOfDecisions(ctx, supersededIDs)
		if err != nil {
			return DecisionResponse{}, txError(err)
		}
		releasedIDs = subtractIDs(siblingIDs, recordIDs)

		if err := qtx.DeactivateDecisions(ctx, supersededIDs); err != nil {
			return DecisionResponse{}, txError(err)
		}

		// Records of a superseded decision that are not part of this claim
		// lose their active lineage and return to the open pool.
		if len(releasedIDs) > 0 {
			if err := qtx.ClearTask(ctx, releasedIDs); err != nil {
				return DecisionResponse{}, txError(err)
			}
		}
	}

	totalHours := 0.0
	hasConflict := false
	for _, rec := range records {
		totalHours += rec.HoursWorked
		if rec.HasConflict {
			hasConflict = true
		}
	}

	recommended := s.mdRule.Recommend(totalHours)
	decisionType := DecisionTypeMerged
	if hasConflict {
		decisionType = DecisionTypeConflictResolved
	}

	decision := &Decision{
		ID:                      uuid.New(),
		TaskID:                  taskRow.ID,
		DecisionType:            decisionType,
		RecommendedMD:           &recommended,
		FinalMD:                 req.FinalMD,
		IsForcedMD:              req.IsForcedMD || req.FinalMD != recommended,
		Reason:                  req.Reason,
		HasConflict:             hasConflict,
		ConflictType:            req.ConflictType,
		IsConflictResolved:      req.IsConflictResolved,
		ConflictResolutionNotes: req.ConflictResolutionNotes,
		IsBillable:              req.IsBillable,
		IsActive:                true,
	}
	if makerID, parseErr := uuid.Parse(actorID); parseErr == nil {
		decision.DecisionMakerID = &makerID
	}

	if err := qtx.CreateDecision(ctx, decision); err != nil {
		return DecisionResponse{}, txError(err)
	}

	links := make([]DecisionRecord, len(recordIDs))
	for i, recordID := range recordIDs {
		links[i] = DecisionRecord{
			ID:                uuid.New(),
			BillingDecisionID: decision.ID,
			TimeRecordID:      recordID,
		}
	}
	if err := qtx.CreateDecisionRecords(ctx, links); err != nil {
		return DecisionResponse{}, txError(err)
	}

	if err := qtx.AssignTask(ctx, recordIDs, taskRow.ID); err != nil {
		return DecisionResponse{}, txError(err)
	}

	if s.outbox != nil {
		if err := s.writeDecisionEvent(ctx, tx, decision, recordIDs, supersededIDs, releasedIDs); err != nil {
			return DecisionResponse{}, txError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return DecisionResponse{}, txError(err)
	}

	resp := mapDecisionToResponse(*decision)
	resp.TotalHours = totalHours
	resp.RecordCount = len(records)
	resp.SupersededDecisionIDs = idStrings(supersededIDs)
	resp.ReleasedRecordIDs = idStrings(releasedIDs)
	return resp, nil
}

func (s *service) ListPending(ctx context.Context) ([]PendingRecordResponse, error) {
	rows, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	res := make([]PendingRecordResponse, len(rows))
	for i, row := range rows {
		res[i] = mapPendingRow(row)
	}
	return res, nil
}

func (s *service) GetDecision(ctx context.Context, id string) (DecisionResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return DecisionResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid decision id", http.StatusBadRequest)
	}

	d, err := s.repo.FindDecisionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionResponse{}, apperror.New(apperror.CodeNotFound, "decision not found", http.StatusNotFound)
		}
		return DecisionResponse{}, err
	}
	return mapDecisionToResponse(*d), nil
}

func (s *service) ListDecisionsByTask(ctx context.Context, taskID string) ([]DecisionResponse, error) {
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, billingerrors.ErrInvalidTaskID
	}

	rows, err := s.repo.ListDecisionsByTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	res := make([]DecisionResponse, len(rows))
	for i, d := range rows {
		res[i] = mapDecisionToResponse(d)
	}
	return res, nil
}

func (s *service) writeDecisionEvent(
	ctx context.Context,
	tx *sql.Tx,
	decision *Decision,
	recordIDs, supersededIDs, releasedIDs []uuid.UUID,
) error {
	payload := events.DecisionCreated{
		DecisionID:    decision.ID.String(),
		TaskID:        decision.TaskID.String(),
		DecisionType:  decision.DecisionType,
		FinalMD:       decision.FinalMD,
		RecommendedMD: decision.RecommendedMD,
		IsForcedMD:    decision.IsForcedMD,
		TimeRecordIDs: idStrings(recordIDs),
		SupersededIDs: idStrings(supersededIDs),
		ReleasedIDs:   idStrings(releasedIDs),
	}
	if decision.DecisionMakerID != nil {
		payload.DecisionMakerID = decision.DecisionMakerID.String()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: events.AggregateBillingDecision,
		AggregateID:   decision.ID.String(),
		EventType:     events.TypeDecisionCreated,
		Topic:         events.TopicBillingDecisions,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func validateClaimRequest(req ClaimRequest) ([]uuid.UUID, error) {
	if req.TaskID == "" {
		return nil, billingerrors.ErrNoTaskSelected
	}
	if len(req.TimeRecordIDs) == 0 {
		return nil, billingerrors.ErrEmptyRecordSet
	}
	if req.FinalMD <= 0 {
		return nil, billingerrors.ErrInvalidFinalMD
	}
	if _, err := uuid.Parse(req.TaskID); err != nil {
		return nil, billingerrors.ErrInvalidTaskID
	}

	seen := make(map[uuid.UUID]struct{}, len(req.TimeRecordIDs))
	recordIDs := make([]uuid.UUID, 0, len(req.TimeRecordIDs))
	for _, raw := range req.TimeRecordIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, billingerrors.ErrInvalidRecordID
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		recordIDs = append(recordIDs, id)
	}
	return recordIDs, nil
}

// txError stamps a storage failure with the claim sentinel so callers can
// errors.Is against it; ToHTTP resolves it to the sentinel's code and status.
func txError(err error) error {
	return fmt.Errorf("%w: %w", billingerrors.ErrClaimFailed, err)
}

func subtractIDs(from, exclude []uuid.UUID) []uuid.UUID {
	excluded := make(map[uuid.UUID]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}

	var out []uuid.UUID
	for _, id := range from {
		if _, skip := excluded[id]; !skip {
			out = append(out, id)
		}
	}
	return out
}

func idStrings(ids []uuid.UUID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
