package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/AdamWu1996/YCS/internal/events"
	"github.com/AdamWu1996/YCS/internal/messaging/kafka"
	"github.com/AdamWu1996/YCS/internal/shared/apperror"
	"github.com/AdamWu1996/YCS/internal/shared/contextutil"
	"github.com/AdamWu1996/YCS/internal/staff"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix = "import-session:"
	sessionTTL       = 6 * time.Hour
)

type Service interface {
	// Import normalizes, matches, and loads one batch of rows. Duplicate
	// and noise rows are skipped, unmatchable rows come back as rejections;
	// neither fails the batch.
	Import(ctx context.Context, req ImportRequest) (ImportResponse, error)
	PreviewHeaders(ctx context.Context, req HeaderPreviewRequest) (HeaderPreviewResponse, error)
}

type service struct {
	staffRepo staff.Repository
	loader    *Loader
	rdb       *redis.Client
	outbox    kafka.OutboxRepository
	logger    *zap.Logger
}

func NewService(staffRepo staff.Repository, loader *Loader) Service {
	return &service{
		staffRepo: staffRepo,
		loader:    loader,
		logger:    zap.L().Named("importer.service"),
	}
}

func NewServiceWithInfra(
	staffRepo staff.Repository,
	loader *Loader,
	rdb *redis.Client,
	outbox kafka.OutboxRepository,
) Service {
	return &service{
		staffRepo: staffRepo,
		loader:    loader,
		rdb:       rdb,
		outbox:    outbox,
		logger:    zap.L().Named("importer.service"),
	}
}

func (s *service) Import(ctx context.Context, req ImportRequest) (ImportResponse, error) {
	hm, err := s.resolveHeaders(req.Headers, req.HeaderOverrides)
	if err != nil {
		return ImportResponse{}, err
	}

	staffList, err := s.staffRepo.ListAll(ctx)
	if err != nil {
		return ImportResponse{}, err
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	session := NewMatchSession()
	s.restoreSession(ctx, sessionID, session)
	if err := applyManualMatches(session, req.ManualMatches); err != nil {
		return ImportResponse{}, err
	}

	builder := &Builder{Headers: hm, Staff: staffList, Session: session}

	candidates := make([]Candidate, 0, len(req.Rows))
	var rejected []Rejection
	noiseSkipped := 0

	for i, raw := range req.Rows {
		candidate, rejection, noise := builder.Build(i, RowFromAny(raw))
		switch {
		case noise:
			noiseSkipped++
		case rejection != nil:
			rejected = append(rejected, *rejection)
		default:
			candidates = append(candidates, *candidate)
		}
	}

	imported, dupSkipped, loadErrs := s.loader.Load(ctx, candidates)

	s.persistSession(ctx, sessionID, session)

	resp := ImportResponse{
		SessionID: sessionID,
		Imported:  imported,
		Skipped:   dupSkipped + noiseSkipped,
		Rejected:  rejected,
		Errors:    loadErrs,
		TotalRows: len(req.Rows),
	}

	s.logger.Info("import completed",
		zap.String("session_id", sessionID),
		zap.Int("total_rows", resp.TotalRows),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
		zap.Int("rejected", len(resp.Rejected)))

	s.writeCompletedEvent(ctx, resp)

	return resp, nil
}

func (s *service) PreviewHeaders(_ context.Context, req HeaderPreviewRequest) (HeaderPreviewResponse, error) {
	hm, missing := ResolveHeaders(req.Headers)
	return HeaderPreviewResponse{
		Signature: HeaderSignature(req.Headers),
		Resolved:  headerMapToResponse(hm),
		Missing:   fieldNames(missing),
	}, nil
}

func (s *service) resolveHeaders(headers []string, overrides map[string]string) (HeaderMap, error) {
	hm, _ := ResolveHeaders(headers)

	known := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		known[h] = struct{}{}
	}
	for rawField, col := range overrides {
		field := Field(rawField)
		switch field {
		case FieldName, FieldDate, FieldLocation, FieldCheckIn, FieldCheckOut:
		default:
			return nil, apperror.New(
				apperror.CodeInvalidInput,
				fmt.Sprintf("unknown header field: %s", rawField),
				http.StatusBadRequest,
			)
		}
		if _, ok := known[col]; !ok {
			return nil, apperror.New(
				apperror.CodeInvalidInput,
				fmt.Sprintf("header override column not present: %s", col),
				http.StatusBadRequest,
			)
		}
		hm[field] = col
	}

	if missing := MissingRequiredFields(hm); len(missing) > 0 {
		return nil, apperror.New(
			apperror.CodeInvalidInput,
			fmt.Sprintf("unresolved header fields: %v", fieldNames(missing)),
			http.StatusBadRequest,
		)
	}
	return hm, nil
}

func applyManualMatches(session *MatchSession, matches map[string]string) error {
	for rawName, rawID := range matches {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return apperror.New(
				apperror.CodeInvalidInput,
				fmt.Sprintf("invalid staff id for %q", rawName),
				http.StatusBadRequest,
			)
		}
		session.Remember(rawName, id)
	}
	return nil
}

// Session persistence is best effort: a cold cache only costs re-matching.
func (s *service) restoreSession(ctx context.Context, sessionID string, session *MatchSession) {
	if s.rdb == nil {
		return
	}
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if err != nil {
		return
	}
	var snapshot map[string]string
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		s.logger.Warn("discarding corrupt session snapshot", zap.String("session_id", sessionID))
		return
	}
	session.Restore(snapshot)
}

func (s *service) persistSession(ctx context.Context, sessionID string, session *MatchSession) {
	if s.rdb == nil {
		return
	}
	body, err := json.Marshal(session.Snapshot())
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+sessionID, body, sessionTTL).Err(); err != nil {
		s.logger.Warn("session snapshot not persisted", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *service) writeCompletedEvent(ctx context.Context, resp ImportResponse) {
	if s.outbox == nil {
		return
	}

	payload := events.ImportCompleted{
		SessionID: resp.SessionID,
		Imported:  resp.Imported,
		Skipped:   resp.Skipped,
		Rejected:  len(resp.Rejected),
		Errors:    resp.Errors,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return
	}

	event := kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: events.AggregateImport,
		AggregateID:   resp.SessionID,
		EventType:     events.TypeImportCompleted,
		Topic:         events.TopicImports,
		Payload:       body,
		Status:        kafka.OutboxStatusPending,
	}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Warn("import event not recorded", zap.String("session_id", resp.SessionID), zap.Error(err))
	}
}
