// Package claims orchestrates the debt-recovery engine over a stored claim:
// interest calculation, timeline validation, deadline synchronisation,
// document recommendation, content generation and Form N1 rendering.  The
// domain packages stay pure; persistence, caching, messaging and metrics are
// wired here.
package claims

import (
	"context"
	"time"

	"github.com/paidup/paidup/internal/domain/claim"
	"github.com/paidup/paidup/internal/domain/deadline"
	"github.com/paidup/paidup/internal/domain/document"
	"github.com/paidup/paidup/internal/domain/interest"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/logging"
	"github.com/paidup/paidup/internal/infrastructure/monitoring/prometheus"
	"github.com/paidup/paidup/pkg/errors"
	"github.com/paidup/paidup/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// ClaimStore is the persistence port for claim state.
type ClaimStore interface {
	Save(ctx context.Context, state claim.State) error
	FindByID(ctx context.Context, id common.ID) (claim.State, error)
	List(ctx context.Context, p common.Pagination) ([]claim.State, int64, error)
	Delete(ctx context.Context, id common.ID) error
}

// EventPublisher emits integration events.  Implementations must be safe to
// call concurrently; a disabled publisher no-ops.
type EventPublisher interface {
	PublishDeadlineUpserted(ctx context.Context, claimID common.ID, d deadline.Deadline, created bool) error
	PublishDocumentGenerated(ctx context.Context, claimID common.ID, doc claim.GeneratedDocument) error
}

// FormFiller renders field values onto the pinned Form N1 template.
type FormFiller interface {
	Fill(ctx context.Context, fields map[string]string) ([]byte, error)
}

// FormArchiver keeps a copy of each rendered court form in object storage.
// Archiving is best effort: a failure is logged, never surfaced, and the
// rendered bytes have already been produced.
type FormArchiver interface {
	Store(ctx context.Context, claimID common.ID, docType claim.DocumentType, pdf []byte, at time.Time) (string, error)
}

// DocumentCacheInvalidator drops cached document content for a claim so the
// cache cannot outlive the claim it was derived from.
type DocumentCacheInvalidator interface {
	Invalidate(ctx context.Context, claimID common.ID) error
}

// ─────────────────────────────────────────────────────────────────────────────
// Service
// ─────────────────────────────────────────────────────────────────────────────

// Service exposes the engine's operations to the HTTP and CLI interfaces.
type Service struct {
	claims      ClaimStore
	deadlines   deadline.Store
	scheduler   *deadline.Scheduler
	calculator  *interest.Calculator
	recommender *document.Recommender
	builder     *document.Builder
	filler      FormFiller
	archiver    FormArchiver
	publisher   EventPublisher
	docCache    DocumentCacheInvalidator
	metrics     *prometheus.Metrics
	logger      logging.Logger
	now         func() time.Time
}

// Deps collects the service's collaborators.  Publisher, Metrics, Filler,
// Archiver and DocCache may be nil; the corresponding behaviour is skipped.
type Deps struct {
	Claims      ClaimStore
	Deadlines   deadline.Store
	Scheduler   *deadline.Scheduler
	Calculator  *interest.Calculator
	Recommender *document.Recommender
	Builder     *document.Builder
	Filler      FormFiller
	Archiver    FormArchiver
	Publisher   EventPublisher
	DocCache    DocumentCacheInvalidator
	Metrics     *prometheus.Metrics
	Logger      logging.Logger
	Now         func() time.Time
}

func NewService(deps Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		claims:      deps.Claims,
		deadlines:   deps.Deadlines,
		scheduler:   deps.Scheduler,
		calculator:  deps.Calculator,
		recommender: deps.Recommender,
		builder:     deps.Builder,
		filler:      deps.Filler,
		archiver:    deps.Archiver,
		publisher:   deps.Publisher,
		docCache:    deps.DocCache,
		metrics:     deps.Metrics,
		logger:      logger.Named("claims"),
		now:         now,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Claim CRUD
// ─────────────────────────────────────────────────────────────────────────────

// SaveClaim validates and persists a claim snapshot.  A blank ID is assigned.
func (s *Service) SaveClaim(ctx context.Context, state claim.State) (claim.State, error) {
	if state.ID == "" {
		state.ID = common.NewID()
	}
	if err := state.Validate(); err != nil {
		return claim.State{}, err
	}
	if err := s.claims.Save(ctx, state); err != nil {
		return claim.State{}, err
	}
	s.logger.Info("claim saved", logging.String("claim_id", string(state.ID)))
	return state, nil
}

func (s *Service) GetClaim(ctx context.Context, id common.ID) (claim.State, error) {
	return s.claims.FindByID(ctx, id)
}

func (s *Service) ListClaims(ctx context.Context, p common.Pagination) ([]claim.State, int64, error) {
	return s.claims.List(ctx, p)
}

func (s *Service) DeleteClaim(ctx context.Context, id common.ID) error {
	if err := s.claims.Delete(ctx, id); err != nil {
		return err
	}
	if s.docCache != nil {
		if err := s.docCache.Invalidate(ctx, id); err != nil {
			s.logger.Warn("document cache invalidation failed",
				logging.String("claim_id", string(id)), logging.Err(err))
		}
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Interest
// ─────────────────────────────────────────────────────────────────────────────

// CalculateInterest computes statutory interest for the stored claim as of
// the given date (zero asOf means today).
func (s *Service) CalculateInterest(ctx context.Context, id common.ID, asOf time.Time) (interest.Result, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return interest.Result{}, err
	}
	return s.calculateInterest(state, asOf)
}

// CalculateInterestFor computes interest for a claim supplied inline, for
// callers that do not persist state first (the CLI).
func (s *Service) CalculateInterestFor(state claim.State, asOf time.Time) (interest.Result, error) {
	return s.calculateInterest(state, asOf)
}

func (s *Service) calculateInterest(state claim.State, asOf time.Time) (interest.Result, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	result, err := s.calculator.Calculate(state, asOf)
	if s.metrics != nil {
		outcome := "ok"
		basis := string(result.RateBasis)
		if err != nil {
			outcome = "error"
			basis = "none"
			if errors.IsCode(err, errors.CodeIndeterminateBasis) {
				outcome = "indeterminate"
			}
		}
		s.metrics.InterestCalculationsTotal.WithLabelValues(basis, outcome).Inc()
	}
	return result, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Timeline
// ─────────────────────────────────────────────────────────────────────────────

// TimelineReport is the outcome of a consistency check.
type TimelineReport struct {
	Consistent bool   `json:"consistent"`
	Warning    string `json:"warning,omitempty"`
}

// ValidateTimeline checks the stored claim's event ordering.
func (s *Service) ValidateTimeline(ctx context.Context, id common.ID) (TimelineReport, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return TimelineReport{}, err
	}
	return s.validateTimeline(state), nil
}

// ValidateTimelineFor checks a claim supplied inline.
func (s *Service) ValidateTimelineFor(state claim.State) TimelineReport {
	return s.validateTimeline(state)
}

func (s *Service) validateTimeline(state claim.State) TimelineReport {
	warning, ok := claim.ValidateTimeline(state.Timeline)
	if s.metrics != nil {
		outcome := "consistent"
		if !ok {
			outcome = "warning"
		}
		s.metrics.TimelineValidationsTotal.WithLabelValues(outcome).Inc()
	}
	return TimelineReport{Consistent: ok, Warning: warning}
}

// ─────────────────────────────────────────────────────────────────────────────
// Deadlines
// ─────────────────────────────────────────────────────────────────────────────

// SyncResult reports one deadline synchronisation pass.
type SyncResult struct {
	Deadlines []deadline.Deadline `json:"deadlines"`
	Created   int                 `json:"created"`
	Unchanged int                 `json:"unchanged"`
}

// SyncDeadlines derives the claim's deadline candidates, upserts them and
// publishes an event per created or changed row.  Re-running against
// unchanged state writes nothing and publishes nothing.
func (s *Service) SyncDeadlines(ctx context.Context, id common.ID) (SyncResult, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return SyncResult{}, err
	}

	stored, err := s.deadlines.ListByClaim(ctx, state.ID)
	if err != nil {
		return SyncResult{}, err
	}

	candidates, err := s.scheduler.Schedule(state, stored)
	if err != nil {
		return SyncResult{}, err
	}

	result := SyncResult{Deadlines: candidates}
	for _, d := range candidates {
		changed, err := s.deadlines.Upsert(ctx, d)
		if err != nil {
			return SyncResult{}, err
		}
		action := "unchanged"
		if changed {
			action = "upserted"
			result.Created++
			if s.publisher != nil {
				if perr := s.publisher.PublishDeadlineUpserted(ctx, state.ID, d, true); perr != nil {
					s.logger.Warn("deadline event not published",
						logging.String("claim_id", string(state.ID)),
						logging.String("type", string(d.Type)),
						logging.Err(perr))
				}
			}
		} else {
			result.Unchanged++
		}
		if s.metrics != nil {
			s.metrics.DeadlineUpsertsTotal.WithLabelValues(string(d.Type), action).Inc()
		}
	}

	s.logger.Info("deadlines synchronised",
		logging.String("claim_id", string(state.ID)),
		logging.Int("created", result.Created),
		logging.Int("unchanged", result.Unchanged))
	return result, nil
}

// ListDeadlines returns the claim's stored deadlines, dismissed included.
func (s *Service) ListDeadlines(ctx context.Context, claimID common.ID) ([]deadline.Deadline, error) {
	return s.deadlines.ListByClaim(ctx, claimID)
}

// DismissDeadline marks a deadline dismissed; the scheduler will not
// re-derive the same type and due date.
func (s *Service) DismissDeadline(ctx context.Context, id common.ID) error {
	return s.deadlines.Dismiss(ctx, id)
}

// CompleteDeadline marks a deadline done.
func (s *Service) CompleteDeadline(ctx context.Context, id common.ID) error {
	return s.deadlines.MarkDone(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Recommendation
// ─────────────────────────────────────────────────────────────────────────────

// Recommend reports the next document for the stored claim.
func (s *Service) Recommend(ctx context.Context, id common.ID, asOf time.Time) (document.Recommendation, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return document.Recommendation{}, err
	}
	return s.recommend(state, asOf), nil
}

// RecommendFor reports the next document for a claim supplied inline.
func (s *Service) RecommendFor(state claim.State, asOf time.Time) document.Recommendation {
	return s.recommend(state, asOf)
}

func (s *Service) recommend(state claim.State, asOf time.Time) document.Recommendation {
	if asOf.IsZero() {
		asOf = s.now()
	}
	rec := s.recommender.Recommend(state, asOf)
	if s.metrics != nil {
		s.metrics.RecommendationsTotal.WithLabelValues(string(rec.Stage)).Inc()
	}
	return rec
}

// ─────────────────────────────────────────────────────────────────────────────
// Documents
// ─────────────────────────────────────────────────────────────────────────────

// GenerateDocument builds (or returns cached) content for the stored claim.
func (s *Service) GenerateDocument(ctx context.Context, id common.ID, docType claim.DocumentType) (claim.GeneratedDocument, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return claim.GeneratedDocument{}, err
	}
	return s.generateDocument(ctx, state, docType)
}

// GenerateDocumentFor builds content for a claim supplied inline.
func (s *Service) GenerateDocumentFor(ctx context.Context, state claim.State, docType claim.DocumentType) (claim.GeneratedDocument, error) {
	return s.generateDocument(ctx, state, docType)
}

func (s *Service) generateDocument(ctx context.Context, state claim.State, docType claim.DocumentType) (claim.GeneratedDocument, error) {
	start := s.now()

	result, err := s.interestForDocument(state, docType)
	if err != nil {
		s.observeGeneration(docType, "error", start)
		return claim.GeneratedDocument{}, err
	}

	doc, err := s.builder.Generate(ctx, state, docType, result)
	if err != nil {
		s.observeGeneration(docType, "error", start)
		return claim.GeneratedDocument{}, err
	}
	s.observeGeneration(docType, "ok", start)

	if s.publisher != nil {
		if perr := s.publisher.PublishDocumentGenerated(ctx, state.ID, doc); perr != nil {
			s.logger.Warn("document event not published",
				logging.String("claim_id", string(state.ID)),
				logging.String("document_type", string(docType)),
				logging.Err(perr))
		}
	}
	return doc, nil
}

// interestForDocument computes the interest figures a document embeds.  A
// polite chaser tolerates an uncomputable result; demand letters and court
// forms do not.
func (s *Service) interestForDocument(state claim.State, docType claim.DocumentType) (*interest.Result, error) {
	result, err := s.calculateInterest(state, s.now())
	if err != nil {
		if docType == claim.DocPoliteChaser {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (s *Service) observeGeneration(docType claim.DocumentType, outcome string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDocumentGeneration(string(docType), outcome, s.now().Sub(start))
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Form N1
// ─────────────────────────────────────────────────────────────────────────────

// FillN1 renders the stored claim onto the pinned Form N1 template and
// returns the PDF bytes.
func (s *Service) FillN1(ctx context.Context, id common.ID, asOf time.Time) ([]byte, error) {
	state, err := s.claims.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.fillN1(ctx, state, asOf)
}

// FillN1For renders a claim supplied inline.
func (s *Service) FillN1For(ctx context.Context, state claim.State, asOf time.Time) ([]byte, error) {
	return s.fillN1(ctx, state, asOf)
}

func (s *Service) fillN1(ctx context.Context, state claim.State, asOf time.Time) ([]byte, error) {
	if s.filler == nil {
		return nil, errors.Internal("form rendering is not configured")
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	result, err := s.calculateInterest(state, asOf)
	if err != nil {
		return nil, err
	}

	fields, err := document.BuildN1Fields(state, result, asOf)
	if err != nil {
		return nil, err
	}

	pdf, err := s.filler.Fill(ctx, fields)
	if err != nil {
		if s.metrics != nil {
			s.metrics.FormFillFailuresTotal.WithLabelValues(string(errors.GetCode(err))).Inc()
		}
		return nil, err
	}

	s.logger.Info("form n1 rendered",
		logging.String("claim_id", string(state.ID)),
		logging.Int("bytes", len(pdf)))

	if s.archiver != nil {
		key, err := s.archiver.Store(ctx, state.ID, claim.DocFormN1, pdf, asOf)
		if err != nil {
			s.logger.Warn("filled form archive failed",
				logging.String("claim_id", string(state.ID)), logging.Err(err))
		} else {
			s.logger.Info("filled form archived",
				logging.String("claim_id", string(state.ID)),
				logging.String("object_key", key))
		}
	}
	return pdf, nil
}
