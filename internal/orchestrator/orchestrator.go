package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"plandrift/internal/config"
	"plandrift/internal/driftcheck"
	"plandrift/internal/explain"
	"plandrift/internal/metrics"
	"plandrift/internal/notify"
	aws "plandrift/internal/providers/aws"
	"plandrift/internal/storage"
	"plandrift/internal/terraform"
	"plandrift/pkg/logging"
)

// Service orchestrates plan retrieval, analysis, persistence and alerting.
type Service struct {
	config    Config
	sources   terraform.PlanSource
	store     storage.Store
	channels  notify.Channels
	explainer explain.Explainer
	metrics   *metrics.Recorder
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates a new orchestrator service with the given configuration.
func NewService(
	cfg Config,
	sources terraform.PlanSource,
	store storage.Store,
	channels notify.Channels,
	recorder *metrics.Recorder,
	logger logging.Logger,
) *Service {
	if cfg.MaxPlanBytes <= 0 {
		cfg.MaxPlanBytes = config.DefaultMaxPlanBytes
	}
	return &Service{
		config:    cfg,
		sources:   sources,
		store:     store,
		channels:  channels,
		explainer: explain.FallbackExplainer{},
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// NewDefaultService wires the store, plan sources and notifiers described by cfg.
func NewDefaultService(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Service, error) {
	store, err := OpenStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan store: %w", err)
	}

	sources := terraform.Sources{
		config.SourceCLI: terraform.NewCLISource(logger),
	}
	if cfg.TFE != nil {
		client, err := terraform.NewTFEClient(cfg.TFE.Address, cfg.TFE.Token)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize TFE client: %w", err)
		}
		sources[config.SourceTFE] = terraform.NewTFESource(client, cfg.TFE.Organization, logger)
	}

	return NewService(
		ConfigFrom(cfg),
		sources,
		store,
		notify.NewChannels(cfg, logger),
		metrics.New(),
		logger,
	), nil
}

// OpenStore opens the store selected by cfg, including DynamoDB tables.
func OpenStore(ctx context.Context, cfg *config.StoreConfig, logger logging.Logger) (storage.Store, error) {
	if cfg != nil && cfg.Driver == config.DriverDynamoDB {
		return aws.NewPlanTableWithDefaultConfig(ctx, cfg.Table, cfg.Region, logger)
	}
	return storage.Open(ctx, cfg, logger)
}

// Store returns the underlying plan store
func (s *Service) Store() storage.Store {
	return s.store
}

// Metrics returns the recorder shared by every scan and ingest.
func (s *Service) Metrics() *metrics.Recorder {
	return s.metrics
}

// Close releases the plan store.
func (s *Service) Close() error {
	return s.store.Close()
}

// Run scans every configured target concurrently. It reports whether any
// target drifted and whether any target failed.
func (s *Service) Run(ctx context.Context) (bool, bool, error) {
	// Validate configuration
	if err := s.validateConfig(); err != nil {
		return false, true, err
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.config.Concurrency > 0 {
		g.SetLimit(s.config.Concurrency)
	}

	resultChan := make(chan ScanResult, len(s.config.Targets))

	for _, target := range s.config.Targets {
		target := target
		g.Go(func() error {
			result := s.processTarget(gctx, target)

			select {
			case resultChan <- result:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}

	go func() {
		_ = g.Wait()
		close(resultChan)
	}()

	var anyDrift, anyError bool
	results := make([]ScanResult, 0, len(s.config.Targets))

	for result := range resultChan {
		results = append(results, result)
		if result.HasDrift {
			anyDrift = true
		}
		if result.Error != nil {
			anyError = true
		}
	}

	if err := g.Wait(); err != nil {
		return anyDrift, true, fmt.Errorf("error in concurrent plan scan: %w", err)
	}

	s.logSummary(results)

	return anyDrift, anyError, nil
}

// processTarget handles one target: fetch, analyze, persist, alert.
func (s *Service) processTarget(ctx context.Context, target *config.Target) ScanResult {
	result := ScanResult{Target: target.Name}
	logger := s.logger.WithField("target", target.Name)

	text, err := s.sources.FetchPlan(ctx, target)
	if err != nil {
		s.metrics.ObserveError()
		result.Error = fmt.Errorf("error fetching plan: %w", err)
		return result
	}

	planID, drift, fallback, err := s.analyzeAndStore(ctx, target.Name, text)
	if err != nil {
		result.Error = err
		return result
	}
	result.PlanID = planID
	result.Result = drift
	result.HasDrift = drift.DriftDetected
	result.Fallback = fallback

	if !drift.DriftDetected || target.AlertChannel == "" {
		return result
	}

	alert := notify.Alert{PlanID: planID, Result: drift, Recipients: target.AlertTo}
	if err := s.channels.Notify(ctx, target.AlertChannel, alert); err != nil {
		logger.Error("Alert for %s failed: %v", planID, err)
		result.Error = fmt.Errorf("error sending alert: %w", err)
		return result
	}
	result.Alerted = true
	logger.Info("Sent %s alert for %s", target.AlertChannel, planID)

	return result
}

// Ingest analyses an uploaded plan and stores it under a new plan id.
// Uploads never trigger alerts.
func (s *Service) Ingest(ctx context.Context, repo, text string) (string, *driftcheck.DriftResult, error) {
	if repo == "" {
		return "", nil, driftcheck.NewAnalysisError(driftcheck.ErrInvalidInput, "repository name is required", "", nil)
	}

	planID, result, _, err := s.analyzeAndStore(ctx, repo, text)
	if err != nil {
		return "", nil, err
	}
	return planID, result, nil
}

// analyzeAndStore is the pipeline shared by scans and uploads. An engine
// failure is replaced by the fallback result and reported via fallback.
func (s *Service) analyzeAndStore(ctx context.Context, target, text string) (string, *driftcheck.DriftResult, bool, error) {
	if len(text) > s.config.MaxPlanBytes {
		s.metrics.ObserveError()
		return "", nil, false, driftcheck.NewAnalysisError(driftcheck.ErrPlanTooLarge,
			fmt.Sprintf("plan is %d bytes, limit is %d", len(text), s.config.MaxPlanBytes), target, nil)
	}

	fallback := false
	result, err := driftcheck.AnalyzePlan(text, target)
	if err != nil {
		s.logger.Warn("Analysis of %s failed, storing fallback result: %v", target, err)
		s.metrics.ObserveFallback()
		result = driftcheck.FallbackResult(target)
		fallback = true
	}
	result.ScannedAt = s.now().UTC()
	s.metrics.ObserveResult(result)

	planID := storage.NewPlanID(target, result.ScannedAt)
	if err := s.store.Save(ctx, storage.NewPlanRecord(planID, result, text)); err != nil {
		return "", nil, fallback, fmt.Errorf("error saving plan %s: %w", planID, err)
	}
	s.logger.Debug("Stored plan %s (drift=%t, changes=%d)", planID, result.DriftDetected, result.TotalChanges)

	return planID, result, fallback, nil
}

// Get loads a stored plan.
func (s *Service) Get(ctx context.Context, planID string) (*storage.PlanRecord, error) {
	return s.store.Get(ctx, planID)
}

// Explain renders an explanation of a stored plan.
func (s *Service) Explain(ctx context.Context, planID string) (*explain.Explanation, error) {
	record, err := s.store.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	exp, err := s.explainer.Explain(ctx, record.RepoName, record.PlanContent)
	if err != nil {
		return nil, fmt.Errorf("error explaining plan %s: %w", planID, err)
	}
	exp.Result.ScannedAt = record.Timestamp
	return exp, nil
}

// Compare diffs two stored plans, labelled by their plan ids.
func (s *Service) Compare(ctx context.Context, fromID, toID string) (*driftcheck.DiffResult, error) {
	if fromID == "" || toID == "" {
		return nil, driftcheck.NewAnalysisError(driftcheck.ErrInvalidInput, "both plan ids are required", "", nil)
	}

	from, err := s.store.Get(ctx, fromID)
	if err != nil {
		return nil, err
	}
	to, err := s.store.Get(ctx, toID)
	if err != nil {
		return nil, err
	}

	return driftcheck.ComparePlans(from.PlanContent, from.PlanID, to.PlanContent, to.PlanID), nil
}

// History lists the stored plans of a repository, newest first.
func (s *Service) History(ctx context.Context, repo string, limit int) ([]*storage.PlanRecord, error) {
	if repo == "" {
		return nil, driftcheck.NewAnalysisError(driftcheck.ErrInvalidInput, "repository name is required", "", nil)
	}
	return s.store.ListByRepo(ctx, repo, limit)
}

// validateConfig checks if the required configuration is provided.
func (s *Service) validateConfig() error {
	if len(s.config.Targets) == 0 {
		return errors.New("at least one target is required")
	}
	for _, t := range s.config.Targets {
		if t == nil || t.Name == "" {
			return errors.New("every target needs a name")
		}
	}
	return nil
}

// logSummary logs per-target failures and the totals for the run.
func (s *Service) logSummary(results []ScanResult) {
	errCount := countErrors(results)
	for _, r := range results {
		if r.Error != nil {
			s.logger.Error("Target %s: %v", r.Target, r.Error)
		}
	}

	s.logger.Info("Scanned %d targets, %d with drift, %d with errors",
		len(results),
		countDrifts(results),
		errCount,
	)
}

// countDrifts counts the number of targets with drift.
func countDrifts(results []ScanResult) int {
	count := 0
	for _, r := range results {
		if r.HasDrift {
			count++
		}
	}
	return count
}

// countErrors counts the number of targets with errors.
func countErrors(results []ScanResult) int {
	count := 0
	for _, r := range results {
		if r.Error != nil {
			count++
		}
	}
	return count
}
