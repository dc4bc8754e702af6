// Package app wires the domain and adapter layers into the service the
// HTTP API and the CLI commands run against.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nurtas/bloomcast/internal/adapters/modelregistry"
	jobqueue "github.com/nurtas/bloomcast/internal/adapters/mq/queue"
	workerpool "github.com/nurtas/bloomcast/internal/adapters/mq/worker"
	"github.com/nurtas/bloomcast/internal/adapters/pos"
	"github.com/nurtas/bloomcast/internal/adapters/repository"
	"github.com/nurtas/bloomcast/internal/config"
	"github.com/nurtas/bloomcast/internal/domain/forecast"
	"github.com/nurtas/bloomcast/internal/domain/holidays"
	"github.com/nurtas/bloomcast/internal/domain/inflight"
	"github.com/nurtas/bloomcast/internal/domain/model"
	"github.com/nurtas/bloomcast/internal/domain/stores"
	"github.com/nurtas/bloomcast/internal/domain/trainer"
	"github.com/nurtas/bloomcast/internal/domain/validate"
	"github.com/nurtas/bloomcast/pkg/logger"
	"github.com/nurtas/bloomcast/pkg/metrics"
)

// Operating modes reported by Status.
const (
	ModeDemo   = "demo"
	ModeSheets = "sheets"
)

// importWindowDays is how far back the initial POS import reaches.
const importWindowDays = 30

// Spreadsheet is the slice of the sheets adapter the service consumes. Nil
// means demo mode.
type Spreadsheet interface {
	EnsureWorksheets(ctx context.Context) error
	PushForecast(ctx context.Context, rows []model.ForecastRow) error
	PullSales(ctx context.Context) ([]validate.RawSale, error)
}

// POSImporter is the slice of the POS adapter the service consumes.
type POSImporter interface {
	FetchSales(ctx context.Context, from, to time.Time, storeIDs []string) ([]validate.RawSale, string, error)
	LoadStock(ctx context.Context, storeIDs []string) ([]model.StockRecord, string, error)
}

// Status is the operational summary behind GET /api/v1/status.
type Status struct {
	Mode          string  `json:"mode"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Stores        int     `json:"stores"`
	ActiveStores  int     `json:"active_stores"`
	SalesRecords  int     `json:"sales_records"`
	Corrections   int     `json:"corrections"`
	QueueLength   int     `json:"queue_length"`
	BestModel     string  `json:"best_model,omitempty"`
	BestAccuracy  float64 `json:"best_accuracy,omitempty"`
	TunnelURL     string  `json:"tunnel_url,omitempty"`
}

// Service implements the API dependencies for the forecasting system.
type Service struct {
	mu sync.RWMutex

	cfg *config.Config

	// Core components, built in Start.
	storeMgr *stores.Manager
	calendar *holidays.Calendar
	engine   *forecast.Engine
	repo     repository.Store
	registry *modelregistry.Registry
	auditor  *validate.Auditor
	posc     POSImporter
	sheets   Spreadsheet
	queue    jobqueue.Queue
	pool     *workerpool.Pool
	tracker  inflight.Tracker

	mode      string
	startedAt time.Time
	tunnelURL string

	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithConfig sets the service configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithRepository overrides the sqlite store, mainly for tests.
func WithRepository(repo repository.Store) Option {
	return func(s *Service) {
		s.repo = repo
	}
}

// WithPOS overrides the POS importer.
func WithPOS(p POSImporter) Option {
	return func(s *Service) {
		s.posc = p
	}
}

// WithSheets overrides the spreadsheet client. Setting one selects sheets
// mode regardless of the credentials file.
func WithSheets(sc Spreadsheet) Option {
	return func(s *Service) {
		s.sheets = sc
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		cfg:     config.New(context.Background()),
		auditor: validate.NewAuditor(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds and starts the service components: network configuration,
// holiday calendar, sqlite store, model registry, demand engine, refresh
// queue and workers. An initial sales import and a network refresh are
// kicked off so the dashboard has data immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("app")
	}

	s.logger.Info(ctx, "starting forecasting service")

	s.storeMgr = stores.NewManager(s.cfg.StoresConfigPath)
	if err := s.storeMgr.Load(ctx); err != nil {
		return fmt.Errorf("load stores config: %w", err)
	}

	calOpts := []holidays.Option{}
	if s.cfg.HolidaysCSVPath != "" {
		hs, err := holidays.LoadCSV(s.cfg.HolidaysCSVPath)
		if err != nil {
			return fmt.Errorf("load holiday calendar: %w", err)
		}
		calOpts = append(calOpts, holidays.WithHolidays(hs))
	}
	s.calendar = holidays.NewCalendar(calOpts...)

	if s.repo == nil {
		repo, err := repository.NewSQLite(s.cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open repository: %w", err)
		}
		s.repo = repo
	}

	s.registry = modelregistry.NewRegistry(s.cfg.ModelConfigPath)
	if err := s.registry.Load(); err != nil {
		return fmt.Errorf("load model registry: %w", err)
	}

	if s.posc == nil {
		s.posc = pos.NewClient(
			pos.WithExportDir(s.cfg.POSExportDir),
			pos.WithBaseURL(s.cfg.POSAPIBase),
			pos.WithAPIKey(s.cfg.POSAPIKey),
			pos.WithSeed(s.cfg.RandSeed),
		)
	}

	s.mode = ModeDemo
	if s.sheets != nil {
		s.mode = ModeSheets
	}

	s.engine = forecast.NewEngine(s.storeMgr, s.calendar,
		forecast.WithSeed(s.cfg.RandSeed),
		forecast.WithStockSource(s.repo),
	)

	s.tracker = inflight.NewTracker()
	s.queue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.cfg.RefreshQueueSize))
	s.pool = workerpool.NewPool(s.cfg.RefreshWorkers, s.queue, s.engine, s.repo,
		workerpool.WithTracker(s.tracker),
	)
	s.pool.Start(ctx)

	s.started = true
	s.startedAt = time.Now()

	s.importInitialData(ctx)
	s.enqueueNetworkRefresh(ctx)

	s.logger.Info(ctx, "forecasting service started",
		logger.String("mode", s.mode),
		logger.Int("workers", s.cfg.RefreshWorkers),
		logger.Int("queue_size", s.cfg.RefreshQueueSize),
		logger.Int("stores", len(s.storeMgr.All())),
	)
	return nil
}

// Stop shuts the service down: the queue is closed, workers drain, and the
// database is released.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping forecasting service")

	if s.pool != nil {
		_ = s.pool.Shutdown(ctx)
	}
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			s.logger.Error(ctx, "closing repository", logger.Err(err))
		}
	}

	s.started = false
	s.logger.Info(ctx, "forecasting service stopped")
}

// importInitialData pulls sales through the POS fallback chain (and the
// spreadsheet in sheets mode), cleans them and fills the repository. Failures
// degrade to whatever data is already stored.
func (s *Service) importInitialData(ctx context.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -importWindowDays)

	storeIDs := make([]string, 0)
	for _, entry := range s.storeMgr.Active() {
		storeIDs = append(storeIDs, entry.ID)
	}

	raw, source, err := s.posc.FetchSales(ctx, from, to, storeIDs)
	if err != nil {
		s.logger.Warn(ctx, "initial sales import failed", logger.Err(err))
		advice := s.auditor.IntegrationAdvice(validate.SourceInspiro)
		s.logger.Info(ctx, "integration advice",
			logger.String("action", advice.ImmediateAction),
			logger.Int("retry_sec", advice.RetryIntervalSec),
		)
	} else {
		s.ingestSales(ctx, raw, source)
	}

	if s.sheets != nil {
		if err := s.sheets.EnsureWorksheets(ctx); err != nil {
			s.logger.Warn(ctx, "spreadsheet worksheets check failed", logger.Err(err))
			metrics.RecordSheetsOp("ensure_worksheets", "error")
		}
		sheetRaw, err := s.sheets.PullSales(ctx)
		if err != nil {
			s.logger.Warn(ctx, "spreadsheet sales pull failed", logger.Err(err))
			metrics.RecordSheetsOp("pull_sales", "error")
		} else {
			metrics.RecordSheetsOp("pull_sales", "ok")
			s.ingestSales(ctx, sheetRaw, "sheets")
		}
	}

	stock, stockSource, err := s.posc.LoadStock(ctx, storeIDs)
	if err != nil {
		s.logger.Warn(ctx, "stock import failed", logger.Err(err))
		return
	}
	if err := s.repo.ReplaceStock(ctx, stock); err != nil {
		s.logger.Warn(ctx, "storing stock levels failed", logger.Err(err))
		return
	}
	s.logger.Info(ctx, "stock levels imported",
		logger.String("source", stockSource),
		logger.Int("records", len(stock)),
	)
}

// ingestSales cleans raw lines and upserts the survivors.
func (s *Service) ingestSales(ctx context.Context, raw []validate.RawSale, source string) {
	records, issues := s.auditor.CleanSales(raw)
	for _, issue := range issues {
		s.logger.Warn(ctx, "sales validation issue", logger.String("issue", issue))
	}
	n, err := s.repo.InsertSales(ctx, records)
	if err != nil {
		s.logger.Warn(ctx, "storing sales failed", logger.Err(err))
		return
	}
	s.logger.Info(ctx, "sales imported",
		logger.String("source", source),
		logger.Int("records", n),
		logger.Int("issues", len(issues)),
	)
}

// enqueueNetworkRefresh queues one refresh job per active store.
func (s *Service) enqueueNetworkRefresh(ctx context.Context) {
	for _, entry := range s.storeMgr.Active() {
		if !s.tracker.Begin(ctx, entry.ID) {
			continue
		}
		job := model.RefreshJob{
			ID:         uuid.NewString(),
			StoreID:    entry.ID,
			EnqueuedAt: time.Now(),
		}
		if !s.queue.Enqueue(ctx, job) {
			s.tracker.End(ctx, entry.ID)
			s.logger.Warn(ctx, "initial refresh dropped", logger.String("store", entry.ID))
		}
	}
}

// Mode reports whether the service runs against a spreadsheet or demo data.
func (s *Service) Mode() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Uptime returns the time since Start.
func (s *Service) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return 0
	}
	return time.Since(s.startedAt)
}

// SetTunnelURL records the public URL the launcher obtained.
func (s *Service) SetTunnelURL(url string) {
	s.mu.Lock()
	s.tunnelURL = url
	s.mu.Unlock()
}

// TunnelURL returns the public URL, or empty when no tunnel runs.
func (s *Service) TunnelURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tunnelURL
}

// Status summarizes the running service.
func (s *Service) Status(ctx context.Context) (Status, error) {
	s.mu.RLock()
	if !s.started {
		s.mu.RUnlock()
		return Status{}, ErrNotStarted
	}
	st := Status{
		Mode:          s.mode,
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		TunnelURL:     s.tunnelURL,
	}
	queue := s.queue
	repo := s.repo
	mgr := s.storeMgr
	reg := s.registry
	s.mu.RUnlock()

	st.Stores = len(mgr.All())
	st.ActiveStores = len(mgr.Active())
	st.QueueLength = queue.Len(ctx)

	if n, err := repo.CountSales(ctx); err == nil {
		st.SalesRecords = n
	}
	if cs, err := repo.ListCorrections(ctx, ""); err == nil {
		st.Corrections = len(cs)
	}
	if best, ok := reg.Best(); ok {
		st.BestModel = best.Algorithm
		st.BestAccuracy = best.Metrics.Accuracy
	}

	metrics.UpdateUptime(st.UptimeSeconds)
	return st, nil
}

// Forecasts returns the persisted forecast rows matching the query.
func (s *Service) Forecasts(ctx context.Context, q repository.SnapshotQuery) ([]model.ForecastRow, error) {
	rows, err := s.repo.LatestSnapshot(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("read forecast snapshot: %w", err)
	}
	return rows, nil
}

// Refresh enqueues forecast regeneration. An empty storeID refreshes every
// active store; stores already in flight are skipped. For a single store, a
// pending refresh is an error so callers can report the conflict.
func (s *Service) Refresh(ctx context.Context, storeID string) ([]string, error) {
	if storeID != "" {
		store, ok := s.storeMgr.Get(storeID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", forecast.ErrUnknownStore, storeID)
		}
		if !store.Active {
			return nil, fmt.Errorf("%w: %s", forecast.ErrStoreInactive, storeID)
		}
		if !s.tracker.Begin(ctx, storeID) {
			return nil, fmt.Errorf("%w: %s", ErrRefreshInFlight, storeID)
		}
		job := model.RefreshJob{ID: uuid.NewString(), StoreID: storeID, EnqueuedAt: time.Now()}
		if !s.queue.Enqueue(ctx, job) {
			s.tracker.End(ctx, storeID)
			return nil, ErrBackpressure
		}
		return []string{job.ID}, nil
	}

	var ids []string
	dropped := 0
	for _, entry := range s.storeMgr.Active() {
		if !s.tracker.Begin(ctx, entry.ID) {
			continue
		}
		job := model.RefreshJob{ID: uuid.NewString(), StoreID: entry.ID, EnqueuedAt: time.Now()}
		if !s.queue.Enqueue(ctx, job) {
			s.tracker.End(ctx, entry.ID)
			dropped++
			continue
		}
		ids = append(ids, job.ID)
	}
	if len(ids) == 0 && dropped > 0 {
		return nil, ErrBackpressure
	}
	return ids, nil
}

// Consolidation derives purchase pooling opportunities from the latest
// network snapshot.
func (s *Service) Consolidation(ctx context.Context) ([]forecast.ConsolidationDay, error) {
	rows, err := s.repo.LatestSnapshot(ctx, repository.SnapshotQuery{})
	if err != nil {
		return nil, fmt.Errorf("read forecast snapshot: %w", err)
	}
	return forecast.Consolidate(rows), nil
}

// Stores lists every configured store.
func (s *Service) Stores(_ context.Context) []stores.Entry {
	return s.storeMgr.All()
}

// AddStore validates and registers a new store, then persists the network
// configuration.
func (s *Service) AddStore(ctx context.Context, id string, n stores.NewStore) error {
	if err := s.storeMgr.Add(ctx, id, n); err != nil {
		return err
	}
	s.logger.Info(ctx, "store added", logger.String("store", id), logger.String("type", string(n.Type)))
	return nil
}

// Corrections lists manual forecast overrides, optionally per store.
func (s *Service) Corrections(ctx context.Context, store string) ([]model.Correction, error) {
	cs, err := s.repo.ListCorrections(ctx, store)
	if err != nil {
		return nil, fmt.Errorf("list corrections: %w", err)
	}
	return cs, nil
}

// AddCorrection stores a manual override, assigning its id and timestamp.
func (s *Service) AddCorrection(ctx context.Context, c model.Correction) (model.Correction, error) {
	c.ID = uuid.NewString()
	c.CreatedAt = time.Now().UTC()
	if err := s.repo.AddCorrection(ctx, c); err != nil {
		return model.Correction{}, fmt.Errorf("store correction: %w", err)
	}
	metrics.RecordCorrection()
	s.logger.Info(ctx, "correction recorded",
		logger.String("key", c.Key()),
		logger.Int("original", c.Original),
		logger.Int("corrected", c.Corrected),
	)
	return c, nil
}

// ModelsDocument returns the persisted model-metrics document.
func (s *Service) ModelsDocument(_ context.Context) modelregistry.Document {
	return s.registry.Document()
}

// TrainModel trains one algorithm on stored sales history, falling back to
// the synthetic dataset when history is too short, and persists the result.
// The returned flag reports whether the new record is now the best model.
func (s *Service) TrainModel(ctx context.Context, algorithm string) (modelregistry.Record, bool, error) {
	data, err := s.trainingData(ctx)
	if err != nil {
		return modelregistry.Record{}, false, err
	}

	tr, err := trainer.New(algorithm,
		trainer.WithTestRatio(s.cfg.TrainingTestRatio),
		trainer.WithSeed(s.cfg.RandSeed),
	)
	if err != nil {
		return modelregistry.Record{}, false, err
	}

	start := time.Now()
	res, err := tr.Train(ctx, data)
	metrics.RecordTrainingDuration(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordTrainingRun(algorithm, "error")
		return modelregistry.Record{}, false, fmt.Errorf("train %s: %w", algorithm, err)
	}
	metrics.RecordTrainingRun(algorithm, "ok")
	metrics.UpdateModelAccuracy(algorithm, res.Metrics.Accuracy)

	rec, err := s.registry.Upsert(res)
	if err != nil {
		return modelregistry.Record{}, false, err
	}

	best, _ := s.registry.Best()
	s.logger.Info(ctx, "model trained",
		logger.String("algorithm", algorithm),
		logger.Float64("accuracy", res.Metrics.Accuracy),
		logger.Float64("mae", res.Metrics.MAE),
	)
	return rec, best.Algorithm == algorithm, nil
}

// TrainAll trains every supported algorithm and returns the records in
// training order.
func (s *Service) TrainAll(ctx context.Context) ([]modelregistry.Record, error) {
	var out []modelregistry.Record
	for _, alg := range trainer.Algorithms() {
		rec, _, err := s.TrainModel(ctx, alg)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// BestModel returns the highest-accuracy stored model.
func (s *Service) BestModel(_ context.Context) (modelregistry.Record, bool) {
	return s.registry.Best()
}

// RetrainBest retrains whichever algorithm currently scores best, starting
// from linear regression when nothing has been trained yet.
func (s *Service) RetrainBest(ctx context.Context) (modelregistry.Record, error) {
	algorithm := trainer.AlgorithmLinearRegression
	if best, ok := s.registry.Best(); ok {
		algorithm = best.Algorithm
	}
	rec, _, err := s.TrainModel(ctx, algorithm)
	return rec, err
}

// trainingData builds the feature matrix from sales history, or the
// synthetic set when history is shorter than the configured minimum.
func (s *Service) trainingData(ctx context.Context) (trainer.TrainingData, error) {
	history, err := s.repo.SalesHistory(ctx, repository.SalesQuery{})
	if err != nil {
		return trainer.TrainingData{}, fmt.Errorf("load sales history: %w", err)
	}

	if len(history) >= s.storeMgr.Settings().MinHistoricalDataDays {
		data, err := trainer.FromSales(history, s.cfg.RandSeed)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, trainer.ErrNotEnoughData) {
			return trainer.TrainingData{}, err
		}
	}

	s.logger.Info(ctx, "sales history too short, training on synthetic data",
		logger.Int("records", len(history)),
	)
	return trainer.Synthetic(s.cfg.TrainingDays, s.cfg.RandSeed, time.Now()), nil
}

// GenerateForecast produces rows on demand without touching the snapshot,
// for the forecast CLI command. An empty storeID generates the network view.
func (s *Service) GenerateForecast(ctx context.Context, storeID string, days int) ([]model.ForecastRow, error) {
	if storeID == "" {
		return s.engine.GenerateNetwork(ctx, days)
	}
	return s.engine.GenerateStore(ctx, storeID, days)
}

// PushForecast uploads rows to the spreadsheet. Demo mode is an error the
// CLI reports as "configure credentials first".
func (s *Service) PushForecast(ctx context.Context, rows []model.ForecastRow) error {
	if s.sheets == nil {
		return ErrDemoMode
	}
	if err := s.sheets.PushForecast(ctx, rows); err != nil {
		metrics.RecordSheetsOp("push_forecast", "error")
		return fmt.Errorf("push forecast: %w", err)
	}
	metrics.RecordSheetsOp("push_forecast", "ok")
	return nil
}

// StorePerformance returns demo performance indicators for one store.
func (s *Service) StorePerformance(_ context.Context, storeID string) (forecast.StorePerformance, error) {
	return s.engine.StorePerformance(storeID)
}

// NetworkPerformance returns aggregated demo indicators.
func (s *Service) NetworkPerformance(_ context.Context) forecast.NetworkPerformance {
	return s.engine.NetworkPerformance()
}

// Weather returns the stubbed outlook the dashboard shows.
func (s *Service) Weather(_ context.Context, days int) forecast.Weather {
	return s.engine.Weather("Almaty", days)
}

// AuditReport returns accumulated data-quality statistics.
func (s *Service) AuditReport(_ context.Context) validate.ErrorReport {
	return s.auditor.Report()
}
