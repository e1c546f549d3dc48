package importapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	catalogapp "github.com/beezio/marketplace/internal/application/catalog"
	"github.com/beezio/marketplace/internal/domain/catalog"
	"github.com/beezio/marketplace/internal/domain/importing"
	"github.com/beezio/marketplace/internal/domain/integration"
	"github.com/beezio/marketplace/internal/domain/pricing"
	"github.com/beezio/marketplace/internal/infrastructure/logger"
	"github.com/beezio/marketplace/internal/infrastructure/telemetry"
)

const (
	defaultFetchTimeout   = 30 * time.Second
	defaultPersistTimeout = 15 * time.Second
	defaultMaxConcurrent  = 4
)

// Resolver maps a label and a caller to the internal category and owner
type Resolver interface {
	ResolveCategory(ctx context.Context, label string) (*uuid.UUID, error)
	ResolveOwner(ctx context.Context, caller catalogapp.Caller) (uuid.UUID, error)
}

// Config bounds the network-bound stages and the fan-out of ImportMany
type Config struct {
	FetchTimeout   time.Duration
	PersistTimeout time.Duration
	MaxConcurrent  int
}

func (c *Config) applyDefaults() {
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = defaultFetchTimeout
	}
	if c.PersistTimeout <= 0 {
		c.PersistTimeout = defaultPersistTimeout
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = defaultMaxConcurrent
	}
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithLogger sets the fallback logger used when the context carries none
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records import outcomes on m
func WithMetrics(m *telemetry.ImportMetrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// job is the local handle of an import this process is running
type job struct {
	// token identifies this job's hold on its registry key
	token     string
	cancelled atomic.Bool
}

// Orchestrator runs import jobs. Jobs share nothing but the job registry,
// so any number may run at once; each key runs at most once at a time.
type Orchestrator struct {
	providers integration.ProviderRegistry
	resolver  Resolver
	server    importing.ServerImporter
	client    importing.ClientWriter
	jobs      importing.JobRegistry
	policy    pricing.Policy
	cfg       Config
	logger    *zap.Logger
	metrics   *telemetry.ImportMetrics

	mu     sync.Mutex
	active map[string]*job
}

// NewOrchestrator creates an Orchestrator. policy must already be valid.
func NewOrchestrator(
	providers integration.ProviderRegistry,
	resolver Resolver,
	server importing.ServerImporter,
	client importing.ClientWriter,
	jobs importing.JobRegistry,
	policy pricing.Policy,
	cfg Config,
	opts ...Option,
) *Orchestrator {
	cfg.applyDefaults()
	o := &Orchestrator{
		providers: providers,
		resolver:  resolver,
		server:    server,
		client:    client,
		jobs:      jobs,
		policy:    policy,
		cfg:       cfg,
		logger:    zap.NewNop(),
		active:    make(map[string]*job),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Policy returns the pricing policy applied to every import
func (o *Orchestrator) Policy() pricing.Policy {
	return o.policy
}

// Quote prices in under the orchestrator's policy without importing anything
func (o *Orchestrator) Quote(in pricing.Input) (pricing.Breakdown, error) {
	return pricing.ComputeBreakdown(in, o.policy)
}

// Import runs one job to a terminal state. It never panics or returns an
// error; every failure is reported in the Result.
func (o *Orchestrator) Import(ctx context.Context, req ImportRequest) Result {
	started := time.Now()
	key := req.Key()

	ctx, span := telemetry.StartServiceSpan(ctx, "importapp", "Import",
		telemetry.WithAttribute(telemetry.SpanAttrProvider, key.Provider),
		telemetry.WithAttribute(telemetry.SpanAttrExternalID, key.ExternalID),
	)
	defer span.End()

	var res Result
	telemetry.WithProfilingLabels(ctx, telemetry.ImportLabels(key.Provider), func(ctx context.Context) {
		res = o.run(ctx, key, req)
	})
	res.Provider, res.ExternalID = key.Provider, key.ExternalID

	took := time.Since(started)
	if res.Success {
		o.metrics.RecordImported(ctx, key.Provider, string(res.Path), took)
		telemetry.SetAttributes(span,
			telemetry.SpanAttrProductID, res.ProductID.String(),
			telemetry.SpanAttrPath, string(res.Path),
		)
		telemetry.SetOK(span)
	} else {
		o.metrics.RecordFailed(ctx, key.Provider, string(res.Error.Kind), took)
		telemetry.SetAttributes(span, telemetry.SpanAttrStage, string(res.Error.Stage))
		telemetry.RecordError(span, res.Error)
	}
	return res
}

func (o *Orchestrator) run(ctx context.Context, key importing.JobKey, req ImportRequest) Result {
	log := o.log(ctx).With(
		zap.String("provider", key.Provider),
		zap.String("external_id", key.ExternalID),
	)
	fail := func(kind importing.Kind, stage importing.Stage, err error) Result {
		ie := importing.NewImportError(kind, stage, key.Provider, key.ExternalID, err)
		log.Warn("Import failed",
			zap.String("kind", string(kind)),
			zap.String("stage", string(stage)),
			zap.Error(err),
		)
		return failed(ie)
	}

	// Admission
	if strings.TrimSpace(key.ExternalID) == "" {
		return fail(importing.KindValidation, importing.StageAdmission, errors.New("external id is required"))
	}
	adapter, err := o.providers.Adapter(req.Provider)
	if err != nil {
		return fail(importing.KindConfiguration, importing.StageAdmission, err)
	}
	j, err := o.admit(ctx, key)
	if err != nil {
		if errors.Is(err, importing.ErrJobInFlight) {
			return fail(importing.KindDuplicate, importing.StageAdmission, err)
		}
		return fail(importing.KindInfrastructureAbsent, importing.StageAdmission, err)
	}
	defer o.finish(ctx, key, j)

	log.Debug("Import admitted", zap.String("credentials", req.Credentials.Fingerprint()))

	// Fetching
	product, err := o.fetch(ctx, adapter, key, req, log)
	if err != nil {
		return fail(importing.KindAdapter, importing.StageFetching, err)
	}
	if err := product.Validate(); err != nil {
		return fail(importing.KindAdapter, importing.StageFetching, err)
	}

	// Pricing
	if err := o.checkWanted(ctx, key, j); err != nil {
		return fail(importing.KindCancelled, importing.StagePricing, err)
	}
	in := req.Pricing
	in.BaseCost = product.Price.Amount()
	if cur := string(product.Price.Currency()); cur != "" && !strings.EqualFold(cur, o.policy.Currency) {
		return fail(importing.KindValidation, importing.StagePricing,
			fmt.Errorf("product priced in %s, policy currency is %s", cur, o.policy.Currency))
	}
	breakdown, err := pricing.ComputeBreakdown(in, o.policy)
	if err != nil {
		return fail(importing.KindValidation, importing.StagePricing, err)
	}

	// Resolving
	record, link, ie := o.resolve(ctx, key, req, product, in, breakdown)
	if ie != nil {
		return fail(ie.Kind, ie.Stage, ie.Err)
	}

	// Persisting
	if err := o.checkWanted(ctx, key, j); err != nil {
		return fail(importing.KindCancelled, importing.StageServer, err)
	}
	// The write is never aborted by the caller; only the persist timeout bounds it.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.cfg.PersistTimeout)
	defer cancel()

	id, err := o.persistServer(pctx, record, link)
	if err == nil {
		log.Info("Imported product", zap.String("product_id", id.String()), zap.String("path", string(PathServer)))
		return succeeded(id, PathServer)
	}
	if !errors.Is(err, importing.ErrInfrastructureAbsent) {
		return fail(importing.KindPersistenceRejected, importing.StageServer, err)
	}
	log.Warn("Server import path unavailable, falling back to client writes", zap.Error(err))

	if err := o.persistClient(pctx, record, link); err != nil {
		var partial *importing.ImportError
		if errors.As(err, &partial) {
			log.Error("Product written without supplier link",
				zap.String("orphan_product_id", partial.ProductID.String()),
				zap.Error(partial.Err),
			)
			return failed(partial)
		}
		return fail(importing.KindPersistenceRejected, importing.StageFallback, err)
	}
	log.Info("Imported product", zap.String("product_id", record.ID.String()), zap.String("path", string(PathClient)))
	return succeeded(record.ID, PathClient)
}

// admit claims key in the registry and tracks the job locally
func (o *Orchestrator) admit(ctx context.Context, key importing.JobKey) (*job, error) {
	j := &job{token: uuid.NewString()}
	ok, err := o.jobs.Acquire(ctx, key, j.token)
	if err != nil {
		return nil, fmt.Errorf("job registry: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", importing.ErrJobInFlight, key)
	}
	o.mu.Lock()
	o.active[key.String()] = j
	o.mu.Unlock()
	return j, nil
}

// finish drops the local handle and frees the key under the job's token. A
// key removed by Cancel on any instance may belong to a newer job by now; the
// token check leaves that hold alone.
func (o *Orchestrator) finish(ctx context.Context, key importing.JobKey, j *job) {
	o.mu.Lock()
	if o.active[key.String()] == j {
		delete(o.active, key.String())
	}
	o.mu.Unlock()

	if err := o.jobs.Release(context.WithoutCancel(ctx), key, j.token); err != nil {
		o.log(ctx).Warn("Failed to release import job", zap.String("job", key.String()), zap.Error(err))
	}
}

// checkWanted reports ErrJobCancelled once the caller gave up or the job no
// longer holds its key.
func (o *Orchestrator) checkWanted(ctx context.Context, key importing.JobKey, j *job) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", importing.ErrJobCancelled, err)
	}
	if j.cancelled.Load() {
		return importing.ErrJobCancelled
	}
	held, err := o.jobs.HeldBy(ctx, key, j.token)
	if err != nil {
		return fmt.Errorf("%w: job registry: %v", importing.ErrJobCancelled, err)
	}
	if !held {
		return importing.ErrJobCancelled
	}
	return nil
}

// fetch enriches the listed record with the adapter's detail view. Detail is
// optional: a missing capability or a failed call keeps the listed record.
func (o *Orchestrator) fetch(ctx context.Context, adapter integration.ProviderAdapter, key importing.JobKey, req ImportRequest, log *logger.ContextLogger) (integration.ExternalProduct, error) {
	product := req.Product
	if product.Provider == "" {
		product.Provider = req.Provider
	}
	fetcher, ok := adapter.(integration.DetailFetcher)
	if !ok {
		return product, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "import.fetch",
		telemetry.WithAttribute(telemetry.SpanAttrStage, string(importing.StageFetching)))
	defer span.End()

	fctx, cancel := context.WithTimeout(ctx, o.cfg.FetchTimeout)
	defer cancel()

	detail, err := fetcher.FetchDetail(fctx, req.Credentials, key.ExternalID)
	if err != nil {
		telemetry.RecordError(span, err)
		// An unreadable supplier record fails the job; the listed record is
		// not a fallback for it.
		if errors.Is(err, integration.ErrProviderInvalidResponse) {
			return integration.ExternalProduct{}, err
		}
		log.Warn("Detail fetch failed, using listed record",
			zap.String("credentials", req.Credentials.Fingerprint()),
			zap.Error(err),
		)
		return product, nil
	}
	telemetry.SetOK(span)
	return product.Merge(detail), nil
}

// resolve picks category and owner and builds the two rows to persist
func (o *Orchestrator) resolve(
	ctx context.Context,
	key importing.JobKey,
	req ImportRequest,
	product integration.ExternalProduct,
	in pricing.Input,
	breakdown pricing.Breakdown,
) (*catalog.ImportedProduct, *catalog.SupplierLink, *importing.ImportError) {
	ctx, span := telemetry.StartSpan(ctx, "import.resolve",
		telemetry.WithAttribute(telemetry.SpanAttrStage, string(importing.StageResolving)))
	defer span.End()

	miss := func(kind importing.Kind, err error) *importing.ImportError {
		telemetry.RecordError(span, err)
		return importing.NewImportError(kind, importing.StageResolving, key.Provider, key.ExternalID, err)
	}

	categoryID, err := o.resolver.ResolveCategory(ctx, product.CategoryLabel)
	if err != nil {
		return nil, nil, miss(importing.KindPersistenceRejected, fmt.Errorf("category lookup: %w", err))
	}
	if categoryID == nil {
		return nil, nil, miss(importing.KindResolutionMiss,
			fmt.Errorf("%w: no category for %q and no fallback category", importing.ErrResolutionMiss, product.CategoryLabel))
	}

	ownerID, err := o.resolver.ResolveOwner(ctx, req.Caller)
	if errors.Is(err, catalogapp.ErrIdentityRequired) {
		return nil, nil, miss(importing.KindResolutionMiss, fmt.Errorf("%w: %v", importing.ErrResolutionMiss, err))
	}
	if err != nil {
		return nil, nil, miss(importing.KindPersistenceRejected, fmt.Errorf("owner lookup: %w", err))
	}

	record, err := catalog.NewImportedProduct(catalog.ProductDraft{
		OwnerID:     ownerID,
		CategoryID:  *categoryID,
		Title:       product.Name,
		Description: product.Description,
		Images:      product.ImageURLs,
		SKU:         product.SKU,
		Stock:       product.Stock,
		Pricing:     catalog.NewPriceSnapshot(breakdown, in),
	})
	if err != nil {
		return nil, nil, miss(importing.KindValidation, err)
	}
	link, err := catalog.NewSupplierLink(record.ID, key.Provider, key.ExternalID, product.SKU)
	if err != nil {
		return nil, nil, miss(importing.KindValidation, err)
	}
	telemetry.SetOK(span)
	return record, link, nil
}

func (o *Orchestrator) persistServer(ctx context.Context, record *catalog.ImportedProduct, link *catalog.SupplierLink) (uuid.UUID, error) {
	ctx, span := telemetry.StartSpan(ctx, "import.persist_server",
		telemetry.WithAttribute(telemetry.SpanAttrStage, string(importing.StageServer)))
	defer span.End()

	id, err := o.server.ImportProduct(ctx, record, link)
	if err != nil {
		telemetry.RecordError(span, err)
		return uuid.Nil, err
	}
	telemetry.SetOK(span)
	return id, nil
}

// persistClient writes the product, then its link. A failed link write
// returns a partial-write ImportError naming the orphan.
func (o *Orchestrator) persistClient(ctx context.Context, record *catalog.ImportedProduct, link *catalog.SupplierLink) error {
	ctx, span := telemetry.StartSpan(ctx, "import.persist_client",
		telemetry.WithAttribute(telemetry.SpanAttrStage, string(importing.StageFallback)))
	defer span.End()

	if err := o.client.CreateProduct(ctx, record); err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	if err := o.client.CreateSupplierLink(ctx, link); err != nil {
		telemetry.RecordError(span, err)
		ie := importing.NewImportError(importing.KindPartialWrite, importing.StageFallback,
			link.Provider, link.ExternalID, fmt.Errorf("%w: %v", importing.ErrPartialWrite, err))
		ie.ProductID = record.ID
		return ie
	}
	telemetry.SetOK(span)
	return nil
}

// ImportMany runs reqs concurrently, at most Config.MaxConcurrent at a time,
// and returns results in request order. Each success is removed from ws.
// A failing job never stops its siblings.
func (o *Orchestrator) ImportMany(ctx context.Context, reqs []ImportRequest, ws *WorkingSet) []Result {
	ctx, span := telemetry.StartServiceSpan(ctx, "importapp", "ImportMany",
		telemetry.WithAttribute(telemetry.SpanAttrBatchSize, len(reqs)))
	defer span.End()

	results := make([]Result, len(reqs))
	var g errgroup.Group
	g.SetLimit(o.cfg.MaxConcurrent)
	for i := range reqs {
		g.Go(func() error {
			results[i] = o.Import(ctx, reqs[i])
			if results[i].Success && ws != nil && ws.Provider() == results[i].Provider {
				ws.Remove(results[i].ExternalID)
			}
			return nil
		})
	}
	_ = g.Wait()

	failures := 0
	for _, r := range results {
		if !r.Success {
			failures++
		}
	}
	telemetry.SetAttributes(span, "import.failures", failures)
	telemetry.SetOK(span)
	return results
}

// Cancel abandons the job for provider and externalID. A running job finishes
// its current network call, then discards the result. An in-flight write is
// allowed to complete. It reports whether a job was in flight.
func (o *Orchestrator) Cancel(ctx context.Context, provider, externalID string) (bool, error) {
	key := importing.JobKey{Provider: integration.ParseProviderCode(provider).String(), ExternalID: externalID}

	o.mu.Lock()
	if j, ok := o.active[key.String()]; ok {
		j.cancelled.Store(true)
	}
	o.mu.Unlock()

	held, err := o.jobs.Contains(ctx, key)
	if err != nil {
		return false, err
	}
	if !held {
		return false, nil
	}
	if err := o.jobs.Remove(ctx, key); err != nil {
		return false, err
	}
	o.log(ctx).Info("Import cancelled", zap.String("job", key.String()))
	return true, nil
}

// InFlight lists the keys of running jobs across every instance sharing the registry
func (o *Orchestrator) InFlight(ctx context.Context) ([]string, error) {
	return o.jobs.InFlight(ctx)
}

// log prefers the request-scoped logger carried by ctx
func (o *Orchestrator) log(ctx context.Context) *logger.ContextLogger {
	if l, ok := ctx.Value(logger.LoggerKey).(*zap.Logger); ok && l != nil {
		return logger.WithLogger(ctx, l)
	}
	return logger.WithLogger(ctx, o.logger)
}
