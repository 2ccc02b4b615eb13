package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/report"
	"github.com/pharmaops/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Report names, used as cache keys and span attributes
const (
	NameInventorySummary   = "inventory_summary"
	NameStockLevels        = "stock_levels"
	NameExpiry             = "expiry"
	NameInventoryMovement  = "inventory_movement"
	NameInventoryValuation = "inventory_valuation"
	NameSales              = "sales"
	NamePurchases          = "purchases"
	NameFinancial          = "financial"
)

// Cache stores built reports per pharmacy. A miss returns false with no
// error; dest must be a pointer. Set receives the generation read before the
// build so a report overtaken by a mutation is not stored as current.
type Cache interface {
	Get(ctx context.Context, pharmacyID uuid.UUID, key string, dest any) (bool, error)
	Generation(ctx context.Context, pharmacyID uuid.UUID) (int64, error)
	Set(ctx context.Context, pharmacyID uuid.UUID, gen int64, key string, value any) error
}

// BuildLocker is implemented by caches shared between instances. While the
// lock is held no other instance builds the same report; ok reports whether
// it was obtained.
type BuildLocker interface {
	LockBuild(ctx context.Context, pharmacyID uuid.UUID, key string) (release func(), ok bool, err error)
}

// ReportService loads report rows and runs the aggregation builders.
// It never writes and never opens a transaction.
type ReportService struct {
	repo          report.Repository
	cache         Cache
	metrics       *telemetry.LedgerMetrics
	logger        *zap.Logger
	opts          report.Options
	expiryHorizon int
	now           func() time.Time
}

// NewReportService creates a new ReportService with the default thresholds
// and no cache
func NewReportService(repo report.Repository, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:          repo,
		logger:        logger,
		opts:          report.DefaultOptions(),
		expiryHorizon: 180,
		now:           time.Now,
	}
}

// SetCache sets the report cache. nil disables caching.
func (s *ReportService) SetCache(cache Cache) {
	s.cache = cache
}

// SetOptions overrides the builder thresholds and the default expiry horizon
func (s *ReportService) SetOptions(opts report.Options, expiryThresholdDays int) {
	s.opts = opts
	if expiryThresholdDays > 0 {
		s.expiryHorizon = expiryThresholdDays
	}
}

// SetLedgerMetrics sets the instruments used for cache hit counting
func (s *ReportService) SetLedgerMetrics(m *telemetry.LedgerMetrics) {
	s.metrics = m
}

// SetClock replaces the time source
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// InventorySummary returns the dashboard counters
func (s *ReportService) InventorySummary(ctx context.Context, f report.Filter) (*report.InventorySummary, error) {
	return cached(ctx, s, NameInventorySummary, f, "", func(ctx context.Context) (*report.InventorySummary, error) {
		var (
			in  report.SummaryInput
			err error
		)
		if in.Products, err = s.repo.ListProducts(ctx, f); err != nil {
			return nil, err
		}
		if in.ActiveBatches, err = s.repo.ListActiveBatches(ctx, f); err != nil {
			return nil, err
		}
		if in.Suppliers, err = s.repo.CountSuppliers(ctx, f.PharmacyID); err != nil {
			return nil, err
		}
		if in.Sales, err = s.repo.ListSales(ctx, f); err != nil {
			return nil, err
		}
		if in.Purchases, err = s.repo.ListPurchases(ctx, f); err != nil {
			return nil, err
		}
		summary := report.BuildInventorySummary(in, s.now(), s.opts)
		return &summary, nil
	})
}

// StockLevels classifies every product's stock, lowest first
func (s *ReportService) StockLevels(ctx context.Context, f report.Filter) ([]report.StockLevel, error) {
	return cached(ctx, s, NameStockLevels, f, "", func(ctx context.Context) ([]report.StockLevel, error) {
		products, err := s.repo.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		return report.BuildStockLevels(products), nil
	})
}

// Expiry lists lots expiring within days. days <= 0 uses the configured
// horizon, 180 unless overridden.
func (s *ReportService) Expiry(ctx context.Context, f report.Filter, days int) ([]report.ExpiryEntry, error) {
	if days <= 0 {
		days = s.expiryHorizon
	}
	return cached(ctx, s, NameExpiry, f, fmt.Sprintf("days=%d", days), func(ctx context.Context) ([]report.ExpiryEntry, error) {
		batches, err := s.repo.ListActiveBatches(ctx, f)
		if err != nil {
			return nil, err
		}
		products, err := s.repo.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		return report.BuildExpiryReport(batches, products, s.now(), days, s.opts), nil
	})
}

// InventoryMovement lists stock events with a per-product rollup. Drift
// against current stock is reported only when no date window is set.
func (s *ReportService) InventoryMovement(ctx context.Context, f report.Filter) (*report.InventoryMovement, error) {
	return cached(ctx, s, NameInventoryMovement, f, "", func(ctx context.Context) (*report.InventoryMovement, error) {
		rows, err := s.repo.ListMovements(ctx, f)
		if err != nil {
			return nil, err
		}
		products, err := s.repo.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		movement := report.BuildInventoryMovement(rows, products, !f.HasDateWindow())
		return &movement, nil
	})
}

// InventoryValuation values stock at cost and retail
func (s *ReportService) InventoryValuation(ctx context.Context, f report.Filter) (*report.InventoryValuation, error) {
	return cached(ctx, s, NameInventoryValuation, f, "", func(ctx context.Context) (*report.InventoryValuation, error) {
		products, err := s.repo.ListProducts(ctx, f)
		if err != nil {
			return nil, err
		}
		valuation := report.BuildInventoryValuation(products)
		return &valuation, nil
	})
}

// Sales lists sales in the window with a top-products ranking
func (s *ReportService) Sales(ctx context.Context, f report.Filter) (*report.SalesReport, error) {
	return cached(ctx, s, NameSales, f, "", func(ctx context.Context) (*report.SalesReport, error) {
		sales, err := s.repo.ListSales(ctx, f)
		if err != nil {
			return nil, err
		}
		r := report.BuildSalesReport(sales, s.opts)
		return &r, nil
	})
}

// Purchases lists purchases in the window with a top-suppliers ranking
func (s *ReportService) Purchases(ctx context.Context, f report.Filter) (*report.PurchaseReport, error) {
	return cached(ctx, s, NamePurchases, f, "", func(ctx context.Context) (*report.PurchaseReport, error) {
		purchases, err := s.repo.ListPurchases(ctx, f)
		if err != nil {
			return nil, err
		}
		r := report.BuildPurchaseReport(purchases, s.opts)
		return &r, nil
	})
}

// Financial splits the ledger into income and expenses by period
func (s *ReportService) Financial(ctx context.Context, f report.Filter) (*report.FinancialReport, error) {
	return cached(ctx, s, NameFinancial, f, "", func(ctx context.Context) (*report.FinancialReport, error) {
		txs, err := s.repo.ListTransactions(ctx, f)
		if err != nil {
			return nil, err
		}
		r := report.BuildFinancialReport(txs)
		return &r, nil
	})
}

// cached validates the filter, serves name from the cache when possible and
// otherwise builds and stores it. Cache failures degrade to a rebuild.
func cached[T any](ctx context.Context, s *ReportService, name string, f report.Filter, extra string, build func(context.Context) (T, error)) (_ T, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", name,
		telemetry.SpanAttrPharmacyID, f.PharmacyID,
		telemetry.SpanAttrReportName, name)
	defer func() {
		telemetry.RecordError(span, err)
		span.End()
	}()

	var zero T
	if err := f.Validate(); err != nil {
		return zero, err
	}

	key := cacheKey(name, f, extra)
	gen, cacheable := s.cacheGeneration(ctx, name, f.PharmacyID)
	if hit, found := lookup[T](ctx, s, name, f.PharmacyID, key); found {
		telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
		return hit, nil
	}
	if locker, ok := s.cache.(BuildLocker); ok {
		release, locked, err := locker.LockBuild(ctx, f.PharmacyID, key)
		if err != nil {
			s.logger.Warn("Report build lock failed",
				zap.String("report", name),
				zap.String("pharmacy_id", f.PharmacyID.String()),
				zap.Error(err))
		}
		defer release()
		if locked {
			// the previous holder may have just stored it
			if hit, found := lookup[T](ctx, s, name, f.PharmacyID, key); found {
				telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, true)
				return hit, nil
			}
		}
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)

	var result T
	telemetry.WithProfilingLabels(ctx, map[string]string{telemetry.ProfilingLabelReport: name}, func(ctx context.Context) {
		result, err = build(ctx)
	})
	if err != nil {
		return zero, err
	}
	if cacheable {
		if err := s.cache.Set(ctx, f.PharmacyID, gen, key, result); err != nil {
			s.logger.Warn("Report cache write failed",
				zap.String("report", name),
				zap.String("pharmacy_id", f.PharmacyID.String()),
				zap.Error(err))
		}
	}
	return result, nil
}

// cacheGeneration reads the pharmacy's cache generation ahead of a build.
// When it cannot be read the built report is not stored.
func (s *ReportService) cacheGeneration(ctx context.Context, name string, pharmacyID uuid.UUID) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx, pharmacyID)
	if err != nil {
		s.logger.Warn("Report cache generation read failed",
			zap.String("report", name),
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
		return 0, false
	}
	return gen, true
}

// lookup reads key from the cache. Read failures count as misses.
func lookup[T any](ctx context.Context, s *ReportService, name string, pharmacyID uuid.UUID, key string) (T, bool) {
	var hit T
	if s.cache == nil {
		return hit, false
	}
	found, err := s.cache.Get(ctx, pharmacyID, key, &hit)
	if err != nil {
		s.logger.Warn("Report cache read failed",
			zap.String("report", name),
			zap.String("pharmacy_id", pharmacyID.String()),
			zap.Error(err))
		found = false
	}
	s.metrics.RecordCacheLookup(ctx, name, found)
	return hit, found
}

// cacheKey fingerprints a report request within its pharmacy
func cacheKey(name string, f report.Filter, extra string) string {
	parts := []string{name}
	if f.From != nil {
		parts = append(parts, "from="+f.From.UTC().Format(time.RFC3339Nano))
	}
	if f.To != nil {
		parts = append(parts, "to="+f.To.UTC().Format(time.RFC3339Nano))
	}
	if f.Category != "" {
		parts = append(parts, "category="+f.Category)
	}
	if f.ProductID != nil {
		parts = append(parts, "product="+f.ProductID.String())
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	return strings.Join(parts, "|")
}
