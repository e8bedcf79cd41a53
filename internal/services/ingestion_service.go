package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"infinite-experiment/logbook/internal/coerce"
	"infinite-experiment/logbook/internal/constants"
	"infinite-experiment/logbook/internal/db/repositories"
	"infinite-experiment/logbook/internal/logging"
	"infinite-experiment/logbook/internal/mapping"
	"infinite-experiment/logbook/internal/metrics"
	"infinite-experiment/logbook/internal/models"
	"infinite-experiment/logbook/internal/models/dtos"
	gormModels "infinite-experiment/logbook/internal/models/gorm"
	"infinite-experiment/logbook/internal/providers"
	"infinite-experiment/logbook/internal/registry"
)

// IngestionService turns one uploaded table into stored flight-log records
type IngestionService struct {
	reg         *registry.Registry
	detector    providers.FormatDetector
	mapper      *mapping.Resolver
	aircraft    coerce.AircraftResolver
	store       *repositories.FlightLogRepository
	metrics     *metrics.MetricsRegistry
	location    *time.Location
	concurrency int
}

func NewIngestionService(
	reg *registry.Registry,
	detector providers.FormatDetector,
	mapper *mapping.Resolver,
	aircraft coerce.AircraftResolver,
	store *repositories.FlightLogRepository,
	m *metrics.MetricsRegistry,
	location *time.Location,
	concurrency int,
) *IngestionService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &IngestionService{
		reg:         reg,
		detector:    detector,
		mapper:      mapper,
		aircraft:    aircraft,
		store:       store,
		metrics:     m,
		location:    location,
		concurrency: concurrency,
	}
}

// Import maps, coerces and stores every row of req as one batch. Any row
// error aborts the batch and is returned scoped to its row.
func (s *IngestionService) Import(ctx context.Context, userID string, req dtos.ImportRequest) (*dtos.ImportReport, error) {
	if err := validateImport(userID, req); err != nil {
		s.metrics.BatchesFailedTotal.WithLabelValues(models.ErrorCode(err)).Inc()
		return nil, err
	}

	var warnings []string
	sample := s.mapper.Sample(req.Rows)

	format := s.detectFormat(ctx, req.Headers, sample)
	if format == nil {
		warnings = append(warnings, fmt.Sprintf("%s: format detection unavailable", constants.ErrCodeCollaboratorUnavailable))
	}

	hint := strings.TrimSpace(req.TimestampFormat)
	if hint == "" && format != nil {
		hint = strings.TrimSpace(format.TimestampFormat)
	}

	colMap, err := s.mapper.ResolveWithFormat(ctx, req.Headers, req.Rows, format)
	if err != nil {
		s.metrics.BatchesFailedTotal.WithLabelValues(models.ErrorCode(err)).Inc()
		return nil, err
	}
	if len(colMap.Warnings) > 0 {
		s.metrics.CollaboratorFallbacksTotal.WithLabelValues("suggest_columns").Inc()
		warnings = append(warnings, colMap.Warnings...)
	}

	raws, extras := splitRows(colMap, req.Rows)

	memo := s.preResolve(ctx, colMap, req.Rows, req.FromImageSource)

	coercer := coerce.New(s.reg, memo, coerce.Options{
		TimestampFormat: hint,
		Location:        s.location,
		FromImageSource: req.FromImageSource,
	})

	rows := make([]models.CanonicalRow, len(raws))
	for i, raw := range raws {
		values, err := coercer.CoerceRow(ctx, raw)
		if err != nil {
			logging.WithBatch(userID, len(raws)).Warnw("Flight-log batch rejected",
				"row", i,
				"code", models.ErrorCode(err),
			)
			return nil, s.rowFailure(err, i)
		}
		rows[i] = models.CanonicalRow{Values: values, Extras: extras[i]}
	}

	ids, err := s.store.InsertBatch(ctx, userID, rows)
	if err != nil {
		var fe *models.FlightLogError
		if errors.As(err, &fe) {
			s.metrics.BatchesFailedTotal.WithLabelValues(fe.Code).Inc()
			return nil, fe
		}
		s.metrics.BatchesFailedTotal.WithLabelValues("storage").Inc()
		return nil, err
	}
	s.metrics.RowsIngestedTotal.Add(float64(len(ids)))

	logging.WithBatch(userID, len(ids)).Infow("Flight-log batch imported",
		"retained_columns", len(colMap.Retained()),
		"dropped_columns", len(colMap.Dropped()),
		"timestamp_format", hint,
	)

	return &dtos.ImportReport{
		Inserted:        len(ids),
		RecordIDs:       ids,
		Mapping:         colMap.Summary(),
		TimestampFormat: hint,
		Warnings:        warnings,
	}, nil
}

func validateImport(userID string, req dtos.ImportRequest) error {
	if strings.TrimSpace(userID) == "" {
		return models.NewError(constants.ErrCodeInvalidRequest, "", fmt.Errorf("user id is required"))
	}
	if len(req.Headers) == 0 {
		return models.NewError(constants.ErrCodeInvalidRequest, "", fmt.Errorf("headers are required"))
	}
	if len(req.Rows) == 0 {
		return models.NewError(constants.ErrCodeInvalidRequest, "", fmt.Errorf("no rows to import"))
	}
	for i, row := range req.Rows {
		if len(row) > len(req.Headers) {
			return models.NewError(constants.ErrCodeInvalidRequest, "",
				fmt.Errorf("row has %d cells for %d headers", len(row), len(req.Headers))).AtRow(i)
		}
	}
	return nil
}

// detectFormat returns nil when the detector is missing or fails
func (s *IngestionService) detectFormat(ctx context.Context, headers []string, sample [][]string) *dtos.FormatDetection {
	if s.detector == nil {
		return nil
	}

	format, err := s.detector.DetectFormat(ctx, dtos.DetectFormatRequest{Headers: headers, SampleRows: sample})
	if err != nil || format == nil {
		s.metrics.CollaboratorFallbacksTotal.WithLabelValues("detect_format").Inc()
		if err != nil {
			logging.Warn("Format detection unavailable, using request hint", "error", err.Error())
		}
		return nil
	}
	return format
}

// splitRows keys each row by registry key and collects retained columns
func splitRows(colMap *mapping.ColumnMapping, rows [][]string) ([]map[string]string, []map[string]string) {
	raws := make([]map[string]string, len(rows))
	extras := make([]map[string]string, len(rows))

	for i, row := range rows {
		raw := make(map[string]string)
		var extra map[string]string
		for _, a := range colMap.Assignments {
			if a.Index >= len(row) {
				continue
			}
			switch a.Disposition {
			case mapping.Mapped:
				raw[a.Key] = row[a.Index]
			case mapping.Retained:
				if v := strings.TrimSpace(row[a.Index]); v != "" {
					if extra == nil {
						extra = make(map[string]string)
					}
					extra[a.Header] = v
				}
			}
		}
		raws[i] = raw
		extras[i] = extra
	}
	return raws, extras
}

type resolution struct {
	model *gormModels.AircraftModel
	err   error
}

// memoResolver serves pre-resolved identifiers and delegates the rest
type memoResolver struct {
	next    coerce.AircraftResolver
	mu      sync.Mutex
	results map[string]resolution
}

func (m *memoResolver) Resolve(ctx context.Context, raw string, fromImageSource bool) (*gormModels.AircraftModel, error) {
	m.mu.Lock()
	r, ok := m.results[raw]
	m.mu.Unlock()
	if ok {
		return r.model, r.err
	}
	return m.next.Resolve(ctx, raw, fromImageSource)
}

// preResolve resolves the distinct aircraft identifiers of the batch
// concurrently so rows sharing an unseen aircraft wait on one inference
func (s *IngestionService) preResolve(ctx context.Context, colMap *mapping.ColumnMapping, rows [][]string, fromImageSource bool) *memoResolver {
	memo := &memoResolver{next: s.aircraft, results: make(map[string]resolution)}

	idx, ok := colMap.IndexOf(registry.KeyAircraftType)
	if !ok {
		return memo
	}

	distinct := make(map[string]struct{})
	for _, row := range rows {
		if idx < len(row) {
			// Keyed the way the coercer cleans cells before resolving
			if v := coerce.CleanCell(row[idx]); v != "" {
				distinct[v] = struct{}{}
			}
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for raw := range distinct {
		g.Go(func() error {
			model, err := s.aircraft.Resolve(gctx, raw, fromImageSource)
			memo.mu.Lock()
			memo.results[raw] = resolution{model: model, err: err}
			memo.mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return memo
}

func (s *IngestionService) rowFailure(err error, row int) error {
	var fe *models.FlightLogError
	if errors.As(err, &fe) {
		s.metrics.BatchesFailedTotal.WithLabelValues(fe.Code).Inc()
		return fe.AtRow(row)
	}
	s.metrics.BatchesFailedTotal.WithLabelValues("internal").Inc()
	return fmt.Errorf("row %d: %w", row, err)
}
