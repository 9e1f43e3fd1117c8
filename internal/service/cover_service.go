// Package service contains the core business logic for the cover pipeline.
// CoverService sits between the HTTP layer and the rendering engine:
//
//	Layer 1: Cache — check SQLite index + filesystem artifact by spec digest
//	Layer 2: Render — run the engine and persist the result for next time
//
// Identical requests hash to the same digest, so a cover is rendered once
// and served from disk afterwards.
package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/cover"
	"github.com/bookforge/cover-service/internal/model"
	"github.com/bookforge/cover-service/internal/storage"
)

// CoverService is the main entry point for cover generation and retrieval.
type CoverService struct {
	repo       storage.CoverRepository
	fs         *storage.FileSystem
	engine     *cover.Engine
	normalizer Normalizer // nil: sources pass to the engine untouched
	logger     *zap.Logger
}

// NewCoverService creates a service with the cache and engine wired up.
// normalizer can be nil when libvips is unavailable; the engine still
// decodes the common raster formats on its own.
func NewCoverService(
	repo storage.CoverRepository,
	fs *storage.FileSystem,
	engine *cover.Engine,
	normalizer Normalizer,
	logger *zap.Logger,
) *CoverService {
	return &CoverService{
		repo:       repo,
		fs:         fs,
		engine:     engine,
		normalizer: normalizer,
		logger:     logger,
	}
}

// Generated bundles the cache record with the artifact bytes.
type Generated struct {
	Cover    *model.Cover
	Data     []byte
	Warnings []string
}

// Generate returns the artifact for a spec, rendering it on a cache miss.
func (s *CoverService) Generate(ctx context.Context, spec model.CoverSpec) (*Generated, error) {
	spec = s.normalizeSource(spec)
	digest := SpecDigest(spec)

	if hit := s.fromCache(ctx, digest); hit != nil {
		return hit, nil
	}

	s.logger.Info("cache miss, rendering cover",
		zap.String("digest", digest),
		zap.String("class", string(spec.Class)),
		zap.String("title", spec.Title),
	)

	return s.renderAndStore(ctx, digest, spec, func() (*cover.Result, error) {
		return s.engine.GenerateCover(spec)
	})
}

// Convert re-targets an existing cover document to another cover class.
// The source participates in the digest, so converting two different
// files with the same metadata yields two cache entries.
func (s *CoverService) Convert(ctx context.Context, source []byte, target model.CoverClass, spec model.CoverSpec) (*Generated, error) {
	spec.Class = target
	spec.Source = source
	spec = s.normalizeSource(spec)
	source = spec.Source
	digest := SpecDigest(spec)

	if hit := s.fromCache(ctx, digest); hit != nil {
		return hit, nil
	}

	s.logger.Info("cache miss, converting cover",
		zap.String("digest", digest),
		zap.String("target", string(target)),
		zap.Int("source_bytes", len(source)),
	)

	return s.renderAndStore(ctx, digest, spec, func() (*cover.Result, error) {
		return s.engine.ConvertCover(source, target, spec)
	})
}

// Download returns the record and artifact bytes for a previously
// generated cover.
func (s *CoverService) Download(ctx context.Context, digest string) (*model.Cover, []byte, error) {
	rec, err := s.repo.GetByDigest(ctx, digest)
	if err != nil {
		return nil, nil, err
	}
	if rec.Status != model.StatusReady {
		return nil, nil, fmt.Errorf("cover %s is %s", digest, rec.Status)
	}
	data, err := s.fs.Read(rec.Class, rec.Digest, rec.Format)
	if err != nil {
		return nil, nil, err
	}
	return rec, data, nil
}

// Stats summarizes the cache for the admin endpoint.
type Stats struct {
	Total   int64                      `json:"total"`
	Ready   int64                      `json:"ready"`
	Failed  int64                      `json:"failed"`
	ByClass map[model.CoverClass]int64 `json:"by_class"`
}

func (s *CoverService) Stats(ctx context.Context) (*Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting covers: %w", err)
	}
	ready, err := s.repo.CountByStatus(ctx, model.StatusReady)
	if err != nil {
		return nil, fmt.Errorf("counting ready covers: %w", err)
	}
	failed, err := s.repo.CountByStatus(ctx, model.StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("counting failed covers: %w", err)
	}

	stats := &Stats{Total: total, Ready: ready, Failed: failed, ByClass: map[model.CoverClass]int64{}}
	for _, class := range model.AllClasses {
		n, err := s.repo.CountByClass(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("counting %s covers: %w", class, err)
		}
		stats.ByClass[class] = n
	}
	return stats, nil
}

// Recent lists the newest cache entries for the admin endpoint.
func (s *CoverService) Recent(ctx context.Context, limit int) ([]model.Cover, error) {
	return s.repo.ListRecent(ctx, limit)
}

// SpecDigest is the cache key: a hash of the canonical spec JSON plus the
// raw source bytes (Source is excluded from the JSON encoding). Same spec,
// same digest; any field change or different source re-renders.
func SpecDigest(spec model.CoverSpec) string {
	payload, _ := json.Marshal(spec)
	h := sha256.New()
	h.Write(payload)
	if len(spec.Source) > 0 {
		h.Write(spec.Source)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// normalizeSource runs uploads through the normalizer so exotic raster
// formats become plain sRGB PNG before the engine sees them. PDFs skip
// normalization; the engine rasterizes those itself.
func (s *CoverService) normalizeSource(spec model.CoverSpec) model.CoverSpec {
	if s.normalizer == nil || len(spec.Source) == 0 || isPDF(spec.Source) {
		return spec
	}
	normalized, err := s.normalizer.Normalize(spec.Source)
	if err != nil {
		// The engine has its own decoders; let it try the original bytes.
		s.logger.Debug("source normalization failed, passing through",
			zap.Error(err),
		)
		return spec
	}
	spec.Source = normalized
	return spec
}

func (s *CoverService) fromCache(ctx context.Context, digest string) *Generated {
	rec, err := s.repo.GetByDigest(ctx, digest)
	if err != nil || rec.Status != model.StatusReady {
		return nil
	}
	data, err := s.fs.Read(rec.Class, rec.Digest, rec.Format)
	if err != nil {
		s.logger.Warn("cache index hit but artifact missing",
			zap.String("digest", digest),
			zap.Error(err),
		)
		return nil
	}
	var warnings []string
	if rec.Warning != nil && *rec.Warning != "" {
		warnings = strings.Split(*rec.Warning, "\n")
	}
	return &Generated{Cover: rec, Data: data, Warnings: warnings}
}

func (s *CoverService) renderAndStore(ctx context.Context, digest string, spec model.CoverSpec, render func() (*cover.Result, error)) (*Generated, error) {
	rec, err := s.ensureRecord(ctx, digest, spec)
	if err != nil {
		return nil, err
	}

	res, err := render()
	if err != nil {
		if ferr := s.repo.SetFailed(ctx, digest, err.Error()); ferr != nil {
			s.logger.Error("recording render failure",
				zap.String("digest", digest),
				zap.Error(ferr),
			)
		}
		return nil, err
	}

	if err := s.fs.Write(spec.Class, digest, res.Format, res.Data); err != nil {
		_ = s.repo.SetFailed(ctx, digest, err.Error())
		return nil, fmt.Errorf("storing artifact: %w", err)
	}

	warning := strings.Join(res.Warnings, "\n")
	if err := s.repo.SetReady(ctx, digest, res.Format, int64(len(res.Data)), warning); err != nil {
		return nil, fmt.Errorf("updating cache index: %w", err)
	}

	rec.Status = model.StatusReady
	rec.Format = res.Format
	rec.ByteSize = int64(len(res.Data))
	if warning != "" {
		rec.Warning = &warning
	}

	s.logger.Info("cover rendered",
		zap.String("digest", digest),
		zap.String("class", string(spec.Class)),
		zap.String("format", res.Format),
		zap.Int("bytes", len(res.Data)),
		zap.Int("warnings", len(res.Warnings)),
	)

	return &Generated{Cover: rec, Data: res.Data, Warnings: res.Warnings}, nil
}

// ensureRecord creates the pending cache row, reusing a prior failed row
// so retries work.
func (s *CoverService) ensureRecord(ctx context.Context, digest string, spec model.CoverSpec) (*model.Cover, error) {
	existing, err := s.repo.GetByDigest(ctx, digest)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("checking cache index: %w", err)
	}

	rec := &model.Cover{
		Digest: digest,
		Class:  spec.Class,
		Title:  spec.Title,
		Author: spec.Author,
		Status: model.StatusPending,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating cache record: %w", err)
	}
	return rec, nil
}
