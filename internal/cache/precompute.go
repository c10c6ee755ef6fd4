package cache

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Projeto-Cientista-Chefe-Terra/terraGeoDataMiniServer/internal/metrics"
)

// Source is the live query layer the precomputer reads from. The serving
// service satisfies it.
type Source interface {
	Regions(ctx context.Context) ([]string, error)
	Municipalities(ctx context.Context, region string) ([]string, error)
	RegionCollection(ctx context.Context, region string) ([]byte, error)
	MunicipalityCollection(ctx context.Context, municipality string) ([]byte, error)
}

// Precomputer rebuilds every artifact and the memo from the live source.
// One failing entity is logged and counted but never aborts the pass; the
// stale artifact for that entity keeps serving.
type Precomputer struct {
	src   Source
	store *ArtifactStore
	memo  *Memo
	log   *slog.Logger
}

func NewPrecomputer(src Source, store *ArtifactStore, memo *Memo, log *slog.Logger) *Precomputer {
	return &Precomputer{src: src, store: store, memo: memo, log: log}
}

// Run executes one full precompute pass. Only a failure to enumerate the
// entities is a hard error; per-entity build failures degrade to logs.
func (p *Precomputer) Run(ctx context.Context) error {
	regions, err := p.src.Regions(ctx)
	if err != nil {
		return err
	}

	var munis []string
	for _, region := range regions {
		rm, err := p.src.Municipalities(ctx, region)
		if err != nil {
			return err
		}
		p.memo.SetMunicipalities(region, rm)
		munis = append(munis, rm...)
	}
	p.memo.SetRegions(regions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, region := range regions {
		region := region
		g.Go(func() error {
			p.build(gctx, KindRegion, region, p.src.RegionCollection)
			return nil
		})
	}
	for _, muni := range munis {
		muni := muni
		g.Go(func() error {
			p.build(gctx, KindMunicipality, muni, p.src.MunicipalityCollection)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	p.log.Info("precompute pass finished", "regions", len(regions), "municipalities", len(munis))
	return nil
}

func (p *Precomputer) build(ctx context.Context, kind, name string, fetch func(context.Context, string) ([]byte, error)) {
	payload, err := fetch(ctx, name)
	if err != nil {
		metrics.PrecomputeFailures.Inc()
		p.log.Error("artifact build failed", "kind", kind, "name", name, "error", err)
		return
	}
	if err := p.store.Write(kind, name, payload); err != nil {
		metrics.PrecomputeFailures.Inc()
		p.log.Error("artifact write failed", "kind", kind, "name", name, "error", err)
	}
}
