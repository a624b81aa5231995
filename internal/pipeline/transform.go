package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sakura-phenology-service/internal/domain"
	"github.com/couchcryptid/sakura-phenology-service/internal/phenology"
)

// BloomTransformer implements Transformer using the phenology engine with
// optional prefecture geocoding.
type BloomTransformer struct {
	engine   *phenology.Engine
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewTransformer creates a BloomTransformer. Pass a nil geocoder to disable
// prefecture resolution for submissions that do not carry a code.
func NewTransformer(engine *phenology.Engine, geocoder domain.Geocoder, logger *slog.Logger) *BloomTransformer {
	return &BloomTransformer{
		engine:   engine,
		geocoder: geocoder,
		logger:   logger,
	}
}

func (t *BloomTransformer) Transform(ctx context.Context, raw domain.RawEvent) (domain.BloomAssessment, error) {
	sub, err := domain.ParseRawEvent(raw)
	if err != nil {
		return domain.BloomAssessment{}, err
	}

	sub = domain.EnrichWithPrefecture(ctx, sub, t.geocoder, t.logger)

	return domain.AssessBloom(t.engine, sub), nil
}
