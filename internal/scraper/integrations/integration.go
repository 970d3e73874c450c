package integrations

import (
	"context"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

// IntegrationType tags how an adapter acquires data. Used for routing and telemetry only.
type IntegrationType string

const (
	TypeAPI                  IntegrationType = "api"
	TypeReverseEngineeredAPI IntegrationType = "reverse-engineered-api"
	TypeScraper              IntegrationType = "scraper"
)

// Info is the declarative identity of an adapter.
type Info struct {
	Name       string // registration slug, e.g. "club-pilates"
	Brand      string
	StudioID   string // primary location
	StudioName string
	Type       IntegrationType
}

// Source is the brand-specific half of an adapter.
//
// Fetch retrieves raw records for the schedule window starting at date. Ordinary upstream
// failures must be absorbed (usually by falling back to generated data); a returned error
// means the run failed.
//
// Normalize is pure and must not perform I/O.
type Source[R any] interface {
	Fetch(ctx context.Context, date time.Time) ([]R, error)
	Normalize(raw []R) ([]models.FitnessClass, error)
}

// Integration is what the orchestrator runs. Run never panics and never returns classes
// alongside an error status.
type Integration interface {
	Info() Info
	Run(ctx context.Context, date time.Time) models.ScrapeResult
}

// Adapter binds an identity to a Source.
type Adapter[R any] struct {
	info Info
	src  Source[R]
}

func NewAdapter[R any](info Info, src Source[R]) *Adapter[R] {
	return &Adapter[R]{info: info, src: src}
}

func (a *Adapter[R]) Info() Info { return a.info }

func (a *Adapter[R]) Run(ctx context.Context, date time.Time) models.ScrapeResult {
	return Run(ctx, a.info, a.src, date)
}

// Source exposes the wrapped source, mainly for tests.
func (a *Adapter[R]) Source() Source[R] { return a.src }

var _ Integration = (*Adapter[struct{}])(nil)
