package integrations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Vodeneev/exerciser/internal/pkg/metrics"
	"github.com/Vodeneev/exerciser/internal/pkg/models"
)

// Run executes fetch+normalize for one adapter and turns every failure, panics included,
// into an error result with no classes.
func Run[R any](ctx context.Context, info Info, src Source[R], date time.Time) models.ScrapeResult {
	logger := slog.With("brand", info.Brand, "integration", info.Type, "studio_id", info.StudioID)
	logger.Info("Starting integration run", "date", date.Format("2006-01-02"))

	start := time.Now()
	ctx, rec := withTierRecorder(ctx)

	classes, err := fetchAndNormalize(ctx, src, date)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	result := models.ScrapeResult{
		Brand:    info.Brand,
		Duration: time.Since(start),
	}
	if err != nil {
		result.Status = models.StatusError
		result.Message = err.Error()
		result.Classes = []models.FitnessClass{}
		result.Err = err
		logger.Error("Integration run failed", "duration", result.Duration, "error", err)
	} else {
		if classes == nil {
			classes = []models.FitnessClass{}
		}
		result.Status = models.StatusSuccess
		result.Classes = classes
		result.ClassCount = len(classes)
		result.Message = fmt.Sprintf("Successfully fetched %d classes", len(classes))
		result.Tier = rec.get()
		logger.Info("Integration run finished",
			"classes", result.ClassCount,
			"tier", result.Tier,
			"duration", result.Duration,
			"duration_sec", result.Duration.Seconds())
	}

	metrics.ObserveRun(info.Brand, string(result.Status), string(result.Tier), result.Duration, result.ClassCount)
	return result
}

func fetchAndNormalize[R any](ctx context.Context, src Source[R], date time.Time) (classes []models.FitnessClass, err error) {
	defer func() {
		if r := recover(); r != nil {
			classes = nil
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()

	raw, err := src.Fetch(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	classes, err = src.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	return classes, nil
}

type tierKey struct{}

type tierRecorder struct {
	mu   sync.Mutex
	tier models.DataTier
}

func (r *tierRecorder) get() models.DataTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tier
}

func withTierRecorder(ctx context.Context) (context.Context, *tierRecorder) {
	rec := &tierRecorder{}
	return context.WithValue(ctx, tierKey{}, rec), rec
}

// RecordTier notes which data tier the current run ended up using. The last call wins.
// Without a recorder in ctx it does nothing.
func RecordTier(ctx context.Context, tier models.DataTier) {
	rec, ok := ctx.Value(tierKey{}).(*tierRecorder)
	if !ok {
		return
	}
	rec.mu.Lock()
	rec.tier = tier
	rec.mu.Unlock()
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var pe *PanicError
	return errors.As(err, &pe)
}
