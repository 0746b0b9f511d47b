package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/scheduler"
	"github.com/skydial/skydial/internal/weather"
)

// ForecastService returns forecasts for a point. weather.Service satisfies
// it, and a cached fetch keeps the API warm.
type ForecastService interface {
	GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// SunPublisher receives the computed dial per location.
type SunPublisher interface {
	PublishSun(ctx context.Context, location string, dial dashboard.SunDial) error
}

// ErrNoForecastService is returned by Check when the job has no forecast
// service.
var ErrNoForecastService = errors.New("no forecast service configured")

// RefreshJob warms forecasts and publishes sun state for a set of locations.
type RefreshJob struct {
	config    RefreshConfig
	logger    zerolog.Logger
	forecasts ForecastService
	builder   *dashboard.Builder
	publisher SunPublisher

	metrics *RefreshMetrics
}

// RefreshMetrics tracks refresh job statistics.
type RefreshMetrics struct {
	mu sync.RWMutex

	// Counters
	TotalRefreshes    int64
	SuccessfulRefresh int64
	FailedRefreshes   int64
	ForecastsFetched  int64
	SunPublished      int64
	PublishFailures   int64

	// Timings
	LastRefreshAt       time.Time
	LastRefreshDuration time.Duration
	TotalDuration       time.Duration

	// NightLocations is how many locations were in night on the last run.
	NightLocations int
}

// RefreshJobConfig holds configuration for creating a RefreshJob.
type RefreshJobConfig struct {
	Config    RefreshConfig
	Logger    zerolog.Logger
	Forecasts ForecastService

	// Builder renders the dial. Nil uses the system clock.
	Builder *dashboard.Builder

	// Publisher is optional. Without one the job only warms forecasts.
	Publisher SunPublisher
}

// NewRefreshJob creates a new refresh job processor.
func NewRefreshJob(cfg RefreshJobConfig) *RefreshJob {
	builder := cfg.Builder
	if builder == nil {
		builder = dashboard.NewBuilder(nil)
	}

	return &RefreshJob{
		config:    cfg.Config.withDefaults(),
		logger:    cfg.Logger,
		forecasts: cfg.Forecasts,
		builder:   builder,
		publisher: cfg.Publisher,
		metrics:   &RefreshMetrics{},
	}
}

// RefreshResult contains the result of a refresh operation.
type RefreshResult struct {
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalLocations int
	Successful     int
	Failed         int
	Night          int
	Errors         []RefreshError
}

// RefreshError represents an error during refresh.
type RefreshError struct {
	Stage    string
	Location string
	Error    string
}

// Refresh stages.
const (
	StageForecast = "forecast"
	StagePublish  = "publish"
)

// Run executes the refresh job for all configured locations.
func (j *RefreshJob) Run(ctx context.Context) *RefreshResult {
	startTime := time.Now()
	locations := j.config.Locations
	result := &RefreshResult{
		StartTime:      startTime,
		TotalLocations: len(locations),
	}

	j.logger.Info().
		Int("total_locations", result.TotalLocations).
		Int("concurrency", j.config.Concurrency).
		Msg("starting sun refresh job")

	locationsChan := make(chan Location, len(locations))
	resultsChan := make(chan locationResult, len(locations))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.refreshWorker(ctx, locationsChan, resultsChan)
		}()
	}

	for _, loc := range locations {
		locationsChan <- loc
	}
	close(locationsChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for lr := range resultsChan {
		if lr.success {
			result.Successful++
		} else {
			result.Failed++
		}
		if lr.night {
			result.Night++
		}
		result.Errors = append(result.Errors, lr.errors...)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("night", result.Night).
		Msg("sun refresh job completed")

	return result
}

type locationResult struct {
	success bool
	night   bool
	errors  []RefreshError
}

func (j *RefreshJob) refreshWorker(ctx context.Context, locations <-chan Location, results chan<- locationResult) {
	for loc := range locations {
		if ctx.Err() != nil {
			results <- locationResult{errors: []RefreshError{{Stage: StageForecast, Location: loc.Name, Error: ctx.Err().Error()}}}
			continue
		}
		results <- j.refreshLocation(ctx, loc)
	}
}

func (j *RefreshJob) refreshLocation(ctx context.Context, loc Location) locationResult {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	logger := j.logger.With().Str("location", loc.Name).Logger()

	if j.forecasts == nil {
		return locationResult{errors: []RefreshError{{Stage: StageForecast, Location: loc.Name, Error: ErrNoForecastService.Error()}}}
	}

	f, err := j.forecasts.GetForecast(ctx, loc.Lat, loc.Lon)
	if err != nil {
		logger.Warn().Err(err).Msg("forecast refresh failed")
		return locationResult{errors: []RefreshError{{Stage: StageForecast, Location: loc.Name, Error: err.Error()}}}
	}
	j.incr(&j.metrics.ForecastsFetched)

	dial := j.builder.Sun(f)
	result := locationResult{success: true, night: dial.IsNight}

	if j.publisher == nil || j.config.WarmOnly {
		return result
	}

	if err := j.publisher.PublishSun(ctx, loc.Name, dial); err != nil {
		// The forecast is warm; a failed publish does not fail the location.
		logger.Warn().Err(err).Msg("sun publish failed")
		j.incr(&j.metrics.PublishFailures)
		result.errors = append(result.errors, RefreshError{Stage: StagePublish, Location: loc.Name, Error: err.Error()})
		return result
	}
	j.incr(&j.metrics.SunPublished)

	logger.Debug().Bool("is_night", dial.IsNight).Msg("sun state published")
	return result
}

// Check fetches the first configured location without publishing, to
// verify provider connectivity.
func (j *RefreshJob) Check(ctx context.Context) error {
	if j.forecasts == nil {
		return ErrNoForecastService
	}

	loc := j.config.Locations[0]
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	_, err := j.forecasts.GetForecast(ctx, loc.Lat, loc.Lon)
	return err
}

// Schedule runs the job now and then every interval until ctx ends or the
// handle is stopped.
func (j *RefreshJob) Schedule(ctx context.Context, interval time.Duration) *scheduler.Handle {
	j.logger.Info().Dur("interval", interval).Msg("scheduling sun refresh")
	return scheduler.Every(ctx, interval, func(ctx context.Context) {
		j.Run(ctx)
	})
}

func (j *RefreshJob) incr(counter *int64) {
	j.metrics.mu.Lock()
	*counter++
	j.metrics.mu.Unlock()
}

func (j *RefreshJob) updateMetrics(result *RefreshResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRefreshes++
	j.metrics.SuccessfulRefresh += int64(result.Successful)
	j.metrics.FailedRefreshes += int64(result.Failed)
	j.metrics.LastRefreshAt = result.EndTime
	j.metrics.LastRefreshDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
	j.metrics.NightLocations = result.Night
}

// GetMetrics returns a copy of the current metrics.
func (j *RefreshJob) GetMetrics() RefreshMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RefreshMetrics{
		TotalRefreshes:      j.metrics.TotalRefreshes,
		SuccessfulRefresh:   j.metrics.SuccessfulRefresh,
		FailedRefreshes:     j.metrics.FailedRefreshes,
		ForecastsFetched:    j.metrics.ForecastsFetched,
		SunPublished:        j.metrics.SunPublished,
		PublishFailures:     j.metrics.PublishFailures,
		LastRefreshAt:       j.metrics.LastRefreshAt,
		LastRefreshDuration: j.metrics.LastRefreshDuration,
		TotalDuration:       j.metrics.TotalDuration,
		NightLocations:      j.metrics.NightLocations,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *RefreshJob) MetricsSnapshot() map[string]any {
	m := j.GetMetrics()
	return map[string]any{
		"total_refreshes":       m.TotalRefreshes,
		"successful_refreshes":  m.SuccessfulRefresh,
		"failed_refreshes":      m.FailedRefreshes,
		"forecasts_fetched":     m.ForecastsFetched,
		"sun_published":         m.SunPublished,
		"publish_failures":      m.PublishFailures,
		"night_locations":       m.NightLocations,
		"last_refresh_at":       m.LastRefreshAt,
		"last_refresh_duration": m.LastRefreshDuration.String(),
		"total_duration":        m.TotalDuration.String(),
	}
}
