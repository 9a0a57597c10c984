package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AlShabiliBadia/Shorter-links/internal/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const statsRefreshTimeout = 30 * time.Second

// StatsJob publishes table totals as gauges. Totals are too expensive to compute per scrape,
// so a cron entry refreshes them.
type StatsJob struct {
	store  repository.Store
	logger *zap.Logger

	links  prometheus.Gauge
	users  prometheus.Gauge
	clicks prometheus.Gauge
}

func NewStatsJob(store repository.Store, reg prometheus.Registerer, logger *zap.Logger) (*StatsJob, error) {
	j := &StatsJob{
		store:  store,
		logger: logger,
		links: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_links_total",
			Help: "Number of stored links.",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_users_total",
			Help: "Number of registered accounts.",
		}),
		clicks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "shortlink_clicks_total",
			Help: "Sum of clicks over all links.",
		}),
	}

	for _, g := range []prometheus.Collector{j.links, j.users, j.clicks} {
		if err := reg.Register(g); err != nil {
			return nil, err
		}
	}
	return j, nil
}

// Refresh recomputes every gauge.
func (j *StatsJob) Refresh(ctx context.Context) error {
	links, clicks, err := j.store.Links().Totals(ctx)
	if err != nil {
		return fmt.Errorf("link totals: %w", err)
	}
	users, err := j.store.Users().Count(ctx)
	if err != nil {
		return fmt.Errorf("user count: %w", err)
	}

	j.links.Set(float64(links))
	j.clicks.Set(float64(clicks))
	j.users.Set(float64(users))

	j.logger.Debug("Stats refreshed",
		zap.Int64("links", links),
		zap.Int64("users", users),
		zap.Int64("clicks", clicks))
	return nil
}

// Schedule registers Refresh on c under the cron spec.
func (j *StatsJob) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), statsRefreshTimeout)
		defer cancel()

		if err := j.Refresh(ctx); err != nil {
			j.logger.Error("Failed to refresh stats", zap.Error(err))
		}
	})
}
