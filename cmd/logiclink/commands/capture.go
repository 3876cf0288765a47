package commands

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/logiclink/logiclink/internal/logger"
	"github.com/logiclink/logiclink/pkg/acquisition"
	"github.com/logiclink/logiclink/pkg/api"
	"github.com/logiclink/logiclink/pkg/backend"
	"github.com/logiclink/logiclink/pkg/bufpool"
	"github.com/logiclink/logiclink/pkg/config"
	"github.com/logiclink/logiclink/pkg/frontend"
	"github.com/logiclink/logiclink/pkg/metrics"
	metricsprom "github.com/logiclink/logiclink/pkg/metrics/prometheus"
	"github.com/logiclink/logiclink/pkg/source/demo"
)

// capture wires the demo source, one session and the sample store.
type capture struct {
	backend  *backend.Backend
	frontend *frontend.Frontend
	group    int
	session  *acquisition.Session
	source   *demo.Source
	registry *prometheus.Registry
}

func newCapture(cfg *config.Config) (*capture, error) {
	arrCfg, err := cfg.BlockArrayConfig()
	if err != nil {
		return nil, err
	}

	c := &capture{backend: backend.New()}
	c.group, err = c.backend.AddGroup(arrCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create sample group: %w", err)
	}

	var opts []acquisition.Option
	if cfg.Metrics.Enabled {
		c.registry = metrics.InitRegistry()
		opts = append(opts, acquisition.WithMetrics(metricsprom.NewAcquisitionMetrics(c.registry)))
		if err := metricsprom.RegisterBufferPool(c.registry, bufpool.GlobalStats); err != nil {
			return nil, fmt.Errorf("failed to register buffer pool metrics: %w", err)
		}
	}

	c.session, err = acquisition.New(cfg.SessionConfig(c.group), c.backend, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	c.source, err = demo.New(cfg.DemoConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create demo source: %w", err)
	}
	c.frontend, err = frontend.New(c.backend)
	if err != nil {
		return nil, err
	}

	logger.Info("Capture configured",
		logger.SessionID(c.session.ID()),
		logger.Group(c.group),
		logger.Channels(arrCfg.ChannelsNumber),
		"levels", arrCfg.Levels,
		"block_size", arrCfg.BlockSizeB)
	return c, nil
}

// deps exposes the capture to the status server.
func (c *capture) deps() api.Deps {
	d := api.Deps{Store: c.backend, Sampler: c.frontend, Session: c.session}
	if c.registry != nil {
		d.Gatherer = c.registry
	}
	return d
}

// run streams until the source is exhausted, the session fails or ctx is
// cancelled.
func (c *capture) run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.source.Run(gctx, c.session.Queue()) })
	g.Go(func() error { return c.session.Run(gctx) })
	return g.Wait()
}

func (c *capture) close() {
	c.frontend.Close()
}
