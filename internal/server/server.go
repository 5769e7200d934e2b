package server

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/openpeerlabs/escrow-backend/internal/chain"
	"github.com/openpeerlabs/escrow-backend/internal/deadline"
	"github.com/openpeerlabs/escrow-backend/internal/escrowmonitor"
	"github.com/openpeerlabs/escrow-backend/internal/evmrpc"
	"github.com/openpeerlabs/escrow-backend/internal/listener"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/networkregistry"
	"github.com/openpeerlabs/escrow-backend/internal/reconciler"
	"github.com/openpeerlabs/escrow-backend/internal/solanarpc"
	"github.com/openpeerlabs/escrow-backend/internal/store"
	pgstore "github.com/openpeerlabs/escrow-backend/internal/store/postgres"
	"github.com/openpeerlabs/escrow-backend/internal/transport/http"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := pgstore.New(appConfig, logger)
	s := store.New()

	registry := networkregistry.New(db, s.Network, logger)
	rec := reconciler.New(db, s, registry, logger)

	sourceFactory := func(network model.Network) (listener.EventSource, error) {
		return newEventSource(network, appConfig, logger)
	}
	supervisor := listener.NewSupervisor(registry, rec, sourceFactory, appConfig.Listener, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := supervisor.StartAll(ctx); err != nil {
		logger.Error("[Init] failed to start event listeners", map[string]string{
			"error": err.Error(),
		})
	}
	defer supervisor.StopAll()

	enforcer := deadline.New(db, s, appConfig, logger)
	monitor := escrowmonitor.New(db, s, registry, func(network model.Network) (escrowmonitor.ChainClient, error) {
		return sourceClient(network, appConfig, logger)
	}, appConfig, logger)

	// A monitor pass waits on chain confirmations and can outlast its
	// schedule; triggers that would overlap a running pass are skipped.
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.AddFunc(appConfig.Escrow.DeadlineCronSchedule, func() {
		enforcer.Sweep(ctx)
	})
	if appConfig.Escrow.MonitorEnabled {
		c.AddFunc(appConfig.Escrow.MonitorCronSchedule, func() {
			monitor.Run(ctx)
		})
	}
	c.Start()
	defer c.Stop()

	httpServer := http.NewHttpServer(appConfig, logger, db, s, registry, supervisor)
	httpServer.Run(":" + appConfig.ApiServer.Port)
}

// newEventSource builds the per-network listener source. A family neither
// client supports is a hard error, never a silent fallback.
func newEventSource(network model.Network, appConfig *config.AppConfig, logger *logger.Logger) (listener.EventSource, error) {
	switch network.Family {
	case model.NetworkFamilyEVM:
		return evmrpc.New(network, appConfig, logger)
	case model.NetworkFamilySolana:
		return solanarpc.New(network, appConfig, logger)
	default:
		return nil, errors.Wrapf(chain.ErrUnsupportedFamily, "network %s", network.Name)
	}
}

// sourceClient builds the monitor's chain client with the same per-family
// constructors the listener uses.
func sourceClient(network model.Network, appConfig *config.AppConfig, logger *logger.Logger) (escrowmonitor.ChainClient, error) {
	switch network.Family {
	case model.NetworkFamilyEVM:
		return evmrpc.New(network, appConfig, logger)
	case model.NetworkFamilySolana:
		return solanarpc.New(network, appConfig, logger)
	default:
		return nil, errors.Wrapf(chain.ErrUnsupportedFamily, "network %s", network.Name)
	}
}
