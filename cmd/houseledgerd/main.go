package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/houseofbtc/houseledger/config"
	"github.com/houseofbtc/houseledger/internal/core/application"
	"github.com/houseofbtc/houseledger/internal/core/domain"
	"github.com/houseofbtc/houseledger/internal/infrastructure/hdwallet"
	dbbadger "github.com/houseofbtc/houseledger/internal/infrastructure/storage/db/badger"
	"github.com/houseofbtc/houseledger/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/houseofbtc/houseledger/internal/interfaces/http"
	"github.com/houseofbtc/houseledger/pkg/stats"
	log "github.com/sirupsen/logrus"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	endpoint := config.GetString(config.ElectrumServerKey)
	if endpoint == "" {
		log.Fatalf("missing %s, cannot reach the chain", config.ElectrumServerKey)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(ctx, time.Duration(interval)*time.Second)
	}

	mnemonic, err := loadOrCreateMnemonic(config.GetDatadir(), config.GetMnemonic())
	if err != nil {
		log.WithError(err).Fatal("failed to load wallet seed")
	}

	userRepo, err := newUserRepository()
	if err != nil {
		log.WithError(err).Fatal("failed to open user db")
	}
	defer userRepo.Close()

	house, err := application.NewHeadOfTheHouse(application.HeadOfTheHouseOpts{
		MasterAccountOpts: application.MasterAccountOpts{
			Mnemonic: mnemonic,
			Network:  config.GetNetwork(),
			EngineFactory: hdwallet.NewFactory(
				uint32(config.GetInt(config.GapLimitKey)),
			),
			ChainConnector:  config.GetExplorer(),
			DefaultEndpoint: endpoint,
		},
		FeeRate: config.GetUint64(config.FeeRateKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create master account")
	}

	ledgerSvc, err := application.NewLedgerService(application.LedgerServiceOpts{
		House:            house,
		UserRepository:   userRepo,
		OperationTimeout: config.GetDuration(config.OperationTimeoutKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create ledger service")
	}

	if err := ledgerSvc.Restore(ctx); err != nil {
		log.WithError(err).Fatal("failed to restore user accounts")
	}
	if err := ledgerSvc.Connect(ctx, endpoint); err != nil {
		log.WithError(err).Fatal("failed to connect to electrum server")
	}
	log.WithFields(log.Fields{
		"network":  config.GetNetwork().Name,
		"endpoint": endpoint,
	}).Info("wallet synced")

	httpSvc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Address:   fmt.Sprintf(":%d", config.GetInt(config.HTTPListeningPortKey)),
		LedgerSvc: ledgerSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to create http interface")
	}
	if err := httpSvc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	defer httpSvc.Stop()

	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down daemon")
}

func newUserRepository() (domain.UserRepository, error) {
	if config.GetString(config.DBTypeKey) == config.DBInMemory {
		log.Warn("users are kept in memory and will be lost on shutdown")
		return inmemory.NewUserRepository(), nil
	}
	return dbbadger.NewUserRepository(config.GetDbDir(), nil)
}
