package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/api"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/config"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/events/kafka"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/fraud"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/incentive"
	interfaces "github.com/sheikh-saqib/midas-transaction-engine/internal/interfaces"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/ledger"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/logging"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/simulation"
	"github.com/sheikh-saqib/midas-transaction-engine/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds everything built from config. close tears it down in reverse order.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	store     interfaces.AccountStore
	publisher *kafka.Publisher
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Environment: logging.Environment(cfg.Environment),
		Level:       cfg.LogLevel,
	})
	if err != nil {
		return nil, err
	}

	store, err := storage.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Sync()
		return nil, err
	}
	logger.Info("account store opened", zap.String("driver", cfg.DatabaseDriver))

	return &app{cfg: cfg, logger: logger, store: store}, nil
}

func (a *app) processor() *ledger.Processor {
	guard := fraud.NewGuard(a.cfg.FraudThreshold, a.logger.Named("fraud"))
	client := incentive.NewClient(incentive.Config{
		URL:     a.cfg.IncentiveURL,
		Timeout: a.cfg.IncentiveTimeout,
	}, a.logger.Named("incentive"))

	var opts []ledger.Option
	if a.cfg.OutcomeTopic != "" {
		a.publisher = kafka.NewPublisher(a.cfg.Brokers, a.cfg.OutcomeTopic)
		opts = append(opts, ledger.WithPublisher(a.publisher))
	}
	return ledger.NewProcessor(a.store, guard, client, a.logger.Named("processor"), opts...)
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("failed to close outcome publisher", zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Error("failed to close account store", zap.Error(err))
	}
	a.logger.Sync()
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func consumeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Process transfer events from the queue until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			p := a.processor()
			consumer := kafka.NewConsumer(kafka.ConsumerConfig{
				Brokers:     a.cfg.Brokers,
				Topic:       a.cfg.Topic,
				GroupID:     a.cfg.GroupID,
				PollTimeout: a.cfg.PollTimeout,
			}, a.logger.Named("consumer"))

			a.logger.Info("starting consumer",
				zap.Strings("brokers", a.cfg.Brokers),
				zap.String("topic", a.cfg.Topic),
				zap.String("group_id", a.cfg.GroupID),
				zap.String("fraud_threshold", a.cfg.FraudThreshold.String()),
			)

			runErr := consumer.Run(ctx, p.Process)
			if err := consumer.Close(); err != nil {
				a.logger.Error("failed to close consumer", zap.Error(err))
			}
			return runErr
		},
	}
}

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the read-only balance API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if a.cfg.Environment == string(logging.EnvironmentDevelopment) || a.cfg.Environment == string(logging.EnvironmentLocal) {
				gin.SetMode(gin.DebugMode)
			} else {
				gin.SetMode(gin.ReleaseMode)
			}

			return api.NewServer(a.cfg.HTTPAddr, a.store, a.logger.Named("api")).Run(ctx)
		},
	}
}

func simulateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Feed the demo messages through the processor without a queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			a, err := newApp(ctx, *configPath)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := simulation.Run(ctx, a.store, a.processor(), cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("simulation: %w", err)
			}
			return nil
		},
	}
}
