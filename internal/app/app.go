package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/orders/internal/health"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/bus"
	"github.com/vladislavdragonenkov/orders/internal/service/catalog"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/version"
)

// Run собирает сервис и блокируется до отмены контекста или фатальной ошибки.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.WithError(err).Warn("failed to close storage")
		}
	}()

	producer, err := kafka.NewProducer(cfg.KafkaBrokers)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.WithError(err).Warn("failed to close kafka producer")
		}
	}()

	orderMetrics := metrics.NewOrderMetrics()

	catalogClient, replyConsumer, err := buildCatalogClient(cfg, producer, orderMetrics, logger)
	if err != nil {
		return err
	}
	if replyConsumer != nil {
		if err := replyConsumer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start reply consumer: %w", err)
		}
		defer stopConsumer(replyConsumer.Stop, "reply consumer", logger)
	}

	events := kafka.NewEventPublisher(producer)
	orchestrator := orders.NewOrchestrator(deps.Repo, catalogClient, events, logger.WithField("layer", "orchestrator"))
	handler := bus.NewHandler(orchestrator, orderMetrics, logger.WithField("layer", "bus"))

	responder, err := kafka.NewResponder(cfg.KafkaBrokers, cfg.KafkaGroupID, kafka.TopicOrderRequests, producer, handler.HandleRequest)
	if err != nil {
		return fmt.Errorf("failed to create responder: %w", err)
	}
	if err := responder.Start(ctx); err != nil {
		return fmt.Errorf("failed to start responder: %w", err)
	}
	defer stopConsumer(responder.Stop, "responder", logger)

	healthHandler := healthcheck.NewHandler(version.String())
	if deps.Store != nil {
		store := deps.Store
		healthHandler.RegisterChecker("postgres", healthcheck.NewSimpleChecker("postgres", func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return store.Ping(pingCtx)
		}))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)
	defer shutdownHTTP(metricsSrv, logger)

	logger.WithFields(log.Fields{
		"topic": kafka.TopicOrderRequests,
		"group": cfg.KafkaGroupID,
	}).Info("сервис заказов принимает intents")

	<-ctx.Done()
	logger.Info("получен сигнал остановки, останавливаем сервис")
	return ctx.Err()
}

// buildCatalogClient собирает клиента каталога: заглушку для локальной
// разработки либо request/reply клиент поверх шины с собственным
// reply-consumer'ом. Consumer group reply-топика уникальна для инстанса,
// чтобы ответы не распределялись между инстансами сервиса.
func buildCatalogClient(cfg Config, producer *kafka.Producer, orderMetrics *metrics.OrderMetrics, logger *log.Entry) (domain.CatalogClient, *kafka.Consumer, error) {
	if cfg.CatalogMock {
		logger.Warn("catalog mock enabled, product prices are not real")
		return catalog.NewMockClient(demoProducts()...), nil, nil
	}

	dispatcher := kafka.NewReplyDispatcher()
	replyGroup := fmt.Sprintf("%s-replies-%s", cfg.KafkaGroupID, uuid.NewString())
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, replyGroup, []string{kafka.TopicCatalogReplies}, dispatcher.HandleMessage, true)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create reply consumer: %w", err)
	}

	client := catalog.NewBusClient(producer, dispatcher, kafka.TopicCatalogReplies, cfg.CatalogTimeout, orderMetrics, logger.WithField("layer", "catalog"))
	return client, consumer, nil
}

// demoProducts — набор товаров для запуска с ORDERS_CATALOG_MOCK=true.
func demoProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Teclado", Price: decimal.NewFromFloat(49.90)},
		{ID: 2, Name: "Mouse", Price: decimal.NewFromFloat(19.90)},
		{ID: 3, Name: "Monitor", Price: decimal.NewFromFloat(199.00)},
		{ID: 4, Name: "Audifonos", Price: decimal.NewFromFloat(29.50)},
	}
}

// startMetricsServer запускает HTTP-обработчик /metrics для Prometheus.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}

func stopConsumer(stop func() error, name string, logger *log.Entry) {
	if err := stop(); err != nil {
		logger.WithError(err).Warnf("failed to stop %s", name)
	}
}
