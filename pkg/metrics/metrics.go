package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Ledger metrics
	TokensMintedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_tokens_minted_total",
			Help: "Total number of tokens minted",
		},
	)

	TransfersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_transfers_total",
			Help: "Total number of token transfers",
		},
		[]string{"status"},
	)

	IssuedSupplyGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_issued_supply",
			Help: "Tokens issued so far",
		},
	)

	// Marketplace metrics
	OpenRidesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_open_rides",
			Help: "Current number of open rides",
		},
	)

	RideOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_ride_operations_total",
			Help: "Total number of ride operations by outcome",
		},
		[]string{"operation", "status"},
	)

	NotificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_notifications_total",
			Help: "Total number of notifications appended to the log",
		},
	)

	RewardsGrantedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rewards_tokens_granted_total",
			Help: "Total number of tokens granted as driver rewards",
		},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	SnapshotOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_operations_total",
			Help: "Total number of snapshot operations",
		},
		[]string{"backend", "operation", "status"},
	)

	SnapshotOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snapshot_operation_duration_seconds",
			Help:    "Snapshot operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"exchange", "status"},
	)

	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_published_total",
			Help: "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, code).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, code).Observe(duration.Seconds())
}

// RecordMint records a successful mint and the new issued supply
func RecordMint(amount, issued uint64) {
	TokensMintedTotal.Add(float64(amount))
	IssuedSupplyGauge.Set(float64(issued))
}

// RecordTransfer records a transfer attempt
func RecordTransfer(err error) {
	TransfersTotal.WithLabelValues(status(err)).Inc()
}

// RecordRideOperation records a marketplace operation outcome
func RecordRideOperation(operation string, err error) {
	RideOperationsTotal.WithLabelValues(operation, status(err)).Inc()
}

// RecordSnapshot records snapshot store metrics
func RecordSnapshot(backend, operation string, err error, duration time.Duration) {
	SnapshotOperationsTotal.WithLabelValues(backend, operation, status(err)).Inc()
	SnapshotOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(exchange string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(exchange, status(err)).Inc()
}

// RecordKafkaPublish records Kafka publish metrics
func RecordKafkaPublish(topic string, err error) {
	KafkaMessagesPublished.WithLabelValues(topic, status(err)).Inc()
}
