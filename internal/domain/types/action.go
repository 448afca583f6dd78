package types

const (
	ActionRabbitMQConnected       = "rabbitmq_connected"
	ActionRabbitConnectionClosed  = "rabbitmq_connection_closed"
	ActionRabbitConnectionClosing = "rabbitmq_connection_closing"
	ActionRabbitReconnected       = "rabbitmq_reconnection_success"

	ActionDatabaseTransactionFailed = "database_transaction_failed"

	ActionTokensMinted      = "tokens_minted"
	ActionTokensTransferred = "tokens_transferred"
	ActionLedgerEventFailed = "ledger_event_publish_failed"

	ActionRidePosted         = "ride_posted"
	ActionJoinRequested      = "ride_join_requested"
	ActionRiderAccepted      = "ride_rider_accepted"
	ActionDriverJoined       = "ride_driver_joined"
	ActionRideDeleted        = "ride_deleted"
	ActionNotificationFailed = "notification_delivery_failed"

	ActionRabbitPublishNotification  = "rabbitmq_publish_notification"
	ActionRabbitConsumeNotifications = "rabbitmq_consume_notifications"
	ActionKafkaPublishLedgerEvent    = "kafka_publish_ledger_event"

	ActionRewardChecked = "driver_reward_checked"
	ActionRewardGranted = "driver_reward_granted"

	ActionSnapshotSaved    = "snapshot_saved"
	ActionSnapshotRestored = "snapshot_restored"
	ActionSnapshotFailed   = "snapshot_failed"

	ActionTokenIssued = "auth_token_issued"
)
