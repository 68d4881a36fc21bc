package enums

// OutboxEventType names a domain event stored in outbox_events.
type OutboxEventType string

const (
	EventOrderPaid        OutboxEventType = "order.paid"
	EventOrderFlagged     OutboxEventType = "order.flagged"
	EventOrderStatusMoved OutboxEventType = "order.status_moved"
	EventOrderCancelled   OutboxEventType = "order.cancelled"
)

// OutboxAggregateType names the aggregate an event belongs to.
type OutboxAggregateType string

const (
	AggregateOrder OutboxAggregateType = "order"
)
