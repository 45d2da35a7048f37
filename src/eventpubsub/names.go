package eventpubsub

const (
	OrderCompletionEvent  = "OrderCompletionEvent"
	HedgeOrderPlacedEvent = "HedgeOrderPlacedEvent"
	PositionAddedEvent    = "PositionAddedEvent"
	PositionRemovedEvent  = "PositionRemovedEvent"
	Error                 = "DefaultError"
)
