package events

// Topic constants for cart lifecycle events.
const (
	TopicCreated         = "cart.created"
	TopicAdding          = "cart.adding"
	TopicAdded           = "cart.added"
	TopicUpdating        = "cart.updating"
	TopicUpdated         = "cart.updated"
	TopicQuantityUpdated = "cart.quantity_updated"
	TopicRemoving        = "cart.removing"
	TopicRemoved         = "cart.removed"
	TopicClearing        = "cart.clearing"
	TopicCleared         = "cart.cleared"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicCreated,
		TopicAdding,
		TopicAdded,
		TopicUpdating,
		TopicUpdated,
		TopicQuantityUpdated,
		TopicRemoving,
		TopicRemoved,
		TopicClearing,
		TopicCleared,
	}
}
