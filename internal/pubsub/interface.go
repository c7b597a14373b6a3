package pubsub

// PubSubClient publishes outbound payloads for the webhook dispatcher
// and decodes inbound push messages. Delivery retries and backoff are
// the dispatcher's responsibility; the core only guarantees it never
// re-publishes a payload for an already-processed fingerprint.
type PubSubClient interface {
	SendMessage(topic string, data any) error
	ProcessMessage(data []byte, returnValue any) error
}
