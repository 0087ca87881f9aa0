package kafka

// Config names the brokers and the topic the engine publishes its event
// stream to. The service only produces; there is no consumer side.
type Config struct {
	Brokers    []string
	EventTopic string
}
