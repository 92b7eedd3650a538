package publisher

// Publisher represents a service announcing newly persisted deck records
type Publisher interface {
	// Publish publishes a record to the league's stream
	Publish(league string, record []byte) error

	// TrimStreams trims all streams to the configured maximum length
	TrimStreams() error

	// Close closes the publisher connection
	Close() error
}
