package ports

// Frontend is a serving transport for the prediction service (HTTP API or
// postfix content filter).
type Frontend interface {
	// Start starts serving requests
	Start() error

	// Stop stops the frontend and releases its listener
	Stop() error
}
