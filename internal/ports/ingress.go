package ports

// Ingress is an entry point that feeds images into the pipeline
type Ingress interface {
	// Start starts accepting work
	Start() error

	// Stop stops accepting work and releases resources
	Stop() error
}
