package domain

// KeyPrefix namespaces every key written to the optional cache backend.
const KeyPrefix = "vidsynth:"

// Pipeline defaults shared by the HTTP server, the CLI and the SDK.
const (
	DefaultChunkSize        = 1000
	DefaultChunkOverlap     = 100
	DefaultTopK             = 4
	DefaultRegistryCapacity = 5
)

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DistanceMetric      string
	DocumentInstruction string
	QueryInstruction    string
}

// DefaultVectorConfig returns the defaults used when the embedding section is left empty.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-004",
		Dimensions:     768,
		DistanceMetric: "cosine",
	}
}
