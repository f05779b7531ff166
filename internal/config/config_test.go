package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		Embedding:  EmbeddingConfig{APIKey: "emb-key"},
		Generation: GenerationConfig{APIKey: "gen-key"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Budget.Action = "invalid_action"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `embedding.budget.action must be "warn" or "reject", got "invalid_action"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Embedding.Budget.Action = action
			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 70000

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_Chunking(t *testing.T) {
	tests := []struct {
		name          string
		size, overlap int
		wantErr       bool
	}{
		{"ok", 1000, 100, false},
		{"zero overlap", 10, 0, false},
		{"negative size", -1, 0, true},
		{"negative overlap", 10, -1, true},
		{"overlap equals size", 10, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Chunking = ChunkingConfig{Size: tt.size, Overlap: tt.overlap}
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_Providers(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for openai provider without api key")
	}

	cfg.Embedding.Provider = ProviderHash
	if err := cfg.Validate(); err != nil {
		t.Errorf("hash provider needs no key: %v", err)
	}

	cfg.Embedding.Provider = "cohere"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown provider")
	}

	cfg = validConfig()
	cfg.Generation.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing generation api key")
	}
}

func TestValidate_Cache(t *testing.T) {
	cfg := validConfig()
	cfg.Cache.Driver = CacheValkey
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for valkey without addrs")
	}

	cfg.Cache.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Cache.Driver = "memcached"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5000 {
		t.Errorf("expected Port=5000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Chunking.Size != 1000 || cfg.Chunking.Overlap != 100 {
		t.Errorf("expected chunking 1000/100, got %d/%d", cfg.Chunking.Size, cfg.Chunking.Overlap)
	}
	if cfg.Retrieval.TopK != 4 {
		t.Errorf("expected TopK=4, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Registry.Capacity != 5 {
		t.Errorf("expected Capacity=5, got %d", cfg.Registry.Capacity)
	}
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("expected provider openai, got %q", cfg.Embedding.Provider)
	}
	if cfg.Embedding.BatchSize != 64 || cfg.Embedding.Concurrency != 4 {
		t.Errorf("expected batching 64/4, got %d/%d", cfg.Embedding.BatchSize, cfg.Embedding.Concurrency)
	}
	if cfg.Cache.Driver != CacheNone || cfg.Cache.Enabled() {
		t.Errorf("expected disabled cache, got %q", cfg.Cache.Driver)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080, ReadTimeoutSec: 5},
		Chunking:  ChunkingConfig{Size: 500, Overlap: 50},
		Retrieval: RetrievalConfig{TopK: 8},
		Registry:  RegistryConfig{Capacity: -1},
		Cache:     CacheConfig{Driver: CacheRedis},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 || cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if cfg.Chunking.Size != 500 || cfg.Chunking.Overlap != 50 {
		t.Errorf("chunking overridden: %+v", cfg.Chunking)
	}
	if cfg.Retrieval.TopK != 8 {
		t.Errorf("expected TopK=8, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Registry.Capacity != -1 {
		t.Errorf("expected unbounded capacity to stay -1, got %d", cfg.Registry.Capacity)
	}
	if !cfg.Cache.Enabled() {
		t.Error("expected redis cache to be enabled")
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("VIDSYNTH_TEST_KEY", "secret")

	data := []byte(`
http:
  port: ${VIDSYNTH_TEST_PORT:-7000}
embedding:
  provider: hash
generation:
  api_key: ${VIDSYNTH_TEST_KEY}
registry:
  capacity: 3
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 7000 {
		t.Errorf("expected default port 7000, got %d", cfg.HTTP.Port)
	}
	if cfg.Generation.APIKey != "secret" {
		t.Errorf("expected expanded key, got %q", cfg.Generation.APIKey)
	}
	if cfg.Registry.Capacity != 3 {
		t.Errorf("expected capacity 3, got %d", cfg.Registry.Capacity)
	}
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte("embedding:\n  provider: nope\n"))
	if err == nil || !strings.Contains(err.Error(), "invalid config") {
		t.Fatalf("expected invalid config error, got %v", err)
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "k")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Embedding.Provider == "" {
		t.Error("expected embedding provider")
	}
}
