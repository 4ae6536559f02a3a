package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config is the full configuration for a pipeline run. Environment-backed
// fields are filled by Load; the rest come from CLI flags.
type Config struct {
	Environment string

	ProjectName string
	InputDir    string
	OutputDir   string

	LLMProvider string
	Model       string
	Temperature float64

	OpenAIAPIKey string
	OpenAIOrgID  string
	GeminiAPIKey string

	FilePatterns []string
	ExcludeDirs  []string
	MaxFiles     int

	// Supplementary content sampling budget.
	SampleFileCount int
	SampleMaxBytes  int
	NumTutorials    int
	NumQuestions    int

	SkipEnhancement   bool
	SkipAnalysis      bool
	SkipSupplementary bool
	SkipProcessing    bool
	SkipUpload        bool

	// When set, uploaded files are added to this existing vector store
	// instead of creating a new one.
	VectorStoreID string

	// Zero means the hosted store's auto chunking.
	ChunkSizeTokens    int
	ChunkOverlapTokens int

	LogLevel string
	LogDir   string

	// Serve mode.
	HTTPPort     string
	HTTPSPort    string
	Domains      []string
	CertCacheDir string
}

var isTest bool

func init() {
	isTest = os.Getenv("GO_ENVIRONMENT") == "test"
	if !isTest {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}
}

func Load() Config {
	return Config{
		Environment:     getEnv("ENVIRONMENT", "development"),
		OutputDir:       getEnv("OUTPUT_DIR", "generated-docs"),
		LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
		Temperature:     getEnvAsFloat("LLM_TEMPERATURE", 0.3),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIOrgID:     getEnv("OPENAI_ORG_ID", ""),
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		SampleFileCount: getEnvAsInt("SAMPLE_FILE_COUNT", 10),
		SampleMaxBytes:  getEnvAsInt("SAMPLE_MAX_BYTES", 6000),
		NumTutorials:    getEnvAsInt("NUM_TUTORIALS", 5),
		NumQuestions:    getEnvAsInt("NUM_QUESTIONS", 10),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDir:          getEnv("LOG_DIR", "logs/codedoc"),
		HTTPPort:        getEnv("HTTP_PORT", "8086"),
		HTTPSPort:       getEnv("HTTPS_PORT", "443"),
		Domains:         []string{getEnv("DOMAIN", "example.com")},
		CertCacheDir:    getEnv("CERT_CACHE_DIR", "/etc/letsencrypt/live/example.com"),
	}
}

// APIKey returns the key for the configured provider.
func (c Config) APIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// SplitList parses a comma-separated flag value into trimmed entries.
func SplitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
