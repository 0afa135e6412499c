package generation

import "time"

// Config holds generation dispatcher configuration.
type Config struct {
	Temperature          float32
	DefaultArticleLength int
	MaxArticleLength     int
	BlogTitleMaxTokens   int
	// UploadDir holds uploads while they are inspected and forwarded.
	UploadDir       string
	MaxUploadBytes  int64
	SignedURLExpiry time.Duration
}

// DefaultConfig returns default generation configuration.
func DefaultConfig() *Config {
	return &Config{
		Temperature:          0.7,
		DefaultArticleLength: 800,
		MaxArticleLength:     4096,
		BlogTitleMaxTokens:   100,
		MaxUploadBytes:       10 << 20,
		SignedURLExpiry:      24 * time.Hour,
	}
}

// articleTokens maps the requested article length to an output token budget.
func (c *Config) articleTokens(length int) int32 {
	if length <= 0 {
		length = c.DefaultArticleLength
	}
	if c.MaxArticleLength > 0 && length > c.MaxArticleLength {
		length = c.MaxArticleLength
	}
	return int32(max(length, 1))
}
