package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-order-reader/internal/extractor"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	DefaultCacheSize   = 64

	// DefaultExtractTimeout bounds the decoding of one PDF
	DefaultExtractTimeout = 2 * time.Minute

	// EnvPrefix prefixes every environment variable, e.g. MCP_ORDER_DIR
	EnvPrefix = "MCP_ORDER"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by Load when --version was passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the order reader server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directory order PDFs must live under
	Directory string

	// Extraction configuration
	MaxFileSize  int64 // Maximum PDF file size in bytes
	CacheSize    int   // Cached extraction results, 0 disables the cache
	KeywordsFile string
	// ExtractTimeout bounds one extraction, 0 disables the limit
	ExtractTimeout time.Duration

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:           ModeStdio, // stdio is what MCP clients launch
		Host:           DefaultHost,
		Port:           DefaultPort,
		Directory:      currentDir,
		MaxFileSize:    DefaultMaxFileSize,
		CacheSize:      DefaultCacheSize,
		ExtractTimeout: DefaultExtractTimeout,
		Version:        "1.0.0",
		ServerName:     "mcp-order-reader",
		LogLevel:       DefaultLogLevel,
	}
}

// LoadFromFlags parses the process command line and environment
func LoadFromFlags() (*Config, error) {
	return Load(pflag.CommandLine, os.Args[1:])
}

// Load parses args into fs and merges them with MCP_ORDER_* environment
// variables. Flags win over the environment, which wins over defaults.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setupViperEnvironment(v, cfg)
	defineFlags(fs, cfg)
	fs.Usage = usage(fs)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if version, _ := fs.GetBool("version"); version {
		return nil, ErrVersionRequested
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	populateConfig(v, cfg)

	if cfg.Directory != "" {
		if abs, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.Directory)
	v.SetDefault("log-level", cfg.LogLevel)
	v.SetDefault("max-file-size", cfg.MaxFileSize)
	v.SetDefault("cache-size", cfg.CacheSize)
	v.SetDefault("keywords-file", cfg.KeywordsFile)
	v.SetDefault("extract-timeout", cfg.ExtractTimeout)
}

func defineFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	fs.String("host", cfg.Host, "Server host address (server mode only)")
	fs.Int("port", cfg.Port, "Server port (server mode only)")
	fs.String("dir", cfg.Directory, "Directory containing order PDF files")
	fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("max-file-size", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	fs.Int("cache-size", cfg.CacheSize, "Number of extraction results to cache (0 disables)")
	fs.String("keywords-file", cfg.KeywordsFile, "YAML, JSON or TOML file overriding extraction keywords")
	fs.Duration("extract-timeout", cfg.ExtractTimeout, "Maximum time to decode one PDF (0 disables)")
	fs.BoolP("version", "v", false, "Print version and exit")
}

func usage(fs *pflag.FlagSet) func() {
	return func() {
		name := filepath.Base(os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", name)
		fmt.Fprintf(os.Stderr, "\nMCP Order Reader - extracts purchase orders from PDF order reports\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/orders                   # stdio mode\n", name)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/orders     # HTTP + SSE server\n", name)
		fmt.Fprintf(os.Stderr, "  %s --keywords-file=keywords.yaml           # custom vocabulary\n", name)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		for _, key := range []string{"mode", "host", "port", "dir", "log-level", "max-file-size", "cache-size", "keywords-file", "extract-timeout"} {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(strings.ReplaceAll(key, "-", "_")))
		}
	}
}

func populateConfig(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.Directory = v.GetString("dir")
	cfg.LogLevel = v.GetString("log-level")
	cfg.MaxFileSize = v.GetInt64("max-file-size")
	cfg.CacheSize = v.GetInt("cache-size")
	cfg.KeywordsFile = v.GetString("keywords-file")
	cfg.ExtractTimeout = v.GetDuration("extract-timeout")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// port only matters when listening
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Directory == "" {
		return errors.New("order directory cannot be empty")
	}

	if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create order directory %s: %w", c.Directory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access order directory %s: %w", c.Directory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}

	if c.ExtractTimeout < 0 {
		return errors.New("extract timeout cannot be negative")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.KeywordsFile != "" {
		if _, err := os.Stat(c.KeywordsFile); err != nil {
			return fmt.Errorf("cannot access keywords file %s: %w", c.KeywordsFile, err)
		}
	}
	return nil
}

// Keywords loads the configured keyword file, or returns nil when none is set
func (c *Config) Keywords() (*extractor.Keywords, error) {
	if c.KeywordsFile == "" {
		return nil, nil
	}
	return LoadKeywords(c.KeywordsFile)
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Directory: %s, LogLevel: %s, MaxFileSize: %d, CacheSize: %d}",
		c.Mode, c.Host, c.Port, c.Directory, c.LogLevel, c.MaxFileSize, c.CacheSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
