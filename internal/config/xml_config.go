// Package config provides XML-based configuration management for air-gapped
// deployment of the MediBoard backend.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"MediBoard"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Storage configuration
	Storage StorageConfig `xml:"Storage"`

	// Picker session configuration
	Pickers PickerConfig `xml:"Pickers"`

	// Security configuration
	Security SecurityConfig `xml:"Security"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port" validate:"gt=0,lte=65535"`
	BindAddress  string `xml:"BindAddress" validate:"required"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds" validate:"gt=0"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds" validate:"gt=0"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds" validate:"gt=0"`
	BodyLimit    string `xml:"BodyLimit" validate:"required"`
}

// StorageConfig contains file storage settings
type StorageConfig struct {
	DataDirectory    string `xml:"DataDirectory" validate:"required"`
	UploadsDirectory string `xml:"UploadsDirectory" validate:"required"`
	PreviewDirectory string `xml:"PreviewDirectory" validate:"required"`
	EventsDatabase   string `xml:"EventsDatabase" validate:"required"`
	ProfilesFile     string `xml:"ProfilesFile"`
}

// PickerConfig contains picker session settings
type PickerConfig struct {
	DefaultProfile         string `xml:"DefaultProfile" validate:"required"`
	SessionTimeoutMinutes  int    `xml:"SessionTimeoutMinutes" validate:"gt=0"`
	CleanupIntervalMinutes int    `xml:"CleanupIntervalMinutes" validate:"gt=0"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	AllowFileDeletion bool `xml:"AllowFileDeletion"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	EnableRequestLogging bool `xml:"EnableRequestLogging"`
	EnableCompression    bool `xml:"EnableCompression"`
	CompressionLevel     int  `xml:"CompressionLevel" validate:"gte=0,lte=9"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8090,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
			BodyLimit:    "100M",
		},
		Storage: StorageConfig{
			DataDirectory:    "./data",
			UploadsDirectory: "./data/uploads",
			PreviewDirectory: "./data/previews",
			EventsDatabase:   "./data/events.duckdb",
			ProfilesFile:     "./data/profiles.yaml",
		},
		Pickers: PickerConfig{
			DefaultProfile:         "documents",
			SessionTimeoutMinutes:  30,
			CleanupIntervalMinutes: 5,
		},
		Security: SecurityConfig{
			AllowFileDeletion: true,
		},
		Advanced: AdvancedConfig{
			EnableRequestLogging: true,
			EnableCompression:    true,
			CompressionLevel:     5,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		config.resolvePaths(filepath.Dir(configPath))
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply environment variable overrides
	config.applyEnvironmentOverrides()

	// Fail fast on nonsense values rather than limping along
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Resolve relative paths
	config.resolvePaths(filepath.Dir(configPath))

	return config, nil
}

// Validate checks the configuration for invalid values.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- MediBoard Backend Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		c.Storage.DataDirectory = dataDir
	}
}

// resolvePaths converts relative paths to absolute based on config file location
func (c *AppConfig) resolvePaths(configDir string) {
	for _, p := range []*string{
		&c.Storage.DataDirectory,
		&c.Storage.UploadsDirectory,
		&c.Storage.PreviewDirectory,
		&c.Storage.EventsDatabase,
	} {
		if !filepath.IsAbs(*p) {
			*p = filepath.Join(configDir, *p)
		}
	}
	if c.Storage.ProfilesFile != "" && !filepath.IsAbs(c.Storage.ProfilesFile) {
		c.Storage.ProfilesFile = filepath.Join(configDir, c.Storage.ProfilesFile)
	}
}

// GetDataDir returns the absolute data directory path
func (c *AppConfig) GetDataDir() string {
	return c.Storage.DataDirectory
}

// GetUploadDir returns the absolute uploads directory path
func (c *AppConfig) GetUploadDir() string {
	return c.Storage.UploadsDirectory
}

// GetPreviewDir returns the absolute preview directory path
func (c *AppConfig) GetPreviewDir() string {
	return c.Storage.PreviewDirectory
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// EnsureDirectories creates all necessary directories
func (c *AppConfig) EnsureDirectories() error {
	dirs := []string{
		c.Storage.DataDirectory,
		c.Storage.UploadsDirectory,
		c.Storage.PreviewDirectory,
		filepath.Dir(c.Storage.EventsDatabase),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
