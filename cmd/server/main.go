package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mediboard/backend/internal/api"
	"github.com/mediboard/backend/internal/config"
	"github.com/mediboard/backend/internal/preview"
	"github.com/mediboard/backend/internal/profile"
	"github.com/mediboard/backend/internal/session"
	"github.com/mediboard/backend/internal/stats"
	"github.com/mediboard/backend/internal/storage"
	"github.com/mediboard/backend/internal/web"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Get the executable's directory for config resolution
	exePath, err := os.Executable()
	if err != nil {
		fmt.Printf("Failed to get executable path: %v\n", err)
		os.Exit(1)
	}
	exeDir := filepath.Dir(exePath)

	// Load XML configuration
	configPath := filepath.Join(exeDir, "MediBoard.exe.config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Printf("Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	// Check if running in embedded mode (frontend built into binary)
	embeddedMode := web.HasEmbeddedFiles()

	// Initialize storage
	fileStore, err := storage.NewLocalStore(cfg.GetUploadDir())
	if err != nil {
		fmt.Printf("Failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	// Initialize preview manager
	previews, err := preview.NewManager(cfg.GetPreviewDir(), fileStore)
	if err != nil {
		fmt.Printf("Failed to initialize preview manager: %v\n", err)
		os.Exit(1)
	}
	defer previews.Close()

	// Load constraint profiles (built-in presets plus site overrides)
	profiles := profile.NewRegistry()
	if err := profiles.LoadFile(cfg.Storage.ProfilesFile); err != nil {
		fmt.Printf("Warning: failed to load profiles file: %v\n", err)
	}

	// Initialize upload event statistics
	events, err := stats.NewEventStore(cfg.Storage.EventsDatabase)
	if err != nil {
		fmt.Printf("Warning: statistics disabled: %v\n", err)
		events = nil
	} else {
		defer events.Close()
	}

	// Initialize session manager. Files leaving a selection take their
	// stored content and previews with them.
	sessionMgr := session.NewManager(&api.FileReleaser{
		Store:    fileStore,
		Previews: previews,
	})

	// Start background session cleanup
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Pickers.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			sessionMgr.CleanupOldSessions(time.Duration(cfg.Pickers.SessionTimeoutMinutes) * time.Minute)
		}
	}()

	// Initialize API handlers
	handlers := api.NewHandlers(&api.Dependencies{
		Store:             fileStore,
		SessionMgr:        sessionMgr,
		Previews:          previews,
		Profiles:          profiles,
		Events:            events,
		DefaultProfile:    cfg.Pickers.DefaultProfile,
		AllowFileDeletion: cfg.Security.AllowFileDeletion,
		Version:           Version,
	})

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = api.ErrorHandler

	// Configure middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging if disabled in config
			if !cfg.Advanced.EnableRequestLogging {
				return true
			}
			path := c.Request().URL.Path
			return path == "/api/health" ||
				strings.HasPrefix(path, "/api/ws/")
		},
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize:         1024 * 4,
		DisablePrintStack: false,
		LogLevel:          0,
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasSuffix(path, "/files") ||
				strings.HasSuffix(path, "/content") ||
				strings.HasPrefix(path, "/api/ws/")
		},
		ErrorMessage: "Request timeout - operation took too long",
	}))

	// Compression middleware
	if cfg.Advanced.EnableCompression {
		e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
			Level: cfg.Advanced.CompressionLevel,
			Skipper: func(c echo.Context) bool {
				return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
			},
		}))
	}

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		if embeddedMode {
			// In embedded mode, use config settings
			origins := strings.Split(cfg.Server.AllowOrigins, ",")
			for i := range origins {
				origins[i] = strings.TrimSpace(origins[i])
			}
			if len(origins) == 0 || (len(origins) == 1 && origins[0] == "") {
				origins = []string{"*"}
			}
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: origins,
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			}))
		} else {
			// Development mode - only allow localhost
			e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
				AllowOrigins: []string{
					"http://localhost:5173", "http://127.0.0.1:5173",
					"http://localhost:3000", "http://127.0.0.1:3000",
				},
				AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
				AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
			}))
		}
	}

	// API routes
	api.RegisterRoutes(e, handlers, cfg.Security.AllowFileDeletion)

	// Register embedded frontend if available
	if embeddedMode {
		if err := web.RegisterStaticRoutes(e); err != nil {
			fmt.Printf("Warning: failed to register static routes: %v\n", err)
		} else {
			fmt.Println("Serving embedded frontend from binary")
		}
	}

	// Configure server with settings from XML config
	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Print startup banner
	mode := "Development"
	if embeddedMode {
		mode = "Air-Gapped (Embedded)"
	}
	statsState := "enabled"
	if events == nil {
		statsState = "disabled"
	}

	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           MediBoard Upload Server                         ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("║  Mode:       %-45s║\n", mode)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configPath)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Data Dir:  %-46s║\n", cfg.GetDataDir())
	fmt.Printf("║  Stats:     %-46s║\n", statsState)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	if embeddedMode {
		fmt.Printf("Open http://localhost:%d in your browser\n\n", cfg.Server.Port)
	}

	e.Logger.Fatal(e.StartServer(s))
}
