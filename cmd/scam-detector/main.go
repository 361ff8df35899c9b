package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/email-scam-classifier/internal/config"
	"github.com/mikey/email-scam-classifier/internal/core"
	"github.com/mikey/email-scam-classifier/internal/factory"
	"github.com/mikey/email-scam-classifier/internal/logging"
	"go.uber.org/zap"
)

var (
	// Artifact store flags
	storeType  = flag.String("store", "file", "Artifact store (file, sqlite, mysql)")
	modelPath  = flag.String("model", "models/scam_classifier.json", "Path to the artifact file")
	sqlitePath = flag.String("sqlite-path", "", "Path to the artifact SQLite database")
	mysqlDSN   = flag.String("mysql-dsn", "", "DSN of the artifact MySQL database")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.Bool("config", false, "Load configuration from file instead of flags")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Create the artifact store and prediction service
	storeFactory := factory.NewStoreFactory(cfg, logger)
	artifactStore, err := storeFactory.CreateArtifactStore()
	if err != nil {
		logger.Fatal("Failed to create artifact store", zap.Error(err))
	}
	service := core.NewPredictionService(artifactStore, logger)

	// Read email text from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	textBytes, err := io.ReadAll(emailReader)
	if err != nil {
		logger.Fatal("Failed to read email text", zap.Error(err))
	}
	text := string(textBytes)

	// Print input summary
	fmt.Printf("\n=== Email Summary ===\n")
	fmt.Printf("Text length: %d bytes\n", len(text))
	if *verbose {
		preview := text
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nText preview:\n%s\n", preview)
	}
	fmt.Printf("\n")

	// Classify
	fmt.Printf("=== Analysis ===\n")
	fmt.Printf("Artifact store: %s\n", cfg.GetModel().Store)

	startTime := time.Now()
	result, err := service.Predict(context.Background(), text)
	if err != nil {
		logger.Fatal("Failed to classify email", zap.Error(err))
	}
	duration := time.Since(startTime)

	loaded, modelType := service.ModelInfo(context.Background())
	if !loaded {
		modelType = "none (keyword fallback)"
	}

	// Print results
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Prediction: %s\n", result.Label)
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Model used: %s\n", result.ModelUsed)
	fmt.Printf("Model loaded: %t (%s)\n", loaded, modelType)
	fmt.Printf("Processing time: %v\n", duration)
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("model.store", *storeType)
	v.Set("model.path", *modelPath)
	if *sqlitePath != "" {
		v.Set("model.sqlite_path", *sqlitePath)
	}
	if *mysqlDSN != "" {
		v.Set("model.mysql_dsn", *mysqlDSN)
	}

	return config.NewFromViper(v)
}
