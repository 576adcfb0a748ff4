package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"
)

// Config contains configuration for the application.
type Config struct {
	Email          string
	Password       string
	Sink           string
	OutputDir      string
	InfluxURL      string
	InfluxOrg      string
	InfluxToken    string
	InfluxBucket   string
	CacheDirectory string
	Interval       time.Duration
}

// App manages application dependencies and logic.
type App struct {
	Config    *Config
	Meridian  *MeridianService
	Converter *Converter
	Sink      StatisticsSink
}

func NewApp(config *Config) *App {
	rt := http.DefaultTransport

	if config.CacheDirectory != "disable" {
		cacheDir := config.CacheDirectory
		if cacheDir == "" {
			cacheDir = os.TempDir()
		}
		if err := os.MkdirAll(cacheDir, 0755); err != nil {
			log.Fatalf("failed to create cache dir: %v", err)
		}

		rt = &CachingRoundTripper{
			UnderlyingTransport: http.DefaultTransport, CacheDir: path.Clean(cacheDir),
		}

		log.Printf("HTTP caching enabled in directory: %s", cacheDir)
	}

	converter, err := NewConverter()
	if err != nil {
		log.Fatalf("Failed to initialize converter: %v", err)
	}

	var sink StatisticsSink
	switch config.Sink {
	case "csv":
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			log.Fatalf("failed to create output dir: %v", err)
		}
		sink = &CSVSink{Dir: config.OutputDir}
	case "influx":
		influxSink, err := NewInfluxSink(config.InfluxURL, config.InfluxToken, config.InfluxOrg, config.InfluxBucket)
		if err != nil {
			log.Fatalf("Failed to initialize InfluxDB sink: %v", err)
		}
		sink = influxSink
	default:
		log.Fatalf("Unknown sink %q (want csv or influx)", config.Sink)
	}

	return &App{
		Config:    config,
		Meridian:  NewMeridianService(rt),
		Converter: converter,
		Sink:      sink,
	}
}

// Run performs one update, then keeps refreshing on the configured interval.
// Updates run back to back on the ticker, never concurrently, so two
// conversions can never race on the same statistic IDs.
func (app *App) Run() error {
	if err := app.update(); err != nil {
		return err
	}
	if app.Config.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(app.Config.Interval)
	defer ticker.Stop()
	for range ticker.C {
		if err := app.update(); err != nil {
			log.Printf("Update failed: %v", err)
		}
	}
	return nil
}

// update runs one full cycle: authenticate, fetch the consumption document,
// convert it, and hand each channel's series to the sink.
func (app *App) update() error {
	log.Println("Beginning usage update")

	token, err := app.Meridian.Authenticate(app.Config.Email, app.Config.Password)
	if err != nil {
		return fmt.Errorf("failed to authenticate with Meridian: %w", err)
	}

	document, err := app.Meridian.FetchConsumptionCsv(token)
	if err != nil {
		return fmt.Errorf("failed to fetch consumption data: %w", err)
	}

	result, err := app.Converter.Convert(document)
	if err != nil {
		return fmt.Errorf("failed to convert consumption data: %w", err)
	}

	for _, series := range result.Series() {
		meta := series.Channel.Metadata()
		if err := app.Sink.AppendExternalSeries(meta, series.Points); err != nil {
			return fmt.Errorf("failed to append %s statistics: %w", meta.StatisticID, err)
		}
		log.Printf("Appended %d points to %s", len(series.Points), meta.StatisticID)
	}

	if result.Truncated {
		log.Println("Document ended early on a short row; emitted the rows accumulated before it")
	}
	if result.RowsSkipped > 0 {
		log.Printf("Skipped %d unparseable rows", result.RowsSkipped)
	}

	return nil
}
