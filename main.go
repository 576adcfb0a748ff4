package main

import (
	"flag"
	"log"
	"os"
)

// envOrString returns the environment variable value if set, otherwise returns the default value.
func envOrString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func parseFlags() *Config {
	email := flag.String("email", envOrString("MERIDIAN_EMAIL", ""), "Meridian Energy account email")
	password := flag.String("password", envOrString("MERIDIAN_PASSWORD", ""), "Meridian Energy account password")
	sink := flag.String("sink", envOrString("STATS_SINK", "csv"), "Statistics sink ('csv' or 'influx')")
	outDir := flag.String("out", envOrString("OUTPUT_DIR", "statistics"), "Output directory for the CSV sink")
	influxURL := flag.String("influxURL", envOrString("INFLUXDB_URL", "http://localhost:8086"), "InfluxDB URL")
	influxOrg := flag.String("influxOrg", envOrString("INFLUXDB_ORG", ""), "InfluxDB organisation")
	influxToken := flag.String("influxToken", envOrString("INFLUXDB_TOKEN", ""), "InfluxDB API token")
	influxBucket := flag.String("influxBucket", envOrString("INFLUXDB_BUCKET", "energy"), "InfluxDB bucket")
	cacheDir := flag.String("cache", envOrString("CACHE_DIR", "disable"), "Directory for HTTP cache ('disable' to disable, empty for temporary directory)")
	interval := flag.Duration("interval", 0, "Refresh interval, e.g. 3h (0 runs a single update)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatalf("Required flags missing. Usage: %s -email=... -password=...", os.Args[0])
	}
	if *sink == "influx" && (*influxOrg == "" || *influxToken == "") {
		log.Fatalf("The influx sink requires -influxOrg and -influxToken")
	}

	return &Config{
		Email:          *email,
		Password:       *password,
		Sink:           *sink,
		OutputDir:      *outDir,
		InfluxURL:      *influxURL,
		InfluxOrg:      *influxOrg,
		InfluxToken:    *influxToken,
		InfluxBucket:   *influxBucket,
		CacheDirectory: *cacheDir,
		Interval:       *interval,
	}
}

func main() {
	config := parseFlags()
	app := NewApp(config)

	if err := app.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
