package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// StatisticsSink receives one named cumulative series per channel. It is
// called exactly three times per update, empty series included.
type StatisticsSink interface {
	AppendExternalSeries(meta SeriesMetadata, points []SeriesPoint) error
}

// CSVSink writes each series to its own file under Dir, named after the
// statistic ID.
type CSVSink struct {
	Dir string
}

func (s *CSVSink) AppendExternalSeries(meta SeriesMetadata, points []SeriesPoint) error {
	name := strings.ReplaceAll(meta.StatisticID, ":", "_") + ".csv"
	file, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{"Start", "Sum_" + meta.Unit}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range points {
		record := []string{
			p.Start.Format(time.RFC3339),
			strconv.FormatFloat(p.Sum, 'f', 4, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// InfluxSink appends series points to an InfluxDB v2 bucket.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
}

// NewInfluxSink initializes the InfluxDB client and verifies connectivity.
func NewInfluxSink(url, token, org, bucket string) (*InfluxSink, error) {
	client := influxdb2.NewClient(url, token)
	if _, err := client.Health(context.Background()); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to InfluxDB: %w", err)
	}

	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
	}, nil
}

func (s *InfluxSink) AppendExternalSeries(meta SeriesMetadata, points []SeriesPoint) error {
	for _, p := range points {
		point := write.NewPoint(
			"energy_statistics",
			map[string]string{
				"statistic_id": meta.StatisticID,
				"source":       meta.Source,
			},
			map[string]interface{}{
				"sum": p.Sum,
			},
			p.Start,
		)
		if err := s.writeAPI.WritePoint(context.Background(), point); err != nil {
			return fmt.Errorf("writing point for %s: %w", meta.StatisticID, err)
		}
	}
	return nil
}

// Close closes the InfluxDB client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
