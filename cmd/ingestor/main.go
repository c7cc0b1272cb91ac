package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	natsadapter "github.com/camier/spots/internal/adapters/nats"
	"github.com/camier/spots/internal/adapters/postgres"
	"github.com/camier/spots/internal/core/domain"
	"github.com/camier/spots/internal/core/usecases"
	"github.com/camier/spots/internal/pkg/config"
	"github.com/camier/spots/internal/pkg/metrics"
)

// ---------------------------------------------------------------------------
// Manifest types
// ---------------------------------------------------------------------------

type Manifest struct {
	Source   string         `json:"source"`
	Datasets []DatasetEntry `json:"datasets"`
}

type DatasetEntry struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	Format     string `json:"format"` // "geojson" | "csv"
	Type       string `json:"type"`   // spot type: waterfall, lake, viewpoint...
	Department string `json:"department"`

	// GeoJSON mapping
	NameProperty string `json:"name_property,omitempty"`
	DescProperty string `json:"desc_property,omitempty"`

	// CSV mapping
	NameColumn string `json:"name_column,omitempty"`
	LatColumn  string `json:"lat_column,omitempty"`
	LonColumn  string `json:"lon_column,omitempty"`
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

func main() {
	cfg, err := config.Load("spots-ingestor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	// Broker is optional: ingestion still works without downstream digests.
	publisher, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Printf("nats unavailable, spots will not be announced: %v", err)
		publisher = nil
	} else {
		defer publisher.Close()
	}

	spotSvc := usecases.NewSpotService(postgres.NewSpotRepo(db), nil)

	// Load manifest
	manifestPath := "manifest.json"
	if len(os.Args) > 1 {
		manifestPath = os.Args[1]
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		log.Fatalf("read manifest: %v", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		log.Fatalf("parse manifest: %v", err)
	}

	log.Printf("Spots Ingestor: %d datasets from %s", len(manifest.Datasets), manifest.Source)

	// Filter datasets (optional CLI arg: slug list)
	slugFilter := map[string]bool{}
	if len(os.Args) > 2 {
		for _, s := range strings.Split(os.Args[2], ",") {
			slugFilter[strings.TrimSpace(s)] = true
		}
	}

	client := &http.Client{Timeout: 120 * time.Second}

	var wg sync.WaitGroup
	sem := make(chan struct{}, 4) // max 4 concurrent downloads

	for _, ds := range manifest.Datasets {
		if len(slugFilter) > 0 && !slugFilter[ds.Slug] {
			continue
		}

		wg.Add(1)
		go func(d DatasetEntry) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ingestDataset(ctx, spotSvc, publisher, client, d); err != nil {
				log.Printf("ERROR [%s]: %v", d.Slug, err)
			}
		}(ds)
	}

	wg.Wait()
	log.Println("ingestion complete")
}

// ---------------------------------------------------------------------------
// Per-dataset ingestion
// ---------------------------------------------------------------------------

func ingestDataset(ctx context.Context, spotSvc *usecases.SpotService, publisher *natsadapter.Publisher, client *http.Client, ds DatasetEntry) error {
	log.Printf("[%s] downloading %s from %s", ds.Slug, ds.Format, ds.URL)

	resp, err := client.Get(ds.URL)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d for %s", resp.StatusCode, ds.URL)
	}

	var spots []domain.Spot
	switch ds.Format {
	case "geojson":
		spots, err = parseGeoJSON(resp.Body, ds)
	case "csv":
		spots, err = parseCSV(resp.Body, ds)
	default:
		return fmt.Errorf("unknown format %q", ds.Format)
	}
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	count, errs := spotSvc.Import(ctx, spots)
	for _, e := range errs {
		log.Printf("[%s] skipped: %v", ds.Slug, e)
	}
	metrics.SpotsIngested.WithLabelValues(ds.Slug).Add(float64(count))

	// Announce fresh spots so the digest worker can precompute exposure.
	if publisher != nil {
		for i := range spots {
			if err := publisher.PublishSpotIngested(ctx, &spots[i]); err != nil {
				log.Printf("[%s] announce %s: %v", ds.Slug, spots[i].Slug, err)
			}
		}
	}

	log.Printf("[%s] imported %d/%d spots", ds.Slug, count, len(spots))
	return nil
}

// ---------------------------------------------------------------------------
// GeoJSON parsing
// ---------------------------------------------------------------------------

type geoJSONFeature struct {
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"` // [lon, lat]
	} `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type geoJSONCollection struct {
	Features []geoJSONFeature `json:"features"`
}

func parseGeoJSON(r io.Reader, ds DatasetEntry) ([]domain.Spot, error) {
	var fc geoJSONCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, err
	}

	nameProp := ds.NameProperty
	if nameProp == "" {
		nameProp = "nom"
	}

	var spots []domain.Spot
	for _, f := range fc.Features {
		if f.Geometry.Type != "Point" || len(f.Geometry.Coordinates) < 2 {
			continue
		}
		name, _ := f.Properties[nameProp].(string)
		if name == "" {
			continue
		}
		desc := ""
		if ds.DescProperty != "" {
			desc, _ = f.Properties[ds.DescProperty].(string)
		}
		spots = append(spots, domain.Spot{
			Slug:        domain.Slugify(ds.Slug + "-" + name),
			Name:        name,
			Type:        ds.Type,
			Location:    domain.GeoPoint{Lat: f.Geometry.Coordinates[1], Lon: f.Geometry.Coordinates[0]},
			Department:  ds.Department,
			Description: desc,
			Metadata:    f.Properties,
		})
	}
	return spots, nil
}

// ---------------------------------------------------------------------------
// CSV parsing
// ---------------------------------------------------------------------------

func parseCSV(r io.Reader, ds DatasetEntry) ([]domain.Spot, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := map[string]int{}
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}

	nameIdx, ok := col[strings.ToLower(ds.NameColumn)]
	if !ok {
		return nil, fmt.Errorf("name column %q not found", ds.NameColumn)
	}
	latIdx, ok := col[strings.ToLower(ds.LatColumn)]
	if !ok {
		return nil, fmt.Errorf("lat column %q not found", ds.LatColumn)
	}
	lonIdx, ok := col[strings.ToLower(ds.LonColumn)]
	if !ok {
		return nil, fmt.Errorf("lon column %q not found", ds.LonColumn)
	}

	var spots []domain.Spot
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		name := strings.TrimSpace(record[nameIdx])
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(record[latIdx]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(record[lonIdx]), 64)
		if name == "" || latErr != nil || lonErr != nil {
			continue
		}

		spots = append(spots, domain.Spot{
			Slug:       domain.Slugify(ds.Slug + "-" + name),
			Name:       name,
			Type:       ds.Type,
			Location:   domain.GeoPoint{Lat: lat, Lon: lon},
			Department: ds.Department,
		})
	}
	return spots, nil
}
