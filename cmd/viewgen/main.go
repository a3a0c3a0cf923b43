package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/unicef-drp/Ahead-of-the-Storm/cmd/viewgen/gen"
)

func main() {
	country := flag.String("country", "JAM", "ISO3 country code")
	storm := flag.String("storm", "BERYL", "Storm name")
	runs := flag.Int("runs", 3, "Number of forecast runs to generate (6h apart, newest ending now)")
	members := flag.Int("members", 52, "Ensemble members per run (member 51 is the control track)")
	zones := flag.Int("zones", 14, "Administrative zones")
	thresholds := flag.String("thresholds", "34,50,64", "Comma-separated wind thresholds")
	format := flag.String("format", "parquet", "Output format: parquet or csv")
	outDir := flag.String("out", "./views", "Output directory for view files")
	seed := flag.Int64("seed", 0, "Random seed (0 uses the current time)")
	flag.Parse()

	cfg := gen.Config{
		Country: *country,
		Storm:   strings.ToUpper(*storm),
		Runs:    *runs,
		Members: *members,
		Zones:   *zones,
		Format:  *format,
		Seed:    *seed,
		Now:     time.Now().UTC(),
	}
	var err error
	cfg.Thresholds, err = gen.ParseThresholds(*thresholds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid thresholds: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generating %d forecast runs for %s/%s (%d members, %d zones) to %s...\n",
		cfg.Runs, cfg.Country, cfg.Storm, cfg.Members, cfg.Zones, *outDir)

	if err := gen.Generate(cfg, *outDir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate views: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Done.")
}
