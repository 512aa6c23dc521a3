package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"storefront-api/internal/config"
	"storefront-api/internal/db"
	"storefront-api/internal/importer"
	catalogrepo "storefront-api/internal/repository/catalog"
	inventoryrepo "storefront-api/internal/repository/inventory"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to catalog CSV export")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		log.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatalf("open file: %v", err)
	}
	defer f.Close()

	discard := log.New(io.Discard, "", 0)
	imp := importer.NewCSVImporter(f, catalogrepo.NewPostgres(pool, discard), inventoryrepo.NewPostgres(pool))

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d variants in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
