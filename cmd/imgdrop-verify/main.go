// Command imgdrop-verify checks the managed backend: database connectivity,
// the catalog tables and the storage bucket. With -migrate it applies the
// embedded migrations first.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/imgdrop/internal/config"
	"github.com/dmitrijs2005/imgdrop/internal/flagx"
	"github.com/dmitrijs2005/imgdrop/internal/logging"
	"github.com/dmitrijs2005/imgdrop/internal/repositories/repomanager"
	"github.com/dmitrijs2005/imgdrop/internal/storage"
	"github.com/dmitrijs2005/imgdrop/internal/verify"
)

func main() {

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	var migrate bool
	fs := flag.NewFlagSet("imgdrop-verify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&migrate, "migrate", false, "apply database migrations before checking")
	_ = fs.Parse(flagx.FilterArgs(os.Args[1:], []string{"-migrate"}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	log.Println("Checking imgdrop backend...")

	db, err := repomanager.OpenPostgres(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer db.Close()

	checker := &verify.Checker{
		DB:      db,
		Manager: repomanager.NewPostgresRepositoryManager(),
		Migrate: migrate,
	}

	if missing := cfg.MissingManaged(); len(missing) > 0 {
		log.Printf("object storage not configured (%v), skipping bucket check", missing)
	} else {
		store, err := storage.New(ctx, storage.Options{
			Driver:     cfg.StorageDriver,
			Endpoint:   cfg.BackendURL,
			AccessKey:  cfg.BackendKey,
			SecretKey:  cfg.BackendSecret,
			Region:     cfg.Region,
			Bucket:     cfg.Bucket,
			PublicBase: cfg.PublicBase(),
		}, logger)
		if err != nil {
			log.Fatalf("storage: %v", err)
		}
		if bc, ok := store.(storage.BucketChecker); ok {
			checker.Bucket = bc
		}
	}

	if !verify.Report(os.Stdout, checker.Run(ctx)) {
		os.Exit(1)
	}

}
