//
// SPDX-License-Identifier: GPL-3.0-or-later
//
// Copyright (C) 2025 The SigETL Authors
//
// This file is part of SigETL.
//
// SigETL is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SigETL is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SigETL. If not, see https://www.gnu.org/licenses/.

// sigetl runs a signal feature-extraction job described by a config file:
// rows are streamed from the input, featurized by the configured
// transformation and aggregation steps, and written to the output.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/sigetl/sigetl"
	"github.com/sigetl/sigetl/config"
	"github.com/sigetl/sigetl/filter"
	"github.com/sigetl/sigetl/readers"
	"github.com/sigetl/sigetl/writers"
)

const version = "0.3.0"

func main() {
	configPath := flag.String("config", "", "path to the job config file (.yaml, .toml, or .json)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("sigetl %s\n", version)
		return
	}
	if *configPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(*configPath); err != nil {
		log.Fatalf("sigetl: %v", err)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log.Printf("run %s: config %s", runID, configPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pipeline, err := sigetl.BuildPipeline(cfg.Transformations, cfg.Aggregations)
	if err != nil {
		return err
	}
	log.Printf("run %s: pipeline outputs %v", runID, pipeline.OutputNames())

	rate, err := cfg.Rate()
	if err != nil {
		return err
	}

	source, err := buildSource(ctx, cfg)
	if err != nil {
		return err
	}
	sink, err := buildSink(cfg, pipeline)
	if err != nil {
		source.Close()
		return err
	}

	runner, err := sigetl.NewRunner(pipeline).
		From(source).
		To(sink).
		Filter(filter.HasValues(cfg.Values())).
		WithValuesColumn(cfg.Values()).
		WithSamplingFrequency(rate).
		WithKeepValues(cfg.KeepValues).
		WithErrorStrategy(cfg.Strategy()).
		WithErrorHandler(sigetl.ErrorHandlerFunc(func(ctx context.Context, record sigetl.Record, err error) error {
			log.Printf("run %s: row error: %v", runID, err)
			return nil
		})).
		Build()
	if err != nil {
		return err
	}

	if err := runner.Execute(ctx); err != nil {
		return err
	}

	stats := runner.Stats()
	log.Printf("run %s: read %d, wrote %d, skipped %d", runID, stats.RowsRead, stats.RowsWritten, stats.RowsSkipped)
	return nil
}

func buildSource(ctx context.Context, cfg *config.Config) (sigetl.DataSource, error) {
	in := cfg.Input
	switch in.Type {
	case "csv":
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, err
		}
		return readers.NewCSVReader(f, readers.WithCSVValuesColumn(cfg.Values()))
	case "jsonl":
		f, err := os.Open(in.Path)
		if err != nil {
			return nil, err
		}
		return readers.NewJSONLReader(f), nil
	case "parquet":
		return readers.NewParquetReader(in.Path)
	case "postgres":
		return readers.NewPostgresReaderFromDSN(in.DSN, in.Query,
			readers.WithPostgresValuesColumn(cfg.Values()))
	case "s3":
		opts := []readers.S3ReaderOption{
			readers.WithS3Prefix(in.Prefix),
			readers.WithS3Suffix(in.Suffix),
			readers.WithS3ValuesColumn(cfg.Values()),
		}
		if in.Region != "" {
			opts = append(opts, readers.WithS3Region(in.Region))
		}
		return readers.NewS3Reader(ctx, in.Bucket, opts...)
	case "http":
		return readers.NewHTTPReader(ctx, nil, in.URL, cfg.Values())
	default:
		return nil, fmt.Errorf("unknown input type %q", in.Type)
	}
}

func buildSink(cfg *config.Config, pipeline *sigetl.FeaturePipeline) (sigetl.DataSink, error) {
	out := cfg.Output
	switch out.Type {
	case "csv":
		f, err := os.Create(out.Path)
		if err != nil {
			return nil, err
		}
		return writers.NewCSVWriter(f), nil
	case "jsonl":
		f, err := os.Create(out.Path)
		if err != nil {
			return nil, err
		}
		return writers.NewJSONLWriter(f), nil
	case "parquet":
		return writers.NewParquetWriter(out.Path)
	case "postgres":
		db, err := openPostgres(out.DSN)
		if err != nil {
			return nil, err
		}
		return writers.NewPostgresWriter(db, out.Table), nil
	default:
		return nil, fmt.Errorf("unknown output type %q", out.Type)
	}
}

// openPostgres opens a database handle. The pq driver is registered by the
// readers and writers packages.
func openPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}
