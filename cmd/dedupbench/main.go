// Command dedupbench chunks and optionally hashes every file under a
// directory using a configurable content-defined chunking algorithm, writing
// one "<digest>,<size>" line per chunk and reporting chunking/hashing
// throughput. Its argv surface and output format are ported from
// dedup/src/driver.cpp's driver_function_stream.
package main

import (
	"fmt"
	"hash"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/uwasl/dedupbench/internal/chunking"
	"github.com/uwasl/dedupbench/internal/config"
	"github.com/uwasl/dedupbench/internal/hashing"
	"github.com/uwasl/dedupbench/internal/stream"
	"github.com/uwasl/dedupbench/internal/walk"
)

func usage() {
	fmt.Println("Usage: dedupbench <input_dir> <config_file_path> [t|f]")
	fmt.Println("\t<input_dir>: Path to the directory to run chunking and hashing on.")
	fmt.Println("\t<config_file_path>: Path to the config file.")
	fmt.Println("\t[t|f]: t or f indicating whether to only perform chunking. {f}")
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if lvl, err := zerolog.ParseLevel(os.Getenv("DEDUPBENCH_LOG_LEVEL")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if len(os.Args) < 3 || len(os.Args) > 4 {
		usage()
		os.Exit(1)
	}

	inputDir := os.Args[1]
	configPath := os.Args[2]
	onlyChunking := false
	if len(os.Args) == 4 {
		switch os.Args[3] {
		case "t":
			onlyChunking = true
		case "f":
			onlyChunking = false
		default:
			log.Fatal().Str("arg", os.Args[3]).Msg("must be either 't' or 'f'")
		}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	chunker, err := chunking.New(cfg.Chunking)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct chunking algorithm")
	}

	hasherInstance := mustHasher(cfg, onlyChunking)

	log.Info().Str("dir", inputDir).Str("algorithm", chunker.Name()).Msg("begin reading files")
	files, err := walk.Files(inputDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to walk input directory")
	}
	log.Info().Int("file_count", len(files)).Msg("done, begin chunking")

	out, err := os.Create(cfg.OutputFile)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.OutputFile).Msg("failed to open output file")
	}
	defer out.Close()

	driver := stream.NewDriver(chunker, hasherInstance)

	var totalChunks int
	var totalBytes int64
	var chunkingDuration, hashingDuration time.Duration

	for _, f := range files {
		log.Info().Str("file", f.Path).Msg("chunking file")
		in, err := os.Open(f.Path)
		if err != nil {
			log.Fatal().Err(err).Str("path", f.Path).Msg("failed to open input file")
		}

		stats, err := driver.Run(in, cfg.BufferSize, func(r stream.Record) {
			fmt.Fprintln(out, r.String())
		})
		in.Close()
		if err != nil {
			log.Fatal().Err(err).Str("path", f.Path).Msg("failed while chunking file")
		}

		totalChunks += stats.TotalChunks
		totalBytes += stats.TotalBytes
		chunkingDuration += stats.ChunkingDuration
		hashingDuration += stats.HashingDuration
	}

	log.Info().Msg("done")
	summary := stream.Stats{
		TotalChunks:      totalChunks,
		TotalBytes:       totalBytes,
		ChunkingDuration: chunkingDuration,
		HashingDuration:  hashingDuration,
	}

	log.Info().
		Int("total_chunks", summary.TotalChunks).
		Int64("total_bytes", summary.TotalBytes).
		Float64("chunking_mb_per_sec", summary.ChunkingThroughputMBps()).
		Float64("hashing_mb_per_sec", summary.HashingThroughputMBps()).
		Msg("run complete")
}

func mustHasher(cfg *config.Config, onlyChunking bool) hash.Hash {
	if onlyChunking {
		return nil
	}
	hasher, err := hashing.New(cfg.Hashing)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct hashing algorithm")
	}
	return hasher
}
