// mdexport converts Notion markdown export archives to training datasets
// from the command line.
package main

import (
	"archive/zip"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/notionconv/bundle"
	"github.com/hazyhaar/notionconv/mdconv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "convert":
		cmdConvert(os.Args[2:])
	case "labels":
		cmdLabels()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `mdexport — convert Notion markdown exports to training datasets

usage:
  mdexport convert <export.zip> [flags]
  mdexport labels

convert  Converts the archive and writes output.jsonl, output.csv,
         report.csv, and provenance.json.
labels   Prints the default label lists and heading levels.

convert flags:
  -out <dir>            output directory (default: <export>.out)
  -config <file>        YAML config file with conversion settings
  -video-labels <list>  comma-separated video labels
  -lesson-labels <list> comma-separated lesson labels
  -levels <list>        comma-separated heading levels (default: 2,3,4)
  -chunk <n>            chunk max length in characters
  -overlap <n>          chunk overlap in characters
  -no-chunk             emit one record per file
  -v                    debug logging
`)
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	outDir := fs.String("out", "", "output directory")
	configPath := fs.String("config", "", "YAML config file")
	videoLabels := fs.String("video-labels", "", "comma-separated video labels")
	lessonLabels := fs.String("lesson-labels", "", "comma-separated lesson labels")
	levels := fs.String("levels", "", "comma-separated heading levels")
	chunkMax := fs.Int("chunk", 0, "chunk max length")
	overlap := fs.Int("overlap", 0, "chunk overlap")
	noChunk := fs.Bool("no-chunk", false, "disable chunking")
	verbose := fs.Bool("v", false, "debug logging")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "convert requires an export zip path")
		os.Exit(1)
	}
	zipPath := fs.Arg(0)

	lvl := slog.LevelInfo
	if *verbose {
		lvl = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))

	cfg, err := buildConfig(*configPath, *videoLabels, *lessonLabels, *levels, *chunkMax, *overlap, *noChunk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	cfg.Logger = logger

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", zipPath, err)
		os.Exit(1)
	}
	defer zr.Close()

	ex, err := bundle.ReadExport(&zr.Reader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read export: %v\n", err)
		os.Exit(1)
	}
	for _, f := range ex.Flagged {
		logger.Warn("invalid utf-8 replaced", "file", f)
	}

	a, err := mdconv.NewAssembler(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	res := a.AssembleAll(ex.Files, ex.PageIDs)

	dir := *outDir
	if dir == "" {
		dir = strings.TrimSuffix(zipPath, filepath.Ext(zipPath)) + ".out"
	}
	if err := writeOutputs(dir, a.Config(), filepath.Base(zipPath), res); err != nil {
		fmt.Fprintf(os.Stderr, "write outputs: %v\n", err)
		os.Exit(1)
	}

	var okN, emptyN, errN int
	for _, row := range res.Report {
		switch row.Status {
		case mdconv.StatusOK:
			okN++
		case mdconv.StatusEmpty:
			emptyN++
		default:
			errN++
		}
	}
	fmt.Fprintf(os.Stderr, "done: run %s, %d files (%d ok, %d empty, %d error), %d records -> %s\n",
		res.RunID, len(res.Report), okN, emptyN, errN, len(res.Records), dir)
	if errN > 0 {
		os.Exit(2)
	}
}

func cmdLabels() {
	cfg := mdconv.DefaultConfig()
	fmt.Println("video labels:")
	for _, l := range cfg.VideoLabels {
		fmt.Printf("  %s\n", l)
	}
	fmt.Println("lesson labels:")
	for _, l := range cfg.LessonLabels {
		fmt.Printf("  %s\n", l)
	}
	levels := make([]string, len(cfg.HeadingLevels))
	for i, lvl := range cfg.HeadingLevels {
		levels[i] = strconv.Itoa(lvl)
	}
	fmt.Printf("heading levels: %s\n", strings.Join(levels, ","))
}

// buildConfig layers the config file under the command-line flags; flags win.
func buildConfig(configPath, videoLabels, lessonLabels, levels string, chunkMax, overlap int, noChunk bool) (mdconv.Config, error) {
	var cfg mdconv.Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", configPath, err)
		}
	}

	if videoLabels != "" {
		cfg.VideoLabels = splitList(videoLabels)
	}
	if lessonLabels != "" {
		cfg.LessonLabels = splitList(lessonLabels)
	}
	if levels != "" {
		cfg.HeadingLevels = nil
		for _, part := range splitList(levels) {
			lvl, err := strconv.Atoi(part)
			if err != nil {
				return cfg, fmt.Errorf("invalid heading level %q", part)
			}
			cfg.HeadingLevels = append(cfg.HeadingLevels, lvl)
		}
	}
	if chunkMax > 0 {
		cfg.ChunkMaxLen = chunkMax
	}
	if overlap > 0 {
		cfg.ChunkOverlap = overlap
	}
	if noChunk {
		cfg.NoChunk = true
	}
	return cfg, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeOutputs(dir string, cfg mdconv.Config, sourceName string, res *mdconv.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	writers := []struct {
		name  string
		write func(*os.File) error
	}{
		{"output.jsonl", func(f *os.File) error { return bundle.WriteJSONL(f, res.Records) }},
		{"output.csv", func(f *os.File) error { return bundle.WriteCSV(f, res.Records) }},
		{"report.csv", func(f *os.File) error { return bundle.WriteReport(f, res.Report) }},
	}
	for _, w := range writers {
		f, err := os.Create(filepath.Join(dir, w.name))
		if err != nil {
			return err
		}
		if err := w.write(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	prov := bundle.NewProvenance(cfg, sourceName, res)
	data, err := json.MarshalIndent(prov, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "provenance.json"), append(data, '\n'), 0o644)
}
