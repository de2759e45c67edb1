// Command tagcollate reads every tag block a file carries — possibly
// several, possibly of different formats — and prints the values
// collate.Collator resolves for each logical field. It never writes
// tags; it exists to show what a file's metadata collates to.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	"go.senan.xyz/flagconf"
	"go.senan.xyz/table/table"

	"go.senan.xyz/tagcollate"
	"go.senan.xyz/tagcollate/cmd/internal/flagcommon"
	"go.senan.xyz/tagcollate/collate"
	"go.senan.xyz/tagcollate/fileutil"
	"go.senan.xyz/tagcollate/metadata"

	"go.senan.xyz/natcmp"
)

var userConfig, _ = os.UserConfigDir()

var defaultConfigPath = filepath.Join(userConfig, tagcollate.Name, "config")

// setupLogging wires a -log-level flag to a slog.TextHandler on stderr
// and returns an exit func that reports exit code 1 if anything was
// logged at error level. Per-file read failures are printed with that
// file's result rather than logged, so they do not change the exit
// status.
func setupLogging() (exit func()) {
	var logLevel slog.LevelVar
	flag.TextVar(&logLevel, "log-level", &logLevel, "Set the logging level")

	h := &errorTrackingHandler{
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: &logLevel}),
	}

	slog.SetDefault(slog.New(h))
	log.SetFlags(0)
	log.SetOutput(logAsError{h: h})

	return func() {
		if h.hadError.Load() {
			os.Exit(1)
		}
		os.Exit(0)
	}
}

type errorTrackingHandler struct {
	slog.Handler
	hadError atomic.Bool
}

func (h *errorTrackingHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level == slog.LevelError {
		h.hadError.Store(true)
	}
	return h.Handler.Handle(ctx, r)
}

// logAsError routes the standard log package's output through h at
// error level, the severity slog.SetDefault's own bridging assigns to
// it on newer Go versions.
type logAsError struct {
	h slog.Handler
}

func (w logAsError) Write(p []byte) (int, error) {
	msg := strings.TrimSuffix(string(p), "\n")
	r := slog.NewRecord(time.Now(), slog.LevelError, msg, 0)
	if err := w.h.Handle(context.Background(), r); err != nil {
		return 0, err
	}
	return len(p), nil
}

func main() {
	strategy := flagcommon.Strategy()
	prioritization := flagcommon.Prioritization()
	format := flag.String("format", "tsv", "Output format: tsv, table, or yaml")
	configPath := flag.String("config-path", defaultConfigPath, "Path to config file")
	exit := setupLogging()

	flag.Parse()
	flagconf.ParseEnv()
	flagconf.ParseConfig(*configPath)

	paths := flag.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] PATH...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	files, err := findFiles(paths)
	if err != nil {
		log.Printf("find files: %v", err)
	}
	slices.SortFunc(files, natcmp.Compare)

	results := collectAll(files, *prioritization, *strategy)

	switch *format {
	case "table":
		writeTable(os.Stdout, results)
	case "yaml":
		writeYAML(os.Stdout, results)
	default:
		writeTSV(os.Stdout, results)
	}

	exit()
}

// findFiles expands paths into a flat list of files tagcollate.ReadFile
// claims an extension for, recursing into directories and expanding
// glob patterns a shell left unexpanded (quoted, or passed through
// -- e.g. from a config file). A path that doesn't stat, or names a
// file with no matching parser, is kept anyway; its read error
// surfaces per-file rather than silently dropping the path from the
// run.
func findFiles(paths []string) ([]string, error) {
	var out []string
	var errs []error
	for _, p := range paths {
		if fileutil.GlobEscape(p) != p {
			matches, err := fileutil.GlobBase(".", p)
			if err != nil {
				errs = append(errs, fmt.Errorf("glob %s: %w", p, err))
				continue
			}
			out = append(out, matches...)
			continue
		}

		info, err := os.Stat(p)
		if err != nil {
			out = append(out, p)
			continue
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !isSupportedExt(path) {
				return nil
			}
			out = append(out, path)
			return nil
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("walk %s: %w", p, err))
		}
	}
	return out, errors.Join(errs...)
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac", ".mp3", ".mp4", ".m4a", ".m4b", ".ape":
		return true
	default:
		return false
	}
}

// fileResult is one file's collated view, ready to be printed in any
// output format.
type fileResult struct {
	Path   string
	Err    error
	Fields []fieldResult
}

type fieldResult struct {
	Name  string
	Value any
}

// collectAll reads and collates every file concurrently via an
// errgroup, at most 8 files at a time; a file's read/collate error is
// attached to its own result rather than failing the whole run.
func collectAll(paths []string, prioritization metadata.Prioritization, strategy collate.DuplicateTagStrategy) []fileResult {
	results := make([]fileResult, len(paths))

	var g errgroup.Group
	g.SetLimit(8)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = collectOne(path, prioritization, strategy)
			return nil
		})
	}
	_ = g.Wait() // collectOne never returns an error from Go; it's recorded per-result

	return results
}

func collectOne(path string, prioritization metadata.Prioritization, strategy collate.DuplicateTagStrategy) fileResult {
	all, err := tagcollate.ReadFile(path)
	if err != nil {
		return fileResult{Path: path, Err: fmt.Errorf("read: %w", err)}
	}

	c := collate.New(all, prioritization, strategy)

	get := func(v string, ok bool) any {
		if !ok {
			return nil
		}
		return v
	}
	artist, artistOK := c.Artist()
	album, albumOK := c.Album()
	title, titleOK := c.Title()
	genre, genreOK := c.Genre()
	albumArtist, albumArtistOK := c.AlbumArtist()
	trackNumber, trackNumberOK := c.TrackNumber()
	date, dateOK := c.Date()
	originalDate, originalDateOK := c.OriginalDate()

	fields := []fieldResult{
		{"Artist", get(artist, artistOK)},
		{"Artists", c.Artists()},
		{"Album", get(album, albumOK)},
		{"Albums", c.Albums()},
		{"AlbumArtist", get(albumArtist, albumArtistOK)},
		{"AlbumArtists", c.AlbumArtists()},
		{"Title", get(title, titleOK)},
		{"Titles", c.Titles()},
		{"Genre", get(genre, genreOK)},
		{"Genres", c.Genres()},
		{"TrackNumber", get(trackNumber, trackNumberOK)},
		{"Date", formatTime(date, dateOK)},
		{"OriginalDate", formatTime(originalDate, originalDateOK)},
	}

	return fileResult{Path: path, Fields: fields}
}

func formatTime(t time.Time, ok bool) any {
	if !ok {
		return nil
	}
	return t.Format(time.RFC3339)
}

func writeTSV(w *os.File, results []fileResult) {
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\terror\t%s\n", r.Path, r.Err)
			continue
		}
		for _, f := range r.Fields {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Path, f.Name, jsonValue(f.Value))
		}
	}
}

func writeTable(w *os.File, results []fileResult) {
	t := table.NewStringWriter()
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(t, "%s\terror\t%s\n", r.Path, r.Err)
			continue
		}
		for _, f := range r.Fields {
			fmt.Fprintf(t, "%s\t%s\t%s\n", r.Path, f.Name, jsonValue(f.Value))
		}
	}
	fmt.Fprint(w, t.String())
}

func writeYAML(w *os.File, results []fileResult) {
	type yamlFile struct {
		Path   string         `yaml:"path"`
		Error  string         `yaml:"error,omitempty"`
		Fields map[string]any `yaml:"fields,omitempty"`
	}
	var out []yamlFile
	for _, r := range results {
		y := yamlFile{Path: r.Path}
		if r.Err != nil {
			y.Error = r.Err.Error()
		} else {
			y.Fields = make(map[string]any, len(r.Fields))
			for _, f := range r.Fields {
				y.Fields[f.Name] = f.Value
			}
		}
		out = append(out, y)
	}
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(out); err != nil {
		log.Printf("encode yaml: %v", err)
	}
}

func jsonValue(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	r, _ := json.Marshal(v)
	return string(r)
}
