package main

import (
	"bufio"
	"context"
	"flag"
	"iter"
	"log/slog"
	"os"

	"github.com/stashlabs/stash"
	"github.com/stashlabs/stash/core"
	"github.com/stashlabs/stash/ingestion"
)

var samples = []*ingestion.CaptureRequest{
	{
		Title:       "Rust async runtimes compared",
		Body:        "A deep dive into tokio, async-std, and smol, with benchmarks of task spawning and channel throughput.",
		SourceURL:   "https://example.com/rust-async-runtimes",
		ContentType: core.ContentTypeArticle,
		Tags:        []string{"rust", "async", "programming"},
	},
	{
		Title:       "Understanding B-trees",
		Body:        "Why databases love B-trees: branching factor, page sizes, and the cost model of spinning disks versus SSDs.",
		SourceURL:   "https://example.com/understanding-btrees",
		ContentType: core.ContentTypeArticle,
		Tags:        []string{"databases", "data-structures"},
	},
	{
		Title:       "How to sharpen kitchen knives",
		Body:        "Whetstone grits, honing angles, and a practical routine for keeping a chef's knife sharp.",
		SourceURL:   "https://example.com/knife-sharpening",
		ContentType: core.ContentTypeVideo,
		Tags:        []string{"cooking", "tools"},
	},
	{
		Title:       "Mechanical keyboard, 75% layout",
		Body:        "Hot-swappable switches, gasket mount, south-facing RGB. Considering for the home office.",
		SourceURL:   "https://example.com/keyboard-75",
		ContentType: core.ContentTypeProduct,
		Tags:        []string{"hardware", "wishlist"},
	},
	{
		Title:       "Ideas for the garden this spring",
		Body:        "Raised beds along the south fence. Tomatoes, basil, and marigolds to keep the aphids off.",
		ContentType: core.ContentTypeNote,
		Tags:        []string{"garden", "planning"},
	},
	{
		Title:       "The economics of container shipping",
		Body:        "How the twenty-foot equivalent unit reshaped global trade, and why port congestion cascades.",
		SourceURL:   "https://example.com/container-shipping",
		ContentType: core.ContentTypeArticle,
		Tags:        []string{"economics", "logistics"},
	},
	{
		Title:       "Sourdough starter troubleshooting",
		Body:        "Hooch on top means it is hungry. Feed twice daily at room temperature until it doubles reliably.",
		ContentType: core.ContentTypeNote,
		Tags:        []string{"baking", "cooking"},
	},
	{
		Title:       "Intro to information retrieval",
		Body:        "Lecture series covering inverted indexes, TF-IDF, BM25, and the move to dense vector retrieval.",
		SourceURL:   "https://example.com/ir-lectures",
		ContentType: core.ContentTypeVideo,
		Tags:        []string{"search", "ml", "lectures"},
	},
	{
		Title:       "Cast iron skillet, 12 inch",
		Body:        "Pre-seasoned, pour spouts on both sides. Reviews say the handle stays cooler than most.",
		SourceURL:   "https://example.com/cast-iron-12",
		ContentType: core.ContentTypeProduct,
		Tags:        []string{"cooking", "wishlist"},
	},
	{
		Title:       "Notes from the distributed systems reading group",
		Body:        "Discussed Raft leader election edge cases and how pre-vote avoids disruptive rejoins after partitions.",
		ContentType: core.ContentTypeNote,
		Tags:        []string{"distributed-systems", "reading-group"},
	},
	{
		Title:       "Birdsong identification for beginners",
		Body:        "Start with the five loudest backyard species and learn their dawn chorus order.",
		SourceURL:   "https://example.com/birdsong-basics",
		ContentType: core.ContentTypeArticle,
		Tags:        []string{"birds", "nature"},
	},
	{
		Title:       "Why the sky is blue, explained properly",
		Body:        "Rayleigh scattering scales with the fourth power of frequency, which also explains red sunsets.",
		SourceURL:   "https://example.com/rayleigh",
		ContentType: core.ContentTypeVideo,
		Tags:        []string{"physics"},
	},
}

var (
	seedFileName = flag.String("src", "", "file of seed notes, one per line")
	dbPath       = flag.String("db", "./stash_db", "path to database directory")
	owner        = flag.String("owner", "seed-user", "owner account to seed")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// requestsFromLines turns each line into a note capture.
func requestsFromLines(lines iter.Seq[string]) iter.Seq[*ingestion.CaptureRequest] {
	return func(yield func(*ingestion.CaptureRequest) bool) {
		for line := range lines {
			if line == "" {
				continue
			}
			req := &ingestion.CaptureRequest{
				Title:       line,
				ContentType: core.ContentTypeNote,
			}
			if !yield(req) {
				return
			}
		}
	}
}

// requestsFromSlice returns an iterator over a slice of capture requests.
func requestsFromSlice(reqs []*ingestion.CaptureRequest) iter.Seq[*ingestion.CaptureRequest] {
	return func(yield func(*ingestion.CaptureRequest) bool) {
		for _, req := range reqs {
			if !yield(req) {
				return
			}
		}
	}
}

// captureBatched reads from a source iterator and captures items in batches.
func captureBatched(ctx context.Context, pipeline *ingestion.Pipeline, ownerID string, source iter.Seq[*ingestion.CaptureRequest], batchSize int) error {
	batch := make([]*ingestion.CaptureRequest, 0, batchSize)

	for req := range source {
		batch = append(batch, req)
		if len(batch) == batchSize {
			if _, err := pipeline.Capture(ctx, ownerID, batch...); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	// Process any remaining requests
	if len(batch) > 0 {
		if _, err := pipeline.Capture(ctx, ownerID, batch...); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	db, err := stash.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewCapturePipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source iter.Seq[*ingestion.CaptureRequest]
	if seedFileName != nil && *seedFileName != "" {
		lines, err := linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
		source = requestsFromLines(lines)
	} else {
		source = requestsFromSlice(samples)
	}

	// Capture in batches of 5
	if err := captureBatched(ctx, pipeline, *owner, source, 5); err != nil {
		panic(err)
	}
}
