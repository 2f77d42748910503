// Command trackdiag loads an element-set feed and prints one satellite's
// current sub-satellite point and ground track.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/star/spacedash/internal/groundtrack"
	"github.com/star/spacedash/internal/propagation"
	"github.com/star/spacedash/internal/tle"
)

func main() {
	source := flag.String("source", tle.DefaultSourceURL, "element-set feed URL or file path")
	name := flag.String("name", "ISS (ZARYA)", "satellite display name, exactly as in the feed")
	duration := flag.Duration("duration", 90*time.Minute, "track length")
	step := flag.Duration("step", 5*time.Minute, "time between samples")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel propagation calls")
	list := flag.Bool("list", false, "print catalog names and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cat, err := tle.NewLoader(tle.NewFetcher(logger), nil, logger).Load(ctx, *source)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR loading catalog:", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %d element sets from %s (epochs %s to %s, %d duplicate names)\n",
		cat.Len(), cat.Source,
		cat.EpochRange.Min.Format(time.RFC3339), cat.EpochRange.Max.Format(time.RFC3339),
		cat.Duplicates)

	if *list {
		for _, n := range cat.Names() {
			fmt.Println(n)
		}
		return
	}

	rec, ok := cat.Lookup(*name)
	if !ok {
		fmt.Fprintf(os.Stderr, "ERROR: %q not in catalog (use -list to see names)\n", *name)
		os.Exit(1)
	}

	sampler := groundtrack.NewSampler(propagation.NewEngine(logger), groundtrack.Config{
		Workers: *workers,
	}, logger)

	now := time.Now().UTC()
	pos, err := sampler.CurrentPosition(rec, now)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR propagating:", err)
		os.Exit(1)
	}
	fmt.Printf("%s (NORAD %d) epoch %s\n", rec.Name, rec.NORADID, rec.Epoch.Format(time.RFC3339))
	fmt.Printf("Now %s: lat %.4f° lon %.4f°\n\n", pos.Timestamp.Format(time.RFC3339), pos.Latitude, pos.Longitude)

	samples, err := sampler.SampleTrack(groundtrack.TrackRequest{
		Record:   rec,
		Start:    now,
		Duration: *duration,
		Step:     *step,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR sampling track:", err)
		os.Exit(1)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\ttime (UTC)\tlat\tlon\t")
	for i, s := range samples {
		fmt.Fprintf(tw, "%d\t%s\t%.4f\t%.4f\t\n", i, s.Timestamp.Format("15:04:05"), s.Latitude, s.Longitude)
	}
	tw.Flush()
	fmt.Printf("\n%d samples over %s at %s\n", len(samples), *duration, *step)
}
