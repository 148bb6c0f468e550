package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"picpurge/internal/analysis"
	"picpurge/internal/database"
	"picpurge/internal/handlers"
	"picpurge/internal/logging"
	"picpurge/internal/memory"
	"picpurge/internal/pipeline"
	"picpurge/internal/server"
	"picpurge/internal/sorter"
	"picpurge/internal/startup"
	"picpurge/internal/thumbs"
	"picpurge/internal/walker"
)

var (
	recyclePath         string
	autoRecycle         bool
	sortImages          bool
	sortDestinationPath string
	concurrency         int
	serverPort          string
	serveResults        bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Scan paths for image files and process them",
	Long: `Scans the given directories or files for images, extracts features
into the database, marks exact duplicates, clusters visually similar
images, and optionally sorts the canonical set into a date hierarchy
or serves the results over HTTP.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringVar(&recyclePath, "recycle-path", "", "Directory for recycled files (default from PICPURGE_RECYCLE_DIR)")
	scanCmd.Flags().BoolVar(&autoRecycle, "auto-recycle", false, "Move all but one copy of each duplicate to the recycle directory")
	scanCmd.Flags().BoolVar(&sortImages, "sort", false, "Sort canonical images into a <year>/<month> hierarchy after analysis")
	scanCmd.Flags().StringVar(&sortDestinationPath, "sort-destination", "", "Copy sorted images to this directory instead of moving them in place")
	scanCmd.Flags().IntVar(&concurrency, "concurrency", 0, "Number of extraction workers (default: CPU count minus one)")
	scanCmd.Flags().StringVarP(&serverPort, "port", "p", "", "Port for the results server (default from PICPURGE_PORT)")
	scanCmd.Flags().BoolVar(&serveResults, "serve", false, "Serve results over HTTP after the scan completes")
}

func runScan(cmd *cobra.Command, args []string) error {
	memory.ConfigureFromEnv()

	cfg, err := startup.LoadConfig()
	if err != nil {
		return err
	}
	if recyclePath != "" {
		cfg.RecycleDir = recyclePath
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}
	if concurrency > 0 {
		cfg.Concurrency = concurrency
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error("closing database: %v", err)
		}
	}()
	thumbStore := thumbs.NewStore()

	// Phase 1: enumerate candidates.
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Prefix = "Scanning for image files "
	sp.Start()
	files, err := walker.FindImageFiles(args...)
	sp.Stop()
	if err != nil {
		return fmt.Errorf("scanning paths: %w", err)
	}
	logging.Info("found %d image files", len(files))
	if len(files) == 0 {
		logging.Info("nothing to process")
		return nil
	}

	// Phase 2: extract and persist.
	bar := progressbar.Default(int64(len(files)), "Processing images")
	p := pipeline.New(store, thumbStore, pipeline.Config{
		Concurrency: cfg.Concurrency,
		RecycleDir:  cfg.RecycleDir,
		OnFile: func(string, error) {
			if err := bar.Add(1); err != nil {
				logging.Debug("progress bar: %v", err)
			}
		},
	})
	summary, err := p.Run(ctx, walker.Stream(ctx, files))
	if err != nil {
		return fmt.Errorf("scan interrupted: %w", err)
	}
	logging.Info("processed %d files, %d errors, %d small files recycled",
		summary.Processed, summary.Errored, summary.SmallRecycled)

	// Phase 3: analysis passes, strictly after extraction drains.
	pairs, recycled, err := analysis.NewResolver(store).Resolve(autoRecycle, cfg.RecycleDir)
	if err != nil {
		return fmt.Errorf("duplicate resolution: %w", err)
	}
	groups, err := analysis.NewClusterer(store).Cluster()
	if err != nil {
		return fmt.Errorf("similarity clustering: %w", err)
	}

	printSummary(store, pairs, recycled, groups)

	if sortImages {
		sorted, err := sorter.New(store).Sort(args[0], sortDestinationPath)
		if err != nil {
			return fmt.Errorf("sorting images: %w", err)
		}
		logging.Info("sorted %d images", sorted)
	}

	if serveResults {
		return serve(ctx, store, thumbStore, cfg)
	}
	return nil
}

func printSummary(store *database.Store, pairs, recycled, groups int) {
	stats, err := store.CalculateStats()
	if err != nil {
		logging.Error("calculating final stats: %v", err)
		return
	}

	fmt.Println()
	fmt.Println("Scan summary")
	fmt.Println("------------------------------")
	fmt.Printf("  Total images:     %d\n", stats.TotalImages)
	fmt.Printf("  Duplicate pairs:  %d\n", pairs)
	fmt.Printf("  Recycled:         %d\n", recycled)
	fmt.Printf("  Similar groups:   %d\n", groups)
	fmt.Printf("  Unique images:    %d\n", stats.UniqueImageCount)
	fmt.Println()
}

func serve(ctx context.Context, store *database.Store, thumbStore *thumbs.Store, cfg *startup.Config) error {
	h := handlers.New(store, thumbStore, cfg.RecycleDir)
	srv := server.New(h, cfg.Port)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
