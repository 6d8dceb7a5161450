// Command bench renders synthetic text frames through the glyph cache and
// exposes optional pprof/Prometheus endpoints.
//
// Every frame, each worker draws its share of glyphs into a private canvas.
// Most runes come from the configured alphabet; a few are rare Latin-1
// runes, which age out of the cache once they stop being drawn.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"

	"github.com/IvanBrykalov/uicore/cache"
	"github.com/IvanBrykalov/uicore/glyph"
	"github.com/IvanBrykalov/uicore/internal/config"
	pmet "github.com/IvanBrykalov/uicore/metrics/prom"
)

// rarePct is the share of glyphs drawn from the rare rune range.
const rarePct = 5

func main() {
	// ---- Flags (override the config file) ----
	var (
		cfgPath = flag.String("config", "", "YAML or TOML config file; empty = defaults")
		frames  = flag.Int("frames", -1, "frames to render (-1 = from config)")
		workers = flag.Int("workers", -1, "worker goroutines per frame (-1 = from config)")
		httpAdr = flag.String("http", "", "serve Prometheus metrics at addr (overrides metrics.addr)")
		pprof   = flag.String("pprof", "", "serve pprof at addr (overrides metrics.pprof)")
		level   = flag.String("log", "", "log level (overrides log.level)")
	)
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	if *frames >= 0 {
		cfg.Bench.Frames = *frames
	}
	if *workers >= 0 {
		cfg.Bench.Workers = *workers
	}
	if *httpAdr != "" {
		cfg.Metrics.Addr = *httpAdr
	}
	if *pprof != "" {
		cfg.Metrics.Pprof = *pprof
	}
	if *level != "" {
		cfg.Log.Level = *level
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log := cfg.Logger(os.Stderr)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("bench failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// ---- pprof and Prometheus (both on DefaultServeMux) ----
	serve := func(what, addr string) {
		go func() {
			log.Info("serving", "what", what, "addr", addr)
			if err := http.ListenAndServe(addr, nil); err != nil {
				log.Error("http server stopped", "what", what, "error", err)
			}
		}()
	}
	if cfg.Metrics.Pprof != "" {
		serve("pprof", cfg.Metrics.Pprof)
	}
	var metrics cache.Metrics
	if cfg.Metrics.Addr != "" {
		metrics = pmet.New(nil, "uicore", "glyph", nil)
		http.Handle("/metrics", promhttp.Handler())
		if cfg.Metrics.Addr != cfg.Metrics.Pprof {
			serve("metrics", cfg.Metrics.Addr)
		}
	}

	// ---- Build the glyph cache ----
	pol, err := cache.PolicyNamed(cfg.Cache.Policy, cfg.Cache.MaxAge)
	if err != nil {
		return err
	}
	gc := glyph.New(glyph.Options{
		Capacity: cfg.Cache.Capacity,
		MaxBytes: cfg.Cache.MaxCost,
		MaxAge:   cfg.Cache.MaxAge,
		Shards:   cfg.Cache.Shards,
		Policy:   pol,
		Metrics:  metrics,
		Logger:   log,
	})
	faces := []glyph.FaceID{
		gc.AddFace(basicfont.Face7x13),
		gc.AddFace(inconsolata.Regular8x16),
		gc.AddFace(inconsolata.Bold8x16),
	}

	alphabet := []rune(cfg.Bench.Alphabet)
	workersN := max(cfg.Bench.Workers, 1)
	perWorker := (cfg.Bench.GlyphsPerFrame + workersN - 1) / workersN

	// Each worker keeps its RNG and canvas (rand.Rand is NOT goroutine-safe).
	type worker struct {
		rng    *rand.Rand
		canvas *image.Alpha
	}
	ws := make([]worker, workersN)
	for i := range ws {
		ws[i] = worker{
			rng:    rand.New(rand.NewSource(cfg.Bench.Seed + int64(i)*9973)),
			canvas: image.NewAlpha(image.Rect(0, 0, 640, 480)),
		}
	}

	// ---- Frames ----
	var drawn, evicted int
	start := time.Now()
	for f := 0; f < cfg.Bench.Frames; f++ {
		gc.BeginFrame()

		g, gctx := errgroup.WithContext(ctx)
		for i := range ws {
			w := &ws[i]
			g.Go(func() error {
				line := make([]rune, 0, 64)
				for n := 0; n < perWorker; n += len(line) {
					line = line[:0]
					for len(line) < cap(line) && n+len(line) < perWorker {
						if w.rng.Intn(100) < rarePct {
							line = append(line, rune(0xa1+w.rng.Intn(0x5f)))
						} else {
							line = append(line, alphabet[w.rng.Intn(len(alphabet))])
						}
					}
					face := faces[w.rng.Intn(len(faces))]
					y := 16 + w.rng.Intn(440)
					if _, err := gc.DrawString(gctx, w.canvas, image.Opaque, fixed.P(0, y), face, string(line)); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}

		drawn += perWorker * workersN
		evicted += gc.EndFrame()
	}
	elapsed := time.Since(start)

	// ---- Report ----
	st := gc.Stats()
	fps := 0.0
	if s := elapsed.Seconds(); s > 0 {
		fps = float64(cfg.Bench.Frames) / s
	}
	fmt.Printf("policy=%s cap=%d max_cost=%d max_age=%d shards=%d workers=%d seed=%d\n",
		pol.Name(), cfg.Cache.Capacity, cfg.Cache.MaxCost, cfg.Cache.MaxAge, cfg.Cache.Shards, workersN, cfg.Bench.Seed)
	fmt.Printf("frames=%d (%.1f fps)  glyphs=%d  dur=%v\n", cfg.Bench.Frames, fps, drawn, elapsed)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%  evictions=%d (end-of-frame %d)\n",
		st.Hits, st.Misses, st.HitRatio()*100, st.Evictions, evicted)
	fmt.Printf("Len()=%d  bytes=%d\n", st.Len, st.Cost)
	return nil
}
