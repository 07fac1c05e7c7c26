package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"sync"
	"syscall"
	"time"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/aukilabs/go-tooling/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/voxelhive/warden/featureflag"
	wardenhttp "github.com/voxelhive/warden/http"
	"github.com/voxelhive/warden/models"
	"github.com/voxelhive/warden/smoketest"
	"github.com/voxelhive/warden/tracker"
)

var (
	// The Warden version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "warden_info",
		Help:        "Warden information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct. Without it, the keys would get obfuscated causing the cli package to generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	Addr          string        `cli:""        env:"WARDEN_ADDR"           help:"Listening address for the stats and health endpoints."`
	AdminAddr     string        `cli:""        env:"WARDEN_ADMIN_ADDR"     help:"Admin listening address."`
	LogLevel      string        `cli:""        env:"WARDEN_LOG_LEVEL"      help:"Log level (debug|info|warning|error)."`
	LogIndent     bool          `cli:""        env:"WARDEN_LOG_INDENT"     help:"Indent logs."`
	Trackers      int           `cli:",hidden" env:"WARDEN_TRACKERS"       help:"The number of tracker instances to exercise."`
	Movers        int           `cli:",hidden" env:"WARDEN_MOVERS"         help:"The number of simulated entities per tracker."`
	ViewRadius    float64       `cli:",hidden" env:"WARDEN_VIEW_RADIUS"    help:"The visibility query radius in world units."`
	TickInterval  time.Duration `cli:",hidden" env:"WARDEN_TICK_INTERVAL"  help:"The duration of a logical server tick."`
	StatsInterval time.Duration `cli:",hidden" env:"WARDEN_STATS_INTERVAL" help:"The duration between stats stream pushes."`
	FeatureFlags  []string      `cli:",hidden" env:"WARDEN_FEATURE_FLAGS"  help:"Comma separated feature flags"`
	Version       bool          `cli:""        env:"-"                     help:"Show version."`
	Help          bool          `cli:""        env:"-"                     help:"Show help."`
}

func main() {
	conf := config{
		Addr:          ":4600",
		AdminAddr:     ":18290",
		LogLevel:      logs.InfoLevel.String(),
		Trackers:      1,
		Movers:        128,
		ViewRadius:    64,
		TickInterval:  time.Millisecond * 50,
		StatsInterval: time.Second,
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the Warden spatial tracker harness.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	errors.Encoder = json.Marshal

	flags := featureflag.New(conf.FeatureFlags)
	store := &tracker.TrackerStore{
		Config: tracker.Config{
			ViewDistance:       float32(conf.ViewRadius),
			SIMDEnabled:        !flags.IsSet(featureflag.FlagDisableSIMDFiltering),
			PredictiveLoading:  !flags.IsSet(featureflag.FlagDisablePredictiveLoading),
			PriorityScheduling: !flags.IsSet(featureflag.FlagDisablePriorityScheduling),
			SyncHandler: func(task models.SyncTask) {
				// Stand-in for network propagation: sync tasks are observed
				// and dropped.
				logs.WithTag("entity_id", task.EntityID).
					WithTag("tick", task.Tick).
					Debug("sync task processed")
			},
		},
	}
	defer store.Close()

	var running sync.WaitGroup
	for i := 0; i < conf.Trackers; i++ {
		worker := fmt.Sprintf("worker-%d", i)
		t := store.GetOrCreate(worker)

		running.Add(1)
		go func() {
			defer running.Done()
			runLoad(ctx, t, conf)
		}()
	}

	var service http.ServeMux
	service.HandleFunc("/health", wardenhttp.HandleHealthCheck)
	service.Handle("/version", wardenhttp.HandleWithCORS(http.HandlerFunc(wardenhttp.HandleVersion(version))))
	service.Handle("/ready", wardenhttp.HandleWithCORS(wardenhttp.HandleReadyCheck(func() bool {
		return store.Count() == conf.Trackers
	})))
	service.Handle("/stats", wardenhttp.HandleStatsStream(conf.StatsInterval, func() any {
		return snapshotStats(store, conf.Trackers)
	}))
	service.Handle("/smoketest", smoketest.HandleSmokeTest(ctx, smoketest.Options{
		TrackerConfig: store.Config,
	}))

	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/health", wardenhttp.HandleHealthCheck)
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	admin.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
	admin.Handle("/debug/pprof/heap", pprof.Handler("heap"))

	logs.WithTag("version", version).
		WithTag("log_level", conf.LogLevel).
		WithTag("trackers", conf.Trackers).
		WithTag("movers", conf.Movers).
		Info("starting warden harness")

	wardenhttp.ListenAndServe(ctx,
		&http.Server{Addr: conf.Addr, Handler: metrics.HTTPHandler(&service,
			wardenhttp.MetricsPathFormatter)},
		&http.Server{Addr: conf.AdminAddr, Handler: &admin},
	)

	running.Wait()
}

type mover struct {
	id       int64
	pos      models.Position
	category models.Category
	velX     float32
	velZ     float32
}

// runLoad drives one tracker with a population of random walkers, issuing
// position updates, player visibility queries and ticks at the configured
// tick interval.
func runLoad(ctx context.Context, t *tracker.Tracker, conf config) {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	categories := []models.Category{
		models.CategoryPlayer,
		models.CategoryHostile,
		models.CategoryPassive,
		models.CategoryVillager,
		models.CategoryItem,
	}

	movers := make([]*mover, 0, conf.Movers)
	for i := 0; i < conf.Movers; i++ {
		m := &mover{
			id: int64(i + 1),
			pos: models.NewPosition(
				rng.Float32()*512-256,
				64,
				rng.Float32()*512-256,
			),
			category: categories[i%len(categories)],
			velX:     rng.Float32()*8 - 4,
			velZ:     rng.Float32()*8 - 4,
		}
		if err := t.RegisterEntity(m.id, m.pos, 0.5, m.category); err != nil {
			logs.Error(errors.New("registering mover failed").
				WithTag("entity_id", m.id).
				Wrap(err))
			continue
		}
		movers = append(movers, m)
	}

	ticker := time.NewTicker(conf.TickInterval)
	defer ticker.Stop()

	dt := float32(conf.TickInterval.Seconds())
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			for _, m := range movers {
				m.pos.X += m.velX * dt
				m.pos.Z += m.velZ * dt
				t.UpdateEntityPosition(m.id, m.pos)
			}

			for _, m := range movers {
				if m.category != models.CategoryPlayer {
					continue
				}
				t.GetVisibleEntities(m.id, m.pos, float32(conf.ViewRadius))
			}

			t.Tick()
		}
	}
}

type trackerSnapshot struct {
	Tracker  string        `json:"tracker"`
	Entities int           `json:"entities"`
	Regions  int           `json:"regions"`
	Tick     uint64        `json:"tick"`
	Stats    tracker.Stats `json:"stats"`
}

func snapshotStats(store *tracker.TrackerStore, trackers int) []trackerSnapshot {
	snapshots := make([]trackerSnapshot, 0, trackers)
	for i := 0; i < trackers; i++ {
		t, ok := store.Get(fmt.Sprintf("worker-%d", i))
		if !ok {
			continue
		}
		snapshots = append(snapshots, trackerSnapshot{
			Tracker:  t.UUID(),
			Entities: t.EntityCount(),
			Regions:  t.ActiveRegionCount(),
			Tick:     t.CurrentTick(),
			Stats:    t.Stats(),
		})
	}
	return snapshots
}
