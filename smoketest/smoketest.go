// Package smoketest runs an in-process end-to-end check of the spatial
// tracker: it registers a fleet of entities, walks them for a number of
// ticks and verifies that a visibility query accounts for every one of them.
package smoketest

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/segmentio/encoding/json"
	"github.com/voxelhive/warden/models"
	"github.com/voxelhive/warden/tracker"
)

const (
	defaultEntities   = 64
	defaultTicks      = 20
	defaultViewRadius = 64
)

// Request is the body of a smoke test trigger.
type Request struct {
	Entities   int     `json:"entities"`
	Ticks      int     `json:"ticks"`
	ViewRadius float32 `json:"view_radius"`
}

// Results is the outcome of one smoke test run.
type Results struct {
	OK         bool   `json:"ok"`
	Entities   int    `json:"entities"`
	Visible    int    `json:"visible"`
	CacheHits  uint64 `json:"cache_hits"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// Options configures the smoke test handler.
type Options struct {
	// TrackerConfig is used for the throwaway tracker each run creates.
	TrackerConfig tracker.Config

	// SendResult delivers the outcome of a run. May be nil, in which case
	// results are only logged.
	SendResult func(context.Context, Results) error
}

type testCtxKey string

var testCtxKeyValue testCtxKey = "test-context"

type testContext struct {
	context.Context
	Cancel func()
}

// HandleSmokeTest triggers a run in the background and returns immediately.
// The request body bounds the run; zero values fall back to defaults.
func HandleSmokeTest(ctx context.Context, opts Options) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			logs.Warn(errors.New("reading smoke test body failed").Wrap(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		var req Request
		if len(b) != 0 {
			if err := json.Unmarshal(b, &req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}

		go func() {
			defer func() {
				// if context is of testContext
				// cancel context on exit to signal function exited
				// this is used for testing
				if tctx := ctx.Value(testCtxKeyValue); tctx != nil {
					testCtx := tctx.(testContext)
					if testCtx.Cancel != nil {
						testCtx.Cancel()
					}
				}
			}()

			res := Run(ctx, opts.TrackerConfig, req)
			if !res.OK {
				logs.WithTag("error", res.Error).
					Warn(errors.New("smoke test failed"))
			}

			if opts.SendResult == nil {
				logs.WithTag("entities", res.Entities).
					WithTag("visible", res.Visible).
					WithTag("duration_ms", res.DurationMS).
					Info("smoke test completed")
				return
			}
			if err := opts.SendResult(ctx, res); err != nil {
				logs.Warn(errors.New("sending smoke test result failed").Wrap(err))
			}
		}()

		w.WriteHeader(http.StatusOK)
	}
}

// Run executes one smoke test against a throwaway tracker. Entities are
// placed on a ring inside the view radius, walked outward a step per tick and
// queried from the center. The run fails when any entity goes missing from
// the visibility result or the repeated query never hits the cache.
func Run(ctx context.Context, conf tracker.Config, req Request) Results {
	start := time.Now()

	entities := req.Entities
	if entities <= 0 {
		entities = defaultEntities
	}
	ticks := req.Ticks
	if ticks <= 0 {
		ticks = defaultTicks
	}
	viewRadius := req.ViewRadius
	if viewRadius <= 0 {
		viewRadius = defaultViewRadius
	}

	fail := func(format string, v ...any) Results {
		return Results{
			Entities:   entities,
			DurationMS: time.Since(start).Milliseconds(),
			Error:      fmt.Sprintf(format, v...),
		}
	}

	tr := tracker.New(conf)
	defer tr.Close()

	center := models.NewPosition(0, 64, 0)
	if err := tr.RegisterEntity(0, center, 1, models.CategoryPlayer); err != nil {
		return fail("registering viewer: %s", err)
	}

	// The ring and the outward walk stay inside one cell of the center so
	// every entity remains in neighborhood reach of the viewer.
	extent := float64(viewRadius)
	if extent > float64(models.CellSize) {
		extent = float64(models.CellSize)
	}
	ring := extent / 2
	for i := 1; i <= entities; i++ {
		angle := 2 * math.Pi * float64(i) / float64(entities)
		pos := models.NewPosition(
			center.X+float32(ring*math.Cos(angle)),
			center.Y,
			center.Z+float32(ring*math.Sin(angle)),
		)
		if err := tr.RegisterEntity(int64(i), pos, 0.5, models.CategoryPassive); err != nil {
			return fail("registering entity %d: %s", i, err)
		}
	}

	step := float32(ring) / 2 / float32(ticks)
	for tick := 0; tick < ticks; tick++ {
		if ctx.Err() != nil {
			return fail("run canceled: %s", ctx.Err())
		}

		tr.Tick()
		for i := 1; i <= entities; i++ {
			angle := 2 * math.Pi * float64(i) / float64(entities)
			dist := ring + float64(step)*float64(tick+1)
			tr.UpdateEntityPosition(int64(i), models.NewPosition(
				center.X+float32(dist*math.Cos(angle)),
				center.Y,
				center.Z+float32(dist*math.Sin(angle)),
			))
		}
	}

	visible := tr.GetVisibleEntities(0, center, viewRadius)
	if len(visible) != entities+1 {
		return fail("expected %d visible entities, got %d", entities+1, len(visible))
	}

	// an immediate repeat must be served from cache
	tr.GetVisibleEntities(0, center, viewRadius)
	stats := tr.Stats()
	if stats.CacheHits == 0 {
		return fail("repeated query missed the cache")
	}

	return Results{
		OK:         true,
		Entities:   entities,
		Visible:    len(visible),
		CacheHits:  stats.CacheHits,
		DurationMS: time.Since(start).Milliseconds(),
	}
}
