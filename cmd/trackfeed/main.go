// Command trackfeed is a synthetic track producer for development and
// simulation. It stands in for the radar feed: it seeds a population of
// tracks and advances their kinematics toward the protected point on a fixed
// tick, so a running engine has something to evaluate.
package main

import (
	"context"
	"flag"
	"log"
	"math"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/skyfence-labs/skyfence/internal/store"
	"github.com/skyfence-labs/skyfence/internal/track"
)

var (
	dbPath     = flag.String("db", "tracks.db", "Path to the track database")
	trackCount = flag.Int("tracks", 10, "Number of tracks to seed")
	interval   = flag.Duration("interval", 500*time.Millisecond, "Tick interval between kinematic updates")
	seed       = flag.Int64("seed", 0, "Random seed (0 uses the current time)")
)

// feedTrack pairs a stored track ID with the simulated motion state the store
// does not carry.
type feedTrack struct {
	id       int64
	x, y     float64
	speedMps float64
	headingX float64
	headingY float64
}

func main() {
	flag.Parse()

	if *trackCount < 1 {
		log.Fatal("tracks must be at least 1")
	}

	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(s))

	db, err := store.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to track database: %v", err)
	}
	defer db.Close()

	if err := db.MigrateUp(); err != nil {
		log.Fatalf("Failed to migrate track database: %v", err)
	}

	trackStore := store.NewSQLiteStore(db)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	feed := seedTracks(ctx, trackStore, rng, *trackCount)
	log.Printf("seeded %d tracks (seed=%d), ticking every %s", len(feed), s, *interval)

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			advance(ctx, trackStore, rng, feed, interval.Seconds())
		case <-ctx.Done():
			log.Print("track feed stopped")
			return
		}
	}
}

var identifications = []track.Identification{
	track.IdentFriendly,
	track.IdentUnknown,
	track.IdentUnknown, // unknowns dominate a fresh air picture
	track.IdentHostile,
}

// seedTracks inserts the initial population scattered 500-5000 units from the
// origin with inbound headings and a spread of speeds and IFF classes.
func seedTracks(ctx context.Context, s *store.SQLiteStore, rng *rand.Rand, n int) []*feedTrack {
	var feed []*feedTrack
	for i := 0; i < n; i++ {
		bearing := rng.Float64() * 2 * math.Pi
		dist := 500 + rng.Float64()*4500
		x := dist * math.Cos(bearing)
		y := dist * math.Sin(bearing)
		speed := 50 + rng.Float64()*1600

		t := track.Track{
			ExternalRef:    uuid.New().String(),
			X:              x,
			Y:              y,
			SpeedMps:       speed,
			Identification: identifications[rng.Intn(len(identifications))],
		}
		if err := s.InsertTrack(ctx, &t); err != nil {
			log.Printf("failed to seed track: %v", err)
			continue
		}

		// head inbound, with some angular scatter so not everything
		// converges on the protected point
		scatter := (rng.Float64() - 0.5) * math.Pi / 3
		hx := math.Cos(bearing + math.Pi + scatter)
		hy := math.Sin(bearing + math.Pi + scatter)

		feed = append(feed, &feedTrack{
			id:       t.ID,
			x:        x,
			y:        y,
			speedMps: speed,
			headingX: hx,
			headingY: hy,
		})
	}
	return feed
}

// advance moves every track along its heading for dt seconds and writes the
// new kinematics back. Tracks that pass well beyond the protected point are
// respawned on the perimeter with fresh speed.
func advance(ctx context.Context, s *store.SQLiteStore, rng *rand.Rand, feed []*feedTrack, dt float64) {
	for _, f := range feed {
		f.x += f.headingX * f.speedMps * dt
		f.y += f.headingY * f.speedMps * dt

		// small speed jitter so scores move between cycles
		f.speedMps = math.Max(0, f.speedMps+(rng.Float64()-0.5)*20)

		if math.Hypot(f.x, f.y) > 6000 {
			bearing := rng.Float64() * 2 * math.Pi
			f.x = 5000 * math.Cos(bearing)
			f.y = 5000 * math.Sin(bearing)
			f.speedMps = 50 + rng.Float64()*1600
			f.headingX = math.Cos(bearing + math.Pi)
			f.headingY = math.Sin(bearing + math.Pi)
		}

		if err := s.UpdateTrackKinematics(ctx, f.id, f.x, f.y, f.speedMps); err != nil {
			log.Printf("failed to update track %d: %v", f.id, err)
		}
	}
}
