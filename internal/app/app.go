package app

import (
	"context"
	"database/sql"
	"io"
	"os"
	"time"

	evbus "github.com/asaskevich/EventBus"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wichananm65/able-backend/internal/catalog"
	"github.com/wichananm65/able-backend/internal/config"
	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/favorite"
	"github.com/wichananm65/able-backend/internal/filter"
	"github.com/wichananm65/able-backend/internal/preference"
	"github.com/wichananm65/able-backend/internal/product"
	"github.com/wichananm65/able-backend/internal/rank"
	"github.com/wichananm65/able-backend/internal/source"
)

// preferenceTTL bounds how long an idle shopper's preferences stay in Redis.
const preferenceTTL = 90 * 24 * time.Hour

// Application owns every long-lived service of the process.
type Application struct {
	cfg config.Config

	db       *sql.DB
	src      source.Source
	bus      evbus.Bus
	store    *catalog.Store
	prefs    preference.Store
	closers  []io.Closer
	sessions *preference.Sessions
	products *product.Service
	saved    *favorite.Service
	sched    *cron.Cron
}

func NewApplication(cfg config.Config) *Application {
	return &Application{cfg: cfg}
}

func (a *Application) Config() config.Config          { return a.cfg }
func (a *Application) DB() *sql.DB                    { return a.db }
func (a *Application) Bus() evbus.Bus                 { return a.bus }
func (a *Application) Catalog() *catalog.Store        { return a.store }
func (a *Application) Sessions() *preference.Sessions { return a.sessions }
func (a *Application) Products() *product.Service     { return a.products }
func (a *Application) Saved() *favorite.Service       { return a.saved }
func (a *Application) Scheduler() *cron.Cron          { return a.sched }

// InitLogger installs the process-wide zap logger. With a file configured,
// JSON lines go to a rotated file and console lines to stdout.
func InitLogger(mode, file string) error {
	var zapConfig zap.Config
	if mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.OutputPaths = []string{"stdout"}

	var logger *zap.Logger
	if file != "" {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   file,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			return err
		}
	}
	zap.ReplaceGlobals(logger)
	return nil
}

// Init opens the data source and preference store and builds the services.
// It does not touch the network beyond connecting; call WarmUp to load the catalog.
func (a *Application) Init(ctx context.Context) error {
	a.bus = evbus.New()

	if err := a.initSource(ctx); err != nil {
		return err
	}
	a.store = catalog.NewStore(a.src, catalog.WithTimeouts(a.cfg.Timeouts), catalog.WithBus(a.bus))

	if err := a.initPreferences(ctx); err != nil {
		return err
	}
	a.sessions = preference.NewSessions(a.prefs, a.bus, preference.WithIdleTimeout(a.cfg.SessionIdle))
	if err := a.bus.SubscribeAsync(preference.TopicChanged, func(key string, p domain.Preferences) {
		zap.L().Debug("preferences changed",
			zap.String("key", key),
			zap.Int("features", len(p.FeatureIDs)),
			zap.Int("challenges", len(p.ChallengeIDs)),
		)
	}, false); err != nil {
		return errors.Wrap(err, "subscribe preference events")
	}

	weights := a.cfg.Tuning.Weights
	if weights == (rank.Weights{}) {
		weights = rank.DefaultWeights()
	}
	a.products = product.NewService(a.store,
		filter.NewEngine(a.cfg.Tuning.ClosureFeatures),
		rank.NewRanker(weights),
	)

	var savedRepo favorite.Repository = favorite.NewInMemoryRepository()
	if a.db != nil {
		pg := favorite.NewPostgresRepository(a.db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		savedRepo = pg
	}
	a.saved = favorite.NewService(savedRepo, a.store)

	return a.initJobs()
}

func (a *Application) initSource(ctx context.Context) error {
	if a.cfg.DatabaseURL == "" {
		f, err := source.NewFixtures()
		if err != nil {
			return errors.Wrap(err, "load fixtures")
		}
		zap.L().Info("DATABASE_URL not set, serving the built-in catalog")
		a.src = f
		return nil
	}
	db, err := OpenDB(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.db = db
	a.src = source.NewPostgres(db)
	zap.L().Info("catalog backed by postgres")
	return nil
}

func (a *Application) initPreferences(ctx context.Context) error {
	switch {
	case a.cfg.RedisURL != "":
		client, err := preference.DialRedis(ctx, a.cfg.RedisURL)
		if err != nil {
			return errors.Wrap(err, "connect redis")
		}
		a.closers = append(a.closers, client)
		a.prefs = preference.NewRedisStore(client, "", preferenceTTL)
		zap.L().Info("preferences stored in redis")
	case a.cfg.PreferenceDB != "":
		store, err := preference.OpenBoltStore(a.cfg.PreferenceDB)
		if err != nil {
			return errors.Wrap(err, "open preference db")
		}
		a.closers = append(a.closers, store)
		a.prefs = store
		zap.L().Info("preferences stored in bolt", zap.String("path", a.cfg.PreferenceDB))
	default:
		a.prefs = preference.NewMemoryStore()
		zap.L().Warn("no preference store configured, preferences are kept in memory")
	}
	return nil
}

// OpenDB opens a pgx-backed database/sql handle and checks connectivity.
func OpenDB(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping database")
	}
	return db, nil
}

// Close stops jobs, flushes preferences and releases connections.
func (a *Application) Close() {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.sessions != nil {
		a.sessions.Close()
	}
	if a.bus != nil {
		a.bus.WaitAsync()
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			zap.L().Warn("close", zap.Error(err))
		}
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = zap.L().Sync()
}
