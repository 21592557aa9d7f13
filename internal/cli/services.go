package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/config"
	"creed-trivia/internal/infra/memory"
	pgstore "creed-trivia/internal/infra/postgres"
	infraredis "creed-trivia/internal/infra/redis"
	"creed-trivia/internal/infra/sqlite"
	"creed-trivia/internal/leaderboard"
	"creed-trivia/internal/packs"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
)

const fetchTimeout = 10 * time.Second

type keyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// services is everything a command needs, built once from config.
type services struct {
	cfg      config.Config
	kv       keyValueStore
	redis    *redis.Client
	pool     *pgxpool.Pool
	packsDB  *pgstore.PackFetcher
	disabled *packs.DisabledSet
	library  *packs.Library
	board    *leaderboard.Board
	engine   *app.Engine
	closers  []func()
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	s := &services{cfg: cfg}

	if cfg.Local.Path != "" {
		store, err := sqlite.Open(ctx, "file:"+cfg.Local.Path)
		if err != nil {
			return nil, err
		}
		s.kv = store
		s.closers = append(s.closers, func() { _ = store.Close() })
	} else {
		s.kv = memory.NewKVStore()
	}

	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.closers = append(s.closers, func() { _ = s.redis.Close() })
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		s.pool = pool
		s.packsDB = pgstore.NewPackFetcher(pool)
		s.closers = append(s.closers, pool.Close)
	}

	s.disabled = packs.NewDisabledSet(s.kv)
	loader := packs.NewLoader(s.fetcher(), s.disabled, log.Default())
	s.library = packs.NewLibrary(cfg.Packs.Sources, loader, log.Default())

	s.board = leaderboard.NewBoard(s.remoteStore(), leaderboard.NewLocalStore(s.kv), log.Default())
	s.engine = app.NewEngine(cfg.Quiz.Settings(), app.Deps{
		Source:   s.library,
		Recorder: s.board,
		Flags:    s.kv,
	})
	return s, nil
}

func (s *services) fetcher() packs.Fetcher {
	client := &http.Client{Timeout: fetchTimeout}
	root := s.cfg.Packs.Root

	scheme := packs.SchemeFetcher{Remote: packs.NewHTTPFetcher(client, "")}
	if strings.HasPrefix(root, "http://") || strings.HasPrefix(root, "https://") {
		scheme.Local = packs.NewHTTPFetcher(client, root)
	} else {
		scheme.Local = packs.NewFileFetcher(root)
	}
	if s.packsDB != nil {
		scheme.Database = s.packsDB
	}

	ttl := config.TTLDuration(s.cfg.Packs.TTL, 10*time.Minute)
	if s.redis != nil {
		return infraredis.NewPackCache(s.redis, scheme, ttl)
	}
	return packs.NewCachedFetcher(scheme, ttl)
}

func (s *services) remoteStore() leaderboard.Store {
	switch s.cfg.RemoteBackend() {
	case config.RemoteRedis:
		if s.redis != nil {
			return infraredis.NewScoreStore(s.redis)
		}
	case config.RemotePostgres:
		if s.pool != nil {
			return pgstore.NewScoreStore(s.pool)
		}
	}
	return nil
}

func (s *services) leaderboardLimit() int {
	if s.cfg.Leaderboard.Limit > 0 {
		return s.cfg.Leaderboard.Limit
	}
	return 10
}

// Close waits for pending score writes, then releases connections.
func (s *services) Close() {
	if s.engine != nil {
		s.engine.Close()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func loadServices(ctx context.Context, configPath string) (*services, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
	}
	return buildServices(ctx, cfg)
}
