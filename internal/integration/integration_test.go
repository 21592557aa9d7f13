package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"creed-trivia/internal/app"
	"creed-trivia/internal/domain"
	"creed-trivia/internal/infra/memory"
	"creed-trivia/internal/infra/postgres"
	pgmigrations "creed-trivia/internal/infra/postgres/migrations"
	infraredis "creed-trivia/internal/infra/redis"
	"creed-trivia/internal/leaderboard"
	"creed-trivia/internal/packs"
	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
)

const storedPack = `[
	{"id":"s1","question":"Who runs the warehouse?","choices":["Darryl","Roy","Val"],"correctIndex":0},
	{"id":"s2","prompt":"Who sells the most paper?","answers":[{"text":"Dwight","correct":true},{"text":"Jim"}]},
	{"id":"s3","text":"What is Creed's job?","options":["Quality assurance","Sales"],"answer":"Quality assurance"},
	{"id":"s4","question":"Is Toby from HR?","answer":true},
	{"id":"s5","question":"Who founded Dunder Mifflin?","A":"Robert Dunder","B":"David Wallace","answer":"A"}
]`

func TestPostgresSessionEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateUp(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	fetcher := postgres.NewPackFetcher(pool)
	if err := fetcher.SavePack(ctx, "warehouse", []byte(storedPack)); err != nil {
		t.Fatalf("save pack: %v", err)
	}

	quiet := log.New(io.Discard, "", 0)
	source := packs.SchemeFetcher{Database: fetcher, Local: packs.NewFileFetcher(t.TempDir())}
	library := packs.NewLibrary([]domain.PackSource{
		{ID: "warehouse", Path: packs.DatabasePrefix + "warehouse", Enabled: true},
	}, packs.NewLoader(source, nil, quiet), quiet)

	store := postgres.NewScoreStore(pool)
	board := leaderboard.NewBoard(store, leaderboard.NewLocalStore(memory.NewKVStore()), quiet)

	settings := app.DefaultSettings()
	settings.ShuffleAnswers = false
	engine := app.NewEngine(settings, app.Deps{Source: library, Recorder: board, Logger: quiet, Seed: 11})
	session := engine.NewSession("Creed", 5)
	if err := session.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if d := session.Diagnostics(); d.Fallback || d.Normalized != 5 {
		t.Fatalf("expected stored pack to load, got %+v", d)
	}
	for session.State() == domain.StateInProgress {
		q, _ := session.Current()
		if _, _, err := session.Select(0); err != nil {
			t.Fatalf("select %s: %v", q.QuestionID, err)
		}
		if _, err := session.Next(); err != nil {
			t.Fatalf("next: %v", err)
		}
	}
	engine.Close()

	top, err := store.Top(ctx, 10)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].ID != session.ID() || top[0].Score != session.Result().Score {
		t.Fatalf("expected recorded session in postgres, got %+v", top)
	}
}

func TestPostgresScoreOrdering(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	migrateUp(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()
	checkOrdering(t, ctx, postgres.NewScoreStore(pool))
}

func TestRedisScoreOrdering(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	client, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()
	checkOrdering(t, ctx, infraredis.NewScoreStore(client))
}

func checkOrdering(t *testing.T, ctx context.Context, store leaderboard.Store) {
	t.Helper()
	if !store.Ready(ctx) {
		t.Fatalf("expected store to be ready")
	}
	created := time.Date(2024, 11, 22, 9, 0, 0, 0, time.UTC)
	for i, r := range []domain.SessionResult{
		{ID: "slow", Name: "Kevin", Score: 900, DurationMs: 60000},
		{ID: "fast", Name: "Oscar", Score: 900, DurationMs: 30000},
		{ID: "low", Name: "Angela", Score: 700, DurationMs: 10000},
		{ID: "best", Name: "Jim", Score: 1500, DurationMs: 90000},
	} {
		r.CreatedAt = created.Add(time.Duration(i) * time.Minute)
		if err := store.Append(ctx, r); err != nil {
			t.Fatalf("append %s: %v", r.ID, err)
		}
	}

	top, err := store.Top(ctx, 3)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	var got []string
	for _, r := range top {
		got = append(got, r.ID)
	}
	if strings.Join(got, ",") != "best,fast,slow" {
		t.Fatalf("unexpected order %v", got)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if top, _ := store.Top(ctx, 3); len(top) != 0 {
		t.Fatalf("expected empty board after clear, got %d", len(top))
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "trivia", "POSTGRES_PASSWORD": "triviapass", "POSTGRES_DB": "triviadb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://trivia:triviapass@%s:%s/triviadb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func migrateUp(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
