package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"

	"github.com/tg383520/geo-quiz/internal/app"
	"github.com/tg383520/geo-quiz/internal/domain"
	"github.com/tg383520/geo-quiz/internal/infra/postgres"
	pgmigrations "github.com/tg383520/geo-quiz/internal/infra/postgres/migrations"
	infraredis "github.com/tg383520/geo-quiz/internal/infra/redis"
)

type unreachableLoader struct{}

func (unreachableLoader) LoadCatalog(context.Context, string) (domain.Catalog, error) {
	return domain.Catalog{}, errors.New("upstream must not be called")
}

func TestCapitalQuizFromSeededCatalog(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	migrateSchema(t, ctx, pgURL)

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := postgres.NewCatalogStore(pool)
	seeded := sampleCatalog()
	if err := store.SaveCatalog(ctx, seeded); err != nil {
		t.Fatalf("seed catalog: %v", err)
	}

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer redisClient.Close()

	catalogs := infraredis.NewCatalogRepository(redisClient, store.WithFallback(unreachableLoader{}), 5*time.Minute)
	sessions := infraredis.NewSessionStore(redisClient, 5*time.Minute, "integration")
	service := app.NewQuizService(sessions, catalogs, nil, app.Options{QuestionCount: 5})

	if err := service.Initialize(ctx); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if st := service.Status(); st.State != app.StatusReady || st.Countries != len(seeded.Countries) {
		t.Fatalf("unexpected status %+v", st)
	}
	if n, err := redisClient.Exists(ctx, "geoquiz:catalog:default").Result(); err != nil || n != 1 {
		t.Fatalf("expected the catalog to be cached in redis: n=%d err=%v", n, err)
	}

	session := service.OpenSession()
	defer service.CloseSession(session.ID())
	if n, err := redisClient.Exists(ctx, "geoquiz:session:"+session.ID()).Result(); err != nil || n != 1 {
		t.Fatalf("expected a session marker: n=%d err=%v", n, err)
	}

	capitals := map[string]string{}
	for _, c := range seeded.Countries {
		capitals[c.Name.Common] = c.Capital()
	}

	view, err := session.Start(domain.ModeCapital, domain.StyleText)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	for {
		name := strings.TrimSuffix(strings.TrimPrefix(view.Prompt, "What is the capital of "), "?")
		fb, err := session.AnswerText("  " + strings.ToUpper(capitals[name]) + " ")
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
		if !fb.Correct {
			t.Fatalf("expected %q to be accepted for %s", capitals[name], name)
		}
		next, res, err := session.Next()
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if res != nil {
			if res.Score != 5 || res.Total != 5 || res.Label != "5 / 5" {
				t.Fatalf("unexpected result %+v", res)
			}
			break
		}
		view = *next
	}
}

func sampleCatalog() domain.Catalog {
	entries := [][4]string{
		{"KR", "KOR", "South Korea", "Seoul"},
		{"JP", "JPN", "Japan", "Tokyo"},
		{"FR", "FRA", "France", "Paris"},
		{"DE", "DEU", "Germany", "Berlin"},
		{"IT", "ITA", "Italy", "Rome"},
		{"ES", "ESP", "Spain", "Madrid"},
	}
	cat := domain.Catalog{FetchedAt: time.Now().UTC().Truncate(time.Second)}
	for _, e := range entries {
		cat.Countries = append(cat.Countries, domain.Country{
			CCA2:     e[0],
			CCA3:     e[1],
			Name:     domain.CountryName{Common: e[2], Official: e[2]},
			Capitals: []string{e[3]},
		})
	}
	return cat
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "geo", "POSTGRES_PASSWORD": "geopass", "POSTGRES_DB": "geoquiz"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2).WithStartupTimeout(60 * time.Second),
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
	dsn := fmt.Sprintf("postgres://geo:geopass@%s:%s/geoquiz?sslmode=disable", host, port.Port())
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

func migrateSchema(t *testing.T, ctx context.Context, dsn string) {
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
	return goredis.NewClient(opts), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
