// Package common provides the container harness for integration tests:
// a postgres instance fronted by PostgREST, matching the data API surface
// the REST client talks to in production.
package common

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/network"
	"github.com/testcontainers/testcontainers-go/wait"
)

// jwtSecret signs the test tokens PostgREST validates. Test-only value.
const jwtSecret = "supabase-mcp-integration-test-secret-0123456789"

const initSQL = `
create role web_anon nologin;
create table notes (
    id serial primary key,
    title text not null,
    body text,
    published boolean not null default false
);
grant usage on schema public to web_anon;
grant all on notes to web_anon;
grant usage, select on sequence notes_id_seq to web_anon;
`

var (
	env      *RestEnv
	envOnce  sync.Once
	startErr error
)

// RestEnv wraps the postgres + PostgREST container pair.
type RestEnv struct {
	postgres  testcontainers.Container
	postgrest testcontainers.Container
	network   *testcontainers.DockerNetwork
	cancel    context.CancelFunc
	url       string
}

// URL returns the base URL of the running PostgREST instance. The path
// layout matches a project endpoint, so clients append /rest/v1/.
func (e *RestEnv) URL() string {
	return e.url
}

// ServiceToken returns a signed JWT PostgREST accepts for the test role.
func (e *RestEnv) ServiceToken() string {
	return SignTestJWT("web_anon")
}

// Cleanup tears down both containers and the network.
func (e *RestEnv) Cleanup() {
	if e == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if e.postgrest != nil {
		e.postgrest.Terminate(ctx)
	}
	if e.postgres != nil {
		e.postgres.Terminate(ctx)
	}
	if e.network != nil {
		e.network.Remove(ctx)
	}
	if e.cancel != nil {
		e.cancel()
	}
}

// SignTestJWT builds an HS256 JWT with the given role claim, signed with
// the shared test secret.
func SignTestJWT(role string) string {
	encode := func(v interface{}) string {
		raw, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(raw)
	}
	header := encode(map[string]string{"alg": "HS256", "typ": "JWT"})
	payload := encode(map[string]string{"role": role})

	mac := hmac.New(sha256.New, []byte(jwtSecret))
	mac.Write([]byte(header + "." + payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))

	return header + "." + payload + "." + sig
}

// StartRestEnv starts the container pair once per test process. Tests are
// skipped unless SUPABASE_MCP_INTEGRATION is set, so the suite stays fast
// without Docker.
func StartRestEnv(t *testing.T) *RestEnv {
	t.Helper()
	if os.Getenv("SUPABASE_MCP_INTEGRATION") == "" {
		t.Skip("set SUPABASE_MCP_INTEGRATION=1 to run container-backed tests")
	}

	envOnce.Do(func() {
		env, startErr = startRestEnv()
	})
	if startErr != nil {
		t.Fatalf("failed to start test environment: %v", startErr)
	}
	return env
}

func startRestEnv() (*RestEnv, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 180*time.Second)

	testNet, err := network.New(ctx, network.WithCheckDuplicate())
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create docker network: %w", err)
	}

	pg, err := testcontainers.Run(ctx, "postgres:16-alpine",
		testcontainers.WithExposedPorts("5432/tcp"),
		network.WithNetwork([]string{"postgres"}, testNet),
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "app",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	if _, _, err := pg.Exec(ctx, []string{
		"psql", "-U", "postgres", "-d", "app", "-c", initSQL,
	}); err != nil {
		pg.Terminate(ctx)
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	pgIP, err := pg.ContainerIP(ctx)
	if err != nil {
		pg.Terminate(ctx)
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("get postgres IP: %w", err)
	}

	pgrst, err := testcontainers.Run(ctx, "postgrest/postgrest:v12.2.3",
		testcontainers.WithExposedPorts("3000/tcp"),
		network.WithNetwork([]string{"postgrest"}, testNet),
		testcontainers.WithEnv(map[string]string{
			"PGRST_DB_URI":       fmt.Sprintf("postgres://postgres:postgres@%s:5432/app", pgIP),
			"PGRST_DB_SCHEMAS":   "public",
			"PGRST_DB_ANON_ROLE": "web_anon",
			"PGRST_JWT_SECRET":   jwtSecret,
		}),
		testcontainers.WithWaitStrategy(
			wait.ForListeningPort("3000/tcp").WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		pg.Terminate(ctx)
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("start postgrest: %w", err)
	}

	mappedPort, err := pgrst.MappedPort(ctx, "3000/tcp")
	if err != nil {
		pgrst.Terminate(ctx)
		pg.Terminate(ctx)
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("get postgrest mapped port: %w", err)
	}
	host, err := pgrst.Host(ctx)
	if err != nil {
		pgrst.Terminate(ctx)
		pg.Terminate(ctx)
		testNet.Remove(ctx)
		cancel()
		return nil, fmt.Errorf("get postgrest host: %w", err)
	}

	return &RestEnv{
		postgres:  pg,
		postgrest: pgrst,
		network:   testNet,
		cancel:    cancel,
		url:       fmt.Sprintf("http://%s:%s", host, mappedPort.Port()),
	}, nil
}
