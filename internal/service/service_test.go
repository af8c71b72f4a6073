package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/middleware"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage/blob"
	"github.com/mmynk/clubhouse/internal/storage/sqlstore"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// testAuthInterceptor returns a Connect interceptor that runs every call as an admin.
func testAuthInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			ctx = middleware.WithPrincipal(ctx, &middleware.Principal{UserID: "admin", Admin: true})
			return next(ctx, req)
		}
	}
}

type testEnv struct {
	store   *sqlstore.Store
	dbPath  string
	metrics *metrics.Registry
	blobDir string

	members *apiconnect.MemberServiceClient
	ledger  *apiconnect.LedgerServiceClient
	fees    *apiconnect.FeeServiceClient
	games   *apiconnect.GameServiceClient
	rsvp    *apiconnect.RSVPServiceClient
}

var testBase = decimal.NewFromInt(100)

// setupTestServer creates a test server over a temporary SQLite database.
func setupTestServer(t *testing.T) *testEnv {
	return setupTestServerWithLedgerStore(t, nil)
}

// setupTestServerWithLedgerStore lets a test wrap the store the ledger and fee
// services write through.
func setupTestServerWithLedgerStore(t *testing.T, wrap func(*sqlstore.Store) FeeStore) *testEnv {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := sqlstore.Open(context.Background(), sqlstore.DriverSQLite,
		dbPath, sqlstore.Options{QueryTimeout: 5 * time.Second})
	require.NoError(t, err)

	var ledgerStore FeeStore = store
	if wrap != nil {
		ledgerStore = wrap(store)
	}

	blobDir := t.TempDir()
	blobs, err := blob.NewLocalStore(blobDir, "http://club.test/files")
	require.NoError(t, err)

	m := metrics.NewRegistry()
	interceptors := connect.WithInterceptors(testAuthInterceptor())

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewMemberServiceHandler(NewMemberService(store, blobs), interceptors))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(ledgerStore, testBase, m), interceptors))
	mux.Handle(apiconnect.NewFeeServiceHandler(NewFeeService(ledgerStore, FeeDefaults{Amount: decimal.NewFromInt(50)}), interceptors))
	mux.Handle(apiconnect.NewGameServiceHandler(NewGameService(store, "http://club.test/"), interceptors))
	mux.Handle(apiconnect.NewRSVPServiceHandler(NewRSVPService(store, 1500*time.Millisecond, m)))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:   store,
		dbPath:  dbPath,
		metrics: m,
		blobDir: blobDir,
		members: apiconnect.NewMemberServiceClient(server.Client(), server.URL),
		ledger:  apiconnect.NewLedgerServiceClient(server.Client(), server.URL),
		fees:    apiconnect.NewFeeServiceClient(server.Client(), server.URL),
		games:   apiconnect.NewGameServiceClient(server.Client(), server.URL),
		rsvp:    apiconnect.NewRSVPServiceClient(server.Client(), server.URL),
	}
}

// failWrites installs a trigger that aborts every op ("INSERT", "UPDATE" or
// "DELETE") on table, so the statement fails inside whatever transaction
// runs it.
func (e *testEnv) failWrites(t *testing.T, op, table string) {
	t.Helper()

	db, err := sql.Open("sqlite", e.dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(
		`CREATE TRIGGER fail_%[1]s_%[2]s BEFORE %[1]s ON %[2]s BEGIN SELECT RAISE(ABORT, 'database is locked'); END`,
		op, table))
	require.NoError(t, err)
}

func date(t *testing.T, s string) openapi_types.Date {
	t.Helper()
	d, err := models.ParseDate(s)
	require.NoError(t, err)
	return openapi_types.Date{Time: d}
}

func datePtr(t *testing.T, s string) *openapi_types.Date {
	d := date(t, s)
	return &d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apiconnect.ErrorKind(err), "error: %v", err)
}

func (e *testEnv) createMember(t *testing.T, name, nickname string) *api.Member {
	t.Helper()
	resp, err := e.members.CreateMember(context.Background(), connect.NewRequest(&api.CreateMemberRequest{
		Name:     name,
		Nickname: nickname,
	}))
	require.NoError(t, err)
	return resp.Msg.Member
}

func (e *testEnv) createAccount(t *testing.T, description, group string) *api.Account {
	t.Helper()
	resp, err := e.ledger.CreateAccount(context.Background(), connect.NewRequest(&api.CreateAccountRequest{
		Description: description,
		Group:       group,
	}))
	require.NoError(t, err)
	return resp.Msg.Account
}

func (e *testEnv) createPosting(t *testing.T, accountID, day, value, beneficiary string) *api.Posting {
	t.Helper()
	resp, err := e.ledger.CreatePosting(context.Background(), connect.NewRequest(&api.CreatePostingRequest{
		AccountID:   accountID,
		Date:        date(t, day),
		Value:       dec(value),
		Beneficiary: beneficiary,
	}))
	require.NoError(t, err)
	return resp.Msg.Posting
}

func (e *testEnv) createGame(t *testing.T, day string) *api.Game {
	t.Helper()
	resp, err := e.games.CreateGame(context.Background(), connect.NewRequest(&api.CreateGameRequest{
		Date:     date(t, day),
		Time:     "19:30",
		Location: "Court 2",
	}))
	require.NoError(t, err)
	return resp.Msg.Game
}
