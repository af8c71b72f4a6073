package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage/sqlstore"
)

// seedLedger points the CLI at a fresh database holding:
//
//	2024-02-15 fees    revenue 50
//	2024-03-05 fees    revenue 30 (Ze)
//	2024-03-10 courts  expense 20
//	2024-04-02 fees    revenue 999
//
// with a base balance of 100.
func seedLedger(t *testing.T) *sqlstore.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("CLUBHOUSE_DATABASE_DSN", dsn)
	t.Setenv("CLUBHOUSE_LEDGER_BASE_INITIAL_BALANCE", "100")

	ctx := context.Background()
	store, err := sqlstore.Open(ctx, sqlstore.DriverSQLite, dsn, sqlstore.Options{QueryTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	fees := &models.Account{ID: "acc-fees", Description: "Monthly fees", Group: models.AccountGroupRevenue}
	courts := &models.Account{ID: "acc-courts", Description: "Court rental", Group: models.AccountGroupExpense}
	require.NoError(t, store.CreateAccount(ctx, fees))
	require.NoError(t, store.CreateAccount(ctx, courts))

	for _, p := range []struct {
		account     *models.Account
		date        string
		value       int64
		beneficiary string
	}{
		{fees, "2024-02-15", 50, ""},
		{fees, "2024-03-05", 30, "Ze"},
		{courts, "2024-03-10", 20, ""},
		{fees, "2024-04-02", 999, ""},
	} {
		d, err := models.ParseDate(p.date)
		require.NoError(t, err)
		require.NoError(t, store.CreatePosting(ctx, &models.Posting{
			AccountID:   p.account.ID,
			Date:        d,
			Value:       decimal.NewFromInt(p.value),
			Group:       p.account.Group,
			Beneficiary: p.beneficiary,
		}))
	}

	return store
}

func TestSummaryText(t *testing.T) {
	seedLedger(t)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name string
		args []string
	}{
		{"summary_march", []string{"summary", "--from", "2024-03-01", "--to", "2024-03-31"}},
		{"summary_revenue_open", []string{"summary", "--from", "2024-03-01", "--group", "revenue"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			require.NoError(t, err)
			g.Assert(t, tt.name, []byte(out))
		})
	}
}

func TestSummaryJSON(t *testing.T) {
	seedLedger(t)

	out, err := run(t, "summary", "--from", "2024-03-01", "--to", "2024-03-31", "--format", "json")
	require.NoError(t, err)

	var report SummaryReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, SummaryReport{
		From:           "2024-03-01",
		To:             "2024-03-31",
		OpeningBalance: "150.00",
		TotalRevenue:   "30.00",
		TotalExpense:   "20.00",
		ClosingBalance: "160.00",
	}, report)
}

func TestSummaryYAMLWithBeneficiary(t *testing.T) {
	seedLedger(t)

	out, err := run(t, "summary", "--from", "2024-03-01", "--beneficiary", "Ze", "--format", "yaml")
	require.NoError(t, err)

	var report SummaryReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "150.00", report.OpeningBalance)
	assert.Equal(t, "30.00", report.TotalRevenue)
	assert.Equal(t, "0.00", report.TotalExpense)
	assert.Equal(t, "180.00", report.ClosingBalance)
	assert.Equal(t, "Ze", report.Beneficiary)
}

func TestSummaryRejectsBadFlags(t *testing.T) {
	seedLedger(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing from", []string{"summary"}, `required flag(s) "from" not set`},
		{"bad from", []string{"summary", "--from", "03/01/2024"}, "invalid --from"},
		{"to before from", []string{"summary", "--from", "2024-03-01", "--to", "2024-02-01"}, "is before --from"},
		{"bad group", []string{"summary", "--from", "2024-03-01", "--group", "assets"}, "invalid --group"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
