package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
)

func TestComputeSummary_WorkedExample(t *testing.T) {
	env := setupTestServer(t)
	revenue := env.createAccount(t, "Fees", "revenue")
	expense := env.createAccount(t, "Court rental", "expense")

	env.createPosting(t, revenue.ID, "2024-01-05", "50", "")
	env.createPosting(t, expense.ID, "2024-01-10", "20", "")
	env.createPosting(t, revenue.ID, "2024-01-15", "30", "")

	resp, err := env.ledger.ComputeSummary(context.Background(), connect.NewRequest(&api.ComputeSummaryRequest{
		LedgerFilter: api.LedgerFilter{
			StartDate: datePtr(t, "2024-01-10"),
			EndDate:   datePtr(t, "2024-01-31"),
		},
	}))
	require.NoError(t, err)

	assert.True(t, resp.Msg.Loaded)
	assertDecimal(t, "150", resp.Msg.OpeningBalance)
	assertDecimal(t, "30", resp.Msg.TotalRevenue)
	assertDecimal(t, "20", resp.Msg.TotalExpense)
	assertDecimal(t, "160", resp.Msg.ClosingBalance)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.SummariesComputed))
}

func TestComputeSummary_NoStartDate(t *testing.T) {
	env := setupTestServer(t)
	revenue := env.createAccount(t, "Fees", "revenue")
	env.createPosting(t, revenue.ID, "2024-01-05", "50", "")

	resp, err := env.ledger.ComputeSummary(context.Background(), connect.NewRequest(&api.ComputeSummaryRequest{}))
	require.NoError(t, err)

	assert.False(t, resp.Msg.Loaded)
	assert.True(t, resp.Msg.ClosingBalance.IsZero())
	assert.Equal(t, 0.0, testutil.ToFloat64(env.metrics.SummariesComputed))
}

func TestComputeSummary_InvalidGroup(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.ledger.ComputeSummary(context.Background(), connect.NewRequest(&api.ComputeSummaryRequest{
		LedgerFilter: api.LedgerFilter{StartDate: datePtr(t, "2024-01-01"), Group: "assets"},
	}))
	assertKind(t, err, apperr.KindValidation)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestListPostings_RunningBalance(t *testing.T) {
	env := setupTestServer(t)
	revenue := env.createAccount(t, "Fees", "revenue")
	expense := env.createAccount(t, "Court rental", "expense")

	env.createPosting(t, revenue.ID, "2024-01-05", "50", "Ze")
	env.createPosting(t, expense.ID, "2024-01-10", "20", "Arena")
	env.createPosting(t, revenue.ID, "2024-01-15", "30", "Ze")

	resp, err := env.ledger.ListPostings(context.Background(), connect.NewRequest(&api.ListPostingsRequest{
		LedgerFilter: api.LedgerFilter{StartDate: datePtr(t, "2024-01-10")},
	}))
	require.NoError(t, err)

	assertDecimal(t, "150", resp.Msg.OpeningBalance)
	require.Len(t, resp.Msg.Postings, 2)
	assert.Equal(t, "expense", resp.Msg.Postings[0].Group)
	assertDecimal(t, "130", *resp.Msg.Postings[0].Balance)
	assertDecimal(t, "160", *resp.Msg.Postings[1].Balance)

	t.Run("filter keeps unfiltered opening", func(t *testing.T) {
		resp, err := env.ledger.ListPostings(context.Background(), connect.NewRequest(&api.ListPostingsRequest{
			LedgerFilter: api.LedgerFilter{StartDate: datePtr(t, "2024-01-10"), Beneficiary: "Ze"},
		}))
		require.NoError(t, err)

		assertDecimal(t, "150", resp.Msg.OpeningBalance)
		require.Len(t, resp.Msg.Postings, 1)
		assertDecimal(t, "180", *resp.Msg.Postings[0].Balance)
	})

	t.Run("no start lists everything from base", func(t *testing.T) {
		resp, err := env.ledger.ListPostings(context.Background(), connect.NewRequest(&api.ListPostingsRequest{}))
		require.NoError(t, err)

		assertDecimal(t, "100", resp.Msg.OpeningBalance)
		require.Len(t, resp.Msg.Postings, 3)
		assertDecimal(t, "160", *resp.Msg.Postings[2].Balance)
	})
}

func TestCreatePosting_Validation(t *testing.T) {
	env := setupTestServer(t)
	revenue := env.createAccount(t, "Fees", "revenue")

	tests := []struct {
		name string
		req  *api.CreatePostingRequest
		kind apperr.Kind
	}{
		{
			name: "negative value",
			req:  &api.CreatePostingRequest{AccountID: revenue.ID, Date: date(t, "2024-01-01"), Value: dec("-1")},
			kind: apperr.KindValidation,
		},
		{
			name: "missing date",
			req:  &api.CreatePostingRequest{AccountID: revenue.ID, Value: dec("1")},
			kind: apperr.KindValidation,
		},
		{
			name: "bad reference month",
			req:  &api.CreatePostingRequest{AccountID: revenue.ID, Date: date(t, "2024-01-01"), Value: dec("1"), ReferenceMonth: "2024-13"},
			kind: apperr.KindValidation,
		},
		{
			name: "unknown account",
			req:  &api.CreatePostingRequest{AccountID: "nope", Date: date(t, "2024-01-01"), Value: dec("1")},
			kind: apperr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.CreatePosting(context.Background(), connect.NewRequest(tt.req))
			assertKind(t, err, tt.kind)
		})
	}
}

func TestCreatePosting_ZeroValueAllowed(t *testing.T) {
	env := setupTestServer(t)
	revenue := env.createAccount(t, "Fees", "revenue")

	p := env.createPosting(t, revenue.ID, "2024-01-01", "0", "")
	assert.True(t, p.Value.IsZero())
	assert.Equal(t, "revenue", p.Group)
}

func TestUpdateAccount_RegroupsPostings(t *testing.T) {
	env := setupTestServer(t)
	account := env.createAccount(t, "Misc", "revenue")
	env.createPosting(t, account.ID, "2024-01-05", "10", "")

	_, err := env.ledger.UpdateAccount(context.Background(), connect.NewRequest(&api.UpdateAccountRequest{
		ID:          account.ID,
		Description: "Misc",
		Group:       "expense",
	}))
	require.NoError(t, err)

	resp, err := env.ledger.ComputeSummary(context.Background(), connect.NewRequest(&api.ComputeSummaryRequest{
		LedgerFilter: api.LedgerFilter{StartDate: datePtr(t, "2024-01-01")},
	}))
	require.NoError(t, err)
	assertDecimal(t, "10", resp.Msg.TotalExpense)
	assertDecimal(t, "90", resp.Msg.ClosingBalance)
}

func TestDeleteAccount_WithPostings(t *testing.T) {
	env := setupTestServer(t)
	account := env.createAccount(t, "Fees", "revenue")
	env.createPosting(t, account.ID, "2024-01-05", "10", "")

	_, err := env.ledger.DeleteAccount(context.Background(), connect.NewRequest(&api.DeleteAccountRequest{ID: account.ID}))
	assertKind(t, err, apperr.KindUnavailable)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	empty := env.createAccount(t, "Unused", "expense")
	_, err = env.ledger.DeleteAccount(context.Background(), connect.NewRequest(&api.DeleteAccountRequest{ID: empty.ID}))
	require.NoError(t, err)
}

// payFee generates a fee for a fresh member and pays it, returning the fee
// and the posting that paid it.
func payFee(t *testing.T, env *testEnv) (*api.Fee, *api.Posting) {
	t.Helper()
	ctx := context.Background()
	env.createMember(t, "José", "Ze")
	account := env.createAccount(t, "Fees", "revenue")

	gen, err := env.fees.GenerateMonthlyFees(ctx, connect.NewRequest(&api.GenerateMonthlyFeesRequest{ReferenceMonth: "2024-03"}))
	require.NoError(t, err)
	require.Len(t, gen.Msg.Fees, 1)

	paid, err := env.fees.PayFee(ctx, connect.NewRequest(&api.PayFeeRequest{
		FeeID:     gen.Msg.Fees[0].ID,
		PaidOn:    date(t, "2024-03-10"),
		AccountID: account.ID,
	}))
	require.NoError(t, err)
	return paid.Msg.Fee, paid.Msg.Posting
}

func TestDeletePosting_UnlinksFeeFirst(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	fee, posting := payFee(t, env)

	resp, err := env.ledger.DeletePosting(ctx, connect.NewRequest(&api.DeletePostingRequest{ID: posting.ID}))
	require.NoError(t, err)
	assert.Equal(t, fee.ID, resp.Msg.UnlinkedFeeID)

	stored, err := env.store.GetFee(ctx, fee.ID)
	require.NoError(t, err)
	assert.False(t, stored.Paid())
	assert.Empty(t, stored.PostingID)
	assert.Nil(t, stored.PaidOn)

	_, err = env.store.GetPosting(ctx, posting.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeletePosting_Unlinked(t *testing.T) {
	env := setupTestServer(t)
	account := env.createAccount(t, "Court rental", "expense")
	p := env.createPosting(t, account.ID, "2024-01-05", "10", "")

	resp, err := env.ledger.DeletePosting(context.Background(), connect.NewRequest(&api.DeletePostingRequest{ID: p.ID}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.UnlinkedFeeID)

	_, err = env.ledger.DeletePosting(context.Background(), connect.NewRequest(&api.DeletePostingRequest{ID: p.ID}))
	assertKind(t, err, apperr.KindNotFound)
}

func TestDeletePosting_FailureLeavesFeeLinked(t *testing.T) {
	tests := []struct {
		name  string
		op    string
		table string
	}{
		{"unlinking the fee fails", "UPDATE", "monthly_fees"},
		{"deleting the posting fails", "DELETE", "postings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestServer(t)
			ctx := context.Background()
			fee, posting := payFee(t, env)
			env.failWrites(t, tt.op, tt.table)

			_, err := env.ledger.DeletePosting(ctx, connect.NewRequest(&api.DeletePostingRequest{ID: posting.ID}))
			assertKind(t, err, apperr.KindTransient)
			assert.Equal(t, connect.CodeUnavailable, connect.CodeOf(err))

			kept, err := env.store.GetPosting(ctx, posting.ID)
			require.NoError(t, err)
			assert.Equal(t, models.AccountGroupRevenue, kept.Group)

			stored, err := env.store.GetFee(ctx, fee.ID)
			require.NoError(t, err)
			assert.True(t, stored.Paid())
			assert.Equal(t, posting.ID, stored.PostingID)
		})
	}
}
