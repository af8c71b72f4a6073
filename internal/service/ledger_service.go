package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/calculator"
	"github.com/mmynk/clubhouse/internal/metrics"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// LedgerStore is the storage the ledger needs.
type LedgerStore interface {
	storage.AccountStore
	storage.PostingStore
}

// LedgerService implements the Connect LedgerService.
type LedgerService struct {
	store    LedgerStore
	base     decimal.Decimal
	metrics  *metrics.Registry
	validate *ValidationHelper
}

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a LedgerService. base is the configured balance the
// ledger starts from; m may be nil.
func NewLedgerService(store LedgerStore, base decimal.Decimal, m *metrics.Registry) *LedgerService {
	return &LedgerService{store: store, base: base, metrics: m, validate: NewValidationHelper()}
}

// CreateAccount adds an account to the chart.
func (s *LedgerService) CreateAccount(ctx context.Context, req *connect.Request[api.CreateAccountRequest]) (*connect.Response[api.CreateAccountResponse], error) {
	slog.Info("CreateAccount request received", "description", req.Msg.Description, "group", req.Msg.Group)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	account := &models.Account{
		Description: req.Msg.Description,
		Group:       models.AccountGroup(req.Msg.Group),
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, toConnectError("CreateAccount", err)
	}

	slog.Info("Account created", "account_id", account.ID)
	return connect.NewResponse(&api.CreateAccountResponse{Account: toAccount(account)}), nil
}

// ListAccounts returns the chart of accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, req *connect.Request[api.ListAccountsRequest]) (*connect.Response[api.ListAccountsResponse], error) {
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, toConnectError("ListAccounts", err)
	}

	out := make([]*api.Account, len(accounts))
	for i := range accounts {
		out[i] = toAccount(&accounts[i])
	}
	return connect.NewResponse(&api.ListAccountsResponse{Accounts: out}), nil
}

// UpdateAccount renames or regroups an account. Regrouping moves every
// posting made against it to the new group.
func (s *LedgerService) UpdateAccount(ctx context.Context, req *connect.Request[api.UpdateAccountRequest]) (*connect.Response[api.UpdateAccountResponse], error) {
	slog.Info("UpdateAccount request received", "account_id", req.Msg.ID, "group", req.Msg.Group)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	account, err := s.store.GetAccount(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("UpdateAccount", err)
	}
	account.Description = req.Msg.Description
	account.Group = models.AccountGroup(req.Msg.Group)

	if err := s.store.UpdateAccount(ctx, account); err != nil {
		return nil, toConnectError("UpdateAccount", err)
	}

	slog.Info("Account updated", "account_id", account.ID)
	return connect.NewResponse(&api.UpdateAccountResponse{Account: toAccount(account)}), nil
}

// DeleteAccount removes an account that has no postings.
func (s *LedgerService) DeleteAccount(ctx context.Context, req *connect.Request[api.DeleteAccountRequest]) (*connect.Response[api.DeleteAccountResponse], error) {
	slog.Info("DeleteAccount request received", "account_id", req.Msg.ID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	if err := s.store.DeleteAccount(ctx, req.Msg.ID); err != nil {
		if errors.Is(err, storage.ErrReferenced) {
			err = apperr.Wrap(apperr.KindUnavailable, "account has postings", err)
		}
		return nil, toConnectError("DeleteAccount", err)
	}

	slog.Info("Account deleted", "account_id", req.Msg.ID)
	return connect.NewResponse(&api.DeleteAccountResponse{}), nil
}

// CreatePosting records a movement. The posting takes its group from the account.
func (s *LedgerService) CreatePosting(ctx context.Context, req *connect.Request[api.CreatePostingRequest]) (*connect.Response[api.CreatePostingResponse], error) {
	slog.Info("CreatePosting request received",
		"account_id", req.Msg.AccountID,
		"date", req.Msg.Date.String(),
		"value", req.Msg.Value.String(),
	)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}
	if err := checkValue(req.Msg.Value); err != nil {
		return nil, err
	}

	posting := &models.Posting{
		AccountID:      req.Msg.AccountID,
		Date:           fromDate(req.Msg.Date),
		Value:          req.Msg.Value,
		Beneficiary:    req.Msg.Beneficiary,
		ReferenceMonth: req.Msg.ReferenceMonth,
		Description:    req.Msg.Description,
	}
	if err := s.store.CreatePosting(ctx, posting); err != nil {
		return nil, toConnectError("CreatePosting", accountMissing(err))
	}

	slog.Info("Posting created", "posting_id", posting.ID, "group", posting.Group)
	return connect.NewResponse(&api.CreatePostingResponse{Posting: toPosting(posting)}), nil
}

// UpdatePosting replaces a posting's fields.
func (s *LedgerService) UpdatePosting(ctx context.Context, req *connect.Request[api.UpdatePostingRequest]) (*connect.Response[api.UpdatePostingResponse], error) {
	slog.Info("UpdatePosting request received", "posting_id", req.Msg.ID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}
	if err := checkValue(req.Msg.Value); err != nil {
		return nil, err
	}

	posting, err := s.store.GetPosting(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError("UpdatePosting", err)
	}
	posting.AccountID = req.Msg.AccountID
	posting.Date = fromDate(req.Msg.Date)
	posting.Value = req.Msg.Value
	posting.Beneficiary = req.Msg.Beneficiary
	posting.ReferenceMonth = req.Msg.ReferenceMonth
	posting.Description = req.Msg.Description

	if err := s.store.UpdatePosting(ctx, posting); err != nil {
		return nil, toConnectError("UpdatePosting", accountMissing(err))
	}

	slog.Info("Posting updated", "posting_id", posting.ID)
	return connect.NewResponse(&api.UpdatePostingResponse{Posting: toPosting(posting)}), nil
}

// DeletePosting removes a posting. If the posting paid a monthly fee, that
// fee is marked unpaid in the same transaction; when either step fails
// neither is applied, so no fee ever points at a missing posting and no fee
// is left unpaid for a posting that still exists.
func (s *LedgerService) DeletePosting(ctx context.Context, req *connect.Request[api.DeletePostingRequest]) (*connect.Response[api.DeletePostingResponse], error) {
	postingID := req.Msg.ID
	slog.Info("DeletePosting request received", "posting_id", postingID)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	unlinked, err := s.store.UnlinkAndDeletePosting(ctx, postingID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return nil, toConnectError("DeletePosting", err)
	case err != nil:
		slog.Error("DeletePosting failed - posting and fee left unchanged",
			"posting_id", postingID,
			"error", err,
		)
		return nil, toConnectError("DeletePosting", apperr.Transient("try again", err))
	}

	if unlinked != "" {
		slog.Info("Fee marked unpaid", "fee_id", unlinked, "posting_id", postingID)
	}
	slog.Info("Posting deleted", "posting_id", postingID)
	return connect.NewResponse(&api.DeletePostingResponse{UnlinkedFeeID: unlinked}), nil
}

// ListPostings returns the filtered window with a running balance on every
// row. The running balance starts from the unfiltered opening balance.
func (s *LedgerService) ListPostings(ctx context.Context, req *connect.Request[api.ListPostingsRequest]) (*connect.Response[api.ListPostingsResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	filter := toFilter(req.Msg.LedgerFilter)
	all, err := s.store.ListPostings(ctx, storage.PostingQuery{})
	if err != nil {
		return nil, toConnectError("ListPostings", err)
	}

	opening := s.base
	if !filter.StartDate.IsZero() {
		opening = calculator.OpeningBalance(all, s.base, filter.StartDate)
	}

	rows := calculator.RunningBalances(opening, calculator.Window(all, filter))
	out := make([]*api.Posting, len(rows))
	for i, row := range rows {
		out[i] = toPostingWithBalance(row)
	}

	slog.Info("ListPostings successful", "total", len(all), "window", len(out))
	return connect.NewResponse(&api.ListPostingsResponse{OpeningBalance: opening, Postings: out}), nil
}

// ComputeSummary returns opening balance, window totals and closing balance.
// Without a start date nothing is computed and Loaded is false.
func (s *LedgerService) ComputeSummary(ctx context.Context, req *connect.Request[api.ComputeSummaryRequest]) (*connect.Response[api.ComputeSummaryResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	filter := toFilter(req.Msg.LedgerFilter)
	if filter.StartDate.IsZero() {
		return connect.NewResponse(&api.ComputeSummaryResponse{}), nil
	}

	all, err := s.store.ListPostings(ctx, storage.PostingQuery{})
	if err != nil {
		return nil, toConnectError("ComputeSummary", err)
	}

	summary, ok := calculator.ComputeSummary(all, s.base, filter)
	if ok && s.metrics != nil {
		s.metrics.SummariesComputed.Inc()
	}

	slog.Info("ComputeSummary successful",
		"start", filter.StartDate.Format(models.DateLayout),
		"opening", summary.OpeningBalance.String(),
		"closing", summary.ClosingBalance.String(),
	)

	return connect.NewResponse(&api.ComputeSummaryResponse{
		Loaded:         ok,
		OpeningBalance: summary.OpeningBalance,
		TotalRevenue:   summary.TotalRevenue,
		TotalExpense:   summary.TotalExpense,
		ClosingBalance: summary.ClosingBalance,
	}), nil
}

func toFilter(f api.LedgerFilter) calculator.Filter {
	return calculator.Filter{
		StartDate:   fromOptionalDate(f.StartDate),
		EndDate:     fromOptionalDate(f.EndDate),
		AccountID:   f.AccountID,
		Group:       models.AccountGroup(f.Group),
		Beneficiary: f.Beneficiary,
	}
}

func checkValue(v decimal.Decimal) error {
	if v.IsNegative() {
		return apiconnect.NewError(
			apperr.Validation("value must not be negative"),
			map[string]string{"value": "must not be negative"},
		)
	}
	return nil
}

func accountMissing(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperr.Wrap(apperr.KindNotFound, "account or posting not found", err)
	}
	return err
}
