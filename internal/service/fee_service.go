package service

import (
	"context"
	"errors"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubhouse/internal/apperr"
	"github.com/mmynk/clubhouse/internal/calculator"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/internal/storage"
	"github.com/mmynk/clubhouse/pkg/api"
	"github.com/mmynk/clubhouse/pkg/api/apiconnect"
)

// FeeStore is the storage monthly fees need. Paying a fee writes a posting.
type FeeStore interface {
	storage.MemberStore
	storage.AccountStore
	storage.PostingStore
	storage.FeeStore
}

// FeeDefaults are the configured fallbacks for fee requests.
type FeeDefaults struct {
	// Amount is charged when GenerateMonthlyFees is called without one.
	Amount decimal.Decimal

	// AccountID receives fee payments when PayFee names no account.
	AccountID string
}

// FeeService implements the Connect FeeService.
type FeeService struct {
	store    FeeStore
	defaults FeeDefaults
	validate *ValidationHelper
}

var _ apiconnect.FeeServiceHandler = (*FeeService)(nil)

// NewFeeService creates a FeeService.
func NewFeeService(store FeeStore, defaults FeeDefaults) *FeeService {
	return &FeeService{store: store, defaults: defaults, validate: NewValidationHelper()}
}

// GenerateMonthlyFees charges every active member for the month. Members who
// already have a fee for that month are skipped, so the call can be repeated.
func (s *FeeService) GenerateMonthlyFees(ctx context.Context, req *connect.Request[api.GenerateMonthlyFeesRequest]) (*connect.Response[api.GenerateMonthlyFeesResponse], error) {
	slog.Info("GenerateMonthlyFees request received", "reference_month", req.Msg.ReferenceMonth)

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	amount := s.defaults.Amount
	if req.Msg.Amount != nil {
		amount = *req.Msg.Amount
	}
	if !amount.IsPositive() {
		return nil, apiconnect.NewError(
			apperr.Validation("amount must be positive"),
			map[string]string{"amount": "must be positive"},
		)
	}

	members, err := s.store.ListMembers(ctx, storage.MemberQuery{ActiveOnly: true})
	if err != nil {
		return nil, toConnectError("GenerateMonthlyFees", err)
	}

	resp := &api.GenerateMonthlyFeesResponse{Fees: []*api.Fee{}}
	for _, m := range members {
		fee := &models.MonthlyFee{
			MemberID:       m.ID,
			ReferenceMonth: req.Msg.ReferenceMonth,
			Amount:         amount,
		}
		err := s.store.CreateFee(ctx, fee)
		switch {
		case errors.Is(err, storage.ErrConflict):
			resp.Skipped++
			continue
		case err != nil:
			return nil, toConnectError("GenerateMonthlyFees", err)
		}
		resp.Created++
		resp.Fees = append(resp.Fees, toFee(fee))
	}

	slog.Info("GenerateMonthlyFees successful",
		"reference_month", req.Msg.ReferenceMonth,
		"created", resp.Created,
		"skipped", resp.Skipped,
	)
	return connect.NewResponse(resp), nil
}

// ListFees returns fees ordered by month, then member.
func (s *FeeService) ListFees(ctx context.Context, req *connect.Request[api.ListFeesRequest]) (*connect.Response[api.ListFeesResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	fees, err := s.store.ListFees(ctx, storage.FeeQuery{
		MemberID:       req.Msg.MemberID,
		ReferenceMonth: req.Msg.ReferenceMonth,
		UnpaidOnly:     req.Msg.UnpaidOnly,
	})
	if err != nil {
		return nil, toConnectError("ListFees", err)
	}

	out := make([]*api.Fee, len(fees))
	for i := range fees {
		out[i] = toFee(&fees[i])
	}
	return connect.NewResponse(&api.ListFeesResponse{Fees: out}), nil
}

// PayFee records the payment as a revenue posting and links it to the fee.
// If the fee cannot be linked the posting is removed again.
func (s *FeeService) PayFee(ctx context.Context, req *connect.Request[api.PayFeeRequest]) (*connect.Response[api.PayFeeResponse], error) {
	slog.Info("PayFee request received", "fee_id", req.Msg.FeeID, "paid_on", req.Msg.PaidOn.String())

	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	accountID := req.Msg.AccountID
	if accountID == "" {
		accountID = s.defaults.AccountID
	}
	if accountID == "" {
		return nil, apiconnect.NewError(
			apperr.Validation("no fee account configured"),
			map[string]string{"accountId": "required"},
		)
	}

	fee, err := s.store.GetFee(ctx, req.Msg.FeeID)
	if err != nil {
		return nil, toConnectError("PayFee", err)
	}
	if fee.Paid() {
		return nil, apiconnect.NewError(apperr.AlreadyExists("fee already paid"), nil)
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, toConnectError("PayFee", accountMissing(err))
	}
	if account.Group != models.AccountGroupRevenue {
		return nil, apiconnect.NewError(
			apperr.Validation("fee account must be a revenue account"),
			map[string]string{"accountId": "must be a revenue account"},
		)
	}

	member, err := s.store.GetMember(ctx, fee.MemberID)
	if err != nil {
		return nil, toConnectError("PayFee", err)
	}

	paidOn := fromDate(req.Msg.PaidOn)
	posting := &models.Posting{
		AccountID:      account.ID,
		Date:           paidOn,
		Value:          fee.Amount,
		Beneficiary:    member.Nickname,
		ReferenceMonth: fee.ReferenceMonth,
		Description:    "Monthly fee " + fee.ReferenceMonth,
	}
	if err := s.store.CreatePosting(ctx, posting); err != nil {
		return nil, toConnectError("PayFee", err)
	}

	if err := s.store.MarkFeePaid(ctx, fee.ID, paidOn, posting.ID); err != nil {
		slog.Error("PayFee failed - could not link posting", "fee_id", fee.ID, "posting_id", posting.ID, "error", err)
		if derr := s.store.DeletePosting(ctx, posting.ID); derr != nil {
			slog.Error("PayFee failed - orphaned posting left behind", "posting_id", posting.ID, "error", derr)
		}
		// Another payment linked the fee between the check above and here.
		if errors.Is(err, storage.ErrConflict) {
			return nil, apiconnect.NewError(apperr.Wrap(apperr.KindAlreadyExists, "fee already paid", err), nil)
		}
		return nil, toConnectError("PayFee", apperr.Transient("try again", err))
	}
	fee.PaidOn = &paidOn
	fee.PostingID = posting.ID

	slog.Info("Fee paid", "fee_id", fee.ID, "posting_id", posting.ID, "member", member.Nickname)
	return connect.NewResponse(&api.PayFeeResponse{Fee: toFee(fee), Posting: toPosting(posting)}), nil
}

// GetFeeReport totals paid and outstanding fees, optionally for one month.
func (s *FeeService) GetFeeReport(ctx context.Context, req *connect.Request[api.GetFeeReportRequest]) (*connect.Response[api.GetFeeReportResponse], error) {
	if err := s.validate.Validate(req.Msg); err != nil {
		return nil, err
	}

	fees, err := s.store.ListFees(ctx, storage.FeeQuery{ReferenceMonth: req.Msg.ReferenceMonth})
	if err != nil {
		return nil, toConnectError("GetFeeReport", err)
	}

	totals := calculator.FeeReport(fees)
	return connect.NewResponse(&api.GetFeeReportResponse{
		PaidCount:   totals.PaidCount,
		UnpaidCount: totals.UnpaidCount,
		Paid:        totals.Paid,
		Outstanding: totals.Outstanding,
	}), nil
}
