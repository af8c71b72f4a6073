package api

import (
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// User is the public view of a login.
type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Nickname    string `json:"nickname,omitempty"`
	IsAdmin     bool   `json:"isAdmin"`
	CreatedAt   int64  `json:"createdAt"`
}

type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Nickname  string `json:"nickname"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PhotoURL  string `json:"photoUrl,omitempty"`
	Active    bool   `json:"active"`
	CreatedAt int64  `json:"createdAt"`
}

type Account struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Group       string `json:"group"`
	CreatedAt   int64  `json:"createdAt"`
}

type Posting struct {
	ID             string             `json:"id"`
	AccountID      string             `json:"accountId"`
	Date           openapi_types.Date `json:"date"`
	Value          decimal.Decimal    `json:"value"`
	Group          string             `json:"group"`
	Beneficiary    string             `json:"beneficiary,omitempty"`
	ReferenceMonth string             `json:"referenceMonth,omitempty"`
	Description    string             `json:"description,omitempty"`
	CreatedAt      int64              `json:"createdAt"`

	// Balance is the running balance after this posting. Only set by ListPostings.
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

type Fee struct {
	ID             string              `json:"id"`
	MemberID       string              `json:"memberId"`
	ReferenceMonth string              `json:"referenceMonth"`
	Amount         decimal.Decimal     `json:"amount"`
	PaidOn         *openapi_types.Date `json:"paidOn,omitempty"`
	PostingID      string              `json:"postingId,omitempty"`
	CreatedAt      int64               `json:"createdAt"`
}

type Game struct {
	ID        string             `json:"id"`
	Date      openapi_types.Date `json:"date"`
	Time      string             `json:"time"`
	Location  string             `json:"location"`
	Status    string             `json:"status"`
	Notes     string             `json:"notes,omitempty"`
	CreatedAt int64              `json:"createdAt"`
}

type Confirmation struct {
	ID             string `json:"id"`
	GameID         string `json:"gameId"`
	MemberID       string `json:"memberId"`
	MemberNickname string `json:"memberNickname,omitempty"`
	Status         string `json:"status"`
	CreatedAt      int64  `json:"createdAt"`
}

// Auth

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=100"`
	Nickname    string `json:"nickname" validate:"omitempty,max=50"`
	Password    string `json:"password" validate:"required"`
}

type RegisterResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Members

type CreateMemberRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Nickname string `json:"nickname" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Active   *bool  `json:"active"` // defaults to true
}

type CreateMemberResponse struct {
	Member *Member `json:"member"`
}

type GetMemberRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetMemberResponse struct {
	Member *Member `json:"member"`
}

type ListMembersRequest struct {
	ActiveOnly bool `json:"activeOnly"`
}

type ListMembersResponse struct {
	Members []*Member `json:"members"`
}

type UpdateMemberRequest struct {
	ID       string `json:"id" validate:"required"`
	Name     string `json:"name" validate:"required,max=100"`
	Nickname string `json:"nickname" validate:"required,max=50"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"omitempty,max=30"`
	Active   bool   `json:"active"`
}

type UpdateMemberResponse struct {
	Member *Member `json:"member"`
}

type DeleteMemberRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteMemberResponse struct{}

type FindMemberByNicknameRequest struct {
	Nickname string `json:"nickname" validate:"required"`
}

type FindMemberByNicknameResponse struct {
	Found  bool    `json:"found"`
	Member *Member `json:"member,omitempty"`
}

type UploadMemberPhotoRequest struct {
	MemberID    string `json:"memberId" validate:"required"`
	ContentType string `json:"contentType" validate:"required,oneof=image/png image/jpeg"`
	Data        []byte `json:"data" validate:"required,max=5242880"`
}

type UploadMemberPhotoResponse struct {
	Member *Member `json:"member"`
}

// Ledger

type CreateAccountRequest struct {
	Description string `json:"description" validate:"required,max=100"`
	Group       string `json:"group" validate:"required,oneof=revenue expense"`
}

type CreateAccountResponse struct {
	Account *Account `json:"account"`
}

type ListAccountsRequest struct{}

type ListAccountsResponse struct {
	Accounts []*Account `json:"accounts"`
}

type UpdateAccountRequest struct {
	ID          string `json:"id" validate:"required"`
	Description string `json:"description" validate:"required,max=100"`
	Group       string `json:"group" validate:"required,oneof=revenue expense"`
}

type UpdateAccountResponse struct {
	Account *Account `json:"account"`
}

type DeleteAccountRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteAccountResponse struct{}

type CreatePostingRequest struct {
	AccountID      string             `json:"accountId" validate:"required"`
	Date           openapi_types.Date `json:"date" validate:"required"`
	Value          decimal.Decimal    `json:"value"`
	Beneficiary    string             `json:"beneficiary" validate:"omitempty,max=100"`
	ReferenceMonth string             `json:"referenceMonth" validate:"omitempty,yearmonth"`
	Description    string             `json:"description" validate:"omitempty,max=500"`
}

type CreatePostingResponse struct {
	Posting *Posting `json:"posting"`
}

type UpdatePostingRequest struct {
	ID             string             `json:"id" validate:"required"`
	AccountID      string             `json:"accountId" validate:"required"`
	Date           openapi_types.Date `json:"date" validate:"required"`
	Value          decimal.Decimal    `json:"value"`
	Beneficiary    string             `json:"beneficiary" validate:"omitempty,max=100"`
	ReferenceMonth string             `json:"referenceMonth" validate:"omitempty,yearmonth"`
	Description    string             `json:"description" validate:"omitempty,max=500"`
}

type UpdatePostingResponse struct {
	Posting *Posting `json:"posting"`
}

type DeletePostingRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeletePostingResponse struct {
	// UnlinkedFeeID is the fee that was marked unpaid before the posting was removed.
	UnlinkedFeeID string `json:"unlinkedFeeId,omitempty"`
}

// LedgerFilter selects a window of the ledger. A missing start date means
// "nothing loaded yet"; a missing end date leaves the window open.
type LedgerFilter struct {
	StartDate   *openapi_types.Date `json:"startDate"`
	EndDate     *openapi_types.Date `json:"endDate"`
	AccountID   string              `json:"accountId"`
	Group       string              `json:"group" validate:"omitempty,oneof=revenue expense"`
	Beneficiary string              `json:"beneficiary"`
}

type ListPostingsRequest struct {
	LedgerFilter
}

type ListPostingsResponse struct {
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	Postings       []*Posting      `json:"postings"`
}

type ComputeSummaryRequest struct {
	LedgerFilter
}

type ComputeSummaryResponse struct {
	// Loaded is false when no start date was given; the totals are then zero.
	Loaded         bool            `json:"loaded"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalExpense   decimal.Decimal `json:"totalExpense"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// Fees

type GenerateMonthlyFeesRequest struct {
	ReferenceMonth string           `json:"referenceMonth" validate:"required,yearmonth"`
	Amount         *decimal.Decimal `json:"amount"` // defaults to the configured monthly fee
}

type GenerateMonthlyFeesResponse struct {
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
	Fees    []*Fee `json:"fees"`
}

type ListFeesRequest struct {
	MemberID       string `json:"memberId"`
	ReferenceMonth string `json:"referenceMonth" validate:"omitempty,yearmonth"`
	UnpaidOnly     bool   `json:"unpaidOnly"`
}

type ListFeesResponse struct {
	Fees []*Fee `json:"fees"`
}

type PayFeeRequest struct {
	FeeID     string             `json:"feeId" validate:"required"`
	PaidOn    openapi_types.Date `json:"paidOn" validate:"required"`
	AccountID string             `json:"accountId"` // defaults to the configured fee account
}

type PayFeeResponse struct {
	Fee     *Fee     `json:"fee"`
	Posting *Posting `json:"posting"`
}

type GetFeeReportRequest struct {
	ReferenceMonth string `json:"referenceMonth" validate:"omitempty,yearmonth"`
}

type GetFeeReportResponse struct {
	PaidCount   int             `json:"paidCount"`
	UnpaidCount int             `json:"unpaidCount"`
	Paid        decimal.Decimal `json:"paid"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// Games

type CreateGameRequest struct {
	Date     openapi_types.Date `json:"date" validate:"required"`
	Time     string             `json:"time" validate:"required,datetime=15:04"`
	Location string             `json:"location" validate:"required,max=200"`
	Notes    string             `json:"notes" validate:"omitempty,max=1000"`
}

type CreateGameResponse struct {
	Game *Game `json:"game"`
}

type GetGameRequest struct {
	ID string `json:"id" validate:"required"`
}

type GetGameResponse struct {
	Game *Game `json:"game"`
}

type ListGamesRequest struct {
	From   *openapi_types.Date `json:"from"`
	To     *openapi_types.Date `json:"to"`
	Status string              `json:"status" validate:"omitempty,oneof=scheduled played cancelled"`
}

type ListGamesResponse struct {
	Games []*Game `json:"games"`
}

type UpdateGameRequest struct {
	ID       string             `json:"id" validate:"required"`
	Date     openapi_types.Date `json:"date" validate:"required"`
	Time     string             `json:"time" validate:"required,datetime=15:04"`
	Location string             `json:"location" validate:"required,max=200"`
	Status   string             `json:"status" validate:"required,oneof=scheduled played cancelled"`
	Notes    string             `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateGameResponse struct {
	Game *Game `json:"game"`
}

type DeleteGameRequest struct {
	ID string `json:"id" validate:"required"`
}

type DeleteGameResponse struct{}

type ListConfirmationsRequest struct {
	GameID string `json:"gameId" validate:"required"`
}

type ListConfirmationsResponse struct {
	Confirmations []*Confirmation `json:"confirmations"`
}

type GetRSVPLinkRequest struct {
	GameID string `json:"gameId" validate:"required"`
	// QRSize is the PNG edge in pixels; 0 means 256.
	QRSize int `json:"qrSize" validate:"omitempty,min=64,max=1024"`
}

type GetRSVPLinkResponse struct {
	URL       string `json:"url"`
	QRCodePNG []byte `json:"qrCodePng"`
}

// RSVP

// RSVPState is what the public confirmation page renders.
type RSVPState struct {
	Phase       string `json:"phase"`
	Game        *Game  `json:"game,omitempty"`
	MemberName  string `json:"memberName,omitempty"`
	Message     string `json:"message,omitempty"`
	ErrorKind   string `json:"errorKind,omitempty"`
	Recoverable bool   `json:"recoverable"`

	// RedirectAfterMs is set once confirmed.
	RedirectAfterMs int64 `json:"redirectAfterMs,omitempty"`
}

type GetInvitationRequest struct {
	GameID string `json:"gameId" validate:"required"`
}

type GetInvitationResponse struct {
	State *RSVPState `json:"state"`
}

type ConfirmAttendanceRequest struct {
	GameID   string `json:"gameId" validate:"required"`
	Nickname string `json:"nickname"`
}

type ConfirmAttendanceResponse struct {
	State *RSVPState `json:"state"`
}
