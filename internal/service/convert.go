package service

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/mmynk/clubhouse/internal/calculator"
	"github.com/mmynk/clubhouse/internal/models"
	"github.com/mmynk/clubhouse/pkg/api"
)

func toDate(t time.Time) openapi_types.Date {
	return openapi_types.Date{Time: models.StartOfDay(t)}
}

func fromDate(d openapi_types.Date) time.Time {
	return models.StartOfDay(d.Time)
}

func fromOptionalDate(d *openapi_types.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return fromDate(*d)
}

func toUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Nickname:    u.Nickname,
		IsAdmin:     u.IsAdmin,
		CreatedAt:   u.CreatedAt,
	}
}

func toMember(m *models.Member) *api.Member {
	return &api.Member{
		ID:        m.ID,
		Name:      m.Name,
		Nickname:  m.Nickname,
		Email:     m.Email,
		Phone:     m.Phone,
		PhotoURL:  m.PhotoURL,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
	}
}

func toAccount(a *models.Account) *api.Account {
	return &api.Account{
		ID:          a.ID,
		Description: a.Description,
		Group:       string(a.Group),
		CreatedAt:   a.CreatedAt,
	}
}

func toPosting(p *models.Posting) *api.Posting {
	return &api.Posting{
		ID:             p.ID,
		AccountID:      p.AccountID,
		Date:           toDate(p.Date),
		Value:          p.Value,
		Group:          string(p.Group),
		Beneficiary:    p.Beneficiary,
		ReferenceMonth: p.ReferenceMonth,
		Description:    p.Description,
		CreatedAt:      p.CreatedAt,
	}
}

func toPostingWithBalance(row calculator.PostingWithBalance) *api.Posting {
	p := toPosting(&row.Posting)
	balance := row.Balance
	p.Balance = &balance
	return p
}

func toFee(f *models.MonthlyFee) *api.Fee {
	out := &api.Fee{
		ID:             f.ID,
		MemberID:       f.MemberID,
		ReferenceMonth: f.ReferenceMonth,
		Amount:         f.Amount,
		PostingID:      f.PostingID,
		CreatedAt:      f.CreatedAt,
	}
	if f.PaidOn != nil {
		d := toDate(*f.PaidOn)
		out.PaidOn = &d
	}
	return out
}

func toGame(g *models.Game) *api.Game {
	return &api.Game{
		ID:        g.ID,
		Date:      toDate(g.Date),
		Time:      g.Time,
		Location:  g.Location,
		Status:    string(g.Status),
		Notes:     g.Notes,
		CreatedAt: g.CreatedAt,
	}
}
