package account

import (
	"context"
	"errors"
	"time"

	accountDomain "peerlend/internal/domain/account"
	"peerlend/internal/domain/uow"
	walletDomain "peerlend/internal/domain/wallet"
	"peerlend/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const defaultCreditScore = 650

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

type RegisterInput struct {
	Kind         string          `json:"kind"`
	FullName     string          `json:"full_name"`
	CreditScore  int             `json:"credit_score,omitempty"`
	AnnualIncome decimal.Decimal `json:"annual_income,omitempty"`
}

type AccountDTO struct {
	AccountID   string    `json:"account_id"`
	Kind        string    `json:"kind"`
	FullName    string    `json:"full_name"`
	KYCVerified bool      `json:"kyc_verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// Register constructs the whole aggregate (account, wallet, and the
// kind-specific profile) in one transaction. There is no side channel
// that creates sub-records later; an account that exists is complete.
func (u *Usecase) Register(ctx context.Context, in RegisterInput) (*AccountDTO, error) {
	kind := accountDomain.Kind(in.Kind)
	if kind != accountDomain.KindInvestor && kind != accountDomain.KindBorrower {
		return nil, errors.New("kind must be investor or borrower")
	}

	a := &accountDomain.Account{
		AccountID: id.NewID32(),
		Kind:      kind,
		FullName:  in.FullName,
	}

	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, a); err != nil {
			return err
		}
		w := &walletDomain.Wallet{OwnerID: a.AccountID, Balance: decimal.Zero}
		if err := r.Wallets.Create(ctx, w); err != nil {
			return err
		}
		switch kind {
		case accountDomain.KindInvestor:
			return r.Accounts.CreateInvestorProfile(ctx, &accountDomain.InvestorProfile{
				AccountID:     a.ID,
				TotalInvested: decimal.Zero,
				TotalEarnings: decimal.Zero,
			})
		default:
			score := in.CreditScore
			if score == 0 {
				score = defaultCreditScore
			}
			return r.Accounts.CreateBorrowerProfile(ctx, &accountDomain.BorrowerProfile{
				AccountID:    a.ID,
				CreditScore:  score,
				AnnualIncome: in.AnnualIncome,
			})
		}
	})
	if err != nil {
		return nil, err
	}

	return &AccountDTO{
		AccountID:   a.AccountID,
		Kind:        string(a.Kind),
		FullName:    a.FullName,
		KYCVerified: a.KYCVerified,
		CreatedAt:   a.CreatedAt,
	}, nil
}

// Resolve classifies a caller once at the boundary.
func (u *Usecase) Resolve(ctx context.Context, accountID string) (*accountDomain.Actor, error) {
	var actor *accountDomain.Actor
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		actor, err = r.Accounts.ResolveActor(ctx, accountID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return accountDomain.ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return actor, nil
}
