package mysql

import (
	"context"

	accountDomain "peerlend/internal/domain/account"

	"gorm.io/gorm"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Create(ctx context.Context, a *accountDomain.Account) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AccountRepository) GetByAccountID(ctx context.Context, accountID string) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("account_id = ?", accountID).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) CreateInvestorProfile(ctx context.Context, p *accountDomain.InvestorProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *AccountRepository) CreateBorrowerProfile(ctx context.Context, p *accountDomain.BorrowerProfile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *AccountRepository) GetInvestorProfile(ctx context.Context, accountNumericID uint64) (*accountDomain.InvestorProfile, error) {
	var out accountDomain.InvestorProfile
	res := r.db.WithContext(ctx).Where("account_id = ?", accountNumericID).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) GetBorrowerProfile(ctx context.Context, accountNumericID uint64) (*accountDomain.BorrowerProfile, error) {
	var out accountDomain.BorrowerProfile
	res := r.db.WithContext(ctx).Where("account_id = ?", accountNumericID).First(&out)
	return &out, res.Error
}

func (r *AccountRepository) SaveInvestorProfile(ctx context.Context, p *accountDomain.InvestorProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *AccountRepository) SaveBorrowerProfile(ctx context.Context, p *accountDomain.BorrowerProfile) error {
	return r.db.WithContext(ctx).Save(p).Error
}

// ResolveActor loads the account plus its kind-specific profile so callers
// classify a caller exactly once at the boundary.
func (r *AccountRepository) ResolveActor(ctx context.Context, accountID string) (*accountDomain.Actor, error) {
	a, err := r.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	actor := &accountDomain.Actor{Account: a}
	switch a.Kind {
	case accountDomain.KindInvestor:
		p, err := r.GetInvestorProfile(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		actor.Investor = p
	case accountDomain.KindBorrower:
		p, err := r.GetBorrowerProfile(ctx, a.ID)
		if err != nil {
			return nil, err
		}
		actor.Borrower = p
	}
	return actor, nil
}
