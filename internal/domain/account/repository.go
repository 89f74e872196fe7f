package account

import "context"

type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByAccountID(ctx context.Context, accountID string) (*Account, error)
	CreateInvestorProfile(ctx context.Context, p *InvestorProfile) error
	CreateBorrowerProfile(ctx context.Context, p *BorrowerProfile) error
	GetInvestorProfile(ctx context.Context, accountNumericID uint64) (*InvestorProfile, error)
	GetBorrowerProfile(ctx context.Context, accountNumericID uint64) (*BorrowerProfile, error)
	SaveInvestorProfile(ctx context.Context, p *InvestorProfile) error
	SaveBorrowerProfile(ctx context.Context, p *BorrowerProfile) error
	// ResolveActor loads the account and its kind-specific profile in one go.
	ResolveActor(ctx context.Context, accountID string) (*Actor, error)
}
