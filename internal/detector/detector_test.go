package detector

import (
	"context"
	"time"

	"github.com/reshadx/fraudguard/internal/domain"
)

// fakeRepo is an in-memory Repository for detector tests.
type fakeRepo struct {
	profiles     map[string]*domain.UserProfile
	transactions []*domain.Transaction
	blacklist    map[string]bool
	whitelist    map[string]bool

	err error // injected into every lookup when set
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		profiles:  make(map[string]*domain.UserProfile),
		blacklist: make(map[string]bool),
		whitelist: make(map[string]bool),
	}
}

func (r *fakeRepo) SaveUserProfile(ctx context.Context, p *domain.UserProfile) error {
	r.profiles[p.UserID] = p
	return nil
}

func (r *fakeRepo) GetUserProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) SaveTransaction(ctx context.Context, tx *domain.Transaction) error {
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *fakeRepo) RecentTransactions(ctx context.Context, userID string, since time.Time) ([]*domain.Transaction, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.UserID == userID && tx.CreatedAt.After(since) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeRepo) CountTransactions(ctx context.Context, userID string, since time.Time) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	txs, _ := r.RecentTransactions(ctx, userID, since)
	return int64(len(txs)), nil
}

func (r *fakeRepo) AddListEntry(ctx context.Context, entry *domain.ListEntry) error {
	switch entry.Kind {
	case domain.ListBlacklist:
		r.blacklist[entry.Value] = true
	case domain.ListWhitelist:
		r.whitelist[entry.Value] = true
	}
	return nil
}

func (r *fakeRepo) RemoveListEntry(ctx context.Context, kind, value string) error {
	delete(r.blacklist, value)
	delete(r.whitelist, value)
	return nil
}

func (r *fakeRepo) IsBlacklisted(ctx context.Context, value string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.blacklist[value], nil
}

func (r *fakeRepo) IsWhitelisted(ctx context.Context, value string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	return r.whitelist[value], nil
}

func (r *fakeRepo) SaveSignature(ctx context.Context, sig *domain.Signature) error { return nil }
func (r *fakeRepo) ListSignatures(ctx context.Context) ([]*domain.Signature, error) {
	return nil, nil
}

func (r *fakeRepo) SaveCheck(ctx context.Context, result *domain.CheckResult, input *domain.CheckInput) error {
	return nil
}
func (r *fakeRepo) GetCheck(ctx context.Context, checkID string) (*domain.CheckResult, error) {
	return nil, domain.ErrNotFound
}

func (r *fakeRepo) SaveAlert(ctx context.Context, alert *domain.Alert) error { return nil }
func (r *fakeRepo) GetAlert(ctx context.Context, alertID string) (*domain.Alert, error) {
	return nil, domain.ErrNotFound
}
func (r *fakeRepo) ListAlerts(ctx context.Context, status domain.AlertStatus, level domain.RiskLevel, limit, offset int) ([]*domain.Alert, error) {
	return nil, nil
}
func (r *fakeRepo) ReviewAlert(ctx context.Context, alertID string, status domain.AlertStatus, reviewer string) error {
	return domain.ErrNotFound
}

func (r *fakeRepo) SaveFraudReport(ctx context.Context, report *domain.FraudReport) error {
	return nil
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

// fakeTelecom returns a canned SIM-swap status.
type fakeTelecom struct {
	status *domain.SimSwapStatus
	err    error
}

func (t *fakeTelecom) CheckSimSwap(ctx context.Context, phoneNumber string) (*domain.SimSwapStatus, error) {
	if t.err != nil {
		return nil, t.err
	}
	if t.status == nil {
		return &domain.SimSwapStatus{}, nil
	}
	return t.status, nil
}

// fakeIPIntel returns canned IP reputation answers.
type fakeIPIntel struct {
	blacklisted bool
	vpn         bool
	err         error
}

func (f *fakeIPIntel) IsBlacklisted(ctx context.Context, ip string) (bool, error) {
	return f.blacklisted, f.err
}

func (f *fakeIPIntel) IsVPN(ctx context.Context, ip string) (bool, error) {
	return f.vpn, f.err
}

func timePtr(t time.Time) *time.Time { return &t }
