package subscription

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	subscriptionRepo "genzhealth/database/repository/subscription"
	"genzhealth/models"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testChainID = big.NewInt(11155111)
	treasury    = ethcommon.HexToAddress("0x00000000000000000000000000000000000000aa")
)

type fakeChain struct {
	txs      map[ethcommon.Hash]*types.Transaction
	receipts map[ethcommon.Hash]*types.Receipt
	pending  map[ethcommon.Hash]bool
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		txs:      map[ethcommon.Hash]*types.Transaction{},
		receipts: map[ethcommon.Hash]*types.Receipt{},
		pending:  map[ethcommon.Hash]bool{},
	}
}

func (c *fakeChain) ChainID(ctx context.Context) (*big.Int, error) {
	return testChainID, nil
}

func (c *fakeChain) TransactionByHash(ctx context.Context, hash ethcommon.Hash) (*types.Transaction, bool, error) {
	tx, ok := c.txs[hash]
	if !ok {
		return nil, false, ethereum.NotFound
	}
	return tx, c.pending[hash], nil
}

func (c *fakeChain) TransactionReceipt(ctx context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	r, ok := c.receipts[hash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

// pay signs a transfer from key and records it as mined with the given status.
func (c *fakeChain) pay(t *testing.T, key *ecdsa.PrivateKey, nonce uint64, to ethcommon.Address, value *big.Int, status uint64) ethcommon.Hash {
	t.Helper()
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   testChainID,
		Nonce:     nonce,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(2),
		Gas:       21000,
		To:        &to,
		Value:     value,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(testChainID), key)
	require.NoError(t, err)
	c.txs[signed.Hash()] = signed
	c.receipts[signed.Hash()] = &types.Receipt{Status: status, BlockNumber: big.NewInt(100)}
	return signed.Hash()
}

type memorySubscriptions struct {
	mu   sync.Mutex
	subs []models.Subscription
}

func (m *memorySubscriptions) Create(ctx context.Context, sub models.Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.TxHash == sub.TxHash {
			return subscriptionRepo.ErrDuplicateTransaction
		}
	}
	m.subs = append(m.subs, sub)
	return nil
}

func (m *memorySubscriptions) GetByTxHash(ctx context.Context, txHash string) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.TxHash == txHash {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (m *memorySubscriptions) ActiveForUser(ctx context.Context, userID string, now time.Time) (*models.Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best *models.Subscription
	for i := range m.subs {
		s := m.subs[i]
		if s.UserID != userID || s.StartsAt.After(now) || !s.ExpiresAt.After(now) {
			continue
		}
		if best == nil || s.ExpiresAt.After(best.ExpiresAt) {
			best = &s
		}
	}
	return best, nil
}

func (m *memorySubscriptions) EnsureIndexes() error { return nil }

type fixture struct {
	chain  *fakeChain
	repo   *memorySubscriptions
	svc    *Service
	key    *ecdsa.PrivateKey
	wallet ethcommon.Address
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	f := &fixture{
		chain:  newFakeChain(),
		repo:   &memorySubscriptions{},
		key:    key,
		wallet: crypto.PubkeyToAddress(key.PublicKey),
		now:    time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, NewEthVerifier(f.chain, treasury), nil)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func ethWei(s string) *big.Int {
	return ToWei(decimal.RequireFromString(s))
}

func TestConfirmPayment(t *testing.T) {
	f := newFixture(t)
	hash := f.chain.pay(t, f.key, 0, treasury, ethWei("0.2"), types.ReceiptStatusSuccessful)

	sub, err := f.svc.ConfirmPayment(context.Background(), "u1", models.PaymentConfirmation{
		PlanID:        PlanPremium,
		Cycle:         models.CycleMonthly,
		TxHash:        hash.Hex(),
		WalletAddress: f.wallet.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, sub.PlanID)
	assert.Equal(t, "200000000000000000", sub.AmountWei)
	assert.True(t, f.now.AddDate(0, 1, 0).Equal(sub.ExpiresAt))

	plan, active, err := f.svc.ActivePlan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanPremium, plan.ID)
	assert.Equal(t, sub.ID, active.ID)

	limit, err := f.svc.SavedAnalysesLimit(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, -1, limit)

	f.now = f.now.AddDate(0, 2, 0)
	plan, active, err = f.svc.ActivePlan(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, plan.ID)
	assert.Nil(t, active)
}

func TestConfirmPayment_ReusedTransaction(t *testing.T) {
	f := newFixture(t)
	hash := f.chain.pay(t, f.key, 0, treasury, ethWei("0.35"), types.ReceiptStatusSuccessful)
	conf := models.PaymentConfirmation{PlanID: PlanFamily, TxHash: hash.Hex(), WalletAddress: f.wallet.Hex()}

	_, err := f.svc.ConfirmPayment(context.Background(), "u1", conf)
	require.NoError(t, err)
	_, err = f.svc.ConfirmPayment(context.Background(), "u2", conf)
	assert.ErrorIs(t, err, ErrPaymentReused)
}

func TestConfirmPayment_Rejections(t *testing.T) {
	f := newFixture(t)
	other, err := crypto.GenerateKey()
	require.NoError(t, err)

	good := f.chain.pay(t, f.key, 0, treasury, ethWei("0.2"), types.ReceiptStatusSuccessful)
	failed := f.chain.pay(t, f.key, 1, treasury, ethWei("0.2"), types.ReceiptStatusFailed)
	wrongTo := f.chain.pay(t, f.key, 2, ethcommon.HexToAddress("0x00000000000000000000000000000000000000bb"), ethWei("0.2"), types.ReceiptStatusSuccessful)
	tooLittle := f.chain.pay(t, f.key, 3, treasury, ethWei("0.19"), types.ReceiptStatusSuccessful)
	fromOther := f.chain.pay(t, other, 0, treasury, ethWei("0.2"), types.ReceiptStatusSuccessful)
	pending := f.chain.pay(t, f.key, 4, treasury, ethWei("0.2"), types.ReceiptStatusSuccessful)
	f.chain.pending[pending] = true

	tests := []struct {
		name    string
		conf    models.PaymentConfirmation
		wantErr error
	}{
		{"unknown plan", models.PaymentConfirmation{PlanID: "gold", TxHash: good.Hex(), WalletAddress: f.wallet.Hex()}, ErrUnknownPlan},
		{"free plan", models.PaymentConfirmation{PlanID: PlanFree, TxHash: good.Hex(), WalletAddress: f.wallet.Hex()}, ErrFreePlan},
		{"bad cycle", models.PaymentConfirmation{PlanID: PlanPremium, Cycle: "weekly", TxHash: good.Hex(), WalletAddress: f.wallet.Hex()}, ErrInvalidCycle},
		{"bad hash", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: "0x1234", WalletAddress: f.wallet.Hex()}, ErrInvalidTxHash},
		{"bad wallet", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: good.Hex(), WalletAddress: "nope"}, ErrInvalidWallet},
		{"unknown tx", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: ethcommon.HexToHash("0x01").Hex(), WalletAddress: f.wallet.Hex()}, ErrTxNotFound},
		{"pending", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: pending.Hex(), WalletAddress: f.wallet.Hex()}, ErrTxPending},
		{"reverted", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: failed.Hex(), WalletAddress: f.wallet.Hex()}, ErrTxFailed},
		{"wrong recipient", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: wrongTo.Hex(), WalletAddress: f.wallet.Hex()}, ErrWrongRecipient},
		{"underpaid", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: tooLittle.Hex(), WalletAddress: f.wallet.Hex()}, ErrInsufficientAmount},
		{"someone else's payment", models.PaymentConfirmation{PlanID: PlanPremium, TxHash: fromOther.Hex(), WalletAddress: f.wallet.Hex()}, ErrSenderMismatch},
		{"yearly family underpaid", models.PaymentConfirmation{PlanID: PlanFamily, Cycle: models.CycleYearly, TxHash: good.Hex(), WalletAddress: f.wallet.Hex()}, ErrInsufficientAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := f.svc.ConfirmPayment(context.Background(), "u1", tt.conf)
			assert.Nil(t, sub)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
	assert.Empty(t, f.repo.subs)
}

func TestConfirmPayment_Disabled(t *testing.T) {
	svc := NewService(&memorySubscriptions{}, nil, nil)
	_, err := svc.ConfirmPayment(context.Background(), "u1", models.PaymentConfirmation{
		PlanID:        PlanPremium,
		TxHash:        ethcommon.HexToHash("0x01").Hex(),
		WalletAddress: "0x00000000000000000000000000000000000000cc",
	})
	assert.ErrorIs(t, err, ErrPaymentsDisabled)
}

func TestActivePlan_DefaultsToFree(t *testing.T) {
	f := newFixture(t)
	plan, sub, err := f.svc.ActivePlan(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, PlanFree, plan.ID)
	assert.Nil(t, sub)

	limit, err := f.svc.SavedAnalysesLimit(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 3, limit)
}
