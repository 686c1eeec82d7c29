package subscription

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

var (
	ErrTxNotFound         = errors.New("transaction not found")
	ErrTxPending          = errors.New("transaction is still pending")
	ErrTxFailed           = errors.New("transaction failed on chain")
	ErrWrongRecipient     = errors.New("transaction was not sent to the treasury")
	ErrSenderMismatch     = errors.New("transaction was not sent from the connected wallet")
	ErrInsufficientAmount = errors.New("transaction value is below the plan price")
)

// ChainReader is the subset of ethclient.Client used to check a payment.
type ChainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	TransactionByHash(ctx context.Context, hash ethcommon.Hash) (*types.Transaction, bool, error)
	TransactionReceipt(ctx context.Context, hash ethcommon.Hash) (*types.Receipt, error)
}

// VerifiedPayment is what a confirmed transaction proved.
type VerifiedPayment struct {
	TxHash ethcommon.Hash
	From   ethcommon.Address
	Value  *big.Int
	Block  *big.Int
}

type PaymentVerifier interface {
	Verify(ctx context.Context, txHash ethcommon.Hash, wallet ethcommon.Address, minWei *big.Int) (*VerifiedPayment, error)
}

// EthVerifier checks that a mined transaction paid the treasury from the user's wallet.
type EthVerifier struct {
	chain    ChainReader
	treasury ethcommon.Address
}

func NewEthVerifier(chain ChainReader, treasury ethcommon.Address) *EthVerifier {
	return &EthVerifier{chain: chain, treasury: treasury}
}

// DialEthVerifier connects to rpcURL with ethclient.
func DialEthVerifier(rpcURL, treasury string) (*EthVerifier, error) {
	if !ethcommon.IsHexAddress(treasury) {
		return nil, fmt.Errorf("invalid treasury address %q", treasury)
	}
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("error creating ethclient with the network url %s: %w", rpcURL, err)
	}
	return NewEthVerifier(client, ethcommon.HexToAddress(treasury)), nil
}

func (v *EthVerifier) Verify(ctx context.Context, txHash ethcommon.Hash, wallet ethcommon.Address, minWei *big.Int) (*VerifiedPayment, error) {
	tx, pending, err := v.chain.TransactionByHash(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrTxNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}
	if pending {
		return nil, ErrTxPending
	}

	receipt, err := v.chain.TransactionReceipt(ctx, txHash)
	if errors.Is(err, ethereum.NotFound) {
		return nil, ErrTxPending
	}
	if err != nil {
		return nil, fmt.Errorf("fetch receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, ErrTxFailed
	}

	if tx.To() == nil || *tx.To() != v.treasury {
		return nil, ErrWrongRecipient
	}

	chainID, err := v.chain.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch chain id: %w", err)
	}
	from, err := types.Sender(types.LatestSignerForChainID(chainID), tx)
	if err != nil {
		return nil, fmt.Errorf("recover sender: %w", err)
	}
	if from != wallet {
		return nil, ErrSenderMismatch
	}

	if tx.Value().Cmp(minWei) < 0 {
		return nil, ErrInsufficientAmount
	}

	return &VerifiedPayment{
		TxHash: txHash,
		From:   from,
		Value:  new(big.Int).Set(tx.Value()),
		Block:  receipt.BlockNumber,
	}, nil
}
