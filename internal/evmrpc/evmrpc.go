package evmrpc

import (
	"context"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"

	escrowcontract "github.com/openpeerlabs/escrow-backend/contracts/escrow"
	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

type EvmRPC struct {
	network   model.Network
	appConfig *config.AppConfig
	logger    *logger.Logger

	client    *ethclient.Client
	escrow    *escrowcontract.Escrow
	parsedABI abi.ABI
	bufferLen int
}

func New(network model.Network, appConfig *config.AppConfig, logger *logger.Logger) (IEvmRPC, error) {
	client, err := ethclient.Dial(network.WsURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", network.Name)
	}

	contractAddr := common.HexToAddress(network.ContractAddress)
	escrow, err := escrowcontract.NewEscrow(contractAddr, client)
	if err != nil {
		return nil, errors.Wrap(err, "bind escrow contract")
	}

	parsed, err := escrowcontract.ParseABI()
	if err != nil {
		return nil, errors.Wrap(err, "parse escrow ABI")
	}

	return &EvmRPC{
		network:   network,
		appConfig: appConfig,
		logger:    logger,
		client:    client,
		escrow:    escrow,
		parsedABI: parsed,
		bufferLen: appConfig.Listener.EventBufferSize,
	}, nil
}

func (r *EvmRPC) NetworkName() string {
	return r.network.Name
}

func (r *EvmRPC) NetworkID() uint {
	return r.network.ID
}

func (r *EvmRPC) Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error) {
	query := ethereum.FilterQuery{
		Addresses: []common.Address{common.HexToAddress(r.network.ContractAddress)},
	}

	logsCh := make(chan types.Log, r.bufferLen)
	sub, err := r.client.SubscribeFilterLogs(ctx, query, logsCh)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "subscribe logs on %s", r.network.Name)
	}

	out := make(chan events.Event, r.bufferLen)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer sub.Unsubscribe()

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				if err != nil {
					errs <- errors.Wrapf(err, "log subscription on %s", r.network.Name)
				}
				return
			case lg := <-logsCh:
				ev, err := r.decodeLog(lg)
				if err != nil {
					// Malformed logs are skipped; the subscription keeps
					// running.
					r.logger.Error("[Subscribe][decodeLog] skipping unparsable log", map[string]string{
						"network": r.network.Name,
						"txHash":  lg.TxHash.Hex(),
						"error":   err.Error(),
					})
					continue
				}
				out <- ev
			}
		}
	}()

	return out, errs, nil
}

func (r *EvmRPC) AutoCancelEligible(ctx context.Context, onchainEscrowID string) (bool, error) {
	escrowID, err := parseEscrowID(onchainEscrowID)
	if err != nil {
		return false, err
	}

	return r.escrow.IsEligibleForAutoCancel(&bind.CallOpts{Context: ctx}, escrowID)
}

func (r *EvmRPC) AutoCancel(ctx context.Context, onchainEscrowID string) (string, error) {
	escrowID, err := parseEscrowID(onchainEscrowID)
	if err != nil {
		return "", err
	}

	opts, err := r.transactOpts(ctx)
	if err != nil {
		return "", err
	}

	tx, err := r.escrow.AutoCancel(opts, escrowID)
	if err != nil {
		return "", errors.Wrapf(err, "submit autoCancel for escrow %s", onchainEscrowID)
	}

	receipt, err := bind.WaitMined(ctx, r.client, tx)
	if err != nil {
		return tx.Hash().Hex(), errors.Wrapf(err, "wait for autoCancel tx %s", tx.Hash().Hex())
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), errors.Errorf("autoCancel tx %s reverted", tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

func (r *EvmRPC) Close() {
	r.client.Close()
}

func (r *EvmRPC) transactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	keyStr := strings.TrimPrefix(r.appConfig.Escrow.ArbitratorPrivateKey, "0x")
	key, err := crypto.HexToECDSA(keyStr)
	if err != nil {
		return nil, errors.Wrap(err, "parse arbitrator private key")
	}

	if r.network.ChainID == nil {
		return nil, errors.Errorf("network %s has no chain id", r.network.Name)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(*r.network.ChainID))
	if err != nil {
		return nil, errors.Wrap(err, "build transactor")
	}
	opts.Context = ctx
	return opts, nil
}

func parseEscrowID(onchainEscrowID string) (*big.Int, error) {
	escrowID, ok := new(big.Int).SetString(onchainEscrowID, 10)
	if !ok {
		return nil, errors.Errorf("invalid onchain escrow id: %s", onchainEscrowID)
	}
	return escrowID, nil
}
