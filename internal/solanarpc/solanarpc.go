package solanarpc

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strconv"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gagliardetto/solana-go/rpc/ws"
	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/events"
	"github.com/openpeerlabs/escrow-backend/internal/model"
	"github.com/openpeerlabs/escrow-backend/internal/utils/config"
	"github.com/openpeerlabs/escrow-backend/internal/utils/logger"
)

const escrowSeed = "escrow"

type SolanaRPC struct {
	network   model.Network
	appConfig *config.AppConfig
	logger    *logger.Logger

	client    *rpc.Client
	programID solana.PublicKey
	bufferLen int
}

func New(network model.Network, appConfig *config.AppConfig, logger *logger.Logger) (ISolanaRPC, error) {
	programID, err := solana.PublicKeyFromBase58(network.ContractAddress)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid program id on %s", network.Name)
	}

	return &SolanaRPC{
		network:   network,
		appConfig: appConfig,
		logger:    logger,
		client:    rpc.New(network.RpcURL),
		programID: programID,
		bufferLen: appConfig.Listener.EventBufferSize,
	}, nil
}

func (r *SolanaRPC) NetworkName() string {
	return r.network.Name
}

func (r *SolanaRPC) NetworkID() uint {
	return r.network.ID
}

func (r *SolanaRPC) Subscribe(ctx context.Context) (<-chan events.Event, <-chan error, error) {
	wsClient, err := ws.Connect(ctx, r.network.WsURL)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "connect websocket on %s", r.network.Name)
	}

	sub, err := wsClient.LogsSubscribeMentions(r.programID, rpc.CommitmentFinalized)
	if err != nil {
		wsClient.Close()
		return nil, nil, errors.Wrapf(err, "logs subscription on %s", r.network.Name)
	}

	out := make(chan events.Event, r.bufferLen)
	errs := make(chan error, 1)

	go func() {
		defer close(out)
		defer wsClient.Close()
		defer sub.Unsubscribe()

		for {
			got, err := sub.Recv(ctx)
			if err != nil {
				if ctx.Err() == nil {
					errs <- errors.Wrapf(err, "logs subscription on %s", r.network.Name)
				}
				return
			}
			if got.Value.Err != nil {
				// Failed transactions still emit logs; their events never
				// took effect on chain.
				continue
			}

			for _, ev := range r.decodeTransactionLogs(got.Value.Signature.String(), got.Context.Slot, got.Value.Logs) {
				select {
				case <-ctx.Done():
					return
				case out <- ev:
				}
			}
		}
	}()

	return out, errs, nil
}

func (r *SolanaRPC) AutoCancelEligible(ctx context.Context, onchainEscrowID string) (bool, error) {
	account, err := r.fetchEscrowAccount(ctx, onchainEscrowID)
	if err != nil {
		return false, err
	}

	return account.autoCancelEligible(time.Now()), nil
}

func (r *SolanaRPC) AutoCancel(ctx context.Context, onchainEscrowID string) (string, error) {
	escrowID, err := strconv.ParseUint(onchainEscrowID, 10, 64)
	if err != nil {
		return "", errors.Wrapf(err, "invalid onchain escrow id: %s", onchainEscrowID)
	}

	arbitrator, err := solana.PrivateKeyFromBase58(r.appConfig.Escrow.ArbitratorPrivateKey)
	if err != nil {
		return "", errors.Wrap(err, "parse arbitrator private key")
	}

	account, err := r.fetchEscrowAccount(ctx, onchainEscrowID)
	if err != nil {
		return "", err
	}

	escrowPDA, _, err := r.escrowPDA(escrowID)
	if err != nil {
		return "", err
	}

	data := make([]byte, 0, 16)
	data = append(data, instructionDiscriminator("auto_cancel")...)
	data = binary.LittleEndian.AppendUint64(data, escrowID)

	instruction := solana.NewInstruction(
		r.programID,
		solana.AccountMetaSlice{
			solana.Meta(escrowPDA).WRITE(),
			solana.Meta(arbitrator.PublicKey()).SIGNER().WRITE(),
			solana.Meta(account.Seller).WRITE(),
			solana.Meta(solana.SystemProgramID),
		},
		data,
	)

	recent, err := r.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return "", errors.Wrap(err, "get latest blockhash")
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{instruction},
		recent.Value.Blockhash,
		solana.TransactionPayer(arbitrator.PublicKey()),
	)
	if err != nil {
		return "", errors.Wrap(err, "build auto_cancel transaction")
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(arbitrator.PublicKey()) {
			return &arbitrator
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "sign auto_cancel transaction")
	}

	sig, err := r.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", errors.Wrapf(err, "submit auto_cancel for escrow %s", onchainEscrowID)
	}

	if err := r.awaitConfirmation(ctx, sig); err != nil {
		return sig.String(), err
	}
	return sig.String(), nil
}

func (r *SolanaRPC) Close() {
	// The rpc client holds no persistent connection; websockets are owned
	// by their subscription goroutines.
}

func (r *SolanaRPC) escrowPDA(escrowID uint64) (solana.PublicKey, uint8, error) {
	idSeed := make([]byte, 8)
	binary.LittleEndian.PutUint64(idSeed, escrowID)

	pda, bump, err := solana.FindProgramAddress([][]byte{[]byte(escrowSeed), idSeed}, r.programID)
	if err != nil {
		return solana.PublicKey{}, 0, errors.Wrapf(err, "derive escrow PDA for id %d", escrowID)
	}
	return pda, bump, nil
}

func (r *SolanaRPC) fetchEscrowAccount(ctx context.Context, onchainEscrowID string) (*escrowAccount, error) {
	escrowID, err := strconv.ParseUint(onchainEscrowID, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid onchain escrow id: %s", onchainEscrowID)
	}

	pda, _, err := r.escrowPDA(escrowID)
	if err != nil {
		return nil, err
	}

	info, err := r.client.GetAccountInfoWithOpts(ctx, pda, &rpc.GetAccountInfoOpts{
		Commitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch escrow account %s", pda.String())
	}

	raw := info.Value.Data.GetBinary()
	if len(raw) <= 8 {
		return nil, errors.Errorf("escrow account %s has no data", pda.String())
	}

	// The first 8 bytes are the account discriminator.
	var account escrowAccount
	if err := bin.NewBorshDecoder(raw[8:]).Decode(&account); err != nil {
		return nil, errors.Wrapf(err, "decode escrow account %s", pda.String())
	}
	return &account, nil
}

func (r *SolanaRPC) awaitConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "confirm %s", sig.String())
		case <-ticker.C:
			statuses, err := r.client.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				continue
			}
			if len(statuses.Value) == 0 || statuses.Value[0] == nil {
				continue
			}

			status := statuses.Value[0]
			if status.Err != nil {
				return errors.Errorf("transaction %s failed on chain", sig.String())
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}

func instructionDiscriminator(name string) []byte {
	sum := sha256.Sum256([]byte("global:" + name))
	return sum[:8]
}
