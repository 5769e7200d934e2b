package transactionledger

import (
	"errors"

	"gorm.io/gorm"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

type store struct{}

func New() IStore {
	return &store{}
}

var errNoIdentifier = errors.New("transaction ledger: input has neither hash nor signature")

func (s *store) Record(db *gorm.DB, input RecordInput) (*uint, error) {
	if input.TransactionHash == nil && input.Signature == nil {
		return nil, errNoIdentifier
	}

	existing, err := s.findByInput(db, input)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing == nil {
		row := &model.Transaction{
			NetworkID:         input.NetworkID,
			TransactionHash:   input.TransactionHash,
			Signature:         input.Signature,
			Type:              input.Type,
			Status:            input.Status,
			BlockNumber:       input.BlockNumber,
			SenderAddress:     input.SenderAddress,
			ReceiverAddress:   input.ReceiverAddress,
			ErrorMessage:      input.ErrorMessage,
			RelatedTradeID:    input.RelatedTradeID,
			RelatedEscrowDBID: input.RelatedEscrowDBID,
		}
		if err := db.Create(row).Error; err != nil {
			// A concurrent writer may have won the unique-key race; a
			// read-after-write tolerates that benign conflict.
			raced, findErr := s.findByInput(db, input)
			if findErr != nil || raced == nil {
				return nil, err
			}
			return s.merge(db, raced, input)
		}
		return &row.ID, nil
	}

	return s.merge(db, existing, input)
}

// merge applies the conflict rules: status and type follow the newest write,
// block number is filled only once, addresses are overwritten only by
// non-empty values, and the trade/escrow linkage is first-writer-wins so a
// later log observation never clobbers what the submit path recorded.
func (s *store) merge(db *gorm.DB, existing *model.Transaction, input RecordInput) (*uint, error) {
	updates := map[string]interface{}{
		"status": input.Status,
		"type":   input.Type,
	}

	if existing.BlockNumber == nil && input.BlockNumber != nil {
		updates["block_number"] = *input.BlockNumber
	}
	if input.SenderAddress != "" {
		updates["sender_address"] = input.SenderAddress
	}
	if input.ReceiverAddress != "" {
		updates["receiver_address"] = input.ReceiverAddress
	}
	if input.ErrorMessage != nil {
		updates["error_message"] = *input.ErrorMessage
	}
	if existing.RelatedTradeID == nil && input.RelatedTradeID != nil {
		updates["related_trade_id"] = *input.RelatedTradeID
	}
	if existing.RelatedEscrowDBID == nil && input.RelatedEscrowDBID != nil {
		updates["related_escrow_db_id"] = *input.RelatedEscrowDBID
	}

	err := db.Model(&model.Transaction{}).Where("id = ?", existing.ID).Updates(updates).Error
	if err != nil {
		return nil, err
	}
	return &existing.ID, nil
}

func (s *store) findByInput(db *gorm.DB, input RecordInput) (*model.Transaction, error) {
	var row model.Transaction
	q := db.Where("network_id = ?", input.NetworkID)
	if input.TransactionHash != nil {
		q = q.Where("transaction_hash = ?", *input.TransactionHash)
	} else {
		q = q.Where("signature = ?", *input.Signature)
	}

	err := q.First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *store) GetByIdentifier(db *gorm.DB, networkID uint, identifier string) (*model.Transaction, error) {
	var row model.Transaction
	err := db.Where(
		"network_id = ? AND (transaction_hash = ? OR signature = ?)",
		networkID, identifier, identifier,
	).First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (s *store) List(db *gorm.DB, filter ListFilter) ([]model.Transaction, int64, error) {
	q := db.Model(&model.Transaction{})
	if filter.NetworkID != nil {
		q = q.Where("network_id = ?", *filter.NetworkID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []model.Transaction
	err := q.Order("id desc").Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
