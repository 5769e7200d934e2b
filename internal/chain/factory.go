package chain

import (
	"github.com/pkg/errors"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

// NewAdapter selects the adapter for a network family. An unknown family is
// a hard error; nothing above this layer guesses at chain semantics.
func NewAdapter(family model.NetworkFamily) (Adapter, error) {
	switch family {
	case model.NetworkFamilyEVM:
		return &evmAdapter{}, nil
	case model.NetworkFamilySolana:
		return &solanaAdapter{}, nil
	}
	return nil, errors.Wrapf(ErrUnsupportedFamily, "%s", family)
}
