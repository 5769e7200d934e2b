package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openpeerlabs/escrow-backend/internal/model"
)

func TestNewAdapter(t *testing.T) {
	evm, err := NewAdapter(model.NetworkFamilyEVM)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkFamilyEVM, evm.Family())

	sol, err := NewAdapter(model.NetworkFamilySolana)
	require.NoError(t, err)
	assert.Equal(t, model.NetworkFamilySolana, sol.Family())

	_, err = NewAdapter("COSMOS")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedFamily)
}

func TestEVMValidateAddress(t *testing.T) {
	a, err := NewAdapter(model.NetworkFamilyEVM)
	require.NoError(t, err)

	assert.NoError(t, a.ValidateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.Error(t, a.ValidateAddress("0x5aAeb"))
	assert.Error(t, a.ValidateAddress("not-an-address"))
	assert.Error(t, a.ValidateAddress(""))
}

func TestEVMValidateTxIdentifier(t *testing.T) {
	a, err := NewAdapter(model.NetworkFamilyEVM)
	require.NoError(t, err)

	assert.NoError(t, a.ValidateTxIdentifier("0x"+hex64("ab")))
	assert.Error(t, a.ValidateTxIdentifier("0xabc"))
	assert.Error(t, a.ValidateTxIdentifier(hex64("ab")))
}

func TestEVMExplorerURL(t *testing.T) {
	a, err := NewAdapter(model.NetworkFamilyEVM)
	require.NoError(t, err)

	celo := int64(42220)
	url := a.ExplorerURL(&model.Network{ChainID: &celo}, "0xdeadbeef")
	assert.Equal(t, "https://celoscan.io/tx/0xdeadbeef", url)

	url = a.ExplorerURL(&model.Network{}, "0xdeadbeef")
	assert.Equal(t, "https://etherscan.io/tx/0xdeadbeef", url)
}

func TestSolanaValidateAddress(t *testing.T) {
	a, err := NewAdapter(model.NetworkFamilySolana)
	require.NoError(t, err)

	assert.NoError(t, a.ValidateAddress("11111111111111111111111111111111"))
	assert.Error(t, a.ValidateAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
	assert.Error(t, a.ValidateAddress(""))
}

func TestSolanaValidateTxIdentifier(t *testing.T) {
	a, err := NewAdapter(model.NetworkFamilySolana)
	require.NoError(t, err)

	// 64 zero bytes encode to 64 '1' characters in base58
	sig := ""
	for i := 0; i < 64; i++ {
		sig += "1"
	}
	assert.NoError(t, a.ValidateTxIdentifier(sig))
	assert.Error(t, a.ValidateTxIdentifier("tooshort"))
	assert.Error(t, a.ValidateTxIdentifier("0xdeadbeef"))
}

func TestNetworkInfo(t *testing.T) {
	evm, err := NewAdapter(model.NetworkFamilyEVM)
	require.NoError(t, err)
	chainID := int64(42220)
	info := evm.NetworkInfo(&model.Network{ChainID: &chainID, ContractAddress: "0xcontract"})
	assert.Equal(t, model.NetworkFamilyEVM, info.Family)
	require.NotNil(t, info.ChainID)
	assert.Equal(t, chainID, *info.ChainID)
	assert.Equal(t, "0xcontract", info.ContractAddress)

	sol, err := NewAdapter(model.NetworkFamilySolana)
	require.NoError(t, err)
	info = sol.NetworkInfo(&model.Network{ContractAddress: "prog111"})
	assert.Equal(t, "SOL", info.NativeSymbol)
}

func hex64(pair string) string {
	s := ""
	for i := 0; i < 32; i++ {
		s += pair
	}
	return s
}
