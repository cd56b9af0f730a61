package replay

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
)

// buildAccountsMap flattens the witness's account list into a map keyed by
// address; per spec, replay accounts form a set keyed by address with
// last-write-wins semantics when duplicated.
func buildAccountsMap(snapshots []AccountSnapshot) map[common.Address]AccountSnapshot {
	accounts := make(map[common.Address]AccountSnapshot, len(snapshots))
	for _, snap := range snapshots {
		accounts[snap.Address] = snap
	}
	return accounts
}

// ensureCallerFunded implements the second half of step 6: the caller is
// topped up to required if its witness balance (or absence) would
// otherwise leave it unable to cover gas_limit*gas_price+value. This
// preserves execution semantics while removing prefunding requirements
// from the witness producer.
func ensureCallerFunded(accounts map[common.Address]AccountSnapshot, caller common.Address, required *uint256.Int) {
	snap, ok := accounts[caller]
	if !ok {
		accounts[caller] = AccountSnapshot{
			Address: caller,
			Balance: required.Clone(),
			Nonce:   0,
			Storage: map[common.Hash]common.Hash{},
		}
		return
	}
	if snap.Balance == nil || snap.Balance.Lt(required) {
		snap.Balance = required.Clone()
		accounts[caller] = snap
	}
}

// buildStateDB materializes an ephemeral in-memory StateDB from the
// resolved account set, with no backing persistent database.
func buildStateDB(accounts map[common.Address]AccountSnapshot) (*state.StateDB, error) {
	sdb, err := state.New(types.EmptyRootHash, state.NewDatabaseForTesting())
	if err != nil {
		return nil, err
	}
	for addr, snap := range accounts {
		sdb.SetNonce(addr, snap.Nonce, tracing.NonceChangeUnspecified)
		balance := snap.Balance
		if balance == nil {
			balance = uint256.NewInt(0)
		}
		sdb.SetBalance(addr, balance, tracing.BalanceChangeUnspecified)
		if len(snap.Code) > 0 {
			sdb.SetCode(addr, snap.Code)
		}
		for slot, value := range snap.Storage {
			sdb.SetState(addr, slot, value)
		}
	}
	return sdb, nil
}
