// Package replay deterministically re-executes a single transaction
// against a partial-state witness using go-ethereum's own EVM, and compares
// the outcome byte-for-byte against a previously recorded simulation.
package replay

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Operation identifies the Safe-style call kind requested for the
// transaction under replay.
type Operation int

const (
	OperationCall         Operation = 0
	OperationDelegateCall Operation = 1
)

// TransactionRequest is the proposed transaction being verified.
type TransactionRequest struct {
	To         common.Address
	Value      *uint256.Int
	Data       []byte
	Operation  Operation
	SafeTxGas  *uint256.Int
}

// Log is a single EVM log entry, in the wire's normalized hex form.
type Log struct {
	Address common.Address
	Topics  []common.Hash
	Data    []byte
}

// Simulation is the previously recorded outcome the replay is checked
// against.
type Simulation struct {
	Success     bool
	ReturnData  []byte
	GasUsed     uint64
	BlockNumber uint64
	Logs        []Log
}

// AccountSnapshot is one witness account: its balance, nonce, runtime code,
// and storage slots, as of the replay block.
type AccountSnapshot struct {
	Address common.Address
	Balance *uint256.Int
	Nonce   uint64
	Code    []byte
	Storage map[common.Hash]common.Hash
}

// ReplayBlock is the block environment the transaction replays against.
type ReplayBlock struct {
	Timestamp     uint64
	GasLimit      uint64
	BaseFeePerGas *uint256.Int
	Beneficiary   common.Address
	PrevRandao    *common.Hash
	Difficulty    *uint256.Int
}

// Witness is the minimal account/storage/block snapshot needed to
// deterministically replay one transaction.
type Witness struct {
	ReplayBlock    *ReplayBlock
	ReplayAccounts []AccountSnapshot
	ReplayCaller   *common.Address
	ReplayGasLimit *uint64
	WitnessOnly    bool
}

// NativeTransfer is one value-bearing ether movement performed by CALL,
// CREATE, or SELFDESTRUCT -- as opposed to an ERC-20-style logged transfer.
type NativeTransfer struct {
	From  common.Address
	To    common.Address
	Value *uint256.Int
}

// SimulationReplayInput is the request to VerifySimulationReplay.
type SimulationReplayInput struct {
	ChainID           uint64
	SafeAddress       common.Address
	Transaction       TransactionRequest
	Simulation        Simulation
	SimulationWitness Witness
}

// SimulationReplayVerificationResult is the response from
// VerifySimulationReplay.
type SimulationReplayVerificationResult struct {
	Executed              bool             `json:"executed"`
	Success               bool             `json:"success"`
	Reason                Reason           `json:"reason"`
	Error                 string           `json:"error,omitempty"`
	ReplayLogs            []Log            `json:"replayLogs,omitempty"`
	ReplayNativeTransfers []NativeTransfer `json:"replayNativeTransfers,omitempty"`
}
