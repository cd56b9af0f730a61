package replay

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/Th0rgal/SafeLens/codec"
)

// parseWireUint64 accepts either decimal or 0x-hex, per the shared codec's
// integer parsing rule, and truncates to 64 bits.
func parseWireUint64(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := codec.ParseUint256(s)
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

type txRequestJSON struct {
	To        string `json:"to"`
	Value     string `json:"value"`
	Data      string `json:"data,omitempty"`
	Operation int    `json:"operation"`
	SafeTxGas string `json:"safeTxGas,omitempty"`
}

func (t txRequestJSON) decode() (TransactionRequest, error) {
	to, err := codec.ParseAddress(t.To)
	if err != nil {
		return TransactionRequest{}, fmt.Errorf("transaction.to: %w", err)
	}
	value, err := codec.ParseUint256(orZero(t.Value))
	if err != nil {
		return TransactionRequest{}, fmt.Errorf("transaction.value: %w", err)
	}
	var data []byte
	if t.Data != "" {
		data, err = codec.ParseBytes(t.Data)
		if err != nil {
			return TransactionRequest{}, fmt.Errorf("transaction.data: %w", err)
		}
	}
	var safeTxGas *uint256.Int
	if t.SafeTxGas != "" {
		g, err := codec.ParseUint256(t.SafeTxGas)
		if err != nil {
			return TransactionRequest{}, fmt.Errorf("transaction.safeTxGas: %w", err)
		}
		safeTxGas = g
	}
	return TransactionRequest{
		To:        to,
		Value:     value,
		Data:      data,
		Operation: Operation(t.Operation),
		SafeTxGas: safeTxGas,
	}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0x0"
	}
	return s
}

type logJSON struct {
	Address string   `json:"address"`
	Topics  []string `json:"topics"`
	Data    string   `json:"data"`
}

func (l logJSON) decode() (Log, error) {
	addr, err := codec.ParseAddress(l.Address)
	if err != nil {
		return Log{}, fmt.Errorf("log.address: %w", err)
	}
	topics := make([]common.Hash, len(l.Topics))
	for i, t := range l.Topics {
		h, err := codec.ParseRoot(t)
		if err != nil {
			return Log{}, fmt.Errorf("log.topics[%d]: %w", i, err)
		}
		topics[i] = h
	}
	data, err := codec.ParseBytes(orHexEmpty(l.Data))
	if err != nil {
		return Log{}, fmt.Errorf("log.data: %w", err)
	}
	return Log{Address: addr, Topics: topics, Data: data}, nil
}

func orHexEmpty(s string) string {
	if s == "" {
		return "0x"
	}
	return s
}

type simulationJSON struct {
	Success     bool      `json:"success"`
	ReturnData  string    `json:"returnData,omitempty"`
	GasUsed     string    `json:"gasUsed"`
	BlockNumber string    `json:"blockNumber"`
	Logs        []logJSON `json:"logs"`
}

func (s simulationJSON) decode() (Simulation, error) {
	returnData, err := codec.ParseBytes(orHexEmpty(s.ReturnData))
	if err != nil {
		return Simulation{}, fmt.Errorf("simulation.returnData: %w", err)
	}
	gasUsed, err := parseWireUint64(s.GasUsed)
	if err != nil {
		return Simulation{}, fmt.Errorf("simulation.gasUsed: %w", err)
	}
	blockNumber, err := parseWireUint64(s.BlockNumber)
	if err != nil {
		return Simulation{}, fmt.Errorf("simulation.blockNumber: %w", err)
	}
	logs := make([]Log, len(s.Logs))
	for i, lj := range s.Logs {
		logs[i], err = lj.decode()
		if err != nil {
			return Simulation{}, fmt.Errorf("simulation.logs[%d]: %w", i, err)
		}
	}
	return Simulation{
		Success:     s.Success,
		ReturnData:  returnData,
		GasUsed:     gasUsed,
		BlockNumber: blockNumber,
		Logs:        logs,
	}, nil
}

type accountSnapshotJSON struct {
	Address string            `json:"address"`
	Balance string            `json:"balance,omitempty"`
	Nonce   string            `json:"nonce,omitempty"`
	Code    string            `json:"code,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
}

func (a accountSnapshotJSON) decode() (AccountSnapshot, error) {
	addr, err := codec.ParseAddress(a.Address)
	if err != nil {
		return AccountSnapshot{}, fmt.Errorf("account.address: %w", err)
	}
	balance, err := codec.ParseUint256(orZero(a.Balance))
	if err != nil {
		return AccountSnapshot{}, fmt.Errorf("account.balance: %w", err)
	}
	nonce, err := parseWireUint64(a.Nonce)
	if err != nil {
		return AccountSnapshot{}, fmt.Errorf("account.nonce: %w", err)
	}
	var code []byte
	if a.Code != "" {
		code, err = codec.ParseBytes(a.Code)
		if err != nil {
			return AccountSnapshot{}, fmt.Errorf("account.code: %w", err)
		}
	}
	storage := make(map[common.Hash]common.Hash, len(a.Storage))
	for k, v := range a.Storage {
		slot, err := codec.ParseRoot(k)
		if err != nil {
			return AccountSnapshot{}, fmt.Errorf("account.storage key %q: %w", k, err)
		}
		val, err := codec.ParseRoot(v)
		if err != nil {
			return AccountSnapshot{}, fmt.Errorf("account.storage[%s]: %w", k, err)
		}
		storage[slot] = val
	}
	return AccountSnapshot{
		Address: addr,
		Balance: balance,
		Nonce:   nonce,
		Code:    code,
		Storage: storage,
	}, nil
}

type replayBlockJSON struct {
	Timestamp     string `json:"timestamp"`
	GasLimit      string `json:"gasLimit"`
	BaseFeePerGas string `json:"baseFeePerGas,omitempty"`
	Beneficiary   string `json:"beneficiary,omitempty"`
	PrevRandao    string `json:"prevRandao,omitempty"`
	Difficulty    string `json:"difficulty,omitempty"`
}

func (b replayBlockJSON) decode() (*ReplayBlock, error) {
	timestamp, err := parseWireUint64(b.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("replayBlock.timestamp: %w", err)
	}
	gasLimit, err := parseWireUint64(b.GasLimit)
	if err != nil {
		return nil, fmt.Errorf("replayBlock.gasLimit: %w", err)
	}
	baseFee, err := codec.ParseUint256(orZero(b.BaseFeePerGas))
	if err != nil {
		return nil, fmt.Errorf("replayBlock.baseFeePerGas: %w", err)
	}
	var beneficiary common.Address
	if b.Beneficiary != "" {
		beneficiary, err = codec.ParseAddress(b.Beneficiary)
		if err != nil {
			return nil, fmt.Errorf("replayBlock.beneficiary: %w", err)
		}
	}
	var prevRandao *common.Hash
	if b.PrevRandao != "" {
		h, err := codec.ParseRoot(b.PrevRandao)
		if err != nil {
			return nil, fmt.Errorf("replayBlock.prevRandao: %w", err)
		}
		prevRandao = &h
	}
	difficulty, err := codec.ParseUint256(orZero(b.Difficulty))
	if err != nil {
		return nil, fmt.Errorf("replayBlock.difficulty: %w", err)
	}
	return &ReplayBlock{
		Timestamp:     timestamp,
		GasLimit:      gasLimit,
		BaseFeePerGas: baseFee,
		Beneficiary:   beneficiary,
		PrevRandao:    prevRandao,
		Difficulty:    difficulty,
	}, nil
}

type witnessJSON struct {
	ReplayBlock    *replayBlockJSON      `json:"replayBlock,omitempty"`
	ReplayAccounts []accountSnapshotJSON `json:"replayAccounts,omitempty"`
	ReplayCaller   string                `json:"replayCaller,omitempty"`
	ReplayGasLimit string                `json:"replayGasLimit,omitempty"`
	WitnessOnly    bool                  `json:"witnessOnly,omitempty"`
}

func (w witnessJSON) decode() (Witness, error) {
	var block *ReplayBlock
	if w.ReplayBlock != nil {
		b, err := w.ReplayBlock.decode()
		if err != nil {
			return Witness{}, err
		}
		block = b
	}

	accounts := make([]AccountSnapshot, len(w.ReplayAccounts))
	for i, aj := range w.ReplayAccounts {
		a, err := aj.decode()
		if err != nil {
			return Witness{}, fmt.Errorf("replayAccounts[%d]: %w", i, err)
		}
		accounts[i] = a
	}

	var caller *common.Address
	if w.ReplayCaller != "" {
		c, err := codec.ParseAddress(w.ReplayCaller)
		if err != nil {
			return Witness{}, fmt.Errorf("replayCaller: %w", err)
		}
		caller = &c
	}

	var gasLimit *uint64
	if w.ReplayGasLimit != "" {
		g, err := parseWireUint64(w.ReplayGasLimit)
		if err != nil {
			return Witness{}, fmt.Errorf("replayGasLimit: %w", err)
		}
		gasLimit = &g
	}

	return Witness{
		ReplayBlock:    block,
		ReplayAccounts: accounts,
		ReplayCaller:   caller,
		ReplayGasLimit: gasLimit,
		WitnessOnly:    w.WitnessOnly,
	}, nil
}

type simulationReplayInputJSON struct {
	ChainID           json.RawMessage `json:"chainId"`
	SafeAddress       string          `json:"safeAddress"`
	Transaction       txRequestJSON   `json:"transaction"`
	Simulation        simulationJSON  `json:"simulation"`
	SimulationWitness witnessJSON     `json:"simulationWitness"`
}

func decodeChainID(raw json.RawMessage) (uint64, error) {
	trimmed := strings.TrimSpace(string(raw))
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, err
		}
		return parseWireUint64(s)
	}
	return parseWireUint64(trimmed)
}

// ParseSimulationReplayInput decodes a full evidence-package replay request
// from its wire JSON form.
func ParseSimulationReplayInput(raw []byte) (*SimulationReplayInput, error) {
	var in simulationReplayInputJSON
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, err
	}

	chainID, err := decodeChainID(in.ChainID)
	if err != nil {
		return nil, fmt.Errorf("chainId: %w", err)
	}
	safeAddress, err := codec.ParseAddress(in.SafeAddress)
	if err != nil {
		return nil, fmt.Errorf("safeAddress: %w", err)
	}
	tx, err := in.Transaction.decode()
	if err != nil {
		return nil, err
	}
	sim, err := in.Simulation.decode()
	if err != nil {
		return nil, err
	}
	witness, err := in.SimulationWitness.decode()
	if err != nil {
		return nil, err
	}

	return &SimulationReplayInput{
		ChainID:           chainID,
		SafeAddress:       safeAddress,
		Transaction:       tx,
		Simulation:        sim,
		SimulationWitness: witness,
	}, nil
}
