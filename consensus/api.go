package consensus

import (
	"fmt"
	"time"

	"github.com/Th0rgal/SafeLens/codec"
)

// ConsensusProofInput is the wire-visible request to VerifyConsensusProof.
// Nested beacon structures (bootstrap, updates, finalityUpdate) are carried
// as JSON-encoded strings so that a malformed nested payload produces an
// isolated parse error instead of failing the whole request's decode.
type ConsensusProofInput struct {
	Checkpoint        string   `json:"checkpoint,omitempty"`
	Bootstrap         string   `json:"bootstrap,omitempty"`
	Updates           []string `json:"updates,omitempty"`
	FinalityUpdate    string   `json:"finalityUpdate,omitempty"`
	ConsensusMode     string   `json:"consensusMode,omitempty"`
	Network           string   `json:"network"`
	ProofPayload      string   `json:"proofPayload,omitempty"`
	StateRoot         string   `json:"stateRoot,omitempty"`
	ExpectedStateRoot string   `json:"expectedStateRoot"`
	BlockNumber       string   `json:"blockNumber,omitempty"`
	PackageChainID    string   `json:"packageChainId,omitempty"`
}

// Check is one granular step in a verification run, recorded in order so a
// caller can see exactly how far a failing request progressed.
type Check struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// ConsensusVerificationResult is the response from VerifyConsensusProof.
type ConsensusVerificationResult struct {
	Valid                     bool      `json:"valid"`
	VerifiedStateRoot         string    `json:"verifiedStateRoot,omitempty"`
	VerifiedBlockNumber       string    `json:"verifiedBlockNumber,omitempty"`
	StateRootMatches          bool      `json:"stateRootMatches"`
	SyncCommitteeParticipants int       `json:"syncCommitteeParticipants"`
	Error                     string    `json:"error,omitempty"`
	ErrorCode                 ErrorCode `json:"errorCode,omitempty"`
	Checks                    []Check   `json:"checks"`
}

// VerifyConsensusProof is the public entry point: it reads the wall clock
// once (to compute the expected current slot) via time.Now.
func VerifyConsensusProof(input ConsensusProofInput) ConsensusVerificationResult {
	return VerifyConsensusProofWithClock(input, time.Now)
}

// VerifyConsensusProofWithClock is VerifyConsensusProof with the wall-clock
// read replaced by an injected clock, for deterministic tests.
func VerifyConsensusProofWithClock(input ConsensusProofInput, clock func() time.Time) ConsensusVerificationResult {
	mode := input.ConsensusMode
	if mode == "" {
		mode = "beacon"
	}
	input.ConsensusMode = mode

	if mode != "beacon" {
		return verifyNonBeaconEnvelope(&input)
	}
	return verifyBeaconProof(&input, clock)
}

func verifyNonBeaconEnvelope(input *ConsensusProofInput) ConsensusVerificationResult {
	r := checkNonBeaconEnvelope(input)

	code := ErrUnsupportedConsensusMode
	errMsg := "consensus mode is not beacon-light-client; only a structural check was performed"
	if r.parseFailed {
		code = ErrInvalidProofPayload
		errMsg = "proof payload is missing or not valid JSON"
	}

	return ConsensusVerificationResult{
		Valid:             false,
		VerifiedStateRoot: r.verifiedRoot,
		StateRootMatches:  r.stateRootMatches,
		Error:             errMsg,
		ErrorCode:         code,
		Checks:            r.checks,
	}
}

// expectedCurrentSlot computes the slot the network should be at right now,
// saturating at zero for clocks that read before genesis.
func expectedCurrentSlot(now time.Time, net NetworkConfig) uint64 {
	nowUnix := now.Unix()
	if nowUnix < 0 || uint64(nowUnix) <= net.GenesisTime {
		return 0
	}
	return (uint64(nowUnix) - net.GenesisTime) / net.SecondsPerSlot
}

func verifyBeaconProof(input *ConsensusProofInput, clock func() time.Time) ConsensusVerificationResult {
	var checks []Check

	checkpointRoot, err := codec.ParseRoot(input.Checkpoint)
	if err != nil {
		checks = append(checks, Check{ID: "checkpoint", Label: "Parse checkpoint hash", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrInvalidCheckpointHash, Checks: checks}
	}
	checks = append(checks, Check{ID: "checkpoint", Label: "Parse checkpoint hash", Passed: true})

	net, err := ParseNetwork(input.Network)
	if err != nil {
		checks = append(checks, Check{ID: "network", Label: "Load network config", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrUnsupportedNetwork, Checks: checks}
	}
	checks = append(checks, Check{ID: "network", Label: "Load network config", Passed: true})

	bootstrap, err := ParseBootstrap(input.Bootstrap)
	if err != nil {
		checks = append(checks, Check{ID: "bootstrap-parse", Label: "Parse bootstrap", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrInvalidBootstrapJSON, Checks: checks}
	}
	checks = append(checks, Check{ID: "bootstrap-parse", Label: "Parse bootstrap", Passed: true})

	if err := VerifyBootstrap(bootstrap, checkpointRoot, net); err != nil {
		checks = append(checks, Check{ID: "bootstrap-verify", Label: "Verify bootstrap against checkpoint", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrBootstrapVerification, Checks: checks}
	}
	checks = append(checks, Check{ID: "bootstrap-verify", Label: "Verify bootstrap against checkpoint", Passed: true})

	store := NewLightClientStoreFromBootstrap(bootstrap)

	// Expected current slot is computed for completeness/diagnostics, per
	// the wall-clock read required by the public contract; the reference
	// algorithm does not reject updates for running ahead of it, only the
	// per-update signature and Merkle checks gate acceptance.
	_ = expectedCurrentSlot(clock(), net)

	for i, raw := range input.Updates {
		update, err := ParseUpdate(raw)
		if err != nil {
			checks = append(checks, Check{ID: fmt.Sprintf("update-parse-%d", i), Label: "Parse update", Passed: false, Detail: err.Error()})
			return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrInvalidUpdateJSON, Checks: checks}
		}
		checks = append(checks, Check{ID: fmt.Sprintf("update-parse-%d", i), Label: "Parse update", Passed: true})

		if err := VerifyUpdate(store, update, net); err != nil {
			checks = append(checks, Check{ID: fmt.Sprintf("update-verify-%d", i), Label: "Verify update", Passed: false, Detail: err.Error()})
			return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrUpdateVerification, Checks: checks}
		}
		checks = append(checks, Check{ID: fmt.Sprintf("update-verify-%d", i), Label: "Verify update", Passed: true})
		ApplyUpdate(store, update, net)
	}

	finalityUpdate, err := ParseFinalityUpdate(input.FinalityUpdate)
	if err != nil {
		checks = append(checks, Check{ID: "finality-parse", Label: "Parse finality update", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{Valid: false, Error: err.Error(), ErrorCode: ErrInvalidFinalityUpdate, Checks: checks}
	}
	checks = append(checks, Check{ID: "finality-parse", Label: "Parse finality update", Passed: true})

	participants := finalityUpdate.SyncAggregate.ParticipantCount(net.Spec.SyncCommitteeSize)

	if err := VerifyFinalityUpdate(store, finalityUpdate, net); err != nil {
		checks = append(checks, Check{ID: "finality-verify", Label: "Verify finality update", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{
			Valid: false, Error: err.Error(), ErrorCode: ErrFinalityVerification,
			Checks: checks, SyncCommitteeParticipants: participants,
		}
	}
	checks = append(checks, Check{ID: "finality-verify", Label: "Verify finality update", Passed: true})
	ApplyFinalityUpdate(store, finalityUpdate)

	if finalityUpdate.ExecutionPayload == nil {
		checks = append(checks, Check{ID: "execution-payload", Label: "Extract execution payload", Passed: false, Detail: "finalized header has no execution payload (pre-Capella)"})
		return ConsensusVerificationResult{
			Valid: false, Error: "finalized header has no execution payload", ErrorCode: ErrMissingExecutionPayload,
			Checks: checks, SyncCommitteeParticipants: participants,
		}
	}
	checks = append(checks, Check{ID: "execution-payload", Label: "Extract execution payload", Passed: true})

	verifiedStateRoot := finalityUpdate.ExecutionPayload.StateRoot
	verifiedBlockNumber := finalityUpdate.ExecutionPayload.BlockNumber
	verifiedStateRootHex := codec.HexEncode(verifiedStateRoot[:])
	verifiedBlockNumberHex := fmt.Sprintf("0x%x", verifiedBlockNumber)

	expectedRoot, err := codec.ParseRoot(input.ExpectedStateRoot)
	if err != nil {
		checks = append(checks, Check{ID: "expected-state-root", Label: "Parse expected state root", Passed: false, Detail: err.Error()})
		return ConsensusVerificationResult{
			Valid: false, Error: err.Error(), ErrorCode: ErrInvalidExpectedStateRoot,
			Checks: checks, SyncCommitteeParticipants: participants,
			VerifiedStateRoot: verifiedStateRootHex, VerifiedBlockNumber: verifiedBlockNumberHex,
		}
	}
	checks = append(checks, Check{ID: "expected-state-root", Label: "Parse expected state root", Passed: true})

	matches := verifiedStateRoot == expectedRoot
	checks = append(checks, Check{ID: "state-root-match", Label: "Compare extracted vs expected state root", Passed: matches})

	result := ConsensusVerificationResult{
		Valid:                     matches,
		VerifiedStateRoot:         verifiedStateRootHex,
		VerifiedBlockNumber:       verifiedBlockNumberHex,
		StateRootMatches:          matches,
		SyncCommitteeParticipants: participants,
		Checks:                    checks,
	}
	if !matches {
		result.Error = "extracted execution state root does not match expected state root"
		result.ErrorCode = ErrStateRootMismatch
	}
	return result
}
