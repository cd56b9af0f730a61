package consensus

import (
	"encoding/json"
	"fmt"
	"strings"
)

// flexibleChainID unmarshals a chain id carried as either a JSON number or a
// JSON string, storing the string's contents or the number's literal text, so
// that "1" and 1 compare equal. The text is not converted: a hex string such
// as "0x1" is kept as written.
type flexibleChainID string

func (f *flexibleChainID) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleChainID(s)
		return nil
	}
	*f = flexibleChainID(trimmed)
	return nil
}

type nonBeaconBlock struct {
	Number    string `json:"number"`
	StateRoot string `json:"stateRoot"`
}

type nonBeaconEnvelope struct {
	ConsensusMode string          `json:"consensusMode"`
	ChainID       flexibleChainID `json:"chainId"`
	Block         nonBeaconBlock  `json:"block"`
}

// envelopeCheckResult is the outcome of the structural-only check run for
// any non-beacon consensus mode.
type envelopeCheckResult struct {
	checks           []Check
	stateRootMatches bool
	verifiedRoot     string
	parseFailed      bool
}

// checkNonBeaconEnvelope implements the envelope-only structural path:
// parse the proof payload, compare its declared mode/chain id/state
// root/block number against the package's own declared values. It never
// asserts cryptographic validity -- that is the caller's job to refuse via
// ErrUnsupportedConsensusMode.
func checkNonBeaconEnvelope(input *ConsensusProofInput) envelopeCheckResult {
	var result envelopeCheckResult

	var envelope nonBeaconEnvelope
	if input.ProofPayload == "" || json.Unmarshal([]byte(input.ProofPayload), &envelope) != nil {
		result.parseFailed = true
		result.checks = append(result.checks, Check{
			ID: "envelope-parse", Label: "Parse non-beacon proof payload", Passed: false,
			Detail: "proofPayload is missing or not valid JSON",
		})
		return result
	}
	result.checks = append(result.checks, Check{ID: "envelope-parse", Label: "Parse non-beacon proof payload", Passed: true})

	modeMatches := envelope.ConsensusMode == input.ConsensusMode
	result.checks = append(result.checks, Check{
		ID: "envelope-mode", Label: "Declared consensus mode matches package", Passed: modeMatches,
	})

	chainMatches := input.PackageChainID == "" || string(envelope.ChainID) == input.PackageChainID
	result.checks = append(result.checks, Check{
		ID: "envelope-chain-id", Label: "Declared chain id matches package", Passed: chainMatches,
	})

	blockNumberMatches := strings.EqualFold(normalizeHexLike(envelope.Block.Number), normalizeHexLike(input.BlockNumber))
	result.checks = append(result.checks, Check{
		ID: "envelope-block-number", Label: "Declared block number matches package", Passed: blockNumberMatches,
	})

	result.verifiedRoot = envelope.Block.StateRoot
	result.stateRootMatches = strings.EqualFold(normalizeHexLike(envelope.Block.StateRoot), normalizeHexLike(input.ExpectedStateRoot))
	result.checks = append(result.checks, Check{
		ID: "envelope-state-root", Label: "Declared state root matches expected state root", Passed: result.stateRootMatches,
		Detail: fmt.Sprintf("embedded=%s expected=%s", envelope.Block.StateRoot, input.ExpectedStateRoot),
	})

	return result
}

// normalizeHexLike lowercases a hex-ish string for loose comparison without
// requiring it to be well-formed (unlike codec.NormalizeHex, which is for
// values already known to be valid hex).
func normalizeHexLike(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
