package consensus

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// Sentinel errors returned by the verification procedures in this file.
// api.go maps each to its ErrorCode.
var (
	errCheckpointMismatch       = errors.New("consensus: bootstrap header does not match checkpoint")
	errCurrentCommitteeBranch   = errors.New("consensus: current sync committee merkle branch invalid")
	errNextCommitteeBranch      = errors.New("consensus: next sync committee merkle branch invalid")
	errFinalityBranch           = errors.New("consensus: finality merkle branch invalid")
	errNoKnownCommittee         = errors.New("consensus: signature slot falls outside known sync committee periods")
	errSignatureVerification    = errors.New("consensus: sync committee signature verification failed")
	errInsufficientParticipants = errors.New("consensus: sync committee participation below quorum")
)

// verifySignedHeader checks that syncAgg is a valid, quorum-meeting
// aggregate signature by committee over header's signing root, computed at
// the fork active at signatureSlot's epoch.
func verifySignedHeader(header BeaconBlockHeader, signatureSlot uint64, syncAgg SyncAggregate, committee *SyncCommittee, net NetworkConfig) error {
	participants := syncAgg.ParticipantPubkeys(committee)
	if !hasSyncCommitteeQuorum(len(participants), net.Spec.SyncCommitteeSize) {
		return errInsufficientParticipants
	}

	epoch := net.Spec.EpochAtSlot(signatureSlot)
	fork := net.Forks.ActiveAt(epoch)
	domain := computeDomain(domainSyncCommittee, fork.Version, net.GenesisValidatorsRoot)
	headerRoot := beaconBlockHeaderRoot(header)
	signingRoot := computeSigningRoot(headerRoot, domain)

	if !fastAggregateVerify(participants, signingRoot[:], syncAgg.SyncCommitteeSignature) {
		return errSignatureVerification
	}
	return nil
}

// VerifyBootstrap checks that a bootstrap's header hashes to the trusted
// checkpoint root, and that its current sync committee is correctly
// included under the header's state root.
func VerifyBootstrap(b *Bootstrap, checkpointRoot common.Hash, net NetworkConfig) error {
	if beaconBlockHeaderRoot(b.Header) != checkpointRoot {
		return errCheckpointMismatch
	}
	committeeRoot := syncCommitteeRoot(b.CurrentSyncCommittee, net.Spec.SyncCommitteeSize)
	if !isValidMerkleBranch(committeeRoot, b.CurrentSyncCommitteeBranch, currentSyncCommitteeDepth, currentSyncCommitteeGIndex, b.Header.StateRoot) {
		return errCurrentCommitteeBranch
	}
	return nil
}

// VerifyUpdate checks a light client update against the current store
// state: the attested header's signature by the applicable sync committee,
// the finalized header's inclusion under the attested header (when
// present), and the next sync committee's inclusion (when present).
func VerifyUpdate(store *LightClientStore, u *Update, net NetworkConfig) error {
	committee, ok := store.SyncCommitteeForSignaturePeriod(u.SignatureSlot, net.Spec)
	if !ok {
		return errNoKnownCommittee
	}
	if err := verifySignedHeader(u.AttestedHeader, u.SignatureSlot, u.SyncAggregate, committee, net); err != nil {
		return err
	}

	if u.FinalizedHeader != (BeaconBlockHeader{}) {
		finalizedRoot := beaconBlockHeaderRoot(u.FinalizedHeader)
		if !isValidMerkleBranch(finalizedRoot, u.FinalityBranch, finalizedRootDepth, finalizedRootGIndex, u.AttestedHeader.StateRoot) {
			return errFinalityBranch
		}
	}

	if u.NextSyncCommittee != nil {
		nextRoot := syncCommitteeRoot(*u.NextSyncCommittee, net.Spec.SyncCommitteeSize)
		if !isValidMerkleBranch(nextRoot, u.NextSyncCommitteeBranch, nextSyncCommitteeDepth, nextSyncCommitteeGIndex, u.AttestedHeader.StateRoot) {
			return errNextCommitteeBranch
		}
	}

	return nil
}

// ApplyUpdate advances store with a verified update.
func ApplyUpdate(store *LightClientStore, u *Update, net NetworkConfig) {
	store.ApplyUpdate(u, net.Spec)
}

// VerifyFinalityUpdate checks a finality update: the attested header's
// signature by the applicable sync committee, and the finalized header's
// inclusion under the attested header.
func VerifyFinalityUpdate(store *LightClientStore, f *FinalityUpdate, net NetworkConfig) error {
	committee, ok := store.SyncCommitteeForSignaturePeriod(f.SignatureSlot, net.Spec)
	if !ok {
		return errNoKnownCommittee
	}
	if err := verifySignedHeader(f.AttestedHeader, f.SignatureSlot, f.SyncAggregate, committee, net); err != nil {
		return err
	}

	finalizedRoot := beaconBlockHeaderRoot(f.FinalizedHeader)
	if !isValidMerkleBranch(finalizedRoot, f.FinalityBranch, finalizedRootDepth, finalizedRootGIndex, f.AttestedHeader.StateRoot) {
		return errFinalityBranch
	}
	return nil
}

// ApplyFinalityUpdate advances store with a verified finality update.
func ApplyFinalityUpdate(store *LightClientStore, f *FinalityUpdate) {
	store.ApplyFinalityUpdate(f)
}
