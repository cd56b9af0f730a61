package consensus

// SpecParams is the consensus-spec capability set the verifier is
// parameterized over. Two instantiations are needed: the default (Altair
// mainnet-shaped) spec used by most networks, and an alternate profile used
// by Gnosis Chain, which keeps the 512-member sync committee but uses
// 16-slot epochs and 512-epoch sync-committee periods. The verifier's
// algorithm never changes between the two; only these sizing constants do.
type SpecParams struct {
	// Name identifies the spec profile for diagnostics.
	Name string
	// SyncCommitteeSize is the number of validators in a sync committee.
	SyncCommitteeSize int
	// SlotsPerEpoch is the number of slots in one epoch.
	SlotsPerEpoch uint64
	// EpochsPerSyncCommitteePeriod is the number of epochs a sync committee
	// serves before rotating.
	EpochsPerSyncCommitteePeriod uint64
}

// MainnetSpec is the default consensus-spec capability set, shared by
// mainnet, sepolia, holesky, and hoodi.
var MainnetSpec = SpecParams{
	Name:                         "mainnet",
	SyncCommitteeSize:            512,
	SlotsPerEpoch:                32,
	EpochsPerSyncCommitteePeriod: 256,
}

// GnosisSpec is the alternate consensus-spec capability set used by Gnosis
// Chain, which runs a 5-second slot time and a correspondingly shorter
// sync-committee rotation window. Source:
// https://github.com/gnosischain/configs/blob/main/mainnet/config.yaml
var GnosisSpec = SpecParams{
	Name:                         "gnosis",
	SyncCommitteeSize:            512,
	SlotsPerEpoch:                16,
	EpochsPerSyncCommitteePeriod: 512,
}

// EpochAtSlot returns the epoch containing the given slot under this spec.
func (s SpecParams) EpochAtSlot(slot uint64) uint64 {
	return slot / s.SlotsPerEpoch
}

// SyncCommitteePeriod returns the sync-committee period containing the
// given epoch under this spec.
func (s SpecParams) SyncCommitteePeriod(epoch uint64) uint64 {
	return epoch / s.EpochsPerSyncCommitteePeriod
}
