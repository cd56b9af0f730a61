package consensus

// LightClientStore tracks the minimal light-client state needed to verify a
// chain of updates: the current and (once known) next sync committees,
// plus the most recently finalized and optimistic headers.
type LightClientStore struct {
	CurrentSyncCommittee SyncCommittee
	NextSyncCommittee    *SyncCommittee
	FinalizedHeader      BeaconBlockHeader
	OptimisticHeader     BeaconBlockHeader
}

// NewLightClientStoreFromBootstrap initializes a store from a verified
// bootstrap: the bootstrap header becomes both the finalized and optimistic
// header, and its current sync committee seeds the store.
func NewLightClientStoreFromBootstrap(b *Bootstrap) *LightClientStore {
	return &LightClientStore{
		CurrentSyncCommittee: b.CurrentSyncCommittee,
		FinalizedHeader:      b.Header,
		OptimisticHeader:     b.Header,
	}
}

// ApplyUpdate advances the store with a verified update: the optimistic
// header moves to the update's attested header, the finalized header moves
// to the update's finalized header, and if the update crosses into the next
// sync committee period, that committee is adopted as current.
func (s *LightClientStore) ApplyUpdate(u *Update, spec SpecParams) {
	storePeriod := spec.SyncCommitteePeriod(spec.EpochAtSlot(s.FinalizedHeader.Slot))
	s.OptimisticHeader = u.AttestedHeader
	if u.FinalizedHeader != (BeaconBlockHeader{}) {
		s.FinalizedHeader = u.FinalizedHeader
	}
	attestedPeriod := spec.SyncCommitteePeriod(spec.EpochAtSlot(u.AttestedHeader.Slot))
	if attestedPeriod > storePeriod && s.NextSyncCommittee != nil {
		s.CurrentSyncCommittee = *s.NextSyncCommittee
		s.NextSyncCommittee = u.NextSyncCommittee
	} else if s.NextSyncCommittee == nil {
		s.NextSyncCommittee = u.NextSyncCommittee
	}
}

// ApplyFinalityUpdate advances the optimistic and finalized headers from a
// verified finality update.
func (s *LightClientStore) ApplyFinalityUpdate(f *FinalityUpdate) {
	s.OptimisticHeader = f.AttestedHeader
	s.FinalizedHeader = f.FinalizedHeader
}

// SyncCommitteeForSignaturePeriod returns the sync committee that should
// have produced a signature at signatureSlot, given the store's current
// knowledge: the current committee if the signature falls in the store's
// period, or the next committee if known and the signature crosses into
// the following period.
func (s *LightClientStore) SyncCommitteeForSignaturePeriod(signatureSlot uint64, spec SpecParams) (*SyncCommittee, bool) {
	storePeriod := spec.SyncCommitteePeriod(spec.EpochAtSlot(s.FinalizedHeader.Slot))
	sigPeriod := spec.SyncCommitteePeriod(spec.EpochAtSlot(signatureSlot))
	switch {
	case sigPeriod == storePeriod:
		return &s.CurrentSyncCommittee, true
	case sigPeriod == storePeriod+1 && s.NextSyncCommittee != nil:
		return s.NextSyncCommittee, true
	default:
		return nil, false
	}
}
