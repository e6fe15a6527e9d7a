package ssa

// BlockID and InstrID are stable dense identifiers: once assigned they are
// never reused, and index directly into the owning Graph's arenas and into
// analysis side tables.
type BlockID uint32

type InstrID uint32
