package nakama

const (
	// RpcFindMatch is the Nakama RPC id clients call to find or create a
	// lobby-capable match (mirrors the teacher's RpcQuickMatch).
	RpcFindMatch = "find_match"

	// MatchName is the authoritative match handler name registered with
	// Nakama.
	MatchName = "presidents_match"
)

// Intent opcodes, client -> server. Names and payload shapes are
// spec.md §6's inbound intents; the opcode is only a dispatch key, the
// wire payload carries the rest.
//
// OpJoined and OpLeft are not dispatched through MatchLoop: Nakama
// already exposes those two intents as the MatchJoin/MatchLeave
// lifecycle methods, so the handler implements them there instead of
// over an opcode. They're named here so every spec.md §6 inbound
// intent has a constant, even the two this binding serves a different
// way.
const (
	OpJoined           int64 = 1
	OpCardClick        int64 = 2
	OpHandClick        int64 = 3
	OpClearCurrentHand int64 = 4
	OpStore            int64 = 5
	OpClearStoredHands int64 = 6
	OpPlayCurrentHand  int64 = 7
	OpPassCurrentHand  int64 = 8
	OpLeft             int64 = 9
	OpText             int64 = 10
)

// OpEvent is the single server -> client opcode every outbound event
// (spec.md §6) is broadcast under; the envelope's "name" field
// discriminates the event kind, the way structpb.Struct stands in for
// the teacher's per-event pb.OpCode_OP_CODE_* constants (SPEC_FULL.md
// DOMAIN STACK).
//
// OpReconnectHandle carries a signed session.Token (internal/session)
// to a seat that just (re)joined a live match: the optional
// session-resume channel spec.md §6 allows, not a core protocol event.
const (
	OpEvent           int64 = 100
	OpReconnectHandle int64 = 101
)
