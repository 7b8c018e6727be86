// Package nakama binds the core match engine (internal/match) to the
// Nakama authoritative game-server runtime, the same role the
// teacher's internal/ports/nakama package plays for Tien Len: a
// runtime.Match implementation that translates intents arriving as
// runtime.MatchData into engine calls, and engine events into
// dispatcher.BroadcastMessage calls.
package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/alexstennet/presidents/internal/chamber"
	"github.com/alexstennet/presidents/internal/config"
	"github.com/alexstennet/presidents/internal/deal"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/match"
	"github.com/alexstennet/presidents/internal/session"
)

// matchLabel is the Nakama match label: queryable lobby metadata,
// mirroring the teacher's MatchLabelKey_OpenSeats label shape.
type matchLabel struct {
	OpenSeats int    `json:"open_seats"`
	Phase     string `json:"phase"`
}

// MatchState holds the authoritative runtime state for one match: the
// engine once dealt, seat <-> user bookkeeping, and the sink bridging
// engine events to the wire.
type MatchState struct {
	MatchID string

	Engine *match.Match
	Dealer deal.Dealer
	Signer *session.Signer

	Presences  map[string]runtime.Presence
	SeatOfUser map[string]int
	UserOfSeat [4]string

	Rec  *event.Recorder
	Sink *broadcastSink
}

func (ms *MatchState) openSeatsCount() int {
	n := 0
	for _, u := range ms.UserOfSeat {
		if u == "" {
			n++
		}
	}
	return n
}

// broadcastSink forwards every engine event to the Recorder (so a
// reconnecting seat's snapshot can be replayed, spec.md §5) and, while
// a dispatcher is attached, out over the wire via encodeEvent.
// Dispatcher is only non-nil for the duration of the MatchJoin/
// MatchLeave/MatchLoop call that supplied it — Nakama hands the
// dispatcher to the handler per call, not to the state.
type broadcastSink struct {
	rec        *event.Recorder
	dispatcher runtime.MatchDispatcher
	presences  map[string]runtime.Presence
	userOfSeat *[4]string
	logger     runtime.Logger
}

func (s *broadcastSink) Emit(e event.Event) {
	s.rec.Emit(e)
	if s.dispatcher == nil {
		return
	}
	data, err := encodeEvent(e)
	if err != nil {
		s.logger.Error("nakama: failed to encode event %q: %v", e.Name, err)
		return
	}
	switch e.Scope {
	case event.ScopeOff:
		return
	case event.ScopeSeat:
		uid := s.userOfSeat[e.Seat]
		if uid == "" {
			return
		}
		p, ok := s.presences[uid]
		if !ok {
			return
		}
		_ = s.dispatcher.BroadcastMessage(OpEvent, data, []runtime.Presence{p}, nil, true)
	case event.ScopeAll:
		_ = s.dispatcher.BroadcastMessage(OpEvent, data, nil, nil, true)
	}
}

// NewMatch is the factory Nakama's RegisterMatch calls for each new match.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := envOrOs(env, "PRESIDENTS_SESSION_SECRET")
	if secret == "" {
		secret = "presidents-dev-secret"
	}

	state := &MatchState{
		MatchID:    matchID,
		Dealer:     deal.NewMathRandDealer(nil),
		Presences:  make(map[string]runtime.Presence),
		SeatOfUser: make(map[string]int),
		Rec:        &event.Recorder{},
	}
	if config.GetMatchConfig().SessionResumeEnabled {
		state.Signer = session.NewSigner([]byte(secret), 0)
	}
	state.Sink = &broadcastSink{
		rec:        state.Rec,
		presences:  state.Presences,
		userOfSeat: &state.UserOfSeat,
		logger:     logger,
	}

	label, err := json.Marshal(matchLabel{OpenSeats: 4, Phase: "lobby"})
	if err != nil {
		logger.Error("MatchInit: failed to marshal label: %v", err)
		return nil, 0, ""
	}

	const tickRate = 5
	return state, tickRate, string(label)
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	ms, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}
	if _, seated := ms.SeatOfUser[presence.GetUserId()]; seated {
		return state, true, "" // reconnecting to an already-assigned seat
	}
	if ms.openSeatsCount() <= 0 {
		return state, false, "match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}
	ms.Sink.dispatcher = dispatcher
	defer func() { ms.Sink.dispatcher = nil }()

	for _, p := range presences {
		ms.Presences[p.GetUserId()] = p

		if seat, seated := ms.SeatOfUser[p.GetUserId()]; seated {
			logger.Info("MatchJoin: %s reconnected to seat %d", p.GetUserId(), seat)
			ms.replaySeat(seat, p, dispatcher, logger)
			continue
		}

		seat := -1
		for i, u := range ms.UserOfSeat {
			if u == "" {
				seat = i
				break
			}
		}
		if seat == -1 {
			logger.Warn("MatchJoin: %s joined but no seat was available", p.GetUserId())
			continue
		}
		ms.UserOfSeat[seat] = p.GetUserId()
		ms.SeatOfUser[p.GetUserId()] = seat
		logger.Info("MatchJoin: %s seated at %d", p.GetUserId(), seat)

		if ms.Engine != nil {
			ms.replaySeat(seat, p, dispatcher, logger)
		}
	}

	if ms.Engine == nil && ms.openSeatsCount() == 0 {
		ms.startEngine(logger)
	}

	mh.updateLabel(ms, dispatcher, logger)
	return ms
}

// startEngine deals the match once all four seats are occupied. The
// core's §4.3 "Setup" runs here: card.Opening's holder leads, and
// assign-cards events fire to each seat via ms.Sink (already attached
// to the dispatcher for this MatchJoin call).
func (ms *MatchState) startEngine(logger runtime.Logger) {
	var setups [4]match.SeatSetup
	for i, u := range ms.UserOfSeat {
		setups[i] = match.SeatSetup{Name: u, Ident: u}
	}
	ms.Engine = match.New(setups, ms.Dealer, ms.Sink)
	logger.Info("startEngine: match %s dealt, seat %d leads", ms.MatchID, ms.Engine.Turn())
}

// replaySeat sends a reconnecting or newly-joined presence every event
// it has been eligible to see so far (spec.md §5 "Reconnection
// replays the current seat snapshot"), then, if the engine is live,
// signs and sends a resume token carrying its in-progress selection
// (spec.md §6 "Persisted state").
func (ms *MatchState) replaySeat(seat int, p runtime.Presence, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	for _, e := range ms.Rec.Seat(seat) {
		data, err := encodeEvent(e)
		if err != nil {
			logger.Error("replaySeat: encode failed: %v", err)
			continue
		}
		_ = dispatcher.BroadcastMessage(OpEvent, data, []runtime.Presence{p}, nil, true)
	}
	if ms.Engine == nil || ms.Signer == nil {
		return
	}
	slots := ms.Engine.Seat(seat).Selection().Slots()
	var selection [5]int
	for i, c := range slots {
		selection[i] = int(c)
	}
	tok := session.Token{
		MatchID:   ms.MatchID,
		Seat:      seat,
		Selection: selection,
		Handle:    newReconnectHandle(),
	}
	signed, err := ms.Signer.Sign(tok)
	if err != nil {
		logger.Error("replaySeat: failed to sign resume token: %v", err)
		return
	}
	_ = dispatcher.BroadcastMessage(OpReconnectHandle, []byte(signed), []runtime.Presence{p}, nil, true)
}

// MatchLeave never frees a seat: spec.md §5 says a disconnect is "no
// intents from that seat," not a seat vacancy, and the match does not
// time out automatically. The seat is reclaimed on the same user's
// next MatchJoin.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}
	for _, p := range presences {
		delete(ms.Presences, p.GetUserId())
		logger.Info("MatchLeave: %s disconnected, seat retained for reconnect", p.GetUserId())
	}
	mh.updateLabel(ms, dispatcher, logger)
	return ms
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	ms, ok := state.(*MatchState)
	if !ok {
		return state
	}
	ms.Sink.dispatcher = dispatcher
	defer func() { ms.Sink.dispatcher = nil }()

	for _, msg := range messages {
		mh.dispatch(ms, logger, msg)
	}
	return ms
}

// dispatch applies one inbound intent (spec.md §6) to the engine. The
// engine itself reports user-correctable failures as an alert event
// via ms.Sink rather than a return value the transport must forward,
// so a non-nil err here is only logged for operator visibility.
func (mh *matchHandler) dispatch(ms *MatchState, logger runtime.Logger, msg runtime.MatchData) {
	seat, seated := ms.SeatOfUser[msg.GetUserId()]
	if !seated {
		logger.Warn("dispatch: message from unseated user %s", msg.GetUserId())
		return
	}
	if ms.Engine == nil {
		logger.Warn("dispatch: seat %d acted before the match was dealt", seat)
		return
	}

	var err error
	switch msg.GetOpCode() {
	case OpCardClick:
		st, derr := decodeIntent(msg.GetData())
		if derr != nil {
			logger.Warn("dispatch: bad card-click payload from seat %d: %v", seat, derr)
			return
		}
		c, ok := fieldCard(st)
		if !ok {
			return
		}
		err = ms.Engine.CardClick(seat, c)
	case OpHandClick:
		st, derr := decodeIntent(msg.GetData())
		if derr != nil {
			logger.Warn("dispatch: bad hand-click payload from seat %d: %v", seat, derr)
			return
		}
		id, ok := fieldHandID(st)
		if !ok {
			return
		}
		err = ms.Engine.HandClick(seat, chamber.HandID(id))
	case OpClearCurrentHand:
		err = ms.Engine.ClearCurrentHand(seat)
	case OpStore:
		_, err = ms.Engine.Store(seat)
	case OpClearStoredHands:
		err = ms.Engine.ClearStoredHands(seat)
	case OpPlayCurrentHand:
		err = ms.Engine.PlayCurrentHand(seat)
	case OpPassCurrentHand:
		err = ms.Engine.Pass(seat)
	case OpText:
		st, derr := decodeIntent(msg.GetData())
		if derr != nil {
			return
		}
		if text, ok := fieldText(st); ok {
			ms.Sink.Emit(event.Event{Name: event.Message, Payload: match.MessagePayload{Msg: text}, Scope: event.ScopeAll})
		}
	default:
		logger.Warn("dispatch: unknown opcode %d from seat %d", msg.GetOpCode(), seat)
		return
	}
	if err != nil {
		logger.Debug("dispatch: seat %d opcode %d: %v", seat, msg.GetOpCode(), err)
	}
}

func (mh *matchHandler) updateLabel(ms *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	var phase string
	switch {
	case ms.Engine == nil:
		phase = "lobby"
	case ms.Engine.Ended():
		phase = "ended"
	default:
		phase = "playing"
	}
	label, err := json.Marshal(matchLabel{OpenSeats: ms.openSeatsCount(), Phase: phase})
	if err != nil {
		logger.Error("updateLabel: failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(string(label)); err != nil {
		logger.Error("updateLabel: failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: match terminated, reason %d", reason)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
