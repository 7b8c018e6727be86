package nakama

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/alexstennet/presidents/internal/card"
	"github.com/alexstennet/presidents/internal/event"
	"github.com/alexstennet/presidents/internal/hand"
	"github.com/alexstennet/presidents/internal/match"
)

// encodeEvent turns a core event.Event into the bytes dispatched under
// OpEvent. The envelope (event name, scope, seat, flattened payload)
// is built as a structpb.Struct and proto-marshaled, the same
// "convert domain type to wire type, then proto.Marshal it" shape as
// the teacher's convert.go + broadcastEvent — structpb stands in for
// the teacher's generated pb types, which this retrieval pack never
// received the .proto for (SPEC_FULL.md DOMAIN STACK).
func encodeEvent(e event.Event) ([]byte, error) {
	fields := map[string]interface{}{
		"name":  string(e.Name),
		"scope": e.Scope.String(),
		"seat":  float64(e.Seat),
	}
	for k, v := range payloadFields(e.Payload) {
		fields[k] = v
	}
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

func payloadFields(payload any) map[string]interface{} {
	switch p := payload.(type) {
	case card.ID:
		return map[string]interface{}{"card": float64(p)}
	case hand.Hand:
		return map[string]interface{}{"hand": p.Label(), "cards": cardsToAny(p.Cards())}
	case match.AssignCardsPayload:
		return map[string]interface{}{"cards": cardsToAny(p.Cards)}
	case match.HandInPlayPayload:
		return map[string]interface{}{"hand": p.Hand}
	case match.AlertPayload:
		return map[string]interface{}{"alert": p.Alert}
	case match.MessagePayload:
		return map[string]interface{}{"msg": p.Msg}
	default:
		return nil
	}
}

func cardsToAny(cards []card.ID) []interface{} {
	out := make([]interface{}, len(cards))
	for i, c := range cards {
		out[i] = float64(c)
	}
	return out
}

// decodeIntent unmarshals an inbound runtime.MatchData payload into
// the structpb.Struct it was encoded as by the client, mirroring the
// teacher's proto.Unmarshal(msg.GetData(), request) step in
// handlePlayCards/handlePassTurn.
func decodeIntent(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if err := proto.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

func fieldCard(st *structpb.Struct) (card.ID, bool) {
	v, ok := st.GetFields()["card"]
	if !ok {
		return 0, false
	}
	return card.ID(v.GetNumberValue()), true
}

func fieldHandID(st *structpb.Struct) (int, bool) {
	v, ok := st.GetFields()["hand_id"]
	if !ok {
		return 0, false
	}
	return int(v.GetNumberValue()), true
}

func fieldText(st *structpb.Struct) (string, bool) {
	v, ok := st.GetFields()["msg"]
	if !ok {
		return "", false
	}
	return v.GetStringValue(), true
}
