package nakama

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/heroiclabs/nakama-common/runtime"
)

// findMatchResponse is the payload returned to clients requesting a
// lobby-capable match, mirroring the teacher's QuickMatchResponse.
type findMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers every Nakama RPC endpoint this transport exposes.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcFindMatch, rpcFindMatch)
}

func rpcFindMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	query := "+label.phase:lobby"
	limit := 10
	authoritative := true
	minSize := 1
	maxSize := 3 // strictly fewer than 4: a full lobby isn't "open"

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, query)
	if err != nil {
		logger.Error("rpcFindMatch: MatchList failed: %v", err)
		return "", err
	}
	if len(matches) > 0 {
		b, _ := json.Marshal(findMatchResponse{MatchID: matches[0].MatchId})
		return string(b), nil
	}

	matchID, err := nk.MatchCreate(ctx, MatchName, map[string]interface{}{})
	if err != nil {
		logger.Error("rpcFindMatch: MatchCreate failed: %v", err)
		return "", err
	}
	b, _ := json.Marshal(findMatchResponse{MatchID: matchID, IsNew: true})
	return string(b), nil
}
