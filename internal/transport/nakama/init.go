package nakama

import (
	"context"
	"database/sql"
	"os"

	"github.com/heroiclabs/nakama-common/runtime"

	"github.com/alexstennet/presidents/internal/config"
	"github.com/alexstennet/presidents/internal/hand"
)

// InitModule wires the RPC and match handler for the Nakama runtime,
// the role the teacher's ports/nakama/init.go plays for Tien Len
// (minus the Vivox/bot wiring the teacher's version also did — both
// are Non-goals here).
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	if err := RegisterRPCs(initializer); err != nil {
		return err
	}
	if err := initializer.RegisterMatch(MatchName, NewMatch); err != nil {
		return err
	}
	if config.GetMatchConfig().PrecomputeTableAtStartup {
		hand.PrecomputeTable()
	}
	logger.Info("presidents module loaded.")
	return nil
}

// envOrOs reads key from the Nakama runtime env map first, falling
// back to the process environment, mirroring the teacher's identical
// helper in ports/nakama/init.go.
func envOrOs(env map[string]string, key string) string {
	if value, ok := env[key]; ok && value != "" {
		return value
	}
	return os.Getenv(key)
}
