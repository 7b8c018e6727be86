package nakama

import "github.com/google/uuid"

// newReconnectHandle mints an opaque per-issuance id stamped on every
// resume token a seat is sent, the same uuid.New().String() pattern
// the teacher's hooks.go uses to mint a fresh device id: it lets a
// client or operator tell two reconnects of the same seat apart
// without the handle itself granting anything — reseating is still
// decided by the Nakama user id, not by this value.
func newReconnectHandle() string {
	return uuid.New().String()
}
