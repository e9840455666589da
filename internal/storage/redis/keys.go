package redis

import (
	"fmt"

	"github.com/mcoot/hiddengrid/internal/fhe"
	"github.com/mcoot/hiddengrid/internal/model"
)

// Key prefix for all grid data
const keyPrefix = "hgrid"

// playerKey returns the Redis key for a Player
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// registeredPlayerKey returns the Redis key for a RegisteredPlayer
func registeredPlayerKey(playerID model.PlayerID) string {
	return fmt.Sprintf("%s:registered_player:%s", keyPrefix, playerID)
}

// usernameIndexKey returns the Redis key for the username -> player_id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// recordKey returns the Redis key for a PlayerRecord
func recordKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:record:%s", keyPrefix, id)
}

// recordsIndexKey returns the Redis key for the SET of joined players
func recordsIndexKey() string {
	return fmt.Sprintf("%s:idx:records", keyPrefix)
}

// ciphertextKey returns the Redis key for a ciphertext blob
func ciphertextKey(h fhe.Handle) string {
	return fmt.Sprintf("%s:ct:%s", keyPrefix, h)
}

// aclKey returns the Redis key for the SET of accounts allowed on a handle
func aclKey(h fhe.Handle) string {
	return fmt.Sprintf("%s:acl:%s", keyPrefix, h)
}

// eventsKey returns the Redis key for the event log LIST
func eventsKey() string {
	return fmt.Sprintf("%s:events", keyPrefix)
}
