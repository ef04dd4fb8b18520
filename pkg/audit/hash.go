package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns a SHA-256 fingerprint of the event content. Storage backends
// persist it next to the event so later edits of a row can be detected.
// The ID and the Hash field itself are not part of the digest.
func Hash(event Event) string {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		metadata = []byte(fmt.Sprint(event.Metadata))
	}

	data := fmt.Sprintf(
		"%s|%s|%s|%s|%s|%s|%s|%d|%s",
		event.Action,
		event.Resource,
		event.ResourceID,
		event.Result,
		event.Error,
		event.RequestID,
		event.ClientIP,
		event.CreatedAt.UnixNano(),
		metadata,
	)

	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
