package runident

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// NewRunID generates a fresh identifier for one simulation run.
func NewRunID() string {
	return uuid.New().String()
}

// Fingerprint hashes a configuration's serialized form (typically its raw
// YAML bytes) with blake2b-256 and returns the hex digest, so two runs
// against byte-identical configuration can be recognized without
// re-parsing or deep-comparing the structs.
func Fingerprint(configBytes []byte) string {
	sum := blake2b.Sum256(configBytes)
	return hex.EncodeToString(sum[:])
}

// Identity bundles a run's ID, the engine kind it drove, and its
// configuration fingerprint, for attaching to exported reports.
type Identity struct {
	RunID             string `json:"run_id"`
	Engine            string `json:"engine"`
	ConfigFingerprint string `json:"config_fingerprint"`
}

// New builds an Identity for a freshly started run.
func New(engine string, configBytes []byte) Identity {
	return Identity{
		RunID:             NewRunID(),
		Engine:            engine,
		ConfigFingerprint: Fingerprint(configBytes),
	}
}

// String renders a short human-readable label, e.g. for log lines.
func (i Identity) String() string {
	return fmt.Sprintf("%s[%s]@%s", i.Engine, i.RunID, i.ConfigFingerprint[:12])
}
