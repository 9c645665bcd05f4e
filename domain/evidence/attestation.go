package evidence

// AttestationLevel classifies how strongly a device's key material is
// hardware-protected. Produced by the external attestation verifier; the
// engine never re-validates certificate chains itself.
type AttestationLevel string

const (
	AttestationSecureEnclave AttestationLevel = "secure_enclave"
	AttestationStrongBox     AttestationLevel = "strongbox"
	AttestationTEE           AttestationLevel = "tee"
	AttestationUnverified    AttestationLevel = "unverified"
)

// HardwareBacked reports whether the level implies hardware key protection.
func (l AttestationLevel) HardwareBacked() bool {
	switch l {
	case AttestationSecureEnclave, AttestationStrongBox, AttestationTEE:
		return true
	}
	return false
}

// Attestation is the verified hardware-trust input consumed directly from the
// external attestation verifier.
type Attestation struct {
	Level    AttestationLevel `json:"level"`
	Verified bool             `json:"verified"`
}
