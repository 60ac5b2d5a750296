package securejoin

// StageKind says what a handshake call achieved.
type StageKind int

const (
	// StageRequestSent means vc-request or vg-request went out.
	StageRequestSent StageKind = iota + 1
	// StageRequestWithAuthSent means the request-with-auth went out.
	StageRequestWithAuthSent
	// StageTerminated means the handshake failed; Stage.Reason says why.
	StageTerminated
)

// Reasons reported with StageTerminated. They are shown to the user.
const (
	ReasonEncryptionMissing   = "Required encryption missing"
	ReasonSignatureMissing    = "Valid signature missing"
	ReasonFingerprintMismatch = "Fingerprint mismatch"
)

// Stage is the outcome of a handshake step.
type Stage struct {
	Kind   StageKind
	Reason string
}

// String returns a short label for the stage.
func (s Stage) String() string {
	switch s.Kind {
	case StageRequestSent:
		return "request-sent"
	case StageRequestWithAuthSent:
		return "request-with-auth-sent"
	case StageTerminated:
		return "terminated: " + s.Reason
	default:
		return "unknown"
	}
}

func terminated(reason string) *Stage {
	return &Stage{Kind: StageTerminated, Reason: reason}
}
