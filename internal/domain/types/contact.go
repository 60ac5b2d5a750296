package types

// Origin records how a contact became known. Higher values carry more trust
// and an origin is only ever raised.
type Origin int

const (
	OriginUnknown          Origin = 0
	OriginIncomingUnknown  Origin = 0x10
	OriginUnhandledQrScan  Origin = 0x80
	OriginManuallyCreated  Origin = 0x4000
	OriginSecurejoinJoined Origin = 0x2000000
)

// String returns a short label for the origin.
func (o Origin) String() string {
	switch o {
	case OriginUnknown:
		return "unknown"
	case OriginIncomingUnknown:
		return "incoming-unknown"
	case OriginUnhandledQrScan:
		return "unhandled-qr-scan"
	case OriginManuallyCreated:
		return "manually-created"
	case OriginSecurejoinJoined:
		return "securejoin-joined"
	default:
		return "custom"
	}
}

// Contact is an address book entry.
type Contact struct {
	ID     ContactID `json:"id"`
	Addr   Username  `json:"addr"`
	Name   string    `json:"name,omitempty"`
	Origin Origin    `json:"origin"`
}
