package domain

const (
	RequesterIdCtxKey     = "op-requesterId"
	ViewerContextCtxKey   = "op-viewerContext"
	RequesterDomainCtxKey = "op-requesterDomain"
)

const (
	// RequesterDomainHeader names the origin domain of a
	// server-to-server request, checked against the trust registry.
	RequesterDomainHeader = "op-requester-domain"
	// RequesterTokenHeader carries the proof for the announced
	// domain: an HS256 JWT signed with that peer's shared secret.
	RequesterTokenHeader = "op-requester-token"
)

const (
	Unknown = iota
	LocalUser
	RemoteUser
	RemoteServer
)

func RequesterTypeString(t int) string {
	switch t {
	case LocalUser:
		return "LocalUser"
	case RemoteUser:
		return "RemoteUser"
	case RemoteServer:
		return "RemoteServer"
	case Unknown:
		return "Unknown"
	default:
		return "Error"
	}
}
