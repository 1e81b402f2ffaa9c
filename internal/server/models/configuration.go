package models

// ConfigBlock holds the service URLs handed out to callers. The JSON tags
// match the wire format consumed by the other services.
type ConfigBlock struct {
	IdentityURL       string `json:"identityUrl"`
	NsURL             string `json:"nsUrl"`
	QsURL             string `json:"qsUrl"`
	FsURL             string `json:"fsUrl"`
	SfURL             string `json:"sfUrl"`
	SmURL             string `json:"smUrl"`
	AllowSelfSignCert bool   `json:"allowSelfSignCert"`
}

// Configuration is the singleton shared configuration document. Callers on
// the local network segment receive the Internal block, everyone else the
// External one.
type Configuration struct {
	Internal ConfigBlock `json:"internal"`
	External ConfigBlock `json:"external"`
}
