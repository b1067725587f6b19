package config

// ProviderConfig locates the identity-provider realms and the secondary
// credential endpoint. Two realms exist: the standard user pool and the
// privileged (admin) pool.
type ProviderConfig interface {
	GetStandardIssuerURL() string
	GetStandardClientID() string
	GetStandardClientSecret() string
	GetPrivilegedIssuerURL() string
	GetPrivilegedClientID() string
	GetPrivilegedClientSecret() string
	GetSecondaryLoginURL() string
	GetSecondaryOrigin() string
}

type Provider struct{}

var _ ProviderConfig = Provider{}

func (Provider) GetStandardIssuerURL() string {
	return GetEnv("IDP_ISSUER_URL", "")
}

func (Provider) GetStandardClientID() string {
	return GetEnv("IDP_CLIENT_ID", "")
}

func (Provider) GetStandardClientSecret() string {
	return GetEnv("IDP_CLIENT_SECRET", "")
}

func (Provider) GetPrivilegedIssuerURL() string {
	return GetEnv("IDP_ADMIN_ISSUER_URL", "")
}

func (Provider) GetPrivilegedClientID() string {
	return GetEnv("IDP_ADMIN_CLIENT_ID", "")
}

func (Provider) GetPrivilegedClientSecret() string {
	return GetEnv("IDP_ADMIN_CLIENT_SECRET", "")
}

func (Provider) GetSecondaryLoginURL() string {
	return GetEnv("SECONDARY_LOGIN_URL", "")
}

func (Provider) GetSecondaryOrigin() string {
	return GetEnv("SECONDARY_ORIGIN", "")
}
