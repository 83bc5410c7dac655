package config

// DemoConfig seeds the example host with one client and one resource owner.
type DemoConfig interface {
	GetDemoClientID() string
	GetDemoClientSecret() string
	GetDemoRedirectURI() string
	GetDemoUsername() string
	GetDemoPassword() string
}

type Demo struct{}

var _ DemoConfig = Demo{}

func (Demo) GetDemoClientID() string {
	return GetEnv("DEMO_CLIENT_ID", "demo-client")
}

func (Demo) GetDemoClientSecret() string {
	return GetEnv("DEMO_CLIENT_SECRET", "demo-secret")
}

func (Demo) GetDemoRedirectURI() string {
	return GetEnv("DEMO_REDIRECT_URI", "http://localhost:8080/callback")
}

func (Demo) GetDemoUsername() string {
	return GetEnv("DEMO_USERNAME", "demo")
}

func (Demo) GetDemoPassword() string {
	return GetEnv("DEMO_PASSWORD", "Demo-Passw0rd")
}
