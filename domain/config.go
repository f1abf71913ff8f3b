package domain

const (
	DevEnv = "dev"
	ProEnv = "pro"
)

type Config struct {
	DatabaseURL  string
	Port         int
	Environment  string
	TLSHost      string
	CertCacheDir string
}

func (c Config) IsDev() bool {
	return c.Environment == DevEnv
}
