package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	SiteURL     string `env:"SITE_URL" envDefault:"http://localhost:8080"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"file:1uplabs.db?cache=shared&_busy_timeout=5000"`
	JWTSecret   string `env:"JWT_SECRET"`

	Resend   Resend   `envPrefix:"RESEND_"`
	Payments Payments `envPrefix:"PAYMENTS_"`
	BTC      BTC      `envPrefix:"BTC_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

// Resend configures the outbound email transport. An empty APIKey means no
// provider is configured and sends are skipped, which is the expected setup
// in local and staging environments.
type Resend struct {
	BaseAPIURL string `env:"BASE_API_URL" envDefault:"https://api.resend.com"`
	APIKey     string `env:"API_KEY"`
	From       string `env:"FROM" envDefault:"1UpLabs <onboarding@resend.dev>"`
}

// Payments holds the operator-supplied destinations for the manual payment
// channels.
type Payments struct {
	CashAppTag     string `env:"CASHAPP_TAG" envDefault:"$1uplabs"`
	VenmoHandle    string `env:"VENMO_HANDLE" envDefault:"@Shop_1-upLabs"`
	ZelleRecipient string `env:"ZELLE_RECIPIENT" envDefault:"you@example.com"`
	BTCAddress     string `env:"BTC_ADDRESS" envDefault:"bc1q8rtqf33xn8mjhcwuwrrcamcpvcyvg39u0qfn36"`
}

type BTC struct {
	SpotPriceURL string `env:"SPOT_PRICE_URL" envDefault:"https://api.coinbase.com/v2/prices/BTC-USD/spot"`
}
