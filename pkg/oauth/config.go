package oauth

// Config holds the settings of a single OAuth driver.
//
// Env tags carry no provider prefix; embed the struct with envPrefix
// (e.g. `envPrefix:"BITBUCKET_OAUTH_"`) when parsing with caarlos0/env.
// Endpoint fields are optional overrides of the driver defaults.
type Config struct {
	ClientID       string   `env:"CLIENT_ID" yaml:"client_id"`
	ClientSecret   string   `env:"CLIENT_SECRET" yaml:"client_secret"`
	CallbackURL    string   `env:"CALLBACK_URL" yaml:"callback_url"`
	AuthorizeURL   string   `env:"AUTHORIZE_URL" yaml:"authorize_url"`
	AccessTokenURL string   `env:"ACCESS_TOKEN_URL" yaml:"access_token_url"`
	UserInfoURL    string   `env:"USER_INFO_URL" yaml:"user_info_url"`
	UserEmailURL   string   `env:"USER_EMAIL_URL" yaml:"user_email_url"`
	Scopes         []string `env:"SCOPES" envSeparator:"," yaml:"scopes"`
}

func (c Config) validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.CallbackURL == "" {
		return ErrMissingCallbackURL
	}
	return nil
}

// endpoints resolves the effective URLs; a non-empty override always wins.
func (c Config) endpoints(defaults endpoints) endpoints {
	return endpoints{
		authorize:   firstNonEmpty(c.AuthorizeURL, defaults.authorize),
		accessToken: firstNonEmpty(c.AccessTokenURL, defaults.accessToken),
		userInfo:    firstNonEmpty(c.UserInfoURL, defaults.userInfo),
		userEmail:   firstNonEmpty(c.UserEmailURL, defaults.userEmail),
	}
}

type endpoints struct {
	authorize   string
	accessToken string
	userInfo    string
	userEmail   string
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
