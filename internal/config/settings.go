package config

// Default domain limits.
const (
	UsernameMaxLength = 150
	EmailMaxLength    = 254
	NameMaxLength     = 256
	SlugMaxLength     = 50

	CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Settings holds the domain policy values shared by validators and services.
// Built once at startup and passed by value; nothing mutates it afterwards.
type Settings struct {
	ReservedUsernames []string
	CodeAlphabet      string
	CodeLength        int
	FromEmail         string
	DefaultPageSize   int
	MaxPageSize       int
}

// DefaultSettings returns the settings used when no configuration is supplied.
func DefaultSettings() Settings {
	return Settings{
		ReservedUsernames: []string{"me"},
		CodeAlphabet:      CodeAlphabet,
		CodeLength:        10,
		FromEmail:         "noreply@reviewhub.local",
		DefaultPageSize:   DefaultPageSize,
		MaxPageSize:       MaxPageSize,
	}
}

// NewSettings derives Settings from the loaded configuration.
func NewSettings(cfg *Config) Settings {
	s := DefaultSettings()
	if len(cfg.ReservedUsernames) > 0 {
		s.ReservedUsernames = append([]string(nil), cfg.ReservedUsernames...)
	}
	if cfg.ConfirmationCodeLength > 0 {
		s.CodeLength = cfg.ConfirmationCodeLength
	}
	if cfg.DefaultFromEmail != "" {
		s.FromEmail = cfg.DefaultFromEmail
	}
	return s
}

// IsReserved reports whether username may not be registered.
func (s Settings) IsReserved(username string) bool {
	for _, r := range s.ReservedUsernames {
		if r == username {
			return true
		}
	}
	return false
}
