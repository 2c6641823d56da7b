package config

import (
	"os"
	"secretserver/auth/oauth"
	authservice "secretserver/auth/service"

	"github.com/BurntSushi/toml"
)

type Server struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Debug      bool   `toml:"debug_mode"`
	SqliteFile string `toml:"sqlite_file"`
	CertFile   string `toml:"cert_file"`
	KeyFile    string `toml:"key_file"`
}

type Config struct {
	Server Server
	Auth   authservice.Config
	Google oauth.Config
}

// New reads the toml files and then applies the environment overrides
// the original deployment used for its credentials: SECRET, CLIENT_ID,
// CLIENT_SECRET and DATABASE_URI.
func New(serverPath string, authPath string) (Config, error) {
	var serverCfg Server
	_, err := toml.DecodeFile(serverPath, &serverCfg)
	if err != nil {
		return Config{}, err
	}

	var authCfg struct {
		Auth   authservice.Config `toml:"auth"`
		Google oauth.Config       `toml:"google"`
	}
	_, err = toml.DecodeFile(authPath, &authCfg)
	if err != nil {
		return Config{}, err
	}

	if secret := os.Getenv("SECRET"); secret != "" {
		authCfg.Auth.Token = secret
	}
	if clientID := os.Getenv("CLIENT_ID"); clientID != "" {
		authCfg.Google.ClientID = clientID
	}
	if clientSecret := os.Getenv("CLIENT_SECRET"); clientSecret != "" {
		authCfg.Google.ClientSecret = clientSecret
	}
	if dbURI := os.Getenv("DATABASE_URI"); dbURI != "" {
		serverCfg.SqliteFile = dbURI
	}

	return Config{
		Server: serverCfg,
		Auth:   authCfg.Auth,
		Google: authCfg.Google,
	}, nil
}
