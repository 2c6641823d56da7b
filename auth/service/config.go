package service

type Config struct {
	Token          string        `toml:"token"`
	Expiration     string        `toml:"expiration"`
	PasswordPepper string        `toml:"password_pepper"`
	BcryptCost     int           `toml:"bcrypt_cost"`
	ReservedNames  []string      `toml:"reserved_names"`
	Driver         string        `toml:"driver"`
	Storage        StorageConfig `toml:"db"`
}

type StorageConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	DBName   string `toml:"dbname"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}
