package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

type Config struct {
	ListenPort int    `toml:"port"`
	BaseURL    string `toml:"base_url"`
	Env        string `toml:"env"`

	Backend struct {
		URL            string `toml:"url"`
		TimeoutSeconds int    `toml:"timeout"`
	} `toml:"backend"`

	Session struct {
		// "memory" keeps sessions in-process; "redis" survives restarts
		Store string `toml:"store"`

		// How often the keep-warm sweep runs, and how close to expiry a
		// session has to be before its user info is re-fetched. Seconds.
		RefreshInterval  int `toml:"refresh_interval"`
		RefreshThreshold int `toml:"refresh_threshold"`

		Cookie struct {
			Secret string `toml:"secret"`
			Name   string `toml:"name"`
			Domain string `toml:"domain"`
			Secure bool   `toml:"secure"`
		} `toml:"cookie"`

		Redis struct {
			Addr     string `toml:"addr"`
			Password string `toml:"password"`
			DB       int    `toml:"db"`
		} `toml:"redis"`
	} `toml:"session"`

	Routes struct {
		LoginPath         string `toml:"login_path"`
		AdminHome         string `toml:"admin_home"`
		BranchManagerHome string `toml:"branch_manager_home"`
	} `toml:"routes"`
}

// TOML unmarshalling doesn't override fields that weren't set in the file,
// so we can apply defaults here
func (c *Config) setDefaults() {
	c.ListenPort = 8080
	c.Env = "development"

	c.Backend.TimeoutSeconds = 15

	c.Session.Store = "memory"
	c.Session.RefreshInterval = 60
	c.Session.RefreshThreshold = 15 * 60

	c.Session.Cookie.Name = "_qrmenu_session"
	c.Session.Cookie.Secure = true

	c.Routes.LoginPath = "/login"
	c.Routes.AdminHome = "/admin"
	c.Routes.BranchManagerHome = "/admin/branch-products"
}

func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Session.RefreshInterval) * time.Second
}

func (c *Config) RefreshThreshold() time.Duration {
	return time.Duration(c.Session.RefreshThreshold) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) validate() error {
	if c.BaseURL == "" {
		return errors.New("please supply base_url")
	}

	if c.Backend.URL == "" {
		return errors.New("please supply backend.url")
	}

	if c.Session.Store != "memory" && c.Session.Store != "redis" {
		return fmt.Errorf("invalid session store supplied (%s), valid stores are \"memory\" and \"redis\"", c.Session.Store)
	}

	if c.Session.Store == "redis" && c.Session.Redis.Addr == "" {
		return errors.New("session.store is \"redis\" but session.redis.addr is empty")
	}

	if len(c.Session.Cookie.Secret) == 0 {
		log.Warn().Msg("no cookie secret was provided, randomly generating one...")
		buff := make([]byte, 16)
		_, err := rand.Read(buff)
		if err != nil {
			return fmt.Errorf("failed to generate random cookie secret: %w", err)
		}

		c.Session.Cookie.Secret = base64.RawStdEncoding.EncodeToString(buff)
		log.Warn().Msg("note: because your cookie secret was randomly generated, existing login cookies will stop working if the gateway restarts")
	} else if len(c.Session.Cookie.Secret) < 16 {
		return errors.New("your cookie secret was less than 16 characters, please supply a long, random secret")
	}

	if c.Session.RefreshInterval <= 0 {
		return errors.New("session.refresh_interval must be positive")
	}

	if c.Session.RefreshThreshold <= 0 {
		return errors.New("session.refresh_threshold must be positive")
	}

	return nil
}

func LoadFromTomlFileAndValidate(filepath string) (*Config, error) {
	file, err := os.ReadFile(filepath)
	if err != nil {
		return nil, err
	}

	conf := new(Config)
	conf.setDefaults()

	err = toml.Unmarshal(file, conf)
	if err != nil {
		return nil, err
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}

	return conf, nil
}
