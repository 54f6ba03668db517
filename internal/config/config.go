package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env      string `yaml:"env" env-default:"local"`
	Telegram struct {
		ApiKey  string `yaml:"api_key" env-default:""`
		AdminId int64  `yaml:"admin_id" env-default:"0"`
		BotName string `yaml:"bot_name" env-default:"SaathiOpsBot"`
		Enabled bool   `yaml:"enabled" env-default:"false"`
	} `yaml:"telegram"`
	WhatsApp struct {
		AccessToken   string `yaml:"access_token" env-default:""`
		VerifyToken   string `yaml:"verify_token" env-default:""`
		AppSecret     string `yaml:"app_secret" env-default:""`
		PhoneNumberID string `yaml:"phone_number_id" env-default:""`
	} `yaml:"whatsapp"`
	OpenAI struct {
		ApiKey string `yaml:"api_key" env-default:""`
		Model  string `yaml:"model" env-default:"gpt-4o-mini"`
	} `yaml:"openai"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env-default:"false"`
		Host     string `yaml:"host" env-default:"127.0.0.1"`
		Port     string `yaml:"port" env-default:"27017"`
		User     string `yaml:"user" env-default:"admin"`
		Password string `yaml:"password" env-default:"pass"`
		Database string `yaml:"database" env-default:""`
	} `yaml:"mongo"`
	Directory struct {
		BaseURL        string `yaml:"base_url" env-default:"http://127.0.0.1:3000/api"`
		TimeoutSeconds int    `yaml:"timeout_seconds" env-default:"10"`
	} `yaml:"directory"`
	Requests struct {
		BaseURL        string `yaml:"base_url" env-default:"http://127.0.0.1:3000/api"`
		TimeoutSeconds int    `yaml:"timeout_seconds" env-default:"10"`
	} `yaml:"requests"`
	Poller struct {
		IntervalSeconds int `yaml:"interval_seconds" env-default:"60"`
		MaxAttempts     int `yaml:"max_attempts" env-default:"30"`
	} `yaml:"poller"`
	Listen struct {
		BindIP string `yaml:"bind_ip" env-default:"127.0.0.1"`
		Port   string `yaml:"port" env-default:"9100"`
		ApiKey string `yaml:"key" env-default:""`
	} `yaml:"listen"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("%s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
