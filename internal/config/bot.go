package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	WSURL            string `env:"WS_URL" envDefault:"ws://localhost:8080/ws"`
	BotStrategy      string `env:"BOT_STRATEGY" envDefault:"tit_for_tat"`
	OpponentStrategy string `env:"OPPONENT_STRATEGY" envDefault:"random"`
	Rounds           int    `env:"ROUNDS" envDefault:"10"`
	Games            int    `env:"GAMES" envDefault:"1"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
