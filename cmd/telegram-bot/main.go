package main

import (
	"log"

	"github.com/alecthomas/kong"
	"github.com/futig/saarthi/internal/builder"
)

var cli struct {
	Env string `short:"e" default:"local" help:"Environment whose .env file is loaded (local, prod, ...)."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("telegram-bot"),
		kong.Description("StartupSaarthi Telegram bot."),
	)

	app, err := builder.BuildTelegramBot(cli.Env)
	if err != nil {
		log.Fatal("Failed to build telegram bot: ", err)
	}

	if err := app.Run(); err != nil {
		log.Fatal("Telegram bot error: ", err)
	}
}
