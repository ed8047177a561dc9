package main

import (
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/sieflow/sieflow/cli"
)

func main() {
	// Optional .env for local defaults (SIEFLOW_PORT and friends); a
	// missing file is fine.
	_ = godotenv.Load()

	commands := &cli.Commands{}
	ctx := kong.Parse(commands,
		kong.Name("sieflow"),
		kong.Description("Analyze Swedish SIE accounting exports: ratios, money flow, monthly activity."),
		kong.UsageOnError(),
	)

	err := ctx.Run(&commands.Globals)
	ctx.FatalIfErrorf(err)
}
