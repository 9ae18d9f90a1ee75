package main

import (
	"github.com/alecthomas/kong"

	"github.com/vitaminmoo/iqos-tool/internal/cli"
)

func main() {
	var c cli.CLI
	ctx := kong.Parse(&c,
		kong.Name("iqos"),
		kong.Description("IQOS BLE Tool - read device identity and change settings over Bluetooth"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&c)
	ctx.FatalIfErrorf(err)
}
