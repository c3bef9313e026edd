// The icevector command runs single ICE blocks through the cipher and prints
// key schedules, for checking the implementation against published vectors.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := app().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "icevector error: %v\n", err)
		os.Exit(1)
	}
}

func app() *cli.App {
	app := cli.NewApp()
	app.Name = "icevector"
	app.Usage = "ICE test vector tool"
	app.Commands = []*cli.Command{
		blockCommand("encrypt", "Encrypts hex encoded blocks"),
		blockCommand("decrypt", "Decrypts hex encoded blocks"),
		scheduleCommand(),
	}
	return app
}
