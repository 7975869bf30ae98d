// Command lunar runs the Lunar Atelier editing API and its offline tools.
package main

import (
	"context"
	"os"

	"github.com/Fepozopo/lunaratelier/pkg/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
