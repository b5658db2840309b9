package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fjod/freshbuy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "freshbuy:", err)
		os.Exit(1)
	}
}
