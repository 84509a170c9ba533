package main

import (
	"os"
)

func main() {
	a := newApp(openPostgresBackend)
	err := a.newRootCmd().Execute()
	a.Close()

	if err != nil {
		os.Exit(1)
	}
}
