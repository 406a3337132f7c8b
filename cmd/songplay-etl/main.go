package main

import (
	"fmt"
	"os"

	"github.com/turbot/go-kit/helpers"

	"github.com/turbot/songplay-etl/logging"
)

func main() {
	logging.Initialize("songplay-etl")

	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "songplay-etl failed: %s\n", helpers.ToError(r).Error())
			os.Exit(1)
		}
	}()

	os.Exit(Execute())
}
