package main

import (
	"log"

	"github.com/autosniper/autosniper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
