package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/thesyncim/metronome/cmd/metronome/cmd"
)

func main() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)

	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
