package main

import (
	"flag"
	"os"

	log "github.com/golang/glog"
	"github.com/joho/godotenv"

	"github.com/joincivil/civil-content-registry/pkg/registrymain"
	"github.com/joincivil/civil-content-registry/pkg/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Errorf("Error loading .env file: err: %v", err)
	}

	config := &utils.RegistryConfig{}
	flag.Usage = func() {
		config.OutputUsage()
		os.Exit(0)
	}
	flag.Parse()

	err = config.PopulateFromEnv()
	if err != nil {
		config.OutputUsage()
		log.Errorf("Invalid registry config: err: %v\n", err)
		os.Exit(2)
	}

	err = registrymain.ServerMain(config)
	if err != nil {
		log.Errorf("Error running registry: err: %v", err)
		log.Flush()
		os.Exit(1)
	}
	log.Flush()
}
