// entry point to app :)
package main

import (
	"github.com/AirTechNEO/coworkconnect/config"
	"github.com/AirTechNEO/coworkconnect/internal/appServer"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	viperInstance, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Cannot load config. Error: {%s}", err.Error())
	}

	cfg, err := config.ParseConfig(viperInstance)
	if err != nil {
		logrus.Fatalf("Cannot parse config. Error: {%s}", err.Error())
	}

	logrus.WithFields(logrus.Fields{
		"version": cfg.Server.AppVersion,
		"storage": cfg.Storage.Driver,
		"events":  cfg.Events.Driver,
	}).Info("Config loaded")
	appServer.NewServer(cfg)
}
