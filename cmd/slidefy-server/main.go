package main

import (
	"context"

	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	conf, err := LoadConfiguration()
	if err != nil {
		logrus.WithError(err).Fatal("configuration error")
	}

	pipeline, artifacts := buildPipeline(context.Background(), conf)
	app := newApp(pipeline, artifacts)

	logrus.WithField("address", conf.Address).Info("starting slidefy server")
	if err := app.Listen(conf.Address); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}
