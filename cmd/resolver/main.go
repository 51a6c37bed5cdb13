// Package main: name resolver service.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/metrics"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg/amqp"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/providers"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store/db"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/resolver"
)

var errNoBroker = errors.New("the resolver requires a message broker")

func main() {
	var confPath string

	var monitor bool

	app := &cli.App{
		Name:  "resolver",
		Usage: "Resolves the addresses requested through the message broker against the name services",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Load configuration from JSON or YAML `FILE`",
				Destination: &confPath,
			},
			&cli.BoolFlag{
				Name:        "monitor",
				Aliases:     []string{"m"},
				Usage:       "Expose Prometheus metrics on :9100/metrics",
				Destination: &monitor,
			},
		},
		Action: func(_ *cli.Context) error {
			return run(confPath, monitor)
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(confPath string, monitor bool) error {
	// extract configuration
	conf, err := config.ExtractConfiguration(confPath)
	if err != nil {
		return err
	}

	conf.SetupLogging()
	log.Debugf("Configuration:%+v", conf)

	// connect to database
	log.WithField("db", conf.DbType).Info("Connecting to database")

	dbConn, err := db.New(conf.DbType, conf.DbConn)
	if err != nil {
		return err
	}

	defer func() {
		log.WithError(db.Close(conf.DbType, dbConn)).Info("Closing database")
	}()

	// name-service providers, not cached so every round reads fresh data
	timeout := time.Duration(conf.Timeout) * time.Second

	set := providers.Build(context.Background(), conf.Names, httpc.New(timeout), timeout)
	defer set.Close()

	// load Prometheus monitor
	if monitor {
		go metrics.Serve(":9100")
	}

	// load message broker
	var mb msg.MsgBroker

	switch conf.MbType {
	case "amqp":
		var a *amqp.Amqp
		if a, err = amqp.New(conf.MbConn); err != nil {
			time.Sleep(10 * time.Second) // wait 10s for AMQP to be ready and try to reconnect

			if a, err = amqp.New(conf.MbConn); err != nil {
				return err
			}
		}

		if err = a.Setup(nil); err != nil {
			return err
		}

		defer func() {
			log.WithError(a.Close()).Info("Closing message broker")
		}()

		mb = a
	default:
		return errNoBroker
	}

	// create resolver service
	r := resolver.New(conf.DbType, dbConn, mb, set.Service(0), conf.Names.MaxBatch,
		time.Duration(conf.Names.Interval)*time.Second)

	// capture CTRL+C or docker's SIGTERM for gracious exit
	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Info("Program killed !")
		// stop every provider routine, pending addresses are saved
		r.Stop()
	}()

	// launch resolver (for each provider) and wait for all of them
	log.Infof("Run: %s", <-r.Run())

	return nil
}
