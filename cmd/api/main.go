// Package main: explorer API service.
//
// The database is only read to serve the records stored by the resolver service, so it should be the same database
// the resolver writes to.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/api"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/block"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/chains"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/identity"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/metrics"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/msg/amqp"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/providers"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store/db"
)

func main() {
	var confPath string

	var monitor bool

	app := &cli.App{
		Name:  "api",
		Usage: "Serves the explorer RESTful API",
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

	timeout := time.Duration(conf.Timeout) * time.Second
	hc := httpc.New(timeout)

	// connect to database
	var dbConn store.DB
	if conf.DbConn != "" {
		log.WithField("db", conf.DbType).Info("Connecting to database")

		if dbConn, err = db.New(conf.DbType, conf.DbConn); err != nil {
			return err
		}
	}

	// load all blockchains
	blocks, err := block.Init(conf.Bc)
	if err != nil {
		return err
	}
	defer block.End(blocks)

	log.Info("Blockchain clients loaded")

	// load chains and assets
	cs := chains.NewStore(nil)
	if err = cs.Reload(context.Background(), chains.NewLoader(conf.Registry, conf.API, hc)); err != nil {
		log.WithError(err).Warn("Chains registry not loaded")
	}

	// name-service providers, cached
	set := providers.Build(context.Background(), conf.Names, hc, timeout)
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

		mb = a
	default:
		log.Warnf("Unknown message broker type: %s", conf.MbType)
	}

	// create API service
	a := api.New(api.Deps{
		DbType: conf.DbType,
		DB:     dbConn,
		MB:     mb,
		BC:     blocks,
		Names:  set.Service(time.Duration(conf.Names.CacheTTL) * time.Second),
		Chains: cs,
		Keybase: identity.NewKeybase(identity.Opts{
			URL: conf.Keybase, HTTP: hc, Limit: conf.PreloadLimit,
		}),
	})

	// listen to resolved records
	if mb != nil {
		if err = a.ManageEvents(); err != nil {
			log.WithError(err).Error("Cannot consume resolver events")
		}
	}

	// capture CTRL+C or docker's SIGTERM for gracious exit
	go func() {
		sigchan := make(chan os.Signal, 10)
		signal.Notify(sigchan, os.Interrupt, syscall.SIGTERM)
		<-sigchan
		log.Info("Program killed !")
		// close http servers, broker and database
		a.Stop()
	}()

	// launch API server
	log.Info(a.Init(conf.RestfulEndpoint, conf.Port, conf.SSLPort, conf.SSLCert, conf.SSLKey))

	return nil
}
