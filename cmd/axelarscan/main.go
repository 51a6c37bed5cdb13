// Package main: axelarscan command line tool to look up chains and assets, resolve names and format values.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/chains"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/config"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/format"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/httpc"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names/providers"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// configure reads the configuration given with -c.
func configure(c *cli.Context) (config.ServiceConfig, error) {
	conf, err := config.ExtractConfiguration(c.String("config"))
	if err != nil {
		return conf, err
	}

	conf.SetupLogging()

	return conf, nil
}

// registry loads the chains and assets from the registry file of -r or of the configuration, or from the backend API.
func registry(c *cli.Context) (*chains.Registry, error) {
	conf, err := configure(c)
	if err != nil {
		return nil, err
	}

	path := c.String("registry")
	if path == "" {
		path = conf.Registry
	}

	s := chains.NewStore(nil)
	if err = s.Reload(c.Context, chains.NewLoader(path, conf.API, httpc.New(time.Duration(conf.Timeout)*time.Second))); err != nil {
		return nil, err
	}

	return s.Registry(), nil
}

// output writes v as indented JSON, strings as they are.
func output(w io.Writer, v interface{}) error {
	if s, ok := v.(string); ok {
		_, err := fmt.Fprintln(w, s)

		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func newApp() *cli.App {
	exact := &cli.BoolFlag{Name: "exact", Aliases: []string{"e"}, Usage: "match the id only"}

	return &cli.App{
		Name:  "axelarscan",
		Usage: "Explorer lookups and formatting from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "Load configuration from JSON or YAML `FILE`"},
			&cli.StringFlag{Name: "registry", Aliases: []string{"r"}, Usage: "Load chains and assets from `FILE`"},
		},
		Commands: []*cli.Command{
			{
				Name:      "chain",
				Usage:     "Looks up a chain by id, chain id, name, alias or prefix",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{exact},
				Action: func(c *cli.Context) error {
					r, err := registry(c)
					if err != nil {
						return err
					}

					ch, ok := r.GetChain(c.Args().First(), c.Bool("exact"))
					if !ok {
						return cli.Exit(fmt.Sprintf("chain %q not found", c.Args().First()), 1)
					}

					return output(c.App.Writer, ch)
				},
			},
			{
				Name:      "asset",
				Usage:     "Looks up an asset by denom, symbol or address",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{exact, &cli.StringFlag{Name: "chain", Usage: "restrict to assets on `CHAIN`"}},
				Action: func(c *cli.Context) error {
					r, err := registry(c)
					if err != nil {
						return err
					}

					a, ok := r.GetAsset(c.Args().First(), c.String("chain"), c.Bool("exact"))
					if !ok {
						return cli.Exit(fmt.Sprintf("asset %q not found", c.Args().First()), 1)
					}

					if c.String("chain") != "" {
						if v, found := a.OnChain(c.String("chain")); found {
							return output(c.App.Writer, v)
						}
					}

					return output(c.App.Writer, a)
				},
			},
			{
				Name:      "suggest",
				Usage:     "Suggests the chains and assets closest to a key",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{&cli.IntFlag{Name: "n", Value: 5, Usage: "maximum suggestions"}},
				Action: func(c *cli.Context) error {
					r, err := registry(c)
					if err != nil {
						return err
					}

					return output(c.App.Writer, r.Suggest(c.Args().First(), c.Int("n")))
				},
			},
			{
				Name:      "resolve",
				Usage:     "Resolves addresses with every configured name service",
				ArgsUsage: "ADDRESS...",
				Action: func(c *cli.Context) error {
					conf, err := configure(c)
					if err != nil {
						return err
					}

					if c.NArg() == 0 {
						return cli.Exit("no address given", 1)
					}

					timeout := time.Duration(conf.Timeout) * time.Second

					set := providers.Build(c.Context, conf.Names, httpc.New(timeout), timeout)
					defer set.Close()

					ctx, cancel := context.WithTimeout(c.Context, 10*timeout)
					defer cancel()

					return output(c.App.Writer, set.Service(0).ResolveAll(ctx, c.Args().Slice()))
				},
			},
			{
				Name:      "number",
				Usage:     "Formats a number, abbreviated above 1000",
				ArgsUsage: "VALUE",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "decimals", Aliases: []string{"d"}, Value: 2, Usage: "maximum decimals shown"},
					&cli.IntFlag{Name: "units", Aliases: []string{"u"}, Value: -1, Usage: "VALUE is an integer amount of base units with `N` decimals"},
					&cli.BoolFlag{Name: "grouped", Aliases: []string{"g"}, Usage: "comma grouping instead of unit suffixes"},
				},
				Action: func(c *cli.Context) error {
					value := c.Args().First()
					if u := c.Int("units"); u >= 0 {
						value = format.Units(value, u)
					}

					v, err := strconv.ParseFloat(value, 64)
					if err != nil {
						return cli.Exit(fmt.Sprintf("invalid value %q", value), 1)
					}

					if c.Bool("grouped") {
						return output(c.App.Writer, format.Grouped(v, c.Int("decimals")))
					}

					return output(c.App.Writer, format.Number(v, c.Int("decimals")))
				},
			},
			{
				Name:      "ellipse",
				Usage:     "Shortens a string keeping its head and tail",
				ArgsUsage: "STRING",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "n", Value: 8, Usage: "characters kept on each side"},
					&cli.StringFlag{Name: "prefix", Usage: "prefix kept in front"},
				},
				Action: func(c *cli.Context) error {
					return output(c.App.Writer, format.Ellipse(c.Args().First(), c.Int("n"), c.String("prefix")))
				},
			},
			{
				Name:      "ago",
				Usage:     "Prints the relative time of a unix timestamp in seconds or milliseconds",
				ArgsUsage: "TIMESTAMP",
				Action: func(c *cli.Context) error {
					ts, err := strconv.ParseInt(c.Args().First(), 10, 64)
					if err != nil {
						return cli.Exit(fmt.Sprintf("invalid timestamp %q", c.Args().First()), 1)
					}

					return output(c.App.Writer, format.TimeAgo(format.Unix(ts), time.Now()))
				},
			},
		},
	}
}
