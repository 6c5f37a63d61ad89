package main

import (
	"fmt"
	"os"

	log "github.com/inconshreveable/log15"
	"github.com/left-curve/left-curve-sub002/pkg/chain"
	"github.com/urfave/cli"
)

var genesisPath string
var verbosity string

func setupLog() error {
	lvl, err := log.LvlFromString(verbosity)
	if err != nil {
		return err
	}

	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StreamHandler(os.Stderr, log.TerminalFormat())))
	return nil
}

func loadGenesis() (*chain.Genesis, error) {
	if genesisPath == "" {
		return chain.DefaultGenesis(), nil
	}
	return chain.LoadGenesis(genesisPath)
}

func printGenesis(c *cli.Context) error {
	g, err := loadGenesis()
	if err != nil {
		return err
	}

	b, err := g.Marshal()
	if err != nil {
		return err
	}

	_, err = os.Stdout.Write(b)
	return err
}

func main() {
	app := cli.NewApp()
	app.Name = "dex"
	app.Usage = "run the exchange over scripted or simulated blocks"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "genesis, g",
			Usage:       "path to the genesis yaml file, the built-in genesis is used if empty",
			Destination: &genesisPath,
		},
		cli.StringFlag{
			Name:        "verbosity",
			Value:       "warn",
			Usage:       "log level: crit, error, warn, info, debug",
			Destination: &verbosity,
		},
	}

	app.Before = func(c *cli.Context) error {
		return setupLog()
	}

	app.Commands = []cli.Command{
		{
			Name:   "genesis",
			Usage:  "Print the genesis in yaml: ./dex genesis > genesis.yaml",
			Action: printGenesis,
		},
		{
			Name:   "replay",
			Usage:  "Execute the blocks of a yaml script and print the events: ./dex -g genesis.yaml replay SCRIPT",
			Action: replay,
		},
		{
			Name:  "simulate",
			Usage: "Trade random orders against the pools: ./dex simulate --blocks 10 --orders 20",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "seed",
					Usage: "the seed of the random order generation",
				},
				cli.IntFlag{
					Name:  "blocks",
					Value: 10,
					Usage: "number of blocks",
				},
				cli.IntFlag{
					Name:  "orders",
					Value: 20,
					Usage: "orders per block",
				},
				cli.IntFlag{
					Name:  "traders",
					Value: 5,
					Usage: "number of traders",
				},
				cli.StringFlag{
					Name:  "pair",
					Value: "eth,usdc",
					Usage: "the pair to trade: BASE,QUOTE",
				},
			},
			Action: simulate,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Printf("command failed with error: %v\n", err)
		os.Exit(1)
	}
}
