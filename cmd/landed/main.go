// Landed is an offline landed-cost calculator for import baskets.
//
// Usage:
//
//	landed calculate --input basket.yaml [--json]
//	landed rate --input basket.yaml [--cbm 1.4]
//	landed containers --input basket.yaml
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/Simplici0/landedcost/internal/basket"
	"github.com/Simplici0/landedcost/internal/logging"
	"github.com/Simplici0/landedcost/internal/pricing"
	"github.com/Simplici0/landedcost/internal/seed"
)

var version = "dev"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type cliState struct {
	logger *zap.Logger
}

func newApp(stdout io.Writer) *cli.App {
	state := &cliState{logger: zap.NewNop()}

	inputFlag := &cli.StringFlag{
		Name:     "input",
		Aliases:  []string{"i"},
		Usage:    "Path to a basket document (.yaml, .yml or .json)",
		Required: true,
	}

	return &cli.App{
		Name:    "landed",
		Usage:   "Landed cost in KRW of importing a basket of products from China",
		Version: version,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LANDED_LOG_LEVEL"},
			},
			&cli.Float64Flag{
				Name:    "usd",
				Usage:   "KRW per USD, overriding the basket",
				EnvVars: []string{"LANDED_USD_KRW"},
			},
			&cli.Float64Flag{
				Name:    "cny",
				Usage:   "KRW per CNY, overriding the basket",
				EnvVars: []string{"LANDED_CNY_KRW"},
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.NewConsole(c.String("log-level"))
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			state.logger = logger
			return nil
		},
		After: func(c *cli.Context) error {
			_ = state.logger.Sync()
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "calculate",
				Usage: "Print the landed cost breakdown of a basket",
				Flags: []cli.Flag{
					inputFlag,
					&cli.BoolFlag{Name: "json", Usage: "Print the full result as JSON"},
				},
				Action: state.runCalculate,
			},
			{
				Name:  "rate",
				Usage: "Resolve a shipping quantity against the basket's rate table",
				Flags: []cli.Flag{
					inputFlag,
					&cli.Float64Flag{Name: "cbm", Usage: "Quantity to resolve; defaults to the basket R.TON"},
				},
				Action: state.runRate,
			},
			{
				Name:   "containers",
				Usage:  "List every evaluated container combination for the basket",
				Flags:  []cli.Flag{inputFlag},
				Action: state.runContainers,
			},
		},
	}
}

// load reads the basket and fills what it leaves out with the built-in
// defaults: engine settings, the seeded LCL table and the standard
// container catalogue.
func (s *cliState) load(c *cli.Context) (pricing.Input, error) {
	doc, err := basket.Load(c.String("input"))
	if err != nil {
		return pricing.Input{}, err
	}

	def := basket.Defaults{
		RateTable:     seed.DefaultRateTable,
		ExchangeRates: seed.DefaultExchangeRates,
		Containers:    pricing.DefaultContainerTypes(),
	}
	in := doc.Input(def)

	if c.IsSet("usd") {
		in.ExchangeRates.USD = c.Float64("usd")
	}
	if c.IsSet("cny") {
		in.ExchangeRates.CNY = c.Float64("cny")
	}
	if doc.ExchangeRates == nil && !c.IsSet("usd") && !c.IsSet("cny") {
		s.logger.Warn("basket has no exchange rates, using built-in defaults",
			zap.Float64("usd", in.ExchangeRates.USD),
			zap.Float64("cny", in.ExchangeRates.CNY),
		)
	}

	s.logger.Debug("basket loaded",
		zap.String("input", c.String("input")),
		zap.Int("products", len(in.Products)),
		zap.String("mode", string(in.Freight.Mode)),
	)
	return in, nil
}

func (s *cliState) calculate(in pricing.Input) (*pricing.Result, error) {
	result := pricing.Calculate(in)
	if result == nil {
		return nil, fmt.Errorf("basket has no valid product")
	}
	for _, w := range result.Warnings {
		s.logger.Warn(w)
	}
	return result, nil
}

func (s *cliState) runCalculate(c *cli.Context) error {
	in, err := s.load(c)
	if err != nil {
		return err
	}
	result, err := s.calculate(in)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(c.App.Writer, result)
	}
	return writeReport(c.App.Writer, result)
}

func (s *cliState) runRate(c *cli.Context) error {
	in, err := s.load(c)
	if err != nil {
		return err
	}

	quantity := c.Float64("cbm")
	if !c.IsSet("cbm") {
		result, err := s.calculate(in)
		if err != nil {
			return err
		}
		quantity = result.Totals.TotalRTon
	}

	resolved, ok := in.RateTable.Resolve(quantity)
	if !ok {
		return fmt.Errorf("rate table %q has no bracket", in.RateTable.Type)
	}
	return writeRate(c.App.Writer, resolved, in.ExchangeRates)
}

func (s *cliState) runContainers(c *cli.Context) error {
	in, err := s.load(c)
	if err != nil {
		return err
	}
	in.Freight.Mode = pricing.FreightFCL

	result, err := s.calculate(in)
	if err != nil {
		return err
	}
	if result.Container == nil {
		return fmt.Errorf("no container types available")
	}
	return writeContainerPlan(c.App.Writer, result.Container)
}
