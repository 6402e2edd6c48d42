package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"
)

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("checkoutsim"),
		kong.Description("Drives simulated shoppers through the checkout flow."),
		cliVars(),
		kong.UsageOnError(),
	)

	// Prepare background context configured to listen for cancelling.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Configure channel to receive terminal interrupt.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Start goroutine to listen for interrupt signal => if received, cancel running context.
	go func() { <-sig; log.Info().Msg("shutting down simulator"); cancel() }()

	validateParams(&cli)
	setLogging(cli.LogLevel)
	configureExperiment(&cli)
	customersConfig, actualNumCustomers := loadCustomerDistributionConfig(cli.CustomerDistribution, cli.NumCustomers)

	redisClient, redisErr := makeRedisClient(cli.RedisAddr)
	if needsRedis(&cli) && redisErr != nil {
		panic(fmt.Errorf("Redis is required for %s/%s but failed to respond a ping request", cli.StoreType, cli.NotifierType))
	}
	defer redisClient.Close()

	seed := cli.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	params := makeSessionParams(&cli, makeStore(&cli, redisClient), makeNotifier(&cli, redisClient))
	customers := makeSimulatedCustomers(
		customersConfig, params, cli.NumCustomers, actualNumCustomers, seed, cli.RandomizeOrder,
	)

	outcomeLedger := makeLedger(cli.LedgerDsn, cli.LogLevel == "debug")
	defer outcomeLedger.Close()

	simDriver := makeSimulator(ctx, cancel, customers, cli.Concurrency, outcomeLedger)

	start := time.Now()
	if _, err := simDriver.StartSimulation(); err != nil {
		log.Error().Err(err).Msg("failed aggregating simulation results")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\norders_placed=%d\nelapsed=%s\n", params.OrderService.Placed(), time.Since(start).Round(time.Millisecond))
}
