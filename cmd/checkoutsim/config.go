package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Shopify/gocheckoutflow/internal/checkout"
	"github.com/Shopify/gocheckoutflow/internal/ledger"
	"github.com/Shopify/gocheckoutflow/internal/metrics"
	"github.com/Shopify/gocheckoutflow/internal/notify"
	notifierfactory "github.com/Shopify/gocheckoutflow/internal/notify/impl"
	"github.com/Shopify/gocheckoutflow/internal/session"
	storefactory "github.com/Shopify/gocheckoutflow/internal/session/impl"
	"github.com/Shopify/gocheckoutflow/internal/simulator"

	"github.com/alecthomas/kong"
	"github.com/go-redis/redis/v7"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logLevel = "disabled"

	dashboardUrl = "https://datadoghq.com/dashboard/path/to/dashboard"

	// Json file configuring distribution of customers for simulation.
	customerDistributionJsonPath = "config/simulation/customer_distributions/mixed_storefront.json"

	// Type of session store backing checkout sessions.
	storeType = "memory_store"

	// Type of notifier receiving checkout toasts.
	notifierType = "log_notifier"

	// Number of simulated customers generated.
	targetNumCustomers = 500

	// Number of customers checking out concurrently.
	numCustomerWorkers = 50

	// Order service capacity: placements admitted per second and burst.
	placeOrderRatePerSecond = 40.0
	placeOrderBurst         = 10

	// First order number handed out.
	firstOrderNumber = 1000001

	// A session still open after this long is recorded as timed out.
	sessionTimeout = 30 * time.Second

	// Idle sessions expire from redis after this long.
	sessionTTL = 30 * time.Minute

	// Sqlite DSN recording session outcomes; use a file path to keep them after the run.
	ledgerDsn = ":memory:"

	// Redis backing the session store and notifier when selected.
	redisAddr = "localhost:6379"

	// Prefix used to namespace redis keys per shop.
	shopScopePrefixDemo = "shop_id:1"

	// Name in the checkout page title.
	storeName = "Demo Storefront"

	// "production" silences the diagnostic error log.
	buildMode = "development"
)

type CustomerConfig = simulator.CustomerConfig
type Simulator = simulator.SimulationDriver

// CLI exposes the const block above as flags.
type CLI struct {
	LogLevel             string        `help:"Log level: disabled, info or debug." default:"${log_level}" enum:"disabled,info,debug"`
	StatsdAddr           string        `help:"Dogstatsd address; empty disables metrics." default:"${statsd_addr}"`
	CustomerDistribution string        `help:"Customer distribution json." default:"${customer_distribution}" type:"path"`
	StoreType            string        `help:"Session store: memory_store or redis_store." default:"${store_type}"`
	NotifierType         string        `help:"Notifier: noop_notifier, log_notifier or redis_notifier." default:"${notifier_type}"`
	RedisAddr            string        `help:"Redis address." default:"${redis_addr}" env:"REDIS_ADDR"`
	ShopScopePrefix      string        `help:"Redis key prefix scoping one shop." default:"${shop_scope_prefix}"`
	NumCustomers         int           `help:"Number of simulated customers." default:"${num_customers}"`
	Concurrency          int           `help:"Customers checking out at once." default:"${concurrency}"`
	PlaceOrderRate       float64       `help:"Order placements admitted per second; <= 0 is unlimited." default:"${place_order_rate}"`
	PlaceOrderBurst      int           `help:"Order placement burst size." default:"${place_order_burst}"`
	SessionTimeout       time.Duration `help:"Per session timeout." default:"${session_timeout}"`
	LedgerDsn            string        `help:"Sqlite DSN for the outcome ledger." default:"${ledger_dsn}"`
	BuildMode            string        `help:"production or development." default:"${build_mode}" enum:"production,development"`
	StoreName            string        `help:"Store name in the page title." default:"${store_name}"`
	Seed                 int64         `help:"Random seed; 0 picks one from the clock."`
	RandomizeOrder       bool          `help:"Shuffle customer order." default:"true" negatable:""`
}

func cliVars() kong.Vars {
	return kong.Vars{
		"log_level":             logLevel,
		"statsd_addr":           metrics.DefaultStatsdAddr,
		"customer_distribution": customerDistributionJsonPath,
		"store_type":            storeType,
		"notifier_type":         notifierType,
		"redis_addr":            redisAddr,
		"shop_scope_prefix":     shopScopePrefixDemo,
		"num_customers":         strconv.Itoa(targetNumCustomers),
		"concurrency":           strconv.Itoa(numCustomerWorkers),
		"place_order_rate":      strconv.FormatFloat(placeOrderRatePerSecond, 'f', -1, 64),
		"place_order_burst":     strconv.Itoa(placeOrderBurst),
		"session_timeout":       sessionTimeout.String(),
		"ledger_dsn":            ledgerDsn,
		"build_mode":            buildMode,
		"store_name":            storeName,
	}
}

func validateParams(cli *CLI) {
	if cli.NumCustomers <= 0 {
		panic(fmt.Errorf("num customers should be > 0 but found %d", cli.NumCustomers))
	}
	if cli.Concurrency <= 0 {
		panic(fmt.Errorf("concurrency should be > 0 but found %d", cli.Concurrency))
	}
}

func setLogging(logLevel string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	switch logLevel {
	case "disabled":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		panic(fmt.Errorf("log level must be one of: {disabled, info, debug}"))
	}
}

func configureExperiment(cli *CLI) {
	if cli.StatsdAddr != "" {
		metrics.Configure(cli.StatsdAddr)
	}
	distributionStrSlice := strings.Split(cli.CustomerDistribution, "/")
	distributionFilename := strings.TrimSuffix(distributionStrSlice[len(distributionStrSlice)-1], ".json")

	customerDistributionTag := metrics.Tag("customer_distribution", distributionFilename)
	storeTag := metrics.Tag("store_type", cli.StoreType)
	notifierTag := metrics.Tag("notifier_type", cli.NotifierType)
	numCustomersTag := metrics.Tag("num_customers", cli.NumCustomers)
	concurrencyTag := metrics.Tag("concurrency", cli.Concurrency)
	placeOrderRateTag := metrics.Tag("place_order_rate", fmt.Sprintf("%.2f", cli.PlaceOrderRate))
	buildModeTag := metrics.Tag("build_mode", cli.BuildMode)
	tags := []string{
		customerDistributionTag, storeTag, notifierTag, numCustomersTag,
		concurrencyTag, placeOrderRateTag, buildModeTag,
	}
	metrics.AddGlobalTags(tags)
	metrics.Gauge("num_customers", float64(cli.NumCustomers), nil)
	metrics.Gauge("concurrency", float64(cli.Concurrency), nil)
	metrics.Gauge("place_order_rate", cli.PlaceOrderRate, nil)
	fmt.Printf(
		"\nExecuting with:\n\n%s\n%s\n%s\n%s\n%s\n%s\n%s\n",
		customerDistributionTag, storeTag, notifierTag, numCustomersTag,
		concurrencyTag, placeOrderRateTag, buildModeTag,
	)
	fmt.Printf("\nSee dashboard at: %s\n\n", dashboardUrl)
}

func loadCustomerDistributionConfig(filepath string, targetNumCustomers int) ([]CustomerConfig, int) {
	var customerDistributionConfig []CustomerConfig
	customerDistributionJson, err := os.Open(filepath)
	if err != nil {
		panic(fmt.Errorf("failed opening customer distribution json at path '%s'", filepath))
	}
	defer customerDistributionJson.Close()

	jsonParser := json.NewDecoder(customerDistributionJson)
	jsonParser.DisallowUnknownFields()
	err = jsonParser.Decode(&customerDistributionConfig)
	if err != nil {
		panic(fmt.Errorf("failed parsing customer distribution json with error '%s'", err.Error()))
	}
	log.Debug().Msg(fmt.Sprintf("CustomerDistributionConfig: %v", customerDistributionConfig))
	actualNumCustomers := 0
	for _, customerConfig := range customerDistributionConfig {
		pct := customerConfig.RepresentationPercent
		actualNumCustomers += int(math.Floor(pct * float64(targetNumCustomers)))
	}
	// Flooring each persona's share may lose one customer per persona.
	if actualNumCustomers > targetNumCustomers || actualNumCustomers < targetNumCustomers-len(customerDistributionConfig) {
		panic("Customer config representation_percent values must sum to 1.0")
	}
	return customerDistributionConfig, actualNumCustomers
}

func makeRedisClient(redisAddr string) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	_, pingErr := redisClient.Ping().Result()
	return redisClient, pingErr
}

func needsRedis(cli *CLI) bool {
	return cli.StoreType == "redis_store" || cli.NotifierType == "redis_notifier"
}

func makeStore(cli *CLI, redisClient *redis.Client) session.Store {
	return storefactory.MakeStore(cli.StoreType, redisClient, cli.ShopScopePrefix, sessionTTL)
}

func makeNotifier(cli *CLI, redisClient *redis.Client) notify.Notifier {
	return notifierfactory.MakeNotifier(cli.NotifierType, os.Stdout, redisClient, cli.ShopScopePrefix)
}

func makeSimulatedCustomers(
	customerDistributionConfig []CustomerConfig,
	params simulator.SessionParams,
	numCustomers int,
	actualNumCustomers int,
	seed int64,
	shouldRandomizeOrder bool,
) []*simulator.SimulatedCustomer {
	customers := make([]*simulator.SimulatedCustomer, 0, actualNumCustomers)
	numCustomersFloat := float64(numCustomers)
	id := 1
	for _, customerConfig := range customerDistributionConfig {
		numToGenerate := int(math.Floor(customerConfig.RepresentationPercent * numCustomersFloat))
		for j := 0; j < numToGenerate; j++ {
			customers = append(customers, simulator.MakeCustomerFromConfig(customerConfig, params, id, seed))
			id++
		}
	}
	if shouldRandomizeOrder {
		rnd := rand.New(rand.NewSource(seed))
		rnd.Shuffle(len(customers), func(i, j int) {
			customers[i], customers[j] = customers[j], customers[i]
		})
	}
	return customers
}

func makeSessionParams(cli *CLI, store session.Store, notifier notify.Notifier) simulator.SessionParams {
	return simulator.SessionParams{
		Store:          store,
		Notifier:       notifier,
		Controller:     checkout.Controller{StoreName: cli.StoreName},
		OrderService:   simulator.MakeOrderService(cli.PlaceOrderRate, cli.PlaceOrderBurst, firstOrderNumber),
		Production:     cli.BuildMode == "production",
		SessionTimeout: cli.SessionTimeout,
	}
}

func makeLedger(dsn string, verbose bool) *ledger.Ledger {
	l, err := ledger.Open(dsn, verbose)
	if err != nil {
		panic(fmt.Errorf("failed opening outcome ledger: %s", err.Error()))
	}
	return l
}

func makeSimulator(
	ctx context.Context,
	ctxCancelFunc context.CancelFunc,
	customers []*simulator.SimulatedCustomer,
	numWorkers int,
	outcomeLedger *ledger.Ledger,
) *Simulator {
	return &Simulator{
		Ctx:           ctx,
		CtxCancelFunc: ctxCancelFunc,
		Customers:     customers,
		NumWorkers:    numWorkers,
		Ledger:        outcomeLedger,
		Out:           os.Stdout,
	}
}
