package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/houseofbtc/houseledger/pkg/explorer/esplora"
	"github.com/houseofbtc/houseledger/pkg/wallet"
	"github.com/spf13/viper"
)

const (
	// ElectrumServerKey is the endpoint of the electrs (Esplora) REST API the
	// wallet syncs with and broadcasts through
	ElectrumServerKey = "ELECTRUM_SERVER"
	// NetworkKey is the bitcoin network to use. One of mainnet, testnet,
	// regtest or signet
	NetworkKey = "NETWORK"
	// MnemonicKey is the mnemonic of the master private key of the wallet. A
	// new one is generated if not set
	MnemonicKey = "MNEMONIC"
	// DatadirKey is the local data directory to store the internal state of
	// the daemon
	DatadirKey = "DATA_DIR_PATH"
	// LogLevelKey are the different logging levels. For reference on the
	// values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// HTTPListeningPortKey is the port where the REST interface listens on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// FeeRateKey is the fee rate in sat/vB used for every spend
	FeeRateKey = "FEE_RATE"
	// ExplorerRequestTimeoutKey are the milliseconds to wait for HTTP
	// responses of the explorer before timeouts
	ExplorerRequestTimeoutKey = "EXPLORER_REQUEST_TIMEOUT"
	// ExplorerRateLimitKey is the max number of requests per second made to
	// the explorer
	ExplorerRateLimitKey = "EXPLORER_RATE_LIMIT"
	// OperationTimeoutKey are the milliseconds after which any ledger
	// operation is given up
	OperationTimeoutKey = "OPERATION_TIMEOUT"
	// GapLimitKey is the number of consecutive unused addresses scanned
	// before the wallet stops looking for funds
	GapLimitKey = "GAP_LIMIT"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// StatsIntervalKey defines the interval in seconds for logging memory
	// statistics. 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation = "db"

	DBBadger   = "badger"
	DBInMemory = "inmemory"
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("houseledger", false)

	networks = map[string]*chaincfg.Params{
		"mainnet": &chaincfg.MainNetParams,
		"testnet": &chaincfg.TestNet3Params,
		"regtest": &chaincfg.RegressionNetParams,
		"signet":  &chaincfg.SigNetParams,
	}
)

// InitConfig loads the configuration from the environment (HOUSE_ prefixed
// variables), validates it and creates the datadir if missing.
func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("HOUSE")
	vip.AutomaticEnv()

	vip.SetDefault(NetworkKey, "regtest")
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(HTTPListeningPortKey, 8081)
	vip.SetDefault(FeeRateKey, 1)
	vip.SetDefault(ExplorerRequestTimeoutKey, 15000)
	vip.SetDefault(ExplorerRateLimitKey, 10)
	vip.SetDefault(OperationTimeoutKey, 30000)
	vip.SetDefault(GapLimitKey, 20)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetDuration returns the value of a key expressed in milliseconds as a
// duration.
func GetDuration(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Millisecond
}

func GetNetwork() *chaincfg.Params {
	return networks[strings.ToLower(GetString(NetworkKey))]
}

// GetDatadir returns the data directory of the configured network.
func GetDatadir() string {
	return filepath.Join(GetString(DatadirKey), GetNetwork().Name)
}

// GetDbDir returns the directory of the persistent database.
func GetDbDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

// GetMnemonic returns the configured mnemonic, if any.
func GetMnemonic() []string {
	return strings.Fields(GetString(MnemonicKey))
}

// GetExplorer returns the connector used to open the chain connection with
// the configured settings.
func GetExplorer() esplora.Connector {
	return esplora.Connector{
		Network:        GetNetwork(),
		RequestTimeout: GetDuration(ExplorerRequestTimeoutKey),
		RateLimit:      GetInt(ExplorerRateLimitKey),
	}
}

// Set a value for the given key
func Set(key string, value interface{}) {
	vip.Set(key, value)
}

// IsSet returns whether the give key is set
func IsSet(key string) bool {
	return vip.IsSet(key)
}

func validate() error {
	if len(GetString(DatadirKey)) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	networkName := strings.ToLower(GetString(NetworkKey))
	if _, ok := networks[networkName]; !ok {
		return fmt.Errorf(
			"network must be one of mainnet, testnet, regtest or signet, got %s",
			networkName,
		)
	}

	if endpoint := GetString(ElectrumServerKey); endpoint != "" {
		u, err := url.Parse(endpoint)
		if err != nil {
			return fmt.Errorf("electrum server is not a valid url: %s", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("electrum server url must be http or https")
		}
	}

	if mnemonic := GetMnemonic(); len(mnemonic) > 0 {
		if !wallet.IsMnemonicValid(mnemonic) {
			return fmt.Errorf("mnemonic is not valid")
		}
	}

	if GetInt(FeeRateKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", FeeRateKey)
	}
	if GetInt(GapLimitKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", GapLimitKey)
	}
	if GetInt(OperationTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", OperationTimeoutKey)
	}
	if GetInt(ExplorerRequestTimeoutKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", ExplorerRequestTimeoutKey)
	}
	if GetInt(ExplorerRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be a positive number", ExplorerRateLimitKey)
	}
	if GetInt(StatsIntervalKey) < 0 {
		return fmt.Errorf("%s must not be a negative number", StatsIntervalKey)
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf("db type must be either %s or %s", DBBadger, DBInMemory)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != DBBadger {
		return makeDirectoryIfNotExists(GetDatadir())
	}
	return makeDirectoryIfNotExists(GetDbDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
