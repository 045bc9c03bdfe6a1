// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  ChainConfig     `mapstructure:"ethereum"`
	Chains    []ChainConfig   `mapstructure:"chains"`
	Balancer  BalancerConfig  `mapstructure:"balancer"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // json | console
}

// ChainConfig describes one (chain, network) the connector can serve.
type ChainConfig struct {
	Chain          string        `mapstructure:"chain"`
	Network        string        `mapstructure:"network"`
	ChainID        uint64        `mapstructure:"chain_id"`
	HTTPURL        string        `mapstructure:"http_url"`
	WebSocketURL   string        `mapstructure:"websocket_url"`
	TokenListPath  string        `mapstructure:"token_list"`
	NativeSymbol   string        `mapstructure:"native_symbol"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
	MaxGasPrice    uint64        `mapstructure:"max_gas_price_gwei"`
	GasCacheTTL    time.Duration `mapstructure:"gas_cache_ttl"`
	ReceiptPoll    time.Duration `mapstructure:"receipt_poll_interval"`
}

// Key identifies the chain config, e.g. "ethereum/mainnet".
func (c ChainConfig) Key() string {
	return c.Chain + "/" + c.Network
}

// BalancerConfig holds routing API and Vault settings.
type BalancerConfig struct {
	APIURL            string        `mapstructure:"api_url"`
	VaultAddress      string        `mapstructure:"vault_address"`
	AllowedSlippage   string        `mapstructure:"allowed_slippage"`
	DeadlineOffset    time.Duration `mapstructure:"deadline_offset"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	PoolCacheTTL      time.Duration `mapstructure:"pool_cache_ttl"`
}

// VaultAddressHex returns the vault address as common.Address.
func (c *BalancerConfig) VaultAddressHex() common.Address {
	return common.HexToAddress(c.VaultAddress)
}

// WalletConfig holds the signing key. Empty disables execution.
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

// GatewayConfig holds the HTTP API settings.
type GatewayConfig struct {
	Address           string        `mapstructure:"address"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
}

// MonitorConfig describes the pair re-quoted on every block.
type MonitorConfig struct {
	Chain    string `mapstructure:"chain"`
	Network  string `mapstructure:"network"`
	Pair     string `mapstructure:"pair"`
	Amount   string `mapstructure:"amount"`
	Side     string `mapstructure:"side"`
	Slippage string `mapstructure:"slippage"`
	TUIMode  bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	ServiceName     string `mapstructure:"service_name"`
	TraceProvider   string `mapstructure:"trace_provider"` // zipkin | otlp-grpc | otlp-http | console | none
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	OTLPHeaders     string `mapstructure:"otlp_headers"` // key=value,key=value
	MetricsProvider string `mapstructure:"metrics_provider"` // prometheus | otlp
	MetricsEndpoint string `mapstructure:"metrics_endpoint"`
	PrometheusPort  int    `mapstructure:"prometheus_port"`
}

// Headers parses OTLPHeaders into a map.
func (c *TelemetryConfig) Headers() map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(c.OTLPHeaders, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if ok && k != "" {
			headers[k] = v
		}
	}
	return headers
}

// AllChains returns the primary chain followed by any extra chains.
func (c *Config) AllChains() []ChainConfig {
	out := make([]ChainConfig, 0, 1+len(c.Chains))
	out = append(out, c.Ethereum)
	return append(out, c.Chains...)
}

// Chain finds the config for (chain, network).
func (c *Config) Chain(chain, network string) (ChainConfig, bool) {
	for _, cc := range c.AllChains() {
		if strings.EqualFold(cc.Chain, chain) && strings.EqualFold(cc.Network, network) {
			return cc, true
		}
	}
	return ChainConfig{}, false
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	for i := range cfg.Chains {
		applyChainDefaults(&cfg.Chains[i], cfg.Ethereum)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "ARB_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "ARB_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "ARB_LOG_LEVEL", "LOG_LEVEL")

	// Primary chain
	v.BindEnv("ethereum.websocket_url", "ARB_ETH_WS_URL", "ETH_WS_URL")
	v.BindEnv("ethereum.http_url", "ARB_ETH_HTTP_URL", "ETH_HTTP_URL")
	v.BindEnv("ethereum.chain_id", "ARB_ETH_CHAIN_ID", "ETH_CHAIN_ID")

	// Balancer
	v.BindEnv("balancer.api_url", "ARB_BALANCER_API_URL", "BALANCER_API_URL")
	v.BindEnv("balancer.allowed_slippage", "ARB_BALANCER_ALLOWED_SLIPPAGE", "ALLOWED_SLIPPAGE")

	// Wallet
	v.BindEnv("wallet.private_key", "ARB_WALLET_PRIVATE_KEY", "WALLET_PRIVATE_KEY")

	// Telemetry
	v.BindEnv("telemetry.enabled", "ARB_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "ARB_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "ARB_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "ARB_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "balancer-connector")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "json")

	v.SetDefault("ethereum.chain", "ethereum")
	v.SetDefault("ethereum.network", "mainnet")
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.native_symbol", "ETH")
	v.SetDefault("ethereum.max_reconnects", 0) // infinite
	v.SetDefault("ethereum.initial_backoff", "1s")
	v.SetDefault("ethereum.max_backoff", "30s")
	v.SetDefault("ethereum.max_gas_price_gwei", 500)
	v.SetDefault("ethereum.gas_cache_ttl", "12s")
	v.SetDefault("ethereum.receipt_poll_interval", "2s")

	v.SetDefault("balancer.api_url", "https://api-v3.balancer.fi/")
	v.SetDefault("balancer.vault_address", "0xBA12222222228d8Ba445958a75a0704d566BF2C8")
	v.SetDefault("balancer.allowed_slippage", "1/100")
	v.SetDefault("balancer.deadline_offset", "8760h")
	v.SetDefault("balancer.request_timeout", "10s")
	v.SetDefault("balancer.requests_per_second", 5)
	v.SetDefault("balancer.pool_cache_ttl", "30s")

	v.SetDefault("gateway.address", ":15888")
	v.SetDefault("gateway.allowed_origins", []string{"*"})
	v.SetDefault("gateway.requests_per_minute", 120)
	v.SetDefault("gateway.request_timeout", "60s")

	v.SetDefault("monitor.chain", "ethereum")
	v.SetDefault("monitor.network", "mainnet")
	v.SetDefault("monitor.pair", "WETH-DAI")
	v.SetDefault("monitor.amount", "1")
	v.SetDefault("monitor.side", "SELL")

	v.SetDefault("health.port", 8081)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "balancer-connector")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.metrics_provider", "prometheus")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// applyChainDefaults fills tuning fields an extra chain left empty from
// the primary chain.
func applyChainDefaults(c *ChainConfig, primary ChainConfig) {
	if c.InitialBackoff == 0 {
		c.InitialBackoff = primary.InitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = primary.MaxBackoff
	}
	if c.MaxGasPrice == 0 {
		c.MaxGasPrice = primary.MaxGasPrice
	}
	if c.GasCacheTTL == 0 {
		c.GasCacheTTL = primary.GasCacheTTL
	}
	if c.ReceiptPoll == 0 {
		c.ReceiptPoll = primary.ReceiptPoll
	}
	if c.NativeSymbol == "" {
		c.NativeSymbol = "ETH"
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	seen := make(map[string]bool)
	for _, cc := range c.AllChains() {
		if cc.Chain == "" || cc.Network == "" {
			return fmt.Errorf("chain and network are required for every chain entry")
		}
		if seen[cc.Key()] {
			return fmt.Errorf("duplicate chain entry %s", cc.Key())
		}
		seen[cc.Key()] = true
		if cc.HTTPURL == "" {
			return fmt.Errorf("%s: http_url is required", cc.Key())
		}
		if cc.ChainID == 0 {
			return fmt.Errorf("%s: chain_id is required", cc.Key())
		}
	}
	if c.Balancer.APIURL == "" {
		return fmt.Errorf("balancer.api_url is required")
	}
	if !common.IsHexAddress(c.Balancer.VaultAddress) {
		return fmt.Errorf("invalid balancer.vault_address: %s", c.Balancer.VaultAddress)
	}
	if c.Balancer.DeadlineOffset <= 0 {
		return fmt.Errorf("balancer.deadline_offset must be positive")
	}
	switch strings.ToUpper(c.Monitor.Side) {
	case "BUY", "SELL":
	default:
		return fmt.Errorf("invalid monitor.side: %s", c.Monitor.Side)
	}
	return nil
}
