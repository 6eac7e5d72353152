package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/dictd/cmd/util"
	"github.com/ValentinKolb/dictd/lib/dict"
	"github.com/ValentinKolb/dictd/lib/dict/fsource"
	"github.com/ValentinKolb/dictd/lib/dict/rsource"
	"github.com/ValentinKolb/dictd/rpc/common"
	"github.com/ValentinKolb/dictd/rpc/serializer"
	"github.com/ValentinKolb/dictd/rpc/server"
	"github.com/ValentinKolb/dictd/rpc/transport"
	"github.com/ValentinKolb/dictd/rpc/transport/tcp"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"runtime"
	"strconv"
	"time"
)

var Logger = logger.GetLogger("dictd")

// serveCmdConfig is filled by ProcessConfig and used by Run
var serveCmdConfig = &common.ServerConfig{}

// AddFlags adds all server flags to cmd
func AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()

	key := "host"
	flags.String(key, common.DefaultHost, cmdUtil.WrapString("Interface address to bind to"))

	key = "workers"
	flags.Int(key, runtime.NumCPU(), cmdUtil.WrapString("Number of worker slots, i.e. connections served at the same time. Further connections wait in the queue"))

	key = "backlog"
	flags.Int(key, common.DefaultBacklog, cmdUtil.WrapString("Accept backlog of the listening socket (capped by the kernel)"))

	key = "buffer-size"
	flags.Int(key, common.DefaultBufferSize, cmdUtil.WrapString("Receive buffer size in bytes. One read is one query, longer input is split"))

	key = "read-timeout"
	flags.Int64(key, 0, cmdUtil.WrapString("Close connections that send nothing for this many seconds (0 = never)"))

	key = "write-timeout"
	flags.Int64(key, 0, cmdUtil.WrapString("Deadline in seconds for writing one response (0 = none)"))

	key = "max-send-failures"
	flags.Int(key, 0, cmdUtil.WrapString("Close a connection after this many consecutive failed sends (0 = never)"))

	key = "source"
	flags.String(key, string(common.SourceTypeFile), cmdUtil.WrapString("Dictionary source (fs, redis)"))

	key = "data-dir"
	flags.String(key, fsource.DefaultDir, cmdUtil.WrapString("(fs source) Directory containing the partition files D<LETTER>.json"))

	key = "redis-addr"
	flags.String(key, "localhost:6379", cmdUtil.WrapString("(redis source) Address of the Redis server"))

	key = "redis-password"
	flags.String(key, "", cmdUtil.WrapString("(redis source) Password of the Redis server"))

	key = "redis-db"
	flags.Int(key, 0, cmdUtil.WrapString("(redis source) Redis database number"))

	key = "redis-prefix"
	flags.String(key, rsource.DefaultPrefix, cmdUtil.WrapString("(redis source) Prefix of the partition hash keys"))

	key = "format"
	flags.String(key, string(common.FormatText), cmdUtil.WrapString("Response format (text, compact)"))

	key = "log-level"
	flags.String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	key = "metrics-endpoint"
	flags.String(key, "", cmdUtil.WrapString("Serve Prometheus metrics on this address under /metrics (e.g. localhost:9100). Disabled if empty"))

	key = "tcp-nodelay"
	flags.Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY on accepted connections"))

	key = "tcp-keepalive"
	flags.Int(key, 0, cmdUtil.WrapString("TCP keep-alive period in seconds (0 = system default)"))

	key = "tcp-linger"
	flags.Int(key, -1, cmdUtil.WrapString("SO_LINGER in seconds (-1 = system default)"))
}

// ParsePort validates the single positional argument
func ParsePort(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return cmdUtil.UsageError("expected exactly one argument <port>, got %d", len(args))
	}
	if _, err := strconv.Atoi(args[0]); err != nil {
		return cmdUtil.UsageError("invalid port %q: must be an integer", args[0])
	}
	return nil
}

// ProcessConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func ProcessConfig(cmd *cobra.Command, args []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	port, err := strconv.Atoi(args[0])
	if err != nil {
		return cmdUtil.UsageError("invalid port %q: must be an integer", args[0])
	}

	config := common.ServerConfig{
		Host:            viper.GetString("host"),
		Port:            port,
		Backlog:         viper.GetInt("backlog"),
		Workers:         viper.GetInt("workers"),
		BufferSize:      viper.GetInt("buffer-size"),
		ReadTimeoutSec:  viper.GetInt64("read-timeout"),
		WriteTimeoutSec: viper.GetInt64("write-timeout"),
		MaxSendFailures: viper.GetInt("max-send-failures"),
		TCPNoDelay:      viper.GetBool("tcp-nodelay"),
		TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("tcp-linger"),
		ResponseFormat:  common.ResponseFormat(viper.GetString("format")),
		MetricsEndpoint: viper.GetString("metrics-endpoint"),
		LogLevel:        viper.GetString("log-level"),
		Source:          common.SourceType(viper.GetString("source")),
		DataDir:         viper.GetString("data-dir"),
		RedisAddr:       viper.GetString("redis-addr"),
		RedisPass:       viper.GetString("redis-password"),
		RedisDB:         viper.GetInt("redis-db"),
		RedisPrefix:     viper.GetString("redis-prefix"),
	}

	// validate
	if config.Workers < 1 {
		return cmdUtil.UsageError("workers must be at least 1, got %d", config.Workers)
	}
	if config.Backlog < 1 {
		return cmdUtil.UsageError("backlog must be at least 1, got %d", config.Backlog)
	}
	if config.BufferSize < 1 {
		return cmdUtil.UsageError("buffer-size must be at least 1, got %d", config.BufferSize)
	}
	if config.ReadTimeoutSec < 0 || config.WriteTimeoutSec < 0 {
		return cmdUtil.UsageError("timeouts must not be negative")
	}
	if config.MaxSendFailures < 0 {
		return cmdUtil.UsageError("max-send-failures must not be negative, got %d", config.MaxSendFailures)
	}
	if _, err := common.ParseLogLevel(config.LogLevel); err != nil {
		return cmdUtil.UsageError("%v", err)
	}
	if _, err := newSerializer(config.ResponseFormat); err != nil {
		return cmdUtil.UsageError("%v", err)
	}
	switch config.Source {
	case common.SourceTypeFile, common.SourceTypeRedis:
	default:
		return cmdUtil.UsageError("invalid source %s (expected one of: fs, redis)", config.Source)
	}

	*serveCmdConfig = config
	return nil
}

// Run starts the dictionary server. It only returns on failure.
func Run(cmd *cobra.Command, _ []string) error {
	// from here on errors are runtime errors, not usage errors
	cmd.SilenceUsage = true

	config := *serveCmdConfig
	if err := common.InitLoggers(config); err != nil {
		return cmdUtil.UsageError("%v", err)
	}

	s, err := newSerializer(config.ResponseFormat)
	if err != nil {
		return cmdUtil.UsageError("%v", err)
	}

	source, err := newSource(config)
	if err != nil {
		return err
	}

	metrics := common.NewServerMetrics()
	serv := server.NewDictServer(
		config,
		tcp.NewTCPServerTransport(metrics),
		s,
		dict.NewProvider(source),
		metrics,
	)

	if err := serv.Serve(); err != nil {
		if errors.Is(err, transport.ErrBind) {
			Logger.Errorf("Socket bind failed: %v", err)
		}
		return &cmdUtil.ExitError{Code: cmdUtil.ExitCodeFatal, Err: err}
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// newSerializer returns the serializer for a response format
func newSerializer(format common.ResponseFormat) (serializer.IResultSerializer, error) {
	switch format {
	case common.FormatText:
		return serializer.NewTextSerializer(), nil
	case common.FormatCompact:
		return serializer.NewCompactSerializer(), nil
	default:
		return nil, fmt.Errorf("invalid format %s (expected one of: text, compact)", format)
	}
}

// newSource creates the configured dictionary source. An unreachable backend is only
// reported: lookups answer NOENTRY until the data becomes available.
func newSource(config common.ServerConfig) (dict.ISource, error) {
	switch config.Source {
	case common.SourceTypeFile:
		if info, err := os.Stat(config.DataDir); err != nil || !info.IsDir() {
			Logger.Warningf("Data directory %s is not readable, every query will be answered with %s", config.DataDir, common.NoEntry)
		}
		return fsource.NewFileSource(config.DataDir), nil

	case common.SourceTypeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPass,
			DB:       config.RedisDB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			Logger.Warningf("Redis at %s is not reachable: %v", config.RedisAddr, err)
		}
		return rsource.NewRedisSource(client, config.RedisPrefix), nil

	default:
		return nil, cmdUtil.UsageError("invalid source %s", config.Source)
	}
}
