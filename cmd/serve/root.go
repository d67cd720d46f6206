package serve

import (
	"context"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	cmdUtil "github.com/ValentinKolb/fetchd/cmd/util"
	"github.com/ValentinKolb/fetchd/ftp/common"
	"github.com/ValentinKolb/fetchd/ftp/server"
	"github.com/ValentinKolb/fetchd/ftp/transport/tcp"
	"github.com/ValentinKolb/fetchd/lib/source"
	"github.com/ValentinKolb/fetchd/lib/source/dirsource"
	"github.com/ValentinKolb/fetchd/lib/source/s3source"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve [port]",
		Short:   "Start the file server",
		Long:    `Start the file server with the specified configuration. The listen port can be given as a positional argument or via the --port flag. The configuration can be set via command line flags or environment variables. The format of the environment variables is FETCHD_<flag> (e.g. FETCHD_MAX_SESSIONS=32)`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "port"
	ServeCmd.PersistentFlags().Int(key, 8080, cmdUtil.WrapString(fmt.Sprintf("The control connection listen port. Must be in the range [%d, %d], ports above %d are recommended", common.MinPort, common.MaxPort, common.AdvisoryMinPort)))

	key = "source"
	ServeCmd.PersistentFlags().String(key, "dir", cmdUtil.WrapString("The payload source backend to serve files from (dir, s3)"))

	key = "root-dir"
	ServeCmd.PersistentFlags().String(key, ".", cmdUtil.WrapString("(dir backend) The directory whose regular files are served"))

	key = "s3-bucket"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(s3 backend) The name of the bucket to serve"))

	key = "s3-region"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(s3 backend) The AWS region of the bucket"))

	key = "s3-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(s3 backend) Custom endpoint URL, e.g. for MinIO (empty = AWS)"))

	key = "s3-key-prefix"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(s3 backend) Key prefix acting as the served directory within the bucket"))

	key = "s3-path-style"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("(s3 backend) Use path-style addressing (required for MinIO)"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 10, cmdUtil.WrapString("Timeout in seconds for every network step of a session, also used as the drain window on shutdown"))

	key = "max-sessions"
	ServeCmd.PersistentFlags().Int(key, 64, cmdUtil.WrapString("Maximum number of concurrently served sessions"))

	key = "data-dial-retries"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("How many times to attempt the data connection to the client before giving up"))

	key = "data-dial-timeout"
	ServeCmd.PersistentFlags().Int64(key, 1000, cmdUtil.WrapString("Timeout in milliseconds for a single data connection attempt"))

	key = "tcp-nodelay"
	ServeCmd.PersistentFlags().Bool(key, true, cmdUtil.WrapString("Whether to enable TCP_NODELAY on control and data connections"))

	key = "write-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket write buffer size in KB (0 = OS default)"))

	key = "read-buffer"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The socket read buffer size in KB (0 = OS default)"))

	key = "tcp-keepalive"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The keepalive interval in seconds (0 = off)"))

	key = "tcp-linger"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("The linger time on close in seconds (0 = OS default)"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Address to expose Prometheus metrics and pprof on (e.g. localhost:9090, empty = disabled)"))

	key = "watch"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("(dir backend) Log files appearing and disappearing below the served directory"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, args []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Port = viper.GetInt("port")
	serveCmdConfig.Source = common.SourceBackend(viper.GetString("source"))
	serveCmdConfig.RootDir = viper.GetString("root-dir")
	serveCmdConfig.S3 = common.S3Config{
		Bucket:         viper.GetString("s3-bucket"),
		Region:         viper.GetString("s3-region"),
		Endpoint:       viper.GetString("s3-endpoint"),
		KeyPrefix:      viper.GetString("s3-key-prefix"),
		ForcePathStyle: viper.GetBool("s3-path-style"),
	}
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.MaxSessions = viper.GetInt("max-sessions")
	serveCmdConfig.DataDialRetries = viper.GetInt("data-dial-retries")
	serveCmdConfig.DataDialTimeoutMs = viper.GetInt64("data-dial-timeout")
	serveCmdConfig.Transport = common.TransportConfig{
		TCPNoDelay:      viper.GetBool("tcp-nodelay"),
		WriteBufferSize: viper.GetInt("write-buffer") * 1024,
		ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
		TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
		TCPLingerSec:    viper.GetInt("tcp-linger"),
	}
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.Watch = viper.GetBool("watch")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	// a positional port argument takes precedence over the flag
	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port argument %q: %v", args[0], err)
		}
		serveCmdConfig.Port = port
	}

	return serveCmdConfig.Validate()
}

// run starts the file server and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	// stop on interrupt, the server drains its sessions before returning
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, err := newSource(ctx, serveCmdConfig)
	if err != nil {
		return err
	}
	defer src.Close()

	serv := server.NewFileServer(
		*serveCmdConfig,
		tcp.NewTCPServerConnector(),
		src,
	)

	return serv.Serve(ctx)
}

// newSource creates the configured payload source backend
func newSource(ctx context.Context, config *common.ServerConfig) (source.ISource, error) {
	switch config.Source {
	case common.SourceBackendDir:
		return dirsource.NewDirSource(config.RootDir)
	case common.SourceBackendS3:
		return s3source.NewFromConfig(ctx, s3source.Config{
			Bucket:         config.S3.Bucket,
			Region:         config.S3.Region,
			Endpoint:       config.S3.Endpoint,
			KeyPrefix:      config.S3.KeyPrefix,
			ForcePathStyle: config.S3.ForcePathStyle,
			TimeoutSecond:  config.TimeoutSecond,
		})
	default:
		return nil, fmt.Errorf("invalid source backend %s", config.Source)
	}
}

// initConfig reads in serveCmdConfig file and ENV variables if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("fetchd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
