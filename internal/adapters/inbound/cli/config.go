package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/nix-mox/moxlint/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	configBaseName   = "moxlint"
	configFolderPath = "."
	envPrefix        = "MOXLINT"

	nushellPathKey        = "nushell_path"
	enableMetricsKey      = "enable_metrics"
	showWelcomeKey        = "show_welcome"
	securityValidationKey = "security_validation"
	metricsPathKey        = "metrics_path"
	commandTimeoutKey     = "command_timeout"
	lintParallelKey       = "lint.parallel"

	nushellFlagName  = "nushell"
	parallelFlagName = "parallel"
	timeoutFlagName  = "timeout"
	logFileFlagName  = "log-file"
	verboseFlagName  = "verbose"

	logFilenameKey   = "log.filename"
	logLevelKey      = "log.level"
	logVerboseKey    = "log.verbose"
	logMaxSizeKey    = "log.max_size"
	logMaxBackupsKey = "log.max_backups"
	logMaxAgeKey     = "log.max_age"
	logCompressKey   = "log.compress"

	defaultLogFilename   = ".moxlint.log"
	defaultLogMaxSize    = 10
	defaultLogMaxBackups = 3
	defaultLogMaxAge     = 28
	defaultLogCompress   = true
)

// newConfig builds the viper instance backing one root command. Values come
// from moxlint.yaml in the working directory, MOXLINT_* variables and flags.
func newConfig() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configBaseName)
	v.SetConfigType("yaml")
	v.AddConfigPath(configFolderPath)
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	defaults := domain.DefaultSettings()
	v.SetDefault(nushellPathKey, defaults.NushellPath)
	v.SetDefault(enableMetricsKey, defaults.EnableMetrics)
	v.SetDefault(showWelcomeKey, defaults.ShowWelcome)
	v.SetDefault(securityValidationKey, defaults.SecurityValidation)
	v.SetDefault(metricsPathKey, defaults.MetricsPath)
	v.SetDefault(commandTimeoutKey, int64(defaults.CommandTimeout.Seconds()))
	v.SetDefault(lintParallelKey, defaults.LintParallel)

	v.SetDefault(logFilenameKey, defaultLogFilename)
	v.SetDefault(logLevelKey, "info")
	v.SetDefault(logVerboseKey, false)
	v.SetDefault(logMaxSizeKey, defaultLogMaxSize)
	v.SetDefault(logMaxBackupsKey, defaultLogMaxBackups)
	v.SetDefault(logMaxAgeKey, defaultLogMaxAge)
	v.SetDefault(logCompressKey, defaultLogCompress)

	return v
}

// readConfigFile loads moxlint.yaml when present. A missing file is fine.
func readConfigFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading %s.yaml: %w", configBaseName, err)
	}
	return nil
}

func configureRootFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()

	flags.String(nushellFlagName, v.GetString(nushellPathKey), "path to the Nushell executable")
	bindFlagToConfig(v, flags.Lookup(nushellFlagName), nushellPathKey)

	flags.IntP(parallelFlagName, "p", v.GetInt(lintParallelKey), "number of files linted concurrently")
	bindFlagToConfig(v, flags.Lookup(parallelFlagName), lintParallelKey)

	flags.Int64(timeoutFlagName, v.GetInt64(commandTimeoutKey), "timeout in seconds for Nushell subprocesses (0 disables)")
	bindFlagToConfig(v, flags.Lookup(timeoutFlagName), commandTimeoutKey)

	flags.String(logFileFlagName, v.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(v, flags.Lookup(logFileFlagName), logFilenameKey)

	flags.BoolP(verboseFlagName, "v", false, "log at debug level")
	bindFlagToConfig(v, flags.Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(v *viper.Viper, flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(v.BindPFlag(key, flag))
}

// settingsFrom snapshots the resolved configuration.
func settingsFrom(v *viper.Viper) domain.Settings {
	return domain.Settings{
		NushellPath:        v.GetString(nushellPathKey),
		EnableMetrics:      v.GetBool(enableMetricsKey),
		ShowWelcome:        v.GetBool(showWelcomeKey),
		SecurityValidation: v.GetBool(securityValidationKey),
		MetricsPath:        v.GetString(metricsPathKey),
		CommandTimeout:     time.Duration(v.GetInt64(commandTimeoutKey)) * time.Second,
		LintParallel:       v.GetInt(lintParallelKey),
	}
}

func parseSlogLevel(value string, defaultLevel slog.Level) slog.Level {
	level := strings.ToLower(strings.TrimSpace(value))
	if level == "" {
		return defaultLevel
	}

	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	if n, err := strconv.Atoi(level); err == nil {
		return slog.Level(n)
	}

	return defaultLevel
}

// configureLogger points the default slog logger at a rotating file so
// stdout stays free for the LSP and MCP transports.
func configureLogger(v *viper.Viper) {
	logPath := strings.TrimSpace(v.GetString(logFilenameKey))
	if logPath == "" {
		logPath = defaultLogFilename
	}

	logLevel := parseSlogLevel(v.GetString(logLevelKey), slog.LevelInfo)
	if v.GetBool(logVerboseKey) {
		logLevel = slog.LevelDebug
	}

	logWriter := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    v.GetInt(logMaxSizeKey),
		MaxBackups: v.GetInt(logMaxBackupsKey),
		MaxAge:     v.GetInt(logMaxAgeKey),
		Compress:   v.GetBool(logCompressKey),
	}

	handler := slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		AddSource: true,
		Level:     logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
