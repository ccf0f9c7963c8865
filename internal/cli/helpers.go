package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BaeKey/smartedu/internal/logger"
	"github.com/BaeKey/smartedu/pkg/auth"
	"github.com/BaeKey/smartedu/pkg/config"
	"github.com/BaeKey/smartedu/pkg/credential"
	"github.com/BaeKey/smartedu/pkg/download"
	"github.com/BaeKey/smartedu/pkg/hook"
	smarthttp "github.com/BaeKey/smartedu/pkg/http"
	"github.com/BaeKey/smartedu/pkg/orchestrator"
	"github.com/BaeKey/smartedu/pkg/resolver"
)

// These variables will be set by the main package
var (
	ConfigPath      *string
	Verbose         *bool
	OutputFormat    *string
	CredentialStore *string
)

// loadConfig loads the configuration and applies the global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if OutputFormat != nil && *OutputFormat != "" {
		cfg.Settings.OutputFormat = *OutputFormat
	}
	if Verbose != nil && *Verbose {
		cfg.Settings.LogLevel = "debug"
	}
	if CredentialStore != nil && *CredentialStore != "" {
		cfg.Settings.CredentialStore = *CredentialStore
	}
	return cfg, nil
}

// InitLogging configures the logger from the loaded configuration.
func InitLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format := logger.FormatText
	if cfg.Settings.OutputFormat == OutputJSON {
		format = logger.FormatJSON
	}
	logger.InitLogger(cfg.Settings.LogLevel, format)
	return nil
}

func jsonOutput(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == OutputJSON
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func loadHTTPClient(cfg *config.Config) smarthttp.Client {
	return smarthttp.NewHTTPClient(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent, cfg.Settings.ToAuthenticator())
}

func loadResolver(cfg *config.Config) *resolver.Resolver {
	return resolver.New(cfg.Mirrors, loadHTTPClient(cfg))
}

func loadSigner(cfg *config.Config) *auth.MACSigner {
	store := credential.FileStore{Path: cfg.GetCredentialStorePath()}
	locator := credential.NewLocator(store, cfg.Settings.CredentialPrefix, cfg.Settings.CredentialSuffix)
	signer := auth.NewMACSigner(locator)
	signer.Header = cfg.Settings.AuthHeader
	return signer
}

// loadDownloadManager has no client timeout: textbooks can take minutes and
// the context bounds the transfer instead. Static headers go out with every
// artifact request, ahead of the per-request signature.
func loadDownloadManager(cfg *config.Config) download.Manager {
	return download.NewManager(0, cfg.Settings.UserAgent, cfg.Settings.ToAuthenticator())
}

func loadScripts(cfg *config.Config) (hook.Runner, error) {
	if cfg.Settings.PreDownloadHook == "" && cfg.Settings.PostDownloadHook == "" {
		return nil, nil
	}
	return hook.LoadScripts(map[hook.Type]string{
		hook.PreDownload:  cfg.Settings.PreDownloadHook,
		hook.PostDownload: cfg.Settings.PostDownloadHook,
	})
}

func loadOrchestrator(cfg *config.Config, hooks orchestrator.Hooks) (*orchestrator.Orchestrator, error) {
	scripts, err := loadScripts(cfg)
	if err != nil {
		return nil, err
	}
	return &orchestrator.Orchestrator{
		Resolver:          loadResolver(cfg),
		Signer:            loadSigner(cfg),
		DL:                loadDownloadManager(cfg),
		Format:            cfg.Settings.TargetFormat,
		DefaultTitle:      cfg.Settings.DefaultTitle,
		RequireCredential: cfg.Settings.RequireCredential,
		Hooks:             hooks,
		Scripts:           scripts,
	}, nil
}
