package config

import (
	"strings"

	"github.com/garyjia/claimdesk/internal/container"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
)

// ToContainerConfig converts the application Config to a container.Config.
// This provides a bridge between the file-based config loaded by viper
// and the container's configuration structure.
func (c *Config) ToContainerConfig() *container.Config {
	policy, err := workflow.ParsePolicy(c.Claims.TransitionPolicy)
	if err != nil {
		policy = workflow.PolicyPermissive
	}

	extensions := make([]string, len(c.Documents.AllowedExtensions))
	for i, ext := range c.Documents.AllowedExtensions {
		extensions[i] = strings.ToLower(ext)
	}

	return &container.Config{
		Store: container.StoreConfig{
			Backend: c.Store.Backend,
		},
		Documents: container.DocumentsConfig{
			MaxSize:           c.Documents.MaxSizeBytes,
			AllowedExtensions: extensions,
			StartDir:          c.Documents.StartDir,
		},
		Claims: container.ClaimsConfig{
			Policy: policy,
		},
		Currency: container.CurrencyConfig{
			Code:   c.Currency.Code,
			Locale: c.Currency.Locale,
		},
		Export: container.ExportConfig{
			Dir: c.Export.Dir,
		},
		Server: container.ServerConfig{
			Host:         c.Server.Host,
			Port:         c.Server.Port,
			ReadTimeout:  c.Server.ReadTimeout,
			WriteTimeout: c.Server.WriteTimeout,
		},
	}
}
