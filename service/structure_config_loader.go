package service

import (
	"github.com/scopeflow/scopeflow/domain"
	"github.com/scopeflow/scopeflow/internal/config"
)

// StructureConfigurationLoaderImpl implements the
// StructureConfigurationLoader interface on top of the config package
type StructureConfigurationLoaderImpl struct{}

// NewStructureConfigurationLoader creates a new configuration loader
func NewStructureConfigurationLoader() *StructureConfigurationLoaderImpl {
	return &StructureConfigurationLoaderImpl{}
}

// LoadConfig loads configuration from the specified path
func (l *StructureConfigurationLoaderImpl) LoadConfig(path string) (*domain.StructureRequest, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}
	return requestFromConfig(cfg), nil
}

// LoadDefaultConfig loads the default configuration, honoring a project
// config file when one is found
func (l *StructureConfigurationLoaderImpl) LoadDefaultConfig() *domain.StructureRequest {
	if path := config.FindConfigFile("."); path != "" {
		if req, err := l.LoadConfig(path); err == nil {
			return req
		}
	}
	return requestFromConfig(config.DefaultConfig())
}

// MergeConfig merges a loaded configuration with request values; request
// values win
func (l *StructureConfigurationLoaderImpl) MergeConfig(loaded *domain.StructureRequest, req domain.StructureRequest) domain.StructureRequest {
	merged := req

	if merged.OutputFormat == "" {
		merged.OutputFormat = loaded.OutputFormat
	}
	if merged.OutputPath == "" {
		merged.OutputPath = loaded.OutputPath
	}
	if merged.SortBy == "" {
		merged.SortBy = loaded.SortBy
	}
	if merged.ShowUnreachable == nil {
		merged.ShowUnreachable = loaded.ShowUnreachable
	}
	if merged.UseCache == nil {
		merged.UseCache = loaded.UseCache
	}
	if len(merged.IncludePatterns) == 0 {
		merged.IncludePatterns = loaded.IncludePatterns
	}
	if len(merged.ExcludePatterns) == 0 {
		merged.ExcludePatterns = loaded.ExcludePatterns
	}

	return merged
}

// requestFromConfig converts a config file into request defaults
func requestFromConfig(cfg *config.Config) *domain.StructureRequest {
	req := domain.DefaultStructureRequest()

	if cfg.Structure.SortBy != "" {
		req.SortBy = domain.StructureSortCriteria(cfg.Structure.SortBy)
	}
	if cfg.Structure.ShowUnreachable != nil {
		req.ShowUnreachable = cfg.Structure.ShowUnreachable
	}
	if cfg.Structure.UseCache != nil {
		req.UseCache = cfg.Structure.UseCache
	}
	if cfg.Output.Format != "" {
		req.OutputFormat = domain.OutputFormat(cfg.Output.Format)
	}
	if cfg.Output.Path != "" {
		req.OutputPath = cfg.Output.Path
	}
	if cfg.Input.Recursive != nil {
		req.Recursive = *cfg.Input.Recursive
	}
	if len(cfg.Input.IncludePatterns) > 0 {
		req.IncludePatterns = cfg.Input.IncludePatterns
	}
	if len(cfg.Input.ExcludePatterns) > 0 {
		req.ExcludePatterns = cfg.Input.ExcludePatterns
	}

	return req
}
