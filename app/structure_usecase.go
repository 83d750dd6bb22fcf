package app

import (
	"context"
	"io"

	"github.com/scopeflow/scopeflow/domain"
)

// StructureUseCase orchestrates the block-structure analysis workflow
type StructureUseCase struct {
	service      domain.StructureService
	fileReader   domain.FileReader
	formatter    domain.StructureFormatter
	configLoader domain.StructureConfigurationLoader
	progress     domain.ProgressReporter
	reportWriter domain.ReportWriter
}

// NewStructureUseCase creates a new structure use case
func NewStructureUseCase(
	service domain.StructureService,
	fileReader domain.FileReader,
	formatter domain.StructureFormatter,
	configLoader domain.StructureConfigurationLoader,
	progress domain.ProgressReporter,
) *StructureUseCase {
	return &StructureUseCase{
		service:      service,
		fileReader:   fileReader,
		formatter:    formatter,
		configLoader: configLoader,
		progress:     progress,
	}
}

// Execute performs the complete structure analysis workflow
func (uc *StructureUseCase) Execute(ctx context.Context, req domain.StructureRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return domain.NewConfigError("failed to load configuration", err)
	}

	files, err := uc.fileReader.CollectCFGFiles(
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
	)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return domain.NewInvalidInputError("no CFG documents found in the specified paths", nil)
	}

	if uc.progress != nil {
		uc.progress.StartProgress(len(files))
		defer uc.progress.FinishProgress()
	}

	finalReq.Paths = files

	response, err := uc.service.Analyze(ctx, finalReq)
	if err != nil {
		return err
	}
	if uc.progress != nil {
		uc.progress.UpdateProgress(len(files))
	}

	if uc.reportWriter != nil && finalReq.OutputPath != "" {
		return uc.reportWriter.Write(finalReq.OutputWriter, finalReq.OutputPath, finalReq.OutputFormat, func(w io.Writer) error {
			return uc.formatter.Write(response, finalReq.OutputFormat, w)
		})
	}
	return uc.formatter.Write(response, finalReq.OutputFormat, finalReq.OutputWriter)
}

// SetReportWriter attaches a report writer used when the request names an
// output path
func (uc *StructureUseCase) SetReportWriter(rw domain.ReportWriter) {
	uc.reportWriter = rw
}

// AnalyzeAndReturn runs the analysis and returns the response instead of
// writing it, for callers that post-process results (e.g. the MCP server)
func (uc *StructureUseCase) AnalyzeAndReturn(ctx context.Context, req domain.StructureRequest) (*domain.StructureResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration", err)
	}

	files, err := uc.fileReader.CollectCFGFiles(
		finalReq.Paths,
		finalReq.Recursive,
		finalReq.IncludePatterns,
		finalReq.ExcludePatterns,
	)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, domain.NewInvalidInputError("no CFG documents found in the specified paths", nil)
	}

	finalReq.Paths = files
	return uc.service.Analyze(ctx, finalReq)
}

// loadAndMergeConfig applies file configuration under the request values
func (uc *StructureUseCase) loadAndMergeConfig(req domain.StructureRequest) (domain.StructureRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	var loaded *domain.StructureRequest
	if req.ConfigPath != "" {
		var err error
		loaded, err = uc.configLoader.LoadConfig(req.ConfigPath)
		if err != nil {
			return req, err
		}
	} else {
		loaded = uc.configLoader.LoadDefaultConfig()
	}

	return uc.configLoader.MergeConfig(loaded, req), nil
}
