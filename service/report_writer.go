package service

import (
	"fmt"
	"io"
	"os"

	"github.com/scopeflow/scopeflow/domain"
)

// ReportWriterImpl implements the ReportWriter interface
type ReportWriterImpl struct{}

// NewReportWriter creates a new report writer service
func NewReportWriter() *ReportWriterImpl {
	return &ReportWriterImpl{}
}

// Write writes formatted content to the given path, or to the writer when
// no path is set
func (rw *ReportWriterImpl) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	if outputPath == "" {
		return writeFunc(writer)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create output file %s", outputPath), err)
	}
	defer f.Close()

	if err := writeFunc(f); err != nil {
		return err
	}

	if writer != nil {
		fmt.Fprintf(writer, "Report written to %s\n", outputPath)
	}
	return nil
}
