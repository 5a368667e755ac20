package report

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fxlab-research/fxlab/internal/backtest"
	"github.com/fxlab-research/fxlab/internal/logger"
	"github.com/fxlab-research/fxlab/internal/types"
	"github.com/fxlab-research/fxlab/internal/validation"
	"github.com/fxlab-research/fxlab/internal/version"
	"github.com/fxlab-research/fxlab/pkg/errors"
)

// Format selects the columnar encoding of the exported ledger artifacts.
type Format string

const (
	FormatParquet Format = "parquet"
	FormatCSV     Format = "csv"
)

// Writer persists a finished walk-forward run: one directory per run ID
// holding report.yaml plus a subdirectory of ledger artifacts per fold.
type Writer struct {
	logger *logger.Logger
	format Format
}

// NewWriter creates a writer exporting ledger artifacts in the given format.
func NewWriter(log *logger.Logger, format Format) (*Writer, error) {
	switch format {
	case FormatParquet, FormatCSV:
		return &Writer{logger: log, format: format}, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown export format: %s", format)
	}
}

// Write lays the run down under baseDir and returns the run directory. The
// report is written last, so a report.yaml on disk always references
// complete artifacts.
func (w *Writer) Write(baseDir string, result *validation.Result) (string, error) {
	runDir := filepath.Join(baseDir, result.Report.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create run directory %s", runDir)
	}

	report := result.Report

	for _, artifact := range result.Artifacts {
		if artifact == nil {
			continue
		}

		foldDir := filepath.Join(runDir, fmt.Sprintf("fold_%03d", artifact.Fold))

		if err := w.exportFold(foldDir, artifact); err != nil {
			return "", err
		}

		report.LedgerFilePaths = append(report.LedgerFilePaths, foldDir)
	}

	reportPath := filepath.Join(runDir, "report.yaml")
	if err := types.WriteReport(reportPath, report); err != nil {
		return "", errors.Wrap(errors.ErrCodeExportFailed, "failed to write report", err)
	}

	w.logger.Info("Wrote validation run",
		zap.String("dir", runDir),
		zap.Int("folds", len(report.Folds)),
		zap.String("format", string(w.format)),
	)

	return runDir, nil
}

// Read loads a previously written report, rejecting reports written by an
// incompatible schema version.
func Read(path string) (types.ValidationReport, error) {
	loaded, err := types.ReadReport(path)
	if err != nil {
		return types.ValidationReport{}, errors.Wrapf(errors.ErrCodeDataSourceUnreadable, err, "failed to read report %s", path)
	}

	if err := version.CheckSchemaCompatibility(loaded.SchemaVersion, version.ReportSchemaVersion); err != nil {
		return types.ValidationReport{}, errors.Wrap(errors.ErrCodeInvalidVersion, "incompatible report schema", err)
	}

	return loaded, nil
}

func (w *Writer) exportFold(dir string, artifact *validation.FoldArtifact) error {
	exporter, err := backtest.NewLedgerExporter(w.logger)
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.Load(artifact.Ledger, artifact.EquityCurve); err != nil {
		return err
	}

	if w.format == FormatCSV {
		return exporter.WriteCSV(dir)
	}

	return exporter.WriteParquet(dir)
}
