package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/mohamedkhairy/market-scanner/internal/scanner"
	"github.com/mohamedkhairy/market-scanner/pkg/logger"
)

var csvHeader = []string{"code", "name", "total_score", "change_pct", "volume_ratio", "close", "details"}

// WriteCSV renders a ranked report as CSV. The details column carries the
// per-dimension score breakdown as a JSON blob for auditability.
func WriteCSV(w io.Writer, report *scanner.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range report.Rows {
		details, err := json.Marshal(row.Score.Dimensions)
		if err != nil {
			return fmt.Errorf("marshal details for %s: %w", row.Code, err)
		}
		record := []string{
			row.Code,
			row.Name,
			strconv.Itoa(row.Score.Total),
			strconv.FormatFloat(row.Snapshot.Indicators.ChangePct, 'f', 2, 64),
			strconv.FormatFloat(row.Snapshot.Indicators.VolumeRatio, 'f', 2, 64),
			strconv.FormatFloat(row.Snapshot.Bar.Close, 'f', 2, 64),
			string(details),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Code, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCSV writes the report under dir as scan_<date>.csv and returns the
// full path.
func SaveCSV(dir string, report *scanner.Report) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("scan_%s.csv", report.Date))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteCSV(f, report); err != nil {
		return "", err
	}

	logger.Info("scan report written",
		logger.String("path", path),
		logger.Int("rows", len(report.Rows)))
	return path, nil
}
