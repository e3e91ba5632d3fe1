// Package diag creates a support bundle: a ZIP archive with the daemon
// log, the latest status snapshot, the effective configuration and host
// facts, plus a manifest with per-file checksums.
package diag

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"loadwatch/internal/config"
	"loadwatch/internal/logging"
	"loadwatch/internal/metrics"
)

// Manifest describes the contents of a support bundle
type Manifest struct {
	Timestamp string         `json:"timestamp"`
	Host      string         `json:"host"`
	Version   string         `json:"version"`
	Files     []ManifestFile `json:"files"`
}

// ManifestFile represents a file in the support bundle
type ManifestFile struct {
	Path      string `json:"path"`
	SizeBytes int64  `json:"size_bytes"`
	SHA256    string `json:"sha256"`
}

// hostFacts is the sysinfo.json payload
type hostFacts struct {
	PhysicalCores int     `json:"physical_cores"`
	Threshold     float64 `json:"threshold"`
	Ratio         float64 `json:"threshold_ratio"`
	Interval      int     `json:"check_interval_seconds"`
	Required      int     `json:"consecutive_checks_required"`
}

// Packager collects artifacts and writes the bundle
type Packager struct {
	cfg     config.Config
	version string
	logger  *logging.Logger
}

// NewPackager creates a new support bundle packager
func NewPackager(cfg config.Config, version string, logger *logging.Logger) *Packager {
	return &Packager{
		cfg:     cfg,
		version: version,
		logger:  logger,
	}
}

// DefaultOutputPath returns a timestamped bundle filename
func DefaultOutputPath() string {
	return "loadwatch-diag-" + time.Now().UTC().Format("20060102-150405") + ".zip"
}

// CreateBundle collects all artifacts and writes the ZIP to outputPath.
// Missing artifacts are skipped with a warning; the bundle is written with
// whatever could be collected.
func (p *Packager) CreateBundle(outputPath string) error {
	files := p.collect()

	manifest := Manifest{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   p.version,
		Files:     make([]ManifestFile, 0, len(files)),
	}
	if host, err := os.Hostname(); err == nil {
		manifest.Host = host
	}

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		sum := sha256.Sum256(files[path])
		manifest.Files = append(manifest.Files, ManifestFile{
			Path:      path,
			SizeBytes: int64(len(files[path])),
			SHA256:    hex.EncodeToString(sum[:]),
		})
	}

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}
	files["manifest.json"] = manifestJSON

	if err := writeZip(outputPath, files); err != nil {
		return err
	}

	p.logger.Info("Support bundle written", map[string]interface{}{
		"output": outputPath,
		"files":  len(files),
	})

	return nil
}

// collect gathers every artifact that is available
func (p *Packager) collect() map[string][]byte {
	files := make(map[string][]byte)

	if data, err := os.ReadFile(p.cfg.LogFilePath); err == nil {
		files["loadwatch.log"] = data
	} else {
		p.logger.Warn("Log file not collected", map[string]interface{}{
			"path":  p.cfg.LogFilePath,
			"error": err.Error(),
		})
	}

	if data, err := os.ReadFile(p.cfg.StatusFilePath()); err == nil {
		files["status.json"] = data
	} else {
		p.logger.Warn("Status snapshot not collected", map[string]interface{}{
			"path":  p.cfg.StatusFilePath(),
			"error": err.Error(),
		})
	}

	if data, err := json.MarshalIndent(p.cfg, "", "  "); err == nil {
		files["config.json"] = data
	}

	facts := hostFacts{
		Ratio:    p.cfg.LoadThresholdRatio,
		Interval: p.cfg.CheckIntervalSeconds,
		Required: p.cfg.ConsecutiveChecksRequired,
	}
	if cores, err := metrics.ResolvePhysicalCores(p.logger); err == nil {
		facts.PhysicalCores = cores
		facts.Threshold = p.cfg.LoadThresholdRatio * float64(cores)
	} else {
		p.logger.Warn("CPU topology not collected", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if data, err := json.MarshalIndent(facts, "", "  "); err == nil {
		files["sysinfo.json"] = data
	}

	return files
}

// writeZip writes the collected files into a ZIP archive
func writeZip(outputPath string, files map[string][]byte) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create bundle: %w", err)
	}
	defer out.Close()

	w := zip.NewWriter(out)

	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		f, err := w.Create(path)
		if err != nil {
			return fmt.Errorf("failed to add %s to bundle: %w", path, err)
		}
		if _, err := f.Write(files[path]); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize bundle: %w", err)
	}

	return nil
}
