package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"bookdetector/internal/config"
	"bookdetector/internal/deps"
)

type statusReport struct {
	ConfigPath    string        `json:"config_path"`
	ConfigExists  bool          `json:"config_exists"`
	CachePath     string        `json:"cache_path"`
	CacheExists   bool          `json:"cache_exists"`
	Folders       []folderState `json:"folders"`
	OCREngine     string        `json:"ocr_engine"`
	OCRLanguages  *deps.Status  `json:"ocr_languages,omitempty"`
	History       string        `json:"history"`
	Dependencies  []deps.Status `json:"dependencies"`
	ConfiguredCam string        `json:"camera_device,omitempty"`
}

type folderState struct {
	Path   string `json:"path"`
	Exists bool   `json:"exists"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report configuration, catalog folders and external dependencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := buildStatusReport(cmd, ctx, cfg)
			if jsonOutput {
				return writeJSON(cmd, report)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			cfgKind, cfgMsg := statusOK, report.ConfigPath
			if !report.ConfigExists {
				cfgKind, cfgMsg = statusInfo, "defaults (no file at "+report.ConfigPath+")"
			}
			lines = append(lines, renderStatusLine("Config", cfgKind, cfgMsg, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Catalog", colorize)...)
			for _, folder := range report.Folders {
				if folder.Exists {
					lines = append(lines, renderStatusLine("Folder", statusOK, folder.Path, colorize))
				} else {
					lines = append(lines, renderStatusLine("Folder", statusWarn, folder.Path+" (missing, skipped)", colorize))
				}
			}
			if report.CacheExists {
				lines = append(lines, renderStatusLine("Cache", statusOK, report.CachePath, colorize))
			} else {
				lines = append(lines, renderStatusLine("Cache", statusInfo, report.CachePath+" (built on first use)", colorize))
			}
			lines = append(lines, renderStatusLine("History", statusInfo, report.History, colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			lines = append(lines, dependencyLines(report.Dependencies, colorize)...)
			if report.OCRLanguages != nil {
				lang := *report.OCRLanguages
				if lang.Available {
					lines = append(lines, renderStatusLine("OCR languages", statusOK, lang.Description, colorize))
				} else {
					lines = append(lines, renderStatusLine("OCR languages", statusWarn, lang.Detail, colorize))
				}
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func buildStatusReport(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) statusReport {
	report := statusReport{
		ConfigPath:    ctx.configPath,
		ConfigExists:  ctx.configSeen,
		CachePath:     cfg.Catalog.CachePath,
		CacheExists:   fileExists(cfg.Catalog.CachePath),
		OCREngine:     cfg.OCR.Engine,
		Dependencies:  deps.CheckBinaries(deps.Requirements(cfg)),
		ConfiguredCam: cfg.Camera.Device,
		History:       "disabled",
	}
	if cfg.History.Enabled {
		report.History = cfg.History.Path
	}
	for _, folder := range cfg.Catalog.Folders {
		info, err := os.Stat(folder)
		report.Folders = append(report.Folders, folderState{Path: folder, Exists: err == nil && info.IsDir()})
	}
	if cfg.OCR.Engine == config.OCREngineTesseract {
		for _, dep := range report.Dependencies {
			if dep.Name == "Tesseract" && dep.Available {
				lang := deps.CheckTesseractLanguages(commandCtx(cmd), cfg.OCR.Binary, cfg.OCR.Languages)
				report.OCRLanguages = &lang
			}
		}
	}
	return report
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
