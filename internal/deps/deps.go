package deps

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"bookdetector/internal/config"
)

// Requirement defines an external program bookdetector relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// Requirements lists the external programs the configuration points at.
// The tesseract CLI is only required when it is the configured OCR engine.
func Requirements(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{
			Name:        "Tesseract",
			Command:     cfg.OCR.Binary,
			Description: "Recognizes cover text",
			Optional:    cfg.OCR.Engine != config.OCREngineTesseract,
		},
		{
			Name:        "FFmpeg",
			Command:     cfg.Camera.FFmpegBinary,
			Description: "Captures camera frames for scan",
			Optional:    true,
		},
		{
			Name:        "pdftoppm",
			Command:     cfg.Preview.PdftoppmBinary,
			Description: "Renders PDF first-page thumbnails",
			Optional:    true,
		},
	}
	if opener := DefaultOpener(cfg.Preview.Opener); opener != "" {
		reqs = append(reqs, Requirement{
			Name:        "Opener",
			Command:     opener,
			Description: "Opens matched books",
			Optional:    true,
		})
	}
	return reqs
}

// DefaultOpener returns configured when set, otherwise the platform's file
// opener. Windows uses the cmd builtin start, which is not a binary and
// yields "".
func DefaultOpener(configured string) string {
	if opener := strings.TrimSpace(configured); opener != "" {
		return opener
	}
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "windows":
		return ""
	default:
		return "xdg-open"
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}
