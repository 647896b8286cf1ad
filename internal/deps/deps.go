package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program mclocale may invoke.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
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
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// UnpackRequirement describes the external unpack tool configured as an
// argv template. An empty template yields an optional, unconfigured entry.
func UnpackRequirement(argv []string) Requirement {
	req := Requirement{
		Name:        "Unpack tool",
		Description: "Unpacks GDK packages before extraction",
		Optional:    true,
	}
	if len(argv) > 0 {
		req.Command = argv[0]
		req.Optional = false
	}
	return req
}
