package bedrock

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"mclocale/internal/logging"
	"mclocale/internal/services"
)

// Unpacker turns an encrypted container into a plain directory tree.
type Unpacker interface {
	Unpack(ctx context.Context, input, output string) error
}

// CommandUnpacker runs a configured command line. The placeholders {input}
// and {output} are replaced in every argument.
type CommandUnpacker struct {
	argv   []string
	logger *slog.Logger
}

// NewCommandUnpacker wraps argv. An empty argv yields an unpacker that
// reports a configuration error when used.
func NewCommandUnpacker(argv []string, logger *slog.Logger) *CommandUnpacker {
	return &CommandUnpacker{
		argv:   append([]string(nil), argv...),
		logger: logging.NewComponentLogger(logger, "unpack"),
	}
}

// Unpack runs the command and waits for it to exit.
func (u *CommandUnpacker) Unpack(ctx context.Context, input, output string) error {
	if u == nil || len(u.argv) == 0 || strings.TrimSpace(u.argv[0]) == "" {
		return services.Wrap(services.ErrConfiguration, "unpack", filepath.Base(input),
			"bedrock.unpack_command is not configured", nil)
	}
	replacer := strings.NewReplacer("{input}", input, "{output}", output)
	args := make([]string, 0, len(u.argv)-1)
	for _, arg := range u.argv[1:] {
		args = append(args, replacer.Replace(arg))
	}

	logger := logging.WithContext(ctx, u.logger)
	logger.Info("unpacking package",
		logging.String("command", u.argv[0]),
		logging.String("input", input),
		logging.String("output", output),
		logging.String(logging.FieldEventType, "unpack_start"),
	)
	cmd := exec.CommandContext(ctx, u.argv[0], args...) //nolint:gosec
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	scanner := bufio.NewScanner(bytes.NewReader(out.Bytes()))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			logger.Debug("unpack output", logging.String("line", line))
		}
	}
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "unpack", filepath.Base(input), lastLine(out.Bytes()), err)
	}
	return nil
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
