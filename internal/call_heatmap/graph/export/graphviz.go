package export

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func WriteDOT(path, dot string) error {
	return os.WriteFile(path, []byte(dot), 0644)
}

// DotTo converts a DOT file with graphviz. dotBin defaults to "dot" on PATH.
func DotTo(pathDOT, outPath, format, dotBin string) error {
	if format == "" {
		format = "svg"
	}
	if dotBin == "" {
		dotBin = "dot"
	}
	bin, err := exec.LookPath(dotBin)
	if err != nil {
		return fmt.Errorf("graphviz: dot binary not found (%q): %w", dotBin, err)
	}

	var stderr bytes.Buffer
	cmd := exec.Command(bin, "-T"+format, pathDOT, "-o", outPath)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("graphviz: %w: %s", err, msg)
		}
		return fmt.Errorf("graphviz: %w", err)
	}
	return nil
}
