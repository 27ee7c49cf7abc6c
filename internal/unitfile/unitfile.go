// Package unitfile renders, backs up and writes unit files for new services.
package unitfile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atomicstack/unit-control/internal/action"
)

// Template is the unit file written for new services. {desc} and
// {working_dir} become "#" when the matching field was omitted.
const Template = `[Unit]
{desc}Description={description}
After=network.target
#Requires=postgresql.service

[Service]
Type=simple
User=root
{working_dir}WorkingDirectory={working_directory}
ExecStart={exec_start}
Restart=on-failure
RestartSec=5
#Environment=PORT={port}
#Environment=NODE_ENV=production

[Install]
WantedBy=multi-user.target
`

// Render fills Template from spec.
func Render(spec action.ServiceSpec) string {
	desc, descToggle := optional(spec.Description)
	dir, dirToggle := optional(spec.WorkingDir)
	r := strings.NewReplacer(
		"{description}", desc,
		"{working_directory}", dir,
		"{working_dir}", dirToggle,
		"{exec_start}", spec.ExecStart,
		"{desc}", descToggle,
	)
	return r.Replace(Template)
}

func optional(v *string) (value, toggle string) {
	if v == nil {
		return "", "#"
	}
	return *v, ""
}

// Path returns where the unit file for name lives inside dir.
func Path(dir, name string) string {
	name = strings.TrimSpace(name)
	if !strings.HasSuffix(name, ".service") {
		name += ".service"
	}
	return filepath.Join(dir, name)
}

// Exists reports whether path is present.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Backup copies path to path+".bak", preserving permission bits. The
// original is only read.
func Backup(path string) (string, error) {
	bak := path + ".bak"
	src, err := os.Open(path)
	if err != nil {
		return bak, fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()
	info, err := src.Stat()
	if err != nil {
		return bak, fmt.Errorf("stat %s: %w", path, err)
	}
	dst, err := os.OpenFile(bak, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return bak, fmt.Errorf("create %s: %w", bak, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return bak, fmt.Errorf("copy to %s: %w", bak, err)
	}
	if err := dst.Close(); err != nil {
		return bak, fmt.Errorf("close %s: %w", bak, err)
	}
	return bak, nil
}

// Write stores contents at path.
func Write(path, contents string) error {
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadOrEmpty returns the file contents, or "" when the file cannot be read.
// The error is returned for logging only.
func ReadOrEmpty(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
