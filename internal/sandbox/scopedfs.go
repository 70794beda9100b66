package sandbox

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir is a filesystem namespace rooted at a host directory. Every path is
// resolved relative to the root and may not leave it, including through
// symlinks.
type Dir struct {
	ns        Namespace
	component string
	root      *os.Root
	report    func(error) error
}

func openDir(component string, ns Namespace, hostPath string, report func(error) error) (*Dir, error) {
	if err := os.MkdirAll(hostPath, 0o750); err != nil {
		return nil, fmt.Errorf("prepare %s namespace: %w", ns, err)
	}
	root, err := os.OpenRoot(hostPath)
	if err != nil {
		return nil, fmt.Errorf("open %s namespace: %w", ns, err)
	}
	return &Dir{ns: ns, component: component, root: root, report: report}, nil
}

// Namespace returns the namespace this directory serves.
func (d *Dir) Namespace() Namespace { return d.ns }

func (d *Dir) check(name string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if !filepath.IsLocal(clean) {
		return "", d.escape(name)
	}
	return clean, nil
}

// wrap turns os.Root containment errors into capability violations.
func (d *Dir) wrap(name string, err error) error {
	if err == nil {
		return nil
	}
	var pe *fs.PathError
	if errors.As(err, &pe) && strings.Contains(pe.Err.Error(), "escapes") {
		return d.escape(name)
	}
	return err
}

func (d *Dir) escape(name string) error {
	err := Violation(d.component, FS(d.ns), fmt.Errorf("%w: %q", ErrPathEscapes, name))
	if d.report != nil {
		return d.report(err)
	}
	return err
}

// ReadFile reads a whole file.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	clean, err := d.check(name)
	if err != nil {
		return nil, err
	}
	f, err := d.root.Open(clean)
	if err != nil {
		return nil, d.wrap(name, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// WriteFile creates or truncates name, creating parent directories.
func (d *Dir) WriteFile(name string, data []byte) error {
	return d.write(name, data, os.O_CREATE|os.O_TRUNC|os.O_WRONLY)
}

// AppendFile appends data to name, creating it if needed.
func (d *Dir) AppendFile(name string, data []byte) error {
	return d.write(name, data, os.O_CREATE|os.O_APPEND|os.O_WRONLY)
}

func (d *Dir) write(name string, data []byte, flag int) error {
	clean, err := d.check(name)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(clean); dir != "." {
		if err := d.MkdirAll(dir); err != nil {
			return err
		}
	}
	f, err := d.root.OpenFile(clean, flag, 0o640)
	if err != nil {
		return d.wrap(name, err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// MkdirAll creates name and any missing parents.
func (d *Dir) MkdirAll(name string) error {
	clean, err := d.check(name)
	if err != nil {
		return err
	}
	current := ""
	for _, part := range strings.Split(clean, string(filepath.Separator)) {
		current = filepath.Join(current, part)
		if err := d.root.Mkdir(current, 0o750); err != nil && !errors.Is(err, fs.ErrExist) {
			return d.wrap(name, err)
		}
	}
	return nil
}

// Stat describes name.
func (d *Dir) Stat(name string) (fs.FileInfo, error) {
	clean, err := d.check(name)
	if err != nil {
		return nil, err
	}
	info, err := d.root.Stat(clean)
	return info, d.wrap(name, err)
}

// Remove deletes a file or empty directory.
func (d *Dir) Remove(name string) error {
	clean, err := d.check(name)
	if err != nil {
		return err
	}
	return d.wrap(name, d.root.Remove(clean))
}

// Close releases the namespace handle.
func (d *Dir) Close() error {
	return d.root.Close()
}
