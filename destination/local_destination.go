package destination

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const LocalDestinationIdentifier = "local"

// LocalDestination writes files under a local directory
type LocalDestination struct {
	Root string
}

func NewLocalDestination(root string) (*LocalDestination, error) {
	expanded, err := homedir.Expand(root)
	if err != nil {
		return nil, fmt.Errorf("invalid output root '%s': %w", root, err)
	}
	return &LocalDestination{Root: expanded}, nil
}

func (d *LocalDestination) Identifier() string {
	return LocalDestinationIdentifier
}

func (d *LocalDestination) Location(relPath string) string {
	return filepath.Join(d.Root, filepath.FromSlash(relPath))
}

func (d *LocalDestination) Create(_ context.Context, relPath string) (io.WriteCloser, error) {
	p := d.Location(relPath)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for file, %w", err)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create file, %w", err)
	}
	return f, nil
}

func (d *LocalDestination) Close() error {
	return nil
}
