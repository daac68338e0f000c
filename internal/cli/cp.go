package cli

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/wharfhq/wharfd/internal/client"
)

// Represents the 'wharfd cp' command.
type CpCmd struct {
	Container string `arg:"" help:"Container ID."`
	Path      string `arg:"" help:"Absolute path inside the container."`
	Dest      string `arg:"" optional:"" default:"." help:"Destination directory on the host." type:"path"`
}

// Executes the cp command.
//
// The daemon archives the path inside the container; the archive is
// extracted into the destination directory. Meant for configuration files
// and small artifacts, not bulk export.
func (c *CpCmd) Run(ctx context.Context) error {
	result, err := client.New(RootCmd.Socket).Copy(c.Container, c.Path)
	if err != nil {
		return err
	}

	if err := extractArchive(bytes.NewReader(result.Archive), c.Dest); err != nil {
		return err
	}

	slog.Info("copied from container", "container", c.Container, "path", c.Path, "dest", c.Dest)
	return nil
}

// Extracts a tar stream into dest.
//
// Entry names are cleaned against the destination root, so an archive cannot
// write outside dest. Regular files and directories are extracted; other
// entry types are skipped.
func extractArchive(r io.Reader, dest string) error {
	tr := tar.NewReader(r)

	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading archive: %w", err)
		}

		target := filepath.Join(dest, filepath.Clean("/"+hdr.Name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(hdr.Mode).Perm()); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(hdr.Mode).Perm())
			if err != nil {
				return err
			}
			if _, err := io.Copy(f, tr); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
	}
}
