package types

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGcs  = "gs"
)

// Location is an input or output root, either a local directory or a bucket prefix
type Location struct {
	Scheme string
	// Bucket is empty for local locations
	Bucket string
	// Path is the local directory, or the object key prefix (without leading or trailing slash)
	Path string
}

// ParseLocation parses a location of the form s3://bucket/prefix, gs://bucket/prefix,
// file:///dir or a plain local path
func ParseLocation(s string) (Location, error) {
	if s == "" {
		return Location{}, fmt.Errorf("location must not be empty")
	}
	if !strings.Contains(s, "://") {
		return Location{Scheme: SchemeFile, Path: filepath.Clean(s)}, nil
	}

	u, err := url.Parse(s)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location '%s': %w", s, err)
	}
	switch u.Scheme {
	case SchemeFile:
		return Location{Scheme: SchemeFile, Path: filepath.Clean(u.Host + u.Path)}, nil
	case SchemeS3, SchemeGcs, "gcs":
		if u.Host == "" {
			return Location{}, fmt.Errorf("location '%s' does not specify a bucket", s)
		}
		scheme := u.Scheme
		if scheme == "gcs" {
			scheme = SchemeGcs
		}
		return Location{Scheme: scheme, Bucket: u.Host, Path: strings.Trim(u.Path, "/")}, nil
	default:
		return Location{}, fmt.Errorf("unsupported location scheme '%s'", u.Scheme)
	}
}

func (l Location) IsLocal() bool {
	return l.Scheme == SchemeFile || l.Scheme == ""
}

// Join returns the location of a path relative to this location.
// Elements use forward slashes regardless of platform
func (l Location) Join(elem ...string) string {
	if l.IsLocal() {
		parts := append([]string{l.Path}, elem...)
		return filepath.Join(parts...)
	}
	return path.Join(append([]string{l.Path}, elem...)...)
}

func (l Location) String() string {
	if l.IsLocal() {
		return l.Path
	}
	if l.Path == "" {
		return fmt.Sprintf("%s://%s", l.Scheme, l.Bucket)
	}
	return fmt.Sprintf("%s://%s/%s", l.Scheme, l.Bucket, l.Path)
}
