// Package profile reads and writes named profiles of the shared AWS credentials file.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

const (
	keyAccessKey = "aws_access_key_id"
	keySecretKey = "aws_secret_access_key"
	keyRegion    = "region"
)

// ErrProfileNotFound ...
var ErrProfileNotFound = errors.New("credentials profile not found")

// Profile ...
type Profile struct {
	Name      string
	AccessKey string
	SecretKey string
	Region    string
}

// DefaultCredentialsFile follows the SDK lookup: AWS_SHARED_CREDENTIALS_FILE, then ~/.aws/credentials.
func DefaultCredentialsFile() (string, error) {
	if path := os.Getenv("AWS_SHARED_CREDENTIALS_FILE"); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".aws", "credentials"), nil
}

// WriteProfile creates the profile or replaces its keys. Other profiles are kept.
func WriteProfile(path, name, accessKey, secretKey string) error {
	if name == "" {
		return errors.New("profile name is empty")
	}
	file, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	section := file.Section(name)
	section.Key(keyAccessKey).SetValue(accessKey)
	section.Key(keySecretKey).SetValue(secretKey)
	return save(file, path)
}

// AddRegion sets the region of an existing profile.
func AddRegion(path, name, region string) error {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	section, err := file.GetSection(name)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	section.Key(keyRegion).SetValue(region)
	return save(file, path)
}

// Load ...
func Load(path, name string) (*Profile, error) {
	file, err := ini.LooseLoad(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	section, err := file.GetSection(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return &Profile{
		Name:      name,
		AccessKey: section.Key(keyAccessKey).String(),
		SecretKey: section.Key(keySecretKey).String(),
		Region:    section.Key(keyRegion).String(),
	}, nil
}

func save(file *ini.File, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	out, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := file.WriteTo(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
