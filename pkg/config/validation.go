package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/marmos91/dittodrive/pkg/drive"
	"github.com/marmos91/dittodrive/pkg/drive/store"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// getValidator returns the shared validator with the "perms" tag
// registered. Tagged strings must parse as a permission pair.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("perms", func(fl validator.FieldLevel) bool {
			_, err := drive.ParsePermissions(fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Validate checks struct tags first, then the rules that span fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("configuration is nil")
	}

	if err := getValidator().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return formatValidationErrors(verrs)
		}
		return err
	}

	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	switch cfg.Store.Type {
	case store.TypeBadger:
		if cfg.Store.Badger.Path == "" {
			return errors.New("store.badger.path is required for the badger store")
		}
	case store.TypeS3:
		if cfg.Store.S3.Bucket == "" {
			return errors.New("store.s3.bucket is required for the s3 store")
		}
		if (cfg.Store.S3.AccessKeyID == "") != (cfg.Store.S3.SecretAccessKey == "") {
			return errors.New("store.s3.access_key_id and store.s3.secret_access_key must be set together")
		}
	}

	if cfg.Telemetry.Enabled && cfg.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}

	if cfg.Drive.RootName != "/" {
		if err := drive.ValidateName(cfg.Drive.RootName); err != nil {
			return fmt.Errorf("drive.root_name: %w", err)
		}
	}

	return nil
}

// formatValidationErrors renders every failed field as
// "<Namespace>: failed '<tag>' validation".
func formatValidationErrors(verrs validator.ValidationErrors) error {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s: failed '%s' validation", fe.Namespace(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return errors.New(strings.Join(msgs, "; "))
}
