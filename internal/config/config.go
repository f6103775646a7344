// Package config reads the process configuration once at startup.
package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parameter names looked up under PARAM_PREFIX.
const (
	paramAdminGroups = "admin_groups"
	paramEmailTo     = "contact_email_to"
	paramCORSOrigin  = "cors_allowed_origin"
)

// Config is the full runtime configuration.
type Config struct {
	ContentBucket string
	ContactTable  string

	CognitoRegion     string
	CognitoUserPoolID string
	CognitoClientID   string

	ContactEmailFrom string
	ContactEmailTo   string

	CORSAllowedOrigin string

	AdminGroups           []string
	AdminAllowEmptyGroups bool
	AuthDevBypass         bool

	ParamPrefix string
	LogLevel    string
	HTTPAddr    string
	// Lambda is set when running inside AWS Lambda.
	Lambda bool
}

// ParamLookup fetches parameter overrides. *paramstore.Client satisfies it.
type ParamLookup interface {
	Lookup(ctx context.Context, prefix string, names ...string) (map[string]string, error)
}

// Load parses the configuration from getenv, typically os.Getenv.
func Load(getenv func(string) string) (Config, error) {
	lambda := getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
	c := Config{
		ContentBucket:     strings.TrimSpace(getenv("CONTENT_BUCKET")),
		ContactTable:      strings.TrimSpace(getenv("CONTACT_TABLE")),
		CognitoRegion:     firstNonEmpty(getenv("COGNITO_REGION"), getenv("AWS_REGION")),
		CognitoUserPoolID: strings.TrimSpace(getenv("COGNITO_USER_POOL_ID")),
		CognitoClientID:   strings.TrimSpace(getenv("COGNITO_CLIENT_ID")),
		ContactEmailFrom:  strings.TrimSpace(getenv("CONTACT_EMAIL_FROM")),
		ContactEmailTo:    strings.TrimSpace(getenv("CONTACT_EMAIL_TO")),
		CORSAllowedOrigin: firstNonEmpty(getenv("CORS_ALLOWED_ORIGIN"), "*"),
		AdminGroups:       splitList(firstNonEmpty(getenv("ADMIN_GROUPS"), "admin")),
		ParamPrefix:       strings.TrimSpace(getenv("PARAM_PREFIX")),
		LogLevel:          firstNonEmpty(getenv("LOG_LEVEL"), "info"),
		HTTPAddr:          firstNonEmpty(getenv("HTTP_ADDR"), ":8080"),
		Lambda:            lambda,
	}

	var errs []error
	var err error
	if c.AdminAllowEmptyGroups, err = envBool(getenv, "ADMIN_ALLOW_EMPTY_GROUPS", true); err != nil {
		errs = append(errs, err)
	}
	if c.AuthDevBypass, err = envBool(getenv, "AUTH_DEV_BYPASS", false); err != nil {
		errs = append(errs, err)
	}
	// Local runs may fall back to in-memory stores; Lambda never does.
	if lambda {
		if c.ContentBucket == "" {
			errs = append(errs, errors.New("config: CONTENT_BUCKET is required"))
		}
		if c.ContactTable == "" {
			errs = append(errs, errors.New("config: CONTACT_TABLE is required"))
		}
		if c.AuthDevBypass {
			errs = append(errs, errors.New("config: AUTH_DEV_BYPASS is not allowed in Lambda"))
		}
	}
	if (c.CognitoUserPoolID == "") != (c.CognitoClientID == "") {
		errs = append(errs, errors.New("config: COGNITO_USER_POOL_ID and COGNITO_CLIENT_ID must be set together"))
	}
	if c.CognitoUserPoolID != "" && c.CognitoRegion == "" {
		errs = append(errs, errors.New("config: COGNITO_REGION or AWS_REGION is required with a user pool"))
	}
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return c, nil
}

// CognitoConfigured reports whether admin tokens can be verified.
func (c Config) CognitoConfigured() bool {
	return c.CognitoUserPoolID != "" && c.CognitoClientID != ""
}

// EmailConfigured reports whether contact notifications can be sent.
func (c Config) EmailConfigured() bool {
	return c.ContactEmailFrom != "" && c.ContactEmailTo != ""
}

// ApplyOverrides replaces values with the parameters stored under
// ParamPrefix. It does nothing when ParamPrefix is empty.
func (c *Config) ApplyOverrides(ctx context.Context, params ParamLookup) error {
	if c.ParamPrefix == "" || params == nil {
		return nil
	}
	found, err := params.Lookup(ctx, c.ParamPrefix, paramAdminGroups, paramEmailTo, paramCORSOrigin)
	if err != nil {
		return fmt.Errorf("config: overrides: %w", err)
	}
	if v := strings.TrimSpace(found[paramAdminGroups]); v != "" {
		c.AdminGroups = splitList(v)
	}
	if v := strings.TrimSpace(found[paramEmailTo]); v != "" {
		c.ContactEmailTo = v
	}
	if v := strings.TrimSpace(found[paramCORSOrigin]); v != "" {
		c.CORSAllowedOrigin = v
	}
	return nil
}

func envBool(getenv func(string) string, key string, def bool) (bool, error) {
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
