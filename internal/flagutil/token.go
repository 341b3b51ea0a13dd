package flagutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// TokenOptions holds the endpoint and credentials of an API
type TokenOptions struct {
	name            string
	envVar          string
	defaultEndpoint string

	Endpoint  string
	TokenFile string
}

// NewTokenOptions creates options whose flags are prefixed with name. The token is read
// from the token file when one is given, from the envVar environment variable otherwise.
func NewTokenOptions(name, envVar, defaultEndpoint string) TokenOptions {
	return TokenOptions{
		name:            name,
		envVar:          envVar,
		defaultEndpoint: defaultEndpoint,
	}
}

// AddPFlags injects the options into the given pflag.FlagSet
func (o *TokenOptions) AddPFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Endpoint, o.name+".endpoint", o.defaultEndpoint, fmt.Sprintf("%s API endpoint URL", o.name))
	fs.StringVar(&o.TokenFile, o.name+".token-file", "", fmt.Sprintf("Path to the file containing the %s token (default: $%s)", o.name, o.envVar))
}

// Token resolves the token once. An empty token is returned as-is when neither
// the token file nor the environment variable is set.
func (o *TokenOptions) Token() (string, error) {
	if o.TokenFile != "" {
		data, err := os.ReadFile(o.TokenFile)
		if err != nil {
			return "", fmt.Errorf("cannot read %s token file: %w", o.name, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return strings.TrimSpace(os.Getenv(o.envVar)), nil
}

// RequiredToken is Token but fails when no token is configured
func (o *TokenOptions) RequiredToken() (string, error) {
	token, err := o.Token()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", fmt.Errorf("%s token must be provided with --%s.token-file or $%s", o.name, o.name, o.envVar)
	}
	return token, nil
}
