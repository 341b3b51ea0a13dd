package flagutil

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/spf13/pflag"
	prowflagutil "sigs.k8s.io/prow/pkg/flagutil"
	prowjira "sigs.k8s.io/prow/pkg/jira"

	"github.com/afrojun/zenhub-data-export/internal/config"
)

const (
	tokenFileName string = "jira-token"
)

// JiraOptions configures the optional Jira sink. Prow's options only bind to a
// stdlib FlagSet, so values are collected with pflag and copied over in Client.
type JiraOptions struct {
	Endpoint        string
	BearerTokenFile string
	Project         string
}

// AddPFlags injects Jira options into the given pflag.FlagSet
func (o *JiraOptions) AddPFlags(fs *pflag.FlagSet) {
	defaultTokenPath := filepath.Join(config.MustConfigDir(), tokenFileName)

	fs.StringVar(&o.Endpoint, "jira.endpoint", "", "Jira endpoint URL")
	fs.StringVar(&o.BearerTokenFile, "jira.bearer-token-file", defaultTokenPath, "Path to the file containing the Jira bearer token")
	fs.StringVar(&o.Project, "jira.project", "", "Jira project key; when set, an issue is created in it for every exported row")
}

// Enabled reports whether issues should be created in Jira
func (o *JiraOptions) Enabled() bool {
	return o.Project != ""
}

func (o *JiraOptions) Validate() error {
	if !o.Enabled() {
		return nil
	}
	if o.Endpoint == "" {
		return fmt.Errorf("--jira.endpoint must be specified when --jira.project is set")
	}
	return nil
}

// Client creates a Jira client through prow's Jira options
func (o *JiraOptions) Client() (prowjira.Client, error) {
	var prowOptions prowflagutil.JiraOptions
	goFlags := flag.NewFlagSet("jira", flag.ContinueOnError)
	prowOptions.AddCustomizedFlags(goFlags,
		prowflagutil.JiraDefaultEndpoint(o.Endpoint),
		prowflagutil.JiraDefaultBearerTokenFile(o.BearerTokenFile),
		prowflagutil.JiraNoBasicAuth(),
	)
	if err := goFlags.Parse([]string{}); err != nil { // Parse empty args to set defaults
		return nil, err
	}

	if err := prowOptions.Validate(false); err != nil {
		return nil, fmt.Errorf("invalid Jira options: %w", err)
	}

	client, err := prowOptions.Client()
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}
	return client, nil
}
