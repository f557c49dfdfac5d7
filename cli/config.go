package cli

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/kneelab/femurtrack/config"
)

// ConfigSchemaAction prints the JSON schema of the config file.
func ConfigSchemaAction(c *cli.Context) error {
	schema, err := config.SchemaJSON()
	if err != nil {
		return errors.Wrap(err, "cannot build config schema")
	}
	printf(c.App.Writer, "%s", schema)
	return nil
}

// ConfigShowAction prints the config in effect after defaults are applied.
func ConfigShowAction(c *cli.Context) error {
	ac, err := newActionContext(c)
	if err != nil {
		return err
	}
	defer ac.close()
	resolved, err := json.MarshalIndent(ac.cfg, "", "  ")
	if err != nil {
		return errors.Wrap(err, "cannot marshal config")
	}
	printf(ac.out, "%s", resolved)
	return nil
}
