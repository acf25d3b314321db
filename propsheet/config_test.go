package propsheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		ListenAddr: ":80",
		Smartsheet: SmartsheetConfig{
			Token:   "secret-token",
			SheetID: 42,
		},
		Template: TemplateConfig{
			Path:      "Updated Schedule.xlsx",
			OutputDir: "property_folders",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Smartsheet.Token = ""
	assert.EqualError(t, cfg.Validate(), "smartsheet.token is required")

	cfg = validConfig()
	cfg.Smartsheet.SheetID = 0
	assert.EqualError(t, cfg.Validate(), "smartsheet.sheet_id is required")

	cfg = validConfig()
	cfg.Template.Path = ""
	assert.EqualError(t, cfg.Validate(), "template.path is required")
}

func TestConfig_StringRedactsToken(t *testing.T) {
	cfg := validConfig()
	str := cfg.String()
	assert.NotContains(t, str, "secret-token")
	assert.Contains(t, str, strings.Repeat("*", len("secret-token")))
}
