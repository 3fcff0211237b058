package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	for _, env := range []string{"stb", "prp", "prod"} {
		_, err := c.Env(env)
		assert.NoError(t, err, env)
	}
	assert.NotEmpty(t, c.Selectors.OTP)
	assert.NotEmpty(t, c.Selectors.Submit)
	assert.NotEmpty(t, c.Keywords.Error)
}

func TestEnv_DefaultsToStb(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	stb, err := c.Env("")
	require.NoError(t, err)
	assert.Equal(t, c.Environments["stb"], stb)

	_, err = c.Env("qa")
	assert.Error(t, err)
}

func TestMerchantResultURL(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	u, err := c.MerchantResultURL("prod", "S 1")
	require.NoError(t, err)
	assert.Equal(t, "https://api.paymentgateway.com.tr/paymentmanagement/v1/threeds/result?threeDSessionId=S+1", u)
}

func TestCallbackURL(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, "http://n8n:5678/webhook/3ds-result", c.CallbackURL("http://n8n:5678/"))
}

func TestLoad_OverrideReplacesSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
selectors:
  otp: ["#bankOtp"]
environments:
  stb:
    bankHost: https://acs.testbank.local
    merchantHost: https://merchant.testbank.local
`), 0o600))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"#bankOtp"}, c.Selectors.OTP)
	assert.NotEmpty(t, c.Selectors.Submit)
	assert.Equal(t, "https://acs.testbank.local", c.Environments["stb"].BankHost)
	assert.Contains(t, c.Environments, "prod")
}

func TestLoad_RejectsBadHost(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
environments:
  stb:
    bankHost: not a url
    merchantHost: https://merchant.local
`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
