package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers build fake secrets at runtime to avoid secret-scanner false positives.
func fakeCredential() string { return "0123456789abcdef" + "0123456789abcdef" }
func fakePassword() string   { return "testonly" + "password123" }

func fakePrivateKeyPEM(sep string) string {
	return "-----BEGIN " + "PRIVATE KEY-----" + sep +
		"MIIEvQIBADANBgkqhkiG9w0BAQEFAASCBKcwggSjAgEAAoIBAQC7" + sep +
		"-----END " + "PRIVATE KEY-----"
}

func fakePublicKeyPEM() string {
	return "-----BEGIN PUBLIC KEY-----\nMIIBIjANBgkqhkiG9w0BAQEFAAOCAQ8AMIIBCgKCAQEAu\n-----END PUBLIC KEY-----"
}

func TestFilterSensitiveValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "hdparm set pass",
			input:    "hdparm --user-master u --security-set-pass " + fakeCredential() + " /dev/sda",
			expected: "hdparm --user-master u --security-set-pass [REDACTED] /dev/sda",
		},
		{
			name:     "hdparm erase",
			input:    "hdparm --user-master u --security-erase " + fakeCredential() + " /dev/sdb",
			expected: "hdparm --user-master u --security-erase [REDACTED] /dev/sdb",
		},
		{
			name:     "hdparm enhanced erase",
			input:    "--security-erase-enhanced " + fakeCredential(),
			expected: "--security-erase-enhanced [REDACTED]",
		},
		{
			name:     "pem private key",
			input:    "key=" + fakePrivateKeyPEM("\n") + " loaded",
			expected: "key=[REDACTED] loaded",
		},
		{
			name:     "json escaped pem private key",
			input:    `{"key":"` + fakePrivateKeyPEM(`\n`) + `"}`,
			expected: `{"key":"[REDACTED]"}`,
		},
		{
			name:     "rsa private key header without footer",
			input:    "-----BEGIN RSA " + "PRIVATE KEY-----MIIEpAIBAAKCAQEA",
			expected: "[REDACTED]",
		},
		{
			name:     "password assignment",
			input:    "password=" + fakePassword(),
			expected: "password=[REDACTED]",
		},
		{
			name:     "public key untouched",
			input:    fakePublicKeyPEM(),
			expected: fakePublicKeyPEM(),
		},
		{
			name:     "device path untouched",
			input:    "overwrite /dev/sda pass 1/3",
			expected: "overwrite /dev/sda pass 1/3",
		},
		{
			name:     "report id untouched",
			input:    "stored WIPE-SN123-1700000000.json",
			expected: "stored WIPE-SN123-1700000000.json",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, FilterSensitiveValue(tc.input))
		})
	}
}

func TestContainsSensitiveData(t *testing.T) {
	t.Parallel()

	assert.True(t, ContainsSensitiveData("--security-set-pass "+fakeCredential()))
	assert.True(t, ContainsSensitiveData(fakePrivateKeyPEM("\n")))
	assert.False(t, ContainsSensitiveData(fakePublicKeyPEM()))
	assert.False(t, ContainsSensitiveData("lsblk -dJ -o NAME,MODEL,SIZE,SERIAL -e7"))
	assert.False(t, ContainsSensitiveData(""))
}

func TestIsSensitiveFieldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		field    string
		expected bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"security_password", true},
		{"credential", true},
		{"private_key", true},
		{"signing.private_key", true},
		{"device", false},
		{"report_id", false},
		{"signature", false},
		{"public_key", false},
	}

	for _, tc := range tests {
		t.Run(tc.field, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, IsSensitiveFieldName(tc.field))
		})
	}
}

func TestRedactIfSensitive(t *testing.T) {
	t.Parallel()

	assert.Equal(t, RedactedValue, RedactIfSensitive("credential", "anything"))
	assert.Equal(t, "/dev/sda", RedactIfSensitive("device", "/dev/sda"))
	assert.Equal(t, "--security-erase [REDACTED]", SafeValue("args", "--security-erase "+fakeCredential()))
}

func TestSensitiveDataHook_Run(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Hook(NewSensitiveDataHook())

	logger.Info().Msg("running --security-set-pass " + fakeCredential())
	assert.Contains(t, buf.String(), `"contains_filtered_data":true`)

	buf.Reset()
	logger.Info().Msg("pass 1/3 complete")
	assert.NotContains(t, buf.String(), "contains_filtered_data")
}

func TestFilteringWriter_WithZerolog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(NewFilteringWriter(&buf))

	logger.Error().
		Str("cmd", "hdparm --user-master u --security-erase "+fakeCredential()+" /dev/sdb").
		Str("key", fakePrivateKeyPEM("\n")).
		Msg("security-erase failed")

	out := buf.String()
	assert.NotContains(t, out, fakeCredential())
	assert.NotContains(t, out, "MIIEvQIBADANBgkqhkiG9w0BAQEFAASCBKcwggSjAgEAAoIBAQC7")
	assert.Contains(t, out, "--security-erase [REDACTED] /dev/sdb")
	assert.Contains(t, out, "security-erase failed")
}

func TestFilteringWriter_PreservesWriteLength(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewFilteringWriter(&buf)

	input := []byte("--security-set-pass " + fakeCredential())
	n, err := w.Write(input)
	require.NoError(t, err)
	assert.Equal(t, len(input), n, "reports the caller's length, not the redacted length")
	assert.Equal(t, "--security-set-pass [REDACTED]", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestFilteringWriter_PropagatesErrors(t *testing.T) {
	t.Parallel()

	n, err := NewFilteringWriter(failingWriter{}).Write([]byte("hello"))
	require.Error(t, err)
	assert.Zero(t, n)
}
