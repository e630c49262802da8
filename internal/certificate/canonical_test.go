package certificate

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenCanonical = `{
    "reportID": "WIPE-SN123-1700000000",
    "timestamp": "2023-11-14T22:13:20.000000Z",
    "driveInfo": {
        "model": "TestDisk",
        "serial": "SN123",
        "size": "10GiB",
        "path": "/dev/sdX"
    },
    "wipeDetails": {
        "method": "overwrite",
        "standard": "NIST SP 800-88 Rev. 1",
        "status": "Success",
        "details": "Overwrite successful."
    }
}`

func TestCanonicalize_Golden(t *testing.T) {
	assert.Equal(t, goldenCanonical, string(Canonicalize(testRecord())))
}

func TestCanonicalize_Deterministic(t *testing.T) {
	r := testRecord()
	first := Canonicalize(r)
	for range 5 {
		assert.True(t, bytes.Equal(first, Canonicalize(r)))
	}

	signed := r
	signed.Signature = "c2lnbmF0dXJl"
	assert.Equal(t, first, Canonicalize(signed), "signature must not influence canonical bytes")
}

func TestCanonicalize_MatchesParsedRoundTrip(t *testing.T) {
	r := testRecord()
	r.Signature = "c2lnbmF0dXJl"

	parsed, err := Parse(Marshal(r))
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
	assert.Equal(t, Canonicalize(r), Canonicalize(parsed))
}

func TestMarshal_AppendsSignatureLast(t *testing.T) {
	r := testRecord()
	assert.Equal(t, goldenCanonical, string(Marshal(r)), "unsigned records marshal to the canonical form")

	r.Signature = "QUJD"
	out := string(Marshal(r))
	assert.True(t, bytes.HasSuffix([]byte(out), []byte("    },\n    \"signature\": \"QUJD\"\n}")))
}

func TestWriteString_Escaping(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Samsung SSD", `"Samsung SSD"`},
		{"quote and backslash", `a"b\c`, `"a\"b\\c"`},
		{"short escapes", "l1\nl2\r\t\b\f", `"l1\nl2\r\t\b\f"`},
		{"control bytes", "\x00\x01\x1f", `"\u0000\u0001\u001f"`},
		{"delete", "\x7f", `"\u007f"`},
		{"html and slash kept", "<a href=/x>&</a>", `"<a href=/x>&</a>"`},
		{"latin-1", "Caf\u00e9", `"Caf\u00e9"`},
		{"bmp", "\u78c1\u76d8", `"\u78c1\u76d8"`},
		{"astral plane", "\U0001F600", `"\ud83d\ude00"`},
		{"invalid utf-8", "a\xffb", `"a\ufffdb"`},
		{"empty", "", `""`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var b bytes.Buffer
			writeString(&b, tc.in)
			assert.Equal(t, tc.want, b.String())
		})
	}
}

func TestWriteString_DecodesToInput(t *testing.T) {
	inputs := []string{"Caf\u00e9 \u2615", "\U0001F600 drive", "tab\there", `back\slash`}
	for _, in := range inputs {
		var b bytes.Buffer
		writeString(&b, in)

		var out string
		require.NoError(t, json.Unmarshal(b.Bytes(), &out))
		assert.Equal(t, in, out)
	}
}

// The canonical form must not depend on encoding/json defaults. For content
// encoding/json leaves alone, its indented output agrees with ours; for HTML
// characters its default escaping differs while ours is stable.
func TestCanonicalize_IndependentOfEncodingJSON(t *testing.T) {
	r := testRecord()
	std, err := json.MarshalIndent(r, "", "    ")
	require.NoError(t, err)
	assert.Equal(t, string(std), string(Canonicalize(r)))

	r.WipeDetails.Details = "IO Error: <nil> & more"
	std, err = json.MarshalIndent(r, "", "    ")
	require.NoError(t, err)
	assert.NotEqual(t, string(std), string(Canonicalize(r)))
	assert.Contains(t, string(Canonicalize(r)), `"IO Error: <nil> & more"`)
}
