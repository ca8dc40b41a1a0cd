package sysproxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateOptions_Direct(t *testing.T) {
	opts := DirectState().options()

	require.Len(t, opts, 1)
	assert.Equal(t, option{Kind: perConnFlags, Flags: proxyTypeDirect}, opts[0])
}

func TestStateOptions_Manual(t *testing.T) {
	opts := ManualState("127.0.0.1", 7890, "localhost;<local>").options()

	assert.Equal(t, []option{
		{Kind: perConnFlags, Flags: proxyTypeProxy | proxyTypeDirect},
		{Kind: perConnProxyServer, Text: "127.0.0.1:7890"},
		{Kind: perConnProxyBypass, Text: "localhost;<local>"},
	}, opts)
}

func TestStateOptions_Auto(t *testing.T) {
	opts := AutoState("http://wpad/wpad.dat").options()

	assert.Equal(t, []option{
		{Kind: perConnFlags, Flags: proxyTypeAutoDetect | proxyTypeAutoProxyURL | proxyTypeDirect},
		{Kind: perConnAutoConfigURL, Text: "http://wpad/wpad.dat"},
	}, opts)
}

func TestStateOptions_UnknownModeIsDirect(t *testing.T) {
	assert.Equal(t, DirectState().options(), State{Mode: Mode(42)}.options())
}

func TestManualState_EmptyBypassStillSent(t *testing.T) {
	opts := ManualState("proxy", 8080, "").options()

	require.Len(t, opts, 3)
	assert.Equal(t, uint32(perConnProxyBypass), opts[2].Kind)
	assert.Empty(t, opts[2].Text)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "direct", ModeDirect.String())
	assert.Equal(t, "manual", ModeManual.String())
	assert.Equal(t, "auto", ModeAuto.String())
	assert.Equal(t, "mode(7)", Mode(7).String())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"direct", ModeDirect, false},
		{"off", ModeDirect, false},
		{"none", ModeDirect, false},
		{"manual", ModeManual, false},
		{"auto", ModeAuto, false},
		{"pac", ModeAuto, false},
		{"socks", ModeDirect, true},
		{"", ModeDirect, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
