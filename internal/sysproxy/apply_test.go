package sysproxy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyState_CallSequence(t *testing.T) {
	setter := newRecordingSetter(t)

	err := applyState(setter, ManualState("127.0.0.1", 7890, "<local>"))
	require.NoError(t, err)

	assert.Equal(t, []uint32{
		internetOptionPerConnectionOption,
		internetOptionProxySettingsChanged,
		internetOptionRefresh,
	}, setter.optionCodes())
	assert.Equal(t, []uint32{75, 95, 37}, setter.optionCodes())
	assert.Equal(t, perConnOptionListSize, setter.calls[0].Size)
	assert.Equal(t, ManualState("127.0.0.1", 7890, "<local>").options(), setter.calls[0].Options)
}

func TestApplyState_StopsAtFirstFailure(t *testing.T) {
	tests := []struct {
		name      string
		failOn    uint32
		wantCalls int
	}{
		{"submit fails", internetOptionPerConnectionOption, 1},
		{"settings changed fails", internetOptionProxySettingsChanged, 2},
		{"refresh fails", internetOptionRefresh, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setter := newRecordingSetter(t)
			want := &OSError{Option: tt.failOn, Code: 87}
			setter.failOn[tt.failOn] = want

			err := applyState(setter, AutoState("http://wpad/wpad.dat"))

			var oe *OSError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, tt.failOn, oe.Option)
			assert.Equal(t, uint32(87), oe.Code)
			assert.Len(t, setter.calls, tt.wantCalls)
		})
	}
}

func TestApplyState_InvalidStringMakesNoCalls(t *testing.T) {
	setter := newRecordingSetter(t)

	err := applyState(setter, AutoState("http://pac\x00"))

	assert.ErrorIs(t, err, ErrInvalidProxy)
	assert.Empty(t, setter.calls)
}

func TestOSError(t *testing.T) {
	inner := errors.New("boom")
	err := &OSError{Option: 75, Code: 5, Err: inner}

	assert.Contains(t, err.Error(), "InternetSetOption(75)")
	assert.Contains(t, err.Error(), "code 5")
	assert.ErrorIs(t, err, inner)

	bare := &OSError{Option: 37, Code: 12}
	assert.Equal(t, "InternetSetOption(37) failed with code 12", bare.Error())
	assert.Nil(t, bare.Unwrap())
}
