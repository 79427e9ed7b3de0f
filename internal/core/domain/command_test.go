package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHelp(t *testing.T) {
	h := NewHelp("Track a topic")

	assert.Equal(t, "Track a topic", h.Short)
	assert.Equal(t, h.Short, h.Full)
}

func TestSplitCommand(t *testing.T) {
	type TestCase struct {
		description string
		text        string
		wantName    string
		wantArg     string
	}

	testCases := []TestCase{
		{
			description: "single word",
			text:        "help",
			wantName:    "help",
			wantArg:     "",
		},
		{
			description: "should keep the remainder",
			text:        "track iphone OR android",
			wantName:    "track",
			wantArg:     "iphone OR android",
		},
		{
			description: "should trim surrounding whitespace",
			text:        "  post   hello world  ",
			wantName:    "post",
			wantArg:     "hello world",
		},
		{
			description: "tab separated",
			text:        "lang\ten",
			wantName:    "lang",
			wantArg:     "en",
		},
		{
			description: "non-breaking space separated",
			text:        "track\u00a0golang",
			wantName:    "track",
			wantArg:     "golang",
		},
		{
			description: "empty on no input",
			text:        "   ",
			wantName:    "",
			wantArg:     "",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			name, arg := SplitCommand(testCase.text)

			assert.Equal(t, testCase.wantName, name)
			assert.Equal(t, testCase.wantArg, arg)
		})
	}
}

func TestRequireArgument(t *testing.T) {
	arg, ok := RequireArgument("  golang ")
	assert.True(t, ok)
	assert.Equal(t, "golang", arg)

	_, ok = RequireArgument(" \t ")
	assert.False(t, ok)

	_, ok = RequireArgument("")
	assert.False(t, ok)
}

func TestParseOnOff(t *testing.T) {
	tests := []struct {
		raw     string
		want    bool
		wantErr bool
	}{
		{raw: "on", want: true},
		{raw: "ON", want: true},
		{raw: " Off ", want: false},
		{raw: "yes", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseOnOff(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidToggle)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitCredentials(t *testing.T) {
	creds, ok := SplitCredentials("dustin my secret  pass")
	require.True(t, ok)
	assert.Equal(t, "dustin", creds.Username)
	assert.Equal(t, "my secret  pass", creds.Password)

	_, ok = SplitCredentials("dustin")
	assert.False(t, ok)
}

func TestUser_LoggedIn(t *testing.T) {
	assert.False(t, (&User{}).LoggedIn())
	assert.False(t, (&User{Username: "a"}).LoggedIn())
	assert.False(t, (&User{Username: "a", Password: "  "}).LoggedIn())
	assert.True(t, (&User{Username: "a", Password: "cA=="}).LoggedIn())
}
