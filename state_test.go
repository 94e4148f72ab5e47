package bridge

import "testing"

func TestConnectionState_String(t *testing.T) {
	cases := map[ConnectionState]string{
		Disconnected: "disconnected",
		Unresponsive: "unresponsive",
		Connected:    "connected",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", state, got, want)
		}
	}
}
