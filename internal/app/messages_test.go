// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Command
		wantErr string
	}{
		{name: "reset", payload: `{"action":"reset"}`, want: Command{Action: ActionReset}},
		{name: "calibrate", payload: `{"action":"calibrate"}`, want: Command{Action: ActionCalibrate}},
		{name: "calibrate with samples", payload: `{"action":"calibrate","samples":500}`, want: Command{Action: ActionCalibrate, Samples: 500}},
		{name: "unknown action", payload: `{"action":"reboot"}`, wantErr: `unknown action "reboot"`},
		{name: "missing action", payload: `{}`, wantErr: `unknown action ""`},
		{name: "negative samples", payload: `{"action":"calibrate","samples":-1}`, wantErr: "negative sample count"},
		{name: "largest sample count", payload: `{"action":"calibrate","samples":10000}`, want: Command{Action: ActionCalibrate, Samples: 10000}},
		{name: "too many samples", payload: `{"action":"calibrate","samples":10001}`, wantErr: "sample count 10001 exceeds 10000"},
		{name: "huge sample count", payload: `{"action":"calibrate","samples":9000000000000000000}`, wantErr: "exceeds 10000"},
		{name: "not json", payload: `reset`, wantErr: "command:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCommand([]byte(tt.payload))
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
