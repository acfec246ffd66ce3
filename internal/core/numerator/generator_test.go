package numerator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyAndFormat(t *testing.T) {
	period := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		cfg     Config
		wantKey string
		wantNum string
	}{
		{
			name:    "yearly",
			cfg:     DefaultConfig("ORD"),
			wantKey: "ORD_2026",
			wantNum: "ORD-2026-00007",
		},
		{
			name:    "monthly without year",
			cfg:     Config{Prefix: "WST", PadWidth: 3, ResetPeriod: "month"},
			wantKey: "WST_2026_03",
			wantNum: "WST-007",
		},
		{
			name:    "never resets",
			cfg:     Config{Prefix: "STF", ResetPeriod: "never"},
			wantKey: "STF",
			wantNum: "STF-00007",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantKey, Key(tt.cfg, period))
			assert.Equal(t, tt.wantNum, Format(tt.cfg, period, 7))
		})
	}
}
