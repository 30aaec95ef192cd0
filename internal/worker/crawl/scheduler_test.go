package crawl

import (
	"testing"
	"time"
)

func TestDefaultShouldRun(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"0時0分は実行", time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), true},
		{"3時4分は実行", time.Date(2026, 8, 20, 3, 4, 0, 0, time.UTC), true},
		{"21時0分は実行", time.Date(2026, 8, 20, 21, 0, 0, 0, time.UTC), true},
		{"3時5分はウィンドウ外", time.Date(2026, 8, 20, 3, 5, 0, 0, time.UTC), false},
		{"1時0分は対象外の時", time.Date(2026, 8, 20, 1, 0, 0, 0, time.UTC), false},
		{"4時0分は対象外の時", time.Date(2026, 8, 20, 4, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultShouldRun(tt.at); got != tt.want {
				t.Errorf("DefaultShouldRun(%v) = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestDefaultShouldRunConvertsToUTC(t *testing.T) {
	// UTC 3時ちょうどに相当するローカル時刻でも実行される
	jst := time.FixedZone("JST", 9*60*60)
	at := time.Date(2026, 8, 20, 12, 0, 0, 0, jst) // UTC 3:00
	if !DefaultShouldRun(at) {
		t.Error("ウィンドウ判定はUTC基準のはず")
	}
}
