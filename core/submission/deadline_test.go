package submission

import (
	"testing"
	"time"
)

func TestLateness(t *testing.T) {
	taipei := time.FixedZone("CST", 8*3600)
	utc := time.UTC
	deadline := time.Date(2019, 11, 11, 23, 59, 59, 0, taipei)

	tests := []struct {
		name      string
		submitted time.Time
		want      time.Duration // 0 means on time
	}{
		{name: "a day early", submitted: time.Date(2019, 11, 10, 23, 59, 59, 0, taipei)},
		{name: "an hour early", submitted: time.Date(2019, 11, 11, 22, 59, 59, 0, taipei)},
		{name: "exactly at the deadline", submitted: deadline},
		{
			name:      "same instant in another offset",
			submitted: time.Date(2019, 11, 11, 15, 59, 59, 0, utc), // == deadline
		},
		{
			name:      "late by 13h00m11s",
			submitted: time.Date(2019, 11, 12, 13, 0, 10, 0, taipei),
			want:      13*time.Hour + 11*time.Second,
		},
		{
			name:      "late by 45h",
			submitted: time.Date(2019, 11, 13, 20, 59, 59, 0, taipei),
			want:      45 * time.Hour,
		},
		{
			name:      "one nanosecond late",
			submitted: deadline.Add(time.Nanosecond),
			want:      time.Nanosecond,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lateness(deadline, tt.submitted)
			if tt.want == 0 {
				if got != nil {
					t.Errorf("Lateness() = %v, want on time", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("Lateness() = on time, want %v", tt.want)
			}
			if *got != tt.want {
				t.Errorf("Lateness() = %v, want %v", *got, tt.want)
			}
		})
	}
}
