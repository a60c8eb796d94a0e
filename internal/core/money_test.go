package core

import (
	"errors"
	"testing"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{name: "whole amount", input: "100", wantCents: 10000},
		{name: "two decimals", input: "12.34", wantCents: 1234},
		{name: "comma separator", input: "1,5", wantCents: 150},
		{name: "spaces stripped", input: "40 000", wantCents: 4000000},
		{name: "rounds half up", input: "0.005", wantCents: 1},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "negative rejected", input: "-5", wantErr: true},
		{name: "empty rejected", input: "", wantErr: true},
		{name: "garbage rejected", input: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseMoney(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney(%q) unexpected error: %v", tt.input, err)
			}
			if got.Cents != tt.wantCents {
				t.Errorf("ParseMoney(%q) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{100, "1.00"},
		{5, "0.05"},
		{4000000, "40000.00"},
	}

	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
