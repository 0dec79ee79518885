package config

import "testing"

func TestResolveCurrency(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		prefix     string
		wantPrefix string
		wantDec    int32
	}{
		{"default rupiah", "IDR", "", "Rp", 0},
		{"lowercase code", "usd", "", "$", 2},
		{"prefix override", "USD", "US$", "US$", 2},
		{"unknown falls back", "XYZ", "", "Rp", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.General.Currency = tt.code
			cfg.General.CurrencyPrefix = tt.prefix
			cur := cfg.ResolveCurrency()
			if cur.Prefix != tt.wantPrefix {
				t.Fatalf("Prefix = %q, want %q", cur.Prefix, tt.wantPrefix)
			}
			if cur.Decimals != tt.wantDec {
				t.Fatalf("Decimals = %d, want %d", cur.Decimals, tt.wantDec)
			}
		})
	}
}

func TestCurrencyCodesSorted(t *testing.T) {
	codes := CurrencyCodes()
	if len(codes) != len(DefaultCurrencies) {
		t.Fatalf("got %d codes, want %d", len(codes), len(DefaultCurrencies))
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
}
