package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestStoreConfigNormalized(t *testing.T) {
	tests := []struct {
		name string
		in   StoreConfig
		want StoreConfig
	}{
		{
			name: "strips scheme and trailing slash",
			in:   StoreConfig{Domain: "https://demo.myshopify.com/"},
			want: StoreConfig{Domain: "demo.myshopify.com", APIVersion: DefaultAPIVersion, Timeout: DefaultTimeout},
		},
		{
			name: "strips http scheme",
			in:   StoreConfig{Domain: "http://demo.myshopify.com"},
			want: StoreConfig{Domain: "demo.myshopify.com", APIVersion: DefaultAPIVersion, Timeout: DefaultTimeout},
		},
		{
			name: "keeps explicit version and timeout",
			in:   StoreConfig{Domain: "demo.myshopify.com", APIVersion: "2024-10", Timeout: 5 * time.Second},
			want: StoreConfig{Domain: "demo.myshopify.com", APIVersion: "2024-10", Timeout: 5 * time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalized()
			if got != tt.want {
				t.Errorf("Normalized() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStoreConfigValidate(t *testing.T) {
	t.Run("accepts a complete config", func(t *testing.T) {
		cfg := StoreConfig{Domain: "demo.myshopify.com", AccessToken: "token"}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("rejects missing fields with a configuration error", func(t *testing.T) {
		for _, cfg := range []StoreConfig{
			{},
			{Domain: "demo.myshopify.com"},
			{Domain: "demo.myshopify.com/extra/path", AccessToken: "token"},
		} {
			err := cfg.Validate()
			if err == nil {
				t.Errorf("Validate(%+v) = nil, want error", cfg)
				continue
			}
			if !errors.Is(err, ErrConfiguration) {
				t.Errorf("Validate(%+v) error does not unwrap to ErrConfiguration", cfg)
			}
		}
	})
}

func TestMoneyJSON(t *testing.T) {
	t.Run("decodes decimal string amounts", func(t *testing.T) {
		var m Money
		if err := json.Unmarshal([]byte(`{"amount": "59.95", "currencyCode": "USD"}`), &m); err != nil {
			t.Fatal(err)
		}
		if m.Amount != 59.95 || m.CurrencyCode != "USD" {
			t.Errorf("Money = %+v", m)
		}
	})

	t.Run("encodes the amount back as a string", func(t *testing.T) {
		out, err := json.Marshal(Money{Amount: 59.95, CurrencyCode: "USD"})
		if err != nil {
			t.Fatal(err)
		}
		if string(out) != `{"amount":"59.95","currencyCode":"USD"}` {
			t.Errorf("Marshal = %s", out)
		}
	})
}
