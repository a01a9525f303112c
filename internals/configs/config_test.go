package configs

import (
	"reflect"
	"testing"
)

func TestParseTrustedProxies(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"default loopback", DefaultTrustedProxies, []string{"127.0.0.1", "::1"}},
		{"cidr and ip with spaces", " 10.0.0.0/8 , 192.168.1.5 ", []string{"10.0.0.0/8", "192.168.1.5"}},
		{"invalid entries dropped", "proxy.local,10.0.0.0/33,172.16.0.1", []string{"172.16.0.1"}},
		{"empty", "", nil},
		{"only commas", " , ,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTrustedProxies(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseTrustedProxies(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestTrustedProxiesDefaultIsNarrow(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", "")
	got := ParseTrustedProxies(GetEnv("TRUSTED_PROXIES", DefaultTrustedProxies))
	for _, p := range got {
		if p == "0.0.0.0/0" || p == "::/0" {
			t.Fatalf("default trusts every client: %v", got)
		}
	}
	if len(got) != 2 {
		t.Fatalf("default = %v, want loopback only", got)
	}
}
