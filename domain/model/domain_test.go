package model

import "testing"

func TestSharedCertMatchesHost(t *testing.T) {
	c := &SharedCert{AutoMatchCNs: "*.example.com;exact.example.org"}
	cases := []struct {
		host string
		want bool
	}{
		{"foo.example.com", true},
		{"exact.example.org", true},
		{"example.com", false},
		{"a.b.example.com", false},
		{"foo.example.org", false},
	}
	for _, tc := range cases {
		if got := c.MatchesHost(tc.host); got != tc.want {
			t.Fatalf("MatchesHost(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestAddressURL(t *testing.T) {
	pm := PortMap{HTTP: 80, HTTPS: 443}
	cases := []struct {
		addr Address
		want string
	}{
		{Address{Host: "app.example.com"}, "http://app.example.com/"},
		{Address{Host: "app.example.com", HTTPSEnabled: true}, "https://app.example.com/"},
		{Address{Host: "shared.example.com", PathPrefix: "/stag--myapp/"}, "http://shared.example.com/stag--myapp/"},
	}
	for _, tc := range cases {
		if got := tc.addr.URL(pm); got != tc.want {
			t.Fatalf("URL = %q, want %q", got, tc.want)
		}
	}
	nonStd := Address{Host: "app.example.com"}
	if got := nonStd.URL(PortMap{HTTP: 8080}); got != "http://app.example.com:8080/" {
		t.Fatalf("URL with port map = %q", got)
	}
}

func TestSortedRootDomains(t *testing.T) {
	in := []AppDomainConfig{
		{Name: "r1.com", Reserved: true},
		{Name: "a.com"},
		{Name: "r2.com", Reserved: true},
		{Name: "b.com"},
	}
	out := SortedRootDomains(in)
	want := []string{"a.com", "b.com", "r1.com", "r2.com"}
	for i, d := range out {
		if d.Name != want[i] {
			t.Fatalf("position %d: got %s, want %s", i, d.Name, want[i])
		}
	}
	if in[0].Name != "r1.com" {
		t.Fatalf("input slice mutated")
	}
}
