package naming

import "testing"

func TestSafeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"bkapp-demo-stag", "bkapp-demo-stag"},
		{"bkapp-my_app-prod", "bkapp-my0us0app-prod"},
		{"Bkapp-Demo-Stag", "bkapp-demo-stag"},
	}
	for _, c := range cases {
		if got := SafeName(c.in); got != c.want {
			t.Errorf("SafeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWlAppName(t *testing.T) {
	if got := WlAppName("demo", "backend", "stag", true); got != "bkapp-demo-stag" {
		t.Errorf("default module name = %q", got)
	}
	if got := WlAppName("demo", "backend", "stag", false); got != "bkapp-demo-m-backend-stag" {
		t.Errorf("module name = %q", got)
	}
}

func TestDNSSafe(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My_App", "my-app"},
		{"--demo--", "demo"},
		{"a.b.c", "a-b-c"},
		{"demo", "demo"},
	}
	for _, c := range cases {
		if got := DNSSafe(c.in); got != c.want {
			t.Errorf("DNSSafe(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSubDomainHost(t *testing.T) {
	cases := []struct {
		env           string
		defaultModule bool
		want          string
	}{
		{"prod", true, "demo.example.com"},
		{"stag", true, "stag-dot-demo.example.com"},
		{"prod", false, "backend-dot-demo.example.com"},
		{"stag", false, "stag-dot-backend-dot-demo.example.com"},
	}
	for _, c := range cases {
		got := SubDomainHost("demo", "backend", c.env, "example.com", c.defaultModule)
		if got != c.want {
			t.Errorf("SubDomainHost(env=%s, default=%v) = %q, want %q", c.env, c.defaultModule, got, c.want)
		}
	}
}

func TestSubPath(t *testing.T) {
	if got := SubPath("demo", "backend", "prod", true); got != "/demo/" {
		t.Errorf("prod default subpath = %q", got)
	}
	if got := SubPath("demo", "backend", "stag", false); got != "/stag--backend--demo/" {
		t.Errorf("stag module subpath = %q", got)
	}
}

func TestShortHash(t *testing.T) {
	h := ShortHash("bkapp-demo-stag", 8)
	if len(h) != 8 {
		t.Fatalf("hash length = %d", len(h))
	}
	if h != ShortHash("bkapp-demo-stag", 8) {
		t.Error("hash is not deterministic")
	}
	if len(ShortHash("x", 100)) != 40 {
		t.Error("oversized n must clamp to the digest size")
	}
}

func TestSecretNames(t *testing.T) {
	if got := CertSecretName("My Cert"); got != "eng-tls-my-cert" {
		t.Errorf("CertSecretName = %q", got)
	}
	if got := ImagePullSecretName("bkapp-demo-stag"); got != "bkapp-demo-stag--dockerconfigjson" {
		t.Errorf("ImagePullSecretName = %q", got)
	}
}
