package kube

import "testing"

func TestEndpointPoolSkipsDemoted(t *testing.T) {
	p := NewEndpointPool(3)
	p.Fail(1)
	seen := map[int]bool{}
	for i := 0; i < 10; i++ {
		seen[p.Elect()] = true
	}
	if seen[1] {
		t.Fatalf("elected demoted endpoint 1: %v", seen)
	}
	if !seen[0] || !seen[2] {
		t.Fatalf("healthy endpoints not rotated: %v", seen)
	}
}

func TestEndpointPoolPromoteAfterSuccess(t *testing.T) {
	p := NewEndpointPool(2)
	p.Fail(0)
	p.Fail(1)
	// All demoted: election must still return something probeable.
	idx := p.Elect()
	if idx < 0 || idx >= 2 {
		t.Fatalf("Elect() = %d, want 0 or 1", idx)
	}
	p.Succeed(0)
	for i := 0; i < 5; i++ {
		if got := p.Elect(); got != 0 {
			t.Fatalf("Elect() = %d after promoting 0", got)
		}
	}
}

func TestSplitServerURL(t *testing.T) {
	tests := []struct {
		raw      string
		hostname string
		hostport string
	}{
		{"https://10.0.0.1:6443", "10.0.0.1", "10.0.0.1:6443"},
		{"https://kube.example.com", "kube.example.com", "kube.example.com:443"},
		{"http://kube.example.com", "kube.example.com", "kube.example.com:80"},
	}
	for _, tt := range tests {
		hostname, hostport, err := splitServerURL(tt.raw)
		if err != nil {
			t.Fatalf("splitServerURL(%q): %v", tt.raw, err)
		}
		if hostname != tt.hostname || hostport != tt.hostport {
			t.Errorf("splitServerURL(%q) = (%q, %q), want (%q, %q)",
				tt.raw, hostname, hostport, tt.hostname, tt.hostport)
		}
	}
}
