package session

import "testing"

func TestNewFactoryRejectsBadEndpoints(t *testing.T) {
	cases := []struct {
		name     string
		endpoint string
	}{
		{"empty", ""},
		{"no scheme", "pool.example.com"},
		{"no host", "https://"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewFactory(tc.endpoint); err == nil {
				t.Errorf("NewFactory(%q) succeeded, want error", tc.endpoint)
			}
		})
	}
}

func TestFactoryBindsEndpoint(t *testing.T) {
	f, err := NewFactory("https://pool.example.com")
	if err != nil {
		t.Fatal(err)
	}

	sess := f.New()
	if sess.PoolEndpoint != "https://pool.example.com" {
		t.Errorf("PoolEndpoint = %q", sess.PoolEndpoint)
	}
	if sess.ID == "" {
		t.Error("expected non-empty session ID")
	}
}

func TestFactoryMintsUniqueIDs(t *testing.T) {
	f, err := NewFactory("https://pool.example.com")
	if err != nil {
		t.Fatal(err)
	}

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := f.New().ID
		if seen[id] {
			t.Fatalf("duplicate session ID %q after %d sessions", id, i)
		}
		seen[id] = true
	}
}
