package objectstore

import "testing"

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name        string
		multiTenant bool
		appUUID     string
		fileName    string
		want        string
	}{
		{"multi-tenant with app", true, "tenant-1", "report.pdf", "tenant-1/documents/report.pdf"},
		{"multi-tenant without app", true, "", "report.pdf", "documents/report.pdf"},
		{"single-tenant ignores app", false, "tenant-1", "report.pdf", "documents/report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{multiTenant: tt.multiTenant}
			if got := c.documentKey(tt.appUUID, tt.fileName); got != tt.want {
				t.Fatalf("documentKey(%q, %q) = %q, want %q", tt.appUUID, tt.fileName, got, tt.want)
			}
		})
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct{ in, want string }{
		{"http://localhost:9000", "http://localhost:9000"},
		{"https://s3.example.com", "https://s3.example.com"},
		{"s3.example.com", "https://s3.example.com"},
	}
	for _, tt := range tests {
		if got := normalizeEndpoint(tt.in); got != tt.want {
			t.Fatalf("normalizeEndpoint(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
