package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/chores", strings.NewReader(`{"person":`))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
	if parser.IsJSON() {
		t.Error("IsJSON() should be false after a failed parse")
	}
}

func TestParseChoreForm(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        ChoreForm
		wantErr     bool
	}{
		{
			name:        "form encoded",
			body:        "person=+Alice+&task=Dishes",
			contentType: "application/x-www-form-urlencoded",
			want:        ChoreForm{Person: "Alice", Task: "Dishes"},
		},
		{
			name:        "name alias",
			body:        "name=Bob&task=Room+cleaning",
			contentType: "application/x-www-form-urlencoded",
			want:        ChoreForm{Person: "Bob", Task: "Room cleaning"},
		},
		{
			name:        "json",
			body:        `{"person":"Alice","task":"Folding laundry"}`,
			contentType: "application/json",
			want:        ChoreForm{Person: "Alice", Task: "Folding laundry"},
		},
		{
			name:        "control characters stripped",
			body:        "person=Al%00ice&task=Dishes",
			contentType: "application/x-www-form-urlencoded",
			want:        ChoreForm{Person: "Alice", Task: "Dishes"},
		},
		{
			name:        "empty body",
			body:        "",
			contentType: "application/x-www-form-urlencoded",
			want:        ChoreForm{},
		},
		{
			name:        "broken json",
			body:        `{"person":`,
			contentType: "application/json",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chores", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()

			got, errResp := ParseChoreForm(w, req)
			if tt.wantErr {
				if errResp == nil {
					t.Fatal("expected error response")
				}
				errResp.Write(w)
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", w.Code)
				}
				return
			}
			if errResp != nil {
				t.Fatalf("unexpected error response")
			}
			if got != tt.want {
				t.Errorf("ParseChoreForm() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseChoreForm_BodyTooLarge(t *testing.T) {
	big := "person=" + strings.Repeat("a", maxBodyBytes+1) + "&task=Dishes"
	req := httptest.NewRequest(http.MethodPost, "/chores", strings.NewReader(big))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if _, errResp := ParseChoreForm(httptest.NewRecorder(), req); errResp == nil {
		t.Fatal("expected oversize body to be rejected")
	}
}
