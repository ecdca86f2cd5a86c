package onboarding

import "testing"

func TestDecodeOracleJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantVal string
		wantErr bool
	}{
		{"plain object", `{"name":"Marcus"}`, "name", "Marcus", false},
		{"fenced json", "```json\n{\"name\":\"Marcus\"}\n```", "name", "Marcus", false},
		{"bare fence", "```\n{\"name\":\"Marcus\"}\n```", "name", "Marcus", false},
		{"leading chatter", `Sure! Here is the JSON you asked for: {"name":"Ada"} hope that helps`, "name", "Ada", false},
		{"trailing comma repaired", `{"name":"Ada",}`, "name", "Ada", false},
		{"single quotes repaired", `{'name': 'Ada'}`, "name", "Ada", false},
		{"no json at all", `I could not find anything`, "", "", true},
		{"empty string", ``, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := map[string]string{}
			err := decodeOracleJSON(tt.raw, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", out)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if out[tt.wantKey] != tt.wantVal {
				t.Errorf("expected %s=%q, got %v", tt.wantKey, tt.wantVal, out)
			}
		})
	}
}

func TestGoalValue_UnmarshalShapes(t *testing.T) {
	var out map[string]GoalValue
	raw := `{"name":"Marcus","email_volume":200,"email_challenges":["spam","newsletters"]}`
	if err := decodeOracleJSON(raw, &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out["name"].String() != "Marcus" {
		t.Errorf("string value mishandled: %q", out["name"].String())
	}
	if out["email_volume"].String() != "200" {
		t.Errorf("numeric value mishandled: %q", out["email_volume"].String())
	}
	if got := out["email_challenges"].List(); len(got) != 2 {
		t.Errorf("array value mishandled: %v", got)
	}
}

func TestGoalValue_UnmarshalBool(t *testing.T) {
	var out map[string]GoalValue
	raw := `{"automation_preference":true,"name":"Ada"}`
	if err := decodeOracleJSON(raw, &out); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if out["automation_preference"].String() != "true" {
		t.Errorf("boolean value mishandled: %q", out["automation_preference"].String())
	}
	if out["name"].String() != "Ada" {
		t.Errorf("sibling string mishandled: %q", out["name"].String())
	}
}
