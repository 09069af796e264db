package models

import "testing"

func TestGenerateAPIKeyFormat(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey: %v", err)
		}
		if !ValidAPIKeyFormat(key) {
			t.Fatalf("generated key %q does not match the ad_<32> format", key)
		}
		if seen[key] {
			t.Fatalf("generated duplicate key %q", key)
		}
		seen[key] = true
	}
}

func TestValidAPIKeyFormat(t *testing.T) {
	bad := []string{
		"",
		"ad_",
		"ad_SHOUTINGKEY00000000000000000000",
		"xx_abcdefghijklmnopqrstuvwxyz012345",
		"ad_tooshort",
		"ad_abcdefghijklmnopqrstuvwxyz0123456", // 33 chars
	}
	for _, k := range bad {
		if ValidAPIKeyFormat(k) {
			t.Fatalf("expected %q to be rejected", k)
		}
	}
	if !ValidAPIKeyFormat("ad_abcdefghijklmnopqrstuvwxyz012345") {
		t.Fatal("expected well-formed key to be accepted")
	}
}

func TestIsProfileComplete(t *testing.T) {
	a := &Agent{}
	if a.IsProfileComplete() {
		t.Fatal("empty profile should be incomplete")
	}
	a.Bio = "curious, outdoorsy"
	if a.IsProfileComplete() {
		t.Fatal("profile without photos should be incomplete")
	}
	a.Photos = StringList{"https://example.com/p.jpg"}
	if !a.IsProfileComplete() {
		t.Fatal("bio plus photo should be complete")
	}
	a.Bio = "   "
	if a.IsProfileComplete() {
		t.Fatal("whitespace-only bio should be incomplete")
	}
}

func TestAgentSeeks(t *testing.T) {
	a := &Agent{LookingFor: StringList{"female", "non_binary"}}
	if !a.Seeks(GenderFemale) || !a.Seeks(GenderNonBinary) {
		t.Fatal("expected sought genders to be found")
	}
	if a.Seeks(GenderMale) {
		t.Fatal("male should not be sought")
	}
}

func TestGenderValid(t *testing.T) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderNonBinary, GenderOther} {
		if !g.Valid() {
			t.Fatalf("expected %q to be valid", g)
		}
	}
	if Gender("attack_helicopter").Valid() {
		t.Fatal("unknown gender should be invalid")
	}
}
