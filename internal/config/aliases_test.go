package config

import (
	"reflect"
	"testing"
)

func TestSplitBackends(t *testing.T) {
	got := SplitBackends(" ChatGPT, ,claude,,GEMINI ,claude")
	want := []string{"chatgpt", "claude", "gemini", "claude"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitBackends() = %v, want %v", got, want)
	}
}

func TestExpandBackends(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetAlias("smart", []string{"claude,chatgpt"}); err != nil {
		t.Fatalf("SetAlias() error = %v", err)
	}

	cases := []struct {
		token string
		want  []string
	}{
		{token: "smart", want: []string{"claude", "chatgpt"}},
		{token: "SMART", want: []string{"claude", "chatgpt"}},
		{token: "gemini,llama", want: []string{"gemini", "llama"}},
		{token: "unknownthing", want: []string{"unknownthing"}},
	}
	for _, tc := range cases {
		if got := cfg.ExpandBackends(tc.token); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("ExpandBackends(%q) = %v, want %v", tc.token, got, tc.want)
		}
	}
}

func TestExpandDefaultToken(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.ExpandBackends("default"); !reflect.DeepEqual(got, []string{"chatgpt", "claude"}) {
		t.Fatalf("ExpandBackends(default) = %v", got)
	}

	cfg.DefaultBackends = nil
	if got := cfg.ExpandBackends("default"); !reflect.DeepEqual(got, []string{"default"}) {
		t.Fatalf("ExpandBackends(default) without defaults = %v", got)
	}

	if err := cfg.SetAlias("default", []string{"gemini"}); err != nil {
		t.Fatalf("SetAlias() error = %v", err)
	}
	if got := cfg.ExpandBackends("Default"); !reflect.DeepEqual(got, []string{"gemini"}) {
		t.Fatalf("ExpandBackends(Default) with alias = %v", got)
	}
}

func TestEnvAliasesAreShadowedByStored(t *testing.T) {
	t.Setenv(envAliases, `{"team":"claude,gemini","Solo":"local"}`)
	cfg := DefaultConfig()
	if err := cfg.LoadEnvAliases(); err != nil {
		t.Fatalf("LoadEnvAliases() error = %v", err)
	}
	if got := cfg.ExpandBackends("solo"); !reflect.DeepEqual(got, []string{"local"}) {
		t.Fatalf("ExpandBackends(solo) = %v", got)
	}

	if err := cfg.SetAlias("team", []string{"chatgpt"}); err != nil {
		t.Fatalf("SetAlias() error = %v", err)
	}
	if got := cfg.ExpandBackends("team"); !reflect.DeepEqual(got, []string{"chatgpt"}) {
		t.Fatalf("ExpandBackends(team) = %v", got)
	}
	if got := cfg.AliasNames(); !reflect.DeepEqual(got, []string{"solo", "team"}) {
		t.Fatalf("AliasNames() = %v", got)
	}
}

func TestLoadEnvAliasesRejectsMalformed(t *testing.T) {
	t.Setenv(envAliases, `{not json`)
	cfg := DefaultConfig()
	if err := cfg.LoadEnvAliases(); err == nil {
		t.Fatal("expected error for malformed POLYMIND_ALIASES")
	}
}

func TestSetAliasValidation(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetAlias("", []string{"claude"}); err == nil {
		t.Fatal("expected error for empty alias name")
	}
	if err := cfg.SetAlias("a,b", []string{"claude"}); err == nil {
		t.Fatal("expected error for alias name with comma")
	}
	if err := cfg.SetAlias("empty", []string{" , "}); err == nil {
		t.Fatal("expected error for alias without backends")
	}
}

func TestRemoveAlias(t *testing.T) {
	cfg := DefaultConfig()
	_ = cfg.SetAlias("x", []string{"claude"})
	if !cfg.RemoveAlias("X") {
		t.Fatal("RemoveAlias() = false, want true")
	}
	if cfg.RemoveAlias("x") {
		t.Fatal("RemoveAlias() second call = true, want false")
	}
}
