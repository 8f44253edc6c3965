package settings

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	logx "fcdn/pkg/logx"
)

func openTestStore(t *testing.T) (Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.json")
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := s.GetString(ctx, "fcms_carrier_name"); err != nil || ok {
		t.Fatalf("unset key: ok=%v err=%v", ok, err)
	}

	if err := s.SetString(ctx, "fcms_carrier_name", "Voyager I"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetBool(ctx, "fcms_fuel_mode", false); err != nil {
		t.Fatal(err)
	}

	v, ok, err := s.GetString(ctx, "fcms_carrier_name")
	if err != nil || !ok || v != "Voyager I" {
		t.Fatalf("got (%q, %v, %v)", v, ok, err)
	}
	b, ok, err := s.GetBool(ctx, "fcms_fuel_mode")
	if err != nil || !ok || b {
		t.Fatalf("got (%v, %v, %v)", b, ok, err)
	}

	// Values survive a reopen.
	s2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	v, ok, err = s2.GetString(ctx, "fcms_carrier_name")
	if err != nil || !ok || v != "Voyager I" {
		t.Fatalf("after reopen: (%q, %v, %v)", v, ok, err)
	}

	keys, err := s2.Keys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"fcms_carrier_name", "fcms_fuel_mode"}) {
		t.Fatalf("keys = %v", keys)
	}
}

func TestFileStoreRejectsEmptyKey(t *testing.T) {
	s, _ := openTestStore(t)
	if err := s.SetString(context.Background(), "", "x"); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	// A corrupt settings file must not brick startup; it is set aside and
	// the store starts empty.
	s, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, ok, _ := s.GetString(context.Background(), "anything"); ok {
		t.Fatal("corrupt store should start empty")
	}
	if _, err := os.Stat(path + ".corrupt"); err != nil {
		t.Fatalf("corrupt file not preserved: %v", err)
	}
}

func TestOpenDisabledAndUnknownDriver(t *testing.T) {
	s, err := Open(Config{Driver: ""}, logx.Nop())
	if err != nil || s != nil {
		t.Fatalf("empty driver: (%v, %v), want (nil, nil)", s, err)
	}
	s, err = Open(Config{Driver: "none"}, logx.Nop())
	if err != nil || s != nil {
		t.Fatalf("driver none: (%v, %v), want (nil, nil)", s, err)
	}
	if _, err := Open(Config{Driver: "redis"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestGetDefaultsFallBack(t *testing.T) {
	ctx := context.Background()

	// nil store (disabled) falls back to the shipped default
	if !GetBoolDefault(ctx, nil, "fcms_fuel_mode", true) {
		t.Fatal("nil store should yield default")
	}
	if got := GetStringDefault(ctx, nil, "k", "d"); got != "d" {
		t.Fatalf("got %q", got)
	}

	s, _ := openTestStore(t)
	if !GetBoolDefault(ctx, s, "unset_key", true) {
		t.Fatal("unset key should yield default")
	}
	if err := s.SetBool(ctx, "fcms_show_usage", false); err != nil {
		t.Fatal(err)
	}
	if GetBoolDefault(ctx, s, "fcms_show_usage", true) {
		t.Fatal("explicit false overridden by default")
	}
}
