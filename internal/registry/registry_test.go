package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	helloSHA = "5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"
	helloMD5 = "b1946ac92492d2347c6235b4d2611184"
)

func dataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	write := func(rel, content string) {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a.txt", "hello\n")
	write("z.txt", "other\n")
	write("cache.pyc", "ignored")
	write(".git/config", "ignored")
	write("sub/b.txt", "hello\n")
	return dir
}

func TestHashFile(t *testing.T) {
	dir := dataDir(t)
	sum, err := HashFile(filepath.Join(dir, "a.txt"), "sha256")
	if err != nil {
		t.Fatal(err)
	}
	if sum != helloSHA {
		t.Errorf("sha256 = %s", sum)
	}
	sum, err = HashFile(filepath.Join(dir, "a.txt"), "md5")
	if err != nil {
		t.Fatal(err)
	}
	if sum != helloMD5 {
		t.Errorf("md5 = %s", sum)
	}
	if _, err := HashFile(filepath.Join(dir, "a.txt"), "crc32"); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("err = %v, want ErrAlgorithm", err)
	}
}

func TestBuildFlat(t *testing.T) {
	dir := dataDir(t)
	entries, err := Build(dir, Options{})
	if err != nil {
		t.Fatal(err)
	}
	// Excludes drop cache.pyc and .git; flat mode skips sub/.
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}
	if entries[0].Name != "a.txt" || entries[1].Name != "z.txt" {
		t.Errorf("order = %v", entries)
	}
	if entries[0].Hash != "sha256:"+helloSHA {
		t.Errorf("hash = %s", entries[0].Hash)
	}
}

func TestBuildRecursiveMD5(t *testing.T) {
	dir := dataDir(t)
	entries, err := Build(dir, Options{Algorithm: "md5", Recursive: true, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %v", entries)
	}
	if entries[1].Name != "sub/b.txt" || entries[1].Hash != "md5:"+helloMD5 {
		t.Errorf("entries = %v", entries)
	}
	if _, err := Build(dir, Options{Algorithm: "crc32"}); !errors.Is(err, ErrAlgorithm) {
		t.Errorf("err = %v, want ErrAlgorithm", err)
	}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := Build(t.TempDir(), Options{}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("err = %v, want ErrNoFiles", err)
	}
	if _, err := Build(filepath.Join(t.TempDir(), "missing"), Options{}); err == nil {
		t.Error("expected stat error")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	dir := dataDir(t)
	entries, err := Build(dir, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := Write(&b, entries); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(b.String(), "a.txt sha256:"+helloSHA+"\n") {
		t.Errorf("output:\n%s", b.String())
	}
	back, err := Parse(strings.NewReader("# comment\n\n" + b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(back) != len(entries) || back[0] != entries[0] {
		t.Errorf("round trip = %v", back)
	}
	if _, err := Parse(strings.NewReader("one two three\n")); err == nil {
		t.Error("expected malformed-line error")
	}
}

func TestVerify(t *testing.T) {
	dir := dataDir(t)
	entries, err := Build(dir, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	rep, err := Verify(dir, entries, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if !rep.Clean() || len(rep.OK) != 3 {
		t.Fatalf("clean verify = %+v", rep)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "z.txt")); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "new.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	rep, err = Verify(dir, entries, Options{Recursive: true})
	if err != nil {
		t.Fatal(err)
	}
	if rep.Clean() {
		t.Fatal("verify should be dirty")
	}
	if len(rep.Changed) != 1 || rep.Changed[0] != "a.txt" {
		t.Errorf("changed = %v", rep.Changed)
	}
	if len(rep.Missing) != 1 || rep.Missing[0] != "z.txt" {
		t.Errorf("missing = %v", rep.Missing)
	}
	if len(rep.Extra) != 1 || rep.Extra[0] != "new.txt" {
		t.Errorf("extra = %v", rep.Extra)
	}

	var b strings.Builder
	rep.WriteReport(&b)
	out := b.String()
	for _, want := range []string{"1 changed", "changed: a.txt", "missing: z.txt",
		"extra:   new.txt", "Status: DIRTY"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestVerifyBareHexDefaultsToSHA256(t *testing.T) {
	dir := dataDir(t)
	rep, err := Verify(dir, []Entry{{Name: "a.txt", Hash: helloSHA}}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.OK) != 1 {
		t.Errorf("report = %+v", rep)
	}
}
