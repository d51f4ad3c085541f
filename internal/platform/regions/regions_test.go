package regions

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	table, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.Max("北京"); got != 30 {
		t.Fatalf("Max(北京) = %d, want 30", got)
	}
	if got := table.Max("未知省份"); got != table.Default {
		t.Fatalf("Max(unknown) = %d, want default %d", got, table.Default)
	}
}

func TestLoadOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.yaml")
	content := "default: 50\nregions:\n  北京: 32\n  测试: 10\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.Max("北京"); got != 32 {
		t.Fatalf("Max(北京) = %d, want override 32", got)
	}
	if got := table.Max("测试"); got != 10 {
		t.Fatalf("Max(测试) = %d, want 10", got)
	}
	if got := table.Max("上海"); got != 24 {
		t.Fatalf("Max(上海) = %d, want builtin 24 preserved", got)
	}
	if got := table.Max("未知省份"); got != 50 {
		t.Fatalf("Max(unknown) = %d, want overridden default 50", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/regions.yaml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
