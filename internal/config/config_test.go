package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/John-Robertt/spritekit/internal/catalog"
	"github.com/John-Robertt/spritekit/internal/provider/pokemondb"
)

func TestLoadEffective_DefaultsWithoutConfigFile(t *testing.T) {
	cwd := t.TempDir()

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Dir != filepath.Join(cwd, DefaultDir) {
		t.Fatalf("期望 dir=%q，实际=%q", filepath.Join(cwd, DefaultDir), eff.Dir)
	}
	if eff.Width != DefaultWidth || eff.Height != DefaultHeight {
		t.Fatalf("期望默认尺寸 %dx%d，实际 %dx%d", DefaultWidth, DefaultHeight, eff.Width, eff.Height)
	}
	if eff.MaxGeneration != catalog.MaxGeneration {
		t.Fatalf("期望 max_generation=%d，实际=%d", catalog.MaxGeneration, eff.MaxGeneration)
	}
	if eff.CatalogURL != pokemondb.DefaultPageURL || eff.ImageHost != catalog.DefaultImageHost {
		t.Fatalf("默认 URL 不符合预期：%+v", eff)
	}
	if eff.ProxyURL != "" {
		t.Fatalf("期望无代理，实际=%q", eff.ProxyURL)
	}
}

func TestLoadEffective_FileThenCLIOverride(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"dir":"sprites","width":64,"height":48,"max_generation":3}`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.Dir != filepath.Join(cwd, "sprites") || eff.Width != 64 || eff.Height != 48 || eff.MaxGeneration != 3 {
		t.Fatalf("配置文件值未生效：%+v", eff)
	}

	eff2, err := LoadEffective(cwd, CLIArgs{
		Dir:      "/abs/out",
		Width:    0,
		WidthSet: true, // --width 0 也必须覆盖配置文件
	})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff2.Dir != "/abs/out" {
		t.Fatalf("期望 dir=/abs/out，实际=%q", eff2.Dir)
	}
	if eff2.Width != 0 || eff2.Height != 48 {
		t.Fatalf("期望 0x48，实际 %dx%d", eff2.Width, eff2.Height)
	}
}

func TestLoadEffective_InvalidJSON(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_MaxGenerationOutOfRange(t *testing.T) {
	cwd := t.TempDir()

	_, err := LoadEffective(cwd, CLIArgs{MaxGeneration: 6, MaxGenerationSet: true})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}

	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"max_generation":0}`))
	_, err = LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_URLs(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"catalog_url":"http://127.0.0.1:8080/sprites","image_host":"http://127.0.0.1:8081/","proxy":{"url":"http://127.0.0.1:7890"}}`))

	eff, err := LoadEffective(cwd, CLIArgs{})
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if eff.CatalogURL != "http://127.0.0.1:8080/sprites" {
		t.Fatalf("catalog_url 不符合预期：%q", eff.CatalogURL)
	}
	if eff.ImageHost != "http://127.0.0.1:8081" {
		t.Fatalf("image_host 应去掉末尾斜杠：%q", eff.ImageHost)
	}
	if eff.ProxyURL != "http://127.0.0.1:7890" {
		t.Fatalf("proxy.url 不符合预期：%q", eff.ProxyURL)
	}
}

func TestLoadEffective_InvalidImageHost(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"image_host":"ftp://img.example"}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func TestLoadEffective_InvalidProxyURL(t *testing.T) {
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, FileName), []byte(`{"proxy":{"url":"http://[::1"}}`))

	_, err := LoadEffective(cwd, CLIArgs{})
	if Code(err) != ErrCodeInvalid {
		t.Fatalf("期望 %q，实际 err=%v (code=%q)", ErrCodeInvalid, err, Code(err))
	}
}

func writeFile(t *testing.T, path string, b []byte) {
	t.Helper()
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("写入文件失败 %q：%v", path, err)
	}
}
