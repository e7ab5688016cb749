package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetOutput(t *testing.T) {
	// 创建一个 buffer 来捕获日志输出
	buf := &bytes.Buffer{}
	
	// 设置输出到 buffer
	SetOutput(buf)
	
	// 创建一个 logger 并写入日志
	log := Logger("test")
	log.Info("test message", "key", "value")
	
	// 验证日志被写入 buffer
	output := buf.String()
	if !strings.Contains(output, "test message") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
	if !strings.Contains(output, "subsystem=test") {
		t.Errorf("expected subsystem=test in buffer, got: %s", output)
	}
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	// 创建一个 logger（输出到 stderr）
	log := Logger("test2")
	
	// 创建一个 buffer 并切换输出
	buf := &bytes.Buffer{}
	SetOutput(buf)
	
	// 使用已存在的 logger 写入日志
	log.Info("after switch", "key", "value")
	
	// 验证日志被写入 buffer（即使 logger 是在切换之前创建的）
	output := buf.String()
	if !strings.Contains(output, "after switch") {
		t.Errorf("expected log message in buffer, got: %s", output)
	}
	if !strings.Contains(output, "key=value") {
		t.Errorf("expected key=value in buffer, got: %s", output)
	}
}


func TestParseLevelConfig(t *testing.T) {
	cfg := &Config{SubsystemLevels: map[string]slog.Level{}}
	parseLevelConfig(cfg, "probe=debug,routing=warn,info")

	if cfg.DefaultLevel != slog.LevelInfo {
		t.Errorf("expected default level info, got: %v", cfg.DefaultLevel)
	}
	if cfg.LevelForSubsystem("probe") != slog.LevelDebug {
		t.Errorf("expected probe level debug, got: %v", cfg.LevelForSubsystem("probe"))
	}
	if cfg.LevelForSubsystem("routing") != slog.LevelWarn {
		t.Errorf("expected routing level warn, got: %v", cfg.LevelForSubsystem("routing"))
	}
	// 未配置的子系统回落到默认级别
	if cfg.LevelForSubsystem("qos") != slog.LevelInfo {
		t.Errorf("expected qos level info, got: %v", cfg.LevelForSubsystem("qos"))
	}
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("fsm")
	SetLevel("fsm", slog.LevelError)

	log.Info("should be dropped")
	if strings.Contains(buf.String(), "should be dropped") {
		t.Errorf("expected info log suppressed after SetLevel(error), got: %s", buf.String())
	}

	log.Error("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Errorf("expected error log present, got: %s", buf.String())
	}
}
