package utils

import (
	"testing"
	"time"
)

// TestClamp 边界值钳制
func TestClamp(t *testing.T) {
	if got := Clamp(120, 1, 100); got != 100 {
		t.Errorf("Clamp(120,1,100) = %d", got)
	}
	if got := Clamp(-5, 1, 100); got != 1 {
		t.Errorf("Clamp(-5,1,100) = %d", got)
	}
	if got := Clamp(42, 1, 100); got != 42 {
		t.Errorf("Clamp(42,1,100) = %d", got)
	}
}

// TestHash 相同输入产生相同摘要, 不同输入不同
func TestHash(t *testing.T) {
	if Hash("abc") != Hash("abc") {
		t.Error("相同输入的哈希应一致")
	}
	if Hash("abc") == Hash("abd") {
		t.Error("不同输入的哈希不应一致")
	}
}

// TestContainsAny 任意子串命中即为真
func TestContainsAny(t *testing.T) {
	if !ContainsAny("请尝试重启应用", []string{"重启", "刷新"}) {
		t.Error("应命中子串")
	}
	if ContainsAny("没有相关内容", []string{"重启", "刷新"}) {
		t.Error("不应命中子串")
	}
}

// TestGetTTLWithJitter 抖动后的TTL落在[base, base*1.1)区间
func TestGetTTLWithJitter(t *testing.T) {
	base := int64(60)
	for i := 0; i < 20; i++ {
		ttl := GetTTLWithJitter(base)
		if ttl < time.Duration(base)*time.Second || ttl >= time.Duration(base+base/10)*time.Second {
			t.Fatalf("TTL %v 超出预期区间", ttl)
		}
	}
	if GetTTLWithJitter(0) != 0 {
		t.Error("非正数TTL应返回0")
	}
}

// TestParseDateFromLogFileName 合法与非法文件名
func TestParseDateFromLogFileName(t *testing.T) {
	loc := time.UTC

	got, ok := ParseDateFromLogFileName("run.log.2025-10-28", loc)
	if !ok {
		t.Fatal("合法文件名应解析成功")
	}
	if got.Format("2006-01-02") != "2025-10-28" {
		t.Errorf("日期解析错误: %v", got)
	}

	if _, ok := ParseDateFromLogFileName("run.log", loc); ok {
		t.Error("无日期后缀的文件名不应解析成功")
	}
	if _, ok := ParseDateFromLogFileName("README", loc); ok {
		t.Error("普通文件名不应解析成功")
	}
}
