package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type timeNumber interface {
	~int | ~int32 | ~int64 | ~uint | ~uint32 | ~uint64
}

type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func Hash(str string) string {
	return HashBytes([]byte(str))
}

func HashBytes(data []byte) string {
	b := sha256.Sum224(data)
	return hex.EncodeToString(b[:])
}

func TimeFormat[T timeNumber](t T, loc *time.Location) string {
	return time.Unix(int64(t), 0).In(loc).Format(time.DateTime)
}

// 四舍五入保留小数位
func NumberFormat[T ~float32 | ~float64](f T, n ...uint) float64 {
	num := uint(2)
	if len(n) > 0 {
		num = n[0]
	}
	nu := math.Pow(10, float64(num))
	return math.Round(float64(f)*nu) / nu
}

// Clamp 将数值限制在[min, max]区间内
func Clamp[T ~int | ~int64 | ~float64](v, min, max T) T {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// 文件是否存在
func FileExist(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

// 创建目录
func Mkdir(path string) error {
	// 从路径中取目录
	dir := filepath.Dir(path)
	// 获取信息, 即判断是否存在目录
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		// 生成目录
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return err
		}
	}
	return nil
}

// 创建文件
// 可能存在跨越目录创建文件的风险
func CreateFile(path string) error {
	if FileExist(path) {
		return nil
	}

	if err := Mkdir(path); err != nil {
		return err
	}

	fi, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fi.Close()

	return nil
}

// 判断值是否在切片中
func InSlice[T comparable](slice []T, value T) int {
	for i, item := range slice {
		if item == value {
			return i
		}
	}
	return -1
}

// 判断一个字符串是否包含多个子字符串中的任意一个
func ContainsAny(str string, substrs []string) bool {
	for _, substr := range substrs {
		if strings.Contains(str, substr) {
			return true
		}
	}
	return false
}

// GetTTLWithJitter 为缓存TTL增加随机抖动，防止缓存雪崩
func GetTTLWithJitter(baseTTLInSeconds int64) time.Duration {
	if baseTTLInSeconds <= 0 {
		return 0
	}
	// 添加一个最多为基础TTL 10% 的随机抖动
	jitter := rand.Int63n(baseTTLInSeconds / 10)
	return time.Duration(baseTTLInSeconds+jitter) * time.Second
}

// ParseDateFromLogFileName 从日志文件名中解析日期
// 文件名格式如: gin.log.2025-10-28, run.log.2025-10-28
func ParseDateFromLogFileName(filename string, loc *time.Location) (time.Time, bool) {
	parts := strings.Split(filename, ".")
	if len(parts) < 2 {
		return time.Time{}, false
	}

	// 日期部分应在最后
	dateStr := parts[len(parts)-1]
	// 使用 "2006-01-02" 格式解析
	t, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
