package booking

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dumeirei/innflow-backend/internal/models"
)

// DefaultReferencePrefix 默认预订号前缀
const DefaultReferencePrefix = "INF"

// NextReference 生成下一个预订号，返回递增后的物业
// 年份取 now 所在时区的日历年，流水号跨年不重置
func NextReference(property models.Property, now time.Time) (string, models.Property) {
	property.LastRefNumber++
	return FormatReference(referencePrefix(property), now.Year(), property.LastRefNumber), property
}

func referencePrefix(property models.Property) string {
	if property.RefPrefix == "" {
		return DefaultReferencePrefix
	}
	return property.RefPrefix
}

// NormalizeReference 去除首尾空白并转为大写，用于按预订号查询
func NormalizeReference(ref string) string {
	return strings.ToUpper(strings.TrimSpace(ref))
}

// ParseReferenceSeq 解析 PREFIX-YYYY-NNNN 中的流水号，前缀或年份不符时返回 false
func ParseReferenceSeq(ref, prefix string, year int) (int, bool) {
	rest, ok := strings.CutPrefix(ref, fmt.Sprintf("%s-%d-", prefix, year))
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

// FormatReference 格式化预订号 PREFIX-YYYY-NNNN
func FormatReference(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
