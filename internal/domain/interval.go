package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Interval 是帧的显示时长权重，保存客户端提交的原始文本。
// 它可以是 JSON 数字，也可以是数字字符串 (例如 "25" 或 "33.3")。
// 这里存储的是累计百分比断点，而不是单帧时长。
type Interval string

// NewInterval 由浮点数构造 Interval。
func NewInterval(v float64) Interval {
	return Interval(strconv.FormatFloat(v, 'f', -1, 64))
}

// Float 按照浏览器 parseFloat 的规则解析：
// 忽略前导空白，取最长的合法十进制前缀，无法解析时返回 NaN。
func (i Interval) Float() float64 {
	return ParseFloatPrefix(string(i))
}

// IsNaN 报告该 Interval 是否无法解析为数字。
func (i Interval) IsNaN() bool {
	return math.IsNaN(i.Float())
}

// UnmarshalJSON 同时接受数字和字符串。
func (i *Interval) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "null" {
		*i = ""
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = Interval(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = Interval(n.String())
	return nil
}

// MarshalJSON 若原始文本是完整的数字则输出为 JSON 数字，否则输出为字符串。
func (i Interval) MarshalJSON() ([]byte, error) {
	raw := []byte(i)
	if _, err := strconv.ParseFloat(string(i), 64); err == nil && json.Valid(raw) {
		return raw, nil
	}
	return json.Marshal(string(i))
}

// UnmarshalYAML 让 YAML 工程文件中的 interval 同样可以写成数字或字符串。
func (i *Interval) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return &yaml.TypeError{Errors: []string{"interval must be a scalar"}}
	}
	*i = Interval(value.Value)
	return nil
}

// ParseFloatPrefix 实现 parseFloat 的前缀解析语义。
func ParseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, isJSSpace)
	if s == "" {
		return math.NaN()
	}

	pos := 0
	if s[0] == '+' || s[0] == '-' {
		pos++
	}
	if strings.HasPrefix(s[pos:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}
		return math.Inf(1)
	}

	digits := 0
	for pos < len(s) && isDigit(s[pos]) {
		pos++
		digits++
	}
	if pos < len(s) && s[pos] == '.' {
		pos++
		for pos < len(s) && isDigit(s[pos]) {
			pos++
			digits++
		}
	}
	if digits == 0 {
		return math.NaN()
	}
	end := pos

	// 指数部分只有在后面跟着至少一位数字时才算数
	if pos < len(s) && (s[pos] == 'e' || s[pos] == 'E') {
		p := pos + 1
		if p < len(s) && (s[p] == '+' || s[p] == '-') {
			p++
		}
		expStart := p
		for p < len(s) && isDigit(s[p]) {
			p++
		}
		if p > expStart {
			end = p
		}
	}

	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// 溢出时 ParseFloat 返回 ±Inf 和 ErrRange，与 parseFloat 行为一致
		if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
			return v
		}
		return math.NaN()
	}
	return v
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// isJSSpace 与 unicode.IsSpace 的区别：包含 U+FEFF，不包含 U+0085。
func isJSSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
