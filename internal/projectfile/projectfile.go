// Package projectfile 从磁盘读取画布文件，供命令行导出工具使用。
package projectfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"collaborative-pixelart/internal/domain"
)

// Format 是画布文件的编码格式。
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat 按扩展名判断文件格式，未知扩展名按 JSON 处理。
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load 读取并解析画布文件，然后校验画布。
func Load(path string) (*domain.Canvas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}
	c, err := Decode(data, DetectFormat(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Decode 按指定格式解析画布并校验。
func Decode(data []byte, format Format) (*domain.Canvas, error) {
	var c domain.Canvas
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
