package layout

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// EncodeDebugJSON 把布局结果编码为缩进的 JSON。
func EncodeDebugJSON(res *Result) ([]byte, error) {
	if res == nil {
		return []byte("null"), nil
	}
	return json.MarshalIndent(res, "", "  ")
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。
func WriteDebugJSON(res *Result, path string) error {
	if res == nil {
		return nil
	}
	data, err := EncodeDebugJSON(res)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
